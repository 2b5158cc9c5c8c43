package events

// Topics emitted by the service.
const (
	TopicPartnerCreated       = "partner.created"
	TopicDiscountTableDeleted = "discount_table.deleted"
	TopicCalculationCompleted = "calculation.completed"
)
