package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	baseID := seedBaseTable(db)
	personalIDs := seedPersonalTables(db)
	seedPartners(db, baseID, personalIDs)

	log.Println("Seeding completed successfully!")
}

func seedBaseTable(db *sql.DB) string {
	fmt.Println("Seeding base discount table...")
	ranges := `[
		{"initialRange": 1, "finalRange": 100, "discountPercent": "0"},
		{"initialRange": 101, "finalRange": 200, "discountPercent": "10"},
		{"initialRange": 201, "finalRange": 500, "discountPercent": "20"}
	]`
	var id string
	err := db.QueryRow(`
		INSERT INTO discount_tables (nickname, discount_type, ranges)
		VALUES ('standard base table', 'base', $1::jsonb)
		ON CONFLICT (nickname) DO UPDATE SET ranges = EXCLUDED.ranges
		RETURNING id;
	`, ranges).Scan(&id)
	if err != nil {
		log.Fatalf("Failed to seed base table: %v", err)
	}
	return id
}

func seedPersonalTables(db *sql.DB) map[string]string {
	tables := []struct {
		Nickname string
		Ranges   string
	}{
		{"aggressive growth", `[
			{"initialRange": 1, "finalRange": 50, "discountPercent": "0"},
			{"initialRange": 51, "finalRange": 150, "discountPercent": "15"},
			{"initialRange": 151, "finalRange": 1000, "discountPercent": "30"}
		]`},
		{"enterprise flat", `[
			{"initialRange": 1, "finalRange": 250, "discountPercent": "5"},
			{"initialRange": 251, "finalRange": 2000, "discountPercent": "12.5"}
		]`},
	}

	fmt.Println("Seeding personal discount tables...")
	ids := make(map[string]string)
	for _, t := range tables {
		var id string
		err := db.QueryRow(`
			INSERT INTO discount_tables (nickname, discount_type, ranges)
			VALUES ($1, 'personal', $2::jsonb)
			ON CONFLICT (nickname) DO UPDATE SET ranges = EXCLUDED.ranges
			RETURNING id;
		`, t.Nickname, t.Ranges).Scan(&id)
		if err != nil {
			log.Printf("Failed to seed table %s: %v", t.Nickname, err)
			continue
		}
		ids[t.Nickname] = id
	}
	return ids
}

func seedPartners(db *sql.DB, baseID string, personalIDs map[string]string) {
	partners := []struct {
		Name          string
		DailyPrice    string
		ClientsAmount int
		Type          string
		Table         string
	}{
		{"Acme Logistics", "10", 150, "base", ""},
		{"Globex Retail", "7.25", 480, "base", ""},
		{"Initech Services", "12.50", 90, "personal", "aggressive growth"},
		{"Umbrella Foods", "4.99", 1200, "personal", "enterprise flat"},
	}

	fmt.Println("Seeding partners...")
	for _, p := range partners {
		tableID := baseID
		if p.Table != "" {
			id, ok := personalIDs[p.Table]
			if !ok {
				log.Printf("Missing table ID for %s, skipping partner %s", p.Table, p.Name)
				continue
			}
			tableID = id
		}
		_, err := db.Exec(`
			INSERT INTO partners (name, daily_price, clients_amount, discount_type, discounts_table_id)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (name) DO UPDATE SET
				daily_price = EXCLUDED.daily_price,
				clients_amount = EXCLUDED.clients_amount,
				discount_type = EXCLUDED.discount_type,
				discounts_table_id = EXCLUDED.discounts_table_id;
		`, p.Name, p.DailyPrice, p.ClientsAmount, p.Type, tableID)
		if err != nil {
			log.Printf("Failed to seed partner %s: %v", p.Name, err)
		}
	}
}
