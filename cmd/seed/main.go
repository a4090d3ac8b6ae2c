package main

import (
	"fmt"
	"log"
	"time"

	"playpark/internal/shared/config"
	"playpark/internal/shared/database"
	"playpark/internal/slots"
)

// Seeder pre-generates slot calendars so a fresh environment has bookable
// days without waiting for lazy generation.
type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("🌱 Starting PlayPark Database Seeder...")

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	fmt.Println("\n🌱 Seeding slot calendar...")
	if err := seeder.SeedSlotDays(14); err != nil {
		log.Fatalf("Failed to seed slots: %v", err)
	}
	fmt.Println("✅ Slot calendar seeded successfully")

	fmt.Println("\n🎉 Seeding completed! Database is ready for testing.")
}

// CleanDatabase truncates all tables in the correct order (respecting foreign key constraints)
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"tickets",
		"payments",
		"bookings",
		"slots",
	}

	tx := s.db.PostgreSQL.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Exec("SET CONSTRAINTS ALL DEFERRED").Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to defer constraints: %w", err)
	}

	for _, table := range tables {
		fmt.Printf("  Truncating table: %s\n", table)
		if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	if err := tx.Exec("SET CONSTRAINTS ALL IMMEDIATE").Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to restore constraints: %w", err)
	}

	return tx.Commit().Error
}

// SeedSlotDays inserts the daily slot template for the next `days` dates
// starting today.
func (s *Seeder) SeedSlotDays(days int) error {
	now := time.Now()
	total := 0

	for i := 0; i < days; i++ {
		date := now.AddDate(0, 0, i).Format("2006-01-02")
		template := slots.DayTemplate(date)
		if err := s.db.PostgreSQL.Create(&template).Error; err != nil {
			return fmt.Errorf("failed to seed slots for %s: %w", date, err)
		}
		total += len(template)
		fmt.Printf("  Seeded %d slots for %s\n", len(template), date)
	}

	fmt.Printf("  Total slots created: %d\n", total)
	return nil
}
