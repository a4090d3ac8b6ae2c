package database

import (
	"gorm.io/gorm"
)

// constraintStatements are the supporting indexes applied after AutoMigrate.
// Every statement must be idempotent (IF NOT EXISTS) since they run on every
// boot. The unique (slot_date, time_slot) constraint that racing day-template
// inserts collapse on is NOT created here: AutoMigrate builds it from the
// uniqueIndex tag on the slot model, and Postgres has no conditional form of
// ADD CONSTRAINT to re-add it safely.
var constraintStatements = []string{
	// Index for the day-calendar read path
	`CREATE INDEX IF NOT EXISTS idx_slots_slot_date ON slots (slot_date);`,

	// Index for booking lookups per slot
	`CREATE INDEX IF NOT EXISTS idx_bookings_slot_id ON bookings (slot_id);`,
}

// MigrateConstraints applies the supporting indexes.
func MigrateConstraints(db *gorm.DB) error {
	for _, stmt := range constraintStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
