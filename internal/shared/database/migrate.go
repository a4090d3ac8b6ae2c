package database

import (
	"playpark/internal/bookings"
	"playpark/internal/payments"
	"playpark/internal/slots"
	"playpark/internal/tickets"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&slots.Slot{},
		&bookings.Booking{},
		&payments.Payment{},
		&tickets.Ticket{},
	)
}
