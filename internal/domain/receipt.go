// Package domain defines the core booking types. This file contains the only
// locally persisted model: a receipt of a completed reservation, keyed by the
// caller's Idempotency-Key, so a retried reserve POST replays the original
// appointment instead of booking a second one upstream.
package domain

import "time"

// ReservationReceipt records the outcome of a successful reserve call for a
// bounded time window. Guest contact details are deliberately not stored; the
// upstream provider is the system of record and this table should hold as
// little patient data as possible.
type ReservationReceipt struct {
	ID               string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	ClientID         string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_client_key,priority:1"`
	Key              string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_client_key,priority:2"`
	BookingID        string    `gorm:"type:TEXT NOT NULL"`
	AppointmentID    string    `gorm:"type:TEXT NOT NULL"`
	ConfirmationCode string    `gorm:"type:TEXT NOT NULL"`
	ServiceName      string    `gorm:"type:TEXT NOT NULL"`
	ProviderName     string    `gorm:"type:TEXT NOT NULL"`
	Date             string    `gorm:"type:TEXT NOT NULL"`
	CreatedAt        time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt        time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (ReservationReceipt) TableName() string { return "reservation_receipts" }
