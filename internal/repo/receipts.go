// Package repo implements the data persistence layer for the booking surface,
// backed by GORM. This file provides the reservation receipt store used to
// implement safe-retry semantics for reserve POSTs: the same Idempotency-Key
// replays the original appointment instead of booking a second slot upstream.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/radiancemd/go-booking-backend/internal/domain"
)

// ErrDuplicate indicates that a receipt already exists for the given
// (client_id, key) tuple.
var ErrDuplicate = errors.New("duplicate")

// Receipts is the GORM-backed reservation receipt store. It satisfies the
// handler layer's ReceiptStore interface and the idempotency middleware's
// lookup contract.
type Receipts struct {
	DB *gorm.DB
}

// NewReceipts wraps db in a receipt store.
func NewReceipts(db *gorm.DB) *Receipts { return &Receipts{DB: db} }

// Find returns the non-expired receipt for (clientID, key), or nil when none
// exists. Expired rows are treated as absent; PurgeExpired removes them.
func (r *Receipts) Find(ctx context.Context, clientID, key string, now time.Time) (*domain.ReservationReceipt, error) {
	if strings.TrimSpace(clientID) == "" || strings.TrimSpace(key) == "" {
		return nil, nil
	}
	var rec domain.ReservationReceipt
	err := r.DB.WithContext(ctx).
		Where("client_id = ? AND key = ? AND expires_at > ?", clientID, key, now).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Save inserts a receipt and returns ErrDuplicate on unique violation.
func (r *Receipts) Save(ctx context.Context, rec *domain.ReservationReceipt) error {
	if err := r.DB.WithContext(ctx).Create(rec).Error; err != nil {
		// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
		low := strings.ToLower(err.Error())
		if errors.Is(err, gorm.ErrDuplicatedKey) ||
			strings.Contains(low, "unique constraint failed") ||
			strings.Contains(low, "constraint failed: unique") {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// Exists adapts Find to the idempotency middleware's lookup signature.
func (r *Receipts) Exists(ctx context.Context, clientID, key string, now time.Time) (bool, error) {
	rec, err := r.Find(ctx, clientID, key, now)
	if err != nil {
		return false, err
	}
	return rec != nil, nil
}

// PurgeExpired deletes receipts whose expiry is at or before now and reports
// how many rows were removed.
func (r *Receipts) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&domain.ReservationReceipt{})
	return res.RowsAffected, res.Error
}
