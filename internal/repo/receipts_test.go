package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/radiancemd/go-booking-backend/internal/domain"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:receipts_"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func receipt(id, client, key string, expires time.Time) *domain.ReservationReceipt {
	return &domain.ReservationReceipt{
		ID:               id,
		ClientID:         client,
		Key:              key,
		BookingID:        "bk-1",
		AppointmentID:    "apt-" + id,
		ConfirmationCode: "CONF000001",
		ServiceName:      "Consultation",
		ProviderName:     "Dr. Reyes",
		Date:             "2026-09-15",
		CreatedAt:        time.Now().UTC(),
		ExpiresAt:        expires,
	}
}

func TestReceipts_SaveAndFind(t *testing.T) {
	store := NewReceipts(newTestDB(t))
	ctx := context.Background()
	now := time.Now().UTC()

	if err := store.Save(ctx, receipt("r1", "widget-7", "k-1", now.Add(time.Hour))); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Find(ctx, "widget-7", "k-1", now)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if got == nil || got.AppointmentID != "apt-r1" {
		t.Fatalf("Find = %+v", got)
	}

	// Other client or key: absent.
	if got, _ := store.Find(ctx, "widget-8", "k-1", now); got != nil {
		t.Fatalf("cross-client receipt leaked: %+v", got)
	}
	if got, _ := store.Find(ctx, "widget-7", "k-2", now); got != nil {
		t.Fatalf("cross-key receipt leaked: %+v", got)
	}

	// Blank identity never matches anything.
	if got, _ := store.Find(ctx, "", "k-1", now); got != nil {
		t.Fatalf("blank client matched: %+v", got)
	}
}

func TestReceipts_ExpiredTreatedAsAbsent(t *testing.T) {
	store := NewReceipts(newTestDB(t))
	ctx := context.Background()
	now := time.Now().UTC()

	if err := store.Save(ctx, receipt("r1", "widget-7", "k-1", now.Add(-time.Minute))); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got, _ := store.Find(ctx, "widget-7", "k-1", now); got != nil {
		t.Fatalf("expired receipt returned: %+v", got)
	}
	if exists, _ := store.Exists(ctx, "widget-7", "k-1", now); exists {
		t.Fatalf("Exists reported an expired receipt")
	}
}

func TestReceipts_DuplicateKey(t *testing.T) {
	store := NewReceipts(newTestDB(t))
	ctx := context.Background()
	exp := time.Now().UTC().Add(time.Hour)

	if err := store.Save(ctx, receipt("r1", "widget-7", "k-1", exp)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	err := store.Save(ctx, receipt("r2", "widget-7", "k-1", exp))
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("err = %v; want ErrDuplicate", err)
	}

	// Same key under a different client is a distinct tuple.
	if err := store.Save(ctx, receipt("r3", "widget-8", "k-1", exp)); err != nil {
		t.Fatalf("cross-client save: %v", err)
	}
}

func TestReceipts_Exists(t *testing.T) {
	store := NewReceipts(newTestDB(t))
	ctx := context.Background()
	now := time.Now().UTC()

	if exists, err := store.Exists(ctx, "widget-7", "k-1", now); err != nil || exists {
		t.Fatalf("Exists on empty store = (%v, %v)", exists, err)
	}
	if err := store.Save(ctx, receipt("r1", "widget-7", "k-1", now.Add(time.Hour))); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if exists, err := store.Exists(ctx, "widget-7", "k-1", now); err != nil || !exists {
		t.Fatalf("Exists after save = (%v, %v)", exists, err)
	}
}

func TestReceipts_PurgeExpired(t *testing.T) {
	store := NewReceipts(newTestDB(t))
	ctx := context.Background()
	now := time.Now().UTC()

	_ = store.Save(ctx, receipt("r1", "widget-7", "k-1", now.Add(-time.Hour)))
	_ = store.Save(ctx, receipt("r2", "widget-7", "k-2", now.Add(-time.Minute)))
	_ = store.Save(ctx, receipt("r3", "widget-7", "k-3", now.Add(time.Hour)))

	n, err := store.PurgeExpired(ctx, now)
	if err != nil {
		t.Fatalf("PurgeExpired: %v", err)
	}
	if n != 2 {
		t.Fatalf("purged = %d; want 2", n)
	}
	if got, _ := store.Find(ctx, "widget-7", "k-3", now); got == nil {
		t.Fatalf("live receipt was purged")
	}
}
