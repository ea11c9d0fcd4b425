// Package services – BookingService
//
// This file implements the booking orchestrator: it turns a
// (service, date, optional provider) request into a booking hold with
// candidate slots, and a chosen slot plus guest details into a confirmed
// appointment, coordinating the TTL cache, the classified retry executor and
// the degraded-mode fallback generator.
//
// Read paths (catalog, availability) degrade to synthetic data when the
// upstream stays down so the widget remains usable. Write paths (reserve,
// confirm, cancel) never fabricate success against a real upstream booking
// id; only holds the fallback generator minted itself are confirmed
// synthetically.
package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/radiancemd/go-booking-backend/internal/cache"
	"github.com/radiancemd/go-booking-backend/internal/domain"
	"github.com/radiancemd/go-booking-backend/internal/fallback"
	"github.com/radiancemd/go-booking-backend/internal/retry"
	"github.com/radiancemd/go-booking-backend/internal/upstream"
)

// UpstreamClient is the slice of the provider API the orchestrator needs.
// *upstream.Client satisfies it; tests substitute fakes.
type UpstreamClient interface {
	ListServices(ctx context.Context) ([]domain.Service, error)
	ListProviders(ctx context.Context) ([]domain.Provider, error)
	CreateBooking(ctx context.Context, serviceID, date, providerID string) (string, error)
	ListSlots(ctx context.Context, bookingID string) ([]domain.Slot, error)
	ReserveSlot(ctx context.Context, bookingID, slotID, providerID string) error
	ConfirmBooking(ctx context.Context, bookingID string, guest domain.Guest, notes string) (*domain.Appointment, error)
	CancelBooking(ctx context.Context, bookingID, reason string) error
}

// Cache key namespace. Availability keys incorporate every discriminating
// parameter so distinct query shapes never collide.
const (
	keyServices  = "booking:services"
	keyProviders = "booking:providers"

	// anyProvider is the key sentinel for "no provider preference".
	anyProvider = "any-provider"

	dateLayout = "2006-01-02"
)

// BookingService orchestrates availability lookups and the two-phase
// reservation sequence against the upstream provider.
type BookingService struct {
	// Upstream is the booking provider client.
	Upstream UpstreamClient
	// Cache memoizes catalog and availability responses.
	Cache *cache.Store

	// CatalogTTL caches services/providers (hours-scale; the catalog rarely
	// changes). AvailabilityTTL is deliberately shorter: slot inventory moves.
	CatalogTTL      time.Duration
	AvailabilityTTL time.Duration

	// Retry bounds every upstream call. IsPermanent/Op are set per call site.
	Retry retry.Policy

	// BookingWindowMonths bounds how far ahead a date may be chosen.
	BookingWindowMonths int

	nowFn func() time.Time
}

// NewBookingService constructs a BookingService with production defaults.
func NewBookingService(up UpstreamClient, store *cache.Store) *BookingService {
	return &BookingService{
		Upstream:            up,
		Cache:               store,
		CatalogTTL:          time.Hour,
		AvailabilityTTL:     15 * time.Minute,
		Retry:               retry.Policy{MaxAttempts: 3, IsPermanent: upstream.IsPermanent},
		BookingWindowMonths: 2,
		nowFn:               time.Now,
	}
}

// policy returns the retry policy tagged with an operation name.
func (s *BookingService) policy(op string) retry.Policy {
	p := s.Retry
	p.Op = op
	if p.IsPermanent == nil {
		p.IsPermanent = upstream.IsPermanent
	}
	return p
}

// Services returns the treatment catalog, cached for CatalogTTL. When the
// upstream stays down after retries it degrades to the fixed fallback
// catalog; auth failures surface to the caller instead.
func (s *BookingService) Services(ctx context.Context) ([]domain.Service, error) {
	v, err := s.Cache.GetOrCompute(ctx, keyServices, s.CatalogTTL, func(ctx context.Context) (any, error) {
		return retry.Do(ctx, s.policy("list_services"), s.Upstream.ListServices)
	})
	if err != nil {
		if upstream.IsAuth(err) {
			return nil, err
		}
		log.Warn().Err(err).Msg("services catalog unavailable; using fallback")
		return fallback.Services(), nil
	}
	return v.([]domain.Service), nil
}

// Providers returns the practitioner catalog with the same cache/fallback
// behavior as Services.
func (s *BookingService) Providers(ctx context.Context) ([]domain.Provider, error) {
	v, err := s.Cache.GetOrCompute(ctx, keyProviders, s.CatalogTTL, func(ctx context.Context) (any, error) {
		return retry.Do(ctx, s.policy("list_providers"), s.Upstream.ListProviders)
	})
	if err != nil {
		if upstream.IsAuth(err) {
			return nil, err
		}
		log.Warn().Err(err).Msg("providers catalog unavailable; using fallback")
		return fallback.Providers(), nil
	}
	return v.([]domain.Provider), nil
}

// Availability validates the query, then produces a booking hold with
// candidate slots: create a booking upstream, list its slots, cache the pair
// for AvailabilityTTL. Persistent transient failure degrades to synthetic
// hourly slots carrying a fallback booking id.
func (s *BookingService) Availability(ctx context.Context, serviceID, date, providerID string) (*domain.BookingHold, error) {
	if strings.TrimSpace(serviceID) == "" {
		return nil, ErrServiceRequired
	}
	if err := s.validateDate(date); err != nil {
		return nil, err
	}

	key := availabilityKey(serviceID, date, providerID)
	v, err := s.Cache.GetOrCompute(ctx, key, s.AvailabilityTTL, func(ctx context.Context) (any, error) {
		return retry.Do(ctx, s.policy("availability"), func(ctx context.Context) (*domain.BookingHold, error) {
			bookingID, err := s.Upstream.CreateBooking(ctx, serviceID, date, providerID)
			if err != nil {
				return nil, err
			}
			slots, err := s.Upstream.ListSlots(ctx, bookingID)
			if err != nil {
				return nil, err
			}
			return &domain.BookingHold{
				BookingID:  bookingID,
				ServiceID:  serviceID,
				Date:       date,
				ProviderID: providerID,
				Slots:      slots,
			}, nil
		})
	})
	if err != nil {
		if upstream.IsAuth(err) {
			return nil, err
		}
		return fallback.Availability(serviceID, date, providerID), nil
	}
	return v.(*domain.BookingHold), nil
}

// Reserve runs the two-phase write sequence: reserve the chosen slot against
// the booking id, then confirm with the guest's details. Synthetic holds are
// confirmed by the fallback generator without touching the upstream. For real
// holds any failure, after retries, is terminal: a confirmed appointment is
// never fabricated.
func (s *BookingService) Reserve(ctx context.Context, bookingID, slotID, providerID string, guest domain.Guest, notes string) (*domain.Appointment, error) {
	switch {
	case strings.TrimSpace(bookingID) == "":
		return nil, ErrBookingIDRequired
	case strings.TrimSpace(slotID) == "":
		return nil, ErrSlotRequired
	case strings.TrimSpace(providerID) == "":
		return nil, ErrProviderRequired
	}
	if err := guest.Validate(); err != nil {
		return nil, err
	}
	guest = guest.Normalized()

	ref := domain.ParseBookingRef(bookingID)
	if ref.Synthetic {
		return fallback.Confirm(ref, providerID, guest, notes)
	}

	if _, err := retry.Do(ctx, s.policy("reserve_slot"), func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.Upstream.ReserveSlot(ctx, bookingID, slotID, providerID)
	}); err != nil {
		return nil, err
	}

	apt, err := retry.Do(ctx, s.policy("confirm_booking"), func(ctx context.Context) (*domain.Appointment, error) {
		return s.Upstream.ConfirmBooking(ctx, bookingID, guest, notes)
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("appointment_id", apt.AppointmentID).Msg("appointment confirmed")
	return apt, nil
}

// Cancel cancels an appointment or hold. Ids minted by the fallback layer are
// acknowledged locally; real ids go upstream and failures propagate.
func (s *BookingService) Cancel(ctx context.Context, bookingID, reason string) error {
	if strings.TrimSpace(bookingID) == "" {
		return ErrBookingIDRequired
	}

	if err := fallback.Cancel(bookingID); err == nil {
		return nil
	}

	_, err := retry.Do(ctx, s.policy("cancel_booking"), func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.Upstream.CancelBooking(ctx, bookingID, reason)
	})
	return err
}

// PurgeCache clears every cached catalog and availability entry and reports
// how many were removed. Exposed on the admin surface.
func (s *BookingService) PurgeCache() int {
	return s.Cache.InvalidateAll()
}

// validateDate enforces the booking window [today, today+BookingWindowMonths]
// before any network call.
func (s *BookingService) validateDate(date string) error {
	if strings.TrimSpace(date) == "" {
		return ErrDateRequired
	}
	d, err := time.ParseInLocation(dateLayout, date, time.Local)
	if err != nil {
		return ErrDateInvalid
	}

	now := s.nowFn()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	months := s.BookingWindowMonths
	if months <= 0 {
		months = 2
	}
	if d.Before(today) || d.After(today.AddDate(0, months, 0)) {
		return ErrDateOutOfRange
	}
	return nil
}

// availabilityKey builds the namespaced cache key for an availability query.
func availabilityKey(serviceID, date, providerID string) string {
	p := providerID
	if strings.TrimSpace(p) == "" {
		p = anyProvider
	}
	return "booking:availability:" + serviceID + ":" + date + ":" + p
}
