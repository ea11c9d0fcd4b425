package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/radiancemd/go-booking-backend/internal/cache"
	"github.com/radiancemd/go-booking-backend/internal/domain"
	"github.com/radiancemd/go-booking-backend/internal/fallback"
	"github.com/radiancemd/go-booking-backend/internal/retry"
	"github.com/radiancemd/go-booking-backend/internal/upstream"
)

// ----- Fake upstream -----

type fakeUpstream struct {
	servicesCalls int
	servicesErr   error

	providersErr error

	createCalls int
	createErr   error
	bookingID   string

	slotsErr error
	slots    []domain.Slot

	reserveCalls int
	reserveErr   error

	confirmCalls int
	confirmErr   error

	cancelCalls int
	cancelErr   error
	cancelledID string
}

func (f *fakeUpstream) ListServices(ctx context.Context) ([]domain.Service, error) {
	f.servicesCalls++
	if f.servicesErr != nil {
		return nil, f.servicesErr
	}
	return []domain.Service{{ID: "svc-1", Name: "Hydrafacial"}}, nil
}

func (f *fakeUpstream) ListProviders(ctx context.Context) ([]domain.Provider, error) {
	if f.providersErr != nil {
		return nil, f.providersErr
	}
	return []domain.Provider{{ID: "provider-1", Name: "Dr. Reyes"}}, nil
}

func (f *fakeUpstream) CreateBooking(ctx context.Context, serviceID, date, providerID string) (string, error) {
	f.createCalls++
	if f.createErr != nil {
		return "", f.createErr
	}
	if f.bookingID != "" {
		return f.bookingID, nil
	}
	return "bk-1", nil
}

func (f *fakeUpstream) ListSlots(ctx context.Context, bookingID string) ([]domain.Slot, error) {
	if f.slotsErr != nil {
		return nil, f.slotsErr
	}
	if f.slots != nil {
		return f.slots, nil
	}
	return []domain.Slot{{ID: "slot-1", StartTime: "2025-03-10T10:00:00", EndTime: "2025-03-10T11:00:00", ProviderID: "provider-1", ProviderName: "Dr. Reyes"}}, nil
}

func (f *fakeUpstream) ReserveSlot(ctx context.Context, bookingID, slotID, providerID string) error {
	f.reserveCalls++
	return f.reserveErr
}

func (f *fakeUpstream) ConfirmBooking(ctx context.Context, bookingID string, guest domain.Guest, notes string) (*domain.Appointment, error) {
	f.confirmCalls++
	if f.confirmErr != nil {
		return nil, f.confirmErr
	}
	return &domain.Appointment{AppointmentID: "apt-9", ConfirmationCode: "UP00001", ServiceName: "Hydrafacial", ProviderName: "Dr. Reyes", Date: "2025-03-10", Guest: guest}, nil
}

func (f *fakeUpstream) CancelBooking(ctx context.Context, bookingID, reason string) error {
	f.cancelCalls++
	f.cancelledID = bookingID
	return f.cancelErr
}

// ----- Helpers -----

var validGuest = domain.Guest{FirstName: "Jane", LastName: "Doe", Email: "jane@example.com", Phone: "5551230147"}

func newService(up *fakeUpstream) *BookingService {
	s := NewBookingService(up, cache.New())
	// Keep retries fast and deterministic in tests: 2 attempts, no real sleep.
	s.Retry = retry.Policy{MaxAttempts: 2, InitialInterval: time.Microsecond, MaxInterval: time.Millisecond, IsPermanent: upstream.IsPermanent}
	s.nowFn = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.Local) }
	return s
}

var transientErr = &upstream.APIError{StatusCode: 503, Message: "unavailable"}
var authErr = &upstream.APIError{StatusCode: 401, Message: "bad key"}

// ----- Catalog -----

func TestServices_CachedAcrossCalls(t *testing.T) {
	up := &fakeUpstream{}
	s := newService(up)

	for i := 0; i < 3; i++ {
		services, err := s.Services(context.Background())
		if err != nil || len(services) != 1 {
			t.Fatalf("Services: (%v, %v)", services, err)
		}
	}
	if up.servicesCalls != 1 {
		t.Fatalf("upstream hit %d times; want 1 (cached)", up.servicesCalls)
	}
}

func TestServices_FallsBackOnPersistentFailure(t *testing.T) {
	up := &fakeUpstream{servicesErr: transientErr}
	s := newService(up)

	services, err := s.Services(context.Background())
	if err != nil {
		t.Fatalf("expected degraded catalog, got error %v", err)
	}
	if len(services) == 0 {
		t.Fatalf("fallback catalog empty")
	}
	if up.servicesCalls != 2 {
		t.Fatalf("transient error retried %d times; want 2 attempts", up.servicesCalls)
	}

	// Failure must not be cached: the next call hits upstream again.
	up.servicesErr = nil
	if _, err := s.Services(context.Background()); err != nil {
		t.Fatalf("recovered call failed: %v", err)
	}
	if up.servicesCalls != 3 {
		t.Fatalf("failed lookup was cached (calls=%d)", up.servicesCalls)
	}
}

func TestServices_AuthErrorSurfacesWithoutRetry(t *testing.T) {
	up := &fakeUpstream{servicesErr: authErr}
	s := newService(up)

	_, err := s.Services(context.Background())
	if !upstream.IsAuth(err) {
		t.Fatalf("err = %v; want auth error surfaced", err)
	}
	if up.servicesCalls != 1 {
		t.Fatalf("auth error retried: %d calls", up.servicesCalls)
	}
}

func TestProviders_FallsBack(t *testing.T) {
	up := &fakeUpstream{providersErr: transientErr}
	s := newService(up)

	providers, err := s.Providers(context.Background())
	if err != nil || len(providers) == 0 {
		t.Fatalf("Providers = (%v, %v)", providers, err)
	}
}

// ----- Availability -----

func TestAvailability_Validation(t *testing.T) {
	s := newService(&fakeUpstream{})
	ctx := context.Background()

	cases := []struct {
		name    string
		svc     string
		date    string
		wantErr error
	}{
		{"missing service", "", "2025-03-10", ErrServiceRequired},
		{"missing date", "svc-1", "", ErrDateRequired},
		{"malformed date", "svc-1", "03/10/2025", ErrDateInvalid},
		{"past date", "svc-1", "2025-02-20", ErrDateOutOfRange},
		{"beyond window", "svc-1", "2025-06-10", ErrDateOutOfRange},
	}
	for _, tc := range cases {
		if _, err := s.Availability(ctx, tc.svc, tc.date, ""); !errors.Is(err, tc.wantErr) {
			t.Errorf("%s: err = %v; want %v", tc.name, err, tc.wantErr)
		}
	}
}

func TestAvailability_RejectsBeforeNetwork(t *testing.T) {
	up := &fakeUpstream{}
	s := newService(up)

	_, _ = s.Availability(context.Background(), "svc-1", "2025-06-10", "")
	if up.createCalls != 0 {
		t.Fatalf("out-of-window date reached the network")
	}
}

func TestAvailability_CachedPerQueryShape(t *testing.T) {
	up := &fakeUpstream{}
	s := newService(up)
	ctx := context.Background()

	if _, err := s.Availability(ctx, "svc-1", "2025-03-10", ""); err != nil {
		t.Fatalf("Availability: %v", err)
	}
	if _, err := s.Availability(ctx, "svc-1", "2025-03-10", ""); err != nil {
		t.Fatalf("Availability: %v", err)
	}
	if up.createCalls != 1 {
		t.Fatalf("same query shape hit upstream %d times; want 1", up.createCalls)
	}

	// A provider-pinned query is a different shape and must not share the entry.
	if _, err := s.Availability(ctx, "svc-1", "2025-03-10", "provider-1"); err != nil {
		t.Fatalf("Availability: %v", err)
	}
	if up.createCalls != 2 {
		t.Fatalf("distinct query shape served from shared cache entry")
	}
}

func TestAvailability_DegradesToSyntheticSlots(t *testing.T) {
	up := &fakeUpstream{createErr: transientErr}
	s := newService(up)

	hold, err := s.Availability(context.Background(), "svc-1", "2025-03-10", "")
	if err != nil {
		t.Fatalf("expected degraded hold, got %v", err)
	}
	if !strings.HasPrefix(hold.BookingID, domain.FallbackBookingPrefix) {
		t.Fatalf("degraded booking id = %q", hold.BookingID)
	}
	if len(hold.Slots) != 8 {
		t.Fatalf("degraded slot count = %d; want 8", len(hold.Slots))
	}
}

// ----- Reserve -----

func TestReserve_Validation(t *testing.T) {
	s := newService(&fakeUpstream{})
	ctx := context.Background()

	if _, err := s.Reserve(ctx, "", "slot-1", "provider-1", validGuest, ""); !errors.Is(err, ErrBookingIDRequired) {
		t.Errorf("missing booking id: %v", err)
	}
	if _, err := s.Reserve(ctx, "bk-1", "", "provider-1", validGuest, ""); !errors.Is(err, ErrSlotRequired) {
		t.Errorf("missing slot id: %v", err)
	}
	if _, err := s.Reserve(ctx, "bk-1", "slot-1", "", validGuest, ""); !errors.Is(err, ErrProviderRequired) {
		t.Errorf("missing provider id: %v", err)
	}
	bad := validGuest
	bad.Email = "not-an-email"
	if _, err := s.Reserve(ctx, "bk-1", "slot-1", "provider-1", bad, ""); !errors.Is(err, domain.ErrGuestEmailInvalid) {
		t.Errorf("invalid guest: %v", err)
	}
}

func TestReserve_TwoPhaseAgainstUpstream(t *testing.T) {
	up := &fakeUpstream{}
	s := newService(up)

	apt, err := s.Reserve(context.Background(), "bk-1", "slot-1", "provider-1", validGuest, "notes")
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if up.reserveCalls != 1 || up.confirmCalls != 1 {
		t.Fatalf("reserve/confirm calls = %d/%d; want 1/1", up.reserveCalls, up.confirmCalls)
	}
	if apt.AppointmentID != "apt-9" {
		t.Fatalf("appointment = %+v", apt)
	}
}

func TestReserve_SyntheticHoldNeverTouchesUpstream(t *testing.T) {
	up := &fakeUpstream{}
	s := newService(up)

	apt, err := s.Reserve(context.Background(), domain.FallbackBookingPrefix+"svc-1-2025-03-10", "fallback-slot-2025-03-10-09", "provider-1", validGuest, "")
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if up.reserveCalls != 0 || up.confirmCalls != 0 {
		t.Fatalf("synthetic hold reached upstream")
	}
	if !domain.IsSyntheticAppointmentID(apt.AppointmentID) {
		t.Fatalf("appointment id = %q", apt.AppointmentID)
	}
}

func TestReserve_RealFailureIsNeverFaked(t *testing.T) {
	up := &fakeUpstream{reserveErr: transientErr}
	s := newService(up)

	_, err := s.Reserve(context.Background(), "bk-1", "slot-1", "provider-1", validGuest, "")
	if err == nil {
		t.Fatalf("reserve failure against real booking id was swallowed")
	}
	ae, ok := upstream.AsAPIError(err)
	if !ok || ae.StatusCode != 503 {
		t.Fatalf("err = %v; want upstream 503 re-raised", err)
	}
	if up.reserveCalls != 2 {
		t.Fatalf("transient reserve retried %d times; want 2", up.reserveCalls)
	}
	if up.confirmCalls != 0 {
		t.Fatalf("confirm attempted after failed reservation")
	}
}

func TestReserve_ConfirmFailurePropagates(t *testing.T) {
	up := &fakeUpstream{confirmErr: &upstream.APIError{StatusCode: 409, Message: "slot taken"}}
	s := newService(up)

	_, err := s.Reserve(context.Background(), "bk-1", "slot-1", "provider-1", validGuest, "")
	ae, ok := upstream.AsAPIError(err)
	if !ok || ae.StatusCode != 409 {
		t.Fatalf("err = %v; want upstream 409", err)
	}
	if up.confirmCalls != 1 {
		t.Fatalf("409 is permanent; confirm tried %d times", up.confirmCalls)
	}
}

// ----- Cancel -----

func TestCancel(t *testing.T) {
	up := &fakeUpstream{}
	s := newService(up)
	ctx := context.Background()

	if err := s.Cancel(ctx, "", ""); !errors.Is(err, ErrBookingIDRequired) {
		t.Errorf("missing booking id: %v", err)
	}

	if err := s.Cancel(ctx, domain.FallbackBookingPrefix+"svc-1-2025-03-10", "changed plans"); err != nil {
		t.Errorf("fallback cancel: %v", err)
	}
	if err := s.Cancel(ctx, "appointment-xyz", ""); err != nil {
		t.Errorf("synthetic appointment cancel: %v", err)
	}
	if up.cancelCalls != 0 {
		t.Errorf("synthetic ids reached upstream")
	}

	if err := s.Cancel(ctx, "apt-real", "changed plans"); err != nil {
		t.Errorf("real cancel: %v", err)
	}
	if up.cancelledID != "apt-real" {
		t.Errorf("cancelled id = %q", up.cancelledID)
	}

	up.cancelErr = transientErr
	if err := s.Cancel(ctx, "apt-real-2", ""); err == nil {
		t.Errorf("real cancel failure swallowed")
	}
}

// ----- Admin -----

func TestPurgeCache(t *testing.T) {
	up := &fakeUpstream{}
	s := newService(up)
	ctx := context.Background()

	_, _ = s.Services(ctx)
	_, _ = s.Availability(ctx, "svc-1", "2025-03-10", "")

	if n := s.PurgeCache(); n != 2 {
		t.Fatalf("PurgeCache = %d; want 2", n)
	}

	// Catalog is refetched after the purge.
	_, _ = s.Services(ctx)
	if up.servicesCalls != 2 {
		t.Fatalf("purge did not evict catalog entry")
	}
}

// Sanity: the fallback boundary error never leaks from Reserve for real ids.
func TestReserve_NoFallbackBoundaryLeak(t *testing.T) {
	up := &fakeUpstream{reserveErr: transientErr}
	s := newService(up)

	_, err := s.Reserve(context.Background(), "bk-1", "slot-1", "provider-1", validGuest, "")
	if errors.Is(err, fallback.ErrRealBookingID) {
		t.Fatalf("fallback boundary error leaked: %v", err)
	}
}
