// Package fallback synthesizes plausible catalog, availability and
// confirmation data when the upstream booking provider is unreachable, so the
// scheduling widget stays usable during an outage.
//
// The hard boundary: synthetic results are only ever produced for ids this
// package minted itself. Fabricating a confirmed appointment against a real
// upstream booking id would tell a patient they have an appointment that does
// not exist, so those failures are re-raised untouched.
package fallback

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/radiancemd/go-booking-backend/internal/domain"
)

var fallbackActivations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "booking_fallback_activations_total",
		Help: "Degraded-mode responses served, by operation.",
	},
	[]string{"op"},
)

func init() {
	prometheus.MustRegister(fallbackActivations)
}

// ErrRealBookingID is returned when a synthetic confirmation or cancellation
// is requested for an id that was not minted by this package. The caller must
// surface the original upstream failure instead.
var ErrRealBookingID = fmt.Errorf("booking id is not a fallback id; refusing to synthesize a result")

// Synthetic availability shape: one slot per hour, 09:00 through 16:00 start
// times, 60 minutes each.
const (
	dayStartHour = 9
	dayEndHour   = 17
)

// defaultProviderID is assigned to synthetic slots when the caller did not
// pin a provider.
const defaultProviderID = "provider-1"

// Fixed degraded-mode catalogs. Small on purpose: just enough for the widget
// to stay usable.
var (
	services = []domain.Service{
		{ID: "svc-1", Name: "Consultation", DurationMinutes: 30, Price: 0, Category: "general", Description: "Initial consultation with a provider"},
		{ID: "svc-2", Name: "Hydrafacial", DurationMinutes: 60, Price: 195, Category: "facials", Description: "Deep-cleansing hydradermabrasion facial"},
		{ID: "svc-3", Name: "Laser Hair Removal", DurationMinutes: 45, Price: 250, Category: "laser", Description: "Diode laser hair removal session"},
		{ID: "svc-4", Name: "Chemical Peel", DurationMinutes: 45, Price: 150, Category: "facials", Description: "Medical-grade exfoliating peel"},
	}

	providers = []domain.Provider{
		{ID: "provider-1", Name: "Dr. Elena Reyes", Specialties: []string{"injectables", "laser"}, Bio: "Board-certified physician and medical director"},
		{ID: "provider-2", Name: "Maya Chen, RN", Specialties: []string{"facials", "peels"}, Bio: "Registered nurse and senior aesthetician"},
	}
)

// Services returns the fixed degraded-mode treatment catalog.
func Services() []domain.Service {
	fallbackActivations.WithLabelValues("services").Inc()
	out := make([]domain.Service, len(services))
	copy(out, services)
	return out
}

// Providers returns the fixed degraded-mode practitioner catalog.
func Providers() []domain.Provider {
	fallbackActivations.WithLabelValues("providers").Inc()
	out := make([]domain.Provider, len(providers))
	copy(out, providers)
	return out
}

// Availability synthesizes a booking hold with hourly slots from 09:00 to
// 17:00 on the requested date. Output is deterministic for a given
// (serviceID, date, providerID) triple so repeated degraded reads agree.
func Availability(serviceID, date, providerID string) *domain.BookingHold {
	fallbackActivations.WithLabelValues("availability").Inc()
	log.Warn().Str("service_id", serviceID).Str("date", date).Msg("serving synthetic availability")

	pid := providerID
	if pid == "" {
		pid = defaultProviderID
	}
	pname := providerName(pid)

	slots := make([]domain.Slot, 0, dayEndHour-dayStartHour)
	for hour := dayStartHour; hour < dayEndHour; hour++ {
		slots = append(slots, domain.Slot{
			ID:           fmt.Sprintf("fallback-slot-%s-%02d", date, hour),
			StartTime:    fmt.Sprintf("%sT%02d:00:00", date, hour),
			EndTime:      fmt.Sprintf("%sT%02d:00:00", date, hour+1),
			ProviderID:   pid,
			ProviderName: pname,
		})
	}

	return &domain.BookingHold{
		BookingID:  domain.FallbackBookingPrefix + serviceID + "-" + date,
		ServiceID:  serviceID,
		Date:       date,
		ProviderID: providerID,
		Slots:      slots,
	}
}

// Confirm synthesizes a successful appointment for a fallback booking hold.
// For any other ref it returns ErrRealBookingID: the reservation started
// against the real upstream and must not be fabricated.
func Confirm(ref domain.BookingRef, providerID string, guest domain.Guest, _ string) (*domain.Appointment, error) {
	if !ref.Synthetic {
		return nil, ErrRealBookingID
	}
	fallbackActivations.WithLabelValues("confirm").Inc()

	serviceID, date := parseHoldID(ref.ID)
	return &domain.Appointment{
		AppointmentID:    domain.FallbackAppointmentPrefix + uuid.NewString(),
		ConfirmationCode: fmt.Sprintf("CONF%06d", rand.IntN(1_000_000)),
		ServiceName:      serviceName(serviceID),
		ProviderName:     providerName(providerID),
		Date:             date,
		Guest:            guest,
	}, nil
}

// Cancel synthesizes success for ids this package minted (booking holds and
// appointment ids from Confirm); anything else is a real upstream id and the
// error must propagate.
func Cancel(bookingID string) error {
	if !strings.HasPrefix(bookingID, domain.FallbackBookingPrefix) &&
		!domain.IsSyntheticAppointmentID(bookingID) {
		return ErrRealBookingID
	}
	fallbackActivations.WithLabelValues("cancel").Inc()
	return nil
}

// parseHoldID recovers (serviceID, date) from a synthetic hold id of the form
// fallback-booking-<serviceID>-<YYYY-MM-DD>.
func parseHoldID(id string) (serviceID, date string) {
	rest := strings.TrimPrefix(id, domain.FallbackBookingPrefix)
	if len(rest) > 11 && rest[len(rest)-11] == '-' {
		return rest[:len(rest)-11], rest[len(rest)-10:]
	}
	return rest, ""
}

func serviceName(serviceID string) string {
	for _, s := range services {
		if s.ID == serviceID {
			return s.Name
		}
	}
	return "Consultation"
}

func providerName(providerID string) string {
	for _, p := range providers {
		if p.ID == providerID {
			return p.Name
		}
	}
	return "Any available provider"
}
