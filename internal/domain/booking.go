// Package domain defines the core booking types exchanged with the upstream
// scheduling provider and returned by the public API. The upstream provider is
// the system of record; none of these types are persisted locally except the
// ReservationReceipt used for idempotent replays.
package domain

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Wire-level markers for synthetic (degraded-mode) identifiers. The public
// contract still carries these prefixes so existing clients keep working, but
// internal code should branch on BookingRef.Synthetic, never on the raw string.
const (
	// FallbackBookingPrefix tags booking holds produced while the upstream
	// provider is unreachable.
	FallbackBookingPrefix = "fallback-booking-"

	// FallbackAppointmentPrefix tags appointment ids minted by the synthetic
	// confirmer. Cancelling such an id must never reach the upstream.
	FallbackAppointmentPrefix = "appointment-"
)

// Service is an immutable upstream catalog entry describing a bookable
// treatment.
type Service struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	DurationMinutes int     `json:"durationMinutes"`
	Price           float64 `json:"price"`
	Category        string  `json:"category"`
	Description     string  `json:"description"`
}

// Provider is an immutable upstream catalog entry describing a practitioner.
type Provider struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Specialties []string `json:"specialties"`
	Bio         string   `json:"bio"`
}

// Slot is one bookable time window for one provider. Slots are immutable once
// produced, whether they came from the upstream or the fallback generator.
type Slot struct {
	ID           string `json:"id"`
	StartTime    string `json:"startTime"`
	EndTime      string `json:"endTime"`
	ProviderID   string `json:"providerId"`
	ProviderName string `json:"providerName"`
}

// BookingHold is a transient, not-yet-finalized reservation context holding
// candidate slots. It lives until a slot is reserved or the hold expires
// upstream; locally it survives only as long as the availability cache TTL.
type BookingHold struct {
	BookingID  string `json:"booking_id"`
	ServiceID  string `json:"serviceId"`
	Date       string `json:"date"`
	ProviderID string `json:"providerId,omitempty"`
	Slots      []Slot `json:"slots"`
}

// Guest carries the end user's contact details for the final confirmation
// step. Validate before submitting.
type Guest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// Appointment is the terminal artifact of a successful booking. It is not
// persisted locally; the upstream provider owns it.
type Appointment struct {
	AppointmentID    string `json:"appointmentId"`
	ConfirmationCode string `json:"confirmationCode"`
	ServiceName      string `json:"serviceName"`
	ProviderName     string `json:"providerName"`
	Date             string `json:"date"`
	Guest            Guest  `json:"guest"`
}

// BookingRef is the tagged handle carried through the reservation state
// machine. Synthetic refs belong to degraded-mode holds and must never be
// confirmed or cancelled against the real upstream.
type BookingRef struct {
	ID        string
	Synthetic bool
}

// ParseBookingRef classifies a wire booking id into a tagged handle.
func ParseBookingRef(id string) BookingRef {
	return BookingRef{ID: id, Synthetic: strings.HasPrefix(id, FallbackBookingPrefix)}
}

// IsSyntheticAppointmentID reports whether an appointment id was minted by the
// synthetic confirmer (as opposed to the upstream provider).
func IsSyntheticAppointmentID(id string) bool {
	return strings.HasPrefix(id, FallbackAppointmentPrefix)
}

var (
	// emailRE mirrors the pattern enforced by the scheduling widget: a single
	// "@", a dot in the host part, no whitespace.
	emailRE = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	// phoneRE accepts digits with optional +, spaces, dots, parentheses and
	// hyphens, at least seven digits overall.
	phoneRE = regexp.MustCompile(`^\+?[0-9 ().-]{7,20}$`)
)

// Validate checks the guest's contact details against the same rules the
// scheduling widget applies client-side. It returns the first violation found.
func (g Guest) Validate() error {
	if strings.TrimSpace(g.FirstName) == "" {
		return ErrGuestFirstNameRequired
	}
	if strings.TrimSpace(g.LastName) == "" {
		return ErrGuestLastNameRequired
	}
	if !emailRE.MatchString(strings.TrimSpace(g.Email)) {
		return ErrGuestEmailInvalid
	}
	if !phoneRE.MatchString(strings.TrimSpace(g.Phone)) {
		return ErrGuestPhoneInvalid
	}
	return nil
}

// nameCaser title-cases guest names for display and upstream submission
// ("mary-anne" -> "Mary-Anne").
var nameCaser = cases.Title(language.English)

// Normalized returns a copy of the guest with trimmed fields and title-cased
// names. Email is lowercased; phone is kept as entered.
func (g Guest) Normalized() Guest {
	return Guest{
		FirstName: nameCaser.String(strings.TrimSpace(g.FirstName)),
		LastName:  nameCaser.String(strings.TrimSpace(g.LastName)),
		Email:     strings.ToLower(strings.TrimSpace(g.Email)),
		Phone:     strings.TrimSpace(g.Phone),
	}
}
