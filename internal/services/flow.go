// Package services – ScheduleFlow
//
// ScheduleFlow is the client-surface mirror of the reservation state machine:
// the step sequence the scheduling widget walks through (service → date →
// slot+provider → contact details → submit). It enforces the same ordering
// and validation rules server-side so a misbehaving client cannot skip a
// phase, and it rejects bad input before any network call is made.
package services

import (
	"context"
	"strings"

	"github.com/radiancemd/go-booking-backend/internal/domain"
)

// Orchestrator is the slice of BookingService the flow drives.
type Orchestrator interface {
	Availability(ctx context.Context, serviceID, date, providerID string) (*domain.BookingHold, error)
	Reserve(ctx context.Context, bookingID, slotID, providerID string, guest domain.Guest, notes string) (*domain.Appointment, error)
}

// ScheduleFlow tracks one booking attempt through its phases. It is not safe
// for concurrent use; each booking attempt gets its own flow.
type ScheduleFlow struct {
	orch Orchestrator

	serviceID    string
	date         string
	providerPref string

	hold       *domain.BookingHold
	slotID     string
	providerID string

	guest *domain.Guest
	notes string
}

// NewScheduleFlow starts a fresh flow against orch.
func NewScheduleFlow(orch Orchestrator) *ScheduleFlow {
	return &ScheduleFlow{orch: orch}
}

// SelectService enters the initial phase. A provider preference may be set
// alongside; it narrows the availability query later.
func (f *ScheduleFlow) SelectService(serviceID, providerPref string) error {
	if strings.TrimSpace(serviceID) == "" {
		return ErrServiceRequired
	}
	f.serviceID = serviceID
	f.providerPref = providerPref
	// Changing the service resets every later phase.
	f.date = ""
	f.resetSelection()
	return nil
}

// ChooseDate records the target date. Date selection is disabled until a
// service is chosen.
func (f *ScheduleFlow) ChooseDate(date string) error {
	if f.serviceID == "" {
		return ErrServiceNotSelected
	}
	if strings.TrimSpace(date) == "" {
		return ErrDateRequired
	}
	f.date = date
	f.resetSelection()
	return nil
}

// LoadAvailability asks the orchestrator for candidate slots. It refuses to
// issue the request until both a service and a date are present.
func (f *ScheduleFlow) LoadAvailability(ctx context.Context) (*domain.BookingHold, error) {
	if f.serviceID == "" {
		return nil, ErrServiceNotSelected
	}
	if f.date == "" {
		return nil, ErrDateNotChosen
	}
	hold, err := f.orch.Availability(ctx, f.serviceID, f.date, f.providerPref)
	if err != nil {
		return nil, err
	}
	f.hold = hold
	return hold, nil
}

// ChooseSlot picks one of the loaded candidate slots. The slot must belong to
// the loaded hold and the provider must be the one attached to that slot;
// violating either is a caller error, not a new network round-trip.
func (f *ScheduleFlow) ChooseSlot(slotID, providerID string) error {
	if f.hold == nil {
		return ErrAvailabilityNotLoaded
	}
	if strings.TrimSpace(providerID) == "" {
		return ErrProviderRequired
	}
	for _, s := range f.hold.Slots {
		if s.ID != slotID {
			continue
		}
		if s.ProviderID != providerID {
			return ErrProviderMismatch
		}
		f.slotID = slotID
		f.providerID = providerID
		return nil
	}
	return ErrSlotNotInHold
}

// SetGuest records validated, normalized contact details. Submission stays
// disabled until every field passes the widget's pattern rules.
func (f *ScheduleFlow) SetGuest(g domain.Guest, notes string) error {
	if f.slotID == "" {
		return ErrSlotNotChosen
	}
	if err := g.Validate(); err != nil {
		return err
	}
	n := g.Normalized()
	f.guest = &n
	f.notes = notes
	return nil
}

// Submit sends the reservation. It is the only flow method besides
// LoadAvailability that touches the network.
func (f *ScheduleFlow) Submit(ctx context.Context) (*domain.Appointment, error) {
	if f.guest == nil {
		return nil, ErrGuestNotSet
	}
	return f.orch.Reserve(ctx, f.hold.BookingID, f.slotID, f.providerID, *f.guest, f.notes)
}

// resetSelection clears the phases downstream of date selection.
func (f *ScheduleFlow) resetSelection() {
	f.hold = nil
	f.slotID = ""
	f.providerID = ""
	f.guest = nil
	f.notes = ""
}
