// Package services contains the booking orchestration logic: the
// availability/reservation state machine and the client-surface flow that
// mirrors it. This file centralizes the service-level error values so the
// handler layer can map them to HTTP statuses consistently.
package services

import "errors"

// Request validation errors (HTTP 400; never retried, never cached).
var (
	// ErrServiceRequired is returned when an availability query lacks a
	// service id.
	ErrServiceRequired = errors.New("serviceId is required")

	// ErrDateRequired is returned when an availability query lacks a date.
	ErrDateRequired = errors.New("date is required")

	// ErrDateInvalid is returned when a date does not parse as YYYY-MM-DD.
	ErrDateInvalid = errors.New("date must be formatted YYYY-MM-DD")

	// ErrDateOutOfRange is returned when a date falls outside the booking
	// window of [today, today + 2 months]. Rejected before any network call.
	ErrDateOutOfRange = errors.New("date is outside the booking window")

	// ErrBookingIDRequired is returned when a reserve or cancel request lacks
	// a booking id.
	ErrBookingIDRequired = errors.New("booking_id is required")

	// ErrSlotRequired is returned when a reserve request lacks a slot id.
	ErrSlotRequired = errors.New("slot_id is required")

	// ErrProviderRequired is returned when a reserve request lacks a
	// provider id.
	ErrProviderRequired = errors.New("provider_id is required")
)

// Flow-ordering errors: the scheduling surface must not skip a phase. All of
// these are raised client-side, before any network call.
var (
	// ErrServiceNotSelected gates date selection and availability loading.
	ErrServiceNotSelected = errors.New("select a service first")

	// ErrDateNotChosen gates availability loading.
	ErrDateNotChosen = errors.New("choose a date first")

	// ErrAvailabilityNotLoaded gates slot selection.
	ErrAvailabilityNotLoaded = errors.New("availability has not been loaded")

	// ErrSlotNotInHold is returned when the chosen slot id is not among the
	// currently loaded candidate slots.
	ErrSlotNotInHold = errors.New("slot is not part of the loaded availability")

	// ErrProviderMismatch is returned when the chosen provider does not match
	// the provider attached to the chosen slot. This is a caller error, not a
	// reason for a new availability round-trip.
	ErrProviderMismatch = errors.New("provider does not match the chosen slot")

	// ErrSlotNotChosen gates guest entry and submission.
	ErrSlotNotChosen = errors.New("choose a slot and provider first")

	// ErrGuestNotSet gates submission.
	ErrGuestNotSet = errors.New("guest contact details are required")
)
