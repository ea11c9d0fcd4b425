// Booking HTTP handlers.
//
// This file exposes the single public booking endpoint the website widget
// talks to, multiplexed on an `action` parameter:
//   - GET  /booking?action=services
//   - GET  /booking?action=providers
//   - GET  /booking?action=availability&serviceId=&date=&providerId=
//   - POST /booking {"action":"reserve", ...}
//   - POST /booking {"action":"cancel", ...}
//
// plus the operator endpoint POST /admin/cache/purge.
//
// Handlers are transport-thin: they validate input, call the booking
// orchestrator, and translate results into HTTP responses. Reserve requests
// carrying an Idempotency-Key are replayed from the receipt store when the
// same key was already completed.
package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/radiancemd/go-booking-backend/internal/domain"
	"github.com/radiancemd/go-booking-backend/internal/http/middleware"
)

//
// Service contracts (context-aware)
//

// BookingOrchestrator defines the booking operations consumed by HTTP
// handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type BookingOrchestrator interface {
	// Services returns the treatment catalog (cached; degrades to fallback).
	Services(ctx context.Context) ([]domain.Service, error)
	// Providers returns the practitioner catalog (cached; degrades to fallback).
	Providers(ctx context.Context) ([]domain.Provider, error)
	// Availability returns a booking hold with candidate slots for a query.
	Availability(ctx context.Context, serviceID, date, providerID string) (*domain.BookingHold, error)
	// Reserve runs the two-phase reserve+confirm sequence.
	Reserve(ctx context.Context, bookingID, slotID, providerID string, guest domain.Guest, notes string) (*domain.Appointment, error)
	// Cancel cancels an appointment or hold.
	Cancel(ctx context.Context, bookingID, reason string) error
	// PurgeCache drops every cached entry and reports how many were removed.
	PurgeCache() int
}

// ReceiptStore persists reservation receipts for Idempotency-Key replays.
//
// Implementations must scope receipts to (clientID, key) and treat receipts
// past their expiry as absent.
type ReceiptStore interface {
	// Find returns the still-valid receipt for (clientID, key), or nil.
	Find(ctx context.Context, clientID, key string, now time.Time) (*domain.ReservationReceipt, error)
	// Save stores a new receipt.
	Save(ctx context.Context, r *domain.ReservationReceipt) error
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints of the booking surface. It depends on
// abstract interfaces to keep transport concerns separate from orchestration
// logic.
type Handlers struct {
	svc        BookingOrchestrator
	receipts   ReceiptStore // nil disables idempotent replay
	receiptTTL time.Duration
}

// New constructs a Handlers instance bound to the given orchestrator.
// receipts may be nil; reserve requests then ignore Idempotency-Key headers.
func New(svc BookingOrchestrator, receipts ReceiptStore, receiptTTL time.Duration) *Handlers {
	if receiptTTL <= 0 {
		receiptTTL = 24 * time.Hour
	}
	return &Handlers{svc: svc, receipts: receipts, receiptTTL: receiptTTL}
}

//
// DTOs
//

// GuestPayload carries the guest's contact details in reserve requests.
type GuestPayload struct {
	FirstName string `json:"firstName" example:"Jane"`
	LastName  string `json:"lastName" example:"Doe"`
	Email     string `json:"email" example:"jane.doe@example.com"`
	Phone     string `json:"phone" example:"+1 555 012 3456"`
}

// BookingActionRequest is the JSON payload for POST /booking. The action
// field selects the operation; remaining fields apply per action.
type BookingActionRequest struct {
	Action     string       `json:"action" binding:"required" example:"reserve"`
	BookingID  string       `json:"booking_id" example:"bk-20260301-1234"`
	SlotID     string       `json:"slot_id" example:"slot-20260301-0900"`
	ProviderID string       `json:"provider_id" example:"provider-1"`
	Guest      GuestPayload `json:"guest"`
	Notes      string       `json:"notes" example:"first visit"`
	Reason     string       `json:"reason" example:"schedule conflict"`
}

// ServicesResponse wraps the treatment catalog.
type ServicesResponse struct {
	Services []domain.Service `json:"services"`
}

// ProvidersResponse wraps the practitioner catalog.
type ProvidersResponse struct {
	Providers []domain.Provider `json:"providers"`
}

// AvailabilityResponse carries the hold id and its candidate slots.
type AvailabilityResponse struct {
	BookingID    string        `json:"booking_id"`
	Availability []domain.Slot `json:"availability"`
}

// ReserveResponse reports a confirmed appointment.
type ReserveResponse struct {
	Success     bool               `json:"success"`
	Appointment domain.Appointment `json:"appointment"`
}

// CancelResponse acknowledges a cancellation.
type CancelResponse struct {
	Success bool `json:"success"`
}

// PurgeResponse reports how many cache entries were dropped.
type PurgeResponse struct {
	Purged int `json:"purged"`
}

//
// Handlers
//

// BookingGET godoc
// @ID          bookingGET
// @Summary     Query booking data
// @Description Multiplexed read endpoint: action=services lists treatments, action=providers lists practitioners, action=availability returns candidate slots for a service on a date.
// @Tags        Booking
// @Produce     json
//
// @Param       action      query  string  true  "Operation"  Enums(services, providers, availability)
// @Param       serviceId   query  string  false "Service id (availability only)"  example(svc-1)
// @Param       date        query  string  false "Target date YYYY-MM-DD (availability only)"  example(2026-09-15)
// @Param       providerId  query  string  false "Preferred provider (availability only)"  example(provider-1)
//
// @Success     200  {object}  handlers.AvailabilityResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Missing or invalid parameters"
// @Failure     401  {object}  handlers.ErrorResponse  "Provider credentials rejected"
// @Failure     429  {object}  handlers.ErrorResponse  "Rate limit exceeded"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /booking [get]
func (h *Handlers) BookingGET(c *gin.Context) {
	ctx := c.Request.Context()

	switch c.Query("action") {
	case "services":
		list, err := h.svc.Services(ctx)
		if err != nil {
			failFromError(c, err)
			return
		}
		ok(c, http.StatusOK, ServicesResponse{Services: list})

	case "providers":
		list, err := h.svc.Providers(ctx)
		if err != nil {
			failFromError(c, err)
			return
		}
		ok(c, http.StatusOK, ProvidersResponse{Providers: list})

	case "availability":
		hold, err := h.svc.Availability(ctx, c.Query("serviceId"), c.Query("date"), c.Query("providerId"))
		if err != nil {
			failFromError(c, err)
			return
		}
		ok(c, http.StatusOK, AvailabilityResponse{BookingID: hold.BookingID, Availability: hold.Slots})

	default:
		fail(c, http.StatusBadRequest, "unknown action; expected services, providers or availability", "")
	}
}

// BookingPOST godoc
// @ID          bookingPOST
// @Summary     Reserve or cancel an appointment
// @Description Multiplexed write endpoint: action=reserve runs the two-phase reserve+confirm sequence for a chosen slot, action=cancel cancels a booking. Reserve honors the Idempotency-Key header: a previously completed key replays the stored appointment.
// @Tags        Booking
// @Accept      json
// @Produce     json
//
// @Param       Idempotency-Key  header  string  false  "Dedupe key for reserve retries"  example(widget-7:f81d4fae)
// @Param       body  body  handlers.BookingActionRequest  true  "Action payload"
//
// @Success     200  {object}  handlers.ReserveResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Missing or invalid fields"
// @Failure     401  {object}  handlers.ErrorResponse  "Provider credentials rejected"
// @Failure     409  {object}  handlers.ErrorResponse  "Slot no longer available"
// @Failure     429  {object}  handlers.ErrorResponse  "Rate limit exceeded"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /booking [post]
func (h *Handlers) BookingPOST(c *gin.Context) {
	var req BookingActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid JSON body", "")
		return
	}

	switch req.Action {
	case "reserve":
		h.reserve(c, req)
	case "cancel":
		h.cancel(c, req)
	default:
		fail(c, http.StatusBadRequest, "unknown action; expected reserve or cancel", "")
	}
}

// reserve serves action=reserve, including Idempotency-Key replays.
func (h *Handlers) reserve(c *gin.Context, req BookingActionRequest) {
	ctx := c.Request.Context()
	guest := domain.Guest{
		FirstName: strings.TrimSpace(req.Guest.FirstName),
		LastName:  strings.TrimSpace(req.Guest.LastName),
		Email:     strings.TrimSpace(req.Guest.Email),
		Phone:     strings.TrimSpace(req.Guest.Phone),
	}

	key, hasKey := middleware.GetIdempotencyKey(c)
	clientID := middleware.ClientIDFromCtx(c)

	if hasKey && h.receipts != nil {
		if r, err := h.receipts.Find(ctx, clientID, key, time.Now().UTC()); err == nil && r != nil {
			// Receipts hold no guest contact details, so the replayed request's
			// guest block fills the appointment. It gets the same validation as
			// a fresh reservation: a replay must not relax the 400 contract.
			if err := guest.Validate(); err != nil {
				failFromError(c, err)
				return
			}
			lg := middleware.LoggerFrom(c)
			lg.Info().Str("appointment_id", r.AppointmentID).Msg("replaying reservation receipt")
			ok(c, http.StatusOK, ReserveResponse{
				Success: true,
				Appointment: domain.Appointment{
					AppointmentID:    r.AppointmentID,
					ConfirmationCode: r.ConfirmationCode,
					ServiceName:      r.ServiceName,
					ProviderName:     r.ProviderName,
					Date:             r.Date,
					Guest:            guest.Normalized(),
				},
			})
			return
		}
	}

	apt, err := h.svc.Reserve(ctx, req.BookingID, req.SlotID, req.ProviderID, guest, req.Notes)
	if err != nil {
		failFromError(c, err)
		return
	}

	if hasKey && h.receipts != nil {
		now := time.Now().UTC()
		// Best effort: a failed receipt write must not fail the reservation.
		if err := h.receipts.Save(ctx, &domain.ReservationReceipt{
			ID:               uuid.NewString(),
			ClientID:         clientID,
			Key:              key,
			BookingID:        req.BookingID,
			AppointmentID:    apt.AppointmentID,
			ConfirmationCode: apt.ConfirmationCode,
			ServiceName:      apt.ServiceName,
			ProviderName:     apt.ProviderName,
			Date:             apt.Date,
			CreatedAt:        now,
			ExpiresAt:        now.Add(h.receiptTTL),
		}); err != nil {
			middleware.LoggerFrom(c).Warn().Err(err).Msg("reservation receipt not persisted")
		}
	}

	ok(c, http.StatusOK, ReserveResponse{Success: true, Appointment: *apt})
}

// cancel serves action=cancel.
func (h *Handlers) cancel(c *gin.Context, req BookingActionRequest) {
	if err := h.svc.Cancel(c.Request.Context(), req.BookingID, req.Reason); err != nil {
		failFromError(c, err)
		return
	}
	ok(c, http.StatusOK, CancelResponse{Success: true})
}

// PurgeCache godoc
// @ID          purgeCache
// @Summary     Drop all cached booking data
// @Description Invalidates every cached catalog and availability entry so the next requests refetch from the provider. Operator endpoint.
// @Tags        Admin
// @Produce     json
//
// @Success     200  {object}  handlers.PurgeResponse
// @Router      /admin/cache/purge [post]
func (h *Handlers) PurgeCache(c *gin.Context) {
	n := h.svc.PurgeCache()
	middleware.LoggerFrom(c).Info().Int("purged", n).Msg("booking cache purged")
	ok(c, http.StatusOK, PurgeResponse{Purged: n})
}
