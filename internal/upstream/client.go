// Package upstream implements the HTTP client for the external booking
// provider (the system of record for services, staff and appointments).
//
// Every call is JSON over HTTP with a per-call timeout, an API-key header,
// and an outbound politeness limiter so a burst of site traffic cannot turn
// into a burst against the provider. Retries and fallback behavior live in
// the orchestration layer, not here: this client performs exactly one attempt
// per method call and returns a typed *APIError for non-2xx responses.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/radiancemd/go-booking-backend/internal/domain"
)

var upstreamReqs = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "booking_upstream_requests_total",
		Help: "Calls to the booking provider by operation and outcome.",
	},
	[]string{"op", "outcome"},
)

func init() {
	prometheus.MustRegister(upstreamReqs)
}

// Options configures a Client.
type Options struct {
	// BaseURL is the provider API root, e.g. "https://api.provider.example".
	BaseURL string
	// BusinessID scopes catalog and booking calls to our practice.
	BusinessID string
	// APIKey is sent as X-Api-Key on every request.
	APIKey string
	// Timeout bounds each individual call (default 10s).
	Timeout time.Duration
	// RPS and Burst shape the outbound politeness limiter. RPS <= 0 disables
	// outbound limiting.
	RPS   float64
	Burst int
}

// Client talks to the booking provider. Safe for concurrent use.
type Client struct {
	baseURL    string
	businessID string
	apiKey     string
	httpc      *http.Client
	limiter    *rate.Limiter
}

// New constructs a Client from opts.
func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	var lim *rate.Limiter
	if opts.RPS > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		lim = rate.NewLimiter(rate.Limit(opts.RPS), burst)
	}
	return &Client{
		baseURL:    opts.BaseURL,
		businessID: opts.BusinessID,
		apiKey:     opts.APIKey,
		httpc:      &http.Client{Timeout: timeout},
		limiter:    lim,
	}
}

//
// Wire types (provider-side field names)
//

type serviceDTO struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	DurationMinutes int     `json:"duration_minutes"`
	Price           float64 `json:"price"`
	Category        string  `json:"category"`
	Description     string  `json:"description"`
}

type staffDTO struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Specialties []string `json:"specialties"`
	Bio         string   `json:"bio"`
}

type slotDTO struct {
	ID        string `json:"id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	StaffID   string `json:"staff_id"`
	StaffName string `json:"staff_name"`
}

type createBookingReq struct {
	BusinessID string `json:"business_id"`
	ServiceID  string `json:"service_id"`
	Date       string `json:"date"`
	StaffID    string `json:"staff_id,omitempty"`
}

type createBookingResp struct {
	BookingID string `json:"booking_id"`
}

type reserveReq struct {
	SlotID  string `json:"slot_id"`
	StaffID string `json:"staff_id"`
}

type reserveResp struct {
	Success bool `json:"success"`
}

type confirmReq struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Notes     string `json:"notes,omitempty"`
}

type confirmResp struct {
	AppointmentID    string `json:"appointment_id"`
	ConfirmationCode string `json:"confirmation_code"`
	ServiceName      string `json:"service_name"`
	StaffName        string `json:"staff_name"`
	Date             string `json:"date"`
}

type cancelReq struct {
	Reason string `json:"reason,omitempty"`
}

type apiErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

//
// Operations
//

// ListServices fetches the treatment catalog.
func (c *Client) ListServices(ctx context.Context) ([]domain.Service, error) {
	var out struct {
		Services []serviceDTO `json:"services"`
	}
	if err := c.do(ctx, "list_services", http.MethodGet, "/api/businesses/"+c.businessID+"/services", nil, &out); err != nil {
		return nil, err
	}
	services := make([]domain.Service, 0, len(out.Services))
	for _, s := range out.Services {
		services = append(services, domain.Service{
			ID:              s.ID,
			Name:            s.Name,
			DurationMinutes: s.DurationMinutes,
			Price:           s.Price,
			Category:        s.Category,
			Description:     s.Description,
		})
	}
	return services, nil
}

// ListProviders fetches the practitioner catalog.
func (c *Client) ListProviders(ctx context.Context) ([]domain.Provider, error) {
	var out struct {
		Staff []staffDTO `json:"staff"`
	}
	if err := c.do(ctx, "list_providers", http.MethodGet, "/api/businesses/"+c.businessID+"/staff", nil, &out); err != nil {
		return nil, err
	}
	providers := make([]domain.Provider, 0, len(out.Staff))
	for _, p := range out.Staff {
		providers = append(providers, domain.Provider{
			ID:          p.ID,
			Name:        p.Name,
			Specialties: p.Specialties,
			Bio:         p.Bio,
		})
	}
	return providers, nil
}

// CreateBooking opens a booking hold for a service on a date, optionally
// pinned to one provider, and returns the upstream booking id.
func (c *Client) CreateBooking(ctx context.Context, serviceID, date, providerID string) (string, error) {
	in := createBookingReq{BusinessID: c.businessID, ServiceID: serviceID, Date: date, StaffID: providerID}
	var out createBookingResp
	if err := c.do(ctx, "create_booking", http.MethodPost, "/api/bookings", in, &out); err != nil {
		return "", err
	}
	return out.BookingID, nil
}

// ListSlots returns the candidate slots attached to a booking hold.
func (c *Client) ListSlots(ctx context.Context, bookingID string) ([]domain.Slot, error) {
	var out struct {
		Slots []slotDTO `json:"slots"`
	}
	if err := c.do(ctx, "list_slots", http.MethodGet, "/api/bookings/"+bookingID+"/slots", nil, &out); err != nil {
		return nil, err
	}
	slots := make([]domain.Slot, 0, len(out.Slots))
	for _, s := range out.Slots {
		slots = append(slots, domain.Slot{
			ID:           s.ID,
			StartTime:    s.StartTime,
			EndTime:      s.EndTime,
			ProviderID:   s.StaffID,
			ProviderName: s.StaffName,
		})
	}
	return slots, nil
}

// ReserveSlot reserves one slot of a booking hold. Confirmation is a separate
// call; the two-phase sequence is coordinated by the orchestrator.
func (c *Client) ReserveSlot(ctx context.Context, bookingID, slotID, providerID string) error {
	in := reserveReq{SlotID: slotID, StaffID: providerID}
	var out reserveResp
	if err := c.do(ctx, "reserve_slot", http.MethodPost, "/api/bookings/"+bookingID+"/reserve", in, &out); err != nil {
		return err
	}
	if !out.Success {
		return &APIError{StatusCode: http.StatusConflict, Code: "slot_unavailable", Message: "slot could not be reserved"}
	}
	return nil
}

// ConfirmBooking finalizes a reserved booking with the guest's contact
// details and returns the appointment record.
func (c *Client) ConfirmBooking(ctx context.Context, bookingID string, guest domain.Guest, notes string) (*domain.Appointment, error) {
	in := confirmReq{
		FirstName: guest.FirstName,
		LastName:  guest.LastName,
		Email:     guest.Email,
		Phone:     guest.Phone,
		Notes:     notes,
	}
	var out confirmResp
	if err := c.do(ctx, "confirm_booking", http.MethodPost, "/api/bookings/"+bookingID+"/confirm", in, &out); err != nil {
		return nil, err
	}
	return &domain.Appointment{
		AppointmentID:    out.AppointmentID,
		ConfirmationCode: out.ConfirmationCode,
		ServiceName:      out.ServiceName,
		ProviderName:     out.StaffName,
		Date:             out.Date,
		Guest:            guest,
	}, nil
}

// CancelBooking cancels an upstream booking or appointment.
func (c *Client) CancelBooking(ctx context.Context, bookingID, reason string) error {
	return c.do(ctx, "cancel_booking", http.MethodPost, "/api/bookings/"+bookingID+"/cancel", cancelReq{Reason: reason}, nil)
}

// do performs one JSON round-trip. Non-2xx responses become *APIError; body
// decode targets may be nil for calls without a meaningful response body.
func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", op, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		upstreamReqs.WithLabelValues(op, "network_error").Inc()
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		upstreamReqs.WithLabelValues(op, "error").Inc()
		ae := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var eb apiErrorBody
		if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&eb); err == nil {
			if eb.Code != "" {
				ae.Code = eb.Code
			}
			if eb.Message != "" {
				ae.Message = eb.Message
			}
		}
		return ae
	}

	upstreamReqs.WithLabelValues(op, "ok").Inc()
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", op, err)
	}
	return nil
}
