// Package handlers maps service and upstream errors onto HTTP responses.
//
// This file centralizes the error taxonomy of the booking surface:
//   - Validation sentinels from the services package become 400s with the
//     sentinel's message as the `error` field.
//   - Guest contact-detail validation errors from the domain package are
//     likewise 400s.
//   - Upstream authentication failures become 401s so the operator notices a
//     bad or rotated provider key; they are never hidden behind fallback data.
//   - Other upstream *APIError values keep the provider's status code (409 for
//     a lost slot, 422 for a rejected payload, ...) and carry the provider's
//     message in `details`.
//   - Anything else is a 500 with a generic message; internals never leak.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/radiancemd/go-booking-backend/internal/domain"
	"github.com/radiancemd/go-booking-backend/internal/services"
	"github.com/radiancemd/go-booking-backend/internal/upstream"
)

// validationErrs is the set of service and domain sentinels that indicate a
// malformed request rather than a server-side failure.
var validationErrs = []error{
	services.ErrServiceRequired,
	services.ErrDateRequired,
	services.ErrDateInvalid,
	services.ErrDateOutOfRange,
	services.ErrBookingIDRequired,
	services.ErrSlotRequired,
	services.ErrProviderRequired,
	domain.ErrGuestFirstNameRequired,
	domain.ErrGuestLastNameRequired,
	domain.ErrGuestEmailInvalid,
	domain.ErrGuestPhoneInvalid,
}

// isValidation reports whether err is one of the request validation sentinels.
func isValidation(err error) bool {
	for _, v := range validationErrs {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}

// failFromError translates err into the appropriate error envelope and status.
func failFromError(c *gin.Context, err error) {
	switch {
	case isValidation(err):
		fail(c, http.StatusBadRequest, err.Error(), "")
	case upstream.IsAuth(err):
		fail(c, http.StatusUnauthorized, "booking provider rejected our credentials", "")
	default:
		if ae, ok := upstream.AsAPIError(err); ok {
			status := ae.StatusCode
			if status < 400 || status > 599 {
				status = http.StatusInternalServerError
			}
			fail(c, status, "booking provider request failed", ae.Message)
			return
		}
		fail(c, http.StatusInternalServerError, "internal server error", "")
	}
}
