package handlers

import (
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"dpformance-site/pkg/models"
	"dpformance-site/pkg/services"
)

const (
	msgMissingFields = "Missing required fields"
	msgSendFailed    = "Failed to send email"
	msgInvalidBody   = "Invalid request body"
	msgThrottled     = "Too many submissions, please try again later"
)

// ContactHandler relays a contact form submission by email
func (h *Handler) ContactHandler(w http.ResponseWriter, r *http.Request) {
	var sub models.ContactSubmission
	if err := ParseJSON(w, r, &sub); err != nil {
		h.logger.Debug().Err(err).Msg("bad contact payload")
		respondContactError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	_, err := h.contact.Submit(r.Context(), clientKey(r), sub)
	switch {
	case err == nil:
		RespondJSON(w, http.StatusOK, models.ContactResponse{Success: true})
	case errors.Is(err, services.ErrMissingFields):
		respondContactError(w, http.StatusBadRequest, msgMissingFields)
	case errors.Is(err, services.ErrValidation):
		respondContactError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrThrottled):
		if win, ok := h.contact.(interface{ Window() time.Duration }); ok {
			w.Header().Set("Retry-After", strconv.Itoa(int(win.Window().Seconds())))
		}
		respondContactError(w, http.StatusTooManyRequests, msgThrottled)
	default:
		respondContactError(w, http.StatusInternalServerError, msgSendFailed)
	}
}

func respondContactError(w http.ResponseWriter, status int, msg string) {
	RespondJSON(w, status, models.ContactResponse{Success: false, Error: msg})
}

// clientKey identifies the sender for throttling. RealIP middleware has
// already replaced RemoteAddr when a proxy header was present.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
