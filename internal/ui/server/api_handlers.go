package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/Its-donkey/coming-soon/internal/ui/forms"
	"github.com/Its-donkey/coming-soon/internal/ui/model"
	"github.com/rs/cors"
)

const maxAPIBody = 4 << 10

type emailRequest struct {
	Email string `json:"email"`
}

type giftClaimResponse struct {
	State   model.StatusKind `json:"state"`
	Kind    model.ErrorKind  `json:"kind,omitempty"`
	Message string           `json:"message"`
	View    model.GiftView   `json:"view"`
}

// withCORS applies CORS headers for the configured origins. With no origins
// the handler is returned unchanged and browsers fall back to same-origin.
func (s *server) withCORS(next http.Handler) http.Handler {
	if len(s.cfg.CORSOrigin) == 0 {
		return next
	}
	c := cors.New(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigin,
		AllowedMethods: []string{http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(next)
}

func decodeEmailRequest(w http.ResponseWriter, r *http.Request) (emailRequest, bool) {
	var req emailRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAPIBody))
	if err := dec.Decode(&req); err != nil {
		msg := "invalid JSON body"
		if errors.Is(err, io.EOF) {
			msg = "request body is required"
		}
		respondJSONError(w, http.StatusBadRequest, msg)
		return emailRequest{}, false
	}
	return req, true
}

func statusCodeFor(kind model.ErrorKind) int {
	switch kind {
	case model.ErrorValidation:
		return http.StatusUnprocessableEntity
	case model.ErrorConflict:
		return http.StatusConflict
	case model.ErrorTransport:
		return http.StatusBadGateway
	default:
		return http.StatusCreated
	}
}

func (s *server) handleAPIWaitlist(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	req, ok := decodeEmailRequest(w, r)
	if !ok {
		return
	}

	status, err := forms.NewWaitlist(s.store, s.logger).Submit(r.Context(), req.Email)
	if errors.Is(err, forms.ErrSubmissionInFlight) {
		respondJSON(w, http.StatusTooManyRequests, status)
		return
	}
	respondJSON(w, statusCodeFor(status.Error), status)
}

func (s *server) handleAPIGiftClaim(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	req, ok := decodeEmailRequest(w, r)
	if !ok {
		return
	}

	claim := forms.NewGiftClaim(s.store, s.logger, s.cfg.Site.ConfirmationCode())
	claim.OpenModal()
	result, err := claim.SubmitClaim(r.Context(), req.Email)
	resp := giftClaimResponse{
		State:   model.StatusError,
		Kind:    result.Kind,
		Message: result.Message,
		View:    result.View,
	}
	if result.OK {
		resp.State = model.StatusSuccess
	}
	if errors.Is(err, forms.ErrSubmissionInFlight) {
		resp.State = model.StatusPending
		respondJSON(w, http.StatusTooManyRequests, resp)
		return
	}
	respondJSON(w, statusCodeFor(result.Kind), resp)
}
