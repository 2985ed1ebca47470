package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Its-donkey/coming-soon/internal/ui/forms"
)

func (s *server) handleWaitlistSubmit(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	visitor := s.visitorFor(w, r)
	if _, err := visitor.Waitlist.Submit(r.Context(), r.PostForm.Get("email")); err != nil && !errors.Is(err, forms.ErrSubmissionInFlight) {
		s.logger.FromContext(r.Context()).WithCategory("waitlist").Error("waitlist submit", err)
	}
	redirectTo(w, r, "/#waitlist")
}

func (s *server) handleGiftOpen(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	s.visitorFor(w, r).Gift.OpenModal()
	redirectTo(w, r, "/#gift")
}

func (s *server) handleGiftClose(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	s.visitorFor(w, r).Gift.CloseModal()
	redirectTo(w, r, "/")
}

func (s *server) handleGiftClaim(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	visitor := s.visitorFor(w, r)
	_, err := visitor.Gift.SubmitClaim(r.Context(), r.PostForm.Get("email"))
	switch {
	case errors.Is(err, forms.ErrModalClosed):
		redirectTo(w, r, "/")
		return
	case err != nil && !errors.Is(err, forms.ErrSubmissionInFlight):
		s.logger.FromContext(r.Context()).WithCategory("gift").Error("gift claim", err)
	}
	redirectTo(w, r, "/#gift")
}

func (s *server) handleFAQToggle(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	key := strings.TrimSpace(r.PostForm.Get("key"))
	if !s.knownFAQKey(key) {
		http.Error(w, "unknown question", http.StatusBadRequest)
		return
	}
	s.visitorFor(w, r).FAQ.Toggle(key)
	redirectTo(w, r, "/#faq")
}
