package forms

import (
	"context"
	"sync"

	"github.com/Its-donkey/coming-soon/internal/storage"
	"github.com/Its-donkey/coming-soon/internal/ui/model"
	"github.com/Its-donkey/coming-soon/logging"
)

// ClaimResult is the outcome of SubmitClaim.
type ClaimResult struct {
	OK      bool            `json:"ok"`
	Kind    model.ErrorKind `json:"kind,omitempty"`
	Message string          `json:"message"`
	View    model.GiftView  `json:"view"`
}

// GiftClaim drives the gift modal through Closed, Form, Submitting and
// Confirmation. Closing and reopening always lands on Form.
type GiftClaim struct {
	store    storage.EmailStore
	logger   *logging.Logger
	giftCode string

	mu    sync.Mutex
	state model.GiftModalState
	// generation changes on every open/close so a late insert result does
	// not overwrite a modal the visitor has since closed or reopened.
	generation uint64
}

// NewGiftClaim returns a closed gift modal backed by store.
func NewGiftClaim(store storage.EmailStore, logger *logging.Logger, giftCode string) *GiftClaim {
	if logger == nil {
		logger = logging.Discard()
	}
	return &GiftClaim{
		store:    store,
		logger:   logger,
		giftCode: giftCode,
		state:    model.GiftModalState{View: model.GiftClosed},
	}
}

// State returns a snapshot of the modal.
func (g *GiftClaim) State() model.GiftModalState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// OpenModal clears any previous message and shows the form.
func (g *GiftClaim) OpenModal() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.generation++
	g.state = model.GiftModalState{View: model.GiftForm}
}

// CloseModal hides the modal from any state.
func (g *GiftClaim) CloseModal() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.generation++
	g.state = model.GiftModalState{View: model.GiftClosed}
}

// SubmitClaim validates raw and inserts it into the gift table. It is only
// accepted while the form is shown; a closed modal yields ErrModalClosed and
// a pending claim yields ErrSubmissionInFlight. Once confirmed, further
// submits return the confirmation unchanged.
func (g *GiftClaim) SubmitClaim(ctx context.Context, raw string) (ClaimResult, error) {
	g.mu.Lock()
	switch g.state.View {
	case model.GiftForm:
	case model.GiftSubmitting:
		g.mu.Unlock()
		return ClaimResult{View: model.GiftSubmitting}, ErrSubmissionInFlight
	case model.GiftConfirmation:
		result := ClaimResult{OK: true, Message: g.state.Message, View: model.GiftConfirmation}
		g.mu.Unlock()
		return result, nil
	default:
		g.mu.Unlock()
		return ClaimResult{View: model.GiftClosed}, ErrModalClosed
	}

	email := NormalizeEmail(raw)
	if !ValidEmail(email) {
		g.state = model.GiftModalState{
			View:    model.GiftForm,
			Input:   email,
			Message: MsgInvalidEmail,
			Error:   model.ErrorValidation,
		}
		g.mu.Unlock()
		return ClaimResult{Kind: model.ErrorValidation, Message: MsgInvalidEmail, View: model.GiftForm}, nil
	}
	g.state = model.GiftModalState{View: model.GiftSubmitting, Input: email}
	gen := g.generation
	g.mu.Unlock()

	err := g.insert(ctx, email)

	log := g.logger.FromContext(ctx).WithCategory("gift").WithField("domain", emailDomain(email))
	var next model.GiftModalState
	var result ClaimResult
	switch {
	case err == nil:
		msg := GiftSuccessMessage(g.giftCode)
		next = model.GiftModalState{View: model.GiftConfirmation, Message: msg}
		result = ClaimResult{OK: true, Message: msg, View: model.GiftConfirmation}
		log.WithField("store", g.store.Name()).Info("gift claimed")
	case storage.IsConflict(err):
		next = model.GiftModalState{View: model.GiftForm, Input: email, Message: MsgGiftConflict, Error: model.ErrorConflict}
		result = ClaimResult{Kind: model.ErrorConflict, Message: MsgGiftConflict, View: model.GiftForm}
		log.Info("gift already claimed")
	default:
		next = model.GiftModalState{View: model.GiftForm, Input: email, Message: MsgGiftFailure, Error: model.ErrorTransport}
		result = ClaimResult{Kind: model.ErrorTransport, Message: MsgGiftFailure, View: model.GiftForm}
		log.Error("gift claim insert failed", err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.generation == gen {
		g.state = next
	} else {
		result.View = g.state.View
	}
	return result, nil
}

func (g *GiftClaim) insert(ctx context.Context, email string) error {
	if g.store == nil {
		return errNoStore
	}
	return g.store.Insert(ctx, storage.TableGiftEligible, email)
}
