package forms

import (
	"context"
	"errors"
	"sync"

	"github.com/Its-donkey/coming-soon/internal/storage"
	"github.com/Its-donkey/coming-soon/internal/ui/model"
	"github.com/Its-donkey/coming-soon/logging"
)

var errNoStore = errors.New("forms: email store not configured")

// Waitlist owns the waitlist form: its input, its status and the submission
// to the subscribers table.
type Waitlist struct {
	store  storage.EmailStore
	logger *logging.Logger

	mu     sync.Mutex
	input  string
	status model.SubmissionStatus
}

// NewWaitlist returns an idle waitlist form backed by store.
func NewWaitlist(store storage.EmailStore, logger *logging.Logger) *Waitlist {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Waitlist{
		store:  store,
		logger: logger,
		status: model.Idle(),
	}
}

// State returns the current input and status.
func (w *Waitlist) State() model.WaitlistFormState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return model.WaitlistFormState{Input: w.input, Status: w.status}
}

// Status returns the current submission status.
func (w *Waitlist) Status() model.SubmissionStatus {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// Input returns the last submitted value. It is cleared after a successful submit.
func (w *Waitlist) Input() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.input
}

// Reset clears the input and returns the form to Idle unless a submission is in flight.
func (w *Waitlist) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.status.IsPending() {
		return
	}
	w.input = ""
	w.status = model.Idle()
}

// Submit validates raw and inserts it into the subscribers table. Invalid
// input never reaches the store. A second Submit while one is pending
// returns ErrSubmissionInFlight with the pending status.
func (w *Waitlist) Submit(ctx context.Context, raw string) (model.SubmissionStatus, error) {
	w.mu.Lock()
	if w.status.IsPending() {
		status := w.status
		w.mu.Unlock()
		return status, ErrSubmissionInFlight
	}
	email := NormalizeEmail(raw)
	w.input = email
	if !ValidEmail(email) {
		w.status = model.Failure(model.ErrorValidation, MsgInvalidEmail)
		status := w.status
		w.mu.Unlock()
		return status, nil
	}
	w.status = model.Pending()
	w.mu.Unlock()

	err := w.insert(ctx, email)

	w.mu.Lock()
	defer w.mu.Unlock()
	log := w.logger.FromContext(ctx).WithCategory("waitlist").WithField("domain", emailDomain(email))
	switch {
	case err == nil:
		w.input = ""
		w.status = model.Success(MsgWaitlistSuccess)
		log.WithField("store", w.store.Name()).Info("subscriber added")
	case storage.IsConflict(err):
		w.status = model.Failure(model.ErrorConflict, MsgWaitlistConflict)
		log.Info("subscriber already on waitlist")
	default:
		w.status = model.Failure(model.ErrorTransport, MsgWaitlistFailure)
		log.Error("subscriber insert failed", err)
	}
	return w.status, nil
}

func (w *Waitlist) insert(ctx context.Context, email string) error {
	if w.store == nil {
		return errNoStore
	}
	return w.store.Insert(ctx, storage.TableSubscribers, email)
}
