package model

// StatusKind tags a SubmissionStatus.
type StatusKind string

const (
	StatusIdle    StatusKind = "idle"
	StatusPending StatusKind = "pending"
	StatusSuccess StatusKind = "success"
	StatusError   StatusKind = "error"
)

// ErrorKind classifies a failed submission.
type ErrorKind string

const (
	ErrorNone       ErrorKind = ""
	ErrorValidation ErrorKind = "validation"
	ErrorConflict   ErrorKind = "conflict"
	ErrorTransport  ErrorKind = "transport"
)

// SubmissionStatus is the result state of a form: Idle, Pending, Success(message) or Error(kind, message).
type SubmissionStatus struct {
	Kind    StatusKind `json:"state"`
	Error   ErrorKind  `json:"kind,omitempty"`
	Message string     `json:"message,omitempty"`
}

// Idle returns the initial status of a form.
func Idle() SubmissionStatus { return SubmissionStatus{Kind: StatusIdle} }

// Pending marks a submission in flight.
func Pending() SubmissionStatus { return SubmissionStatus{Kind: StatusPending} }

// Success carries the confirmation message shown to the visitor.
func Success(message string) SubmissionStatus {
	return SubmissionStatus{Kind: StatusSuccess, Message: message}
}

// Failure carries an error kind and the message shown to the visitor.
func Failure(kind ErrorKind, message string) SubmissionStatus {
	return SubmissionStatus{Kind: StatusError, Error: kind, Message: message}
}

func (s SubmissionStatus) IsIdle() bool    { return s.Kind == StatusIdle || s.Kind == "" }
func (s SubmissionStatus) IsPending() bool { return s.Kind == StatusPending }
func (s SubmissionStatus) IsSuccess() bool { return s.Kind == StatusSuccess }
func (s SubmissionStatus) IsError() bool   { return s.Kind == StatusError }

// WaitlistFormState is what the page needs to render the waitlist form.
type WaitlistFormState struct {
	Input  string
	Status SubmissionStatus
}

// GiftView is the state of the gift-claim modal.
type GiftView string

const (
	GiftClosed       GiftView = "closed"
	GiftForm         GiftView = "form"
	GiftSubmitting   GiftView = "submitting"
	GiftConfirmation GiftView = "confirmation"
)

// GiftModalState is a snapshot of the gift-claim modal.
type GiftModalState struct {
	View    GiftView
	Input   string
	Message string
	Error   ErrorKind
}

// Open reports whether the modal is visible.
func (g GiftModalState) Open() bool { return g.View != GiftClosed && g.View != "" }

// FAQItem is one question in the accordion.
type FAQItem struct {
	Key      string
	Question string
	Answer   string
	Open     bool
}

// SocialLink is an outbound link in the footer.
type SocialLink struct {
	Platform string
	Label    string
	URL      string
}
