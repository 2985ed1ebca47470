package forms

import "fmt"

// Visitor-facing copy. Conflict wording differs per form.
const (
	MsgInvalidEmail = "Please enter a valid email address."

	MsgWaitlistSuccess  = "You're on the list! We'll email you when we launch."
	MsgWaitlistConflict = "This email is already on the waitlist."
	MsgWaitlistFailure  = "Something went wrong. Please try again."

	MsgGiftConflict = "This email has already claimed the gift."
	MsgGiftFailure  = "We couldn't claim your gift right now. Please try again."
)

// MsgGiftEmailed confirms a claim whose code is delivered by email.
const MsgGiftEmailed = "An email with a gift box containing a redeem code has been sent. Check your spam folder if needed."

// GiftSuccessMessage builds the confirmation text. The code is only spelled
// out when the site is configured to reveal it.
func GiftSuccessMessage(code string) string {
	if code == "" {
		return MsgGiftEmailed
	}
	return fmt.Sprintf("Your gift is reserved! Use code %s at checkout on launch day.", code)
}
