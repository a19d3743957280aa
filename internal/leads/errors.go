package leads

import "errors"

var (
	// ErrMissingContact is returned when both email and phone are missing
	ErrMissingContact = errors.New("either email or phone is required")

	// ErrSubmitFailed is returned when the backend rejects a lead
	ErrSubmitFailed = errors.New("lead submission failed")
)
