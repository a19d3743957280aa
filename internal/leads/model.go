// Package leads captures visitor contact information as a side-channel
// event, outside the conversational turn sequence.
package leads

import "strings"

// Record is the transient form state a visitor fills in. It is not
// retained client-side after submission.
type Record struct {
	Name  string
	Email string
	Phone string
}

// Validate requires at least one contact method. Name is optional.
func (r Record) Validate() error {
	if strings.TrimSpace(r.Email) == "" && strings.TrimSpace(r.Phone) == "" {
		return ErrMissingContact
	}
	return nil
}

// Submission is the wire payload sent to the tenant API.
type Submission struct {
	SessionID string `json:"session_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Interest  string `json:"interest"`
}
