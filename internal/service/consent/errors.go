package consent

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSuppressed is returned when the address is on the suppression list
	// or its status could not be verified.
	ErrSuppressed = errors.New("address is suppressed")

	// ErrNoConsentRecord is returned when an explicit-consent template is
	// addressed to an email with no stored consent record.
	ErrNoConsentRecord = errors.New("no consent record found")

	// ErrNoExplicitConsent is returned when a record exists but does not
	// carry an active explicit opt-in.
	ErrNoExplicitConsent = errors.New("no explicit consent")

	// ErrInvalidEmail is returned when an address fails format validation.
	ErrInvalidEmail = errors.New("invalid email address")
)

// ValidationError reports a rejected contact submission.
type ValidationError struct {
	Missing      []string
	EmailInvalid bool
}

func (e *ValidationError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("missing required fields: %s", strings.Join(e.Missing, ", "))
	}
	return "invalid email format"
}
