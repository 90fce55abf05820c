package suppression

import "errors"

// Sentinel errors for the suppression service layer.
var (
	ErrEmptyEmail = errors.New("email is required")
)

// UnverifiableReason is reported when the store cannot be reached and the
// check fails closed.
const UnverifiableReason = "suppression status unavailable - blocked for safety"
