package sending

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoRecipients is returned when a batch call names no recipients.
var ErrNoRecipients = errors.New("no recipients")

// MissingVariablesError rejects a send whose template data is incomplete.
// The whole batch is refused; partial sends with broken personalization are
// worse than no sends.
type MissingVariablesError struct {
	Template string
	Missing  []string
}

func (e *MissingVariablesError) Error() string {
	return fmt.Sprintf("template %s missing variables: %s", e.Template, strings.Join(e.Missing, ", "))
}
