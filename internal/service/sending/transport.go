package sending

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies a transport failure so callers can react without
// parsing provider error strings.
type ErrorKind string

const (
	// KindThrottled means the provider rejected the message for rate
	// reasons; the send may be retried later.
	KindThrottled ErrorKind = "throttled"
	// KindRejected means the provider refused this specific message or
	// recipient.
	KindRejected ErrorKind = "rejected"
	// KindSuspended means the sending account itself is paused.
	KindSuspended ErrorKind = "suspended"
	// KindUnknown covers everything else.
	KindUnknown ErrorKind = "unknown"
)

// TransportError wraps a provider failure with its classification.
type TransportError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %s", e.Kind, e.Message)
}

func (e *TransportError) Unwrap() error { return e.Err }

// KindOf extracts the classification from an error chain.
func KindOf(err error) ErrorKind {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Kind
	}
	return KindUnknown
}

// Message is one email handed to the transport.
type Message struct {
	To       string
	From     string
	ReplyTo  string
	Subject  string
	Template string
	Data     map[string]string
	Tags     map[string]string
}

// Transport delivers a message through the provider and returns the
// provider-assigned message id.
type Transport interface {
	Send(ctx context.Context, msg *Message) (string, error)
}
