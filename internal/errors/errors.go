// Package errors defines typed errors with categories for user-friendly reporting.
// Every failure that crosses the transport boundary is an *E carrying one of three
// kinds: a transport failure (network, timeout), a server error (non-2xx response,
// optionally with a structured detail message), or a cancellation.
//
// Components above the transport let these errors propagate unmodified; only the
// presentation layer turns them into text via UserMessage.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// TransportFailure indicates the request never produced an HTTP response
	// (DNS, refused connection, TLS, timeout).
	TransportFailure Kind = "transport_failure"
	// ServerError indicates the backend answered with a non-2xx status.
	ServerError Kind = "server_error"
	// Canceled indicates the caller abandoned the request.
	Canceled Kind = "canceled"
)

// GenericMessage is shown when neither a server detail nor an error text is available.
const GenericMessage = "An error occurred"

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind Kind
	// Message is the server-provided detail for ServerError, or a short
	// description of the failed operation otherwise.
	Message string
	// Status is the HTTP status code for ServerError, zero otherwise.
	Status int
	Err    error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// Server builds a ServerError for the given status. An empty detail falls back to
// the canonical status text.
func Server(status int, detail string) *E {
	msg := strings.TrimSpace(detail)
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &E{Kind: ServerError, Message: msg, Status: status}
}

// KindOf returns the kind of the first *E in err's chain, or "" when there is none.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsCanceled reports whether err represents a user-initiated cancellation.
func IsCanceled(err error) bool {
	return KindOf(err) == Canceled
}

// StatusOf returns the HTTP status carried by a ServerError, or zero.
func StatusOf(err error) int {
	var e *E
	if stderrors.As(err, &e) {
		return e.Status
	}
	return 0
}

// UserMessage returns the text to show a user for err: the server-provided detail
// when present, the error text otherwise, and a generic message as last resort.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *E
	if stderrors.As(err, &e) {
		if e.Kind == ServerError && e.Message != "" {
			return e.Message
		}
		if e.Err != nil && e.Err.Error() != "" {
			return e.Err.Error()
		}
		if e.Message != "" {
			return e.Message
		}
		return GenericMessage
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return GenericMessage
}
