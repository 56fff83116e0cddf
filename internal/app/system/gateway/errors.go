// internal/app/system/gateway/errors.go
package gateway

import (
	"errors"
	"fmt"
	"strings"
)

// SessionExpiredMessage is shown to the user when a call is refused locally.
const SessionExpiredMessage = "Session expired. Please log in again."

// ErrSessionExpired is returned without sending a request when the call
// needs a bearer token and the credential is missing or expired.
var ErrSessionExpired = errors.New("session expired")

// RemoteOperationError carries the messages of a non-empty errors array.
type RemoteOperationError struct {
	Operation string
	Messages  []string
}

func (e *RemoteOperationError) Error() string {
	return strings.Join(e.Messages, ", ")
}

// Contains reports whether any server message contains substr.
func (e *RemoteOperationError) Contains(substr string) bool {
	for _, m := range e.Messages {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

// TransportError is a failure to get a GraphQL envelope back at all.
type TransportError struct {
	Operation string
	Status    int // HTTP status when one was received
	Err       error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: backend returned HTTP %d: %v", e.Operation, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Operation, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Message returns the text to show in a page banner for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrSessionExpired) {
		return SessionExpiredMessage
	}
	var te *TransportError
	if errors.As(err, &te) {
		return "서버와 통신할 수 없습니다. 잠시 후 다시 시도하세요."
	}
	return err.Error()
}

func errorKind(err error) string {
	var roe *RemoteOperationError
	var te *TransportError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrSessionExpired):
		return "session_expired"
	case errors.As(err, &roe):
		return "remote_error"
	case errors.As(err, &te):
		return "transport_error"
	default:
		return "error"
	}
}
