package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/orgspace-systems/orgspace-stack/common/access"
)

var (
	// ErrNoSession is returned before any request is sent when an
	// authenticated call has no credential.
	ErrNoSession = errors.New("not signed in")
	// ErrSessionExpired is returned when the record API rejects the credential.
	ErrSessionExpired = errors.New("session expired, please sign in again")
	// ErrForbidden is returned when the record API refuses the actor.
	ErrForbidden = access.ErrForbidden
)

// CodeMalformedResponse marks a response that did not match the expected
// record contract.
const CodeMalformedResponse = "malformed_response"

// RemoteError is a non-success response from the record API. Message is the
// server's own message, shown to the user unchanged.
type RemoteError struct {
	Status  int
	Code    string
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}

// TransportError means the record API could not be reached.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: cannot reach server: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// errorFromResponse maps a non-2xx status and body onto the error taxonomy.
// A public call carries no credential, so a 401 there is a plain rejection
// such as wrong sign-in details.
func errorFromResponse(status int, body []byte, public bool) error {
	msg := serverMessage(body)
	switch {
	case public:
	case status == http.StatusUnauthorized:
		if msg != "" {
			return fmt.Errorf("%w: %s", ErrSessionExpired, msg)
		}
		return ErrSessionExpired
	case status == http.StatusForbidden:
		if msg != "" {
			return fmt.Errorf("%w: %s", ErrForbidden, msg)
		}
		return ErrForbidden
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &RemoteError{Status: status, Message: msg}
}

const maxPlainMessage = 500

// serverMessage extracts the human-readable message from an error body.
// The record API sends {"message": "..."} or {"message": ["...", "..."]},
// sometimes with an "error" field; anything else is used as plain text.
func serverMessage(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return ""
	}

	var payload struct {
		Message json.RawMessage `json:"message"`
		Error   string          `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		if len(trimmed) > maxPlainMessage {
			trimmed = trimmed[:maxPlainMessage]
		}
		return trimmed
	}

	if len(payload.Message) > 0 {
		var s string
		if json.Unmarshal(payload.Message, &s) == nil && s != "" {
			return s
		}
		var list []string
		if json.Unmarshal(payload.Message, &list) == nil && len(list) > 0 {
			return strings.Join(list, ", ")
		}
	}
	return payload.Error
}
