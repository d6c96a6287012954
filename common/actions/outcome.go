// Package actions runs user-triggered operations against the record API and
// turns their results into outcomes that every surface reports the same way.
package actions

import (
	"context"
	"errors"
	"net/http"

	"github.com/orgspace-systems/orgspace-stack/common/access"
	"github.com/orgspace-systems/orgspace-stack/common/gateway"
	"github.com/orgspace-systems/orgspace-stack/common/records"
	"github.com/orgspace-systems/orgspace-stack/common/roster"
	"github.com/orgspace-systems/orgspace-stack/common/session"
)

// Kind is the category of an action's outcome.
type Kind string

const (
	KindSuccess       Kind = "success"
	KindAuthorization Kind = "authorization"
	KindSession       Kind = "session"
	KindValidation    Kind = "validation"
	KindRemote        Kind = "remote"
	KindTransport     Kind = "transport"
	KindCancelled     Kind = "cancelled"
	KindInternal      Kind = "internal"
)

// MsgCannotReachServer is shown for every transport failure.
const MsgCannotReachServer = "cannot reach server"

// Outcome is the user-visible result of an action.
type Outcome struct {
	Kind    Kind
	Message string
	Status  int
	Fields  map[string]string
}

// OK reports whether the action succeeded.
func (o Outcome) OK() bool {
	return o.Kind == KindSuccess
}

// HTTPStatus is the status an HTTP surface answers with for this outcome.
func (o Outcome) HTTPStatus() int {
	if o.Status == 0 {
		return http.StatusOK
	}
	return o.Status
}

// Classify maps err onto an Outcome. A nil error is a success.
func Classify(err error) Outcome {
	if err == nil {
		return Outcome{Kind: KindSuccess, Status: http.StatusOK}
	}

	var vErr *records.ValidationError
	var remote *gateway.RemoteError
	var transport *gateway.TransportError

	switch {
	case errors.Is(err, ErrCancelled):
		return Outcome{Kind: KindCancelled, Message: "cancelled"}
	case errors.As(err, &vErr):
		return Outcome{Kind: KindValidation, Message: vErr.Error(), Status: http.StatusBadRequest, Fields: vErr.FieldErrors}
	case errors.Is(err, access.ErrForbidden):
		return Outcome{Kind: KindAuthorization, Message: err.Error(), Status: http.StatusForbidden}
	case errors.Is(err, gateway.ErrNoSession), errors.Is(err, gateway.ErrSessionExpired),
		errors.Is(err, session.ErrNotFound), errors.Is(err, session.ErrExpired):
		return Outcome{Kind: KindSession, Message: err.Error(), Status: http.StatusUnauthorized}
	case errors.Is(err, roster.ErrNotFound):
		return Outcome{Kind: KindRemote, Message: err.Error(), Status: http.StatusNotFound}
	case errors.As(err, &remote):
		return Outcome{Kind: KindRemote, Message: remote.Message, Status: remoteStatus(remote.Status)}
	case errors.As(err, &transport):
		return Outcome{Kind: KindTransport, Message: MsgCannotReachServer, Status: http.StatusServiceUnavailable}
	case errors.Is(err, context.DeadlineExceeded):
		return Outcome{Kind: KindTransport, Message: MsgCannotReachServer, Status: http.StatusGatewayTimeout}
	}
	return Outcome{Kind: KindInternal, Message: err.Error(), Status: http.StatusInternalServerError}
}

// remoteStatus passes client errors through and reports anything else as a
// bad gateway.
func remoteStatus(status int) int {
	if status >= 400 && status < 500 {
		return status
	}
	return http.StatusBadGateway
}
