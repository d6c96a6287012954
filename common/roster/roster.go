// Package roster loads the employee records an actor is allowed to see.
package roster

import (
	"context"
	"errors"

	"github.com/orgspace-systems/orgspace-stack/common/access"
	"github.com/orgspace-systems/orgspace-stack/common/gateway"
	"github.com/orgspace-systems/orgspace-stack/common/records"
)

// Source is the part of the record API the roster needs.
type Source interface {
	ListUsers(ctx context.Context, creds gateway.Credentials, departmentID string) ([]records.Employee, error)
	Profile(ctx context.Context, creds gateway.Credentials) (*records.Employee, error)
}

// Loader fetches and scopes employee lists.
type Loader struct {
	source Source
}

// NewLoader creates a Loader over source.
func NewLoader(source Source) *Loader {
	return &Loader{source: source}
}

// Load returns the employees actor may see. ADMIN and HR get the full list.
// A MANAGER gets a department-filtered list, falling back to the full list
// when the department query is rejected. Everyone else gets their own
// profile. The result is always passed through access.ScopeForActor, so a
// server that returns too much never widens what the actor sees.
func (l *Loader) Load(ctx context.Context, creds gateway.Credentials, actor records.Actor) ([]records.Employee, error) {
	var list []records.Employee
	var err error

	switch actor.Role {
	case records.RoleAdmin, records.RoleHR:
		list, err = l.source.ListUsers(ctx, creds, "")
	case records.RoleManager:
		list, err = l.loadDepartment(ctx, creds, actor)
	default:
		var me *records.Employee
		me, err = l.source.Profile(ctx, creds)
		if me != nil {
			list = []records.Employee{*me}
		}
	}
	if err != nil {
		return nil, err
	}
	return access.ScopeForActor(actor, list), nil
}

func (l *Loader) loadDepartment(ctx context.Context, creds gateway.Credentials, actor records.Actor) ([]records.Employee, error) {
	dept := records.RefID(actor.Department)
	if dept == "" {
		me, err := l.source.Profile(ctx, creds)
		if err != nil {
			return nil, err
		}
		return []records.Employee{*me}, nil
	}

	list, err := l.source.ListUsers(ctx, creds, dept)
	var remote *gateway.RemoteError
	if errors.As(err, &remote) || errors.Is(err, gateway.ErrForbidden) {
		// Any refusal of the department query; session and transport
		// failures are not retried.
		return l.source.ListUsers(ctx, creds, "")
	}
	return list, err
}

// Find returns the employee with id from the actor's scope.
func (l *Loader) Find(ctx context.Context, creds gateway.Credentials, actor records.Actor, id string) (*records.Employee, error) {
	list, err := l.Load(ctx, creds, actor)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID == id {
			return &list[i], nil
		}
	}
	return nil, ErrNotFound
}

// ErrNotFound means the record is absent or outside the actor's scope.
var ErrNotFound = errors.New("employee not found")
