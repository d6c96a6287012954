package gateway

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/orgspace-systems/orgspace-stack/common/records"
)

// ListDepartments returns every department.
func (c *Client) ListDepartments(ctx context.Context, creds Credentials) ([]records.Department, error) {
	return getList[records.Department](ctx, c, call{
		op:     "list departments",
		method: http.MethodGet,
		path:   "/departments",
		creds:  creds,
	})
}

// CreateDepartment creates a department.
func (c *Client) CreateDepartment(ctx context.Context, creds Credentials, in records.DepartmentInput) error {
	return c.mutate(ctx, call{
		op:     "create department",
		method: http.MethodPost,
		path:   "/departments",
		body:   in,
		creds:  creds,
	}, in)
}

// UpdateDepartment edits a department.
func (c *Client) UpdateDepartment(ctx context.Context, creds Credentials, id string, in records.DepartmentInput) error {
	return c.mutate(ctx, call{
		op:     "update department",
		method: http.MethodPut,
		path:   "/departments/" + url.PathEscape(id),
		body:   in,
		creds:  creds,
	}, in)
}

// DeleteDepartment removes a department.
func (c *Client) DeleteDepartment(ctx context.Context, creds Credentials, id string) error {
	return c.mutate(ctx, call{
		op:     "delete department",
		method: http.MethodDelete,
		path:   "/departments/" + url.PathEscape(id),
		creds:  creds,
	}, nil)
}

// ListRooms returns every room.
func (c *Client) ListRooms(ctx context.Context, creds Credentials) ([]records.Room, error) {
	return getList[records.Room](ctx, c, call{
		op:     "list rooms",
		method: http.MethodGet,
		path:   "/rooms",
		creds:  creds,
	})
}

// CreateRoom creates a room.
func (c *Client) CreateRoom(ctx context.Context, creds Credentials, in records.RoomInput) error {
	return c.mutate(ctx, call{
		op:     "create room",
		method: http.MethodPost,
		path:   "/rooms",
		body:   in,
		creds:  creds,
	}, in)
}

// UpdateRoom edits a room.
func (c *Client) UpdateRoom(ctx context.Context, creds Credentials, id string, in records.RoomInput) error {
	return c.mutate(ctx, call{
		op:     "update room",
		method: http.MethodPatch,
		path:   "/rooms/" + url.PathEscape(id),
		body:   in,
		creds:  creds,
	}, in)
}

// DeleteRoom removes a room.
func (c *Client) DeleteRoom(ctx context.Context, creds Credentials, id string) error {
	return c.mutate(ctx, call{
		op:     "delete room",
		method: http.MethodDelete,
		path:   "/rooms/" + url.PathEscape(id),
		creds:  creds,
	}, nil)
}

// BookingScope selects whose bookings to list.
type BookingScope string

const (
	BookingsAll BookingScope = "all"
	BookingsMy  BookingScope = "my"
)

// ListBookings returns bookings for scope.
func (c *Client) ListBookings(ctx context.Context, creds Credentials, scope BookingScope) ([]records.Booking, error) {
	if scope != BookingsMy {
		scope = BookingsAll
	}
	return getList[records.Booking](ctx, c, call{
		op:     "list bookings",
		method: http.MethodGet,
		path:   "/bookings",
		query:  url.Values{"type": {string(scope)}},
		creds:  creds,
	})
}

// CreateBooking reserves a room. Times are sent in UTC.
func (c *Client) CreateBooking(ctx context.Context, creds Credentials, in records.BookingInput) error {
	body := struct {
		RoomID    string `json:"roomId"`
		Title     string `json:"title"`
		StartTime string `json:"startTime"`
		EndTime   string `json:"endTime"`
	}{
		RoomID:    in.RoomID,
		Title:     in.Title,
		StartTime: in.StartTime.UTC().Format(time.RFC3339),
		EndTime:   in.EndTime.UTC().Format(time.RFC3339),
	}
	return c.mutate(ctx, call{
		op:     "create booking",
		method: http.MethodPost,
		path:   "/bookings",
		body:   body,
		creds:  creds,
	}, in)
}

// CancelBooking marks a booking cancelled.
func (c *Client) CancelBooking(ctx context.Context, creds Credentials, id string) error {
	return c.mutate(ctx, call{
		op:     "cancel booking",
		method: http.MethodPatch,
		path:   "/bookings/" + url.PathEscape(id) + "/cancel",
		creds:  creds,
	}, nil)
}

// ListAuditLogs returns the audit log.
func (c *Client) ListAuditLogs(ctx context.Context, creds Credentials) ([]records.AuditLogEntry, error) {
	return getList[records.AuditLogEntry](ctx, c, call{
		op:     "list audit logs",
		method: http.MethodGet,
		path:   "/audit-logs",
		creds:  creds,
	})
}
