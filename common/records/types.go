// Package records defines the typed data contracts exchanged with the OrgSpace
// record API: employees, departments, rooms, bookings, audit log entries and
// password reset requests.
//
// Every type decodes the identifier from either "_id" or "id", and references
// to other records may arrive either as a populated object or as a bare ID.
package records

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Ref is a reference to another record. The API sends references either
// populated ({"_id": "...", "name": "..."}) or as the bare identifier string.
type Ref struct {
	ID     string `json:"_id"`
	Name   string `json:"name,omitempty"`
	UserID string `json:"userId,omitempty"`
}

func (r *Ref) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &r.ID)
	}
	var aux struct {
		ID       string `json:"_id"`
		AltID    string `json:"id"`
		Name     string `json:"name"`
		FullName string `json:"full_name"`
		UserID   string `json:"userId"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	r.ID = firstNonEmpty(aux.ID, aux.AltID)
	r.Name = firstNonEmpty(aux.Name, aux.FullName)
	r.UserID = aux.UserID
	return nil
}

// RefID returns the referenced ID, or "" for a nil reference.
func RefID(r *Ref) string {
	if r == nil {
		return ""
	}
	return r.ID
}

// RefName returns the referenced display name, or "" for a nil reference.
func RefName(r *Ref) string {
	if r == nil {
		return ""
	}
	return r.Name
}

// Actor is the signed-in user on whose behalf operations run.
type Actor struct {
	ID         string `json:"id"`
	UserID     string `json:"userId"`
	FullName   string `json:"fullName"`
	Role       Role   `json:"role"`
	Department *Ref   `json:"department,omitempty"`
}

// Employee is a person record managed by the directory.
type Employee struct {
	ID         string           `json:"_id" validate:"required"`
	UserID     string           `json:"userId"`
	FullName   string           `json:"full_name"`
	Role       Role             `json:"role" validate:"required,role"`
	Position   string           `json:"position,omitempty"`
	Department *Ref             `json:"department,omitempty"`
	Salary     *decimal.Decimal `json:"salary,omitempty" validate:"omitempty,gte=0"`
	CreatedAt  time.Time        `json:"createdAt"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}

func (e *Employee) UnmarshalJSON(b []byte) error {
	type alias Employee
	aux := struct {
		*alias
		AltID string `json:"id"`
	}{alias: (*alias)(e)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	e.ID = firstNonEmpty(e.ID, aux.AltID)
	return nil
}

// DepartmentID returns the ID of the employee's department, or "".
func (e Employee) DepartmentID() string {
	return RefID(e.Department)
}

// AsActor builds the actor view of an employee record, used after loading
// the signed-in user's own profile.
func (e Employee) AsActor() Actor {
	return Actor{
		ID:         e.ID,
		UserID:     e.UserID,
		FullName:   e.FullName,
		Role:       e.Role,
		Department: e.Department,
	}
}

// Department is an organizational unit.
type Department struct {
	ID          string    `json:"_id" validate:"required"`
	Name        string    `json:"name" validate:"required"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (d *Department) UnmarshalJSON(b []byte) error {
	type alias Department
	aux := struct {
		*alias
		AltID string `json:"id"`
	}{alias: (*alias)(d)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	d.ID = firstNonEmpty(d.ID, aux.AltID)
	return nil
}

// Room is a bookable meeting room.
type Room struct {
	ID       string `json:"_id" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Capacity int    `json:"capacity" validate:"gte=0"`
	Status   string `json:"status,omitempty"`
}

func (r *Room) UnmarshalJSON(b []byte) error {
	type alias Room
	aux := struct {
		*alias
		AltID string `json:"id"`
	}{alias: (*alias)(r)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	r.ID = firstNonEmpty(r.ID, aux.AltID)
	return nil
}

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingApproved  BookingStatus = "APPROVED"
	BookingCancelled BookingStatus = "CANCELLED"
)

// Booking reserves a room for a time window.
type Booking struct {
	ID        string        `json:"_id" validate:"required"`
	Title     string        `json:"title"`
	Room      *Ref          `json:"roomId,omitempty"`
	User      *Ref          `json:"userId,omitempty"`
	StartTime time.Time     `json:"startTime" validate:"required"`
	EndTime   time.Time     `json:"endTime" validate:"required"`
	Status    BookingStatus `json:"status"`
}

func (bk *Booking) UnmarshalJSON(b []byte) error {
	type alias Booking
	aux := struct {
		*alias
		AltID string `json:"id"`
	}{alias: (*alias)(bk)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	bk.ID = firstNonEmpty(bk.ID, aux.AltID)
	return nil
}

// Covers reports whether the booking is approved and its window contains t.
func (bk Booking) Covers(t time.Time) bool {
	if bk.Status != BookingApproved {
		return false
	}
	return !t.Before(bk.StartTime) && !t.After(bk.EndTime)
}

// RoomOccupied reports whether any approved booking for room covers now.
func RoomOccupied(room Room, bookings []Booking, now time.Time) bool {
	for _, bk := range bookings {
		if RefID(bk.Room) == room.ID && bk.Covers(now) {
			return true
		}
	}
	return false
}

// ActorInfo is the snapshot of the acting user stored with an audit entry.
type ActorInfo struct {
	FullName string `json:"full_name"`
	Role     Role   `json:"role"`
}

// AuditLogEntry records one action taken in the system.
type AuditLogEntry struct {
	ID         string         `json:"_id" validate:"required"`
	Action     AuditAction    `json:"action" validate:"required"`
	Actor      *ActorInfo     `json:"actorInfo,omitempty"`
	Details    string         `json:"details,omitempty"`
	TargetName string         `json:"targetName,omitempty"`
	OldValue   map[string]any `json:"oldValue,omitempty"`
	NewValue   map[string]any `json:"newValue,omitempty"`
	IPAddress  string         `json:"ipAddress,omitempty"`
	CreatedAt  time.Time      `json:"createdAt" validate:"required"`
}

func (a *AuditLogEntry) UnmarshalJSON(b []byte) error {
	type alias AuditLogEntry
	aux := struct {
		*alias
		AltID string `json:"id"`
	}{alias: (*alias)(a)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	a.ID = firstNonEmpty(a.ID, aux.AltID)
	return nil
}

// ActorName returns the recorded actor name or "".
func (a AuditLogEntry) ActorName() string {
	if a.Actor == nil {
		return ""
	}
	return a.Actor.FullName
}

// ResetRequest is a pending password reset awaiting administrator approval.
type ResetRequest struct {
	ID        string    `json:"_id" validate:"required"`
	User      *Ref      `json:"user,omitempty"`
	Status    string    `json:"status,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (r *ResetRequest) UnmarshalJSON(b []byte) error {
	type alias ResetRequest
	aux := struct {
		*alias
		AltID string `json:"id"`
	}{alias: (*alias)(r)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	r.ID = firstNonEmpty(r.ID, aux.AltID)
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
