package actions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/orgspace-systems/orgspace-stack/common/access"
	"github.com/orgspace-systems/orgspace-stack/common/gateway"
	"github.com/orgspace-systems/orgspace-stack/common/records"
	"github.com/orgspace-systems/orgspace-stack/common/roster"
	"github.com/orgspace-systems/orgspace-stack/common/session"
)

// Resource names used in change notifications.
const (
	ResourceUsers       = "users"
	ResourceDepartments = "departments"
	ResourceRooms       = "rooms"
	ResourceBookings    = "bookings"
	ResourceResets      = "reset-requests"
)

// ChangeNotifier is told about every successful mutation.
type ChangeNotifier interface {
	RecordsChanged(ctx context.Context, resource string, actor records.Actor)
}

// Config configures a Service.
type Config struct {
	// PublicURL is the console address used to build reset links.
	PublicURL string
	// SessionTTL caps session lifetime; see session.New.
	SessionTTL time.Duration
	Notifier   ChangeNotifier
}

// Service runs guarded operations on behalf of a session. Each method checks
// the access policy before calling the record API.
type Service struct {
	gw     *gateway.Client
	roster *roster.Loader
	cfg    Config
	now    func() time.Time
}

// NewService creates a Service over gw.
func NewService(gw *gateway.Client, cfg Config) *Service {
	return &Service{
		gw:     gw,
		roster: roster.NewLoader(gw),
		cfg:    cfg,
		now:    time.Now,
	}
}

// Gateway exposes the underlying client for read-only listings.
func (s *Service) Gateway() *gateway.Client {
	return s.gw
}

// Roster exposes the scoped employee loader.
func (s *Service) Roster() *roster.Loader {
	return s.roster
}

func (s *Service) changed(ctx context.Context, resource string, sess *session.Session) {
	if s.cfg.Notifier != nil {
		s.cfg.Notifier.RecordsChanged(ctx, resource, sess.Actor)
	}
}

func forbidden(what string) error {
	return fmt.Errorf("%w: %s", access.ErrForbidden, what)
}

// SignIn authenticates and builds a session. The actor is taken from the
// caller's own profile when the API provides one, otherwise from the token.
func (s *Service) SignIn(ctx context.Context, in records.SignInInput) (*session.Session, error) {
	res, err := s.gw.SignIn(ctx, in)
	if err != nil {
		return nil, err
	}

	actor := res.Claims.Actor()
	profile, err := s.gw.Profile(ctx, gateway.Token(res.AccessToken))
	var remote *gateway.RemoteError
	switch {
	case err == nil:
		actor = mergeActor(actor, profile.AsActor())
	case errors.As(err, &remote):
		// Profile lookups are optional; keep the token identity.
	default:
		return nil, err
	}

	return session.New(res.AccessToken, actor, s.now(), s.cfg.SessionTTL, res.Claims.Expiry()), nil
}

func mergeActor(fromToken, fromProfile records.Actor) records.Actor {
	out := fromProfile
	if out.FullName == "" {
		out.FullName = fromToken.FullName
	}
	if out.UserID == "" {
		out.UserID = fromToken.UserID
	}
	if !out.Role.Valid() {
		out.Role = fromToken.Role
	}
	return out
}

// RefreshActor reloads the session actor from the caller's profile.
func (s *Service) RefreshActor(ctx context.Context, sess *session.Session) error {
	profile, err := s.gw.Profile(ctx, sess)
	if err != nil {
		return err
	}
	sess.Actor = mergeActor(sess.Actor, profile.AsActor())
	return nil
}

// CreateEmployee creates an employee. in.Department may be a department ID or
// name; the API is sent the name.
func (s *Service) CreateEmployee(ctx context.Context, sess *session.Session, in records.NewEmployee) error {
	if !access.CanCreateEmployee(sess.Actor) {
		return forbidden("cannot create employees")
	}
	if in.Role != "" && !access.CanAssignRole(sess.Actor, in.Role) {
		return forbidden(fmt.Sprintf("cannot assign role %s", in.Role))
	}
	if err := records.Validate(in); err != nil {
		return err
	}

	name, err := s.departmentName(ctx, sess, in.Department)
	if err != nil {
		return err
	}
	in.Department = name

	if err := s.gw.CreateUser(ctx, sess, in); err != nil {
		return err
	}
	s.changed(ctx, ResourceUsers, sess)
	return nil
}

func (s *Service) departmentName(ctx context.Context, sess *session.Session, ref string) (string, error) {
	depts, err := s.gw.ListDepartments(ctx, sess)
	if err != nil {
		return "", err
	}
	for _, d := range depts {
		if d.ID == ref || strings.EqualFold(d.Name, ref) {
			return d.Name, nil
		}
	}
	vErr := &records.ValidationError{}
	vErr.Add("department", "unknown department")
	return "", vErr
}

// UpdateEmployee edits the employee with record ID id. A salary change needs
// salary rights and a role change needs role rights; an unchanged role is
// not sent.
func (s *Service) UpdateEmployee(ctx context.Context, sess *session.Session, id string, in records.EmployeeUpdate) error {
	target, err := s.roster.Find(ctx, sess, sess.Actor, id)
	if err != nil {
		return err
	}
	if !access.CanEdit(sess.Actor, *target) {
		return forbidden("cannot edit this employee")
	}
	if in.Salary != nil && !access.CanEditSalary(sess.Actor) {
		return forbidden("cannot change salary")
	}
	if in.Role != nil {
		switch {
		case *in.Role == target.Role:
			in.Role = nil
		case !access.CanChangeRole(sess.Actor), !access.CanAssignRole(sess.Actor, *in.Role):
			return forbidden("cannot change role")
		}
	}

	if err := s.gw.UpdateUser(ctx, sess, id, in); err != nil {
		return err
	}
	s.changed(ctx, ResourceUsers, sess)
	return nil
}

// DeleteEmployee removes an employee after confirmation.
func (s *Service) DeleteEmployee(ctx context.Context, sess *session.Session, id string, confirm ConfirmFunc) error {
	target, err := s.roster.Find(ctx, sess, sess.Actor, id)
	if err != nil {
		return err
	}
	if !access.CanDelete(sess.Actor, *target) {
		return forbidden("cannot delete this employee")
	}
	p := Prompt{
		Title:   "Delete employee?",
		Message: fmt.Sprintf("%s (%s) will be removed permanently.", target.FullName, target.UserID),
		Confirm: "Delete",
	}
	return Confirmed(ctx, confirm, p, func(ctx context.Context) error {
		if err := s.gw.DeleteUser(ctx, sess, id); err != nil {
			return err
		}
		s.changed(ctx, ResourceUsers, sess)
		return nil
	})
}

// SaveDepartment creates a department, or updates it when id is non-empty.
func (s *Service) SaveDepartment(ctx context.Context, sess *session.Session, id string, in records.DepartmentInput) error {
	if !access.CanAccess(sess.Actor, access.PageDepartments) {
		return forbidden("cannot manage departments")
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)

	var err error
	if id == "" {
		err = s.gw.CreateDepartment(ctx, sess, in)
	} else {
		err = s.gw.UpdateDepartment(ctx, sess, id, in)
	}
	if err != nil {
		return err
	}
	s.changed(ctx, ResourceDepartments, sess)
	return nil
}

// DeleteDepartment removes a department after confirmation.
func (s *Service) DeleteDepartment(ctx context.Context, sess *session.Session, id string, confirm ConfirmFunc) error {
	if !access.CanAccess(sess.Actor, access.PageDepartments) {
		return forbidden("cannot manage departments")
	}
	p := Prompt{Title: "Delete department?", Message: "This cannot be undone.", Confirm: "Delete"}
	return Confirmed(ctx, confirm, p, func(ctx context.Context) error {
		if err := s.gw.DeleteDepartment(ctx, sess, id); err != nil {
			return err
		}
		s.changed(ctx, ResourceDepartments, sess)
		return nil
	})
}

// SaveRoom creates a room, or updates it when id is non-empty.
func (s *Service) SaveRoom(ctx context.Context, sess *session.Session, id string, in records.RoomInput) error {
	if !access.CanManageRooms(sess.Actor) {
		return forbidden("cannot manage rooms")
	}
	var err error
	if id == "" {
		err = s.gw.CreateRoom(ctx, sess, in)
	} else {
		err = s.gw.UpdateRoom(ctx, sess, id, in)
	}
	if err != nil {
		return err
	}
	s.changed(ctx, ResourceRooms, sess)
	return nil
}

// DeleteRoom removes a room after confirmation.
func (s *Service) DeleteRoom(ctx context.Context, sess *session.Session, id string, confirm ConfirmFunc) error {
	if !access.CanManageRooms(sess.Actor) {
		return forbidden("cannot manage rooms")
	}
	p := Prompt{Title: "Delete room?", Message: "The room and its schedule will be removed.", Confirm: "Delete"}
	return Confirmed(ctx, confirm, p, func(ctx context.Context) error {
		if err := s.gw.DeleteRoom(ctx, sess, id); err != nil {
			return err
		}
		s.changed(ctx, ResourceRooms, sess)
		return nil
	})
}

// BookRoom reserves a room for the session's actor.
func (s *Service) BookRoom(ctx context.Context, sess *session.Session, in records.BookingInput) error {
	if err := s.gw.CreateBooking(ctx, sess, in); err != nil {
		return err
	}
	s.changed(ctx, ResourceBookings, sess)
	return nil
}

// CancelBooking cancels a booking after confirmation. Only its owner or an
// administrator may cancel, and never twice.
func (s *Service) CancelBooking(ctx context.Context, sess *session.Session, id string, confirm ConfirmFunc) error {
	all, err := s.gw.ListBookings(ctx, sess, gateway.BookingsAll)
	if err != nil {
		return err
	}
	var bk *records.Booking
	for i := range all {
		if all[i].ID == id {
			bk = &all[i]
			break
		}
	}
	if bk == nil {
		return &gateway.RemoteError{Status: 404, Message: "booking not found"}
	}
	if !access.CanCancelBooking(sess.Actor, *bk) {
		return forbidden("cannot cancel this booking")
	}
	p := Prompt{Title: "Cancel booking?", Message: fmt.Sprintf("Cancel %q?", bk.Title), Confirm: "Yes, cancel it"}
	return Confirmed(ctx, confirm, p, func(ctx context.Context) error {
		if err := s.gw.CancelBooking(ctx, sess, id); err != nil {
			return err
		}
		s.changed(ctx, ResourceBookings, sess)
		return nil
	})
}
