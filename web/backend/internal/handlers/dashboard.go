package handlers

import (
	"context"
	"net/http"

	"github.com/orgspace-systems/orgspace-stack/common/access"
	"github.com/orgspace-systems/orgspace-stack/common/actions"
	"github.com/orgspace-systems/orgspace-stack/common/httputil"
	"github.com/orgspace-systems/orgspace-stack/common/logging"
	"github.com/orgspace-systems/orgspace-stack/common/records"
	"github.com/orgspace-systems/orgspace-stack/web/backend/internal/cache"
)

type dashboardView struct {
	Employees        int                  `json:"employees"`
	EmployeesByRole  map[records.Role]int `json:"employeesByRole"`
	Departments      *int                 `json:"departments,omitempty"`
	Rooms            *int                 `json:"rooms,omitempty"`
	RoomsOccupied    *int                 `json:"roomsOccupied,omitempty"`
	UpcomingBookings *int                 `json:"upcomingBookings,omitempty"`
	PendingResets    *int                 `json:"pendingResets,omitempty"`
	Pages            []access.Page        `json:"pages"`
}

// Dashboard summarizes what the caller can see. The roster is required;
// every other figure is omitted when its source fails.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	ctx := r.Context()

	roster, err := h.loadRoster(ctx, sess)
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	v := dashboardView{
		Employees:       len(roster),
		EmployeesByRole: make(map[records.Role]int),
		Pages:           access.Pages(sess.Actor),
	}
	for _, e := range roster {
		v.EmployeesByRole[e.Role]++
	}

	soft := func(resource string, err error) bool {
		if err != nil {
			h.logger.WarnContext(ctx, "Dashboard figure unavailable", logging.Resource(resource), logging.Error(err))
			return false
		}
		return true
	}
	count := func(n int) *int { return &n }

	depts, err := cache.Load(ctx, h.cache, actions.ResourceDepartments, "all",
		func(ctx context.Context) ([]records.Department, error) {
			return h.svc.Gateway().ListDepartments(ctx, sess)
		})
	if soft(actions.ResourceDepartments, err) {
		v.Departments = count(len(depts))
	}

	rooms, err := h.allRooms(ctx, sess)
	if soft(actions.ResourceRooms, err) {
		v.Rooms = count(len(rooms))
		if all, err := h.allBookings(ctx, sess); soft(actions.ResourceBookings, err) {
			now := h.now()
			occupied := 0
			for _, room := range rooms {
				if records.RoomOccupied(room, all, now) {
					occupied++
				}
			}
			v.RoomsOccupied = count(occupied)
		}
	}

	mine, err := h.myBookings(ctx, sess)
	if soft(actions.ResourceBookings, err) {
		now := h.now()
		upcoming := 0
		for _, bk := range mine {
			if bk.Status != records.BookingCancelled && bk.EndTime.After(now) {
				upcoming++
			}
		}
		v.UpcomingBookings = count(upcoming)
	}

	if access.CanAccess(sess.Actor, access.PageResetRequests) {
		if pending, err := h.pendingResets(r); soft(actions.ResourceResets, err) {
			v.PendingResets = count(len(pending))
		}
	}

	httputil.WriteJSONAPIResource(w, http.StatusOK, httputil.JSONAPIResource{
		Type:       "dashboards",
		ID:         sess.Actor.ID,
		Attributes: v,
	})
}
