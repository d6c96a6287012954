package handlers

import (
	"context"
	"net/http"

	"github.com/orgspace-systems/orgspace-stack/common/access"
	"github.com/orgspace-systems/orgspace-stack/common/actions"
	"github.com/orgspace-systems/orgspace-stack/common/gateway"
	"github.com/orgspace-systems/orgspace-stack/common/httputil"
	"github.com/orgspace-systems/orgspace-stack/common/listquery"
	"github.com/orgspace-systems/orgspace-stack/common/logging"
	"github.com/orgspace-systems/orgspace-stack/common/records"
	"github.com/orgspace-systems/orgspace-stack/common/session"
	"github.com/orgspace-systems/orgspace-stack/web/backend/internal/cache"
)

type roomView struct {
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
	Status   string `json:"status,omitempty"`
	Occupied bool   `json:"occupied"`
}

func (h *Handler) allBookings(ctx context.Context, sess *session.Session) ([]records.Booking, error) {
	return cache.Load(ctx, h.cache, actions.ResourceBookings, string(gateway.BookingsAll),
		func(ctx context.Context) ([]records.Booking, error) {
			return h.svc.Gateway().ListBookings(ctx, sess, gateway.BookingsAll)
		})
}

func (h *Handler) allRooms(ctx context.Context, sess *session.Session) ([]records.Room, error) {
	return cache.Load(ctx, h.cache, actions.ResourceRooms, "all",
		func(ctx context.Context) ([]records.Room, error) {
			return h.svc.Gateway().ListRooms(ctx, sess)
		})
}

// ListRooms serves the room list. Each room is marked occupied when an
// approved booking covers the current instant; if bookings cannot be read
// the rooms are still listed, unmarked.
func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	q := r.URL.Query()

	capacity, err := listquery.ParseBounds(q.Get("capacity_min"), q.Get("capacity_max"))
	if err != nil {
		httputil.WriteJSONAPIFieldErrors(w, map[string]string{"capacity": err.Error()})
		return
	}
	criteria := listquery.RoomCriteria{
		Search:   q.Get("q"),
		Capacity: capacity,
		Sort:     listquery.ParseSortState(q.Get("sort"), q.Get("dir")),
	}

	rooms, err := h.allRooms(r.Context(), sess)
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	bookings, err := h.allBookings(r.Context(), sess)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Room occupancy unavailable",
			logging.Resource(actions.ResourceBookings), logging.Error(err))
		bookings = nil
	}

	now := h.now()
	items, p := page(r, listquery.Rooms(rooms, criteria, h.locale))
	data := make([]httputil.JSONAPIResource, 0, len(items))
	for _, room := range items {
		data = append(data, httputil.JSONAPIResource{
			Type: "rooms",
			ID:   room.ID,
			Attributes: roomView{
				Name:     room.Name,
				Capacity: room.Capacity,
				Status:   room.Status,
				Occupied: records.RoomOccupied(room, bookings, now),
			},
		})
	}
	httputil.WriteJSONAPICollection(w, http.StatusOK, data, p, map[string]any{
		"sort":      criteria.Sort,
		"canManage": access.CanManageRooms(sess.Actor),
	})
}

// CreateRoom adds a room.
func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	h.saveRoom(w, r, "")
}

// UpdateRoom renames or resizes a room.
func (h *Handler) UpdateRoom(w http.ResponseWriter, r *http.Request) {
	h.saveRoom(w, r, r.PathValue("id"))
}

func (h *Handler) saveRoom(w http.ResponseWriter, r *http.Request, id string) {
	var in records.RoomInput
	if !h.decode(w, r, &in) {
		return
	}
	if err := h.svc.SaveRoom(r.Context(), currentSession(r), id, in); err != nil {
		h.fail(w, r, err, nil)
		return
	}
	if id == "" {
		done(w, http.StatusCreated, "Room created")
		return
	}
	done(w, http.StatusOK, "Room updated")
}

// DeleteRoom removes a room once the request confirms it.
func (h *Handler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	confirm, prompt := confirmation(r)
	if err := h.svc.DeleteRoom(r.Context(), currentSession(r), r.PathValue("id"), confirm); err != nil {
		h.fail(w, r, err, prompt)
		return
	}
	done(w, http.StatusOK, "Room deleted")
}
