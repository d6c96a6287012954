package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/orgspace-systems/orgspace-stack/common/access"
	"github.com/orgspace-systems/orgspace-stack/common/actions"
	"github.com/orgspace-systems/orgspace-stack/common/datemask"
	"github.com/orgspace-systems/orgspace-stack/common/gateway"
	"github.com/orgspace-systems/orgspace-stack/common/httputil"
	"github.com/orgspace-systems/orgspace-stack/common/listquery"
	"github.com/orgspace-systems/orgspace-stack/common/records"
	"github.com/orgspace-systems/orgspace-stack/common/session"
	"github.com/orgspace-systems/orgspace-stack/web/backend/internal/cache"
)

type bookingView struct {
	Title     string                `json:"title"`
	RoomID    string                `json:"roomId,omitempty"`
	Room      string                `json:"room,omitempty"`
	UserID    string                `json:"userId,omitempty"`
	User      string                `json:"user,omitempty"`
	StartTime time.Time             `json:"startTime"`
	EndTime   time.Time             `json:"endTime"`
	Status    records.BookingStatus `json:"status"`
}

func bookingResource(actor records.Actor, bk records.Booking) httputil.JSONAPIResource {
	return httputil.JSONAPIResource{
		Type: "bookings",
		ID:   bk.ID,
		Attributes: bookingView{
			Title:     bk.Title,
			RoomID:    records.RefID(bk.Room),
			Room:      records.RefName(bk.Room),
			UserID:    records.RefID(bk.User),
			User:      records.RefName(bk.User),
			StartTime: bk.StartTime,
			EndTime:   bk.EndTime,
			Status:    bk.Status,
		},
		Meta: map[string]any{"canCancel": access.CanCancelBooking(actor, bk)},
	}
}

func (h *Handler) myBookings(ctx context.Context, sess *session.Session) ([]records.Booking, error) {
	return cache.Load(ctx, h.cache, actions.ResourceBookings, "my:"+sess.Actor.ID+":"+sess.Actor.UserID,
		func(ctx context.Context) ([]records.Booking, error) {
			return h.svc.Gateway().ListBookings(ctx, sess, gateway.BookingsMy)
		})
}

// ListBookings serves booking history. scope=my (the default) lists the
// caller's own bookings; scope=all lists every booking.
func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	q := r.URL.Query()

	var list []records.Booking
	var err error
	if strings.EqualFold(q.Get("scope"), string(gateway.BookingsAll)) {
		list, err = h.allBookings(r.Context(), sess)
	} else {
		list, err = h.myBookings(r.Context(), sess)
	}
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}

	criteria := listquery.BookingCriteria{
		Search: q.Get("q"),
		Status: q.Get("status"),
		Date:   q.Get("date"),
		Sort:   listquery.ParseSortState(q.Get("sort"), q.Get("dir")),
	}
	items, p := page(r, listquery.Bookings(list, criteria, h.locale))

	data := make([]httputil.JSONAPIResource, 0, len(items))
	for _, bk := range items {
		data = append(data, bookingResource(sess.Actor, bk))
	}
	httputil.WriteJSONAPICollection(w, http.StatusOK, data, p, map[string]any{"sort": criteria.Sort})
}

// bookingRequest accepts either ISO timestamps or a masked DD/MM/YYYY date
// with HH:MM start and end times in the console's timezone.
type bookingRequest struct {
	RoomID    string `json:"roomId"`
	Title     string `json:"title"`
	StartTime string `json:"startTime,omitempty"`
	EndTime   string `json:"endTime,omitempty"`
	Date      string `json:"date,omitempty"`
	From      string `json:"from,omitempty"`
	To        string `json:"to,omitempty"`
}

func (req bookingRequest) input(loc *time.Location) (records.BookingInput, error) {
	in := records.BookingInput{
		RoomID: strings.TrimSpace(req.RoomID),
		Title:  strings.TrimSpace(req.Title),
	}
	vErr := &records.ValidationError{}

	if req.Date != "" {
		start, err := datemask.At(req.Date, req.From, loc)
		if err != nil {
			vErr.Add("from", err.Error())
		}
		end, err := datemask.At(req.Date, req.To, loc)
		if err != nil {
			vErr.Add("to", err.Error())
		}
		in.StartTime, in.EndTime = start, end
		return in, vErr.Err()
	}

	if req.StartTime != "" {
		t, err := time.Parse(time.RFC3339, req.StartTime)
		if err != nil {
			vErr.Add("startTime", "must be an RFC 3339 timestamp")
		}
		in.StartTime = t
	}
	if req.EndTime != "" {
		t, err := time.Parse(time.RFC3339, req.EndTime)
		if err != nil {
			vErr.Add("endTime", "must be an RFC 3339 timestamp")
		}
		in.EndTime = t
	}
	return in, vErr.Err()
}

// CreateBooking reserves a room for the caller.
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req bookingRequest
	if !h.decode(w, r, &req) {
		return
	}
	in, err := req.input(h.loc)
	if err == nil {
		err = h.svc.BookRoom(r.Context(), currentSession(r), in)
	}
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	done(w, http.StatusCreated, "Room booked")
}

// CancelBooking cancels a booking once the request confirms it.
func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	confirm, prompt := confirmation(r)
	if err := h.svc.CancelBooking(r.Context(), currentSession(r), r.PathValue("id"), confirm); err != nil {
		h.fail(w, r, err, prompt)
		return
	}
	done(w, http.StatusOK, "Booking cancelled")
}
