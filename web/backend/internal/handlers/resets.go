package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/orgspace-systems/orgspace-stack/common/actions"
	"github.com/orgspace-systems/orgspace-stack/common/httputil"
	"github.com/orgspace-systems/orgspace-stack/common/logging"
	"github.com/orgspace-systems/orgspace-stack/common/records"
	"github.com/orgspace-systems/orgspace-stack/web/backend/internal/cache"
)

type resetRequestView struct {
	UserRecordID string    `json:"userRecordId,omitempty"`
	UserID       string    `json:"userId,omitempty"`
	Name         string    `json:"name,omitempty"`
	Status       string    `json:"status,omitempty"`
	CreatedAt    time.Time `json:"createdAt,omitzero"`
}

func resetRequestResource(req records.ResetRequest) httputil.JSONAPIResource {
	v := resetRequestView{Status: req.Status, CreatedAt: req.CreatedAt}
	if req.User != nil {
		v.UserRecordID = req.User.ID
		v.UserID = req.User.UserID
		v.Name = req.User.Name
	}
	return httputil.JSONAPIResource{Type: "reset-requests", ID: req.ID, Attributes: v}
}

func (h *Handler) pendingResets(r *http.Request) ([]records.ResetRequest, error) {
	sess := currentSession(r)
	return cache.Load(r.Context(), h.cache, actions.ResourceResets, "all",
		func(ctx context.Context) ([]records.ResetRequest, error) {
			return h.svc.PendingResets(ctx, sess)
		})
}

// ListResetRequests serves the reset requests awaiting approval.
func (h *Handler) ListResetRequests(w http.ResponseWriter, r *http.Request) {
	list, err := h.pendingResets(r)
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	data := make([]httputil.JSONAPIResource, 0, len(list))
	for _, req := range list {
		data = append(data, resetRequestResource(req))
	}
	httputil.WriteJSONAPICollection(w, http.StatusOK, data, nil, map[string]any{"pending": len(list)})
}

type resetLinkView struct {
	Link string `json:"link"`
}

// ApproveResetRequest approves the pending request with the path ID once
// the request confirms it, and returns the single-use reset link.
func (h *Handler) ApproveResetRequest(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	list, err := h.pendingResets(r)
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	var target *records.ResetRequest
	for i := range list {
		if list[i].ID == id {
			target = &list[i]
			break
		}
	}
	if target == nil {
		httputil.WriteJSONAPINotFoundError(w, "reset request", id)
		return
	}

	var link string
	confirm, prompt := confirmation(r)
	err = h.svc.ApproveReset(r.Context(), currentSession(r), *target, confirm, func(_ context.Context, l string) error {
		link = l
		return nil
	})
	if err != nil {
		h.fail(w, r, err, prompt)
		return
	}

	h.logger.InfoContext(r.Context(), "Password reset approved", logging.Resource(actions.ResourceResets),
		"target_user_id", records.RefID(target.User))
	httputil.WriteJSONAPIResource(w, http.StatusOK, httputil.JSONAPIResource{
		Type:       "reset-links",
		ID:         target.ID,
		Attributes: resetLinkView{Link: link},
	})
}
