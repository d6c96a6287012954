package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/orgspace-systems/orgspace-stack/common/httputil"
	"github.com/orgspace-systems/orgspace-stack/common/listquery"
	"github.com/orgspace-systems/orgspace-stack/common/records"
	"github.com/orgspace-systems/orgspace-stack/web/backend/internal/cache"
)

type auditView struct {
	Action     records.AuditAction `json:"action"`
	Category   records.Category    `json:"category"`
	Actor      string              `json:"actor,omitempty"`
	ActorRole  records.Role        `json:"actorRole,omitempty"`
	Details    string              `json:"details,omitempty"`
	TargetName string              `json:"targetName,omitempty"`
	OldValue   map[string]any      `json:"oldValue,omitempty"`
	NewValue   map[string]any      `json:"newValue,omitempty"`
	IPAddress  string              `json:"ipAddress,omitempty"`
	CreatedAt  time.Time           `json:"createdAt"`
}

func auditResource(a records.AuditLogEntry) httputil.JSONAPIResource {
	v := auditView{
		Action:     a.Action,
		Category:   a.Action.Category(),
		Actor:      a.ActorName(),
		Details:    a.Details,
		TargetName: a.TargetName,
		OldValue:   a.OldValue,
		NewValue:   a.NewValue,
		IPAddress:  a.IPAddress,
		CreatedAt:  a.CreatedAt,
	}
	if a.Actor != nil {
		v.ActorRole = a.Actor.Role
	}
	return httputil.JSONAPIResource{Type: "audit-logs", ID: a.ID, Attributes: v}
}

// ListAuditLogs serves the audit trail, newest first unless another order is
// requested.
func (h *Handler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	q := r.URL.Query()

	all, err := cache.Load(r.Context(), h.cache, cache.ResourceAuditLogs, "all",
		func(ctx context.Context) ([]records.AuditLogEntry, error) {
			return h.svc.Gateway().ListAuditLogs(ctx, sess)
		})
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}

	sort := listquery.SortState{Field: "createdAt", Direction: listquery.Desc}
	if q.Get("sort") != "" {
		sort = listquery.ParseSortState(q.Get("sort"), q.Get("dir"))
	}
	criteria := listquery.AuditCriteria{
		Search:  q.Get("q"),
		Action:  q.Get("action"),
		Subject: q.Get("subject"),
		Date:    q.Get("date"),
		Sort:    sort,
	}
	items, p := page(r, listquery.AuditLogs(all, criteria, h.locale))

	data := make([]httputil.JSONAPIResource, 0, len(items))
	for _, a := range items {
		data = append(data, auditResource(a))
	}
	httputil.WriteJSONAPICollection(w, http.StatusOK, data, p, map[string]any{"sort": criteria.Sort})
}

// ListAuditActions serves the closed set of action tags for filter menus.
func (h *Handler) ListAuditActions(w http.ResponseWriter, r *http.Request) {
	actions := records.AuditActions()
	data := make([]httputil.JSONAPIResource, 0, len(actions))
	for _, a := range actions {
		data = append(data, httputil.JSONAPIResource{
			Type:       "audit-actions",
			ID:         string(a),
			Attributes: a.Category(),
		})
	}
	httputil.WriteJSONAPICollection(w, http.StatusOK, data, nil, nil)
}
