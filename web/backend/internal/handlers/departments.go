package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/orgspace-systems/orgspace-stack/common/actions"
	"github.com/orgspace-systems/orgspace-stack/common/httputil"
	"github.com/orgspace-systems/orgspace-stack/common/listquery"
	"github.com/orgspace-systems/orgspace-stack/common/records"
	"github.com/orgspace-systems/orgspace-stack/web/backend/internal/cache"
)

type departmentView struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitzero"`
}

func departmentResource(d records.Department) httputil.JSONAPIResource {
	return httputil.JSONAPIResource{
		Type:       "departments",
		ID:         d.ID,
		Attributes: departmentView{Name: d.Name, Description: d.Description, CreatedAt: d.CreatedAt},
	}
}

// ListDepartments serves the department list. Any signed-in actor may read
// it; the employee form and the directory filter both need it.
func (h *Handler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	q := r.URL.Query()

	all, err := cache.Load(r.Context(), h.cache, actions.ResourceDepartments, "all",
		func(ctx context.Context) ([]records.Department, error) {
			return h.svc.Gateway().ListDepartments(ctx, sess)
		})
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}

	criteria := listquery.DepartmentCriteria{
		Search: q.Get("q"),
		Sort:   listquery.ParseSortState(q.Get("sort"), q.Get("dir")),
	}
	items, p := page(r, listquery.Departments(all, criteria, h.locale))

	data := make([]httputil.JSONAPIResource, 0, len(items))
	for _, d := range items {
		data = append(data, departmentResource(d))
	}
	httputil.WriteJSONAPICollection(w, http.StatusOK, data, p, map[string]any{"sort": criteria.Sort})
}

// CreateDepartment adds a department.
func (h *Handler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	h.saveDepartment(w, r, "")
}

// UpdateDepartment renames or re-describes a department.
func (h *Handler) UpdateDepartment(w http.ResponseWriter, r *http.Request) {
	h.saveDepartment(w, r, r.PathValue("id"))
}

func (h *Handler) saveDepartment(w http.ResponseWriter, r *http.Request, id string) {
	var in records.DepartmentInput
	if !h.decode(w, r, &in) {
		return
	}
	if err := h.svc.SaveDepartment(r.Context(), currentSession(r), id, in); err != nil {
		h.fail(w, r, err, nil)
		return
	}
	if id == "" {
		done(w, http.StatusCreated, "Department created")
		return
	}
	done(w, http.StatusOK, "Department updated")
}

// DeleteDepartment removes a department once the request confirms it.
func (h *Handler) DeleteDepartment(w http.ResponseWriter, r *http.Request) {
	confirm, prompt := confirmation(r)
	if err := h.svc.DeleteDepartment(r.Context(), currentSession(r), r.PathValue("id"), confirm); err != nil {
		h.fail(w, r, err, prompt)
		return
	}
	done(w, http.StatusOK, "Department deleted")
}
