package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/orgspace-systems/orgspace-stack/common/access"
	"github.com/orgspace-systems/orgspace-stack/common/actions"
	"github.com/orgspace-systems/orgspace-stack/common/httputil"
	"github.com/orgspace-systems/orgspace-stack/common/listquery"
	"github.com/orgspace-systems/orgspace-stack/common/records"
	"github.com/orgspace-systems/orgspace-stack/common/session"
	"github.com/orgspace-systems/orgspace-stack/web/backend/internal/cache"
)

type employeeView struct {
	UserID       string           `json:"userId"`
	FullName     string           `json:"full_name"`
	Role         records.Role     `json:"role"`
	RoleLabel    string           `json:"roleLabel"`
	Position     string           `json:"position,omitempty"`
	DepartmentID string           `json:"departmentId,omitempty"`
	Department   string           `json:"department,omitempty"`
	Salary       *decimal.Decimal `json:"salary,omitempty"`
	CreatedAt    time.Time        `json:"createdAt,omitzero"`
	UpdatedAt    time.Time        `json:"updatedAt,omitzero"`
}

// employeeResource renders e as actor sees it: the salary is left out unless
// actor may see it, and the row carries actor's capabilities over e.
func employeeResource(actor records.Actor, e records.Employee) httputil.JSONAPIResource {
	caps := access.For(actor, e)
	v := employeeView{
		UserID:       e.UserID,
		FullName:     e.FullName,
		Role:         e.Role,
		RoleLabel:    e.Role.Label(),
		Position:     e.Position,
		DepartmentID: e.DepartmentID(),
		Department:   records.RefName(e.Department),
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
	if caps.ViewSalary && e.Salary != nil {
		s := *e.Salary
		v.Salary = &s
	}
	return httputil.JSONAPIResource{
		Type:       "employees",
		ID:         e.ID,
		Attributes: v,
		Meta:       map[string]any{"capabilities": caps},
	}
}

// rosterScope keys the cached roster by everything that shapes it.
func rosterScope(a records.Actor) string {
	return string(a.Role) + ":" + records.RefID(a.Department) + ":" + a.ID + ":" + a.UserID
}

func (h *Handler) loadRoster(ctx context.Context, sess *session.Session) ([]records.Employee, error) {
	return cache.Load(ctx, h.cache, actions.ResourceUsers, rosterScope(sess.Actor),
		func(ctx context.Context) ([]records.Employee, error) {
			return h.svc.Roster().Load(ctx, sess, sess.Actor)
		})
}

// ListEmployees serves the directory visible to the caller, filtered, sorted
// and paginated from the query string.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	q := r.URL.Query()

	salary, err := listquery.ParseBounds(q.Get("salary_min"), q.Get("salary_max"))
	if err != nil {
		httputil.WriteJSONAPIFieldErrors(w, map[string]string{"salary": err.Error()})
		return
	}
	criteria := listquery.EmployeeCriteria{
		Search:     q.Get("q"),
		Role:       q.Get("role"),
		Department: q.Get("department"),
		Salary:     salary,
		Sort:       listquery.ParseSortState(q.Get("sort"), q.Get("dir")),
	}

	all, err := h.loadRoster(r.Context(), sess)
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	filtered := listquery.Employees(all, criteria, h.locale)
	items, p := page(r, filtered)

	data := make([]httputil.JSONAPIResource, 0, len(items))
	for _, e := range items {
		data = append(data, employeeResource(sess.Actor, e))
	}
	httputil.WriteJSONAPICollection(w, http.StatusOK, data, p, map[string]any{
		"sort":            criteria.Sort,
		"canCreate":       access.CanCreateEmployee(sess.Actor),
		"assignableRoles": access.AssignableRoles(sess.Actor),
	})
}

// GetEmployee returns one employee from the caller's scope.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	id := r.PathValue("id")
	all, err := h.loadRoster(r.Context(), sess)
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	for _, e := range all {
		if e.ID == id {
			httputil.WriteJSONAPIResource(w, http.StatusOK, employeeResource(sess.Actor, e))
			return
		}
	}
	httputil.WriteJSONAPINotFoundError(w, "employee", id)
}

// MyProfile returns the caller's own record.
func (h *Handler) MyProfile(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	me, err := h.svc.Gateway().Profile(r.Context(), sess)
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	httputil.WriteJSONAPIResource(w, http.StatusOK, employeeResource(sess.Actor, *me))
}

// CreateEmployee adds an employee. The department may be given by ID or name.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var in records.NewEmployee
	if !h.decode(w, r, &in) {
		return
	}
	if err := h.svc.CreateEmployee(r.Context(), currentSession(r), in); err != nil {
		h.fail(w, r, err, nil)
		return
	}
	done(w, http.StatusCreated, "Employee created")
}

// UpdateEmployee edits an employee in the caller's scope.
func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	var in records.EmployeeUpdate
	if !h.decode(w, r, &in) {
		return
	}
	if err := h.svc.UpdateEmployee(r.Context(), currentSession(r), r.PathValue("id"), in); err != nil {
		h.fail(w, r, err, nil)
		return
	}
	done(w, http.StatusOK, "Employee updated")
}

// DeleteEmployee removes an employee once the request confirms it.
func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	confirm, prompt := confirmation(r)
	if err := h.svc.DeleteEmployee(r.Context(), currentSession(r), r.PathValue("id"), confirm); err != nil {
		h.fail(w, r, err, prompt)
		return
	}
	done(w, http.StatusOK, "Employee deleted")
}
