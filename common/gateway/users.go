package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/orgspace-systems/orgspace-stack/common/records"
)

// ListUsers returns employee records. A non-empty departmentID asks the API
// to restrict the list to that department.
func (c *Client) ListUsers(ctx context.Context, creds Credentials, departmentID string) ([]records.Employee, error) {
	var q url.Values
	if departmentID != "" {
		q = url.Values{"department": {departmentID}}
	}
	return getList[records.Employee](ctx, c, call{
		op:     "list users",
		method: http.MethodGet,
		path:   "/users",
		query:  q,
		creds:  creds,
	})
}

// Profile returns the signed-in actor's own employee record.
func (c *Client) Profile(ctx context.Context, creds Credentials) (*records.Employee, error) {
	return getOne[records.Employee](ctx, c, call{
		op:     "get profile",
		method: http.MethodGet,
		path:   "/users/profile",
		creds:  creds,
	})
}

type newEmployeeBody struct {
	UserID     string      `json:"userId"`
	FullName   string      `json:"full_name"`
	Password   string      `json:"password"`
	Salary     json.Number `json:"salary"`
	Role       string      `json:"role"`
	Position   string      `json:"position"`
	Department string      `json:"department"`
}

// CreateUser creates an employee. in.Department is the department name.
func (c *Client) CreateUser(ctx context.Context, creds Credentials, in records.NewEmployee) error {
	body := newEmployeeBody{
		UserID:     in.UserID,
		FullName:   in.FullName,
		Password:   in.Password,
		Salary:     json.Number(in.Salary.String()),
		Role:       string(in.Role),
		Position:   in.Position,
		Department: in.Department,
	}
	return c.mutate(ctx, call{
		op:     "create user",
		method: http.MethodPost,
		path:   "/users",
		body:   body,
		creds:  creds,
	}, in)
}

type employeeUpdateBody struct {
	FullName   string       `json:"full_name"`
	Position   string       `json:"position"`
	Department string       `json:"department,omitempty"`
	Salary     *json.Number `json:"salary,omitempty"`
	Role       string       `json:"role,omitempty"`
}

// UpdateUser edits the employee with the given record ID.
func (c *Client) UpdateUser(ctx context.Context, creds Credentials, id string, in records.EmployeeUpdate) error {
	body := employeeUpdateBody{
		FullName:   in.FullName,
		Position:   in.Position,
		Department: in.Department,
	}
	if in.Salary != nil {
		n := json.Number(in.Salary.String())
		body.Salary = &n
	}
	if in.Role != nil {
		body.Role = string(*in.Role)
	}
	return c.mutate(ctx, call{
		op:     "update user",
		method: http.MethodPut,
		path:   "/users/" + url.PathEscape(id),
		body:   body,
		creds:  creds,
	}, in)
}

// DeleteUser removes the employee with the given record ID.
func (c *Client) DeleteUser(ctx context.Context, creds Credentials, id string) error {
	return c.mutate(ctx, call{
		op:     "delete user",
		method: http.MethodDelete,
		path:   "/users/" + url.PathEscape(id),
		creds:  creds,
	}, nil)
}

// ExportUsersReport downloads the raw delimited users report.
func (c *Client) ExportUsersReport(ctx context.Context, creds Credentials) ([]byte, error) {
	return c.do(ctx, call{
		op:     "export users report",
		method: http.MethodGet,
		path:   "/users/export/report",
		creds:  creds,
		accept: "text/csv",
	})
}
