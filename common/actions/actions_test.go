package actions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orgspace-systems/orgspace-stack/common/access"
	"github.com/orgspace-systems/orgspace-stack/common/gateway"
	"github.com/orgspace-systems/orgspace-stack/common/records"
	"github.com/orgspace-systems/orgspace-stack/common/roster"
	"github.com/orgspace-systems/orgspace-stack/common/session"
)

// fakeAPI is a minimal record API that records every mutating request.
type fakeAPI struct {
	mu        sync.Mutex
	mutations []string
	bodies    map[string]string
	profile   string
}

const usersJSON = `[
	{"_id":"a1","userId":"admin","full_name":"Ada Admin","role":"ADMIN"},
	{"_id":"h1","userId":"hr1","full_name":"Hana HR","role":"HR","department":{"_id":"d1","name":"People"}},
	{"_id":"h2","userId":"hr2","full_name":"Hugo HR","role":"HR"},
	{"_id":"e1","userId":"emp1","full_name":"Eve Employee","role":"EMPLOYEE","department":{"_id":"d1","name":"People"},"salary":30000}
]`

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		key := r.Method + " " + r.URL.Path
		f.mutations = append(f.mutations, key)
		if f.bodies == nil {
			f.bodies = map[string]string{}
		}
		f.bodies[key] = string(body)
		f.mu.Unlock()
	}

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/api/auth/signin":
		claims := jwt.MapClaims{"sub": "h1", "name": "Hana", "role": "HR", "exp": time.Now().Add(time.Hour).Unix()}
		tok, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
		_ = json.NewEncoder(w).Encode(map[string]string{"accessToken": tok})
	case r.URL.Path == "/api/users/profile":
		if f.profile == "" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"profile unavailable"}`))
			return
		}
		_, _ = w.Write([]byte(f.profile))
	case r.Method == http.MethodGet && r.URL.Path == "/api/users":
		_, _ = w.Write([]byte(usersJSON))
	case r.Method == http.MethodGet && r.URL.Path == "/api/departments":
		_, _ = w.Write([]byte(`[{"_id":"d1","name":"People"},{"_id":"d2","name":"Sales"}]`))
	case r.Method == http.MethodGet && r.URL.Path == "/api/bookings":
		_, _ = w.Write([]byte(`[{"_id":"b1","title":"Sync","userId":{"_id":"e1"},"startTime":"2026-02-27T09:00:00Z","endTime":"2026-02-27T10:00:00Z","status":"APPROVED"}]`))
	case r.URL.Path == "/api/auth/admin/request-reset":
		_, _ = w.Write([]byte(`{"token":"tok-42"}`))
	}
}

func (f *fakeAPI) sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.mutations...)
}

type recordingNotifier struct {
	resources []string
}

func (n *recordingNotifier) RecordsChanged(_ context.Context, resource string, _ records.Actor) {
	n.resources = append(n.resources, resource)
}

func newService(t *testing.T) (*Service, *fakeAPI, *recordingNotifier) {
	t.Helper()
	api := &fakeAPI{}
	server := httptest.NewServer(api)
	t.Cleanup(server.Close)
	n := &recordingNotifier{}
	svc := NewService(gateway.NewClient(server.URL+"/api"), Config{
		PublicURL:  "https://console.example.com/",
		SessionTTL: time.Hour,
		Notifier:   n,
	})
	return svc, api, n
}

func sessionFor(id, userID string, role records.Role) *session.Session {
	return session.New("tok", records.Actor{ID: id, UserID: userID, Role: role}, time.Now(), time.Hour, time.Time{})
}

func approve(context.Context, Prompt) (bool, error) { return true, nil }
func decline(context.Context, Prompt) (bool, error) { return false, nil }

func TestClassify(t *testing.T) {
	vErr := &records.ValidationError{}
	vErr.Add("name", "is required")

	tests := []struct {
		name   string
		err    error
		kind   Kind
		status int
		msg    string
	}{
		{"success", nil, KindSuccess, http.StatusOK, ""},
		{"validation", vErr, KindValidation, http.StatusBadRequest, "validation failed: name is required"},
		{"forbidden", fmt.Errorf("%w: nope", access.ErrForbidden), KindAuthorization, http.StatusForbidden, "forbidden: nope"},
		{"no session", gateway.ErrNoSession, KindSession, http.StatusUnauthorized, "not signed in"},
		{"expired session", session.ErrExpired, KindSession, http.StatusUnauthorized, "session expired"},
		{"remote 4xx", &gateway.RemoteError{Status: 409, Message: "User ID already exists"}, KindRemote, 409, "User ID already exists"},
		{"remote 5xx", &gateway.RemoteError{Status: 500, Message: "Internal"}, KindRemote, http.StatusBadGateway, "Internal"},
		{"transport", &gateway.TransportError{Op: "x", Err: errors.New("refused")}, KindTransport, http.StatusServiceUnavailable, MsgCannotReachServer},
		{"out of scope", roster.ErrNotFound, KindRemote, http.StatusNotFound, "employee not found"},
		{"cancelled", ErrCancelled, KindCancelled, 0, "cancelled"},
		{"other", errors.New("boom"), KindInternal, http.StatusInternalServerError, "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := Classify(tt.err)
			assert.Equal(t, tt.kind, o.Kind)
			assert.Equal(t, tt.status, o.Status)
			if tt.status != 0 {
				assert.Equal(t, tt.status, o.HTTPStatus())
			}
			assert.Equal(t, tt.msg, o.Message)
		})
	}
	assert.Equal(t, map[string]string{"name": "is required"}, Classify(vErr).Fields)
}

func TestConfirmed(t *testing.T) {
	ran := false
	do := func(context.Context) error { ran = true; return nil }

	assert.ErrorIs(t, Confirmed(context.Background(), nil, Prompt{}, do), ErrCancelled)
	assert.ErrorIs(t, Confirmed(context.Background(), decline, Prompt{}, do), ErrCancelled)
	assert.False(t, ran)

	failing := func(context.Context, Prompt) (bool, error) { return false, errors.New("tty closed") }
	assert.Error(t, Confirmed(context.Background(), failing, Prompt{}, do))
	assert.False(t, ran)

	assert.NoError(t, Confirmed(context.Background(), AlwaysConfirm, Prompt{}, do))
	assert.True(t, ran)
}

func TestSignIn_FallsBackToTokenIdentity(t *testing.T) {
	svc, _, _ := newService(t)
	sess, err := svc.SignIn(context.Background(), records.SignInInput{UserID: "hr1", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, records.RoleHR, sess.Actor.Role)
	assert.Equal(t, "Hana", sess.Actor.FullName)
	assert.Equal(t, "h1", sess.Actor.ID)
	assert.NotEmpty(t, sess.AccessToken())
	assert.True(t, sess.ExpiresAt.Before(time.Now().Add(time.Hour+time.Second)))
}

func TestSignIn_UsesProfile(t *testing.T) {
	svc, api, _ := newService(t)
	api.profile = `{"_id":"h1","userId":"hr1","full_name":"Hana HR","role":"HR","department":{"_id":"d1","name":"People"}}`

	sess, err := svc.SignIn(context.Background(), records.SignInInput{UserID: "hr1", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "Hana HR", sess.Actor.FullName)
	assert.Equal(t, "d1", records.RefID(sess.Actor.Department))
}

func TestCreateEmployee_ResolvesDepartmentName(t *testing.T) {
	svc, api, n := newService(t)
	hr := sessionFor("h1", "hr1", records.RoleHR)

	err := svc.CreateEmployee(context.Background(), hr, records.NewEmployee{
		UserID: "emp9", FullName: "New Person", Password: "secret1", Salary: decimal.NewFromInt(1000),
		Role: records.RoleManager, Position: "Lead", Department: "d2",
	})
	require.NoError(t, err)
	assert.Contains(t, api.bodies["POST /api/users"], `"department":"Sales"`)
	assert.Equal(t, []string{ResourceUsers}, n.resources)
}

func TestCreateEmployee_RoleNotAssignable(t *testing.T) {
	svc, api, _ := newService(t)
	hr := sessionFor("h1", "hr1", records.RoleHR)

	err := svc.CreateEmployee(context.Background(), hr, records.NewEmployee{
		UserID: "emp9", FullName: "New Person", Password: "secret1",
		Role: records.RoleHR, Position: "Lead", Department: "d2",
	})
	assert.ErrorIs(t, err, access.ErrForbidden)
	assert.Empty(t, api.sent())
}

func TestUpdateEmployee_Guards(t *testing.T) {
	svc, api, _ := newService(t)
	ctx := context.Background()
	hr := sessionFor("h1", "hr1", records.RoleHR)

	manager := records.RoleManager
	err := svc.UpdateEmployee(ctx, hr, "e1", records.EmployeeUpdate{FullName: "Eve", Role: &manager})
	assert.ErrorIs(t, err, access.ErrForbidden)

	err = svc.UpdateEmployee(ctx, hr, "h2", records.EmployeeUpdate{FullName: "Hugo"})
	assert.ErrorIs(t, err, access.ErrForbidden)
	assert.Empty(t, api.sent())

	raise := decimal.NewFromInt(35000)
	same := records.RoleEmployee
	err = svc.UpdateEmployee(ctx, hr, "e1", records.EmployeeUpdate{FullName: "Eve", Salary: &raise, Role: &same})
	require.NoError(t, err)
	assert.JSONEq(t, `{"full_name":"Eve","position":"","salary":35000}`, api.bodies["PUT /api/users/e1"])
}

func TestDeleteEmployee(t *testing.T) {
	svc, api, _ := newService(t)
	ctx := context.Background()
	hr := sessionFor("h1", "hr1", records.RoleHR)

	assert.ErrorIs(t, svc.DeleteEmployee(ctx, hr, "a1", approve), access.ErrForbidden)
	assert.ErrorIs(t, svc.DeleteEmployee(ctx, hr, "e1", decline), ErrCancelled)
	assert.Empty(t, api.sent())

	require.NoError(t, svc.DeleteEmployee(ctx, hr, "e1", approve))
	assert.Equal(t, []string{"DELETE /api/users/e1"}, api.sent())
}

func TestCancelBooking(t *testing.T) {
	svc, api, _ := newService(t)
	ctx := context.Background()

	stranger := sessionFor("x9", "x9", records.RoleEmployee)
	assert.ErrorIs(t, svc.CancelBooking(ctx, stranger, "b1", approve), access.ErrForbidden)

	owner := sessionFor("e1", "emp1", records.RoleEmployee)
	require.NoError(t, svc.CancelBooking(ctx, owner, "b1", approve))
	assert.Equal(t, []string{"PATCH /api/bookings/b1/cancel"}, api.sent())
}

func TestApproveReset(t *testing.T) {
	svc, api, _ := newService(t)
	ctx := context.Background()
	admin := sessionFor("a1", "admin", records.RoleAdmin)
	req := records.ResetRequest{ID: "rq1", User: &records.Ref{ID: "e1", UserID: "emp1", Name: "Eve"}}

	var link string
	onLink := func(_ context.Context, l string) error { link = l; return nil }

	var asked Prompt
	declineAndRecord := func(_ context.Context, p Prompt) (bool, error) { asked = p; return false, nil }
	assert.ErrorIs(t, svc.ApproveReset(ctx, admin, req, declineAndRecord, onLink), ErrCancelled)
	assert.Contains(t, asked.Message, "Eve")
	assert.Empty(t, api.sent())
	assert.Empty(t, link)

	require.NoError(t, svc.ApproveReset(ctx, admin, req, approve, onLink))
	assert.Equal(t, "https://console.example.com/auth/reset-password/tok-42", link)
	assert.JSONEq(t, `{"targetUserId":"emp1","requestId":"rq1"}`, api.bodies["POST /api/auth/admin/request-reset"])

	hr := sessionFor("h1", "hr1", records.RoleHR)
	assert.ErrorIs(t, svc.ApproveReset(ctx, hr, req, approve, onLink), access.ErrForbidden)

	own := records.ResetRequest{ID: "rq2", User: &records.Ref{ID: "a1", UserID: "admin"}}
	assert.ErrorIs(t, svc.ApproveReset(ctx, admin, own, approve, onLink), access.ErrForbidden)
}

func TestSaveRoom_AdminOnly(t *testing.T) {
	svc, api, _ := newService(t)
	hr := sessionFor("h1", "hr1", records.RoleHR)
	err := svc.SaveRoom(context.Background(), hr, "", records.RoomInput{Name: "Lotus", Capacity: 6})
	assert.ErrorIs(t, err, access.ErrForbidden)

	admin := sessionFor("a1", "admin", records.RoleAdmin)
	require.NoError(t, svc.SaveRoom(context.Background(), admin, "r1", records.RoomInput{Name: "Lotus", Capacity: 6}))
	assert.Equal(t, []string{"PATCH /api/rooms/r1"}, api.sent())
}

func TestSaveDepartment_TrimsAndValidates(t *testing.T) {
	svc, api, _ := newService(t)
	hr := sessionFor("h1", "hr1", records.RoleHR)

	err := svc.SaveDepartment(context.Background(), hr, "", records.DepartmentInput{Name: "Ops", Description: "Ops 24/7"})
	var vErr *records.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Empty(t, api.sent())

	require.NoError(t, svc.SaveDepartment(context.Background(), hr, "", records.DepartmentInput{Name: " Ops ", Description: "  Operations team  "}))
	assert.JSONEq(t, `{"name":"Ops","description":"Operations team"}`, api.bodies["POST /api/departments"])
}
