package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/orgspace-systems/orgspace-stack/common/actions"
	"github.com/orgspace-systems/orgspace-stack/common/audit"
	"github.com/orgspace-systems/orgspace-stack/common/gateway"
	"github.com/orgspace-systems/orgspace-stack/common/logging"
	"github.com/orgspace-systems/orgspace-stack/common/messaging"
	"github.com/orgspace-systems/orgspace-stack/common/records"
	"github.com/orgspace-systems/orgspace-stack/common/report"
	"github.com/orgspace-systems/orgspace-stack/common/session"
	"github.com/orgspace-systems/orgspace-stack/web/backend/internal/auth"
	"github.com/orgspace-systems/orgspace-stack/web/backend/internal/cache"
)

const testUsers = `[
	{"_id":"a1","userId":"admin","full_name":"Ada Admin","role":"ADMIN"},
	{"_id":"h1","userId":"hr1","full_name":"Hana HR","role":"HR","department":{"_id":"d1","name":"People"},"salary":52000},
	{"_id":"e1","userId":"emp1","full_name":"Eve Employee","role":"EMPLOYEE","department":{"_id":"d1","name":"People"},"salary":30000}
]`

// recordAPI stands in for the remote record API. Mutations are recorded
// with their bodies; list calls are counted per path.
type recordAPI struct {
	mu        sync.Mutex
	mutations []string
	bodies    map[string]string
	gets      map[string]int
	bookings  string
	export    string
}

func (f *recordAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	key := r.Method + " " + r.URL.Path

	f.mu.Lock()
	if r.Method == http.MethodGet {
		if f.gets == nil {
			f.gets = map[string]int{}
		}
		f.gets[r.URL.Path]++
	} else if r.URL.Path != "/api/auth/signin" {
		if f.bodies == nil {
			f.bodies = map[string]string{}
		}
		f.mutations = append(f.mutations, key)
		f.bodies[key] = string(body)
	}
	f.mu.Unlock()

	switch {
	case key == "POST /api/auth/signin":
		var in struct {
			UserID   string `json:"userId"`
			Password string `json:"password"`
		}
		_ = json.Unmarshal(body, &in)
		u, ok := findUser(func(u records.Employee) bool { return u.UserID == in.UserID })
		if !ok || in.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Invalid credentials"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"accessToken": tokenFor(u)})
	case key == "GET /api/users/profile":
		u, ok := userFromBearer(r)
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Unauthorized"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(u)
	case key == "GET /api/users":
		_, _ = w.Write([]byte(testUsers))
	case key == "GET /api/users/export/report":
		_, _ = w.Write([]byte(f.export))
	case key == "GET /api/departments":
		_, _ = w.Write([]byte(`[{"_id":"d1","name":"People"},{"_id":"d2","name":"Sales"}]`))
	case key == "GET /api/rooms":
		_, _ = w.Write([]byte(`[{"_id":"r1","name":"Orchid","capacity":8},{"_id":"r2","name":"Lotus","capacity":4}]`))
	case key == "GET /api/bookings":
		_, _ = w.Write([]byte(f.bookings))
	case key == "GET /api/audit-logs":
		_, _ = w.Write([]byte(`[{"_id":"l1","action":"CREATE_USER","createdAt":"2026-02-27T08:00:00Z"}]`))
	case key == "GET /api/auth/admin/reset-requests":
		_, _ = w.Write([]byte(`[{"_id":"rr1","user":{"_id":"e1","userId":"emp1","name":"Eve Employee"},"status":"PENDING","createdAt":"2026-02-27T08:00:00Z"}]`))
	case key == "POST /api/auth/admin/request-reset":
		_, _ = w.Write([]byte(`{"token":"tok-42"}`))
	default:
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	}
}

func (f *recordAPI) sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.mutations...)
}

func (f *recordAPI) body(key string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[key]
}

func (f *recordAPI) fetched(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gets[path]
}

func findUser(match func(records.Employee) bool) (records.Employee, bool) {
	var users []records.Employee
	if err := json.Unmarshal([]byte(testUsers), &users); err != nil {
		panic(err)
	}
	for _, u := range users {
		if match(u) {
			return u, true
		}
	}
	return records.Employee{}, false
}

func tokenFor(u records.Employee) string {
	claims := jwt.MapClaims{
		"sub":       u.ID,
		"userId":    u.UserID,
		"full_name": u.FullName,
		"role":      string(u.Role),
		"exp":       time.Now().Add(time.Hour).Unix(),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		panic(err)
	}
	return tok
}

func userFromBearer(r *http.Request) (records.Employee, bool) {
	raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return records.Employee{}, false
	}
	sub, _ := claims["sub"].(string)
	return findUser(func(u records.Employee) bool { return u.ID == sub })
}

type fixture struct {
	api     *recordAPI
	handler *Handler
	auth    *auth.Manager
	store   *session.MemoryStore
	cache   *cache.Lists
	signer  *audit.ReportSigner
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	api := &recordAPI{
		bookings: `[{"_id":"b1","title":"Sync","roomId":{"_id":"r1","name":"Orchid"},"userId":{"_id":"e1"},"startTime":"2026-02-27T09:00:00Z","endTime":"2026-02-27T10:00:00Z","status":"APPROVED"}]`,
		export:   "full_name,role,position,salary,department\nEve Employee,EMPLOYEE,Clerk,30000,People\n",
	}
	server := httptest.NewServer(api)
	t.Cleanup(server.Close)

	lists := cache.New(time.Minute)
	svc := actions.NewService(gateway.NewClient(server.URL+"/api"), actions.Config{
		PublicURL:  "https://console.example.com",
		SessionTTL: time.Hour,
		Notifier:   invalidateOnChange{lists},
	})
	store := session.NewMemoryStore()
	logger := logging.Discard()
	manager := auth.NewManager(store, auth.Config{}, logger)
	signer := audit.NewReportSigner("report-secret")

	h := New(Config{
		Service:      svc,
		Cache:        lists,
		Auth:         manager,
		Signer:       signer,
		Messaging:    messaging.NewLocal(logging.Discard()),
		Logger:       logger,
		Locale:       language.English,
		Location:     time.FixedZone("ICT", 7*60*60),
		Organization: "Orgspace",
		Version:      "test",
	})
	h.now = func() time.Time { return time.Date(2026, 2, 27, 9, 30, 0, 0, time.UTC) }

	return &fixture{api: api, handler: h, auth: manager, store: store, cache: lists, signer: signer}
}

type invalidateOnChange struct{ lists *cache.Lists }

func (n invalidateOnChange) RecordsChanged(_ context.Context, resource string, _ records.Actor) {
	n.lists.Invalidate(resource)
}

// as builds a request carrying a session for the user with userID.
func as(t *testing.T, userID, method, target string, body any) *http.Request {
	t.Helper()
	u, ok := findUser(func(u records.Employee) bool { return u.UserID == userID })
	require.True(t, ok, "unknown test user %s", userID)

	var reader io.Reader = http.NoBody
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	actor := u.AsActor()
	sess := session.New(tokenFor(u), actor, time.Now(), time.Hour, time.Time{})
	return req.WithContext(session.NewContext(req.Context(), sess))
}

type document struct {
	Data   json.RawMessage `json:"data"`
	Meta   map[string]any  `json:"meta"`
	Errors []struct {
		Status string            `json:"status"`
		Code   string            `json:"code"`
		Title  string            `json:"title"`
		Detail string            `json:"detail"`
		Source map[string]string `json:"source"`
	} `json:"errors"`
}

func decodeDoc(t *testing.T, rr *httptest.ResponseRecorder) document {
	t.Helper()
	var doc document
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &doc), rr.Body.String())
	return doc
}

type resource struct {
	Type       string         `json:"type"`
	ID         string         `json:"id"`
	Attributes map[string]any `json:"attributes"`
	Meta       map[string]any `json:"meta"`
}

func (d document) list(t *testing.T) []resource {
	t.Helper()
	var out []resource
	require.NoError(t, json.Unmarshal(d.Data, &out))
	return out
}

func (d document) one(t *testing.T) resource {
	t.Helper()
	var out resource
	require.NoError(t, json.Unmarshal(d.Data, &out))
	return out
}

func TestListEmployees_ScopeAndCapabilities(t *testing.T) {
	f := newFixture(t)

	rr := httptest.NewRecorder()
	f.handler.ListEmployees(rr, as(t, "hr1", http.MethodGet, "/api/v1/employees?sort=full_name", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	doc := decodeDoc(t, rr)
	rows := doc.list(t)
	require.Len(t, rows, 3)

	byID := map[string]resource{}
	for _, row := range rows {
		byID[row.ID] = row
	}
	caps := byID["a1"].Meta["capabilities"].(map[string]any)
	assert.Equal(t, false, caps["edit"], "HR cannot edit an administrator")
	caps = byID["e1"].Meta["capabilities"].(map[string]any)
	assert.Equal(t, true, caps["edit"])
	assert.Equal(t, true, caps["delete"])
	assert.Equal(t, "30000", byID["e1"].Attributes["salary"])
	assert.Equal(t, true, doc.Meta["canCreate"])
}

func TestListEmployees_EmployeeSeesOnlySelf(t *testing.T) {
	f := newFixture(t)

	rr := httptest.NewRecorder()
	f.handler.ListEmployees(rr, as(t, "emp1", http.MethodGet, "/api/v1/employees", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	doc := decodeDoc(t, rr)
	rows := doc.list(t)
	require.Len(t, rows, 1)
	assert.Equal(t, "e1", rows[0].ID)
	assert.Equal(t, "30000", rows[0].Attributes["salary"], "own salary stays visible")
	assert.Equal(t, false, doc.Meta["canCreate"])
}

func TestListEmployees_Cached(t *testing.T) {
	f := newFixture(t)

	for range 3 {
		rr := httptest.NewRecorder()
		f.handler.ListEmployees(rr, as(t, "hr1", http.MethodGet, "/api/v1/employees", nil))
		require.Equal(t, http.StatusOK, rr.Code)
	}
	assert.Equal(t, 1, f.api.fetched("/api/users"))
}

func TestListEmployees_CacheKeyedByActor(t *testing.T) {
	f := newFixture(t)

	list := func(userID string) {
		rr := httptest.NewRecorder()
		f.handler.ListEmployees(rr, as(t, userID, http.MethodGet, "/api/v1/employees", nil))
		require.Equal(t, http.StatusOK, rr.Code)
	}

	list("hr1")
	list("admin")
	assert.Equal(t, 2, f.api.fetched("/api/users"), "different actors never share a roster")

	list("hr1")
	assert.Equal(t, 2, f.api.fetched("/api/users"), "a new session of the same actor reuses it")
}

func TestListEmployees_BadSalaryBounds(t *testing.T) {
	f := newFixture(t)

	rr := httptest.NewRecorder()
	f.handler.ListEmployees(rr, as(t, "hr1", http.MethodGet, "/api/v1/employees?salary_min=abc", nil))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	doc := decodeDoc(t, rr)
	require.Len(t, doc.Errors, 1)
	assert.Equal(t, "/data/attributes/salary", doc.Errors[0].Source["pointer"])
}

func TestGetEmployee_OutOfScope(t *testing.T) {
	f := newFixture(t)

	req := as(t, "emp1", http.MethodGet, "/api/v1/employees/a1", nil)
	req.SetPathValue("id", "a1")
	rr := httptest.NewRecorder()
	f.handler.GetEmployee(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDeleteEmployee_RequiresConfirmation(t *testing.T) {
	f := newFixture(t)

	req := as(t, "hr1", http.MethodDelete, "/api/v1/employees/e1", nil)
	req.SetPathValue("id", "e1")
	rr := httptest.NewRecorder()
	f.handler.DeleteEmployee(rr, req)

	require.Equal(t, http.StatusPreconditionRequired, rr.Code)
	doc := decodeDoc(t, rr)
	require.Len(t, doc.Errors, 1)
	assert.Equal(t, "confirmation_required", doc.Errors[0].Code)
	prompt := doc.Meta["prompt"].(map[string]any)
	assert.Equal(t, "Delete employee?", prompt["title"])
	assert.Contains(t, prompt["message"], "Eve Employee (emp1)")
	assert.Empty(t, f.api.sent(), "nothing is sent before confirmation")

	req = as(t, "hr1", http.MethodDelete, "/api/v1/employees/e1", nil)
	req.SetPathValue("id", "e1")
	req.Header.Set(HeaderConfirm, "true")
	rr = httptest.NewRecorder()
	f.handler.DeleteEmployee(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{"DELETE /api/users/e1"}, f.api.sent())
}

func TestDeleteEmployee_ConfirmQueryParam(t *testing.T) {
	f := newFixture(t)

	req := as(t, "admin", http.MethodDelete, "/api/v1/employees/h1?confirm=1", nil)
	req.SetPathValue("id", "h1")
	rr := httptest.NewRecorder()
	f.handler.DeleteEmployee(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{"DELETE /api/users/h1"}, f.api.sent())
}

func TestDeleteEmployee_Forbidden(t *testing.T) {
	f := newFixture(t)

	req := as(t, "hr1", http.MethodDelete, "/api/v1/employees/a1", nil)
	req.SetPathValue("id", "a1")
	req.Header.Set(HeaderConfirm, "true")
	rr := httptest.NewRecorder()
	f.handler.DeleteEmployee(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Empty(t, f.api.sent())
}

func TestMutationInvalidatesList(t *testing.T) {
	f := newFixture(t)

	list := func() {
		rr := httptest.NewRecorder()
		f.handler.ListEmployees(rr, as(t, "admin", http.MethodGet, "/api/v1/employees", nil))
		require.Equal(t, http.StatusOK, rr.Code)
	}
	list()
	list()
	require.Equal(t, 1, f.api.fetched("/api/users"))

	req := as(t, "admin", http.MethodDelete, "/api/v1/employees/e1", nil)
	req.SetPathValue("id", "e1")
	req.Header.Set(HeaderConfirm, "yes")
	rr := httptest.NewRecorder()
	f.handler.DeleteEmployee(rr, req)
	require.Equal(t, http.StatusPreconditionRequired, rr.Code, "only booleans approve")

	req.Header.Set(HeaderConfirm, "true")
	rr = httptest.NewRecorder()
	f.handler.DeleteEmployee(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	before := f.api.fetched("/api/users")
	list()
	assert.Equal(t, before+1, f.api.fetched("/api/users"))
}

func TestCreateBooking_MaskedDate(t *testing.T) {
	f := newFixture(t)

	rr := httptest.NewRecorder()
	f.handler.CreateBooking(rr, as(t, "emp1", http.MethodPost, "/api/v1/bookings", map[string]string{
		"roomId": "r1",
		"title":  "Planning",
		"date":   "27/02/2026",
		"from":   "09:00",
		"to":     "10:30",
	}))

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var sent map[string]string
	require.NoError(t, json.Unmarshal([]byte(f.api.body("POST /api/bookings")), &sent))
	assert.Equal(t, "2026-02-27T02:00:00Z", sent["startTime"])
	assert.Equal(t, "2026-02-27T03:30:00Z", sent["endTime"])
}

func TestCreateBooking_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		body  map[string]string
		field string
	}{
		{"bad clock", map[string]string{"roomId": "r1", "title": "x", "date": "27/02/2026", "from": "09:00", "to": "25:00"}, "to"},
		{"bad timestamp", map[string]string{"roomId": "r1", "title": "x", "startTime": "tomorrow", "endTime": "2026-02-27T10:00:00Z"}, "startTime"},
		{"end before start", map[string]string{"roomId": "r1", "title": "x", "date": "27/02/2026", "from": "10:00", "to": "09:00"}, "endTime"},
		{"missing room", map[string]string{"title": "x", "date": "27/02/2026", "from": "09:00", "to": "10:00"}, "roomId"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			rr := httptest.NewRecorder()
			f.handler.CreateBooking(rr, as(t, "emp1", http.MethodPost, "/api/v1/bookings", tt.body))

			require.Equal(t, http.StatusBadRequest, rr.Code)
			doc := decodeDoc(t, rr)
			var pointers []string
			for _, e := range doc.Errors {
				pointers = append(pointers, e.Source["pointer"])
			}
			assert.Contains(t, pointers, "/data/attributes/"+tt.field)
			assert.Empty(t, f.api.sent())
		})
	}
}

func TestListRooms_Occupancy(t *testing.T) {
	f := newFixture(t)

	rr := httptest.NewRecorder()
	f.handler.ListRooms(rr, as(t, "emp1", http.MethodGet, "/api/v1/rooms?sort=name", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	doc := decodeDoc(t, rr)
	rows := doc.list(t)
	require.Len(t, rows, 2)
	occupied := map[string]any{}
	for _, row := range rows {
		occupied[row.ID] = row.Attributes["occupied"]
	}
	assert.Equal(t, true, occupied["r1"])
	assert.Equal(t, false, occupied["r2"])
	assert.Equal(t, false, doc.Meta["canManage"])
}

func TestListBookings_Filters(t *testing.T) {
	f := newFixture(t)

	rr := httptest.NewRecorder()
	f.handler.ListBookings(rr, as(t, "emp1", http.MethodGet, "/api/v1/bookings?date=2026-02-28", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decodeDoc(t, rr).list(t))

	rr = httptest.NewRecorder()
	f.handler.ListBookings(rr, as(t, "emp1", http.MethodGet, "/api/v1/bookings?date=2026-02-27", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	rows := decodeDoc(t, rr).list(t)
	require.Len(t, rows, 1)
	assert.Equal(t, "Orchid", rows[0].Attributes["room"])
	assert.Equal(t, true, rows[0].Meta["canCancel"])
}

func TestApproveResetRequest(t *testing.T) {
	f := newFixture(t)

	approve := func(id string, confirm bool) *httptest.ResponseRecorder {
		req := as(t, "admin", http.MethodPost, "/api/v1/reset-requests/"+id+"/approve", nil)
		req.SetPathValue("id", id)
		if confirm {
			req.Header.Set(HeaderConfirm, "true")
		}
		rr := httptest.NewRecorder()
		f.handler.ApproveResetRequest(rr, req)
		return rr
	}

	assert.Equal(t, http.StatusNotFound, approve("missing", true).Code)

	rr := approve("rr1", false)
	require.Equal(t, http.StatusPreconditionRequired, rr.Code)
	assert.Equal(t, "Approve password reset?", decodeDoc(t, rr).Meta["prompt"].(map[string]any)["title"])
	assert.Empty(t, f.api.sent())

	rr = approve("rr1", true)
	require.Equal(t, http.StatusOK, rr.Code)
	res := decodeDoc(t, rr).one(t)
	assert.Equal(t, "reset-links", res.Type)
	assert.Equal(t, "https://console.example.com/auth/reset-password/tok-42", res.Attributes["link"])
	assert.Contains(t, f.api.body("POST /api/auth/admin/request-reset"), `"emp1"`)
}

func TestListResetRequests_ForbiddenForHR(t *testing.T) {
	f := newFixture(t)

	rr := httptest.NewRecorder()
	f.handler.ListResetRequests(rr, as(t, "hr1", http.MethodGet, "/api/v1/reset-requests", nil))

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestEmployeesCSV_Stamped(t *testing.T) {
	f := newFixture(t)

	rr := httptest.NewRecorder()
	f.handler.EmployeesCSV(rr, as(t, "admin", http.MethodGet, "/api/v1/reports/employees.csv", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "employee-report_2026-02-27.csv")

	body := rr.Body.Bytes()
	assert.True(t, bytes.HasPrefix(body, []byte(report.BOM)))
	assert.Contains(t, string(body), `"Eve Employee","EMPLOYEE","Clerk","30,000","People"`)

	issuedAt, err := time.Parse(time.RFC3339Nano, rr.Header().Get(HeaderReportIssuedAt))
	require.NoError(t, err)
	assert.Equal(t, "admin", rr.Header().Get(HeaderReportIssuedBy))
	assert.True(t, f.signer.Verify(rr.Header().Get(HeaderReportID), issuedAt, "admin", body,
		rr.Header().Get(HeaderReportSignature)))
}

func TestEmployeesCSV_Empty(t *testing.T) {
	f := newFixture(t)
	f.api.export = ""

	rr := httptest.NewRecorder()
	f.handler.EmployeesCSV(rr, as(t, "admin", http.MethodGet, "/api/v1/reports/employees.csv", nil))

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, "empty_report", decodeDoc(t, rr).Errors[0].Code)
}

func TestEmployeesPDF_VerifyRoundTrip(t *testing.T) {
	f := newFixture(t)

	rr := httptest.NewRecorder()
	f.handler.EmployeesPDF(rr, as(t, "admin", http.MethodGet, "/api/v1/reports/employees.pdf", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
	require.True(t, bytes.HasPrefix(rr.Body.Bytes(), []byte("%PDF")))

	issuedAt, err := time.Parse(time.RFC3339Nano, rr.Header().Get(HeaderReportIssuedAt))
	require.NoError(t, err)
	verify := func(content []byte) bool {
		req := as(t, "admin", http.MethodPost, "/api/v1/reports/verify", map[string]any{
			"reportId":  rr.Header().Get(HeaderReportID),
			"issuedAt":  issuedAt,
			"issuedBy":  rr.Header().Get(HeaderReportIssuedBy),
			"signature": rr.Header().Get(HeaderReportSignature),
			"content":   content,
		})
		out := httptest.NewRecorder()
		f.handler.VerifyReport(out, req)
		require.Equal(t, http.StatusOK, out.Code)
		return decodeDoc(t, out).one(t).Attributes["valid"].(bool)
	}

	assert.True(t, verify(rr.Body.Bytes()))
	assert.False(t, verify(append(rr.Body.Bytes(), ' ')))
}

func TestVerifyReport_MissingFields(t *testing.T) {
	f := newFixture(t)

	rr := httptest.NewRecorder()
	f.handler.VerifyReport(rr, as(t, "admin", http.MethodPost, "/api/v1/reports/verify", map[string]any{}))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Len(t, decodeDoc(t, rr).Errors, 3)
}

func TestListAuditLogs(t *testing.T) {
	f := newFixture(t)

	rr := httptest.NewRecorder()
	f.handler.ListAuditLogs(rr, as(t, "admin", http.MethodGet, "/api/v1/audit-logs", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	rows := decodeDoc(t, rr).list(t)
	require.Len(t, rows, 1)
	assert.Equal(t, "CREATE_USER", rows[0].Attributes["action"])
	assert.NotNil(t, rows[0].Attributes["category"])
}

func TestFail_Transport(t *testing.T) {
	h := New(Config{
		Service: actions.NewService(gateway.NewClient("http://127.0.0.1:1/api", gateway.WithTimeout(time.Second)),
			actions.Config{SessionTTL: time.Hour}),
		Logger: logging.Discard(),
	})

	rr := httptest.NewRecorder()
	h.ListEmployees(rr, as(t, "hr1", http.MethodGet, "/api/v1/employees", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, "upstream_unavailable", decodeDoc(t, rr).Errors[0].Code)
}

func TestHealth(t *testing.T) {
	f := newFixture(t)

	rr := httptest.NewRecorder()
	f.handler.Health(rr, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "test", body["version"])
	assert.Equal(t, true, body["messaging"].(map[string]any)["connected"])
}
