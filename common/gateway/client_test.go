package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orgspace-systems/orgspace-stack/common/access"
	"github.com/orgspace-systems/orgspace-stack/common/records"
)

const testToken = Token("test-token")

func newTestServer(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL + "/api"), server
}

func createTestJWT(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestListUsers_BareArrayAndEnvelope(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bare array", `[{"_id":"1","full_name":"Ann","role":"HR","salary":42000}]`},
		{"data envelope", `{"data":[{"id":"1","full_name":"Ann","role":"HR","salary":"42000"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/users", r.URL.Path)
				assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
				_, _ = w.Write([]byte(tt.body))
			})

			users, err := client.ListUsers(context.Background(), testToken, "")
			require.NoError(t, err)
			require.Len(t, users, 1)
			assert.Equal(t, "1", users[0].ID)
			assert.Equal(t, records.RoleHR, users[0].Role)
			assert.True(t, users[0].Salary.Equal(decimal.NewFromInt(42000)))
		})
	}
}

func TestListUsers_DepartmentQuery(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "d1", r.URL.Query().Get("department"))
		_, _ = w.Write([]byte(`{"data":null}`))
	})

	users, err := client.ListUsers(context.Background(), testToken, "d1")
	require.NoError(t, err)
	assert.Empty(t, users)
	assert.NotNil(t, users)
}

func TestListUsers_MalformedRecord(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"_id":"1","salary":-5}]`))
	})

	_, err := client.ListUsers(context.Background(), testToken, "")
	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, CodeMalformedResponse, remote.Code)
}

func TestListUsers_RoleOutsideEnumeration(t *testing.T) {
	for _, body := range []string{
		`[{"_id":"1","full_name":"Ann"}]`,
		`[{"_id":"1","full_name":"Ann","role":""}]`,
		`[{"_id":"1","full_name":"Ann","role":"SUPERUSER"}]`,
	} {
		client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		})
		_, err := client.ListUsers(context.Background(), testToken, "")
		var remote *RemoteError
		require.ErrorAs(t, err, &remote, body)
		assert.Equal(t, CodeMalformedResponse, remote.Code)
	}
}

func TestListUsers_LowercaseAdminStaysProtected(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"_id":"a2","full_name":"Root","role":"admin"}]`))
	})

	users, err := client.ListUsers(context.Background(), testToken, "")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, records.RoleAdmin, users[0].Role)

	admin := records.Actor{ID: "a1", Role: records.RoleAdmin}
	hr := records.Actor{ID: "h1", Role: records.RoleHR}
	assert.False(t, access.CanEdit(admin, users[0]))
	assert.False(t, access.CanDelete(admin, users[0]))
	assert.False(t, access.CanEdit(hr, users[0]))
}

func TestNoCredentialNeverSends(t *testing.T) {
	called := false
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := client.ListRooms(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = client.ListRooms(context.Background(), Token(""))
	assert.ErrorIs(t, err, ErrNoSession)
	assert.False(t, called)
}

func TestValidationFailureNeverSends(t *testing.T) {
	called := false
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	start := time.Now()
	err := client.CreateBooking(context.Background(), testToken, records.BookingInput{
		RoomID: "r1", Title: "Sync", StartTime: start, EndTime: start.Add(-time.Hour),
	})
	var vErr *records.ValidationError
	require.ErrorAs(t, err, &vErr)

	err = client.CreateDepartment(context.Background(), testToken, records.DepartmentInput{Name: "Ops", Description: "short"})
	require.ErrorAs(t, err, &vErr)
	assert.False(t, called)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{"unauthorized", http.StatusUnauthorized, `{"message":"Unauthorized"}`, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, ErrSessionExpired)
		}},
		{"forbidden", http.StatusForbidden, ``, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, ErrForbidden)
			assert.ErrorIs(t, err, access.ErrForbidden)
		}},
		{"message string", http.StatusConflict, `{"statusCode":409,"message":"User ID already exists"}`, func(t *testing.T, err error) {
			var remote *RemoteError
			require.ErrorAs(t, err, &remote)
			assert.Equal(t, http.StatusConflict, remote.Status)
			assert.Equal(t, "User ID already exists", remote.Error())
		}},
		{"message list", http.StatusBadRequest, `{"message":["salary must be a number","role is invalid"],"error":"Bad Request"}`, func(t *testing.T, err error) {
			var remote *RemoteError
			require.ErrorAs(t, err, &remote)
			assert.Equal(t, "salary must be a number, role is invalid", remote.Message)
		}},
		{"plain text", http.StatusInternalServerError, `boom`, func(t *testing.T, err error) {
			var remote *RemoteError
			require.ErrorAs(t, err, &remote)
			assert.Equal(t, "boom", remote.Message)
		}},
		{"empty body", http.StatusNotFound, ``, func(t *testing.T, err error) {
			var remote *RemoteError
			require.ErrorAs(t, err, &remote)
			assert.Equal(t, "Not Found", remote.Message)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			err := client.DeleteUser(context.Background(), testToken, "u1")
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestTransportError(t *testing.T) {
	client, server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {})
	server.Close()

	_, err := client.ListDepartments(context.Background(), testToken)
	var transport *TransportError
	require.ErrorAs(t, err, &transport)
	assert.Equal(t, "list departments", transport.Op)
}

func TestObserver(t *testing.T) {
	var gotOp string
	var gotStatus int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer server.Close()

	client := NewClient(server.URL, WithObserver(func(op string, status int, _ time.Duration, err error) {
		gotOp, gotStatus = op, status
		assert.Error(t, err)
	}))
	_, _ = client.ListAuditLogs(context.Background(), testToken)

	assert.Equal(t, "list audit logs", gotOp)
	assert.Equal(t, http.StatusTeapot, gotStatus)
}

func TestSignIn(t *testing.T) {
	secret := "s3cret"
	var token string
	client, server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/signin", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "emp001", body["userId"])
		_ = json.NewEncoder(w).Encode(map[string]string{"accessToken": token})
	})
	expires := time.Now().Add(time.Hour).Truncate(time.Second)
	token = createTestJWT(t, secret, Claims{
		Name: "Ann Smith",
		Role: "hr",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	})

	res, err := client.SignIn(context.Background(), records.SignInInput{UserID: "emp001", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, token, res.AccessToken)
	actor := res.Claims.Actor()
	assert.Equal(t, records.RoleHR, actor.Role)
	assert.Equal(t, "Ann Smith", actor.FullName)
	assert.Equal(t, "u1", actor.ID)
	assert.True(t, expires.Equal(res.Claims.Expiry()))

	verifying := NewClient(server.URL+"/api", WithTokenSecret(secret))
	_, err = verifying.SignIn(context.Background(), records.SignInInput{UserID: "emp001", Password: "pw"})
	require.NoError(t, err)

	wrongSecret := NewClient(server.URL+"/api", WithTokenSecret("other"))
	_, err = wrongSecret.SignIn(context.Background(), records.SignInInput{UserID: "emp001", Password: "pw"})
	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, CodeMalformedResponse, remote.Code)
}

func TestSignIn_MissingRoleIsEmployee(t *testing.T) {
	assert.Equal(t, records.RoleEmployee, Claims{}.Actor().Role)
	assert.Equal(t, records.Role("OWNER"), Claims{Role: "owner"}.Actor().Role)
}

func TestSignIn_Rejected(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"Invalid credentials"}`))
	})
	_, err := client.SignIn(context.Background(), records.SignInInput{UserID: "x", Password: "y"})
	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, "Invalid credentials", remote.Message)
}

func TestSignIn_UnauthorizedIsNotSessionExpiry(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Invalid credentials"}`))
	})
	_, err := client.SignIn(context.Background(), records.SignInInput{UserID: "x", Password: "y"})
	assert.NotErrorIs(t, err, ErrSessionExpired)
	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, http.StatusUnauthorized, remote.Status)
}

func TestApproveReset(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/admin/request-reset", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "emp7", body["targetUserId"])
		assert.Equal(t, "rq1", body["requestId"])
		_, _ = w.Write([]byte(`{"resetToken":"abc123"}`))
	})

	token, err := client.ApproveReset(context.Background(), testToken, records.ApproveResetInput{TargetUserID: "emp7", RequestID: "rq1"})
	require.NoError(t, err)
	assert.Equal(t, "abc123", token)
}

func TestResetPassword_Public(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/reset-password/tok-1", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"token":"tok-1","newPassword":"abcdef"}`, string(body))
	})

	err := client.ResetPassword(context.Background(), records.PasswordResetInput{Token: "tok-1", NewPassword: "abcdef", Confirm: "abcdef"})
	require.NoError(t, err)
}

func TestCreateUser_Body(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"userId":"emp009","full_name":"Kim Lee","password":"secret1","salary":25000.5,
			"role":"EMPLOYEE","position":"Clerk","department":"Sales"}`, string(body))
		w.WriteHeader(http.StatusCreated)
	})

	err := client.CreateUser(context.Background(), testToken, records.NewEmployee{
		UserID: "emp009", FullName: "Kim Lee", Password: "secret1",
		Salary: decimal.RequireFromString("25000.5"), Role: records.RoleEmployee,
		Position: "Clerk", Department: "Sales",
	})
	require.NoError(t, err)
}

func TestUpdateUser_OmitsUnsetFields(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/users/u1", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"full_name":"Kim","position":"Lead","department":"d2"}`, string(body))
	})

	err := client.UpdateUser(context.Background(), testToken, "u1", records.EmployeeUpdate{FullName: "Kim", Position: "Lead", Department: "d2"})
	require.NoError(t, err)
}

func TestBookings(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			assert.Equal(t, "my", r.URL.Query().Get("type"))
			_, _ = w.Write([]byte(`[{"_id":"b1","title":"Sync","roomId":{"_id":"r1","name":"Orchid"},
				"userId":{"_id":"u1","full_name":"Ann"},"startTime":"2026-02-27T09:00:00.000Z",
				"endTime":"2026-02-27T10:00:00.000Z","status":"APPROVED"}]`))
		case r.Method == http.MethodPatch:
			assert.Equal(t, "/api/bookings/b1/cancel", r.URL.Path)
		case r.Method == http.MethodPost:
			body, _ := io.ReadAll(r.Body)
			assert.JSONEq(t, `{"roomId":"r1","title":"Sync","startTime":"2026-02-27T02:00:00Z","endTime":"2026-02-27T03:00:00Z"}`, string(body))
		}
	})
	ctx := context.Background()

	list, err := client.ListBookings(ctx, testToken, BookingsMy)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Orchid", list[0].Room.Name)
	assert.Equal(t, "u1", list[0].User.ID)

	require.NoError(t, client.CancelBooking(ctx, testToken, "b1"))

	ict := time.FixedZone("ICT", 7*60*60)
	start := time.Date(2026, 2, 27, 9, 0, 0, 0, ict)
	require.NoError(t, client.CreateBooking(ctx, testToken, records.BookingInput{
		RoomID: "r1", Title: "Sync", StartTime: start, EndTime: start.Add(time.Hour),
	}))
}

func TestProfile_Envelope(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"_id":"u1","full_name":"Ann","role":"MANAGER","department":{"_id":"d1","name":"Ops"}}}`))
	})

	me, err := client.Profile(context.Background(), testToken)
	require.NoError(t, err)
	assert.Equal(t, "d1", me.DepartmentID())
	assert.Equal(t, records.RoleManager, me.Role)
}

func TestExportUsersReport(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "text/csv", r.Header.Get("Accept"))
		_, _ = w.Write([]byte("userId,full_name\nemp1,Ann\n"))
	})

	data, err := client.ExportUsersReport(context.Background(), testToken)
	require.NoError(t, err)
	assert.Equal(t, "userId,full_name\nemp1,Ann\n", string(data))
}

func TestTransportErrorUnwraps(t *testing.T) {
	inner := errors.New("dial tcp: refused")
	err := &TransportError{Op: "list users", Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "cannot reach server")
}
