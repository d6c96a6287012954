package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/orgspace-systems/orgspace-stack/common/logging"
)

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestCSRF_ExemptPaths(t *testing.T) {
	mw := CSRF(CSRFConfig{Logger: logging.Discard()})

	for _, path := range []string{"/api/health", "/metrics"} {
		t.Run(path, func(t *testing.T) {
			called := false
			req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{}`))
			req.Header.Set("Sec-Fetch-Site", "cross-site")
			req.Header.Set("Origin", "http://evil.example")
			rr := httptest.NewRecorder()

			mw(okHandler(&called)).ServeHTTP(rr, req)

			assert.True(t, called)
			assert.Equal(t, http.StatusOK, rr.Code)
		})
	}
}

func TestCSRF_SameOrigin(t *testing.T) {
	mw := CSRF(CSRFConfig{Logger: logging.Discard()})

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/auth/login"},
		{http.MethodPut, "/api/v1/employees/e1"},
		{http.MethodDelete, "/api/v1/rooms/r1"},
		{http.MethodPatch, "/api/v1/bookings/b1/cancel"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			called := false
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(`{}`))
			req.Header.Set("Sec-Fetch-Site", "same-origin")
			rr := httptest.NewRecorder()

			mw(okHandler(&called)).ServeHTTP(rr, req)

			assert.True(t, called)
			assert.Equal(t, http.StatusOK, rr.Code)
		})
	}
}

func TestCSRF_CrossOriginRejected(t *testing.T) {
	mw := CSRF(CSRFConfig{Logger: logging.Discard()})

	called := false
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/employees/e1", nil)
	req.Header.Set("Sec-Fetch-Site", "cross-site")
	req.Header.Set("Origin", "http://evil.example")
	rr := httptest.NewRecorder()

	mw(okHandler(&called)).ServeHTTP(rr, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Contains(t, rr.Body.String(), "cross_origin_rejected")
}

func TestCSRF_SafeMethodsPass(t *testing.T) {
	mw := CSRF(CSRFConfig{Logger: logging.Discard()})

	called := false
	req := httptest.NewRequest(http.MethodGet, "/api/v1/rooms", nil)
	req.Header.Set("Sec-Fetch-Site", "cross-site")
	rr := httptest.NewRecorder()

	mw(okHandler(&called)).ServeHTTP(rr, req)
	assert.True(t, called)
}

func TestCSRF_TrustedOrigin(t *testing.T) {
	mw := CSRF(CSRFConfig{
		TrustedOrigins: []string{"http://localhost:5173", "https://*.example.com", ""},
		Logger:         logging.Discard(),
	})

	called := false
	req := httptest.NewRequest(http.MethodPost, "/api/v1/departments", strings.NewReader(`{}`))
	req.Header.Set("Sec-Fetch-Site", "cross-site")
	req.Header.Set("Origin", "http://localhost:5173")
	rr := httptest.NewRecorder()

	mw(okHandler(&called)).ServeHTTP(rr, req)

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rr.Code)
}
