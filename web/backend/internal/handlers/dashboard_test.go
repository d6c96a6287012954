package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboard_Admin(t *testing.T) {
	f := newFixture(t)

	rr := httptest.NewRecorder()
	f.handler.Dashboard(rr, as(t, "admin", http.MethodGet, "/api/v1/dashboard", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	res := decodeDoc(t, rr).one(t)
	assert.Equal(t, "dashboards", res.Type)
	a := res.Attributes
	assert.EqualValues(t, 3, a["employees"])
	assert.Equal(t, map[string]any{"ADMIN": 1.0, "HR": 1.0, "EMPLOYEE": 1.0}, a["employeesByRole"])
	assert.EqualValues(t, 2, a["departments"])
	assert.EqualValues(t, 2, a["rooms"])
	assert.EqualValues(t, 1, a["roomsOccupied"])
	assert.EqualValues(t, 1, a["pendingResets"])
	assert.Contains(t, a["pages"], "reset-requests")
}

func TestDashboard_EmployeeOmitsResets(t *testing.T) {
	f := newFixture(t)

	rr := httptest.NewRecorder()
	f.handler.Dashboard(rr, as(t, "emp1", http.MethodGet, "/api/v1/dashboard", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	a := decodeDoc(t, rr).one(t).Attributes
	assert.EqualValues(t, 1, a["employees"])
	assert.EqualValues(t, 1, a["upcomingBookings"])
	assert.NotContains(t, a, "pendingResets")
}

func TestDashboard_SoftFailures(t *testing.T) {
	f := newFixture(t)
	f.api.bookings = `not json`

	rr := httptest.NewRecorder()
	f.handler.Dashboard(rr, as(t, "admin", http.MethodGet, "/api/v1/dashboard", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	a := decodeDoc(t, rr).one(t).Attributes
	assert.EqualValues(t, 2, a["rooms"])
	assert.NotContains(t, a, "roomsOccupied")
	assert.NotContains(t, a, "upcomingBookings")
}

func TestDashboard_RosterRequired(t *testing.T) {
	f := newFixture(t)

	req := as(t, "emp1", http.MethodGet, "/api/v1/dashboard", nil)
	// A token the record API cannot resolve makes the profile lookup fail.
	currentSession(req).Token = "garbage"
	rr := httptest.NewRecorder()
	f.handler.Dashboard(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
