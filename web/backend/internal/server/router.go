package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/orgspace-systems/orgspace-stack/common/access"
	"github.com/orgspace-systems/orgspace-stack/common/logging"
	commonmw "github.com/orgspace-systems/orgspace-stack/common/middleware"
	"github.com/orgspace-systems/orgspace-stack/web/backend/internal/auth"
	"github.com/orgspace-systems/orgspace-stack/web/backend/internal/handlers"
	"github.com/orgspace-systems/orgspace-stack/web/backend/internal/middleware"
)

// RouterConfig holds dependencies needed to configure routes
type RouterConfig struct {
	Handler   *handlers.Handler
	Auth      *auth.Manager
	StaticDir string
	Logger    *logging.Logger

	// AllowedOrigins are trusted for CORS and cross-origin mutations, e.g.
	// a console dev server on another port.
	AllowedOrigins []string
	CookieSecure   bool
}

// NewRouter constructs a ServeMux with web backend routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()
	h := cfg.Handler
	signedIn := func(fn http.HandlerFunc) http.Handler { return cfg.Auth.Protect(fn) }
	page := func(p access.Page, fn http.HandlerFunc) http.Handler { return cfg.Auth.RequireAccess(p)(fn) }

	// Session endpoints
	mux.HandleFunc("POST /api/auth/login", h.Login)
	mux.HandleFunc("POST /api/auth/logout", h.Logout)
	mux.HandleFunc("POST /api/auth/forgot-password", h.ForgotPassword)
	mux.HandleFunc("POST /api/auth/reset-password/{token}", h.ResetPassword)
	mux.Handle("GET /api/auth/me", signedIn(h.Me))
	mux.Handle("POST /api/auth/refresh", signedIn(h.Refresh))

	mux.Handle("GET /api/v1/dashboard", page(access.PageDashboard, h.Dashboard))

	// Employees are scoped per actor by the service, so every role may list.
	mux.Handle("GET /api/v1/employees", signedIn(h.ListEmployees))
	mux.Handle("GET /api/v1/employees/me", signedIn(h.MyProfile))
	mux.Handle("GET /api/v1/employees/{id}", signedIn(h.GetEmployee))
	mux.Handle("POST /api/v1/employees", signedIn(h.CreateEmployee))
	mux.Handle("PUT /api/v1/employees/{id}", signedIn(h.UpdateEmployee))
	mux.Handle("DELETE /api/v1/employees/{id}", signedIn(h.DeleteEmployee))

	mux.Handle("GET /api/v1/departments", signedIn(h.ListDepartments))
	mux.Handle("POST /api/v1/departments", page(access.PageDepartments, h.CreateDepartment))
	mux.Handle("PUT /api/v1/departments/{id}", page(access.PageDepartments, h.UpdateDepartment))
	mux.Handle("DELETE /api/v1/departments/{id}", page(access.PageDepartments, h.DeleteDepartment))

	mux.Handle("GET /api/v1/rooms", page(access.PageBooking, h.ListRooms))
	mux.Handle("POST /api/v1/rooms", page(access.PageRoomAdmin, h.CreateRoom))
	mux.Handle("PUT /api/v1/rooms/{id}", page(access.PageRoomAdmin, h.UpdateRoom))
	mux.Handle("DELETE /api/v1/rooms/{id}", page(access.PageRoomAdmin, h.DeleteRoom))

	mux.Handle("GET /api/v1/bookings", page(access.PageBooking, h.ListBookings))
	mux.Handle("POST /api/v1/bookings", page(access.PageBooking, h.CreateBooking))
	mux.Handle("PATCH /api/v1/bookings/{id}/cancel", page(access.PageBooking, h.CancelBooking))

	mux.Handle("GET /api/v1/audit-logs", page(access.PageAuditLogs, h.ListAuditLogs))
	mux.Handle("GET /api/v1/audit-logs/actions", page(access.PageAuditLogs, h.ListAuditActions))

	mux.Handle("GET /api/v1/reset-requests", page(access.PageResetRequests, h.ListResetRequests))
	mux.Handle("POST /api/v1/reset-requests/{id}/approve", page(access.PageResetRequests, h.ApproveResetRequest))

	mux.Handle("GET /api/v1/reports/employees.csv", page(access.PageReports, h.EmployeesCSV))
	mux.Handle("GET /api/v1/reports/employees.pdf", page(access.PageReports, h.EmployeesPDF))
	mux.Handle("POST /api/v1/reports/verify", page(access.PageReports, h.VerifyReport))

	mux.HandleFunc("GET /api/health", h.Health)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Serve the console build (must be last)
	mux.Handle("/", handlers.NewSPAHandler(cfg.StaticDir))

	var handler http.Handler = mux
	handler = middleware.CSRF(middleware.CSRFConfig{TrustedOrigins: cfg.AllowedOrigins, Logger: cfg.Logger})(handler)
	handler = middleware.SecurityHeaders(middleware.SecurityConfig{CookieSecure: cfg.CookieSecure})(handler)
	handler = commonmw.CORS(commonmw.DefaultCORSConfig(cfg.AllowedOrigins))(handler)
	handler = middleware.AccessLog(cfg.Logger)(handler)
	return commonmw.RequestID(handler)
}
