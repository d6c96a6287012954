package access

import (
	"slices"

	"github.com/orgspace-systems/orgspace-stack/common/records"
)

// Page identifies a top-level area of the console.
type Page string

const (
	PageDashboard     Page = "dashboard"
	PageBooking       Page = "booking"
	PageDepartments   Page = "departments"
	PageReports       Page = "reports"
	PageAuditLogs     Page = "audit-logs"
	PageResetRequests Page = "reset-requests"
	PageRoomAdmin     Page = "room-admin"
)

var pageRoles = map[Page][]records.Role{
	PageDashboard:     records.AllRoles,
	PageBooking:       records.AllRoles,
	PageDepartments:   {records.RoleAdmin, records.RoleHR},
	PageReports:       {records.RoleAdmin, records.RoleHR},
	PageAuditLogs:     {records.RoleAdmin},
	PageResetRequests: {records.RoleAdmin},
	PageRoomAdmin:     {records.RoleAdmin},
}

// CanAccess reports whether actor may open page. Unknown pages are denied.
func CanAccess(actor records.Actor, page Page) bool {
	return slices.Contains(pageRoles[page], actor.Role)
}

// Pages lists the pages actor may open, in navigation order.
func Pages(actor records.Actor) []Page {
	var out []Page
	for _, p := range []Page{PageDashboard, PageBooking, PageDepartments, PageReports, PageAuditLogs, PageResetRequests, PageRoomAdmin} {
		if CanAccess(actor, p) {
			out = append(out, p)
		}
	}
	return out
}
