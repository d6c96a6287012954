package listquery

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"

	"github.com/orgspace-systems/orgspace-stack/common/records"
)

// EmployeeCriteria filters and orders the employee directory.
type EmployeeCriteria struct {
	Search     string
	Role       string
	Department string
	Salary     Bounds
	Sort       SortState
}

func employeeSalary(e records.Employee) decimal.Decimal {
	if e.Salary == nil {
		return decimal.Zero
	}
	return *e.Salary
}

// EmployeeKeys are the sortable employee fields.
var EmployeeKeys = Keys[records.Employee]{
	"full_name":  {Text: func(e records.Employee) string { return e.FullName }},
	"userId":     {Text: func(e records.Employee) string { return e.UserID }},
	"position":   {Text: func(e records.Employee) string { return e.Position }},
	"role":       {Text: func(e records.Employee) string { return string(e.Role) }},
	"department": {Text: func(e records.Employee) string { return records.RefName(e.Department) }},
	"salary":     {Numeric: employeeSalary},
}

// Employees applies c to list.
func Employees(list []records.Employee, c EmployeeCriteria, locale language.Tag) []records.Employee {
	out := Filter(list,
		Text(c.Search,
			func(e records.Employee) string { return e.FullName },
			func(e records.Employee) string { return e.UserID },
			func(e records.Employee) string { return e.Position },
			func(e records.Employee) string { return records.RefName(e.Department) },
		),
		Category(c.Role, func(e records.Employee) string { return string(e.Role) }),
		Category(c.Department, func(e records.Employee) string { return e.DepartmentID() }),
		Range(c.Salary, employeeSalary),
	)
	return Sort(out, c.Sort, EmployeeKeys, locale)
}

// DepartmentCriteria filters the department list.
type DepartmentCriteria struct {
	Search string
	Sort   SortState
}

// DepartmentKeys are the sortable department fields.
var DepartmentKeys = Keys[records.Department]{
	"name":        {Text: func(d records.Department) string { return d.Name }},
	"description": {Text: func(d records.Department) string { return d.Description }},
}

// Departments applies c to list.
func Departments(list []records.Department, c DepartmentCriteria, locale language.Tag) []records.Department {
	out := Filter(list,
		Text(c.Search,
			func(d records.Department) string { return d.Name },
			func(d records.Department) string { return d.Description },
		),
	)
	return Sort(out, c.Sort, DepartmentKeys, locale)
}

// RoomCriteria filters the room list. Capacity is usually only bounded below.
type RoomCriteria struct {
	Search   string
	Capacity Bounds
	Sort     SortState
}

// RoomKeys are the sortable room fields.
var RoomKeys = Keys[records.Room]{
	"name":     {Text: func(r records.Room) string { return r.Name }},
	"capacity": {Numeric: roomCapacity},
}

func roomCapacity(r records.Room) decimal.Decimal {
	return decimal.NewFromInt(int64(r.Capacity))
}

// Rooms applies c to list.
func Rooms(list []records.Room, c RoomCriteria, locale language.Tag) []records.Room {
	out := Filter(list,
		Text(c.Search, func(r records.Room) string { return r.Name }),
		Range(c.Capacity, roomCapacity),
	)
	return Sort(out, c.Sort, RoomKeys, locale)
}

// BookingCriteria filters booking history.
type BookingCriteria struct {
	Search string
	Status string
	Date   string
	Sort   SortState
}

// BookingKeys are the sortable booking fields.
var BookingKeys = Keys[records.Booking]{
	"title":     {Text: func(b records.Booking) string { return b.Title }},
	"room":      {Text: func(b records.Booking) string { return records.RefName(b.Room) }},
	"startTime": {Numeric: func(b records.Booking) decimal.Decimal { return unixDecimal(b.StartTime) }},
}

// Bookings applies c to list.
func Bookings(list []records.Booking, c BookingCriteria, locale language.Tag) []records.Booking {
	out := Filter(list,
		Text(c.Search,
			func(b records.Booking) string { return b.Title },
			func(b records.Booking) string { return records.RefName(b.Room) },
		),
		Category(c.Status, func(b records.Booking) string { return string(b.Status) }),
		DatePrefix(c.Date, func(b records.Booking) time.Time { return b.StartTime }),
	)
	return Sort(out, c.Sort, BookingKeys, locale)
}

// AuditCriteria filters the audit log. Action matches an exact tag and
// Subject matches the tag's category subject; either may be All.
type AuditCriteria struct {
	Search  string
	Action  string
	Subject string
	Date    string
	Sort    SortState
}

// AuditKeys are the sortable audit log fields.
var AuditKeys = Keys[records.AuditLogEntry]{
	"createdAt": {Numeric: func(a records.AuditLogEntry) decimal.Decimal { return unixDecimal(a.CreatedAt) }},
	"actor":     {Text: func(a records.AuditLogEntry) string { return a.ActorName() }},
	"action":    {Text: func(a records.AuditLogEntry) string { return string(a.Action) }},
}

// AuditLogs applies c to list.
func AuditLogs(list []records.AuditLogEntry, c AuditCriteria, locale language.Tag) []records.AuditLogEntry {
	out := Filter(list,
		Text(c.Search,
			func(a records.AuditLogEntry) string { return a.ActorName() },
			func(a records.AuditLogEntry) string { return a.Details },
			func(a records.AuditLogEntry) string { return a.TargetName },
		),
		Category(c.Action, func(a records.AuditLogEntry) string { return string(a.Action) }),
		Category(c.Subject, func(a records.AuditLogEntry) string { return string(a.Action.Category().Subject) }),
		DatePrefix(c.Date, func(a records.AuditLogEntry) time.Time { return a.CreatedAt }),
	)
	return Sort(out, c.Sort, AuditKeys, locale)
}

func unixDecimal(t time.Time) decimal.Decimal {
	return decimal.NewFromInt(t.UnixMilli())
}
