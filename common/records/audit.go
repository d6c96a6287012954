package records

import (
	"encoding/json"
	"strings"
)

// AuditAction is the closed set of action tags written to the audit log.
type AuditAction string

const (
	ActionLogin                AuditAction = "LOGIN"
	ActionLogout               AuditAction = "LOGOUT"
	ActionCreateUser           AuditAction = "CREATE_USER"
	ActionUpdateUser           AuditAction = "UPDATE_USER"
	ActionDeleteUser           AuditAction = "DELETE_USER"
	ActionCreateDepartment     AuditAction = "CREATE_DEPARTMENT"
	ActionUpdateDepartment     AuditAction = "UPDATE_DEPARTMENT"
	ActionDeleteDepartment     AuditAction = "DELETE_DEPARTMENT"
	ActionCreateRoom           AuditAction = "CREATE_ROOM"
	ActionUpdateRoom           AuditAction = "UPDATE_ROOM"
	ActionDeleteRoom           AuditAction = "DELETE_ROOM"
	ActionCreateBooking        AuditAction = "CREATE_BOOKING"
	ActionCancelBooking        AuditAction = "CANCEL_BOOKING"
	ActionRequestPasswordReset AuditAction = "REQUEST_PASSWORD_RESET"
	ActionApprovePasswordReset AuditAction = "APPROVE_PASSWORD_RESET"
	ActionResetPassword        AuditAction = "RESET_PASSWORD"
	ActionExportReport         AuditAction = "EXPORT_REPORT"

	// ActionOther is what any tag outside the known set decodes to.
	ActionOther AuditAction = "OTHER"
)

// Subject groups actions by the kind of record they touch.
type Subject string

const (
	SubjectSession    Subject = "session"
	SubjectUser       Subject = "user"
	SubjectDepartment Subject = "department"
	SubjectRoom       Subject = "room"
	SubjectBooking    Subject = "booking"
	SubjectPassword   Subject = "password"
	SubjectReport     Subject = "report"
	SubjectOther      Subject = "other"
)

// Verb is what the action did to its subject.
type Verb string

const (
	VerbSignIn  Verb = "sign_in"
	VerbSignOut Verb = "sign_out"
	VerbCreate  Verb = "create"
	VerbUpdate  Verb = "update"
	VerbDelete  Verb = "delete"
	VerbCancel  Verb = "cancel"
	VerbRequest Verb = "request"
	VerbApprove Verb = "approve"
	VerbReset   Verb = "reset"
	VerbExport  Verb = "export"
	VerbOther   Verb = "other"
)

// Tone is the presentation hint for an action badge.
type Tone string

const (
	TonePositive    Tone = "positive"
	ToneNeutral     Tone = "neutral"
	ToneCaution     Tone = "caution"
	ToneDestructive Tone = "destructive"
)

// Category describes an action for grouping, filtering and display.
type Category struct {
	Subject Subject `json:"subject"`
	Verb    Verb    `json:"verb"`
	Tone    Tone    `json:"tone"`
	Label   string  `json:"label"`
}

var actionCategories = map[AuditAction]Category{
	ActionLogin:                {SubjectSession, VerbSignIn, TonePositive, "Login"},
	ActionLogout:               {SubjectSession, VerbSignOut, ToneNeutral, "Logout"},
	ActionCreateUser:           {SubjectUser, VerbCreate, TonePositive, "Create user"},
	ActionUpdateUser:           {SubjectUser, VerbUpdate, ToneCaution, "Update user"},
	ActionDeleteUser:           {SubjectUser, VerbDelete, ToneDestructive, "Delete user"},
	ActionCreateDepartment:     {SubjectDepartment, VerbCreate, TonePositive, "Create department"},
	ActionUpdateDepartment:     {SubjectDepartment, VerbUpdate, ToneCaution, "Update department"},
	ActionDeleteDepartment:     {SubjectDepartment, VerbDelete, ToneDestructive, "Delete department"},
	ActionCreateRoom:           {SubjectRoom, VerbCreate, TonePositive, "Create room"},
	ActionUpdateRoom:           {SubjectRoom, VerbUpdate, ToneCaution, "Update room"},
	ActionDeleteRoom:           {SubjectRoom, VerbDelete, ToneDestructive, "Delete room"},
	ActionCreateBooking:        {SubjectBooking, VerbCreate, TonePositive, "New reservation"},
	ActionCancelBooking:        {SubjectBooking, VerbCancel, ToneDestructive, "Cancellation"},
	ActionRequestPasswordReset: {SubjectPassword, VerbRequest, ToneNeutral, "Password reset requested"},
	ActionApprovePasswordReset: {SubjectPassword, VerbApprove, ToneCaution, "Password reset approved"},
	ActionResetPassword:        {SubjectPassword, VerbReset, ToneCaution, "Password changed"},
	ActionExportReport:         {SubjectReport, VerbExport, ToneNeutral, "Report exported"},
}

var otherCategory = Category{SubjectOther, VerbOther, ToneNeutral, "Other"}

// ParseAuditAction maps a raw tag onto the closed set. Anything unknown
// becomes ActionOther; tags are never guessed from substrings.
func ParseAuditAction(s string) AuditAction {
	a := AuditAction(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := actionCategories[a]; ok {
		return a
	}
	return ActionOther
}

func (a *AuditAction) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*a = ParseAuditAction(s)
	return nil
}

// Category returns the category for a, or the "other" category.
func (a AuditAction) Category() Category {
	if c, ok := actionCategories[a]; ok {
		return c
	}
	return otherCategory
}

// Known reports whether a is part of the closed action set.
func (a AuditAction) Known() bool {
	_, ok := actionCategories[a]
	return ok
}

// AuditActions returns every known action tag in declaration order.
func AuditActions() []AuditAction {
	return []AuditAction{
		ActionLogin, ActionLogout,
		ActionCreateUser, ActionUpdateUser, ActionDeleteUser,
		ActionCreateDepartment, ActionUpdateDepartment, ActionDeleteDepartment,
		ActionCreateRoom, ActionUpdateRoom, ActionDeleteRoom,
		ActionCreateBooking, ActionCancelBooking,
		ActionRequestPasswordReset, ActionApprovePasswordReset, ActionResetPassword,
		ActionExportReport,
	}
}
