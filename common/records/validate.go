package records

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ValidationError collects per-field validation failures.
type ValidationError struct {
	FieldErrors map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.FieldErrors) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(e.FieldErrors))
	for f := range e.FieldErrors {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+" "+e.FieldErrors[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether any field failed.
func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.FieldErrors) > 0
}

// Add records msg for field. The first message for a field wins.
func (e *ValidationError) Add(field, msg string) {
	if e.FieldErrors == nil {
		e.FieldErrors = make(map[string]string)
	}
	if _, exists := e.FieldErrors[field]; !exists {
		e.FieldErrors[field] = msg
	}
}

// Merge copies other's field errors into e.
func (e *ValidationError) Merge(other *ValidationError) {
	if other == nil {
		return
	}
	for f, msg := range other.FieldErrors {
		e.Add(f, msg)
	}
}

// Err returns e as an error, or nil when nothing failed.
func (e *ValidationError) Err() error {
	if !e.HasErrors() {
		return nil
	}
	return e
}

// crossChecker is implemented by inputs with rules spanning several fields.
type crossChecker interface {
	crossCheck(*ValidationError)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	if err := v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return Role(fl.Field().String()).Valid()
	}); err != nil {
		panic(err)
	}
	return v
}

func decimalValue(field reflect.Value) any {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return nil
}

// Validate checks v against its struct tags and any cross-field rules.
// It returns a *ValidationError describing every failed field.
func Validate(v any) error {
	vErr := &ValidationError{}
	if err := validate.Struct(v); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("validate: %w", err)
		}
		for _, fe := range fieldErrs {
			vErr.Add(fe.Field(), describe(fe))
		}
	}
	if cc, ok := v.(crossChecker); ok {
		cc.crossCheck(vErr)
	}
	return vErr.Err()
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "eqfield":
		return "does not match"
	case "role":
		return "must be one of ADMIN, HR, MANAGER, EMPLOYEE"
	}
	return "is invalid"
}

// SignInInput is the credential pair submitted at sign-in.
type SignInInput struct {
	UserID   string `json:"userId" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ForgotPasswordInput asks an administrator to issue a reset link.
type ForgotPasswordInput struct {
	UserID string `json:"userId" validate:"required"`
}

// PasswordResetInput consumes a reset token.
type PasswordResetInput struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
	Confirm     string `json:"confirmPassword" validate:"eqfield=NewPassword"`
}

// NewEmployee is the payload for creating an employee. Department carries the
// department name, which is what the record API keys creation on.
type NewEmployee struct {
	UserID     string          `json:"userId" validate:"required,min=3,max=50"`
	FullName   string          `json:"full_name" validate:"required,max=200"`
	Password   string          `json:"password" validate:"required,min=6"`
	Salary     decimal.Decimal `json:"salary" validate:"gte=0"`
	Role       Role            `json:"role" validate:"required,role"`
	Position   string          `json:"position" validate:"required,max=100"`
	Department string          `json:"department" validate:"required"`
}

// EmployeeUpdate is the payload for editing an employee. Department carries
// the department ID. Salary and Role are only sent when the actor may change them.
type EmployeeUpdate struct {
	FullName   string           `json:"full_name" validate:"required,max=200"`
	Position   string           `json:"position" validate:"max=100"`
	Department string           `json:"department,omitempty"`
	Salary     *decimal.Decimal `json:"salary,omitempty" validate:"omitempty,gte=0"`
	Role       *Role            `json:"role,omitempty" validate:"omitempty,role"`
}

// DepartmentInput creates or renames a department.
type DepartmentInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
}

func (in DepartmentInput) crossCheck(vErr *ValidationError) {
	if msg := CheckDepartmentDescription(in.Description); msg != "" {
		vErr.Add("description", msg)
	}
}

// MinDescriptionLength is the minimum number of characters in a department
// description after trimming.
const MinDescriptionLength = 10

var descriptionPattern = regexp.MustCompile(`^[a-zA-Z\x{0E01}-\x{0E2E}\x{0E30}-\x{0E4C}\s]+$`)

// CheckDepartmentDescription returns "" when desc is acceptable, otherwise
// the reason it is not. Letters (Latin or Thai) and whitespace only.
func CheckDepartmentDescription(desc string) string {
	desc = strings.TrimSpace(desc)
	switch {
	case desc == "":
		return "is required"
	case utf8.RuneCountInString(desc) < MinDescriptionLength:
		return fmt.Sprintf("must be at least %d characters", MinDescriptionLength)
	case !descriptionPattern.MatchString(desc):
		return "may contain only letters and spaces"
	}
	return ""
}

// RoomInput creates or updates a room.
type RoomInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Capacity int    `json:"capacity" validate:"gt=0"`
}

// BookingInput reserves a room.
type BookingInput struct {
	RoomID    string    `json:"roomId" validate:"required"`
	Title     string    `json:"title" validate:"required,max=200"`
	StartTime time.Time `json:"startTime" validate:"required"`
	EndTime   time.Time `json:"endTime" validate:"required"`
}

func (in BookingInput) crossCheck(vErr *ValidationError) {
	if in.StartTime.IsZero() || in.EndTime.IsZero() {
		return
	}
	if !in.StartTime.Before(in.EndTime) {
		vErr.Add("endTime", "must be after startTime")
	}
}

// ApproveResetInput approves a pending reset for TargetUserID. RequestID is
// optional and links the approval to a specific pending request.
type ApproveResetInput struct {
	TargetUserID string `json:"targetUserId" validate:"required"`
	RequestID    string `json:"requestId,omitempty"`
}
