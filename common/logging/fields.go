package logging

import "log/slog"

// Field names shared by every component.
const (
	FieldService   = "service"
	FieldRequestID = "request_id"
	FieldSessionID = "session_id"
	FieldUserID    = "user_id"
	FieldRole      = "role"
	FieldResource  = "resource"
	FieldOperation = "operation"
	FieldReportID  = "report_id"
	FieldIP        = "ip"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldDuration  = "duration_ms"
	FieldError     = "error"
)

func Service(name string) slog.Attr {
	return slog.String(FieldService, name)
}

func RequestID(id string) slog.Attr {
	return slog.String(FieldRequestID, id)
}

func SessionID(id string) slog.Attr {
	return slog.String(FieldSessionID, id)
}

func UserID(id string) slog.Attr {
	return slog.String(FieldUserID, id)
}

func Role(role string) slog.Attr {
	return slog.String(FieldRole, role)
}

// Resource names the record collection an operation touched.
func Resource(name string) slog.Attr {
	return slog.String(FieldResource, name)
}

// Operation names a gateway call such as "list users".
func Operation(op string) slog.Attr {
	return slog.String(FieldOperation, op)
}

func ReportID(id string) slog.Attr {
	return slog.String(FieldReportID, id)
}

func IP(ip string) slog.Attr {
	return slog.String(FieldIP, ip)
}

func Method(method string) slog.Attr {
	return slog.String(FieldMethod, method)
}

func Path(path string) slog.Attr {
	return slog.String(FieldPath, path)
}

func Status(code int) slog.Attr {
	return slog.Int(FieldStatus, code)
}

// Duration is in milliseconds.
func Duration(ms int64) slog.Attr {
	return slog.Int64(FieldDuration, ms)
}

// Error records err's message; a nil error is recorded as an empty string.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(FieldError, "")
	}
	return slog.String(FieldError, err.Error())
}
