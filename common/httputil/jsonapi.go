package httputil

import (
	"net/http"
	"sort"
	"strconv"
)

// JSONAPIResource is a single JSON:API resource object.
type JSONAPIResource struct {
	Type       string            `json:"type"`
	ID         string            `json:"id"`
	Attributes any               `json:"attributes"`
	Meta       map[string]any    `json:"meta,omitempty"`
	Links      map[string]string `json:"links,omitempty"`
}

// JSONAPIErrorObject is a single JSON:API error.
type JSONAPIErrorObject struct {
	Status string            `json:"status,omitempty"`
	Code   string            `json:"code,omitempty"`
	Title  string            `json:"title,omitempty"`
	Detail string            `json:"detail,omitempty"`
	Source map[string]string `json:"source,omitempty"`
}

// NewJSONAPIError builds an error object; status is rendered as a string.
func NewJSONAPIError(status int, code, title, detail string) JSONAPIErrorObject {
	return JSONAPIErrorObject{
		Status: strconv.Itoa(status),
		Code:   code,
		Title:  title,
		Detail: detail,
	}
}

// WriteJSONAPIResource writes {"data": resource}.
func WriteJSONAPIResource(w http.ResponseWriter, status int, res JSONAPIResource) {
	WriteJSONAPI(w, status, map[string]any{"data": res})
}

// WriteJSONAPICollection writes {"data": [...]} with pagination meta when p
// is non-nil. A nil slice is written as an empty array.
func WriteJSONAPICollection(w http.ResponseWriter, status int, data []JSONAPIResource, p *Pagination, extraMeta map[string]any) {
	if data == nil {
		data = []JSONAPIResource{}
	}
	body := map[string]any{"data": data}

	meta := map[string]any{}
	for k, v := range extraMeta {
		meta[k] = v
	}
	if p != nil {
		meta["pagination"] = map[string]any{
			"page":        p.Page,
			"limit":       p.Limit,
			"total":       p.Total,
			"total_pages": p.TotalPages(),
		}
	}
	if len(meta) > 0 {
		body["meta"] = meta
	}
	WriteJSONAPI(w, status, body)
}

// WriteJSONAPIErrorResponse writes {"errors": errs}.
func WriteJSONAPIErrorResponse(w http.ResponseWriter, status int, errs []JSONAPIErrorObject) {
	WriteJSONAPI(w, status, map[string]any{"errors": errs})
}

// WriteJSONAPIFieldErrors writes one 400 error per field, pointing at the
// offending attribute. Fields are emitted in name order.
func WriteJSONAPIFieldErrors(w http.ResponseWriter, fields map[string]string) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	errs := make([]JSONAPIErrorObject, 0, len(names))
	for _, name := range names {
		e := NewJSONAPIError(http.StatusBadRequest, "validation_failed", "Validation Failed", name+" "+fields[name])
		e.Source = map[string]string{"pointer": "/data/attributes/" + name}
		errs = append(errs, e)
	}
	WriteJSONAPIErrorResponse(w, http.StatusBadRequest, errs)
}

func WriteJSONAPIValidationError(w http.ResponseWriter, detail string) {
	WriteJSONAPIError(w, http.StatusBadRequest, "validation_failed", "Validation Failed", detail)
}

func WriteJSONAPINotFoundError(w http.ResponseWriter, resourceType, id string) {
	WriteJSONAPIError(w, http.StatusNotFound, "not_found", "Resource Not Found",
		"The requested "+resourceType+" with ID '"+id+"' was not found")
}

func WriteJSONAPIUnauthorizedError(w http.ResponseWriter, detail string) {
	WriteJSONAPIError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized", detail)
}

func WriteJSONAPIForbiddenError(w http.ResponseWriter, detail string) {
	WriteJSONAPIError(w, http.StatusForbidden, "forbidden", "Forbidden", detail)
}

// WriteJSONAPIInternalError hides detail from the client; log it before calling.
func WriteJSONAPIInternalError(w http.ResponseWriter) {
	WriteJSONAPIError(w, http.StatusInternalServerError, "internal_error", "Internal Server Error", "An internal error occurred")
}
