package httputil

import (
	"encoding/json"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
)

// ContentTypeJSONAPI is the JSON:API media type.
const ContentTypeJSONAPI = "application/vnd.api+json"

// WriteJSON writes data as plain JSON.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	writeEncoded(w, status, "application/json", data)
}

// WriteJSONAPI writes data with the JSON:API media type.
func WriteJSONAPI(w http.ResponseWriter, status int, data any) {
	writeEncoded(w, status, ContentTypeJSONAPI, data)
}

func writeEncoded(w http.ResponseWriter, status int, contentType string, data any) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", slog.String("content_type", contentType), slog.String("error", err.Error()))
	}
}

// WriteError writes {"error": message}.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}

// WriteJSONAPIError writes a single JSON:API error.
func WriteJSONAPIError(w http.ResponseWriter, status int, code, title, detail string) {
	WriteJSONAPIErrorResponse(w, status, []JSONAPIErrorObject{NewJSONAPIError(status, code, title, detail)})
}

// WriteAttachment sends body as a download named filename.
func WriteAttachment(w http.ResponseWriter, filename, contentType string, body []byte) {
	h := w.Header()
	h.Set("Content-Type", contentType)
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	h.Set("Content-Length", strconv.Itoa(len(body)))
	h.Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		slog.Error("failed to write attachment", slog.String("filename", filename), slog.String("error", err.Error()))
	}
}
