package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/orgspace-systems/orgspace-stack/common/audit"
	"github.com/orgspace-systems/orgspace-stack/common/httputil"
	"github.com/orgspace-systems/orgspace-stack/common/logging"
	"github.com/orgspace-systems/orgspace-stack/common/report"
	"github.com/orgspace-systems/orgspace-stack/web/backend/internal/metrics"
)

// Report stamp headers. The issue time is RFC 3339 with nanoseconds, UTC.
const (
	HeaderReportID        = "X-Report-ID"
	HeaderReportSignature = "X-Report-Signature"
	HeaderReportIssuedAt  = "X-Report-Issued-At"
	HeaderReportIssuedBy  = "X-Report-Issued-By"
)

func (h *Handler) exportRaw(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	raw, err := h.svc.Gateway().ExportUsersReport(r.Context(), currentSession(r))
	if err != nil {
		h.fail(w, r, err, nil)
		return nil, false
	}
	return raw, true
}

func (h *Handler) reportFailed(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, report.ErrEmpty) {
		httputil.WriteJSONAPIError(w, http.StatusUnprocessableEntity, "empty_report", "Empty Report",
			"There are no employees to export")
		return
	}
	h.logger.ErrorContext(r.Context(), "Failed to build report", logging.Error(err))
	httputil.WriteJSONAPIInternalError(w)
}

func (h *Handler) sendStamped(w http.ResponseWriter, r *http.Request, format, contentType string, stamp audit.Stamp, body []byte) {
	hdr := w.Header()
	hdr.Set(HeaderReportID, stamp.ReportID)
	hdr.Set(HeaderReportSignature, stamp.Signature)
	hdr.Set(HeaderReportIssuedAt, stamp.IssuedAt.Format(time.RFC3339Nano))
	hdr.Set(HeaderReportIssuedBy, stamp.IssuedBy)

	metrics.ReportsIssued.WithLabelValues(format).Inc()
	h.logger.InfoContext(r.Context(), "Report issued", logging.ReportID(stamp.ReportID), "format", format)
	httputil.WriteAttachment(w, report.Filename(stamp.IssuedAt.In(h.loc), format), contentType, body)
}

// EmployeesCSV exports the employee report as a spreadsheet-friendly CSV.
func (h *Handler) EmployeesCSV(w http.ResponseWriter, r *http.Request) {
	raw, ok := h.exportRaw(w, r)
	if !ok {
		return
	}
	body, err := report.EnhanceCSV(raw, h.locale)
	if err != nil {
		h.reportFailed(w, r, err)
		return
	}
	stamp := h.signer.Stamp("", currentSession(r).Actor.UserID, h.now(), body)
	h.sendStamped(w, r, "csv", "text/csv; charset=utf-8", stamp, body)
}

// EmployeesPDF exports the employee report as a printable roster.
func (h *Handler) EmployeesPDF(w http.ResponseWriter, r *http.Request) {
	raw, ok := h.exportRaw(w, r)
	if !ok {
		return
	}
	rows, err := report.Rows(raw, h.locale)
	if err != nil {
		h.reportFailed(w, r, err)
		return
	}

	actor := currentSession(r).Actor
	issuedBy := actor.FullName
	if issuedBy == "" {
		issuedBy = actor.UserID
	}
	meta := report.RosterMeta{
		Organization: h.org,
		IssuedBy:     issuedBy,
		IssuedAt:     h.now().In(h.loc),
		ReportID:     audit.NewReportID(),
	}
	body, err := report.RosterPDF(rows, meta)
	if err != nil {
		h.reportFailed(w, r, err)
		return
	}
	stamp := h.signer.Stamp(meta.ReportID, actor.UserID, meta.IssuedAt, body)
	h.sendStamped(w, r, "pdf", "application/pdf", stamp, body)
}

type verifyRequest struct {
	ReportID  string    `json:"reportId"`
	IssuedAt  time.Time `json:"issuedAt"`
	IssuedBy  string    `json:"issuedBy"`
	Signature string    `json:"signature"`
	// Content is the exported file, base64 encoded.
	Content []byte `json:"content"`
}

type verifyView struct {
	Valid bool `json:"valid"`
}

// VerifyReport checks that an exported file was issued by this console and
// has not been altered.
func (h *Handler) VerifyReport(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if !h.decode(w, r, &req) {
		return
	}
	missing := map[string]string{}
	if req.ReportID == "" {
		missing["reportId"] = "is required"
	}
	if req.Signature == "" {
		missing["signature"] = "is required"
	}
	if req.IssuedAt.IsZero() {
		missing["issuedAt"] = "is required"
	}
	if len(missing) > 0 {
		httputil.WriteJSONAPIFieldErrors(w, missing)
		return
	}

	valid := h.signer.Verify(req.ReportID, req.IssuedAt, req.IssuedBy, req.Content, req.Signature)
	h.logger.InfoContext(r.Context(), "Report verification", logging.ReportID(req.ReportID), "valid", valid)
	httputil.WriteJSONAPIResource(w, http.StatusOK, httputil.JSONAPIResource{
		Type:       "report-verifications",
		ID:         req.ReportID,
		Attributes: verifyView{Valid: valid},
	})
}
