// Package handlers serves the console API. Every handler runs its operation
// through actions.Service on behalf of the request's session and reports the
// result as JSON:API.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/orgspace-systems/orgspace-stack/common/actions"
	"github.com/orgspace-systems/orgspace-stack/common/audit"
	"github.com/orgspace-systems/orgspace-stack/common/httputil"
	"github.com/orgspace-systems/orgspace-stack/common/listquery"
	"github.com/orgspace-systems/orgspace-stack/common/logging"
	"github.com/orgspace-systems/orgspace-stack/common/messaging"
	"github.com/orgspace-systems/orgspace-stack/common/session"
	"github.com/orgspace-systems/orgspace-stack/web/backend/internal/auth"
	"github.com/orgspace-systems/orgspace-stack/web/backend/internal/cache"
)

const (
	defaultPageSize = 20
	maxPageSize     = 200

	// HeaderConfirm approves the confirmation prompt of a destructive call.
	HeaderConfirm = "X-Confirm"
)

type Config struct {
	Service      *actions.Service
	Cache        *cache.Lists
	Auth         *auth.Manager
	Signer       *audit.ReportSigner
	Messaging    messaging.Client
	Logger       *logging.Logger
	Locale       language.Tag
	Location     *time.Location
	Organization string
	Version      string
}

type Handler struct {
	svc       *actions.Service
	cache     *cache.Lists
	auth      *auth.Manager
	signer    *audit.ReportSigner
	messaging messaging.Client
	logger    *logging.Logger
	locale    language.Tag
	loc       *time.Location
	org       string
	version   string
	now       func() time.Time
}

func New(cfg Config) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Locale == language.Und {
		cfg.Locale = language.English
	}
	return &Handler{
		svc:       cfg.Service,
		cache:     cfg.Cache,
		auth:      cfg.Auth,
		signer:    cfg.Signer,
		messaging: cfg.Messaging,
		logger:    cfg.Logger,
		locale:    cfg.Locale,
		loc:       cfg.Location,
		org:       cfg.Organization,
		version:   cfg.Version,
		now:       time.Now,
	}
}

// currentSession returns the session attached by auth.Manager.Protect.
func currentSession(r *http.Request) *session.Session {
	sess, _ := session.FromContext(r.Context())
	return sess
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httputil.DecodeJSON(r, dst); err != nil {
		if errors.Is(err, httputil.ErrEmptyBody) {
			httputil.WriteJSONAPIValidationError(w, "Request body is required")
		} else {
			httputil.WriteJSONAPIValidationError(w, "Invalid request body: "+err.Error())
		}
		return false
	}
	return true
}

type promptView struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Confirm string `json:"confirm"`
}

// confirmation answers prompts from the request. A request approves the
// prompt with "X-Confirm: true" or "?confirm=true"; otherwise the prompt is
// recorded so the refusal can be reported back with its text.
func confirmation(r *http.Request) (actions.ConfirmFunc, *actions.Prompt) {
	asked := &actions.Prompt{}
	approved := isTrue(r.Header.Get(HeaderConfirm)) || isTrue(r.URL.Query().Get("confirm"))
	return func(_ context.Context, p actions.Prompt) (bool, error) {
		*asked = p
		return approved, nil
	}, asked
}

func isTrue(v string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	return err == nil && b
}

// fail reports err using the outcome taxonomy. prompt, when non-nil, is the
// confirmation that was declined.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, prompt *actions.Prompt) {
	o := actions.Classify(err)
	log := h.logger.WithContext(r.Context())

	switch o.Kind {
	case actions.KindValidation:
		if len(o.Fields) > 0 {
			httputil.WriteJSONAPIFieldErrors(w, o.Fields)
			return
		}
		httputil.WriteJSONAPIValidationError(w, o.Message)
	case actions.KindCancelled:
		e := httputil.NewJSONAPIError(http.StatusPreconditionRequired, "confirmation_required",
			"Confirmation Required", "Repeat the request with "+HeaderConfirm+": true to proceed")
		body := map[string]any{}
		if prompt != nil && prompt.Title != "" {
			e.Title, e.Detail = prompt.Title, prompt.Message
			body["meta"] = map[string]any{"prompt": promptView{prompt.Title, prompt.Message, prompt.Confirm}}
		}
		body["errors"] = []httputil.JSONAPIErrorObject{e}
		httputil.WriteJSONAPI(w, http.StatusPreconditionRequired, body)
	case actions.KindAuthorization:
		log.Warn("Operation denied", logging.Path(r.URL.Path), logging.Error(err))
		httputil.WriteJSONAPIForbiddenError(w, o.Message)
	case actions.KindSession:
		if h.auth != nil {
			_ = h.auth.Revoke(w, r)
		}
		httputil.WriteJSONAPIUnauthorizedError(w, "Session expired, please sign in again")
	case actions.KindRemote:
		log.Warn("Record API rejected request", logging.Status(o.Status), logging.Error(err))
		status := o.HTTPStatus()
		code := "remote_error"
		if status == http.StatusNotFound {
			code = "not_found"
		}
		httputil.WriteJSONAPIError(w, status, code, http.StatusText(status), o.Message)
	case actions.KindTransport:
		log.Error("Record API unreachable", logging.Error(err))
		httputil.WriteJSONAPIError(w, o.HTTPStatus(), "upstream_unavailable", http.StatusText(o.HTTPStatus()), o.Message)
	default:
		log.Error("Request failed", logging.Path(r.URL.Path), logging.Error(err))
		httputil.WriteJSONAPIInternalError(w)
	}
}

// done acknowledges a mutation that returns no record.
func done(w http.ResponseWriter, status int, message string) {
	httputil.WriteJSONAPI(w, status, map[string]any{"meta": map[string]any{"message": message}})
}

// page slices items by the request's page and limit and returns the
// pagination block for the response.
func page[T any](r *http.Request, items []T) ([]T, *httputil.Pagination) {
	p := httputil.ParsePagination(r, defaultPageSize, maxPageSize)
	p.Total = len(items)
	if strings.EqualFold(r.URL.Query().Get("limit"), "all") {
		p.Page, p.Limit = 1, len(items)
		return items, &p
	}
	return listquery.Page(items, p.Offset(), p.Limit), &p
}
