package handlers

import (
	"net/http"
	"time"

	"github.com/orgspace-systems/orgspace-stack/common/access"
	"github.com/orgspace-systems/orgspace-stack/common/httputil"
	"github.com/orgspace-systems/orgspace-stack/common/logging"
	"github.com/orgspace-systems/orgspace-stack/common/records"
	"github.com/orgspace-systems/orgspace-stack/common/session"
)

type actorView struct {
	UserID          string         `json:"userId"`
	FullName        string         `json:"fullName"`
	Role            records.Role   `json:"role"`
	RoleLabel       string         `json:"roleLabel"`
	DepartmentID    string         `json:"departmentId,omitempty"`
	Department      string         `json:"department,omitempty"`
	Pages           []access.Page  `json:"pages"`
	AssignableRoles []records.Role `json:"assignableRoles"`
	ExpiresAt       time.Time      `json:"expiresAt"`
}

func sessionResource(sess *session.Session) httputil.JSONAPIResource {
	a := sess.Actor
	assignable := access.AssignableRoles(a)
	if assignable == nil {
		assignable = []records.Role{}
	}
	return httputil.JSONAPIResource{
		Type: "actors",
		ID:   a.ID,
		Attributes: actorView{
			UserID:          a.UserID,
			FullName:        a.FullName,
			Role:            a.Role,
			RoleLabel:       a.Role.Label(),
			DepartmentID:    records.RefID(a.Department),
			Department:      records.RefName(a.Department),
			Pages:           access.Pages(a),
			AssignableRoles: assignable,
			ExpiresAt:       sess.ExpiresAt,
		},
	}
}

// Login signs in against the record API and starts a session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var in records.SignInInput
	if !h.decode(w, r, &in) {
		return
	}

	sess, err := h.svc.SignIn(r.Context(), in)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Sign-in failed",
			logging.UserID(in.UserID), logging.IP(httputil.GetClientIP(r)), logging.Error(err))
		h.fail(w, r, err, nil)
		return
	}
	if err := h.auth.Issue(r.Context(), w, sess); err != nil {
		h.fail(w, r, err, nil)
		return
	}

	h.logger.InfoContext(session.NewContext(r.Context(), sess), "Signed in", logging.IP(httputil.GetClientIP(r)))
	httputil.WriteJSONAPIResource(w, http.StatusOK, sessionResource(sess))
}

// Logout ends the session. It succeeds even without one.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Revoke(w, r); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to revoke session", logging.Error(err))
	}
	done(w, http.StatusOK, "Signed out")
}

// Me returns the signed-in actor and the pages it may open.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSONAPIResource(w, http.StatusOK, sessionResource(currentSession(r)))
}

// Refresh reloads the actor from the caller's profile, picking up role or
// department changes made since sign-in.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	if err := h.svc.RefreshActor(r.Context(), sess); err != nil {
		h.fail(w, r, err, nil)
		return
	}
	if err := h.auth.Save(r.Context(), sess); err != nil {
		h.fail(w, r, err, nil)
		return
	}
	httputil.WriteJSONAPIResource(w, http.StatusOK, sessionResource(sess))
}

// ForgotPassword files a reset request for an administrator to approve.
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var in records.ForgotPasswordInput
	if !h.decode(w, r, &in) {
		return
	}
	if err := h.svc.ForgotPassword(r.Context(), in); err != nil {
		h.fail(w, r, err, nil)
		return
	}
	h.logger.InfoContext(r.Context(), "Password reset requested", logging.UserID(in.UserID))
	done(w, http.StatusAccepted, "Your request was sent to an administrator")
}

// ResetPassword consumes the reset token in the path.
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var in records.PasswordResetInput
	if !h.decode(w, r, &in) {
		return
	}
	if token := r.PathValue("token"); token != "" {
		in.Token = token
	}
	if err := h.svc.ConsumeReset(r.Context(), in); err != nil {
		h.fail(w, r, err, nil)
		return
	}
	done(w, http.StatusOK, "Password changed, please sign in")
}
