package actions

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/orgspace-systems/orgspace-stack/common/access"
	"github.com/orgspace-systems/orgspace-stack/common/records"
	"github.com/orgspace-systems/orgspace-stack/common/session"
)

// LinkFunc receives a freshly issued reset link, for display or delivery.
type LinkFunc func(ctx context.Context, link string) error

// ResetLink builds the console URL at which token can be consumed.
func (s *Service) ResetLink(token string) string {
	return strings.TrimRight(s.cfg.PublicURL, "/") + "/auth/reset-password/" + url.PathEscape(token)
}

// PendingResets lists reset requests awaiting approval.
func (s *Service) PendingResets(ctx context.Context, sess *session.Session) ([]records.ResetRequest, error) {
	if !access.CanAccess(sess.Actor, access.PageResetRequests) {
		return nil, forbidden("cannot view reset requests")
	}
	return s.gw.ListResetRequests(ctx, sess)
}

// ApproveReset asks confirm to approve the reset for req, then issues the
// token and hands the resulting link to onLink. Nothing is sent to the API
// unless the prompt is approved.
func (s *Service) ApproveReset(ctx context.Context, sess *session.Session, req records.ResetRequest, confirm ConfirmFunc, onLink LinkFunc) error {
	if sess.Actor.Role != records.RoleAdmin {
		return forbidden("only administrators approve password resets")
	}
	if req.User == nil || req.User.UserID == "" {
		vErr := &records.ValidationError{}
		vErr.Add("targetUserId", "is required")
		return vErr
	}
	target := records.Employee{ID: req.User.ID, UserID: req.User.UserID}
	if !access.CanResetPassword(sess.Actor, target) {
		return forbidden("cannot approve your own reset")
	}

	name := req.User.Name
	if name == "" {
		name = req.User.UserID
	}
	p := Prompt{
		Title:   "Approve password reset?",
		Message: fmt.Sprintf("Issue a reset link for %s (%s).", name, req.User.UserID),
		Confirm: "Approve",
	}
	return Confirmed(ctx, confirm, p, func(ctx context.Context) error {
		token, err := s.gw.ApproveReset(ctx, sess, records.ApproveResetInput{
			TargetUserID: req.User.UserID,
			RequestID:    req.ID,
		})
		if err != nil {
			return err
		}
		s.changed(ctx, ResourceResets, sess)
		if onLink == nil {
			return nil
		}
		return onLink(ctx, s.ResetLink(token))
	})
}

// ForgotPassword files an unauthenticated reset request.
func (s *Service) ForgotPassword(ctx context.Context, in records.ForgotPasswordInput) error {
	in.UserID = strings.TrimSpace(in.UserID)
	return s.gw.RequestPasswordReset(ctx, in)
}

// ConsumeReset sets a new password with a reset token.
func (s *Service) ConsumeReset(ctx context.Context, in records.PasswordResetInput) error {
	return s.gw.ResetPassword(ctx, in)
}
