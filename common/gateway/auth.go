package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/orgspace-systems/orgspace-stack/common/records"
)

// Claims are the fields the record API puts in its access tokens.
type Claims struct {
	UserID   string `json:"userId,omitempty"`
	FullName string `json:"full_name,omitempty"`
	Name     string `json:"name,omitempty"`
	Role     string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// DisplayName prefers full_name over name.
func (c Claims) DisplayName() string {
	if c.FullName != "" {
		return c.FullName
	}
	return c.Name
}

// Actor derives the actor identity carried by the token. A missing role is
// EMPLOYEE; an unrecognized role is kept as-is and grants nothing.
func (c Claims) Actor() records.Actor {
	role := records.RoleEmployee
	if c.Role != "" {
		role, _ = records.ParseRole(c.Role)
	}
	return records.Actor{
		ID:       c.Subject,
		UserID:   c.UserID,
		FullName: c.DisplayName(),
		Role:     role,
	}
}

// Expiry returns the token expiry, or the zero time if none is set.
func (c Claims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// SignInResult is the outcome of a successful sign-in.
type SignInResult struct {
	AccessToken string
	Claims      Claims
}

// SignIn exchanges credentials for an access token.
func (c *Client) SignIn(ctx context.Context, in records.SignInInput) (*SignInResult, error) {
	if err := records.Validate(in); err != nil {
		return nil, err
	}
	body, err := c.do(ctx, call{
		op:     "sign in",
		method: http.MethodPost,
		path:   "/auth/signin",
		body:   in,
		public: true,
	})
	if err != nil {
		return nil, err
	}

	var resp struct {
		AccessToken string `json:"accessToken"`
		Token       string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, malformed("sign in", err)
	}
	token := resp.AccessToken
	if token == "" {
		token = resp.Token
	}
	if token == "" {
		return nil, malformed("sign in", errors.New("no access token in response"))
	}

	claims, err := c.ParseToken(token)
	if err != nil {
		return nil, malformed("sign in", err)
	}
	return &SignInResult{AccessToken: token, Claims: *claims}, nil
}

// ParseToken reads the claims of an access token. With a configured token
// secret the HMAC signature and expiry are verified; otherwise the claims are
// only decoded and the record API remains the authority on validity.
func (c *Client) ParseToken(token string) (*Claims, error) {
	claims := &Claims{}
	if len(c.tokenSecret) == 0 {
		if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
			return nil, fmt.Errorf("failed to read token: %w", err)
		}
		return claims, nil
	}

	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.tokenSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// RequestPasswordReset files a forgot-password request for an administrator
// to approve. It needs no credential.
func (c *Client) RequestPasswordReset(ctx context.Context, in records.ForgotPasswordInput) error {
	return c.mutate(ctx, call{
		op:     "request password reset",
		method: http.MethodPost,
		path:   "/auth/request-reset",
		body:   in,
		public: true,
	}, in)
}

// ResetPassword consumes a single-use reset token.
func (c *Client) ResetPassword(ctx context.Context, in records.PasswordResetInput) error {
	body := struct {
		Token       string `json:"token"`
		NewPassword string `json:"newPassword"`
	}{in.Token, in.NewPassword}
	return c.mutate(ctx, call{
		op:     "reset password",
		method: http.MethodPost,
		path:   "/auth/reset-password/" + url.PathEscape(in.Token),
		body:   body,
		public: true,
	}, in)
}

// ListResetRequests returns pending reset requests. Administrators only.
func (c *Client) ListResetRequests(ctx context.Context, creds Credentials) ([]records.ResetRequest, error) {
	return getList[records.ResetRequest](ctx, c, call{
		op:     "list reset requests",
		method: http.MethodGet,
		path:   "/auth/admin/reset-requests",
		creds:  creds,
	})
}

// ApproveReset approves a reset and returns the single-use token.
func (c *Client) ApproveReset(ctx context.Context, creds Credentials, in records.ApproveResetInput) (string, error) {
	if err := records.Validate(in); err != nil {
		return "", err
	}
	body, err := c.do(ctx, call{
		op:     "approve reset",
		method: http.MethodPost,
		path:   "/auth/admin/request-reset",
		body:   in,
		creds:  creds,
	})
	if err != nil {
		return "", err
	}

	var resp struct {
		Token      string `json:"token"`
		ResetToken string `json:"resetToken"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", malformed("approve reset", err)
	}
	if resp.Token != "" {
		return resp.Token, nil
	}
	if resp.ResetToken != "" {
		return resp.ResetToken, nil
	}
	return "", malformed("approve reset", errors.New("no reset token in response"))
}
