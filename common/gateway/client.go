// Package gateway is the typed client for the OrgSpace record API.
//
// Every response is decoded into the contracts in package records and
// validated before it is returned; callers never see raw payloads. Failures
// are reported as ErrNoSession, ErrSessionExpired, ErrForbidden,
// *records.ValidationError (input rejected before sending), *RemoteError or
// *TransportError.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/orgspace-systems/orgspace-stack/common/records"
)

// DefaultTimeout bounds each request to the record API.
const DefaultTimeout = 10 * time.Second

// Credentials supplies the bearer token for authenticated calls.
// *session.Session implements it.
type Credentials interface {
	AccessToken() string
}

// Token is a bare access token used as Credentials.
type Token string

func (t Token) AccessToken() string { return string(t) }

// Observer is notified after every request. status is 0 when the server
// could not be reached.
type Observer func(op string, status int, elapsed time.Duration, err error)

// Client calls the record API.
type Client struct {
	baseURL     string
	client      *http.Client
	userAgent   string
	observer    Observer
	tokenSecret []byte
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.client.Timeout = d
		}
	}
}

// WithObserver installs a request observer, typically for metrics.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithTokenSecret makes SignIn verify the access token's HMAC signature
// instead of only reading its claims.
func WithTokenSecret(secret string) Option {
	return func(c *Client) {
		if secret != "" {
			c.tokenSecret = []byte(secret)
		}
	}
}

// NewClient creates a client for the API rooted at baseURL
// (for example "http://localhost:3000/api").
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		client:    &http.Client{Timeout: DefaultTimeout},
		userAgent: "orgspace-stack",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type call struct {
	op     string
	method string
	path   string
	query  url.Values
	body   any
	creds  Credentials
	public bool
	accept string
}

// do sends cl and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, cl call) (body []byte, err error) {
	token := ""
	if !cl.public {
		if cl.creds != nil {
			token = cl.creds.AccessToken()
		}
		if token == "" {
			return nil, ErrNoSession
		}
	}

	var reader io.Reader = http.NoBody
	if cl.body != nil {
		payload, err := json.Marshal(cl.body)
		if err != nil {
			return nil, fmt.Errorf("%s: encode request: %w", cl.op, err)
		}
		reader = bytes.NewReader(payload)
	}

	target := c.baseURL + cl.path
	if len(cl.query) > 0 {
		target += "?" + cl.query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, cl.method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", cl.op, err)
	}
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	accept := cl.accept
	if accept == "" {
		accept = "application/json"
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", c.userAgent)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	status := 0
	defer func() {
		if c.observer != nil {
			c.observer(cl.op, status, time.Since(start), err)
		}
	}()

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &TransportError{Op: cl.op, Err: err}
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: cl.op, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errorFromResponse(resp.StatusCode, body, cl.public)
	}
	return body, nil
}

func malformed(op string, err error) error {
	return &RemoteError{
		Status:  http.StatusBadGateway,
		Code:    CodeMalformedResponse,
		Message: fmt.Sprintf("%s: unexpected response from server: %v", op, err),
	}
}

// listPayload returns the array inside body, which is either a bare JSON
// array or an object with the array under "data". A missing array is empty.
func listPayload(body []byte) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return json.RawMessage("[]"), nil
	}
	if trimmed[0] == '[' {
		return trimmed, nil
	}
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, err
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return json.RawMessage("[]"), nil
	}
	return env.Data, nil
}

// objectPayload returns the object inside body, unwrapping a "data" envelope
// when present.
func objectPayload(body []byte) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, err
	}
	if len(env.Data) > 0 && env.Data[0] == '{' {
		return env.Data, nil
	}
	return trimmed, nil
}

func getList[T any](ctx context.Context, c *Client, cl call) ([]T, error) {
	body, err := c.do(ctx, cl)
	if err != nil {
		return nil, err
	}
	raw, err := listPayload(body)
	if err != nil {
		return nil, malformed(cl.op, err)
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, malformed(cl.op, err)
	}
	for i := range items {
		if err := records.Validate(items[i]); err != nil {
			return nil, malformed(cl.op, fmt.Errorf("item %d: %w", i, err))
		}
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func getOne[T any](ctx context.Context, c *Client, cl call) (*T, error) {
	body, err := c.do(ctx, cl)
	if err != nil {
		return nil, err
	}
	raw, err := objectPayload(body)
	if err != nil {
		return nil, malformed(cl.op, err)
	}
	var item T
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, malformed(cl.op, err)
	}
	if err := records.Validate(item); err != nil {
		return nil, malformed(cl.op, err)
	}
	return &item, nil
}

// mutate validates in, then sends cl and discards the response body.
func (c *Client) mutate(ctx context.Context, cl call, in any) error {
	if in != nil {
		if err := records.Validate(in); err != nil {
			return err
		}
	}
	_, err := c.do(ctx, cl)
	return err
}
