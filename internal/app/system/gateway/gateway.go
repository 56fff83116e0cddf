// Package gateway issues GraphQL operations against the single backend
// endpoint and normalizes the response envelope into data or a typed error.
//
// Every call is a POST of {query, variables}. A bearer token is attached
// unless the call opts out with SkipAuthCheck. No call is ever retried.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 16 << 20

// Credential is the session state a call authenticates with.
type Credential interface {
	Token() string
	IsValid() bool
	Logout()
}

// Option adjusts a single call.
type Option func(*callOptions)

type callOptions struct {
	skipAuthCheck bool
}

// SkipAuthCheck sends the call without a bearer token and without checking
// the credential, as the login operation requires.
func SkipAuthCheck() Option {
	return func(o *callOptions) { o.skipAuthCheck = true }
}

// Client is safe for concurrent use.
type Client struct {
	endpoint string
	http     *http.Client
	log      *zap.Logger
	inFlight atomic.Int64
}

// New creates a Client for endpoint. If hc is nil, http.DefaultClient's
// transport is used.
func New(endpoint string, hc *http.Client, logger *zap.Logger) *Client {
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{endpoint: endpoint, http: hc, log: logger}
}

// Endpoint returns the backend URL.
func (c *Client) Endpoint() string { return c.endpoint }

// Loading reports whether at least one call is in flight. Overlapping
// calls share this one flag.
func (c *Client) Loading() bool { return c.inFlight.Load() > 0 }

// InFlight returns the number of calls awaiting a response.
func (c *Client) InFlight() int64 { return c.inFlight.Load() }

type request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type envelope struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Call runs doc with vars and returns the raw JSON of the root field.
//
// Failures are ErrSessionExpired (no request sent, cred logged out),
// *RemoteOperationError, or *TransportError.
func (c *Client) Call(ctx context.Context, cred Credential, doc Document, vars map[string]any, opts ...Option) (json.RawMessage, error) {
	var o callOptions
	for _, fn := range opts {
		fn(&o)
	}

	c.inFlight.Add(1)
	inFlightGauge.Inc()
	start := time.Now()

	raw, err := c.call(ctx, cred, doc, vars, o)

	c.inFlight.Add(-1)
	inFlightGauge.Dec()
	elapsed := time.Since(start)

	kind := errorKind(err)
	callsTotal.WithLabelValues(doc.Name, kind).Inc()
	callSeconds.WithLabelValues(doc.Name, kind).Observe(elapsed.Seconds())
	if err != nil {
		// Backend-reported errors include expected outcomes such as
		// duplicate skips; the caller decides how loud they are.
		level := zap.WarnLevel
		if kind == "remote_error" {
			level = zap.DebugLevel
		}
		c.log.Log(level, "graphql call failed",
			zap.String("operation", doc.Name),
			zap.String("error_kind", kind),
			zap.Duration("duration", elapsed),
			zap.Error(err))
	}
	return raw, err
}

func (c *Client) call(ctx context.Context, cred Credential, doc Document, vars map[string]any, o callOptions) (json.RawMessage, error) {
	hc := c.http
	if !o.skipAuthCheck {
		if cred == nil || !cred.IsValid() {
			if cred != nil {
				cred.Logout()
			}
			return nil, ErrSessionExpired
		}
		hc = c.withToken(cred.Token())
	}

	if vars == nil {
		vars = map[string]any{}
	}
	body, err := json.Marshal(request{Query: doc.Source, Variables: vars})
	if err != nil {
		return nil, fmt.Errorf("%s: encode variables: %w", doc.Name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Operation: doc.Name, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := hc.Do(req)
	if err != nil {
		return nil, &TransportError{Operation: doc.Name, Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &TransportError{Operation: doc.Name, Status: resp.StatusCode, Err: err}
	}

	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, &TransportError{Operation: doc.Name, Status: resp.StatusCode, Err: fmt.Errorf("%s", http.StatusText(resp.StatusCode))}
		}
		return nil, &TransportError{Operation: doc.Name, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}

	if len(env.Errors) > 0 {
		msgs := make([]string, 0, len(env.Errors))
		for _, e := range env.Errors {
			msgs = append(msgs, e.Message)
		}
		return nil, &RemoteOperationError{Operation: doc.Name, Messages: msgs}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{Operation: doc.Name, Status: resp.StatusCode, Err: fmt.Errorf("%s", http.StatusText(resp.StatusCode))}
	}

	return env.Data[doc.Field], nil
}

// withToken returns a client whose transport adds the bearer header.
func (c *Client) withToken(token string) *http.Client {
	base := c.http.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	return &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
			Base:   base,
		},
		Timeout:       c.http.Timeout,
		CheckRedirect: c.http.CheckRedirect,
		Jar:           c.http.Jar,
	}
}

// Do runs Call and decodes the root field into T. A null root field
// leaves T at its zero value.
func Do[T any](ctx context.Context, c *Client, cred Credential, doc Document, vars map[string]any, opts ...Option) (T, error) {
	var out T
	raw, err := c.Call(ctx, cred, doc, vars, opts...)
	if err != nil {
		return out, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("%s: decode %s: %w", doc.Name, doc.Field, err)
	}
	return out, nil
}
