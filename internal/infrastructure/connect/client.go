// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package connect is a client for the Adobe Connect XML web services.
package connect

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/uninett/connect-import-service/internal/domain"
	"github.com/uninett/connect-import-service/internal/logging"
	"github.com/uninett/connect-import-service/internal/metrics"
)

const (
	// DefaultClientTimeout is generous because a batch is a long chain of
	// sequential round trips and single Connect calls can be slow.
	DefaultClientTimeout = 5 * time.Minute
	// SessionCookieName is the cookie Connect uses for its session token.
	SessionCookieName = "BREEZESESSION"
	// maxResponseSize caps how much of a response body is read.
	maxResponseSize = 32 << 20
)

// Config holds the configuration for the Connect client
type Config struct {
	// BaseURL is the XML API endpoint, e.g. https://connect.example.org/api/xml
	BaseURL string
	// Login and Password are the service account credentials.
	Login    string
	Password string
	// Optional: override timeout for HTTP requests
	Timeout time.Duration
	// Optional: transport used for requests (e.g. an instrumented one)
	Transport http.RoundTripper
}

// Client talks to Connect on behalf of a single batch. It owns one session
// token and issues one request at a time; it is not safe for concurrent use.
type Client struct {
	httpClient *http.Client
	config     Config
	breaker    *gobreaker.CircuitBreaker[*exchange]
	session    string
}

// Ensure that Client implements domain.ConnectClient
var _ domain.ConnectClient = (*Client)(nil)

// exchange is the raw outcome of one HTTP round trip.
type exchange struct {
	cookies  []*http.Cookie
	response *Response
}

// NewClient creates a Connect client without a circuit breaker.
func NewClient(config Config, session string) *Client {
	config = withDefaults(config)
	return newClient(config, newHTTPClient(config), nil, session)
}

func newClient(config Config, httpClient *http.Client, breaker *gobreaker.CircuitBreaker[*exchange], session string) *Client {
	return &Client{
		httpClient: httpClient,
		config:     config,
		breaker:    breaker,
		session:    session,
	}
}

func withDefaults(config Config) Config {
	if config.Timeout == 0 {
		config.Timeout = DefaultClientTimeout
	}
	if config.Transport == nil {
		config.Transport = http.DefaultTransport
	}
	return config
}

func newHTTPClient(config Config) *http.Client {
	return &http.Client{
		Timeout:   config.Timeout,
		Transport: config.Transport,
	}
}

// Session returns the cached session token.
func (c *Client) Session() string {
	return c.session
}

// Call performs action with params and returns the parsed envelope. When
// requiresSession is set the session token is attached, logging in first if
// none is cached. A non-ok status is returned as a RemoteAPI error together
// with the parsed envelope.
func (c *Client) Call(ctx context.Context, action string, params url.Values, requiresSession bool) (*Response, error) {
	ctx = logging.AppendCtx(ctx, slog.String("connect_action", action))

	query := url.Values{}
	for k, v := range params {
		query[k] = v
	}
	query.Set("action", action)

	if requiresSession {
		session, err := c.EnsureSession(ctx)
		if err != nil {
			return nil, err
		}
		query.Set("session", session)
	}

	ex, err := c.roundTrip(ctx, action, query)
	if err != nil {
		return nil, err
	}

	resp := ex.response
	if !resp.Status.OK() {
		metrics.ConnectRequests.WithLabelValues(action, metrics.OutcomeRemoteError).Inc()
		slog.WarnContext(ctx, "Connect API returned non-ok status",
			"status", resp.Status.Code,
			"subcode", resp.Status.Subcode(),
		)
		if requiresSession && resp.Status.sessionRejected() {
			return resp, domain.NewAuthenticationError(
				"Adobe Connect rejected the session token",
				domain.NewRemoteAPIError("status "+resp.Status.Code, resp.Status.Subcode()),
			)
		}
		return resp, domain.NewRemoteAPIError(
			fmt.Sprintf("Connect action %s returned status %s", action, resp.Status.Code),
			resp.Status.Subcode(),
		)
	}

	metrics.ConnectRequests.WithLabelValues(action, metrics.OutcomeOK).Inc()
	return resp, nil
}

// EnsureSession returns the cached session token, logging in with the service
// credentials when there is none. The token is read from the Set-Cookie header
// of the login response.
func (c *Client) EnsureSession(ctx context.Context) (string, error) {
	if c.session != "" {
		slog.DebugContext(ctx, "reusing Connect session")
		return c.session, nil
	}

	query := url.Values{}
	query.Set("action", "login")
	query.Set("login", c.config.Login)
	query.Set("password", c.config.Password)

	ex, err := c.roundTrip(ctx, "login", query)
	if err != nil {
		return "", err
	}

	if !ex.response.Status.OK() {
		metrics.ConnectRequests.WithLabelValues("login", metrics.OutcomeRemoteError).Inc()
		slog.ErrorContext(ctx, "Connect login rejected",
			"status", ex.response.Status.Code,
			"subcode", ex.response.Status.Subcode(),
			logging.PriorityCritical())
		return "", domain.NewAuthenticationError(
			"Error when authenticating to the Adobe Connect API using client API credentials",
			domain.NewRemoteAPIError("login returned status "+ex.response.Status.Code, ex.response.Status.Subcode()),
		)
	}

	session := sessionFromCookies(ex.cookies)
	if session == "" {
		metrics.ConnectRequests.WithLabelValues("login", metrics.OutcomeRemoteError).Inc()
		slog.ErrorContext(ctx, "Connect login response carried no session cookie", logging.PriorityCritical())
		return "", domain.NewAuthenticationError(
			"Error when authenticating to the Adobe Connect API using client API credentials. Set-Cookie not present in response",
			domain.ErrMissingSession,
		)
	}

	metrics.ConnectRequests.WithLabelValues("login", metrics.OutcomeOK).Inc()
	slog.DebugContext(ctx, "obtained new Connect session")
	c.session = session
	return session, nil
}

// sessionFromCookies prefers the BREEZESESSION cookie and falls back to the
// first cookie with a value.
func sessionFromCookies(cookies []*http.Cookie) string {
	for _, cookie := range cookies {
		if strings.EqualFold(cookie.Name, SessionCookieName) && cookie.Value != "" {
			return cookie.Value
		}
	}
	for _, cookie := range cookies {
		if cookie.Value != "" {
			return cookie.Value
		}
	}
	return ""
}

// roundTrip performs one GET request through the circuit breaker, if any.
func (c *Client) roundTrip(ctx context.Context, action string, query url.Values) (*exchange, error) {
	start := time.Now()
	defer func() {
		metrics.ConnectRequestDuration.WithLabelValues(action).Observe(time.Since(start).Seconds())
	}()

	slog.DebugContext(ctx, "making Connect API request", "params", redact(query))

	var (
		ex  *exchange
		err error
	)
	if err := ctx.Err(); err != nil {
		metrics.ConnectRequests.WithLabelValues(action, metrics.OutcomeUnavailable).Inc()
		return nil, domain.NewUnavailableError("request cancelled before reaching Connect", err)
	}

	if c.breaker != nil {
		ex, err = c.breaker.Execute(func() (*exchange, error) {
			res, reqErr := c.doRequest(ctx, query)
			if callerGone(ctx, reqErr) {
				return nil, fmt.Errorf("%w: %w", errCallerGone, reqErr)
			}
			return res, reqErr
		})
		if isBreakerRejection(err) {
			metrics.ConnectRequests.WithLabelValues(action, metrics.OutcomeRejected).Inc()
			slog.WarnContext(ctx, "Connect API request rejected by circuit breaker", logging.ErrKey, err)
			return nil, domain.NewUnavailableError("Connect API is temporarily unavailable", err)
		}
	} else {
		ex, err = c.doRequest(ctx, query)
	}

	if err != nil {
		metrics.ConnectRequests.WithLabelValues(action, metrics.OutcomeUnavailable).Inc()
		slog.ErrorContext(ctx, "Connect API request failed",
			"duration", time.Since(start).String(),
			logging.ErrKey, err)
		return nil, domain.NewUnavailableError("API request failed. Could be that the service is unavailable (503)", err)
	}

	slog.InfoContext(ctx, "Connect API request completed",
		"status", ex.response.Status.Code,
		"duration", time.Since(start).String(),
	)
	return ex, nil
}

// doRequest executes the HTTP request and parses the envelope. Any error it
// returns is a transport or parse failure.
func (c *Client) doRequest(ctx context.Context, query url.Values) (*exchange, error) {
	endpoint, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Connect base URL: %w", err)
	}
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected HTTP status %d", resp.StatusCode)
	}

	parsed, err := parseResponse(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse XML response: %w", err)
	}

	return &exchange{cookies: resp.Cookies(), response: parsed}, nil
}

// redact returns the query as a string with credentials masked.
func redact(query url.Values) string {
	masked := url.Values{}
	for k, v := range query {
		switch k {
		case "password", "session":
			masked[k] = []string{"***"}
		default:
			masked[k] = v
		}
	}
	return masked.Encode()
}
