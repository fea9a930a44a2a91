package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/felixgeelhaar/fortify/ratelimit"

	apperrors "github.com/applytrack/applytrack/internal/errors"
	"github.com/applytrack/applytrack/internal/session"
)

const (
	// DefaultBaseURL is where the tracker API listens in development.
	DefaultBaseURL = "http://localhost:3000"

	rateLimitKey    = "api"
	maxResponseSize = 4 << 20
)

// APIClientConfig configures the HTTP client for the tracker API.
type APIClientConfig struct {
	BaseURL string
	Timeout time.Duration

	// Rate limiting
	RateLimitRPM int // Requests per minute (0 = disabled)

	// Circuit breaker
	CircuitBreakerEnabled     bool
	CircuitBreakerThreshold   int           // consecutive failures before opening
	CircuitBreakerTimeout     time.Duration // how long to stay open
	CircuitBreakerMaxRequests int           // requests allowed in half-open
}

// DefaultAPIClientConfig returns the defaults used when nothing is configured.
func DefaultAPIClientConfig() APIClientConfig {
	return APIClientConfig{
		BaseURL:                   DefaultBaseURL,
		Timeout:                   10 * time.Second,
		RateLimitRPM:              120,
		CircuitBreakerEnabled:     true,
		CircuitBreakerThreshold:   5,
		CircuitBreakerTimeout:     30 * time.Second,
		CircuitBreakerMaxRequests: 1,
	}
}

// APIClient sends authenticated JSON requests to the tracker API. It waits on
// a rate limiter and trips a circuit breaker on transport failures and 5xx
// responses. It never retries.
type APIClient struct {
	baseURL        string
	httpClient     *http.Client
	tokens         *session.Resolver
	rateLimiter    ratelimit.RateLimiter
	circuitBreaker circuitbreaker.CircuitBreaker[*apiResponse]
	logger         *log.Logger
}

// APIClientOption customizes an APIClient.
type APIClientOption func(*APIClient)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) APIClientOption {
	return func(a *APIClient) { a.httpClient = c }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *log.Logger) APIClientOption {
	return func(a *APIClient) { a.logger = l }
}

// NewAPIClient creates a client. tokens resolves the bearer token for
// authenticated calls.
func NewAPIClient(cfg APIClientConfig, tokens *session.Resolver, opts ...APIClientOption) *APIClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if tokens == nil {
		tokens = session.NewResolver(nil, nil)
	}

	c := &APIClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		tokens:     tokens,
		logger:     log.New(io.Discard),
	}

	if cfg.RateLimitRPM > 0 {
		c.rateLimiter = ratelimit.New(&ratelimit.Config{
			Rate:     cfg.RateLimitRPM,
			Burst:    cfg.RateLimitRPM,
			Interval: time.Minute,
		})
	}

	if cfg.CircuitBreakerEnabled {
		threshold := cfg.CircuitBreakerThreshold
		if threshold <= 0 {
			threshold = 1
		}
		maxRequests := cfg.CircuitBreakerMaxRequests
		if maxRequests <= 0 {
			maxRequests = 1
		}
		c.circuitBreaker = circuitbreaker.New[*apiResponse](circuitbreaker.Config{
			MaxRequests: uint32(maxRequests), // #nosec G115 -- bounded config value
			Interval:    cfg.CircuitBreakerTimeout,
			Timeout:     cfg.CircuitBreakerTimeout,
			ReadyToTrip: func(counts circuitbreaker.Counts) bool {
				return counts.ConsecutiveFailures >= uint32(threshold) // #nosec G115 -- bounded config value
			},
		})
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root without a trailing slash.
func (c *APIClient) BaseURL() string {
	return c.baseURL
}

// CircuitBreakerState returns "closed", "half-open", "open", or "disabled".
func (c *APIClient) CircuitBreakerState() string {
	if c.circuitBreaker == nil {
		return "disabled"
	}
	return c.circuitBreaker.State().String()
}

// Close releases resources held by the rate limiter.
func (c *APIClient) Close() error {
	if c.rateLimiter != nil {
		return c.rateLimiter.Close()
	}
	return nil
}

// apiRequest describes one call and how its failures are reported.
type apiRequest struct {
	op     string
	method string
	path   string
	token  string
	body   any

	// anonymous requests skip token resolution
	anonymous bool

	// error reporting
	code            string // infrastructure code for non-2xx responses
	action          string // e.g. "fetching positions"
	notFound        string // message for 404
	unauthorizedMsg string // message for 401
}

type apiResponse struct {
	status int
	body   []byte
}

// serverError carries a 5xx response through the circuit breaker.
type serverError struct {
	resp *apiResponse
}

func (e *serverError) Error() string {
	return fmt.Sprintf("server responded %d", e.resp.status)
}

// do sends req and decodes a 2xx body into out when out is non-nil.
func (c *APIClient) do(ctx context.Context, req apiRequest, out any) error {
	resp, err := c.send(ctx, req)
	if err != nil {
		return err
	}
	if resp.status < 200 || resp.status >= 300 {
		return statusError(req, resp)
	}
	if out == nil || len(bytes.TrimSpace(resp.body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return apperrors.InfrastructureWrap(err, req.op, req.code, "invalid response body")
	}
	return nil
}

func (c *APIClient) send(ctx context.Context, req apiRequest) (*apiResponse, error) {
	var token string
	if !req.anonymous {
		resolved, err := c.tokens.Resolve(req.token)
		if err != nil {
			return nil, err
		}
		token = resolved
	}

	var payload []byte
	if req.body != nil {
		encoded, err := json.Marshal(req.body)
		if err != nil {
			return nil, apperrors.InternalWrap(err, req.op, "failed to encode request body")
		}
		payload = encoded
	}

	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx, rateLimitKey); err != nil {
			return nil, apperrors.InfrastructureWrap(err, req.op, req.code, "rate limiter wait failed")
		}
	}

	exec := func(ctx context.Context) (*apiResponse, error) {
		resp, err := c.roundTrip(ctx, req.method, req.path, token, payload)
		if err != nil {
			return nil, err
		}
		if resp.status >= 500 {
			return resp, &serverError{resp: resp}
		}
		return resp, nil
	}

	start := time.Now()
	var (
		resp *apiResponse
		err  error
	)
	if c.circuitBreaker != nil {
		resp, err = c.circuitBreaker.Execute(ctx, exec)
	} else {
		resp, err = exec(ctx)
	}

	if err != nil {
		var se *serverError
		if !errors.As(err, &se) {
			c.logger.Debug("api request failed", "method", req.method, "path", req.path,
				"duration", time.Since(start), "error", apperrors.RedactError(err))
			return nil, apperrors.InfrastructureWrap(err, req.op, req.code, "request failed")
		}
		resp = se.resp
	}

	c.logger.Debug("api request", "method", req.method, "path", req.path,
		"status", resp.status, "duration", time.Since(start))
	return resp, nil
}

func (c *APIClient) roundTrip(ctx context.Context, method, path, token string, payload []byte) (*apiResponse, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "application/json")
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer func() { _ = httpResp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseSize))
	if err != nil {
		return nil, err
	}
	return &apiResponse{status: httpResp.StatusCode, body: data}, nil
}

// statusError maps a non-2xx response onto the error taxonomy.
func statusError(req apiRequest, resp *apiResponse) error {
	switch resp.status {
	case http.StatusUnauthorized:
		msg := req.unauthorizedMsg
		if msg == "" {
			msg = "Unauthorized"
		}
		return apperrors.Unauthorized(req.op, msg)
	case http.StatusForbidden:
		return apperrors.Forbidden(req.op, "")
	case http.StatusNotFound:
		return apperrors.NotFound(req.op, req.notFound)
	default:
		return apperrors.Infrastructure(req.op, req.code,
			fmt.Sprintf("Error %s: %s", req.action, http.StatusText(resp.status)), resp.status)
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

// Login exchanges credentials for a bearer token.
func (c *APIClient) Login(ctx context.Context, email, password string) (string, error) {
	var out loginResponse
	err := c.do(ctx, apiRequest{
		op:              "api.Login",
		method:          http.MethodPost,
		path:            "/auth/login",
		body:            loginRequest{Email: email, Password: password},
		anonymous:       true,
		code:            apperrors.CodeFetch,
		action:          "logging in",
		notFound:        "Login endpoint not found",
		unauthorizedMsg: "Invalid email or password",
	}, &out)
	if err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", apperrors.Infrastructure("api.Login", apperrors.CodeFetch, "login response did not include a token", 0)
	}
	return out.AccessToken, nil
}
