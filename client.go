package dentcloud

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	// BaseURL is the DentCloud API endpoint. Every request goes to this one URL;
	// the operation is selected by the "request" query parameter.
	BaseURL = "https://api.dentcloud.io/v1"

	RateLimitPerSecond = 5
	RateLimitBurst     = 5

	apiKeyHeader = "x-api-key"
	keyIDHeader  = "x-key-id"

	defaultTimeout = 30 * time.Second
)

// Session holds the credentials and the rate limiter shared by every request
// made through it. It is safe for concurrent use.
type Session struct {
	apiKey  string
	keyID   string
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	log     logrus.FieldLogger
}

// Option configures a Session.
type Option func(*Session)

// WithBaseURL overrides the API endpoint.
func WithBaseURL(u string) Option {
	return func(s *Session) { s.baseURL = u }
}

// WithHTTPClient sets the client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Session) { s.client = c }
}

// WithLimiter replaces the default 5 requests/second limiter. Sessions given
// the same limiter share one budget.
func WithLimiter(l *rate.Limiter) Option {
	return func(s *Session) { s.limiter = l }
}

// WithLogger sets the logger for request tracing.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Session) { s.log = l }
}

// NewSession creates a session authenticating with apiKey and keyID.
func NewSession(apiKey, keyID string, opts ...Option) *Session {
	s := &Session{
		apiKey:  apiKey,
		keyID:   keyID,
		baseURL: BaseURL,
		client:  &http.Client{Timeout: defaultTimeout},
		limiter: rate.NewLimiter(rate.Limit(RateLimitPerSecond), RateLimitBurst),
		log:     logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Limiter returns the limiter requests wait on.
func (s *Session) Limiter() *rate.Limiter {
	return s.limiter
}

// send issues a GET with query, waiting for the limiter first, and decodes
// the body as T.
func send[T any](ctx context.Context, s *Session, query Query) (T, error) {
	var zero T

	url := s.baseURL + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return zero, fmt.Errorf("failed to create request for %s: %w", s.baseURL, err)
	}
	req.Header.Set(apiKeyHeader, s.apiKey)
	req.Header.Set(keyIDHeader, s.keyID)

	name, _ := query.Get("request")
	log := s.log.WithFields(logrus.Fields{
		"request":    name,
		"request_id": uuid.NewString(),
	})

	if err := s.limiter.Wait(ctx); err != nil {
		return zero, fmt.Errorf("rate limiter: %w", err)
	}

	log.Debug("Sending request to DentCloud")
	resp, err := s.client.Do(req)
	if err != nil {
		return zero, fmt.Errorf("failed to fetch %s: %w", s.baseURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return zero, &StatusError{StatusCode: resp.StatusCode, URL: s.baseURL}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, fmt.Errorf("failed to read response from %s: %w", s.baseURL, err)
	}

	log.WithField("bytes", len(body)).Trace("Decoding response text")
	return decodeResponse[T](body)
}
