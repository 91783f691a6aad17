// Package transport owns the outbound connection of a translator session.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/bytedance/sonic"
	"github.com/jaxron/axonet/pkg/client"
	setupClient "github.com/robalyx/deeplweb/internal/setup/client"
	"github.com/robalyx/deeplweb/internal/setup/client/interceptor/proxy"
	"github.com/robalyx/deeplweb/internal/setup/client/interceptor/ratelimit"
	"github.com/robalyx/deeplweb/internal/setup/config"
	"go.uber.org/zap"
)

var (
	ErrRequestFailed = errors.New("request failed")
	ErrEncodeBody    = errors.New("failed to encode request body")
	ErrReadBody      = errors.New("failed to read response body")
)

// Origin is the page the web translator expects requests to come from.
const Origin = "https://www.deepl.com"

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports whether the status code is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	return sonic.Unmarshal(r.Body, v)
}

// Session is a long-lived connection to the web translator. The requests of
// one session are spaced and serialized by its limiter; separate sessions do
// not share any state.
type Session struct {
	client  *client.Client
	limiter *ratelimit.Limiter
	proxy   *proxy.Middleware
	headers http.Header
	logger  *zap.Logger
}

// New creates a session with its own client and limiter.
func New(cfg *config.Config, logger *zap.Logger) *Session {
	httpClient, limiter, rotation := setupClient.New(cfg, logger)
	session := NewSession(httpClient, limiter, cfg.Provider.UserAgent, logger)
	session.proxy = rotation
	return session
}

// NewSession creates a session on top of an existing client.
func NewSession(httpClient *client.Client, limiter *ratelimit.Limiter, userAgent string, logger *zap.Logger) *Session {
	headers := make(http.Header)
	headers.Set("User-Agent", userAgent)
	headers.Set("Accept", "*/*")
	headers.Set("Accept-Language", "en-US,en;q=0.5")
	headers.Set("Origin", Origin)
	headers.Set("Referer", Origin+"/")

	return &Session{
		client:  httpClient,
		limiter: limiter,
		headers: headers,
		logger:  logger.Named("transport"),
	}
}

// Limiter returns the limiter spacing this session's requests.
func (s *Session) Limiter() *ratelimit.Limiter {
	return s.limiter
}

// Close releases the idle proxy connections of the session. The session
// stays usable; new connections are opened on demand.
func (s *Session) Close() {
	if s.proxy != nil {
		s.proxy.Cleanup()
	}
}

// Post sends body to endpoint. Caller headers override the session defaults.
// Any response the server produced is returned regardless of its status; an
// error means no response was received.
func (s *Session) Post(
	ctx context.Context, endpoint string, headers http.Header, params url.Values, body Body,
) (*Response, error) {
	payload, err := body.Encode()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncodeBody, err)
	}

	req := s.client.NewRequest().
		Method(http.MethodPost).
		URL(endpoint)

	for key, values := range params {
		for _, value := range values {
			req = req.Query(key, value)
		}
	}

	merged := s.headers.Clone()
	merged.Set("Content-Type", body.ContentType())

	for key, values := range headers {
		merged[http.CanonicalHeaderKey(key)] = values
	}

	for key := range merged {
		req = req.Header(key, merged.Get(key))
	}

	resp, err := req.Body(payload).Do(ctx)
	if resp != nil {
		defer resp.Body.Close()
	}

	if resp == nil {
		if err == nil {
			err = ErrRequestFailed
		}
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}

	data, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadBody, readErr)
	}

	s.logger.Debug("Received response",
		zap.String("url", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(data)))

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}
