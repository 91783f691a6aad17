package proxy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jaxron/axonet/pkg/client/logger"
	"github.com/jaxron/axonet/pkg/client/middleware"
)

// ErrAllProxiesUnhealthy is returned when every proxy is cooling down after a failure.
var ErrAllProxiesUnhealthy = errors.New("all proxies are unhealthy")

// Middleware rotates the requests of a client over a list of proxies. A proxy
// that times out is skipped until its unhealthy period ends. When no proxy
// can be used the request goes out directly.
type Middleware struct {
	proxies           []*url.URL
	proxyClients      map[string]*http.Client
	unhealthyUntil    []atomic.Int64
	next              atomic.Uint64
	cleanupMutex      sync.Mutex
	logger            logger.Logger
	unhealthyDuration time.Duration
	now               func() time.Time
}

// New creates a new Middleware instance.
func New(proxies []*url.URL, requestTimeout, unhealthyDuration time.Duration) *Middleware {
	proxyClients := make(map[string]*http.Client, len(proxies))
	for _, proxy := range proxies {
		transport := &http.Transport{
			Proxy: http.ProxyURL(proxy),
			DialContext: (&net.Dialer{
				Timeout:   20 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
			ResponseHeaderTimeout: 10 * time.Second,
		}

		proxyClients[proxy.String()] = &http.Client{
			Transport: transport,
			Timeout:   requestTimeout,
		}
	}

	return &Middleware{
		proxies:           proxies,
		proxyClients:      proxyClients,
		unhealthyUntil:    make([]atomic.Int64, len(proxies)),
		logger:            &logger.NoOpLogger{},
		unhealthyDuration: unhealthyDuration,
		now:               time.Now,
	}
}

// Parse parses a list of proxy URLs. Entries without a scheme are rejected.
func Parse(raw []string) ([]*url.URL, error) {
	proxies := make([]*url.URL, 0, len(raw))
	for _, entry := range raw {
		u, err := url.Parse(entry)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy %q: %w", entry, err)
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("invalid proxy %q: missing scheme or host", entry)
		}
		proxies = append(proxies, u)
	}
	return proxies, nil
}

// Cleanup closes idle connections in the transport pool.
func (m *Middleware) Cleanup() {
	m.cleanupMutex.Lock()
	defer m.cleanupMutex.Unlock()

	for _, client := range m.proxyClients {
		client.CloseIdleConnections()
	}
}

// Process applies proxy logic before passing the request to the next middleware.
func (m *Middleware) Process(
	ctx context.Context, httpClient *http.Client, req *http.Request, next middleware.NextFunc,
) (*http.Response, error) {
	// Skip if no proxies are available
	if len(m.proxies) == 0 {
		return next(ctx, httpClient, req)
	}

	// A request may be sent several times, each attempt needs its own body
	if err := makeReplayable(req); err != nil {
		return nil, err
	}

	resp, err := m.tryProxy(ctx, httpClient, req, len(m.proxies))
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}

		m.logger.WithFields(
			logger.String("error", err.Error()),
			logger.String("url", req.URL.String()),
		).Debug("Proxy attempt failed, sending directly")

		direct, rewindErr := rewind(ctx, req)
		if rewindErr != nil {
			return nil, rewindErr
		}
		return next(ctx, httpClient, direct)
	}

	return resp, nil
}

// SetLogger sets the logger for the middleware.
func (m *Middleware) SetLogger(l logger.Logger) {
	m.logger = l
}

// tryProxy sends req through the next healthy proxy, moving on to another
// proxy on timeouts until attempts run out.
func (m *Middleware) tryProxy(
	ctx context.Context, httpClient *http.Client, req *http.Request, attempts int,
) (*http.Response, error) {
	index, err := m.selectProxy()
	if err != nil {
		return nil, err
	}

	proxyClient := m.applyProxyToClient(httpClient, m.proxies[index])

	attempt, err := rewind(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := proxyClient.Do(attempt)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}

		if IsTimeoutError(err) {
			m.markProxyUnhealthy(index)
			if attempts > 1 {
				return m.tryProxy(ctx, httpClient, req, attempts-1)
			}
		}
		return nil, err
	}

	m.logger.WithFields(
		logger.String("url", req.URL.String()),
		logger.Int("status_code", resp.StatusCode),
		logger.Int("proxy_index", index),
	).Debug("Proxy attempt completed")

	return resp, nil
}

// selectProxy returns the index of the next healthy proxy in rotation order.
func (m *Middleware) selectProxy() (int, error) {
	now := m.now().UnixMilli()
	total := uint64(len(m.proxies))

	for range total {
		index := int((m.next.Add(1) - 1) % total)
		if m.unhealthyUntil[index].Load() <= now {
			return index, nil
		}
	}

	return -1, ErrAllProxiesUnhealthy
}

// markProxyUnhealthy takes a proxy out of rotation for the unhealthy duration.
func (m *Middleware) markProxyUnhealthy(index int) {
	m.unhealthyUntil[index].Store(m.now().Add(m.unhealthyDuration).UnixMilli())

	m.logger.WithFields(
		logger.Int("proxy_index", index),
		logger.Duration("unhealthy_duration", m.unhealthyDuration),
	).Debug("Marked proxy as unhealthy")
}

// applyProxyToClient applies the proxy to the given http.Client.
func (m *Middleware) applyProxyToClient(httpClient *http.Client, proxy *url.URL) *http.Client {
	m.cleanupMutex.Lock()
	defer m.cleanupMutex.Unlock()

	proxyClient := m.proxyClients[proxy.String()]

	// Copy settings from original client
	proxyClient.CheckRedirect = httpClient.CheckRedirect
	proxyClient.Jar = httpClient.Jar

	return proxyClient
}

// IsTimeoutError reports whether err is a network timeout.
func IsTimeoutError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// makeReplayable buffers the body of req unless it can already be recreated
// through GetBody.
func makeReplayable(req *http.Request) error {
	if req.Body == nil || req.Body == http.NoBody || req.GetBody != nil {
		return nil
	}

	data, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to buffer request body: %w", err)
	}

	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	req.Body, _ = req.GetBody()
	req.ContentLength = int64(len(data))

	return nil
}

// rewind returns a copy of req carrying a fresh body.
func rewind(ctx context.Context, req *http.Request) (*http.Request, error) {
	clone := req.Clone(ctx)
	if req.GetBody == nil {
		return clone, nil
	}

	body, err := req.GetBody()
	if err != nil {
		return nil, fmt.Errorf("failed to rewind request body: %w", err)
	}
	clone.Body = body

	return clone, nil
}
