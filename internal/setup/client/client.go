package client

import (
	"time"

	"github.com/bytedance/sonic"
	"github.com/jaxron/axonet/middleware/circuitbreaker"
	"github.com/jaxron/axonet/pkg/client"
	"github.com/jaxron/axonet/pkg/client/middleware"
	"github.com/robalyx/deeplweb/internal/setup/client/interceptor/proxy"
	"github.com/robalyx/deeplweb/internal/setup/client/interceptor/ratelimit"
	"github.com/robalyx/deeplweb/internal/setup/config"
	"go.uber.org/zap"
)

// New constructs the HTTP client of one translator session along with the
// limiter spacing its requests and, when proxies are configured, the proxy
// rotation whose idle connections the session releases on close. Every call
// returns a fresh limiter so that sessions are rate limited independently of
// each other.
//
// The chain carries no retry middleware. Callers decide whether to retry.
func New(cfg *config.Config, zapLogger *zap.Logger) (*client.Client, *ratelimit.Limiter, *proxy.Middleware) {
	limiter := ratelimit.New(cfg.Provider.MinIntervalDuration())

	// Build middleware chain - order matters!
	middlewares := []middleware.Middleware{
		circuitbreaker.New(
			cfg.CircuitBreaker.MaxRequests,
			time.Duration(cfg.CircuitBreaker.Interval)*time.Millisecond,
			time.Duration(cfg.CircuitBreaker.Timeout)*time.Millisecond,
		),
		limiter,
	}

	var rotation *proxy.Middleware
	if len(cfg.Provider.Proxies) > 0 {
		proxies, err := proxy.Parse(cfg.Provider.Proxies)
		if err != nil {
			zapLogger.Error("Ignoring proxy configuration", zap.Error(err))
		} else {
			rotation = proxy.New(
				proxies,
				cfg.Provider.RequestTimeoutDuration(),
				cfg.Provider.UnhealthyDurationValue(),
			)
			middlewares = append(middlewares, rotation)
			zapLogger.Debug("Rotating requests over proxies", zap.Int("count", len(proxies)))
		}
	}

	return client.NewClient(
		client.WithMarshalFunc(sonic.Marshal),
		client.WithUnmarshalFunc(sonic.Unmarshal),
		client.WithLogger(NewLogger(zapLogger)),
		client.WithTimeout(cfg.Provider.RequestTimeoutDuration()),
		client.WithMiddleware(middlewares...),
	), limiter, rotation
}
