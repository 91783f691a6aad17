package rpc

import (
	"context"
	"fmt"
	"sync"

	"github.com/robalyx/deeplweb/internal/transport"
	"go.uber.org/zap"
)

// Caller dispatches method calls over one session. Calls are serialized so
// the id increment and the dispatch it belongs to never interleave with
// another call.
type Caller struct {
	mu       sync.Mutex
	session  *transport.Session
	state    *ClientState
	endpoint string
	logger   *zap.Logger
}

// NewCaller creates a caller with an existing client state.
func NewCaller(session *transport.Session, state *ClientState, endpoint string, logger *zap.Logger) *Caller {
	return &Caller{
		session:  session,
		state:    state,
		endpoint: endpoint,
		logger:   logger.Named("rpc"),
	}
}

// Dial performs the client state handshake and returns a caller ready to use.
func Dial(ctx context.Context, session *transport.Session, rpcURL, stateURL string, logger *zap.Logger) *Caller {
	logger = logger.Named("rpc")
	id := Handshake(ctx, session, stateURL, logger)

	return &Caller{
		session:  session,
		state:    NewClientState(id),
		endpoint: rpcURL,
		logger:   logger,
	}
}

// State returns the client state of the caller.
func (c *Caller) State() *ClientState {
	return c.state
}

// Call invokes method with params and decodes the result into result.
// Error responses are returned as *Error.
func (c *Caller) Call(ctx context.Context, method string, params, result any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	req := NewRequest(c.state.Next(), method, params)

	resp, err := c.session.Post(ctx, c.endpoint, nil, nil, transport.JSON(req))
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}

	var envelope Response
	if decodeErr := resp.Decode(&envelope); decodeErr != nil {
		if !resp.OK() {
			return fmt.Errorf("%s: %w: HTTP %d", method, ErrUnexpectedStatus, resp.StatusCode)
		}
		return fmt.Errorf("%s: failed to decode response: %w", method, decodeErr)
	}

	if envelope.Error == nil && !resp.OK() {
		return fmt.Errorf("%s: %w: HTTP %d", method, ErrUnexpectedStatus, resp.StatusCode)
	}

	if err := envelope.Decode(result); err != nil {
		c.logger.Debug("Call failed",
			zap.String("method", method),
			zap.Int64("id", req.ID),
			zap.Error(err))

		return fmt.Errorf("%s: %w", method, err)
	}

	c.logger.Debug("Call succeeded",
		zap.String("method", method),
		zap.Int64("id", req.ID))

	return nil
}
