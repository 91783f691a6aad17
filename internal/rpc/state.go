package rpc

import (
	"context"
	"math/rand/v2"
	"net/url"
	"sync"

	"github.com/robalyx/deeplweb/internal/transport"
	"go.uber.org/zap"
)

// Handshake constants of the getClientState call.
const (
	MethodGetClientState = "getClientState"
	ClientStateVersion   = "20180814"
)

// ClientState is the session id the service expects on every call. Each call
// consumes the next id.
type ClientState struct {
	mu sync.Mutex
	id int64
}

// NewClientState starts counting from id.
func NewClientState(id int64) *ClientState {
	return &ClientState{id: id}
}

// Next increments and returns the id for the next call.
func (s *ClientState) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.id++
	return s.id
}

// Current returns the last id handed out.
func (s *ClientState) Current() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.id
}

// randomBase returns a random id base in [10000000, 99990000].
func randomBase() int64 {
	return (rand.Int64N(9000) + 1000) * 10000
}

// PseudoID returns a locally generated session id used when the handshake
// cannot be completed.
func PseudoID() int64 {
	return randomBase() + 1
}

type clientStateParams struct {
	V          string         `json:"v"`
	ClientVars map[string]any `json:"clientVars"`
}

// Handshake asks the service for a session id. It never fails: when the
// service cannot be reached or answers with anything unexpected, a pseudo id
// is returned so the session stays usable.
func Handshake(ctx context.Context, session *transport.Session, endpoint string, logger *zap.Logger) int64 {
	req := NewRequest(randomBase()+1, MethodGetClientState, clientStateParams{
		V:          ClientStateVersion,
		ClientVars: map[string]any{},
	})

	params := url.Values{}
	params.Set("request_type", "jsonrpc")
	params.Set("il", "E")
	params.Set("method", MethodGetClientState)

	fallback := func(reason string, fields ...zap.Field) int64 {
		id := PseudoID()
		logger.Warn("Client state handshake failed, using pseudo session id",
			append(fields, zap.String("reason", reason), zap.Int64("id", id))...)
		return id
	}

	resp, err := session.Post(ctx, endpoint, nil, params, transport.JSON(req))
	if err != nil {
		return fallback("request failed", zap.Error(err))
	}

	if !resp.OK() {
		return fallback("unexpected status", zap.Int("status", resp.StatusCode))
	}

	var state struct {
		ID *int64 `json:"id"`
	}
	if err := resp.Decode(&state); err != nil {
		return fallback("malformed response", zap.Error(err))
	}

	if state.ID == nil {
		return fallback("response carries no id")
	}

	logger.Debug("Obtained client state", zap.Int64("id", *state.ID))

	return *state.ID
}
