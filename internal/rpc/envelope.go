// Package rpc speaks the JSON-RPC dialect of the web translator: request
// envelopes, client state and the classification of error codes.
package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/bytedance/sonic"
)

// Version is the protocol version carried by every request.
const Version = "2.0"

// Request is an outbound method call.
type Request struct {
	ID      int64  `json:"id"`
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

// NewRequest wraps params into a method call with the given id.
func NewRequest(id int64, method string, params any) *Request {
	return &Request{
		ID:      id,
		JSONRPC: Version,
		Method:  method,
		Params:  params,
	}
}

// ErrorObject is the error member of a failed response.
type ErrorObject struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Response holds either a result or an error.
type Response struct {
	ID     int64           `json:"id"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *ErrorObject    `json:"error,omitempty"`
}

// Err returns the classified error of a failed response, or nil.
func (r *Response) Err() error {
	if r.Error == nil {
		return nil
	}
	return NewError(r.Error.Code, r.Error.Message)
}

// Decode returns the response error if there is one, otherwise unmarshals
// the result into v. A nil v only checks for an error.
func (r *Response) Decode(v any) error {
	if err := r.Err(); err != nil {
		return err
	}

	if len(r.Result) == 0 || bytes.Equal(r.Result, []byte("null")) {
		return ErrEmptyResult
	}

	if v == nil {
		return nil
	}

	if err := sonic.Unmarshal(r.Result, v); err != nil {
		return fmt.Errorf("failed to decode result: %w", err)
	}

	return nil
}
