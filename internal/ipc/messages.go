// Package ipc carries launch arguments from a later invocation of the
// application to the instance that is already running.
//
// The transport is a Unix domain socket on macOS/Linux and a named pipe on
// Windows. Each connection carries exactly one newline-terminated JSON
// request followed by one newline-terminated JSON response.
package ipc

import (
	"encoding/json"
	"errors"
	"fmt"
)

// MessageType identifies the type of IPC message.
type MessageType string

const (
	// Request types (client -> server)
	MsgRelayArgs MessageType = "RelayArgs"
	MsgPing      MessageType = "Ping"

	// Response types (server -> client)
	MsgOK    MessageType = "OK"
	MsgError MessageType = "Error"
)

// ErrRemote wraps failures reported by the server in a response.
var ErrRemote = errors.New("server error")

// Request represents an IPC request from client to server.
type Request struct {
	Type MessageType `json:"type"`

	// ID identifies a relay so the server can ignore retransmissions.
	ID string `json:"id,omitempty"`

	// Args is the sender's full argument vector, program name first.
	Args []string `json:"args,omitempty"`

	// WorkingDir is the sender's working directory.
	WorkingDir string `json:"working_dir,omitempty"`
}

// Response represents an IPC response from server to client.
type Response struct {
	Type    MessageType `json:"type"`
	Success bool        `json:"success"`
	Error   string      `json:"error,omitempty"`

	// Duplicate is set when a relay ID had already been handled.
	Duplicate bool `json:"duplicate,omitempty"`
}

// NewRelayRequest creates a request handing args to the running instance.
func NewRelayRequest(id string, args []string, workingDir string) *Request {
	return &Request{Type: MsgRelayArgs, ID: id, Args: args, WorkingDir: workingDir}
}

// NewPingRequest creates a liveness check.
func NewPingRequest() *Request {
	return &Request{Type: MsgPing}
}

// NewOKResponse creates a success response.
func NewOKResponse() *Response {
	return &Response{Type: MsgOK, Success: true}
}

// NewDuplicateResponse acknowledges a relay ID that was already handled.
func NewDuplicateResponse() *Response {
	return &Response{Type: MsgOK, Success: true, Duplicate: true}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(err string) *Response {
	return &Response{Type: MsgError, Success: false, Error: err}
}

// Err converts an unsuccessful response into an error.
func (r *Response) Err() error {
	if r.Success {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrRemote, r.Error)
}

// Encode serializes a request to JSON.
func (r *Request) Encode() ([]byte, error) {
	return json.Marshal(r)
}

// Encode serializes a response to JSON.
func (r *Response) Encode() ([]byte, error) {
	return json.Marshal(r)
}

// DecodeRequest parses a JSON request.
func DecodeRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to decode request: %w", err)
	}
	if req.Type == "" {
		return nil, fmt.Errorf("failed to decode request: missing type")
	}
	return &req, nil
}

// DecodeResponse parses a JSON response.
func DecodeResponse(data []byte) (*Response, error) {
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &resp, nil
}
