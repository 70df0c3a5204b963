package ipc

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"time"
)

// Client connects to the relay server of the running instance.
type Client struct {
	timeout  time.Duration
	endpoint string
}

// NewClient creates a relay client for endpoint.
func NewClient(endpoint string) *Client {
	return &Client{
		timeout:  5 * time.Second,
		endpoint: endpoint,
	}
}

// NewClientWithTimeout creates a relay client with a custom timeout.
func NewClientWithTimeout(endpoint string, timeout time.Duration) *Client {
	return &Client{
		timeout:  timeout,
		endpoint: endpoint,
	}
}

// RelayArgs hands args to the running instance. duplicate reports that the
// server had already seen id.
func (c *Client) RelayArgs(ctx context.Context, id string, args []string, workingDir string) (duplicate bool, err error) {
	resp, err := c.sendRequest(ctx, NewRelayRequest(id, args, workingDir))
	if err != nil {
		return false, err
	}
	if err := resp.Err(); err != nil {
		return false, err
	}
	return resp.Duplicate, nil
}

// Ping checks whether a server is accepting connections.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.sendRequest(ctx, NewPingRequest())
	if err != nil {
		return err
	}
	return resp.Err()
}

func (c *Client) connect(ctx context.Context) (net.Conn, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	conn, err := dial(ctx, c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to relay server at %s: %w", c.endpoint, err)
	}
	return conn, nil
}

func (c *Client) sendRequest(ctx context.Context, req *Request) (*Response, error) {
	conn, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	conn.SetDeadline(deadline)

	data, err := req.Encode()
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	data = append(data, '\n')

	if _, err := conn.Write(data); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	resp, err := DecodeResponse(respData)
	if err != nil {
		return nil, err
	}
	return resp, nil
}
