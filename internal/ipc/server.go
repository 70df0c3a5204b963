package ipc

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/algorandfoundation/algokit-lora/internal/logging"
)

// connDeadline bounds a single request/response exchange.
const connDeadline = 10 * time.Second

// maxRequestSize caps a request line. Argument vectors are small.
const maxRequestSize = 64 * 1024

// Handler receives relayed launches. It must not block on the UI.
type Handler interface {
	// HandleRelay accepts one relayed argument vector. Returning
	// duplicate=true acknowledges a retransmission without acting on it.
	HandleRelay(req *Request) (duplicate bool, err error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(req *Request) (bool, error)

// HandleRelay implements Handler.
func (f HandlerFunc) HandleRelay(req *Request) (bool, error) {
	return f(req)
}

// Server accepts relay connections on a socket or pipe endpoint.
type Server struct {
	handler  Handler
	logger   *logging.Logger
	endpoint string
	listener net.Listener

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer creates a relay server for endpoint.
func NewServer(handler Handler, logger *logging.Logger, endpoint string) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		handler:  handler,
		logger:   logger,
		endpoint: endpoint,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins listening for relay connections. Only the process holding
// the instance claim may call it: on Unix any existing socket file at the
// endpoint is treated as stale and removed.
func (s *Server) Start() error {
	listener, err := listen(s.endpoint)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.endpoint, err)
	}
	s.listener = listener

	s.logger.Info().Str("endpoint", s.endpoint).Msg("Relay server started")

	s.wg.Add(1)
	go s.acceptLoop()

	return nil
}

// Stop gracefully shuts down the relay server.
func (s *Server) Stop() {
	s.cancel()

	if s.listener != nil {
		s.listener.Close()
	}

	s.wg.Wait()
	cleanup(s.endpoint)
	s.logger.Debug().Msg("Relay server stopped")
}

// Endpoint returns the address the server listens on.
func (s *Server) Endpoint() string {
	return s.endpoint
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.ctx.Done():
				return
			default:
				s.logger.Warn().Err(err).Msg("Failed to accept relay connection")
				continue
			}
		}

		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(connDeadline))

	reader := bufio.NewReader(io.LimitReader(conn, maxRequestSize))
	data, err := reader.ReadBytes('\n')
	if err != nil {
		if err != io.EOF {
			s.logger.Warn().Err(err).Msg("Failed to read relay request")
		}
		return
	}

	req, err := DecodeRequest(data)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to decode relay request")
		s.sendResponse(conn, NewErrorResponse("invalid request format"))
		return
	}

	s.logger.Debug().
		Str("type", string(req.Type)).
		Str("id", req.ID).
		Int("args", len(req.Args)).
		Msg("Received relay request")

	s.sendResponse(conn, s.handleRequest(req))
}

func (s *Server) handleRequest(req *Request) *Response {
	switch req.Type {
	case MsgPing:
		return NewOKResponse()

	case MsgRelayArgs:
		duplicate, err := s.handler.HandleRelay(req)
		if err != nil {
			return NewErrorResponse(err.Error())
		}
		if duplicate {
			return NewDuplicateResponse()
		}
		return NewOKResponse()

	default:
		return NewErrorResponse(fmt.Sprintf("unknown request type: %s", req.Type))
	}
}

func (s *Server) sendResponse(conn net.Conn, resp *Response) {
	data, err := resp.Encode()
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode relay response")
		return
	}

	data = append(data, '\n')

	if _, err := conn.Write(data); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to send relay response")
	}
}
