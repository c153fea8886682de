// Package mcp serves tools to Model Context Protocol clients.
//
// The protocol itself (JSON-RPC framing, version negotiation, transports) is provided by the
// official Go SDK. This package registers the tool table with an SDK server, converts tool
// errors into protocol results, and tracks the lifecycle of every client session.
package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"runtime/debug"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/tessiemcp/tessie-mcp/internal/log"
	"github.com/tessiemcp/tessie-mcp/pkg/tessie"
	"github.com/tessiemcp/tessie-mcp/pkg/tools"
)

// ServerName is reported to clients during initialization.
const ServerName = "tessie-mcp"

// JSON-RPC error codes returned by this package.
const (
	CodeInvalidRequest = -32600
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

const (
	methodInitialize = "initialize"
	methodListTools  = "tools/list"
	methodCallTool   = "tools/call"
)

// Dispatcher runs tools. It is implemented by *tools.Table.
type Dispatcher interface {
	Tools() []tools.Descriptor
	Dispatch(ctx context.Context, name string, args tools.Arguments) (string, error)
}

// Server answers MCP requests using a Dispatcher.
type Server struct {
	Name    string
	Version string

	server *sdk.Server
	tools  Dispatcher
	logger *log.Logger

	lock     sync.Mutex
	sessions map[*sdk.ServerSession]*Session
}

// NewServer returns a Server offering every tool of dispatcher.
func NewServer(dispatcher Dispatcher) *Server {
	s := &Server{
		Name:     ServerName,
		Version:  tessie.Version(),
		tools:    dispatcher,
		logger:   log.With("component", "mcp"),
		sessions: make(map[*sdk.ServerSession]*Session),
	}
	s.server = sdk.NewServer(&sdk.Implementation{Name: s.Name, Version: s.Version}, nil)
	for _, d := range dispatcher.Tools() {
		s.server.AddTool(&sdk.Tool{
			Name:        d.Name,
			Description: d.Description,
			InputSchema: d.InputSchema,
		}, s.callTool)
	}
	s.server.AddReceivingMiddleware(s.track)
	return s
}

// Connect starts a session on transport without waiting for it to end.
func (s *Server) Connect(ctx context.Context, transport sdk.Transport) (*sdk.ServerSession, error) {
	return s.server.Connect(ctx, transport, nil)
}

// Serve runs a single session on transport until the client disconnects or ctx is cancelled.
func (s *Server) Serve(ctx context.Context, transport sdk.Transport) error {
	err := s.server.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// Session returns the lifecycle record of ss, if ss has sent at least one request and has not
// ended yet.
func (s *Server) Session(ss *sdk.ServerSession) (*Session, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	session, ok := s.sessions[ss]
	return session, ok
}

func protocolError(code int, format string, a ...interface{}) error {
	return &jsonrpc.Error{Code: int64(code), Message: fmt.Sprintf(format, a...)}
}

// session returns the record of ss, creating it on first use. The record is closed and dropped
// once the SDK session ends.
func (s *Server) session(ss *sdk.ServerSession) *Session {
	s.lock.Lock()
	defer s.lock.Unlock()
	if session, ok := s.sessions[ss]; ok {
		return session
	}
	session := newSession(ss.ID())
	s.sessions[ss] = session
	go func() {
		if err := ss.Wait(); err != nil {
			session.logger.Debug("Session ended: %s", err)
		}
		s.lock.Lock()
		delete(s.sessions, ss)
		s.lock.Unlock()
		session.Close()
	}()
	return session
}

// track enforces the session lifecycle and turns handler panics into internal errors.
func (s *Server) track(next sdk.MethodHandler) sdk.MethodHandler {
	return func(ctx context.Context, method string, req sdk.Request) (result sdk.Result, err error) {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("Panic while handling %s: %v\n%s", method, r, debug.Stack())
				result, err = nil, protocolError(CodeInternalError, "internal error")
			}
		}()

		ss, ok := req.GetSession().(*sdk.ServerSession)
		if !ok || ss == nil {
			return next(ctx, method, req)
		}
		session := s.session(ss)
		switch method {
		case methodInitialize:
			if session.State() != StateNew {
				return nil, protocolError(CodeInvalidRequest, "session already initialized")
			}
			result, err = next(ctx, method, req)
			if err != nil {
				return nil, err
			}
			var version, client string
			if r, ok := result.(*sdk.InitializeResult); ok {
				version = r.ProtocolVersion
			}
			if p, ok := req.GetParams().(*sdk.InitializeParams); ok && p.ClientInfo != nil {
				client = p.ClientInfo.Name
			}
			if err := session.initialize(ctx, version, client); err != nil {
				return nil, protocolError(CodeInvalidRequest, "session already initialized")
			}
			return result, nil
		case methodListTools, methodCallTool:
			if session.State() != StateInitialized {
				return nil, protocolError(CodeInvalidRequest, "session is not initialized")
			}
		}
		return next(ctx, method, req)
	}
}

func textResult(text string, isError bool) *sdk.CallToolResult {
	return &sdk.CallToolResult{
		Content: []sdk.Content{&sdk.TextContent{Text: text}},
		IsError: isError,
	}
}

// decodeArguments keeps numbers in their textual form so that tools see what the client sent.
func decodeArguments(raw json.RawMessage) (tools.Arguments, error) {
	args := tools.Arguments{}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return args, nil
	}
	d := json.NewDecoder(bytes.NewReader(raw))
	d.UseNumber()
	if err := d.Decode(&args); err != nil {
		return nil, err
	}
	return args, nil
}

func (s *Server) callTool(ctx context.Context, req *sdk.CallToolRequest) (*sdk.CallToolResult, error) {
	name := req.Params.Name
	args, err := decodeArguments(req.Params.Arguments)
	if err != nil {
		return nil, protocolError(CodeInvalidParams, "invalid arguments: %s", err)
	}

	text, err := s.tools.Dispatch(ctx, name, args)
	var argErr *tools.ArgumentError
	switch {
	case errors.Is(err, tools.ErrUnknownTool):
		return nil, protocolError(CodeInvalidParams, "Unknown tool: %s", name)
	case errors.As(err, &argErr):
		return nil, protocolError(CodeInvalidParams, "%s", argErr)
	case err != nil:
		s.logger.Warning("Tool %s failed: %s", name, err)
		return textResult(err.Error(), true), nil
	}
	return textResult(text, false), nil
}
