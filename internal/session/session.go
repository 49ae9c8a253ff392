// Package session runs the stdio JSON-RPC loop: it reads newline-delimited
// messages, answers tools/call through the dispatcher and hands every other
// MCP method to the mcp-go server.
package session

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
	"unicode/utf8"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/timrogers/klip/internal/dispatch"
)

// queueDepth bounds how many complete inbound messages are buffered while a
// request is being served.
const queueDepth = 64

// State is the loop's position in its lifecycle.
type State int32

const (
	AwaitingMessage State = iota
	Dispatching
	Closed
)

func (s State) String() string {
	switch s {
	case AwaitingMessage:
		return "awaiting-message"
	case Dispatching:
		return "dispatching"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Handler answers MCP messages other than tools/call. *server.MCPServer
// satisfies it.
type Handler interface {
	HandleMessage(ctx context.Context, message json.RawMessage) mcp.JSONRPCMessage
}

// Dispatcher runs tool invocations.
type Dispatcher interface {
	Dispatch(ctx context.Context, req dispatch.ToolRequest) dispatch.ToolResult
}

// Session serves one bidirectional stream.
type Session struct {
	handler    Handler
	dispatcher Dispatcher
	logger     *slog.Logger
	state      atomic.Int32
}

// New creates a session. A nil logger discards output.
func New(handler Handler, dispatcher Dispatcher, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Session{handler: handler, dispatcher: dispatcher, logger: logger}
}

// State returns the current loop state.
func (s *Session) State() State {
	return State(s.state.Load())
}

func (s *Session) setState(st State) {
	s.state.Store(int32(st))
}

type frame struct {
	data []byte
	err  error
}

// Serve processes messages from in until it reaches end of input or ctx is
// canceled; both return nil. Each request is answered on out before the next
// one is handled. Read and write failures are returned.
//
// On cancellation an *os.File input is closed to unblock the reader
// goroutine. Any other reader is left to its owner, and the goroutine exits
// at its next line or end of input.
func (s *Session) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	defer s.setState(Closed)

	frames := make(chan frame, queueDepth)
	done := make(chan struct{})
	defer close(done)
	go readFrames(in, frames, done)

	for {
		s.setState(AwaitingMessage)

		var f frame
		var ok bool
		select {
		case <-ctx.Done():
			s.logger.Info("session canceled")
			if file, isFile := in.(*os.File); isFile {
				_ = file.Close()
			}
			return nil
		case f, ok = <-frames:
		}
		if !ok {
			s.logger.Info("client disconnected")
			return nil
		}
		if f.err != nil {
			return fmt.Errorf("reading message: %w", f.err)
		}

		s.setState(Dispatching)
		msg := s.handleFrame(ctx, f.data)
		if msg == nil {
			continue
		}
		if err := writeMessage(out, msg); err != nil {
			return err
		}
	}
}

// readFrames splits in on newlines. The channel is closed at end of input.
func readFrames(in io.Reader, frames chan<- frame, done <-chan struct{}) {
	defer close(frames)

	reader := bufio.NewReader(in)
	for {
		line, err := reader.ReadBytes('\n')
		if len(line) > 0 {
			select {
			case frames <- frame{data: line}:
			case <-done:
				return
			}
		}
		if err == nil {
			continue
		}
		if !errors.Is(err, io.EOF) {
			select {
			case frames <- frame{err: err}:
			case <-done:
			}
		}
		return
	}
}

func (s *Session) handleFrame(ctx context.Context, data []byte) any {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	if !utf8.Valid(data) {
		s.logger.Warn("rejected message", "reason", "invalid UTF-8")
		return errorResponse(nil, mcp.PARSE_ERROR, "Parse error: message is not valid UTF-8")
	}
	if data[0] == '[' {
		return errorResponse(nil, mcp.INVALID_REQUEST, "Invalid request: batch messages are not supported")
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		s.logger.Warn("rejected message", "reason", "malformed JSON", "error", err)
		return errorResponse(nil, mcp.PARSE_ERROR, fmt.Sprintf("Parse error: %v", err))
	}

	if env.Method == "" {
		if len(env.Result) > 0 || len(env.Error) > 0 {
			// A reply to a server-initiated request; klip sends none.
			return nil
		}
		return errorResponse(env.ID, mcp.INVALID_REQUEST, "Invalid request: missing method")
	}

	s.logger.Debug("← "+env.Method, "id", string(env.ID))

	if mcp.MCPMethod(env.Method) == mcp.MethodToolsCall {
		return s.callTool(ctx, &env)
	}

	reply := s.handler.HandleMessage(ctx, json.RawMessage(data))
	if reply == nil {
		return nil
	}
	return reply
}

func (s *Session) callTool(ctx context.Context, env *envelope) any {
	if !env.hasID() {
		return errorResponse(nil, mcp.INVALID_REQUEST, "Invalid request: tools/call requires an id")
	}

	var params mcp.CallToolParams
	if len(env.Params) == 0 {
		return errorResponse(env.ID, mcp.INVALID_PARAMS, "Invalid params: missing tools/call params")
	}
	if err := json.Unmarshal(env.Params, &params); err != nil {
		return errorResponse(env.ID, mcp.INVALID_PARAMS, fmt.Sprintf("Invalid params: %v", err))
	}

	res := s.dispatcher.Dispatch(ctx, dispatch.ToolRequest{
		ID:        env.ID,
		Name:      params.Name,
		Arguments: params.Arguments,
	})
	if !res.OK() {
		s.logger.Info("tool call failed", "id", string(env.ID), "tool", params.Name, "kind", string(res.Failure.Kind), "error", res.Failure.Message)
		return errorResponse(env.ID, res.Failure.Code, res.Failure.Message)
	}
	s.logger.Debug("tool call succeeded", "id", string(env.ID), "tool", params.Name)
	return resultResponse(env.ID, res.CallToolResult())
}
