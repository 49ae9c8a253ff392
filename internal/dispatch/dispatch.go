// Package dispatch maps tool invocations onto the validator and the
// clipboard gateway and packages every outcome as a ToolResult.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/timrogers/klip/internal/clipboard"
	"github.com/timrogers/klip/internal/validate"
)

// CodeDomainError is the JSON-RPC error code for validation and clipboard failures.
const CodeDomainError = -32000

// Clipboard is the gateway surface the dispatcher needs.
type Clipboard interface {
	Set(ctx context.Context, text string) error
	Get(ctx context.Context) (string, error)
}

// ToolRequest is one decoded tools/call invocation.
type ToolRequest struct {
	ID        json.RawMessage
	Name      string
	Arguments any
}

// FailureKind classifies a failed ToolResult.
type FailureKind string

const (
	FailureToolNotFound      FailureKind = "ToolNotFound"
	FailureInvalidParameters FailureKind = "InvalidParameters"
	FailureValidation        FailureKind = "ValidationError"
	FailureClipboard         FailureKind = "ClipboardError"
	FailureInternal          FailureKind = "InternalError"
)

// Failure is the structured error half of a ToolResult.
type Failure struct {
	Kind    FailureKind
	Code    int
	Message string

	// Clipboard is set when Kind is FailureClipboard.
	Clipboard clipboard.Kind
}

func (f *Failure) Error() string { return f.Message }

// ToolResult is either a success payload (Text) or a Failure.
type ToolResult struct {
	Text    string
	Failure *Failure
}

// OK reports whether the result is a success.
func (r ToolResult) OK() bool { return r.Failure == nil }

// CallToolResult renders a successful result as MCP content.
func (r ToolResult) CallToolResult() *mcp.CallToolResult {
	return mcp.NewToolResultText(r.Text)
}

// Dispatcher routes tool requests. It is safe for concurrent use; the
// gateway serializes clipboard access.
type Dispatcher struct {
	clip     Clipboard
	maxBytes int
	logger   *slog.Logger
}

// New creates a dispatcher. A non-positive maxBytes selects
// validate.DefaultMaxBytes.
func New(clip Clipboard, maxBytes int, logger *slog.Logger) *Dispatcher {
	if maxBytes <= 0 {
		maxBytes = validate.DefaultMaxBytes
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Dispatcher{clip: clip, maxBytes: maxBytes, logger: logger}
}

// Dispatch runs req to completion. Every failure, including a panic in a
// collaborator, is returned as a Failure.
func (d *Dispatcher) Dispatch(ctx context.Context, req ToolRequest) (res ToolResult) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("tool handler panicked", "tool", req.Name, "panic", r)
			res = failure(FailureInternal, mcp.INTERNAL_ERROR, fmt.Sprintf("Internal error: %v", r))
		}
	}()

	name, ok := canonicalToolName(req.Name)
	if !ok {
		return failure(FailureToolNotFound, mcp.INVALID_PARAMS, fmt.Sprintf("Tool not found: %s", req.Name))
	}

	args, err := argumentMap(req.Arguments)
	if err != nil {
		return invalidParameters(err.Error())
	}

	switch name {
	case ToolSet:
		return d.setText(ctx, args)
	case ToolGet:
		return d.getText(ctx)
	}
	return failure(FailureToolNotFound, mcp.INVALID_PARAMS, fmt.Sprintf("Tool not found: %s", req.Name))
}

func (d *Dispatcher) setText(ctx context.Context, args map[string]any) ToolResult {
	raw, ok := args["text"]
	if !ok {
		return invalidParameters("missing required argument: text")
	}
	text, ok := raw.(string)
	if !ok {
		return invalidParameters(fmt.Sprintf("argument text must be a string, got %s", jsonType(raw)))
	}

	if err := validate.Text(text, d.maxBytes); err != nil {
		d.logger.Warn("rejected clipboard text", "bytes", len(text), "error", err)
		return failure(FailureValidation, CodeDomainError, err.Error())
	}

	if err := d.clip.Set(ctx, text); err != nil {
		return clipboardFailure(err)
	}

	return ToolResult{Text: fmt.Sprintf("Successfully copied %d characters to clipboard", utf8.RuneCountInString(text))}
}

func (d *Dispatcher) getText(ctx context.Context) ToolResult {
	text, err := d.clip.Get(ctx)
	if err != nil {
		return clipboardFailure(err)
	}
	return ToolResult{Text: text}
}

// Register adds the tool catalog to s. The registered handlers route
// through Dispatch, so s can also serve tools/call on its own.
func (d *Dispatcher) Register(s *server.MCPServer) {
	for _, tool := range Tools() {
		s.AddTool(tool, d.handle)
	}
}

func (d *Dispatcher) handle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res := d.Dispatch(ctx, ToolRequest{Name: request.Params.Name, Arguments: request.Params.Arguments})
	if !res.OK() {
		return nil, res.Failure
	}
	return res.CallToolResult(), nil
}

func argumentMap(arguments any) (map[string]any, error) {
	switch v := arguments.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return v, nil
	case json.RawMessage:
		if len(v) == 0 {
			return map[string]any{}, nil
		}
		var out map[string]any
		if err := json.Unmarshal(v, &out); err != nil {
			return nil, errors.New("arguments must be an object")
		}
		if out == nil {
			out = map[string]any{}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("arguments must be an object, got %s", jsonType(arguments))
	}
}

func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, json.Number, int, int64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func failure(kind FailureKind, code int, message string) ToolResult {
	return ToolResult{Failure: &Failure{Kind: kind, Code: code, Message: message}}
}

func invalidParameters(detail string) ToolResult {
	return failure(FailureInvalidParameters, mcp.INVALID_PARAMS, "Invalid parameters: "+detail)
}

func clipboardFailure(err error) ToolResult {
	res := failure(FailureClipboard, CodeDomainError, err.Error())
	res.Failure.Clipboard = clipboard.KindOf(err)
	return res
}
