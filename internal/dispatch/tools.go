package dispatch

import (
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// Tool names.
const (
	ToolSet        = "clipboard_set"
	ToolGet        = "clipboard_get"
	ToolCopyLegacy = "copy_to_clipboard"
)

// aliases maps every accepted spelling to its canonical tool.
var aliases = map[string]string{
	ToolSet:        ToolSet,
	ToolGet:        ToolGet,
	ToolCopyLegacy: ToolSet,
}

// canonicalToolName resolves requested to a known tool, accepting the
// kebab-case spelling of any snake_case name.
func canonicalToolName(requested string) (string, bool) {
	if name, ok := aliases[requested]; ok {
		return name, true
	}
	if name, ok := aliases[strings.ReplaceAll(requested, "-", "_")]; ok {
		return name, true
	}
	return "", false
}

func setTool(name string) mcp.Tool {
	return mcp.NewTool(name,
		mcp.WithDescription("Copy text to the system clipboard"),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("The text content to copy to the clipboard"),
		),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)
}

func getTool() mcp.Tool {
	return mcp.NewTool(ToolGet,
		mcp.WithDescription("Read the current text content of the system clipboard"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(false),
	)
}

// Tools returns the catalog advertised to clients.
func Tools() []mcp.Tool {
	return []mcp.Tool{
		setTool(ToolSet),
		getTool(),
		setTool(ToolCopyLegacy),
	}
}
