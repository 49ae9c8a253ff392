package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"github.com/timrogers/klip/internal/clipboard"
	"github.com/timrogers/klip/internal/config"
	"github.com/timrogers/klip/internal/dispatch"
	"github.com/timrogers/klip/internal/session"
)

// Exit codes.
const (
	ExitOK       = 0
	ExitFatal    = 1
	ExitUsageErr = 2
)

const serverInstructions = "A clipboard management server that allows copying text to the system clipboard"

// Run is the main CLI entry point. Returns an exit code.
func Run(args []string) int {
	opts, err := parseRootArgs(args)
	if err != nil {
		fmt.Fprintf(rootStderr, "klip: %v\n", err)
		fmt.Fprintln(rootStderr, "Run 'klip --help' for usage.")
		return ExitUsageErr
	}
	if opts.help {
		printRootHelp(rootStdout)
		return ExitOK
	}
	if opts.version {
		fmt.Fprintf(rootStdout, "klip %s\n", buildVersion)
		return ExitOK
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(rootStderr, "klip: %v\n", err)
		return ExitUsageErr
	}
	if verr := config.Validate(cfg); verr != nil {
		fmt.Fprintf(rootStderr, "klip: invalid config: %v\n", verr)
		return ExitUsageErr
	}

	if opts.printConfig {
		if err := config.Encode(rootStdout, cfg); err != nil {
			fmt.Fprintf(rootStderr, "klip: %v\n", err)
			return ExitFatal
		}
		return ExitOK
	}

	level, _ := config.ParseLogLevel(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(rootStderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, cfg, logger, rootStdin, rootStdout); err != nil {
		fmt.Fprintf(rootStderr, "klip: %v\n", err)
		return ExitFatal
	}
	return ExitOK
}

// serve wires the clipboard gateway, the dispatcher and the MCP server
// together and runs one session over in/out.
func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger, in io.Reader, out io.Writer) error {
	backend, err := clipboard.Open(cfg)
	if err != nil {
		return initError(err)
	}
	logger.Info("clipboard ready", "backend", backend.Name(), "timeout", cfg.Timeout(), "max_text_bytes", cfg.MaxTextBytes)

	gateway := clipboard.NewGateway(backend, cfg.Timeout(), logger)
	dispatcher := dispatch.New(gateway, cfg.MaxTextBytes, logger)

	mcpServer := server.NewMCPServer("klip", buildVersion,
		server.WithToolCapabilities(false),
		server.WithInstructions(serverInstructions),
		server.WithRecovery(),
	)
	dispatcher.Register(mcpServer)

	if f, ok := in.(*os.File); ok && session.IsTerminal(f) {
		logger.Warn("stdin is a terminal; klip expects an MCP client on stdin/stdout")
	}

	logger.Info("serving on stdio", "version", buildVersion)
	return session.New(mcpServer, dispatcher, logger).Serve(ctx, in, out)
}

func initError(err error) error {
	if clipboard.KindOf(err) == clipboard.KindPlatform {
		return err
	}
	return fmt.Errorf("Failed to initialize clipboard: %w", err)
}
