package clipboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/timrogers/klip/internal/config"
)

// commandBackend pipes text through external programs such as wl-copy,
// xclip, pbcopy or termux-clipboard-set.
type commandBackend struct {
	copy  []string
	paste []string
}

func newCommandBackend(cfg config.CommandConfig) (Backend, error) {
	if len(cfg.Copy) == 0 {
		return nil, &Error{Kind: KindUnavailable, Op: OpOpen, Detail: "no copy command configured"}
	}

	b := &commandBackend{}
	var err error
	if b.copy, err = resolveArgv(cfg.Copy); err != nil {
		return nil, err
	}
	if len(cfg.Paste) > 0 {
		if b.paste, err = resolveArgv(cfg.Paste); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func resolveArgv(argv []string) ([]string, error) {
	path, err := exec.LookPath(argv[0])
	if err != nil {
		return nil, &Error{Kind: KindUnavailable, Op: OpOpen, Detail: fmt.Sprintf("executable %q not found", argv[0]), Err: err}
	}
	out := append([]string{path}, argv[1:]...)
	return out, nil
}

func (b *commandBackend) Name() string { return "command" }

func (b *commandBackend) WriteText(ctx context.Context, text string) error {
	c := exec.CommandContext(ctx, b.copy[0], b.copy[1:]...)
	c.Stdin = strings.NewReader(text)
	var stderr bytes.Buffer
	c.Stderr = &stderr
	return commandError(ctx, c.Run(), &stderr)
}

func (b *commandBackend) ReadText(ctx context.Context) (string, error) {
	if len(b.paste) == 0 {
		return "", &Error{Kind: KindUnavailable, Op: OpGet, Detail: "no paste command configured"}
	}
	c := exec.CommandContext(ctx, b.paste[0], b.paste[1:]...)
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr
	if err := commandError(ctx, c.Run(), &stderr); err != nil {
		return "", err
	}
	return stdout.String(), nil
}

// commandError folds the child's stderr into err so Classify can see it.
func commandError(ctx context.Context, err error, stderr *bytes.Buffer) error {
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if msg := strings.TrimSpace(stderr.String()); msg != "" {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("%s: %w", msg, err)
		}
	}
	return err
}
