// Package tesseract implements ocr.Engine by running the tesseract CLI.
//
// The image is streamed on stdin and the text read from stdout:
//
//	tesseract stdin stdout -l fra+eng+ara+spa
package tesseract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/nadzzz/polyglot/internal/provider/ocr"
)

// Engine shells out to tesseract for each image.
type Engine struct {
	binary    string
	languages string
	timeout   time.Duration
}

var _ ocr.Engine = (*Engine)(nil)

// New creates an Engine. languages is passed to -l; empty lets tesseract
// use its default (eng).
func New(binary, languages string, timeout time.Duration) *Engine {
	if binary == "" {
		binary = "tesseract"
	}
	return &Engine{binary: binary, languages: languages, timeout: timeout}
}

// Name returns the backend identifier.
func (e *Engine) Name() string { return "tesseract" }

// Available reports whether the binary can be found. Used as a readiness check.
func (e *Engine) Available(context.Context) error {
	if _, err := exec.LookPath(e.binary); err != nil {
		return fmt.Errorf("tesseract: %w", err)
	}
	return nil
}

// Extract implements ocr.Engine.
func (e *Engine) Extract(ctx context.Context, image []byte, _ string) (string, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	args := []string{"stdin", "stdout"}
	if e.languages != "" {
		args = append(args, "-l", e.languages)
	}
	cmd := exec.CommandContext(ctx, e.binary, args...)
	cmd.Stdin = bytes.NewReader(image)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("tesseract exited with %d: %s", exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return "", fmt.Errorf("running tesseract: %w", err)
	}

	text := strings.TrimSpace(stdout.String())
	slog.Debug("tesseract extraction complete", "image_bytes", len(image), "text_length", len(text))
	return text, nil
}
