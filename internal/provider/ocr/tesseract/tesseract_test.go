package tesseract

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// fakeBinary writes a shell script standing in for tesseract.
func fakeBinary(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported on windows")
	}
	path := filepath.Join(t.TempDir(), "tesseract")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatalf("writing fake binary: %v", err)
	}
	return path
}

func TestExtract(t *testing.T) {
	bin := fakeBinary(t, `cat >/dev/null
echo "$@" >&2
printf '  Bonjour le monde\n\n'
`)
	e := New(bin, "fra+eng+ara+spa", 0)

	text, err := e.Extract(context.Background(), []byte("\x89PNG fake"), "image/png")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if text != "Bonjour le monde" {
		t.Errorf("Extract = %q", text)
	}
}

func TestExtract_PassesLanguages(t *testing.T) {
	bin := fakeBinary(t, `cat >/dev/null
echo "$@"
`)
	e := New(bin, "fra+eng", 0)

	out, err := e.Extract(context.Background(), []byte("img"), "image/png")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if out != "stdin stdout -l fra+eng" {
		t.Errorf("args = %q", out)
	}
}

func TestExtract_Failure(t *testing.T) {
	bin := fakeBinary(t, `cat >/dev/null
echo "Error in pixReadStream" >&2
exit 1
`)
	e := New(bin, "", 0)

	_, err := e.Extract(context.Background(), []byte("img"), "image/png")
	if err == nil || !strings.Contains(err.Error(), "pixReadStream") {
		t.Errorf("err = %v, want stderr in message", err)
	}
}

func TestAvailable(t *testing.T) {
	if err := New(filepath.Join(t.TempDir(), "missing"), "", 0).Available(context.Background()); err == nil {
		t.Error("expected error for missing binary")
	}
	bin := fakeBinary(t, "exit 0\n")
	if err := New(bin, "", 0).Available(context.Background()); err != nil {
		t.Errorf("Available: %v", err)
	}
}
