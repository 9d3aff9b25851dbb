package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Tesseract runs the tesseract CLI, feeding the image on stdin and reading text from stdout.
type Tesseract struct {
	Path      string
	Languages string
}

// Recognize implements Engine.
func (t Tesseract) Recognize(ctx context.Context, img []byte) (string, error) {
	path := t.Path
	if path == "" {
		path = "tesseract"
	}
	args := []string{"stdin", "stdout"}
	if t.Languages != "" {
		args = append(args, "-l", t.Languages)
	}

	//nolint:gosec // binary path comes from configuration, not from the request
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdin = bytes.NewReader(img)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("tesseract: %w: %s", err, msg)
		}
		return "", fmt.Errorf("tesseract: %w", err)
	}
	return stdout.String(), nil
}

// Version runs `tesseract --version` and returns its first line.
func (t Tesseract) Version(ctx context.Context) (string, error) {
	path := t.Path
	if path == "" {
		path = "tesseract"
	}
	//nolint:gosec // binary path comes from configuration
	out, err := exec.CommandContext(ctx, path, "--version").CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("tesseract --version: %w", err)
	}
	first, _, _ := strings.Cut(string(out), "\n")
	return strings.TrimSpace(first), nil
}
