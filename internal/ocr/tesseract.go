package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// TesseractEngine shells out to the tesseract CLI, streaming the image on
// stdin and reading text from stdout.
type TesseractEngine struct {
	path string
}

func NewTesseractEngine(path string) *TesseractEngine {
	return &TesseractEngine{path: strings.TrimSpace(path)}
}

func (e *TesseractEngine) Name() string {
	return "tesseract"
}

func (e *TesseractEngine) Recognize(ctx context.Context, image []byte) (string, error) {
	if e.path == "" {
		return "", fmt.Errorf("tesseract is not installed")
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.path, "stdin", "stdout", "--oem", "3", "--psm", "6")
	cmd.Stdin = bytes.NewReader(image)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("tesseract: %w: %s", err, msg)
		}
		return "", fmt.Errorf("tesseract: %w", err)
	}
	return strings.TrimSpace(stdout.String()), nil
}
