// Package ocr defines the optical character recognition collaborator.
package ocr

import "context"

// Engine extracts the text printed in an image.
type Engine interface {
	// Name returns the backend identifier (e.g., "tesseract", "openai").
	Name() string

	// Extract returns all recognized text. An image without text yields "".
	Extract(ctx context.Context, image []byte, contentType string) (string, error)
}
