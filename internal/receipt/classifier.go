// Package receipt turns a receipt or bill image into an unvalidated
// transaction draft using an external vision model.
package receipt

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"pocketbook/internal/core"
)

var (
	ErrNotConfigured  = errors.New("receipt classifier is not configured")
	ErrClassification = errors.New("receipt classification failed")
	ErrEmptyImage     = errors.New("empty image")
)

// Image is raw image bytes plus their media type.
type Image struct {
	Data     []byte
	MIMEType string
}

// Classifier extracts a draft from an image. Implementations make one
// attempt and do not retry.
type Classifier interface {
	Classify(ctx context.Context, img Image) (core.Draft, error)
}

// DetectMIME sniffs the media type when the caller did not send one.
// Non-image types fall back to image/jpeg.
func DetectMIME(data []byte, declared string) string {
	declared = strings.TrimSpace(strings.ToLower(declared))
	if i := strings.IndexByte(declared, ';'); i >= 0 {
		declared = strings.TrimSpace(declared[:i])
	}
	if strings.HasPrefix(declared, "image/") {
		return declared
	}
	if sniffed := http.DetectContentType(data); strings.HasPrefix(sniffed, "image/") {
		return sniffed
	}
	return "image/jpeg"
}
