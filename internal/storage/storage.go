// Package storage keeps profile pictures in an S3-compatible bucket.
package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// ErrDisabled is returned when no bucket is configured.
var ErrDisabled = errors.New("image storage is not configured")

// ImageStore uploads an image under key, replacing any previous object, and
// returns the public URL.
type ImageStore interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
}

// Disabled is the ImageStore used when uploads are switched off.
type Disabled struct{}

func (Disabled) Upload(context.Context, string, io.Reader, int64, string) (string, error) {
	return "", ErrDisabled
}

// ProfileKey is the object key of a user's profile picture.
func ProfileKey(owner string) string {
	return "user_profiles/" + url.PathEscape(owner)
}

// DecodeDataURI parses a base64 `data:<mime>;base64,<payload>` URI, the form
// browsers send for inline image edits.
func DecodeDataURI(s string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return nil, "", errors.New("not a data URI")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", errors.New("malformed data URI")
	}
	mime, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return nil, "", errors.New("data URI must be base64 encoded")
	}
	if !strings.HasPrefix(mime, "image/") {
		return nil, "", fmt.Errorf("unsupported content type %q", mime)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("decode data URI: %w", err)
	}
	return data, mime, nil
}

// IsDataURI reports whether s looks like an inline data URI.
func IsDataURI(s string) bool {
	return strings.HasPrefix(s, "data:")
}
