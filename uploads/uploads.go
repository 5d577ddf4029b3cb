// Package uploads stores task images either on Cloudinary or on local disk.
package uploads

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"regexp"
	"strings"
)

const MaxImageSize = 10 << 20

var ErrUnsupportedType = errors.New("unsupported image type")

type Store interface {
	// Save stores the image under a name derived from key and returns the
	// URL clients should use to fetch it.
	Save(ctx context.Context, key, filename string, r io.Reader) (string, error)
}

var allowedExt = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// cleanName keeps a client-supplied filename safe to use as a path element
// and checks its extension.
func cleanName(filename string) (string, error) {
	base := filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	ext := strings.ToLower(filepath.Ext(base))
	if !allowedExt[ext] {
		return "", ErrUnsupportedType
	}
	name := unsafeChars.ReplaceAllString(strings.TrimSuffix(base, filepath.Ext(base)), "_")
	if name == "" || name == "." || name == ".." {
		name = "image"
	}
	return name + ext, nil
}
