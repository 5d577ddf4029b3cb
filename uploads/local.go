package uploads

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"time"
)

// Local writes images under Dir and serves them below URLPrefix.
type Local struct {
	Dir       string
	URLPrefix string
	now       func() time.Time
}

func NewLocal(dir, urlPrefix string) *Local {
	return &Local{Dir: dir, URLPrefix: urlPrefix, now: time.Now}
}

func (l *Local) Save(_ context.Context, key, filename string, r io.Reader) (string, error) {
	name, err := cleanName(filename)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(l.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name = fmt.Sprintf("%s_%d_%s", key, l.now().Unix(), name)
	full := filepath.Join(l.Dir, name)
	dst, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}

	_, err = io.Copy(dst, io.LimitReader(r, MaxImageSize))
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(full)
		return "", fmt.Errorf("write file: %w", err)
	}
	return path.Join(l.URLPrefix, name), nil
}

// FileServer serves the stored images. Directories are reported as missing,
// so the upload directory cannot be listed.
func (l *Local) FileServer() http.Handler {
	return http.FileServer(filesOnly{http.Dir(l.Dir)})
}

type filesOnly struct {
	fs http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil || info.IsDir() {
		file.Close()
		return nil, os.ErrNotExist
	}
	return file, nil
}
