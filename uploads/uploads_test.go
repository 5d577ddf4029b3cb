package uploads

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"
	"time"
)

func TestCleanName(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "photo.PNG", want: "photo.png"},
		{in: "../../etc/passwd.jpg", want: "passwd.jpg"},
		{in: `C:\Users\me\my cat!.jpeg`, want: "my_cat_.jpeg"},
		{in: ".gif", want: "image.gif"},
		{in: "script.svg", wantErr: true},
		{in: "noext", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := cleanName(tc.in)
			if tc.wantErr {
				if !errors.Is(err, ErrUnsupportedType) {
					t.Fatalf("expected ErrUnsupportedType, got %v", err)
				}
				return
			}
			if err != nil || got != tc.want {
				t.Fatalf("got %q (%v), want %q", got, err, tc.want)
			}
		})
	}
}

func TestLocal_Save(t *testing.T) {
	dir := t.TempDir()
	l := NewLocal(filepath.Join(dir, "uploads"), "/uploads")
	l.now = func() time.Time { return time.Unix(1700000000, 0) }

	url, err := l.Save(context.Background(), "task1", "cover.png", strings.NewReader("png-bytes"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != "/uploads/task1_1700000000_cover.png" {
		t.Fatalf("url: got %q", url)
	}

	data, err := os.ReadFile(filepath.Join(dir, "uploads", "task1_1700000000_cover.png"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Fatalf("content: got %q", data)
	}
}

func TestLocal_RejectsUnsupportedType(t *testing.T) {
	l := NewLocal(t.TempDir(), "/uploads")
	if _, err := l.Save(context.Background(), "k", "evil.html", strings.NewReader("<script>")); !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestLocal_RemovesPartialFile(t *testing.T) {
	dir := t.TempDir()
	l := NewLocal(dir, "/uploads")

	r := io.MultiReader(strings.NewReader("half an image"), iotest.ErrReader(errors.New("connection reset")))
	if _, err := l.Save(context.Background(), "task1", "cover.png", r); err == nil {
		t.Fatal("expected write error")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("partial file left behind: %v", entries)
	}
}

func TestLocal_FileServerHidesDirectories(t *testing.T) {
	dir := t.TempDir()
	l := NewLocal(dir, "/uploads")
	if _, err := l.Save(context.Background(), "task1", "cover.png", strings.NewReader("png-bytes")); err != nil {
		t.Fatal(err)
	}
	entries, _ := os.ReadDir(dir)
	srv := http.StripPrefix("/uploads/", l.FileServer())

	get := func(target string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		return rec
	}

	if rec := get("/uploads/" + entries[0].Name()); rec.Code != http.StatusOK || rec.Body.String() != "png-bytes" {
		t.Fatalf("file: got %d %q", rec.Code, rec.Body)
	}
	if rec := get("/uploads/"); rec.Code != http.StatusNotFound {
		t.Fatalf("directory listing: got %d", rec.Code)
	}
}
