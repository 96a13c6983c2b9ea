package upload

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func pngData(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestNew_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")

	s, err := New(dir)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("Expected empty store, got %d entries", s.Len())
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("Expected upload dir to exist: %v", err)
	}
}

func TestSave_PNG(t *testing.T) {
	s, _ := New(t.TempDir())
	s.now = func() time.Time { return time.UnixMilli(1700000000123) }
	data := pngData(t)

	entry, err := s.Save("logo.PNG", int64(len(data)), bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if !strings.HasPrefix(entry.Filename, "design-1700000000123-") || !strings.HasSuffix(entry.Filename, ".png") {
		t.Errorf("Unexpected filename %s", entry.Filename)
	}
	if entry.Path() != "/uploads/"+entry.Filename {
		t.Errorf("Unexpected path %s", entry.Path())
	}
	if entry.ContentType != "image/png" {
		t.Errorf("Expected image/png, got %s", entry.ContentType)
	}

	stored, err := s.Read(entry.Filename)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !bytes.Equal(stored, data) {
		t.Error("Stored bytes differ from upload")
	}
}

func TestSave_SVG(t *testing.T) {
	s, _ := New(t.TempDir())
	data := []byte(`<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10"><rect width="10" height="10"/></svg>`)

	entry, err := s.Save("shape.svg", int64(len(data)), bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !strings.Contains(entry.ContentType, "svg") {
		t.Errorf("Expected svg content type, got %s", entry.ContentType)
	}
}

func TestSave_Rejects(t *testing.T) {
	img := pngData(t)

	tests := []struct {
		name    string
		file    string
		size    int64
		data    []byte
		wantErr error
	}{
		{"text with image extension", "notes.png", 11, []byte("hello world"), ErrUnsupportedType},
		{"image with text extension", "logo.txt", int64(len(img)), img, ErrUnsupportedType},
		{"no extension", "logo", int64(len(img)), img, ErrUnsupportedType},
		{"declared too large", "big.png", MaxFileSize + 1, img, ErrTooLarge},
		{"actually too large", "big.png", 10, append(append([]byte{}, img...), make([]byte, MaxFileSize)...), ErrTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := New(t.TempDir())

			_, err := s.Save(tt.file, tt.size, bytes.NewReader(tt.data))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
			if s.Len() != 0 {
				t.Error("Expected nothing stored")
			}
		})
	}
}

func TestIndexPersists(t *testing.T) {
	dir := t.TempDir()
	s, _ := New(dir)
	data := pngData(t)

	entry, err := s.Save("logo.png", int64(len(data)), bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reopened, err := New(dir)
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}

	got, err := reopened.Get(entry.Filename)
	if err != nil {
		t.Fatalf("Expected entry after reopen: %v", err)
	}
	if got.OriginalName != "logo.png" {
		t.Errorf("Expected original name logo.png, got %s", got.OriginalName)
	}
}

func TestList_NewestFirst(t *testing.T) {
	s, _ := New(t.TempDir())
	data := pngData(t)

	s.now = func() time.Time { return time.UnixMilli(1000) }
	first, _ := s.Save("a.png", int64(len(data)), bytes.NewReader(data))
	s.now = func() time.Time { return time.UnixMilli(2000) }
	second, _ := s.Save("b.png", int64(len(data)), bytes.NewReader(data))

	list := s.List()
	if len(list) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(list))
	}
	if list[0].Filename != second.Filename || list[1].Filename != first.Filename {
		t.Errorf("Expected newest first, got %s, %s", list[0].Filename, list[1].Filename)
	}
}

func TestPath_RejectsTraversal(t *testing.T) {
	s, _ := New(t.TempDir())

	for _, name := range []string{"", "../etc/passwd", "a/b.png", ".hidden", indexFile, "missing.png"} {
		if _, err := s.Path(name); !errors.Is(err, ErrNotFound) {
			t.Errorf("Path(%q): expected ErrNotFound, got %v", name, err)
		}
	}
}
