// Package upload stores design files received by the server and keeps a
// JSON index of them next to the files
package upload

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// MaxFileSize is the largest accepted upload
const MaxFileSize = 5 * 1024 * 1024

const indexFile = "index.json"

var (
	// ErrNoFile is returned when the request carried no file
	ErrNoFile = errors.New("no file uploaded")
	// ErrTooLarge is returned for files over MaxFileSize
	ErrTooLarge = errors.New("file too large")
	// ErrUnsupportedType is returned when either the extension or the sniffed
	// content type is not an allowed image type
	ErrUnsupportedType = errors.New("only image files are allowed")
	// ErrNotFound is returned for unknown file names
	ErrNotFound = errors.New("file not found")
)

// allowedTypes matches both extensions and MIME types
var allowedTypes = regexp.MustCompile(`jpeg|jpg|png|gif|svg`)

// Entry is the index record of one stored file
type Entry struct {
	Filename     string    `json:"filename"`
	OriginalName string    `json:"original_name"`
	ContentType  string    `json:"content_type"`
	Size         int64     `json:"size"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// Path is the public URL path of the stored file
func (e Entry) Path() string {
	return "/uploads/" + e.Filename
}

// Store manages uploaded files in a directory
type Store struct {
	dir  string
	data map[string]*Entry
	now  func() time.Time
	mu   sync.RWMutex
}

// New opens (creating if needed) an upload directory
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}

	s := &Store{
		dir:  dir,
		data: make(map[string]*Entry),
		now:  time.Now,
	}

	if err := s.load(); err != nil {
		// A missing index just means no uploads yet
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load upload index: %w", err)
		}
	}

	return s, nil
}

// Dir is the directory files are stored in
func (s *Store) Dir() string {
	return s.dir
}

// Save validates and stores a design. size is the declared size; the reader
// is still capped at MaxFileSize+1 bytes.
func (s *Store) Save(originalName string, size int64, r io.Reader) (*Entry, error) {
	if size > MaxFileSize {
		return nil, ErrTooLarge
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	if ext == "" || !allowedTypes.MatchString(ext) {
		return nil, ErrUnsupportedType
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) > MaxFileSize {
		return nil, ErrTooLarge
	}

	mtype := DetectType(data)
	if !allowedTypes.MatchString(mtype) {
		return nil, ErrUnsupportedType
	}

	now := s.now()
	entry := &Entry{
		Filename:     fmt.Sprintf("design-%d-%s%s", now.UnixMilli(), uuid.New().String(), ext),
		OriginalName: filepath.Base(originalName),
		ContentType:  mtype,
		Size:         int64(len(data)),
		UploadedAt:   now,
	}

	if err := os.WriteFile(filepath.Join(s.dir, entry.Filename), data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write upload: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[entry.Filename] = entry
	if err := s.save(); err != nil {
		// The file itself is stored; the index catches up on the next save
		log.Printf("⚠️  Failed to save upload index: %v", err)
	}

	entryCopy := *entry
	return &entryCopy, nil
}

// DetectType sniffs the MIME type of data, without parameters
func DetectType(data []byte) string {
	m := mimetype.Detect(data).String()
	if i := strings.IndexByte(m, ';'); i >= 0 {
		m = m[:i]
	}
	return m
}

// Get returns the index entry for filename
func (s *Store) Get(filename string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.data[filename]
	if !ok {
		return nil, ErrNotFound
	}
	entryCopy := *entry
	return &entryCopy, nil
}

// List returns all entries, newest first
func (s *Store) List() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Entry, 0, len(s.data))
	for _, e := range s.data {
		result = append(result, *e)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].UploadedAt.Equal(result[j].UploadedAt) {
			return result[i].Filename > result[j].Filename
		}
		return result[i].UploadedAt.After(result[j].UploadedAt)
	})
	return result
}

// Len is the number of stored files
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Path resolves filename to a file inside the store directory. Names that
// would escape the directory are rejected.
func (s *Store) Path(filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) || filename == indexFile ||
		strings.HasPrefix(filename, ".") {
		return "", ErrNotFound
	}

	p := filepath.Join(s.dir, filename)
	if _, err := os.Stat(p); err != nil {
		return "", ErrNotFound
	}
	return p, nil
}

// Read returns the stored bytes of filename
func (s *Store) Read(filename string) ([]byte, error) {
	p, err := s.Path(filename)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(p)
}

func (s *Store) load() error {
	data, err := os.ReadFile(filepath.Join(s.dir, indexFile))
	if err != nil {
		return err
	}

	return json.Unmarshal(data, &s.data)
}

func (s *Store) save() error {
	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(s.dir, indexFile), data, 0644)
}
