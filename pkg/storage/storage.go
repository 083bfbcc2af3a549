// pkg/storage/storage.go
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

const (
	AttachmentDir = "todo_attachments"
	AvatarDir     = "avatars"

	maxNameLength = 100
)

var (
	ErrInvalidPath = errors.New("invalid storage path")
	ErrEmptyFile   = errors.New("empty file")
)

// Storage keeps uploaded media under a root directory. Stored paths are
// relative to that root and always use forward slashes.
type Storage struct {
	fs  afero.Fs
	now func() time.Time
}

// New wraps an afero filesystem whose root is the media root.
func New(fs afero.Fs) *Storage {
	return &Storage{fs: fs, now: time.Now}
}

// NewLocal stores media on disk below root.
func NewLocal(root string) *Storage {
	return New(afero.NewBasePathFs(afero.NewOsFs(), root))
}

// SaveAttachment writes r to todo_attachments/YYYY/MM/DD/<uuid>-<name> and
// returns the stored path and the number of bytes written.
func (s *Storage) SaveAttachment(r io.Reader, originalName string) (string, int64, error) {
	now := s.now().UTC()
	name := fmt.Sprintf("%s-%s", uuid.NewString(), CleanName(originalName))
	p := path.Join(AttachmentDir, now.Format("2006"), now.Format("01"), now.Format("02"), name)

	n, err := s.write(p, r)
	if err != nil {
		return "", 0, err
	}
	return p, n, nil
}

// SaveAvatar writes r to avatars/<uuid><ext>, keeping the original extension.
// The extension is read from the raw name so non-ASCII base names keep it.
func (s *Storage) SaveAvatar(r io.Reader, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if ext != "" && CleanName(ext[1:]) != ext[1:] {
		ext = ""
	}
	p := path.Join(AvatarDir, uuid.NewString()+ext)
	if _, err := s.write(p, r); err != nil {
		return "", err
	}
	return p, nil
}

func (s *Storage) write(p string, r io.Reader) (int64, error) {
	if err := s.fs.MkdirAll(path.Dir(p), 0o755); err != nil {
		return 0, fmt.Errorf("create directory: %w", err)
	}

	f, err := s.fs.OpenFile(p, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, fmt.Errorf("create file: %w", err)
	}

	n, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err == nil && n == 0 {
		err = ErrEmptyFile
	}
	if err != nil {
		_ = s.fs.Remove(p)
		return 0, fmt.Errorf("write file: %w", err)
	}
	return n, nil
}

// Open returns the stored file for reading.
func (s *Storage) Open(p string) (afero.File, error) {
	clean, err := validPath(p)
	if err != nil {
		return nil, err
	}
	return s.fs.Open(clean)
}

// Remove deletes a stored file. A file that is already gone is not an error.
func (s *Storage) Remove(p string) error {
	clean, err := validPath(p)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(clean); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", clean, err)
	}
	return nil
}

func validPath(p string) (string, error) {
	if p == "" || strings.Contains(p, "\\") || path.IsAbs(p) {
		return "", ErrInvalidPath
	}
	clean := path.Clean(p)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", ErrInvalidPath
	}
	return clean, nil
}

// CleanName reduces a client-supplied file name to a safe base name.
func CleanName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}

	cleaned := strings.TrimLeft(b.String(), ".")
	if cleaned == "" {
		return "file"
	}
	if len(cleaned) > maxNameLength {
		ext := filepath.Ext(cleaned)
		if len(ext) > 10 {
			ext = ""
		}
		cleaned = cleaned[:maxNameLength-len(ext)] + ext
	}
	return cleaned
}
