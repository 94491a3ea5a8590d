package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ImageStore writes check-in images under Dir and hands back the file name,
// which is what the stay row stores.
type ImageStore struct {
	Dir string
}

func NewImageStore(dir string) *ImageStore {
	return &ImageStore{Dir: dir}
}

func (s *ImageStore) Save(fh *multipart.FileHeader, prefix string) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()
	return s.SaveReader(src, prefix, filepath.Ext(fh.Filename))
}

func (s *ImageStore) SaveReader(r io.Reader, prefix, ext string) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir uploads dir: %w", err)
	}

	ext = strings.ToLower(ext)
	switch ext {
	case ".png", ".jpg", ".jpeg", ".webp":
	default:
		ext = ".jpg"
	}
	name := fmt.Sprintf("%s_%s%s", prefix, strings.ReplaceAll(uuid.NewString(), "-", ""), ext)

	path := filepath.Join(s.Dir, name)
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}

	if _, err := io.Copy(dst, r); err != nil {
		dst.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("close file: %w", err)
	}
	return name, nil
}

// Path resolves a stored file name, rejecting anything that is not a bare name.
func (s *ImageStore) Path(name string) (string, error) {
	if name == "" || filepath.Base(name) != name || strings.HasPrefix(name, ".") {
		return "", validationErr("invalidFilename", "invalid file name %q", name)
	}
	p := filepath.Join(s.Dir, name)
	if _, err := os.Stat(p); err != nil {
		return "", notFoundErr("imageNotFound", "image %s not found", name)
	}
	return p, nil
}
