package images

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const filenameLength = 16

var filenameCharset = []rune("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789")

// Store persists uploaded product images on local disk.
type Store struct {
	dir string
}

// NewStore ensures the upload directory exists and returns the store.
func NewStore(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("image directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %q: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// SaveBase64 decodes a base64-encoded image and writes it under a random
// filename, returning the stored relative path.
func (s *Store) SaveBase64(encoded string) (string, error) {
	if strings.TrimSpace(encoded) == "" {
		return "", fmt.Errorf("image data is required")
	}

	// data URI prefixes are tolerated
	if idx := strings.Index(encoded, ","); idx != -1 && strings.HasPrefix(encoded, "data:") {
		encoded = encoded[idx+1:]
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decoding image data: %w", err)
	}

	name, err := randomFilename()
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, name+".png")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", fmt.Errorf("writing image %q: %w", path, err)
	}
	return path, nil
}

// Remove deletes a previously stored image, ignoring missing files.
func (s *Store) Remove(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing image %q: %w", path, err)
	}
	return nil
}

func randomFilename() (string, error) {
	buf := make([]byte, filenameLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating filename: %w", err)
	}
	result := make([]rune, filenameLength)
	for i, b := range buf {
		result[i] = filenameCharset[int(b)%len(filenameCharset)]
	}
	return string(result), nil
}
