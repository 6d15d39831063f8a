// Package blob stores uploaded documents (customer POs, vendor PO PDFs,
// proofs) on local disk, keyed by content hash.
package blob

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Key      string `json:"key"`
	Size     int64  `json:"size"`
	Checksum string `json:"checksum"`
}

// Store is a content-addressed file store. Identical content yields the same
// key, so duplicate uploads are free.
type Store struct {
	dir     string
	baseURL string
}

func NewStore(dir, baseURL string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob dir %s: %w", dir, err)
	}
	return &Store{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Put streams r to disk and returns the object's content-hash key. The write
// goes through a temp file and rename so a partial upload never becomes
// visible under its final key.
func (s *Store) Put(r io.Reader, ext string) (*ObjectInfo, error) {
	tmp, err := os.CreateTemp(s.dir, "upload-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	hasher := sha256.New()
	size, err := io.Copy(io.MultiWriter(tmp, hasher), r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	checksum := hex.EncodeToString(hasher.Sum(nil))
	key := checksum
	if ext != "" {
		key += "." + strings.TrimPrefix(ext, ".")
	}

	final := filepath.Join(s.dir, key)
	if err := os.Rename(tmp.Name(), final); err != nil {
		return nil, fmt.Errorf("finalize blob %s: %w", key, err)
	}
	return &ObjectInfo{Key: key, Size: size, Checksum: checksum}, nil
}

// Open returns a reader for the stored object.
func (s *Store) Open(key string) (io.ReadCloser, error) {
	clean := filepath.Base(key)
	f, err := os.Open(filepath.Join(s.dir, clean))
	if err != nil {
		return nil, fmt.Errorf("open blob %s: %w", clean, err)
	}
	return f, nil
}

// URL returns the public URL for a stored object.
func (s *Store) URL(key string) string {
	return s.baseURL + "/" + key
}
