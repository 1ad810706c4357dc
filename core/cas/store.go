package cas

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
)

// osRename is a variable to allow testing of rename errors.
var osRename = os.Rename

// tempFileClose is a function variable for closing temp files (for testing).
var tempFileClose = func(f io.Closer) error {
	return f.Close()
}

// ErrBlobNotFound is returned when no blob matches a digest.
var ErrBlobNotFound = errors.New("blob not found")

// ErrInvalidHash is returned for a digest that is not 64 lowercase hex characters.
var ErrInvalidHash = errors.New("invalid hash format")

var hexDigest = regexp.MustCompile(`^[a-f0-9]{64}$`)

// Store is an on-disk archive of blobs laid out as
//
//	<root>/blobs/sha256/<first2>/<sha256>
//	<root>/blobs/blake3/<first2>/<blake3>.json   {"sha256": "..."}
type Store struct {
	root string
}

// NewStore opens the archive at root, creating it if needed.
func NewStore(root string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(root, "blobs", "sha256"), 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}
	return &Store{root: root}, nil
}

// Put archives data and returns its digests. Storing the same bytes twice is a no-op.
func (s *Store) Put(data []byte) (*HashResult, error) {
	sum := Sum(data)

	if err := s.writeOnce(s.blobPath(sum.SHA256), data); err != nil {
		return nil, fmt.Errorf("failed to store blob: %w", err)
	}

	ptr, err := json.Marshal(blake3Pointer{SHA256: sum.SHA256})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal pointer: %w", err)
	}
	if err := s.writeOnce(s.pointerPath(sum.BLAKE3), ptr); err != nil {
		return nil, fmt.Errorf("failed to create BLAKE3 pointer: %w", err)
	}

	return &sum, nil
}

// Get returns the blob with the given SHA-256 digest.
func (s *Store) Get(sha256Hash string) ([]byte, error) {
	if !hexDigest.MatchString(sha256Hash) {
		return nil, ErrInvalidHash
	}
	data, err := os.ReadFile(s.blobPath(sha256Hash))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrBlobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read blob: %w", err)
	}
	return data, nil
}

// Exists reports whether a blob with the given SHA-256 digest is archived.
func (s *Store) Exists(sha256Hash string) bool {
	if !hexDigest.MatchString(sha256Hash) {
		return false
	}
	_, err := os.Stat(s.blobPath(sha256Hash))
	return err == nil
}

type blake3Pointer struct {
	SHA256 string `json:"sha256"`
}

// LookupBlake3 maps a BLAKE3 digest to the SHA-256 digest of the same blob.
func (s *Store) LookupBlake3(blake3Hash string) (string, error) {
	if !hexDigest.MatchString(blake3Hash) {
		return "", ErrInvalidHash
	}
	data, err := os.ReadFile(s.pointerPath(blake3Hash))
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrBlobNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read pointer: %w", err)
	}

	var ptr blake3Pointer
	if err := json.Unmarshal(data, &ptr); err != nil {
		return "", fmt.Errorf("failed to parse pointer: %w", err)
	}
	return ptr.SHA256, nil
}

// GetByBlake3 returns the blob with the given BLAKE3 digest.
func (s *Store) GetByBlake3(blake3Hash string) ([]byte, error) {
	sha256Hash, err := s.LookupBlake3(blake3Hash)
	if err != nil {
		return nil, err
	}
	return s.Get(sha256Hash)
}

func (s *Store) blobPath(sha256Hash string) string {
	return filepath.Join(s.root, "blobs", "sha256", sha256Hash[:2], sha256Hash)
}

func (s *Store) pointerPath(blake3Hash string) string {
	return filepath.Join(s.root, "blobs", "blake3", blake3Hash[:2], blake3Hash+".json")
}

// writeOnce writes data to path through a temp file and rename, unless path exists.
func (s *Store) writeOnce(path string, data []byte) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	f, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()

	if _, err := f.Write(data); err != nil {
		tempFileClose(f)
		os.Remove(tmp)
		return err
	}
	if err := tempFileClose(f); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := osRename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
