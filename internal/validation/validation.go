// Package validation checks input files before the pipeline reads them: size limits
// and content sniffing by magic bytes.
package validation

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

// MaxFileSize is the largest input file accepted (256 MB).
const MaxFileSize = 256 << 20

// ErrFileTooLarge is returned for inputs above MaxFileSize.
var ErrFileTooLarge = errors.New("file too large")

// FileType is the kind of content found in an input file.
type FileType string

const (
	FileTypeSQLite  FileType = "sqlite"
	FileTypeXZ      FileType = "xz"
	FileTypeText    FileType = "text"
	FileTypeUnknown FileType = "unknown"
)

// magicBytes are the signatures checked at the start of a file.
var magicBytes = []struct {
	fileType FileType
	magic    []byte
}{
	{FileTypeXZ, []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}},
	{FileTypeSQLite, []byte("SQLite format 3\x00")},
}

// sniffSize is how much of a file DetectFileType looks at.
const sniffSize = 512

// DetectFileType classifies content by its leading bytes.
func DetectFileType(r io.Reader) (FileType, error) {
	buf := make([]byte, sniffSize)
	n, err := io.ReadFull(r, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return FileTypeUnknown, fmt.Errorf("failed to read file header: %w", err)
	}
	return detect(buf[:n]), nil
}

// SniffFile opens path and classifies its content.
func SniffFile(path string) (FileType, error) {
	f, err := os.Open(path)
	if err != nil {
		return FileTypeUnknown, err
	}
	defer f.Close()
	return DetectFileType(f)
}

// CheckSize fails when the file at path exceeds MaxFileSize.
func CheckSize(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.Size() > MaxFileSize {
		return fmt.Errorf("%w: %s is %d bytes, limit %d", ErrFileTooLarge, path, info.Size(), MaxFileSize)
	}
	return nil
}

func detect(buf []byte) FileType {
	for _, sig := range magicBytes {
		if bytes.HasPrefix(buf, sig.magic) {
			return sig.fileType
		}
	}
	if isLikelyText(buf) {
		return FileTypeText
	}
	return FileTypeUnknown
}

// isLikelyText reports whether buf looks like text in an ASCII-compatible charset.
// Bytes >= 0x80 are neutral so UTF-8 and single-byte legacy charsets both pass.
func isLikelyText(buf []byte) bool {
	if len(buf) == 0 {
		return false
	}
	if bytes.IndexByte(buf, 0) != -1 {
		return false
	}

	printable := 0
	control := 0
	for _, b := range buf {
		if b >= 0x20 && b <= 0x7e || b == '\t' || b == '\n' || b == '\r' {
			printable++
		} else if b < 0x20 {
			control++
		}
	}

	// more than 95% printable
	return printable > 0 && float64(printable)/float64(printable+control) > 0.95
}
