package pipeline

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/ianaindex"

	"github.com/FocuswithJustin/famtree/core/enrich"
	apperrors "github.com/FocuswithJustin/famtree/core/errors"
	"github.com/FocuswithJustin/famtree/core/sqlite"
	"github.com/FocuswithJustin/famtree/internal/validation"
)

// ReadList reads the leveled list at path, decoding it from the named IANA
// charset when one is given. An xz-compressed list is decompressed first.
func ReadList(path, encoding string) (string, error) {
	if err := validation.CheckSize(path); err != nil {
		if errors.Is(err, validation.ErrFileTooLarge) {
			return "", apperrors.NewValidation("list", err.Error())
		}
		return "", apperrors.NewIO("open", path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", apperrors.NewIO("open", path, err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	var r io.Reader = br
	head, _ := br.Peek(sniffSize)
	if ft, _ := validation.DetectFileType(bytes.NewReader(head)); ft == validation.FileTypeXZ {
		zr, err := xzNewReader(br)
		if err != nil {
			return "", apperrors.NewIO("decompress", path, err)
		}
		r = zr
	}

	if encoding != "" {
		enc, err := ianaindex.IANA.Encoding(encoding)
		if err != nil {
			return "", apperrors.NewValidation("encoding", fmt.Sprintf("unknown charset %q", encoding))
		}
		if enc == nil {
			return "", apperrors.NewUnsupported("charset "+encoding, "no decoder available")
		}
		r = enc.NewDecoder().Reader(r)
	}

	data, err := io.ReadAll(io.LimitReader(r, validation.MaxFileSize+1))
	if err != nil {
		return "", apperrors.NewIO("read", path, err)
	}
	if len(data) > validation.MaxFileSize {
		return "", apperrors.NewValidation("list", fmt.Sprintf("%s expands beyond %d bytes", path, validation.MaxFileSize))
	}
	return string(data), nil
}

// sniffSize is enough to recognize every signature validation knows.
const sniffSize = 512

// sqliteExtensions are the file extensions treated as SQLite enrichment tables.
var sqliteExtensions = map[string]bool{
	".db":      true,
	".sqlite":  true,
	".sqlite3": true,
}

// ResolveFormat returns format if set. Otherwise a file starting with the SQLite
// header is "sqlite" and anything else is decided by DetectFormat.
func ResolveFormat(path, format string) string {
	if format != "" {
		return format
	}
	if ft, err := validation.SniffFile(path); err == nil && ft == validation.FileTypeSQLite {
		return "sqlite"
	}
	return DetectFormat(path, "")
}

// DetectFormat returns format if set, otherwise "sqlite" or "csv" by extension.
func DetectFormat(path, format string) string {
	if format != "" {
		return format
	}
	if sqliteExtensions[strings.ToLower(filepath.Ext(path))] {
		return "sqlite"
	}
	return "csv"
}

// LoadTable reads an enrichment table from a CSV file or a SQLite database.
func LoadTable(ctx context.Context, path, format string, cols enrich.Columns, skipHeader bool) (*enrich.Table, error) {
	switch ResolveFormat(path, format) {
	case "csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, apperrors.NewIO("open", path, err)
		}
		defer f.Close()

		table, err := enrich.ReadCSV(f, cols, skipHeader)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		return table, nil

	case "sqlite":
		if _, err := os.Stat(path); err != nil {
			return nil, apperrors.NewIO("open", path, err)
		}
		db, err := sqlite.OpenReadOnly(path)
		if err != nil {
			return nil, apperrors.NewIO("open", path, err)
		}
		defer db.Close()

		table, err := enrich.LoadSQLite(ctx, db)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		return table, nil

	default:
		return nil, apperrors.NewUnsupported("enrichment format "+format, "expected csv or sqlite")
	}
}
