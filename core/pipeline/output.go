package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ulikunitz/xz"

	"github.com/FocuswithJustin/famtree/core/cas"
	apperrors "github.com/FocuswithJustin/famtree/core/errors"
)

var (
	xzNewWriter = xz.NewWriter
	xzNewReader = xz.NewReader
)

// compressed reports whether the document is written xz-compressed.
func (o Options) compressed() bool {
	return o.Compress || strings.HasSuffix(o.OutPath, ".xz")
}

// writeDocument writes data to the configured output.
func writeDocument(opts Options, data []byte) error {
	if opts.OutPath == "" || opts.OutPath == "-" {
		return encode(opts.stdout(), data, opts.compressed())
	}

	f, err := os.Create(opts.OutPath)
	if err != nil {
		return apperrors.NewIO("create", opts.OutPath, err)
	}
	if err := encode(f, data, opts.compressed()); err != nil {
		f.Close()
		return apperrors.NewIO("write", opts.OutPath, err)
	}
	if err := f.Close(); err != nil {
		return apperrors.NewIO("close", opts.OutPath, err)
	}
	return nil
}

func encode(w io.Writer, data []byte, compress bool) error {
	if !compress {
		_, err := w.Write(data)
		return err
	}

	zw, err := xzNewWriter(w)
	if err != nil {
		return fmt.Errorf("failed to create xz writer: %w", err)
	}
	if _, err := zw.Write(data); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

// Manifest is the JSON record of a run.
type Manifest struct {
	RunID     string    `json:"run_id"`
	StartedAt time.Time `json:"started_at"`
	Duration  string    `json:"duration"`

	Inputs  ManifestInputs `json:"inputs"`
	Output  ManifestOutput `json:"output"`
	Counts  ManifestCounts `json:"counts"`
	Missing []string       `json:"missing,omitempty"`
	Skipped []int          `json:"skipped_lines,omitempty"`
	Dropped []string       `json:"dropped_entries,omitempty"`
	Issues  []string       `json:"validation_warnings,omitempty"`
}

// ManifestInputs names the files a run read.
type ManifestInputs struct {
	List         string `json:"list"`
	Encoding     string `json:"encoding,omitempty"`
	Enrichment   string `json:"enrichment,omitempty"`
	EnrichFormat string `json:"enrichment_format,omitempty"`
}

// ManifestOutput describes the rendered document. Hashes and size are of the
// uncompressed document.
type ManifestOutput struct {
	Path       string         `json:"path,omitempty"`
	Compressed bool           `json:"compressed"`
	Archived   bool           `json:"archived,omitempty"`
	SizeBytes  int            `json:"size_bytes"`
	Hashes     cas.HashResult `json:"hashes"`
}

// ManifestCounts holds the per-stage counts.
type ManifestCounts struct {
	Entries     int `json:"entries"`
	Persons     int `json:"persons"`
	Depth       int `json:"depth"`
	Matched     int `json:"matched"`
	Individuals int `json:"individuals"`
	Families    int `json:"families"`
}

// NewManifest describes a finished run.
func NewManifest(opts Options, res *Result) *Manifest {
	m := &Manifest{
		RunID:     res.RunID,
		StartedAt: res.StartedAt.UTC(),
		Duration:  res.Duration.String(),
		Inputs: ManifestInputs{
			List:     opts.ListPath,
			Encoding: opts.InputEncoding,
		},
		Output: ManifestOutput{
			Path:       opts.OutPath,
			Compressed: opts.compressed(),
			Archived:   res.Archived,
			SizeBytes:  res.Size,
			Hashes:     res.Hashes,
		},
		Counts: ManifestCounts{
			Entries:     res.Entries,
			Persons:     res.Persons,
			Depth:       res.Depth,
			Individuals: res.Individuals,
			Families:    res.Families,
		},
		Skipped: res.Skipped,
		Dropped: res.Dropped,
	}
	if opts.EnrichPath != "" {
		m.Inputs.Enrichment = opts.EnrichPath
		m.Inputs.EnrichFormat = ResolveFormat(opts.EnrichPath, opts.EnrichFormat)
	}
	if res.Merge != nil {
		m.Counts.Matched = res.Merge.Matched
		m.Missing = res.Merge.Missing
	}
	for _, w := range res.Warnings {
		m.Issues = append(m.Issues, w.Error())
	}
	return m
}

// WriteManifest writes m as indented JSON.
func WriteManifest(path string, m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return apperrors.NewIO("write", path, err)
	}
	return nil
}
