// Package pipeline runs a conversion from a leveled family list to a GEDCOM document.
//
// The stages are pure functions over plain data: extract.ExtractWithReport,
// family.BuildTree, enrich.Merge and gedcom.Serialize. Run adds the file edges
// around them: reading the list and the enrichment table, writing the document,
// archiving it and writing the run manifest.
package pipeline

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/FocuswithJustin/famtree/core/cas"
	"github.com/FocuswithJustin/famtree/core/enrich"
	apperrors "github.com/FocuswithJustin/famtree/core/errors"
	"github.com/FocuswithJustin/famtree/core/extract"
	"github.com/FocuswithJustin/famtree/core/family"
	"github.com/FocuswithJustin/famtree/core/gedcom"
	"github.com/FocuswithJustin/famtree/internal/logging"
)

// now is replaced in tests.
var now = time.Now

// headerDateLayout matches dates such as "9 June 2020".
const headerDateLayout = "2 January 2006"

// Options configures a Run.
type Options struct {
	// ListPath is the leveled list to convert.
	ListPath string

	// EnrichPath is the optional enrichment table; EnrichFormat is "csv", "sqlite",
	// or empty to decide by extension.
	EnrichPath   string
	EnrichFormat string

	// OutPath receives the document; "" or "-" writes to Stdout.
	OutPath string
	Stdout  io.Writer

	// ManifestPath, when set, receives a JSON summary of the run.
	ManifestPath string

	// ArchiveDir, when set, keeps a content-addressed copy of the document.
	ArchiveDir string

	// Compress writes the document xz-compressed. Output paths ending in ".xz"
	// are always compressed.
	Compress bool

	// InputEncoding is the IANA charset of the list; empty means UTF-8.
	InputEncoding string

	// StampDate dates the header with the day of the run when Header.Date is
	// empty. Otherwise the fixed DefaultHeader date is used.
	StampDate bool

	Header     gedcom.Header
	Columns    enrich.Columns
	SkipHeader bool
}

// Result summarizes a finished Run.
type Result struct {
	RunID string

	Entries int
	Skipped []int
	Dropped []string
	Persons int
	Depth   int

	Warnings []error
	Merge    *enrich.Report

	Individuals int
	Families    int

	Hashes    cas.HashResult
	Size      int
	Archived  bool
	OutPath   string
	StartedAt time.Time
	Duration  time.Duration
}

// Run performs a full conversion. Structural errors in the list abort the run;
// unparsed lines, validation problems and enrichment misses are logged and the
// document is still written.
func Run(ctx context.Context, opts Options) (*Result, error) {
	ctx = logging.StartRun(ctx)
	res := &Result{
		RunID:     logging.GetRunID(ctx),
		OutPath:   opts.OutPath,
		StartedAt: now(),
	}
	logging.InfoContext(ctx, "run_start", "list", opts.ListPath, "enrich", opts.EnrichPath)

	done := logging.Stage(ctx, "read")
	text, err := ReadList(opts.ListPath, opts.InputEncoding)
	if err != nil {
		return nil, err
	}
	done("bytes", len(text))

	done = logging.Stage(ctx, "extract")
	entries, skipped := extract.ExtractWithReport(text)
	for _, line := range skipped {
		logging.SkippedLine(ctx, line)
	}
	res.Entries, res.Skipped = len(entries), skipped
	done("entries", len(entries), "skipped", len(skipped))

	done = logging.Stage(ctx, "build")
	root, rest, err := family.BuildTreeWithReport(entries)
	if err != nil {
		var se *apperrors.StructureError
		if apperrors.As(err, &se) {
			logging.ErrorContext(ctx, "build_failed", "id", se.ID, "level", se.Level, "parent_level", se.ParentLevel, "error", err)
		} else {
			logging.ErrorContext(ctx, "build_failed", "error", err)
		}
		return nil, apperrors.Wrapf(err, "failed to build tree from %s", opts.ListPath)
	}
	res.Persons, res.Depth = root.Count(), root.Depth()
	for _, e := range rest {
		res.Dropped = append(res.Dropped, e.ID)
	}
	res.Warnings = append(family.RemainderWarnings(rest), family.Validate(root)...)
	for _, w := range res.Warnings {
		logging.ValidationWarning(ctx, w)
	}
	done("persons", res.Persons, "depth", res.Depth, "dropped", len(res.Dropped))

	if opts.EnrichPath != "" {
		done = logging.Stage(ctx, "enrich")
		table, err := LoadTable(ctx, opts.EnrichPath, opts.EnrichFormat, opts.Columns, opts.SkipHeader)
		if err != nil {
			return nil, err
		}
		res.Merge = enrich.Merge(root, table)
		for _, id := range res.Merge.Missing {
			logging.EnrichmentMiss(ctx, id)
		}
		done("rows", table.Len(), "matched", res.Merge.Matched, "missing", len(res.Merge.Missing))
	}

	done = logging.Stage(ctx, "serialize")
	doc := gedcom.Serialize(root, headerFor(opts.Header, opts.StampDate))
	data := doc.Bytes()
	res.Individuals, res.Families = len(doc.Individuals), len(doc.Families)
	res.Hashes, res.Size = cas.Sum(data), len(data)
	done("individuals", res.Individuals, "families", res.Families)

	done = logging.Stage(ctx, "write")
	if err := writeDocument(opts, data); err != nil {
		return nil, err
	}
	if opts.ArchiveDir != "" {
		store, err := cas.NewStore(opts.ArchiveDir)
		if err != nil {
			return nil, err
		}
		if _, err := store.Put(data); err != nil {
			return nil, apperrors.Wrap(err, "failed to archive document")
		}
		res.Archived = true
	}
	res.Duration = now().Sub(res.StartedAt)
	if opts.ManifestPath != "" {
		if err := WriteManifest(opts.ManifestPath, NewManifest(opts, res)); err != nil {
			return nil, err
		}
	}
	done("size", res.Size, "sha256", res.Hashes.SHA256)

	return res, nil
}

// Convert runs the pure stages on an in-memory list. A nil table skips enrichment and
// entries after the progenitor's subtree are dropped.
func Convert(text string, table *enrich.Table, header gedcom.Header) (*gedcom.Document, error) {
	entries := extract.Extract(text)
	root, err := family.BuildTree(entries)
	if err != nil {
		return nil, err
	}
	if table != nil {
		enrich.Merge(root, table)
	}
	return gedcom.Serialize(root, header), nil
}

// headerFor fills defaults. A header without a date gets today's date when stamp
// is set and the fixed default date otherwise, so equal inputs render equal bytes.
func headerFor(h gedcom.Header, stamp bool) gedcom.Header {
	h = h.WithDefaults()
	if h.Date == "" {
		if stamp {
			h.Date = now().Format(headerDateLayout)
		} else {
			h.Date = gedcom.DefaultHeader.Date
		}
	}
	return h
}

// stdout returns the writer for "-" output.
func (o Options) stdout() io.Writer {
	if o.Stdout != nil {
		return o.Stdout
	}
	return os.Stdout
}

// IsStructural reports whether err came from a malformed list.
func IsStructural(err error) bool {
	return apperrors.Is(err, family.ErrNoEntries) || apperrors.Is(err, apperrors.ErrStructure)
}
