// Command famtree converts a leveled family list into a GEDCOM file.
// It can also print the parsed entries or tree and maintain SQLite enrichment tables.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/famtree/core/cas"
	"github.com/FocuswithJustin/famtree/core/enrich"
	apperrors "github.com/FocuswithJustin/famtree/core/errors"
	"github.com/FocuswithJustin/famtree/core/extract"
	"github.com/FocuswithJustin/famtree/core/family"
	"github.com/FocuswithJustin/famtree/core/pipeline"
	"github.com/FocuswithJustin/famtree/core/sqlite"
	"github.com/FocuswithJustin/famtree/internal/config"
	"github.com/FocuswithJustin/famtree/internal/logging"
)

const version = "0.2.0"

// stdout receives command output; logs go to stderr.
var stdout io.Writer = os.Stdout

// CLI defines the command-line interface for famtree.
var CLI struct {
	// Global flags
	Config    string `name:"config" short:"c" help:"YAML configuration file" type:"existingfile"`
	LogLevel  string `name:"log-level" help:"Log level (debug, info, warn, error); overrides the config file"`
	LogFormat string `name:"log-format" help:"Log format (text, json); overrides the config file"`

	Convert    ConvertCmd    `cmd:"" help:"Convert a leveled list to GEDCOM"`
	Extract    ExtractCmd    `cmd:"" help:"Print the entries parsed from a leveled list"`
	Tree       TreeCmd       `cmd:"" help:"Print the family tree as JSON"`
	Enrich     EnrichGroup   `cmd:"" help:"Enrichment table operations"`
	Archive    ArchiveGroup  `cmd:"" help:"Read documents kept with convert --archive"`
	ShowConfig ShowConfigCmd `cmd:"" name:"show-config" help:"Print the effective configuration"`
	Version    VersionCmd    `cmd:"" help:"Print version information"`
}

// ListFlags are shared by the commands that read a leveled list.
type ListFlags struct {
	List     string `arg:"" help:"Leveled family list" type:"existingfile"`
	Encoding string `name:"encoding" help:"IANA charset of the list (default UTF-8)"`
}

// EnrichFlags are shared by the commands that merge an enrichment table.
type EnrichFlags struct {
	Enrich       string `name:"enrich" short:"e" help:"Enrichment table, CSV or SQLite" type:"existingfile"`
	EnrichFormat string `name:"enrich-format" help:"Enrichment table format (csv, sqlite); detected from the extension when empty"`
}

// ConvertCmd runs the full pipeline.
type ConvertCmd struct {
	ListFlags   `embed:""`
	EnrichFlags `embed:""`

	Out       string `name:"out" short:"o" help:"Output GEDCOM file, - for stdout" default:"-"`
	Manifest  string `name:"manifest" short:"m" help:"Write a JSON run manifest to this path" type:"path"`
	Archive   string `name:"archive" help:"Keep a content-addressed copy of the output in this directory" type:"path"`
	Compress  bool   `name:"compress" short:"z" help:"Compress the output with xz"`
	StampDate bool   `name:"stamp-date" help:"Date the header with today's date unless the config sets one"`
}

func (c *ConvertCmd) Run(cfg *config.Config) error {
	opts := pipeline.Options{
		ListPath:      c.List,
		EnrichPath:    c.Enrich,
		EnrichFormat:  firstNonEmpty(c.EnrichFormat, cfg.Enrichment.Format),
		OutPath:       c.Out,
		Stdout:        stdout,
		ManifestPath:  c.Manifest,
		ArchiveDir:    c.Archive,
		Compress:      c.Compress,
		InputEncoding: firstNonEmpty(c.Encoding, cfg.Input.Encoding),
		StampDate:     c.StampDate,
		Header:        cfg.Header,
		Columns:       *cfg.Enrichment.Columns,
		SkipHeader:    *cfg.Enrichment.SkipHeader,
	}

	res, err := pipeline.Run(context.Background(), opts)
	if err != nil {
		return err
	}

	logging.Info("converted",
		"run_id", res.RunID,
		"individuals", res.Individuals,
		"families", res.Families,
		"sha256", res.Hashes.SHA256,
	)
	return nil
}

// ExtractCmd prints the leveled entries.
type ExtractCmd struct {
	ListFlags `embed:""`

	JSON bool `name:"json" help:"Print entries as JSON"`
}

func (c *ExtractCmd) Run(cfg *config.Config) error {
	text, err := pipeline.ReadList(c.List, firstNonEmpty(c.Encoding, cfg.Input.Encoding))
	if err != nil {
		return err
	}

	entries, skipped := extract.ExtractWithReport(text)
	for _, line := range skipped {
		logging.Debug("skipped_line", "line", line)
	}

	if c.JSON {
		return printJSON(entries)
	}
	for _, e := range entries {
		fmt.Fprintln(stdout, extract.Format(e))
	}
	return nil
}

// TreeCmd prints the (optionally enriched) tree.
type TreeCmd struct {
	ListFlags   `embed:""`
	EnrichFlags `embed:""`
}

func (c *TreeCmd) Run(cfg *config.Config) error {
	text, err := pipeline.ReadList(c.List, firstNonEmpty(c.Encoding, cfg.Input.Encoding))
	if err != nil {
		return err
	}

	root, rest, err := family.BuildTreeWithReport(extract.Extract(text))
	if err != nil {
		return err
	}
	for _, w := range append(family.RemainderWarnings(rest), family.Validate(root)...) {
		logging.Warn("validation_warning", "error", w.Error())
	}

	if c.Enrich != "" {
		table, err := pipeline.LoadTable(context.Background(), c.Enrich,
			firstNonEmpty(c.EnrichFormat, cfg.Enrichment.Format),
			*cfg.Enrichment.Columns, *cfg.Enrichment.SkipHeader)
		if err != nil {
			return err
		}
		report := enrich.Merge(root, table)
		for _, id := range report.Missing {
			logging.Warn("enrichment_miss", "id", id)
		}
	}

	return printJSON(root)
}

// EnrichGroup contains enrichment table operations.
type EnrichGroup struct {
	Import EnrichImportCmd `cmd:"" help:"Load a CSV enrichment table into a SQLite database"`
	Export EnrichExportCmd `cmd:"" help:"Print a SQLite enrichment table as JSON"`
}

// EnrichImportCmd copies a CSV table into SQLite, replacing any previous rows.
type EnrichImportCmd struct {
	CSV string `arg:"" help:"CSV enrichment table" type:"existingfile"`
	DB  string `name:"db" required:"" help:"SQLite database to write" type:"path"`
}

func (c *EnrichImportCmd) Run(cfg *config.Config) error {
	table, err := pipeline.LoadTable(context.Background(), c.CSV, "csv",
		*cfg.Enrichment.Columns, *cfg.Enrichment.SkipHeader)
	if err != nil {
		return err
	}

	db, err := sqlite.Open(c.DB)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", c.DB, err)
	}
	defer db.Close()

	if err := enrich.StoreSQLite(context.Background(), db, table); err != nil {
		return err
	}

	logging.Info("imported", "rows", table.Len(), "db", c.DB, "driver", sqlite.DriverType())
	return nil
}

// EnrichExportCmd prints the rows of a SQLite enrichment table.
type EnrichExportCmd struct {
	DB string `arg:"" help:"SQLite database to read" type:"existingfile"`
}

func (c *EnrichExportCmd) Run() error {
	table, err := pipeline.LoadTable(context.Background(), c.DB, "sqlite", enrich.Columns{}, false)
	if err != nil {
		return err
	}
	return printJSON(table.Records())
}

// ArchiveGroup reads a content-addressed archive written by convert --archive.
type ArchiveGroup struct {
	Get ArchiveGetCmd `cmd:"" help:"Print an archived document"`
	Has ArchiveHasCmd `cmd:"" help:"Report whether a document is archived"`
}

// ArchiveGetCmd prints an archived document by SHA-256 or BLAKE3 digest.
type ArchiveGetCmd struct {
	Digest string `arg:"" help:"SHA-256 or BLAKE3 digest of the document"`
	Dir    string `name:"dir" short:"d" required:"" help:"Archive directory" type:"existingdir"`
	Out    string `name:"out" short:"o" help:"Write the document to this file instead of stdout" type:"path"`
}

func (c *ArchiveGetCmd) Run() error {
	store, err := cas.NewStore(c.Dir)
	if err != nil {
		return err
	}

	var data []byte
	if store.Exists(c.Digest) {
		data, err = store.Get(c.Digest)
	} else {
		data, err = store.GetByBlake3(c.Digest)
	}
	if errors.Is(err, cas.ErrBlobNotFound) {
		return apperrors.NewNotFound("archived document", c.Digest)
	}
	if err != nil {
		return err
	}

	if c.Out != "" {
		if err := os.WriteFile(c.Out, data, 0644); err != nil {
			return apperrors.NewIO("write", c.Out, err)
		}
		return nil
	}
	_, err = stdout.Write(data)
	return err
}

// ArchiveHasCmd reports which digest kind matched and the document's SHA-256.
type ArchiveHasCmd struct {
	Digest string `arg:"" help:"SHA-256 or BLAKE3 digest of the document"`
	Dir    string `name:"dir" short:"d" required:"" help:"Archive directory" type:"existingdir"`
}

// archiveEntry is the JSON output of archive has.
type archiveEntry struct {
	Digest string `json:"digest"`
	Kind   string `json:"kind"`
	SHA256 string `json:"sha256"`
}

func (c *ArchiveHasCmd) Run() error {
	store, err := cas.NewStore(c.Dir)
	if err != nil {
		return err
	}

	if store.Exists(c.Digest) {
		return printJSON(archiveEntry{Digest: c.Digest, Kind: "sha256", SHA256: c.Digest})
	}
	sha, err := store.LookupBlake3(c.Digest)
	if errors.Is(err, cas.ErrBlobNotFound) {
		return apperrors.NewNotFound("archived document", c.Digest)
	}
	if err != nil {
		return err
	}
	return printJSON(archiveEntry{Digest: c.Digest, Kind: "blake3", SHA256: sha})
}

// ShowConfigCmd prints the configuration after defaults are applied.
type ShowConfigCmd struct{}

func (c *ShowConfigCmd) Run(cfg *config.Config) error {
	data, err := config.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = stdout.Write(data)
	return err
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	info := sqlite.GetInfo()
	fmt.Fprintf(stdout, "famtree version %s (sqlite: %s, %s)\n", version, info.DriverType, info.Package)
	return nil
}

// Helper functions

func printJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// loadConfig reads the config file, or returns the defaults when path is empty.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.LoadFile(path)
}

// setupLogging applies the log settings, flags taking precedence over the file.
func setupLogging(cfg *config.Config, level, format string) {
	logging.InitLogger(
		logging.ParseLevel(firstNonEmpty(level, cfg.Log.Level)),
		logging.ParseFormat(firstNonEmpty(format, cfg.Log.Format)),
	)
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("famtree"),
		kong.Description("Convert leveled family lists into GEDCOM"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	cfg, err := loadConfig(CLI.Config)
	ctx.FatalIfErrorf(err)
	setupLogging(cfg, CLI.LogLevel, CLI.LogFormat)

	err = ctx.Run(cfg)
	ctx.FatalIfErrorf(err)
}
