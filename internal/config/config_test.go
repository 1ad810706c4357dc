package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/FocuswithJustin/famtree/core/enrich"
	apperrors "github.com/FocuswithJustin/famtree/core/errors"
)

func TestDefault(t *testing.T) {
	c := Default()

	if c.Header.Source != "GS" || c.Header.Name != "Waldinger Family Tree" || c.Header.Charset != "UTF-8" {
		t.Errorf("Header = %+v", c.Header)
	}
	if c.Header.Date != "" {
		t.Errorf("Header.Date = %q, want empty", c.Header.Date)
	}
	if *c.Enrichment.Columns != enrich.DefaultColumns {
		t.Errorf("Columns = %+v, want DefaultColumns", *c.Enrichment.Columns)
	}
	if !*c.Enrichment.SkipHeader {
		t.Error("SkipHeader should default to true")
	}
	if c.Log.Level != "info" || c.Log.Format != "text" {
		t.Errorf("Log = %+v", c.Log)
	}
}

func TestParse(t *testing.T) {
	data := []byte(`
header:
  name: Weiss Family Tree
  date: 1 JAN 2024
enrichment:
  format: csv
  skip_header: false
  columns:
    id: 1
    gender: 0
    birth_date: -1
    birth_place: {name: 2, latitude: -1, longitude: -1, geo_id: -1}
    death_date: -1
    death_place: {name: -1, latitude: -1, longitude: -1, geo_id: -1}
    burial_place: {name: -1, latitude: -1, longitude: -1, geo_id: -1}
input:
  encoding: windows-1252
log:
  level: debug
`)

	c, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if c.Header.Name != "Weiss Family Tree" || c.Header.Date != "1 JAN 2024" {
		t.Errorf("Header = %+v", c.Header)
	}
	if c.Header.Source != "GS" {
		t.Errorf("Header.Source = %q, want default GS", c.Header.Source)
	}
	if c.Enrichment.Format != "csv" || *c.Enrichment.SkipHeader {
		t.Errorf("Enrichment = %+v", c.Enrichment)
	}
	if c.Enrichment.Columns.ID != 1 || c.Enrichment.Columns.BirthPlace.Name != 2 || c.Enrichment.Columns.DeathDate != -1 {
		t.Errorf("Columns = %+v", *c.Enrichment.Columns)
	}
	if c.Input.Encoding != "windows-1252" {
		t.Errorf("Input.Encoding = %q", c.Input.Encoding)
	}
	if c.Log.Level != "debug" || c.Log.Format != "text" {
		t.Errorf("Log = %+v", c.Log)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"invalid yaml", "header: [unterminated", apperrors.ErrInvalidInput},
		{"unknown format", "enrichment:\n  format: xlsx\n", apperrors.ErrUnsupported},
		{"no id column", "enrichment:\n  columns:\n    id: -1\n", apperrors.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if err == nil {
				t.Fatal("Parse succeeded, want error")
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Parse() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "famtree.yaml")
	if err := os.WriteFile(path, []byte("input:\n  encoding: latin1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if c.Input.Encoding != "latin1" {
		t.Errorf("Input.Encoding = %q", c.Input.Encoding)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadFile succeeded for a missing file")
	}
}

func TestMarshal_RoundTrip(t *testing.T) {
	data, err := Marshal(Default())
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(data), "name: Waldinger Family Tree") {
		t.Errorf("marshalled config missing header name:\n%s", data)
	}

	c, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse of marshalled config failed: %v", err)
	}
	if *c.Enrichment.Columns != enrich.DefaultColumns {
		t.Errorf("Columns after round trip = %+v", *c.Enrichment.Columns)
	}
}
