// Package enrich applies externally curated per-person fields to a family tree.
//
// The curated data arrives as a flat table, one row per id, typically exported from
// OpenRefine as CSV or kept in a SQLite database. Rows are matched to tree nodes by
// exact id, and only non-empty fields are applied.
package enrich

import "github.com/FocuswithJustin/famtree/core/family"

// PlaceFields is the flat form of a place in a table row.
type PlaceFields struct {
	Name      string `json:"name,omitempty"`
	Latitude  string `json:"latitude,omitempty"`
	Longitude string `json:"longitude,omitempty"`
	GeoID     string `json:"geo_id,omitempty"`
}

// IsZero reports whether the row names no place.
func (f PlaceFields) IsZero() bool {
	return f.Name == ""
}

// Place converts the fields to a tree place, or nil if no place is named.
func (f PlaceFields) Place() *family.Place {
	if f.IsZero() {
		return nil
	}
	return family.NewPlace(f.Name, f.Latitude, f.Longitude, f.GeoID)
}

// Record is one row of the enrichment table.
type Record struct {
	ID          string      `json:"id"`
	Gender      string      `json:"gender,omitempty"`
	BirthDate   string      `json:"birth_date,omitempty"`
	BirthPlace  PlaceFields `json:"birth_place,omitzero"`
	DeathDate   string      `json:"death_date,omitempty"`
	DeathPlace  PlaceFields `json:"death_place,omitzero"`
	BurialPlace PlaceFields `json:"burial_place,omitzero"`
}

// Table is an ordered set of records indexed by id. When an id repeats, the
// first row wins.
type Table struct {
	records []Record
	index   map[string]int
}

// NewTable builds a table from rows in order.
func NewTable(records []Record) *Table {
	t := &Table{
		records: make([]Record, 0, len(records)),
		index:   make(map[string]int, len(records)),
	}
	for _, r := range records {
		t.Add(r)
	}
	return t
}

// Add appends a row. A row whose id is already present is kept in order but is
// never returned by Lookup.
func (t *Table) Add(r Record) {
	if _, ok := t.index[r.ID]; !ok {
		t.index[r.ID] = len(t.records)
	}
	t.records = append(t.records, r)
}

// Lookup returns the first row with the given id.
func (t *Table) Lookup(id string) (Record, bool) {
	if t == nil {
		return Record{}, false
	}
	i, ok := t.index[id]
	if !ok {
		return Record{}, false
	}
	return t.records[i], true
}

// Len returns the number of rows, duplicates included.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}

// Records returns the rows in table order.
func (t *Table) Records() []Record {
	if t == nil {
		return nil
	}
	out := make([]Record, len(t.records))
	copy(out, t.records)
	return out
}
