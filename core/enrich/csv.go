package enrich

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"

	apperrors "github.com/FocuswithJustin/famtree/core/errors"
)

// PlaceColumns gives the positions of the four place fields in a row.
type PlaceColumns struct {
	Name      int `yaml:"name" json:"name"`
	Latitude  int `yaml:"latitude" json:"latitude"`
	Longitude int `yaml:"longitude" json:"longitude"`
	GeoID     int `yaml:"geo_id" json:"geo_id"`
}

// Columns gives the zero-based position of each recognized field in a CSV row.
// A negative position means the column is not present.
type Columns struct {
	ID          int          `yaml:"id" json:"id"`
	Gender      int          `yaml:"gender" json:"gender"`
	BirthDate   int          `yaml:"birth_date" json:"birth_date"`
	BirthPlace  PlaceColumns `yaml:"birth_place" json:"birth_place"`
	DeathDate   int          `yaml:"death_date" json:"death_date"`
	DeathPlace  PlaceColumns `yaml:"death_place" json:"death_place"`
	BurialPlace PlaceColumns `yaml:"burial_place" json:"burial_place"`
}

// DefaultColumns is the layout of the OpenRefine export the tables are curated in.
var DefaultColumns = Columns{
	ID:          0,
	Gender:      4,
	BirthDate:   5,
	BirthPlace:  PlaceColumns{Name: 7, Latitude: 8, Longitude: 9, GeoID: 10},
	DeathDate:   11,
	DeathPlace:  PlaceColumns{Name: 13, Latitude: 14, Longitude: 15, GeoID: 16},
	BurialPlace: PlaceColumns{Name: 18, Latitude: 19, Longitude: 20, GeoID: 21},
}

// Validate checks that the id column is present.
func (c Columns) Validate() error {
	if c.ID < 0 {
		return apperrors.NewValidation("columns.id", "id column is required")
	}
	return nil
}

// ReadCSV reads an enrichment table. Rows shorter than the layout yield empty fields
// and blank lines are ignored. With skipHeader the first row is dropped.
func ReadCSV(r io.Reader, cols Columns, skipHeader bool) (*Table, error) {
	if err := cols.Validate(); err != nil {
		return nil, err
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	table := NewTable(nil)
	first := true
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &apperrors.ParseError{
				Format:  "CSV",
				Message: "invalid row",
				Err:     err,
			}
		}
		if first && skipHeader {
			first = false
			continue
		}
		first = false

		rec := cols.record(row)
		if rec.ID == "" {
			continue
		}
		table.Add(rec)
	}

	return table, nil
}

func (c Columns) record(row []string) Record {
	return Record{
		ID:          field(row, c.ID),
		Gender:      field(row, c.Gender),
		BirthDate:   field(row, c.BirthDate),
		BirthPlace:  c.BirthPlace.fields(row),
		DeathDate:   field(row, c.DeathDate),
		DeathPlace:  c.DeathPlace.fields(row),
		BurialPlace: c.BurialPlace.fields(row),
	}
}

func (c PlaceColumns) fields(row []string) PlaceFields {
	return PlaceFields{
		Name:      field(row, c.Name),
		Latitude:  field(row, c.Latitude),
		Longitude: field(row, c.Longitude),
		GeoID:     field(row, c.GeoID),
	}
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
