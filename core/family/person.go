package family

import (
	"strconv"
	"strings"
)

// AliasMarker is the id suffix that marks a spouse record aliasing a descendant.
const AliasMarker = "B"

// unknownBirthYear is the placeholder transcribers use for an unknown birth year.
const unknownBirthYear = "0000"

// Entry is a single leveled line of the source list.
type Entry struct {
	// Level is the depth marker. It is meaningless when Spouse is set.
	Level int `json:"level"`

	// Spouse is set for lines marked "+": the spouse of the preceding person.
	Spouse bool `json:"spouse,omitempty"`

	// Name is the full display name as transcribed.
	Name string `json:"name"`

	// BirthYear and DeathYear are kept as text so "0000" survives extraction.
	BirthYear string `json:"birth_year,omitempty"`
	DeathYear string `json:"death_year,omitempty"`

	// ID is the id number with all whitespace removed, possibly ending in "B".
	ID string `json:"id"`
}

// Marker returns the depth marker as it appears in the source list.
func (e Entry) Marker() string {
	if e.Spouse {
		return "+"
	}
	return strconv.Itoa(e.Level)
}

// Place is a named location with optional coordinates and an external geo id.
// Places are values; they are never modified after construction.
type Place struct {
	Name      string `json:"name"`
	Latitude  string `json:"latitude,omitempty"`
	Longitude string `json:"longitude,omitempty"`
	GeoID     string `json:"geo_id,omitempty"`
}

// NewPlace returns a place record.
func NewPlace(name, latitude, longitude, geoID string) *Place {
	return &Place{
		Name:      name,
		Latitude:  latitude,
		Longitude: longitude,
		GeoID:     geoID,
	}
}

// HasCoordinates reports whether latitude, longitude and geo id are all present.
func (p *Place) HasCoordinates() bool {
	return p != nil && p.Latitude != "" && p.Longitude != "" && p.GeoID != ""
}

// Person is a node of the family tree.
type Person struct {
	// Name is the full display name.
	Name string `json:"name"`

	// GivenName and Surname are derived from Name by splitName.
	GivenName string `json:"given_name,omitempty"`
	Surname   string `json:"surname"`

	// ID is the id number from the source list.
	ID string `json:"id"`

	// BirthDate and DeathDate are empty when unknown.
	BirthDate string `json:"birth_date,omitempty"`
	DeathDate string `json:"death_date,omitempty"`

	BirthPlace  *Place `json:"birth_place,omitempty"`
	DeathPlace  *Place `json:"death_place,omitempty"`
	BurialPlace *Place `json:"burial_place,omitempty"`

	// Gender is free-form; only its first letter reaches the output.
	Gender string `json:"gender,omitempty"`

	// Spouse is held only by the person who introduced them.
	Spouse *Person `json:"spouse,omitempty"`

	// Children are kept in source order.
	Children []*Person `json:"children,omitempty"`
}

// NewPerson creates a person from a leveled entry.
func NewPerson(e Entry) *Person {
	given, surname := splitName(e.Name)
	p := &Person{
		Name:      e.Name,
		GivenName: given,
		Surname:   surname,
		ID:        e.ID,
		DeathDate: e.DeathYear,
	}
	if e.BirthYear != unknownBirthYear {
		p.BirthDate = e.BirthYear
	}
	return p
}

// splitName derives given name and surname. The surname is the last token, or the
// last two tokens when the last one carries a parenthetical such as "(Kohn)".
func splitName(name string) (given, surname string) {
	tokens := strings.Fields(name)
	switch {
	case len(tokens) == 0:
		return "", ""
	case strings.Contains(tokens[len(tokens)-1], "(") && len(tokens) >= 2:
		return strings.Join(tokens[:len(tokens)-2], " "), strings.Join(tokens[len(tokens)-2:], " ")
	default:
		return strings.Join(tokens[:len(tokens)-1], " "), tokens[len(tokens)-1]
	}
}

// IsAlias reports whether the id carries the spouse alias marker.
func (p *Person) IsAlias() bool {
	return strings.HasSuffix(p.ID, AliasMarker)
}

// BaseID returns the id with the alias marker stripped.
func (p *Person) BaseID() string {
	return strings.TrimSuffix(p.ID, AliasMarker)
}

// AddSpouse links spouse to p. The link is not mirrored on spouse.
func (p *Person) AddSpouse(spouse *Person) {
	p.Spouse = spouse
}

// AddChild appends a child in source order.
func (p *Person) AddChild(child *Person) {
	p.Children = append(p.Children, child)
}

// HasFamily reports whether p anchors a family unit.
func (p *Person) HasFamily() bool {
	return p.Spouse != nil || len(p.Children) > 0
}

func (p *Person) SetGender(gender string) {
	p.Gender = gender
}

func (p *Person) SetBirthDate(date string) {
	p.BirthDate = date
}

func (p *Person) SetDeathDate(date string) {
	p.DeathDate = date
}

func (p *Person) SetBirthPlace(place *Place) {
	p.BirthPlace = place
}

func (p *Person) SetDeathPlace(place *Place) {
	p.DeathPlace = place
}

func (p *Person) SetBurialPlace(place *Place) {
	p.BurialPlace = place
}

// Depth returns the number of parent-to-child edges on the longest path below p.
func (p *Person) Depth() int {
	depth := 0
	for _, child := range p.Children {
		if d := child.Depth() + 1; d > depth {
			depth = d
		}
	}
	return depth
}

// Count returns the number of persons below and including p, spouses included.
func (p *Person) Count() int {
	n := 0
	Walk(p, func(*Person) bool {
		n++
		return true
	})
	return n
}
