package gedcom

// Header carries the values of the fixed file header.
type Header struct {
	Source   string `yaml:"source" json:"source"`
	Name     string `yaml:"name" json:"name"`
	Version  string `yaml:"version" json:"version"`
	Date     string `yaml:"date" json:"date"`
	Language string `yaml:"language" json:"language"`
	Charset  string `yaml:"charset" json:"charset"`
}

// DefaultHeader is the header of the Waldinger family tree. WithDefaults does not
// copy its Date; callers choose between it and a date of their own.
var DefaultHeader = Header{
	Source:   "GS",
	Name:     "Waldinger Family Tree",
	Version:  "5.5.5",
	Date:     "9 June 2020",
	Language: "English",
	Charset:  "UTF-8",
}

// gedcomVersion is the version of the format itself, independent of Header.Version.
const gedcomVersion = "5.5.5"

// WithDefaults returns h with every empty field except Date taken from DefaultHeader.
func (h Header) WithDefaults() Header {
	if h.Source == "" {
		h.Source = DefaultHeader.Source
	}
	if h.Name == "" {
		h.Name = DefaultHeader.Name
	}
	if h.Version == "" {
		h.Version = DefaultHeader.Version
	}
	if h.Language == "" {
		h.Language = DefaultHeader.Language
	}
	if h.Charset == "" {
		h.Charset = DefaultHeader.Charset
	}
	return h
}

// Record returns the HEAD record. An empty Date omits the DATE line.
func (h Header) Record() Record {
	r := Record{{Level: 0, Tag: "HEAD"}}
	r.add(1, "GEDC", "")
	r.add(2, "VERS", gedcomVersion)
	r.add(2, "FORM", "LINEAGE-LINKED")
	r.add(1, "CHAR", h.Charset)
	r.add(1, "SOUR", h.Source)
	r.add(2, "NAME", h.Name)
	r.add(2, "VERS", h.Version)
	if h.Date != "" {
		r.add(1, "DATE", h.Date)
	}
	r.add(1, "LANG", h.Language)
	return r
}
