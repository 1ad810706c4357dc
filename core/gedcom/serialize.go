package gedcom

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/FocuswithJustin/famtree/core/family"
)

// GeoNoteBase prefixes the geo id in the NOTE line of a place map.
const GeoNoteBase = "https://www.wikidata.org/wiki/"

// Serialize converts the tree below root into a document. Individuals are emitted
// depth-first, each followed by their spouse and then by their children's subtrees;
// families follow in a second depth-first pass, one per person with a spouse or
// children. Missing fields are omitted. A nil root yields an empty document.
func Serialize(root *family.Person, header Header) *Document {
	doc := &Document{Header: header}
	if root == nil {
		return doc
	}
	doc.Individuals = individuals(nil, root, "")
	for _, p := range family.Descendants(root) {
		if p.HasFamily() {
			doc.Families = append(doc.Families, familyRecord(p))
		}
	}
	return doc
}

// individuals appends the records of p, p's spouse and p's descendants. parentFamily
// is the xref of the family p is a child in, empty for the progenitor.
func individuals(out []Record, p *family.Person, parentFamily string) []Record {
	r := individualRecord(p)
	if parentFamily != "" {
		r.add(1, "FAMC", pointer(parentFamily))
	}
	if !p.HasFamily() {
		return append(out, r)
	}

	fam := FamilyXRef(p.ID)
	r.add(1, "FAMS", pointer(fam))
	out = append(out, r)

	if p.Spouse != nil {
		sr := individualRecord(p.Spouse)
		sr.add(1, "FAMS", pointer(fam))
		out = append(out, sr)
	}
	for _, child := range p.Children {
		out = individuals(out, child, fam)
	}
	return out
}

func individualRecord(p *family.Person) Record {
	r := Record{{Level: 0, XRef: IndividualXRef(p.ID), Tag: "INDI"}}

	r.add(1, "NAME", nameValue(p.GivenName, p.Surname))
	if p.Surname != "" {
		r.add(2, "SURN", p.Surname)
	}
	if p.GivenName != "" {
		r.add(2, "GIVN", p.GivenName)
	}

	if sex := SexCode(p.Gender); sex != "" {
		r.add(1, "SEX", sex)
	}

	r = appendEvent(r, "BIRT", p.BirthDate, p.BirthPlace)
	r = appendEvent(r, "DEAT", p.DeathDate, p.DeathPlace)
	r = appendEvent(r, "BURI", "", p.BurialPlace)
	return r
}

func nameValue(given, surname string) string {
	if given == "" {
		return "/" + surname + "/"
	}
	return given + " /" + surname + "/"
}

// appendEvent adds an event with an optional date and place. Nothing is added when
// both are missing.
func appendEvent(r Record, tag, date string, place *family.Place) Record {
	if date == "" && place == nil {
		return r
	}
	r.add(1, tag, "")
	if date != "" {
		r.add(2, "DATE", date)
	}
	if place != nil {
		r.add(2, "PLAC", place.Name)
		if place.HasCoordinates() {
			r.add(3, "MAP", "")
			r.add(4, "LATI", place.Latitude)
			r.add(4, "LONG", place.Longitude)
			r.add(3, "NOTE", GeoNoteBase+place.GeoID)
		}
	}
	return r
}

func familyRecord(p *family.Person) Record {
	r := Record{{Level: 0, XRef: FamilyXRef(p.ID), Tag: "FAM"}}
	r.add(1, partnerTag(p), pointer(IndividualXRef(p.ID)))
	if p.Spouse != nil {
		r.add(1, partnerTag(p.Spouse), pointer(IndividualXRef(p.Spouse.ID)))
	}
	for _, child := range p.Children {
		r.add(1, "CHIL", pointer(IndividualXRef(child.ID)))
	}
	return r
}

// partnerTag is HUSB for a person whose sex code is M and WIFE otherwise.
func partnerTag(p *family.Person) string {
	if SexCode(p.Gender) == "M" {
		return "HUSB"
	}
	return "WIFE"
}

// SexCode returns the upper-cased first letter of gender, or "" when gender is empty.
func SexCode(gender string) string {
	r, _ := utf8.DecodeRuneInString(strings.TrimSpace(gender))
	if r == utf8.RuneError {
		return ""
	}
	return string(unicode.ToUpper(r))
}
