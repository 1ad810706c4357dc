package enrich

import "github.com/FocuswithJustin/famtree/core/family"

// Report summarizes a merge.
type Report struct {
	// Visited counts every person seen, spouses included.
	Visited int `json:"visited"`

	// Matched counts persons that had a row in the table.
	Matched int `json:"matched"`

	// Missing lists the ids without a row, in visit order.
	Missing []string `json:"missing,omitempty"`
}

// Merge applies table rows to every matching person below root. Persons without a row
// keep their parsed fields and are listed in the report; a miss never stops the merge.
// Merging the same table twice leaves the tree as merging it once.
func Merge(root *family.Person, table *Table) *Report {
	report := &Report{}
	family.Walk(root, func(p *family.Person) bool {
		report.Visited++
		r, ok := table.Lookup(p.ID)
		if !ok {
			report.Missing = append(report.Missing, p.ID)
			return true
		}
		report.Matched++
		Apply(p, r)
		return true
	})
	return report
}

// Apply copies every non-empty field of r onto p.
func Apply(p *family.Person, r Record) {
	if r.Gender != "" {
		p.SetGender(r.Gender)
	}
	if r.BirthDate != "" {
		p.SetBirthDate(r.BirthDate)
	}
	if place := r.BirthPlace.Place(); place != nil {
		p.SetBirthPlace(place)
	}
	if r.DeathDate != "" {
		p.SetDeathDate(r.DeathDate)
	}
	if place := r.DeathPlace.Place(); place != nil {
		p.SetDeathPlace(place)
	}
	if place := r.BurialPlace.Place(); place != nil {
		p.SetBurialPlace(place)
	}
}
