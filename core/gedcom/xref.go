package gedcom

import (
	"strings"

	"github.com/FocuswithJustin/famtree/core/family"
)

// AliasSuffix replaces the alias marker in cross-reference ids, so "12B" is
// referenced as "I1299999".
//
// Ids that already end in this suffix collide with aliases of a shorter id
// ("1299999" and "12B"); the source lists are not known to contain such ids.
const AliasSuffix = "99999"

// IndividualXRef returns the cross-reference id of the individual with the given id.
func IndividualXRef(id string) string {
	return "I" + normalizeID(id)
}

// FamilyXRef returns the cross-reference id of the family anchored on id.
func FamilyXRef(id string) string {
	return "F" + normalizeID(id)
}

func normalizeID(id string) string {
	if base, ok := strings.CutSuffix(id, family.AliasMarker); ok {
		return base + AliasSuffix
	}
	return id
}

// pointer formats an xref for use as a line value.
func pointer(xref string) string {
	return "@" + xref + "@"
}
