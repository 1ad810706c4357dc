// Package family provides the in-memory family tree reconstructed from a leveled record list.
//
// # Core Types
//
//   - Entry: one leveled line of the source list (depth marker plus person fields)
//   - Person: a node of the tree, holding an optional spouse and ordered children
//   - Place: an immutable place record attached to birth, death or burial events
//
// # Tree Shape
//
// The tree is singly rooted at the progenitor. Every descendant is reachable through
// Children exactly once. A spouse is reachable only through the Spouse field of the
// person who introduced them and is never listed as anyone's child. Spouse links are
// stored one way: the introduced spouse does not point back at the holder.
//
// # Spouse Aliases
//
// An id with a trailing "B" marks a spouse record for a person who also appears in the
// list as a descendant under the numeric id. Such nodes are aliases, not new identities.
//
// # Example
//
//	root, err := family.BuildTree([]family.Entry{
//	    {Level: 0, Name: "Root A", BirthYear: "1900", DeathYear: "1980", ID: "1"},
//	    {Level: 1, Name: "Child B", BirthYear: "1925", DeathYear: "1999", ID: "2"},
//	    {Spouse: true, Name: "Spouse D", BirthYear: "1928", DeathYear: "2000", ID: "4B"},
//	})
package family
