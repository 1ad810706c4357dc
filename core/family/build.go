package family

import (
	"errors"
	"fmt"

	apperrors "github.com/FocuswithJustin/famtree/core/errors"
)

// ErrNoEntries is returned when there is no progenitor to build from.
var ErrNoEntries = errors.New("family: no entries to build a tree from")

// builder holds the cursor into the leveled sequence. Entries before pos are consumed.
type builder struct {
	entries []Entry
	pos     int
}

// BuildTree reconstructs the family tree from a leveled sequence. The first entry is the
// progenitor and its level is the base level; every other entry must sit exactly one level
// below the person it descends from, or be a "+" spouse line directly after that person.
//
// A level skip or a second spouse aborts the build with a *errors.StructureError.
// Entries after the progenitor's subtree are dropped; BuildTreeWithReport returns them.
func BuildTree(entries []Entry) (*Person, error) {
	root, _, err := BuildTreeWithReport(entries)
	return root, err
}

// BuildTreeWithReport is BuildTree that also returns the entries left over once the
// progenitor's subtree ends, such as a second top-level ancestor and its descendants.
func BuildTreeWithReport(entries []Entry) (*Person, []Entry, error) {
	if len(entries) == 0 {
		return nil, nil, ErrNoEntries
	}

	first := entries[0]
	if first.Spouse {
		return nil, nil, &apperrors.StructureError{ID: first.ID, Message: "progenitor cannot be a spouse entry"}
	}

	root := NewPerson(first)
	b := &builder{entries: entries, pos: 1}
	if err := b.descend(root, first.Level); err != nil {
		return nil, nil, err
	}

	return root, b.entries[b.pos:], nil
}

// RemainderWarnings describes each leftover entry from BuildTreeWithReport as a
// *errors.ValidationError, for logging alongside the results of Validate.
func RemainderWarnings(rest []Entry) []error {
	errs := make([]error, 0, len(rest))
	for _, e := range rest {
		errs = append(errs, &apperrors.ValidationError{
			Field:   "entries",
			Value:   e.ID,
			Message: fmt.Sprintf("entry %s (%s) outside the progenitor's tree, dropped", e.ID, e.Marker()),
		})
	}
	return errs
}

func (b *builder) peek() (Entry, bool) {
	if b.pos >= len(b.entries) {
		return Entry{}, false
	}
	return b.entries[b.pos], true
}

// descend consumes the spouse and the descendants of parent, which sits at level.
// It returns as soon as the next entry belongs to an ancestor's subtree, leaving it
// unconsumed for the caller.
func (b *builder) descend(parent *Person, level int) error {
	for e, ok := b.peek(); ok && e.Spouse; e, ok = b.peek() {
		if parent.Spouse != nil {
			return &apperrors.StructureError{
				ID:      e.ID,
				Level:   level,
				Message: fmt.Sprintf("second spouse for id %s", parent.ID),
			}
		}
		parent.AddSpouse(NewPerson(e))
		b.pos++
	}

	// The loop above leaves a non-spouse entry (or nothing) under the cursor, and every
	// recursive call returns in the same state, so e.Spouse is never set here.
	for e, ok := b.peek(); ok; e, ok = b.peek() {
		switch {
		case e.Level <= level:
			return nil
		case e.Level == level+1:
			child := NewPerson(e)
			parent.AddChild(child)
			b.pos++
			if err := b.descend(child, e.Level); err != nil {
				return err
			}
		default:
			return apperrors.NewStructure(e.ID, e.Level, level)
		}
	}

	return nil
}
