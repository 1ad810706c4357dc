package family

import (
	"fmt"

	apperrors "github.com/FocuswithJustin/famtree/core/errors"
)

// Validate checks the id invariants of a built tree and returns every problem found.
// Problems are advisory; the tree is still usable.
func Validate(root *Person) []error {
	var errs []error
	if root == nil {
		return append(errs, apperrors.NewValidation("tree", "no progenitor"))
	}

	seen := make(map[string]string)
	check := func(p *Person, path string) {
		if p.ID == "" {
			errs = append(errs, apperrors.NewValidation(path, "missing id"))
			return
		}
		if p.IsAlias() {
			return
		}
		if prev, ok := seen[p.ID]; ok {
			errs = append(errs, &apperrors.ValidationError{
				Field:   path,
				Value:   p.ID,
				Message: fmt.Sprintf("duplicate id %s (first seen at %s)", p.ID, prev),
			})
			return
		}
		seen[p.ID] = path
	}

	var visit func(p *Person, path string)
	visit = func(p *Person, path string) {
		check(p, path)
		if p.IsAlias() {
			errs = append(errs, &apperrors.ValidationError{
				Field:   path,
				Value:   p.ID,
				Message: "alias id on a descendant",
			})
		}
		if p.Spouse != nil {
			check(p.Spouse, path+".spouse")
		}
		for i, child := range p.Children {
			visit(child, fmt.Sprintf("%s.children[%d]", path, i))
		}
	}
	visit(root, "root")

	return errs
}
