package family

// Walk visits p and everything below it in pre-order: the person, then their spouse,
// then each child subtree in order. A spouse's own children are never visited.
// When fn returns false for a person, nothing below that person is visited.
func Walk(p *Person, fn func(*Person) bool) {
	if p == nil || !fn(p) {
		return
	}
	if p.Spouse != nil {
		fn(p.Spouse)
	}
	for _, child := range p.Children {
		Walk(child, fn)
	}
}

// Descendants returns every person reachable through Children, in pre-order,
// excluding spouses.
func Descendants(p *Person) []*Person {
	var out []*Person
	var visit func(*Person)
	visit = func(q *Person) {
		out = append(out, q)
		for _, child := range q.Children {
			visit(child)
		}
	}
	if p != nil {
		visit(p)
	}
	return out
}
