package family

import (
	"errors"
	"testing"

	apperrors "github.com/FocuswithJustin/famtree/core/errors"
)

func TestSplitName(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantGiven   string
		wantSurname string
	}{
		{"simple", "Moritz Waldinger", "Moritz", "Waldinger"},
		{"middle names", "Anna Maria Rosa Waldinger", "Anna Maria Rosa", "Waldinger"},
		{"maiden name", "Rosa Waldinger (Kohn)", "Rosa", "Waldinger (Kohn)"},
		{"maiden name only", "Rosa (Kohn)", "", "Rosa (Kohn)"},
		{"single token", "Waldinger", "", "Waldinger"},
		{"extra whitespace", "  Karl   Heinz  Weiss ", "Karl Heinz", "Weiss"},
		{"empty", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			given, surname := splitName(tt.input)
			if given != tt.wantGiven {
				t.Errorf("given = %q, want %q", given, tt.wantGiven)
			}
			if surname != tt.wantSurname {
				t.Errorf("surname = %q, want %q", surname, tt.wantSurname)
			}
		})
	}
}

func TestNewPerson_UnknownBirthYear(t *testing.T) {
	p := NewPerson(Entry{Level: 2, Name: "Leo Weiss", BirthYear: "0000", DeathYear: "1944", ID: "5"})
	if p.BirthDate != "" {
		t.Errorf("BirthDate = %q, want empty", p.BirthDate)
	}
	if p.DeathDate != "1944" {
		t.Errorf("DeathDate = %q, want 1944", p.DeathDate)
	}

	q := NewPerson(Entry{Name: "Eva Weiss", BirthYear: "1901", ID: "6"})
	if q.BirthDate != "1901" {
		t.Errorf("BirthDate = %q, want 1901", q.BirthDate)
	}
}

func TestPerson_Alias(t *testing.T) {
	alias := NewPerson(Entry{Name: "Hans Weiss", ID: "123B"})
	if !alias.IsAlias() {
		t.Error("IsAlias() = false for 123B")
	}
	if got := alias.BaseID(); got != "123" {
		t.Errorf("BaseID() = %q, want 123", got)
	}

	plain := NewPerson(Entry{Name: "Hans Weiss", ID: "123"})
	if plain.IsAlias() {
		t.Error("IsAlias() = true for 123")
	}
	if got := plain.BaseID(); got != "123" {
		t.Errorf("BaseID() = %q, want 123", got)
	}
}

func TestPlace_HasCoordinates(t *testing.T) {
	tests := []struct {
		name  string
		place *Place
		want  bool
	}{
		{"complete", NewPlace("Vienna", "48.2", "16.37", "Q1741"), true},
		{"no geo id", NewPlace("Vienna", "48.2", "16.37", ""), false},
		{"no latitude", NewPlace("Vienna", "", "16.37", "Q1741"), false},
		{"name only", NewPlace("Vienna", "", "", ""), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.place.HasCoordinates(); got != tt.want {
				t.Errorf("HasCoordinates() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEntry_Marker(t *testing.T) {
	if got := (Entry{Level: 3}).Marker(); got != "3" {
		t.Errorf("Marker() = %q, want 3", got)
	}
	if got := (Entry{Level: 3, Spouse: true}).Marker(); got != "+" {
		t.Errorf("Marker() = %q, want +", got)
	}
}

func TestWalk_VisitsSpouseBeforeChildren(t *testing.T) {
	root := NewPerson(Entry{Name: "Root", ID: "1"})
	root.AddSpouse(NewPerson(Entry{Name: "Wife", ID: "2"}))
	child := NewPerson(Entry{Name: "Child", ID: "3"})
	child.AddSpouse(NewPerson(Entry{Name: "In Law", ID: "9B"}))
	root.AddChild(child)
	root.AddChild(NewPerson(Entry{Name: "Child Two", ID: "4"}))

	var order []string
	Walk(root, func(p *Person) bool {
		order = append(order, p.ID)
		return true
	})

	want := []string{"1", "2", "3", "9B", "4"}
	if !equalStrings(order, want) {
		t.Errorf("Walk order = %v, want %v", order, want)
	}

	var desc []string
	for _, p := range Descendants(root) {
		desc = append(desc, p.ID)
	}
	if want := []string{"1", "3", "4"}; !equalStrings(desc, want) {
		t.Errorf("Descendants = %v, want %v", desc, want)
	}
}

func TestWalk_StopsDescent(t *testing.T) {
	root, err := BuildTree(sampleEntries())
	if err != nil {
		t.Fatalf("BuildTree failed: %v", err)
	}
	var seen []string
	Walk(root, func(p *Person) bool {
		seen = append(seen, p.ID)
		return p.ID != "2"
	})
	if want := []string{"1", "2"}; !equalStrings(seen, want) {
		t.Errorf("seen = %v, want %v", seen, want)
	}
}

func TestValidate(t *testing.T) {
	t.Run("clean tree", func(t *testing.T) {
		root, err := BuildTree([]Entry{
			{Level: 1, Name: "Root", ID: "1"},
			{Level: 2, Name: "Child", ID: "2"},
			{Spouse: true, Name: "Cousin", ID: "1B"},
		})
		if err != nil {
			t.Fatalf("BuildTree failed: %v", err)
		}
		if errs := Validate(root); len(errs) != 0 {
			t.Errorf("Validate() = %v, want no errors", errs)
		}
	})

	t.Run("duplicate id", func(t *testing.T) {
		root, err := BuildTree([]Entry{
			{Level: 1, Name: "Root", ID: "1"},
			{Level: 2, Name: "Child", ID: "2"},
			{Level: 2, Name: "Other Child", ID: "2"},
		})
		if err != nil {
			t.Fatalf("BuildTree failed: %v", err)
		}
		errs := Validate(root)
		if len(errs) != 1 {
			t.Fatalf("Validate() returned %d errors, want 1: %v", len(errs), errs)
		}
		var ve *apperrors.ValidationError
		if !errors.As(errs[0], &ve) {
			t.Fatalf("error %T is not *ValidationError", errs[0])
		}
		if ve.Field != "root.children[1]" || ve.Value != "2" {
			t.Errorf("ValidationError = %+v", ve)
		}
	})

	t.Run("alias on descendant", func(t *testing.T) {
		root, err := BuildTree([]Entry{
			{Level: 1, Name: "Root", ID: "1"},
			{Level: 2, Name: "Child", ID: "2B"},
		})
		if err != nil {
			t.Fatalf("BuildTree failed: %v", err)
		}
		if errs := Validate(root); len(errs) != 1 {
			t.Errorf("Validate() = %v, want one error", errs)
		}
	})

	t.Run("nil root", func(t *testing.T) {
		if errs := Validate(nil); len(errs) != 1 {
			t.Errorf("Validate(nil) = %v, want one error", errs)
		}
	})
}
