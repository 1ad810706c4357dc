// Package extract turns the transcribed record list into leveled entries.
//
// Each entry line has the shape
//
//	<level|+> <name> [birth year] [- [death year]] ID Number: #<id>[B]
//
// for example "2 Rosa Waldinger (Kohn) 1881 - 1942 ID Number: #17" or
// "+ Leo Weiss 1879-1940 ID Number #23 B". The id ends the entry: anything after it on
// the same line, such as a full stop or a page note, is ignored. Lines that do not
// start with this shape are skipped.
package extract

import (
	"bufio"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"golang.org/x/text/unicode/norm"

	"github.com/FocuswithJustin/famtree/core/family"
)

// maxLineSize bounds a single transcribed line.
const maxLineSize = 1024 * 1024

// entryGrammar is the participle grammar for one entry line.
type entryGrammar struct {
	Level  *int     `parser:"(  @Int"`
	Spouse bool     `parser:" | @Plus )"`
	Name   []string `parser:"@Word+"`
	Born   string   `parser:"@Int?"`
	Died   string   `parser:"( Dash @Int? )?"`
	Number string   `parser:"IDLabel Hash? @Int"`
	Alias  string   `parser:"@\"B\"?"`
}

// entryLexer tokenizes an entry line. Rule order matters: the id label must win over Word.
var entryLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "IDLabel", Pattern: `ID\s*Number\s*:?`},
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Plus", Pattern: `\+`},
	{Name: "Dash", Pattern: `[-\x{2013}\x{2014}]`},
	{Name: "Hash", Pattern: `#`},
	{Name: "Word", Pattern: `[^\s0-9#+\-\x{2013}\x{2014}][^\s0-9#]*`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// entryParser is the participle parser for entry lines.
var entryParser = participle.MustBuild[entryGrammar](
	participle.Lexer(entryLexer),
	participle.Elide("Whitespace"),
	participle.UseLookahead(2),
)

// Extract returns the leveled entries found in text, in document order.
// Lines that do not match the entry grammar are dropped.
func Extract(text string) []family.Entry {
	entries, _ := ExtractWithReport(text)
	return entries
}

// ExtractWithReport is Extract that also returns the 1-based numbers of the
// non-blank lines it skipped.
func ExtractWithReport(text string) ([]family.Entry, []int) {
	var entries []family.Entry
	var skipped []int

	scanner := bufio.NewScanner(strings.NewReader(norm.NFC.String(text)))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		entry, ok := ParseLine(line)
		if !ok {
			skipped = append(skipped, lineNo)
			continue
		}
		entries = append(entries, entry)
	}

	return entries, skipped
}

// ParseLine parses a single entry line. Text following the id is ignored.
func ParseLine(line string) (family.Entry, bool) {
	parsed, err := entryParser.ParseString("", strings.TrimSpace(line), participle.AllowTrailing(true))
	if err != nil {
		return family.Entry{}, false
	}

	entry := family.Entry{
		Spouse:    parsed.Spouse,
		Name:      strings.Join(parsed.Name, " "),
		BirthYear: parsed.Born,
		DeathYear: parsed.Died,
		ID:        normalizeID(parsed.Number + parsed.Alias),
	}
	if parsed.Level != nil {
		entry.Level = *parsed.Level
	}

	return entry, true
}

// normalizeID removes all whitespace, so "12 B" and "12B" name the same id.
func normalizeID(id string) string {
	return strings.Join(strings.Fields(id), "")
}

// Format renders an entry back into list form. It is the inverse of ParseLine for
// entries that came from it.
func Format(e family.Entry) string {
	var sb strings.Builder
	sb.WriteString(e.Marker())
	sb.WriteString(" ")
	sb.WriteString(e.Name)
	if e.BirthYear != "" {
		sb.WriteString(" ")
		sb.WriteString(e.BirthYear)
	}
	if e.DeathYear != "" {
		sb.WriteString(" - ")
		sb.WriteString(e.DeathYear)
	}
	sb.WriteString(" ID Number: #")
	sb.WriteString(e.ID)
	return sb.String()
}
