// Package gedcom renders a family tree as a lineage-linked GEDCOM 5.5.5 document.
//
// Output is assembled as a list of leveled lines and written out once, so the
// nesting grammar stays in one place:
//
//	<level> [@<xref>@ ]<tag>[ <value>]
//
// Serialize builds the Document; Render and Bytes produce the text.
package gedcom

import (
	"bufio"
	"bytes"
	"io"
	"strconv"
	"strings"
)

// Line is a single GEDCOM line.
type Line struct {
	Level int
	XRef  string
	Tag   string
	Value string
}

// String renders the line without its terminator.
func (l Line) String() string {
	var b []byte
	b = strconv.AppendInt(b, int64(l.Level), 10)
	if l.XRef != "" {
		b = append(b, " @"...)
		b = append(b, l.XRef...)
		b = append(b, '@')
	}
	b = append(b, ' ')
	b = append(b, l.Tag...)
	if l.Value != "" {
		b = append(b, ' ')
		b = append(b, l.Value...)
	}
	return string(b)
}

// Record is a level-0 line followed by its subordinate lines.
type Record []Line

// XRef returns the cross-reference id of the record's level-0 line.
func (r Record) XRef() string {
	if len(r) == 0 {
		return ""
	}
	return r[0].XRef
}

// Values returns the values of the level-1 lines tagged tag, in order.
func (r Record) Values(tag string) []string {
	var out []string
	for _, l := range r {
		if l.Level == 1 && l.Tag == tag {
			out = append(out, l.Value)
		}
	}
	return out
}

// lineBreaks folds CRLF and CR into LF before a value is split.
var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// add appends a line. A value spanning several lines continues in CONT lines one
// level down, so no value can break the line structure.
func (r *Record) add(level int, tag, value string) {
	parts := strings.Split(lineBreaks.Replace(value), "\n")
	*r = append(*r, Line{Level: level, Tag: tag, Value: parts[0]})
	for _, part := range parts[1:] {
		*r = append(*r, Line{Level: level + 1, Tag: "CONT", Value: part})
	}
}

// Document is a complete GEDCOM file.
type Document struct {
	Header      Header
	Individuals []Record
	Families    []Record
}

// Render writes the document: header, individual records, family records, trailer.
// Every line is terminated by "\n".
func (d *Document) Render(w io.Writer) error {
	bw := bufio.NewWriter(w)
	write := func(r Record) {
		for _, l := range r {
			bw.WriteString(l.String())
			bw.WriteByte('\n')
		}
	}

	write(d.Header.Record())
	for _, r := range d.Individuals {
		write(r)
	}
	for _, r := range d.Families {
		write(r)
	}
	write(Record{{Level: 0, Tag: "TRLR"}})

	return bw.Flush()
}

// Bytes returns the rendered document.
func (d *Document) Bytes() []byte {
	var buf bytes.Buffer
	// bytes.Buffer never fails a write
	_ = d.Render(&buf)
	return buf.Bytes()
}
