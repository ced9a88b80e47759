package export

import (
	"strings"
	"unicode/utf8"
)

// MaxColumnWidth caps every text table column.
const MaxColumnWidth = 30

// NoData is what Text renders for an empty record set.
const NoData = "No data available"

// Text renders records as a column-aligned table: a header row, a dash
// separator, then one line per record. Columns are as wide as their widest
// cell up to MaxColumnWidth; longer cells are truncated.
func Text(records []Record) string {
	if len(records) == 0 {
		return NoData + "\n"
	}
	headers := records[0].Keys()

	rows := make([][]string, len(records))
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for r, rec := range records {
		rows[r] = make([]string, len(headers))
		for i, h := range headers {
			v, _ := rec.Get(h)
			c := flatten(cell(v))
			rows[r][i] = c
			if n := utf8.RuneCountInString(c); n > widths[i] {
				widths[i] = n
			}
		}
	}
	for i := range widths {
		if widths[i] > MaxColumnWidth {
			widths[i] = MaxColumnWidth
		}
	}

	var b strings.Builder
	writeTextRow(&b, headers, widths)
	for i, w := range widths {
		if i > 0 {
			b.WriteString("-+-")
		}
		b.WriteString(strings.Repeat("-", w))
	}
	b.WriteByte('\n')
	for _, row := range rows {
		writeTextRow(&b, row, widths)
	}
	return b.String()
}

// TextValues renders a sequence of scalars one per line.
func TextValues(values []any) string {
	if len(values) == 0 {
		return NoData + "\n"
	}
	var b strings.Builder
	for _, v := range values {
		b.WriteString(flatten(cell(v)))
		b.WriteByte('\n')
	}
	return b.String()
}

// TextRecord renders a single record as "key: value" lines.
func TextRecord(r Record) string {
	var b strings.Builder
	for _, f := range r {
		b.WriteString(f.Key)
		b.WriteString(": ")
		b.WriteString(flatten(cell(f.Value)))
		b.WriteByte('\n')
	}
	return b.String()
}

func writeTextRow(b *strings.Builder, cells []string, widths []int) {
	for i, c := range cells {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(fit(c, widths[i]))
	}
	b.WriteByte('\n')
}

// fit pads s with spaces or truncates it to exactly w runes.
func fit(s string, w int) string {
	n := utf8.RuneCountInString(s)
	if n == w {
		return s
	}
	if n < w {
		return s + strings.Repeat(" ", w-n)
	}
	runes := []rune(s)
	return string(runes[:w])
}

// flatten keeps multi-line values on one table line.
func flatten(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
}
