package export

import "strings"

// CSV renders records with a header row taken from the first record's
// keys. Every row, header included, ends in one newline. Cells holding a
// comma, double quote or line break are quoted with inner quotes doubled.
func CSV(records []Record) string {
	if len(records) == 0 {
		return ""
	}
	headers := records[0].Keys()

	var b strings.Builder
	writeCSVRow(&b, headers)
	row := make([]string, len(headers))
	for _, r := range records {
		for i, h := range headers {
			v, _ := r.Get(h)
			row[i] = cell(v)
		}
		writeCSVRow(&b, row)
	}
	return b.String()
}

func writeCSVRow(b *strings.Builder, cells []string) {
	for i, c := range cells {
		if i > 0 {
			b.WriteByte(',')
		}
		if strings.ContainsAny(c, ",\"\n\r") {
			b.WriteByte('"')
			b.WriteString(strings.ReplaceAll(c, `"`, `""`))
			b.WriteByte('"')
			continue
		}
		b.WriteString(c)
	}
	b.WriteByte('\n')
}
