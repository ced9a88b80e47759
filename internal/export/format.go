package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/zulandar/shamba/internal/apperr"
)

// Format names an output format.
type Format string

// Output formats.
const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatText Format = "txt"
	FormatXLSX Format = "xlsx"
)

// Formats lists every supported format.
var Formats = []Format{FormatCSV, FormatJSON, FormatText, FormatXLSX}

// ParseFormat accepts a format name; "text" is an alias for txt.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "text" {
		s = string(FormatText)
	}
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", apperr.Invalid("export", "format", fmt.Sprintf("%q is not one of csv, json, txt, xlsx", s))
}

// Ext returns the file extension for the format.
func (f Format) Ext() string { return string(f) }

// Render renders records in one of the text formats. The output depends
// only on its inputs. Spreadsheets go through RenderXLSX.
func Render(f Format, records []Record) (string, error) {
	switch f {
	case FormatCSV:
		return CSV(records), nil
	case FormatJSON:
		return JSON(records)
	case FormatText:
		return Text(records), nil
	case FormatXLSX:
		return "", fmt.Errorf("export: %s is a binary format, use RenderXLSX", f)
	}
	return "", fmt.Errorf("export: unknown format %q", f)
}

// Write renders records in any supported format to w.
func Write(w io.Writer, f Format, sheet string, records []Record) error {
	if f == FormatXLSX {
		return RenderXLSX(w, sheet, records)
	}
	out, err := Render(f, records)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, out); err != nil {
		return fmt.Errorf("export: write %s: %w", f, err)
	}
	return nil
}

// DefaultFilename returns report-<epoch-millis>.<ext>.
func DefaultFilename(now time.Time, f Format) string {
	return fmt.Sprintf("report-%d.%s", now.UnixMilli(), f.Ext())
}
