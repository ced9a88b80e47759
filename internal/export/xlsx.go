package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// RenderXLSX writes records as a single-sheet workbook: a header row from
// the first record's keys, then one row per record. Workbooks embed
// timestamps, so the bytes differ between runs.
func RenderXLSX(w io.Writer, sheet string, records []Record) error {
	f := excelize.NewFile()
	defer f.Close()

	if sheet == "" {
		sheet = "Sheet1"
	}
	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			return fmt.Errorf("export: xlsx sheet: %w", err)
		}
	}

	if len(records) > 0 {
		headers := records[0].Keys()
		row := make([]interface{}, len(headers))
		for i, h := range headers {
			row[i] = h
		}
		if err := f.SetSheetRow(sheet, "A1", &row); err != nil {
			return fmt.Errorf("export: xlsx header: %w", err)
		}
		for r, rec := range records {
			for i, h := range headers {
				v, _ := rec.Get(h)
				row[i] = xlsxValue(v)
			}
			addr, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return fmt.Errorf("export: xlsx row %d: %w", r, err)
			}
			if err := f.SetSheetRow(sheet, addr, &row); err != nil {
				return fmt.Errorf("export: xlsx row %d: %w", r, err)
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("export: xlsx write: %w", err)
	}
	return nil
}

// xlsxValue keeps numbers and booleans typed in the sheet and flattens
// everything else to its text cell.
func xlsxValue(v any) interface{} {
	switch x := deref(v).(type) {
	case nil:
		return nil
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return x
	}
	if n, ok := jsonValue(v).(interface{ Float64() (float64, error) }); ok {
		if f, err := n.Float64(); err == nil {
			return f
		}
	}
	return cell(v)
}
