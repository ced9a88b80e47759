package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"github.com/zulandar/shamba/internal/models"
)

func TestCSV_RoundTrip(t *testing.T) {
	tricky := `a,b"c`
	records := []Record{
		R("id", 1, "note", tricky, "multi", "line one\nline two"),
		R("id", 2, "note", "plain", "multi", nil),
	}
	out := CSV(records)

	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("csv.ReadAll: %v\n%s", err, out)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if got := rows[1][1]; got != tricky {
		t.Errorf("round-tripped value = %q, want %q", got, tricky)
	}
	if got := rows[1][2]; got != "line one\nline two" {
		t.Errorf("round-tripped multi-line = %q", got)
	}
	if got := rows[2][2]; got != "" {
		t.Errorf("nil cell = %q, want empty", got)
	}
}

func TestCSV_Format(t *testing.T) {
	records := []Record{
		R("b", "x", "a", 0, "c", false),
		R("a", 5, "extra", "ignored"),
	}
	want := "b,a,c\nx,0,false\n,5,\n"
	if got := CSV(records); got != want {
		t.Errorf("CSV =\n%q\nwant\n%q", got, want)
	}
	if got := CSV(nil); got != "" {
		t.Errorf("CSV(nil) = %q, want empty", got)
	}
}

func TestCSV_Composite(t *testing.T) {
	out := CSV([]Record{R("tags", []string{"a", "b"}, "meta", map[string]int{"k": 1})})
	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if rows[1][0] != `["a","b"]` || rows[1][1] != `{"k":1}` {
		t.Errorf("composite cells = %q", rows[1])
	}
}

func TestCell_NestedRecord(t *testing.T) {
	if got := cell(R("id", 1, "qty", decimal.RequireFromString("2.50"))); got != `{"id":1,"qty":2.5}` {
		t.Errorf("nested record cell = %q", got)
	}
	// A value JSON cannot encode falls back to the plain form.
	got := cell(R("id", 1, "notify", make(chan int)))
	if !strings.Contains(got, "notify") || strings.HasPrefix(got, "{") {
		t.Errorf("unencodable record cell = %q, want fmt fallback", got)
	}
}

func TestCSV_Tasks(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tasks := []models.Task{
		{ID: 1, Title: "Feed cows", Status: "pending", Priority: "high", CreatedByID: 1, CreatedAt: now, UpdatedAt: now},
		{ID: 2, Title: "Milk, then clean", Status: "in_progress", Priority: "medium", CreatedByID: 1, StartDate: &now, CreatedAt: now, UpdatedAt: now},
		{ID: 3, Title: "Harvest eggs", Status: "completed", Priority: "low", CreatedByID: 1, CompletedAt: &now, EndDate: &now, CreatedAt: now, UpdatedAt: now},
	}
	out := CSV(TaskRecords(tasks))

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("lines = %d, want 4:\n%s", len(lines), out)
	}
	wantHeader := "id,title,description,status,priority,due_date,start_date,end_date,completed_at,created_by,created_at,updated_at"
	if lines[0] != wantHeader {
		t.Errorf("header = %q, want %q", lines[0], wantHeader)
	}
	if lines[0] != strings.Join(TaskHeader, ",") {
		t.Errorf("header drifted from TaskHeader")
	}
	if !strings.Contains(lines[2], `"Milk, then clean"`) {
		t.Errorf("row 2 = %q, want quoted title", lines[2])
	}
	if !strings.Contains(lines[3], "2026-01-02T03:04:05Z") {
		t.Errorf("row 3 = %q, want completion time", lines[3])
	}
}

func TestJSON_KeyOrder(t *testing.T) {
	records := []Record{R("zeta", 1, "alpha", decimal.RequireFromString("2.50"), "when", (*time.Time)(nil))}
	out, err := JSON(records)
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}
	want := "[\n  {\n    \"zeta\": 1,\n    \"alpha\": 2.5,\n    \"when\": null\n  }\n]\n"
	if out != want {
		t.Errorf("JSON =\n%s\nwant\n%s", out, want)
	}

	var decoded []map[string]any
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	empty, _ := JSON(nil)
	if empty != "[]\n" {
		t.Errorf("JSON(nil) = %q, want []", empty)
	}
}

func TestText_Table(t *testing.T) {
	records := []Record{
		R("id", 1, "name", "hay", "qty", 0, "ok", false),
		R("id", 12, "name", "chicken feed", "qty", 50, "ok", true),
	}
	sp := func(n int) string { return strings.Repeat(" ", n) }
	dash := func(n int) string { return strings.Repeat("-", n) }
	want := "id | name" + sp(8) + " | qty | ok" + sp(3) + "\n" +
		dash(2) + "-+-" + dash(12) + "-+-" + dash(3) + "-+-" + dash(5) + "\n" +
		"1  | hay" + sp(9) + " | 0   | false\n" +
		"12 | chicken feed | 50  | true \n"
	if got := Text(records); got != want {
		t.Errorf("Text =\n%s\nwant\n%s", got, want)
	}
}

func TestText_Truncates(t *testing.T) {
	longKey := strings.Repeat("k", 45)
	longVal := strings.Repeat("v", 60)
	out := Text([]Record{R(longKey, longVal, "b", "x")})
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3", len(lines))
	}
	header := strings.Split(lines[0], " | ")
	if header[0] != strings.Repeat("k", MaxColumnWidth) {
		t.Errorf("header cell = %q, want 30 k's", header[0])
	}
	if sep := strings.Split(lines[1], "-+-"); sep[0] != strings.Repeat("-", MaxColumnWidth) {
		t.Errorf("separator = %q", lines[1])
	}
	if cell := strings.Split(lines[2], " | ")[0]; cell != strings.Repeat("v", MaxColumnWidth) {
		t.Errorf("data cell = %q", cell)
	}
}

func TestText_Unicode(t *testing.T) {
	out := Text([]Record{R("name", "Ñandú"), R("name", "ox")})
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if lines[0] != "name " || lines[3] != "ox   " {
		t.Errorf("Text = %q", lines)
	}
}

func TestText_EmptyAndScalars(t *testing.T) {
	if got := Text(nil); got != NoData+"\n" {
		t.Errorf("Text(nil) = %q", got)
	}
	if got := TextValues([]any{"a", 2, false, nil}); got != "a\n2\nfalse\n\n" {
		t.Errorf("TextValues = %q", got)
	}
	if got := TextRecord(R("id", 3, "name", "hay")); got != "id: 3\nname: hay\n" {
		t.Errorf("TextRecord = %q", got)
	}
}

func TestRender_Deterministic(t *testing.T) {
	records := InventoryRecords([]models.InventoryItem{
		{ID: 1, Name: "hay", Category: "feed", Quantity: decimal.NewFromInt(500), Unit: "kg"},
	})
	for _, f := range []Format{FormatCSV, FormatJSON, FormatText} {
		a, err := Render(f, records)
		if err != nil {
			t.Fatalf("Render(%s): %v", f, err)
		}
		b, _ := Render(f, records)
		if a != b {
			t.Errorf("Render(%s) not deterministic", f)
		}
	}
	if _, err := Render(FormatXLSX, records); err == nil {
		t.Error("Render(xlsx) should direct callers to RenderXLSX")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"csv", FormatCSV, false},
		{"JSON", FormatJSON, false},
		{"txt", FormatText, false},
		{"text", FormatText, false},
		{"xlsx", FormatXLSX, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestDefaultFilename(t *testing.T) {
	now := time.UnixMilli(1767225600123)
	if got := DefaultFilename(now, FormatCSV); got != "report-1767225600123.csv" {
		t.Errorf("DefaultFilename = %q", got)
	}
	if got := DefaultFilename(now, FormatText); got != "report-1767225600123.txt" {
		t.Errorf("DefaultFilename = %q", got)
	}
}

func TestRenderXLSX(t *testing.T) {
	records := AnimalRecords([]models.Animal{
		{ID: 1, TagNumber: "COW-001", Species: "cattle", Weight: decimal.NewNullDecimal(decimal.RequireFromString("450.5"))},
		{ID: 2, TagNumber: "GOAT-001", Species: "goat"},
	})
	var buf bytes.Buffer
	if err := Write(&buf, FormatXLSX, "animals", records); err != nil {
		t.Fatalf("Write(xlsx): %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("animals")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[0][1] != "tag_number" || rows[1][1] != "COW-001" {
		t.Errorf("rows = %v", rows[:2])
	}
	if rows[1][9] != "450.5" {
		t.Errorf("weight cell = %q, want 450.5", rows[1][9])
	}
}
