package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/zulandar/shamba/internal/apperr"
	"github.com/zulandar/shamba/internal/export"
	"github.com/zulandar/shamba/internal/service"
	"github.com/zulandar/shamba/internal/testdb"
)

func setup(t *testing.T) (*service.Service, http.Handler) {
	t.Helper()
	svc, err := service.New(testdb.Open(t), "operator@farm.local")
	if err != nil {
		t.Fatalf("service.New: %v", err)
	}
	return svc, NewRouter(StartOpts{Service: svc})
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func TestStart_NilService(t *testing.T) {
	err := Start(context.Background(), StartOpts{})
	if err == nil || !strings.Contains(err.Error(), "service is required") {
		t.Fatalf("err = %v, want service is required", err)
	}
}

func TestHealthz(t *testing.T) {
	_, h := setup(t)
	w := do(t, h, http.MethodGet, "/healthz", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"ok"`) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestInventory_AddListUpdate(t *testing.T) {
	_, h := setup(t)

	w := do(t, h, http.MethodPost, "/api/inventory", `{"name":"hay","category":"feed","quantity":500,"unit":"kg"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("add: status = %d, body = %s", w.Code, w.Body.String())
	}
	var created struct{ ID uint }
	decode(t, w, &created)
	if created.ID == 0 {
		t.Fatal("id should be returned")
	}

	w = do(t, h, http.MethodGet, "/api/inventory?name=HA", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list: status = %d", w.Code)
	}
	var items []map[string]any
	decode(t, w, &items)
	if len(items) != 1 || items[0]["name"] != "hay" {
		t.Fatalf("items = %v", items)
	}

	w = do(t, h, http.MethodPatch, "/api/inventory/1", `{"quantity":"120.5","action":"subtract"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update: status = %d, body = %s", w.Code, w.Body.String())
	}
	var updated struct{ Quantity decimal.Decimal }
	decode(t, w, &updated)
	if !updated.Quantity.Equal(decimal.RequireFromString("379.5")) {
		t.Errorf("quantity = %s, want 379.5", updated.Quantity)
	}
}

func TestInventory_Errors(t *testing.T) {
	_, h := setup(t)
	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"missing name", http.MethodPost, "/api/inventory", `{"quantity":1,"unit":"kg"}`, http.StatusBadRequest, apperr.KindValidation},
		{"bad json", http.MethodPost, "/api/inventory", `{`, http.StatusBadRequest, apperr.KindValidation},
		{"unknown item", http.MethodPatch, "/api/inventory/42", `{"quantity":1,"action":"add"}`, http.StatusNotFound, apperr.KindNotFound},
		{"bad id", http.MethodPatch, "/api/inventory/abc", `{"quantity":1,"action":"add"}`, http.StatusBadRequest, apperr.KindValidation},
		{"no quantity", http.MethodPatch, "/api/inventory/1", `{"action":"add"}`, http.StatusBadRequest, apperr.KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, tt.method, tt.path, tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			var body struct{ Error, Code string }
			decode(t, w, &body)
			if body.Code != tt.wantCode || body.Error == "" {
				t.Errorf("body = %+v, want code %q", body, tt.wantCode)
			}
		})
	}
}

func TestLowStock_Empty(t *testing.T) {
	_, h := setup(t)
	w := do(t, h, http.MethodGet, "/api/inventory/low", "")
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("status = %d, body = %s, want 200 []", w.Code, w.Body.String())
	}
}

func TestTasks_Flow(t *testing.T) {
	_, h := setup(t)

	w := do(t, h, http.MethodPost, "/api/tasks", `{"title":"Feed cows","due_date":"2025-01-02","priority":"high"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("add: status = %d, body = %s", w.Code, w.Body.String())
	}

	w = do(t, h, http.MethodPost, "/api/tasks/1/status", `{"status":"in-progress"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("start: status = %d, body = %s", w.Code, w.Body.String())
	}

	w = do(t, h, http.MethodPost, "/api/tasks/1/complete", "")
	if w.Code != http.StatusOK {
		t.Fatalf("complete: status = %d, body = %s", w.Code, w.Body.String())
	}
	var task map[string]any
	decode(t, w, &task)
	if task["status"] != "completed" || task["completed_at"] == nil {
		t.Errorf("task = %v", task)
	}

	w = do(t, h, http.MethodPost, "/api/tasks/1/status", `{"status":"pending"}`)
	if w.Code != http.StatusConflict {
		t.Errorf("reopen: status = %d, want 409", w.Code)
	}

	w = do(t, h, http.MethodGet, "/api/tasks?status=completed", "")
	var tasks []map[string]any
	decode(t, w, &tasks)
	if len(tasks) != 1 {
		t.Errorf("completed tasks = %d, want 1", len(tasks))
	}
}

func TestTasks_CompleteMissing(t *testing.T) {
	_, h := setup(t)
	w := do(t, h, http.MethodPost, "/api/tasks/7/complete", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestTasks_Assign(t *testing.T) {
	svc, h := setup(t)
	do(t, h, http.MethodPost, "/api/tasks", `{"title":"Mend fence"}`)

	body := `{"user_id":` + jsonUint(svc.Operator.ID) + `,"notes":"north side"}`
	w := do(t, h, http.MethodPost, "/api/tasks/1/assignments", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("assign: status = %d, body = %s", w.Code, w.Body.String())
	}
	w = do(t, h, http.MethodPost, "/api/tasks/1/assignments", body)
	if w.Code != http.StatusBadRequest {
		t.Errorf("duplicate assign: status = %d, want 400", w.Code)
	}
}

func TestAnimals_Empty(t *testing.T) {
	_, h := setup(t)
	w := do(t, h, http.MethodGet, "/api/animals", "")
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestExport(t *testing.T) {
	svc, h := setup(t)
	for _, title := range []string{"one", "two", "three"} {
		if _, err := svc.AddTask(service.AddTaskInput{Title: title}); err != nil {
			t.Fatalf("AddTask: %v", err)
		}
	}

	w := do(t, h, http.MethodGet, "/api/export/tasks", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type = %q", ct)
	}
	if lines := strings.Split(strings.TrimSuffix(w.Body.String(), "\n"), "\n"); len(lines) != 4 {
		t.Errorf("csv lines = %d, want 4", len(lines))
	}

	w = do(t, h, http.MethodGet, "/api/export/tasks?format=text", "")
	if !strings.Contains(w.Body.String(), "-+-") {
		t.Errorf("text export missing separator:\n%s", w.Body.String())
	}

	w = do(t, h, http.MethodGet, "/api/export/tasks?format=xlsx", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Header().Get("Content-Disposition"), "tasks.xlsx") {
		t.Errorf("xlsx: status = %d, disposition = %q", w.Code, w.Header().Get("Content-Disposition"))
	}

	for _, path := range []string{"/api/export/tasks?format=pdf", "/api/export/harvests"} {
		if w := do(t, h, http.MethodGet, path, ""); w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", path, w.Code)
		}
	}
}

func TestCORS(t *testing.T) {
	svc, _ := setup(t)
	h := NewRouter(StartOpts{Service: svc, AllowOrigins: []string{"http://farm.example"}})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "http://farm.example")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://farm.example" {
		t.Errorf("allow origin = %q", got)
	}
}

func TestContentType(t *testing.T) {
	for _, f := range export.Formats {
		if contentType(f) == "" {
			t.Errorf("no content type for %s", f)
		}
	}
}

func jsonUint(v uint) string {
	b, _ := json.Marshal(v)
	return string(b)
}
