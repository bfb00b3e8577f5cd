package http_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apihttp "github.com/example/tutor-scheduler/internal/http"
)

func TestRequestLoggerAttachesContextLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	var sawContextLogger bool
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := apihttp.LoggerFromContext(r.Context())
		sawContextLogger = logger != nil
		w.WriteHeader(http.StatusNoContent)
	})

	handler := apihttp.RequestLogger(base)(inner)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/timeline", nil))

	if !sawContextLogger {
		t.Fatal("expected request scoped logger in context")
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("middleware altered response code: %d", rec.Code)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected start and completion log lines, got %d: %s", len(lines), buf.String())
	}

	var started, completed map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &started); err != nil {
		t.Fatalf("decode first log line: %v", err)
	}
	if err := json.Unmarshal([]byte(lines[1]), &completed); err != nil {
		t.Fatalf("decode second log line: %v", err)
	}

	if started["msg"] != "request started" || completed["msg"] != "request completed" {
		t.Fatalf("unexpected log messages: %v / %v", started["msg"], completed["msg"])
	}
	for _, record := range []map[string]any{started, completed} {
		if record["method"] != http.MethodGet || record["path"] != "/timeline" {
			t.Fatalf("missing request attributes: %v", record)
		}
		if _, ok := record["request_id"]; !ok {
			t.Fatalf("missing request_id: %v", record)
		}
	}
	if _, ok := completed["duration"]; !ok {
		t.Fatalf("completion line lacks duration: %v", completed)
	}
}

func TestRequestLoggerAssignsSequentialIDs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))
	handler := apihttp.RequestLogger(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/students", nil))
	}

	ids := make(map[float64]bool)
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var record map[string]any
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			t.Fatalf("decode log line %q: %v", line, err)
		}
		if id, ok := record["request_id"].(float64); ok {
			ids[id] = true
		}
	}
	if len(ids) != 2 {
		t.Fatalf("expected two distinct request IDs, got %v", ids)
	}
}
