package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	apihttp "github.com/example/tutor-scheduler/internal/http"
	"github.com/example/tutor-scheduler/internal/testfixtures"
)

type testAPI struct {
	handler http.Handler
	store   *testfixtures.MemoryStore
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	store := testfixtures.NewMemoryStore()
	factory := testfixtures.NewServiceFactory()
	timeline := factory.NewTimelineService(store, store)

	handler := apihttp.NewRouter(apihttp.RouterConfig{
		Students: apihttp.NewStudentHandler(factory.NewStudentService(store), nil),
		Lessons:  apihttp.NewLessonHandler(factory.NewLessonService(store, store), timeline, nil),
		Rules:    apihttp.NewRuleHandler(factory.NewRuleService(store, store), timeline, nil),
		Timeline: apihttp.NewTimelineHandler(timeline, nil),
		Progress: apihttp.NewProgressHandler(factory.NewProgressService(store, store), nil),
	})
	return &testAPI{handler: handler, store: store}
}

func (a *testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, into any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), into); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func (a *testAPI) createStudent(t *testing.T) string {
	t.Helper()

	rec := a.do(t, http.MethodPost, "/students", map[string]any{
		"first_name":       "Maria",
		"last_name":        "Papadopoulou",
		"phone":            "+30-6912345678",
		"default_duration": 40,
		"default_price":    20,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create student returned %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Student struct {
			ID string `json:"id"`
		} `json:"student"`
	}
	decodeBody(t, rec, &resp)
	return resp.Student.ID
}

func TestStudentLifecycle(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)
	id := api.createStudent(t)

	rec := api.do(t, http.MethodGet, "/students/"+id, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get student returned %d", rec.Code)
	}

	rec = api.do(t, http.MethodPut, "/students/"+id, map[string]any{
		"first_name":       "Maria",
		"last_name":        "Papadopoulou",
		"phone":            "+30-6900000000",
		"default_duration": 60,
		"default_price":    25,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update student returned %d: %s", rec.Code, rec.Body.String())
	}

	rec = api.do(t, http.MethodDelete, "/students/"+id, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete student returned %d", rec.Code)
	}

	rec = api.do(t, http.MethodGet, "/students/"+id, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for deleted student, got %d", rec.Code)
	}
}

func TestStudentValidationReturnsFieldErrors(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)
	rec := api.do(t, http.MethodPost, "/students", map[string]any{"last_name": "Nguyen"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Errors map[string]string `json:"errors"`
	}
	decodeBody(t, rec, &resp)
	if _, ok := resp.Errors["first_name"]; !ok {
		t.Fatalf("expected first_name field error, got %v", resp.Errors)
	}
}

func TestLessonBookingAndPayment(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)
	studentID := api.createStudent(t)

	rec := api.do(t, http.MethodPost, "/lessons", map[string]any{
		"student_id": studentID,
		"starts_at":  "2025-10-08T16:00:00Z",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create lesson returned %d: %s", rec.Code, rec.Body.String())
	}

	var created struct {
		Lesson struct {
			ID            string  `json:"id"`
			Price         float64 `json:"price"`
			PaymentStatus string  `json:"payment_status"`
		} `json:"lesson"`
	}
	decodeBody(t, rec, &created)
	if created.Lesson.PaymentStatus != "pending" {
		t.Fatalf("expected pending lesson, got %q", created.Lesson.PaymentStatus)
	}
	if created.Lesson.Price != 20 {
		t.Fatalf("expected default price applied, got %v", created.Lesson.Price)
	}

	// Same student, same instant: conflict.
	rec = api.do(t, http.MethodPost, "/lessons", map[string]any{
		"student_id": studentID,
		"starts_at":  "2025-10-08T16:00:00Z",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for double booking, got %d", rec.Code)
	}

	rec = api.do(t, http.MethodPut, "/lessons/"+created.Lesson.ID+"/payment", map[string]any{
		"payment_status": "paid",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("payment update returned %d: %s", rec.Code, rec.Body.String())
	}

	rec = api.do(t, http.MethodPut, "/lessons/"+created.Lesson.ID+"/payment", map[string]any{
		"payment_status": "refunded",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for unknown status, got %d", rec.Code)
	}
}

func TestTimelineAndMaterializeEndpoints(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)
	studentID := api.createStudent(t)

	rec := api.do(t, http.MethodPost, "/rules", map[string]any{
		"student_id": studentID,
		"weekday":    3,
		"start_time": "16:00",
		"starts_on":  "2025-10-01T00:00:00Z",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create rule returned %d: %s", rec.Code, rec.Body.String())
	}

	window := "from=2025-10-01T00:00:00Z&to=2025-10-31T23:59:59Z"
	rec = api.do(t, http.MethodGet, "/timeline?"+window, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("timeline returned %d: %s", rec.Code, rec.Body.String())
	}

	var timeline struct {
		Entries []struct {
			ID          string `json:"id"`
			IsGenerated bool   `json:"is_generated"`
		} `json:"entries"`
	}
	decodeBody(t, rec, &timeline)
	if len(timeline.Entries) != 5 {
		t.Fatalf("expected 5 October Wednesdays, got %d", len(timeline.Entries))
	}
	for _, entry := range timeline.Entries {
		if !entry.IsGenerated {
			t.Fatalf("expected generated entry, got %+v", entry)
		}
	}

	rec = api.do(t, http.MethodPost, "/materialize?"+window, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("materialize returned %d: %s", rec.Code, rec.Body.String())
	}
	var result struct {
		Created int `json:"created"`
		Skipped int `json:"skipped"`
	}
	decodeBody(t, rec, &result)
	if result.Created != 5 {
		t.Fatalf("expected 5 created, got %+v", result)
	}

	// A second run finds everything persisted already.
	rec = api.do(t, http.MethodPost, "/materialize?"+window, nil)
	decodeBody(t, rec, &result)
	if result.Created != 0 {
		t.Fatalf("expected idempotent rerun, got %+v", result)
	}

	rec = api.do(t, http.MethodGet, "/payments/summary?"+window, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("payments summary returned %d: %s", rec.Code, rec.Body.String())
	}
	var summary struct {
		Total       int     `json:"total"`
		Pending     int     `json:"pending"`
		TotalAmount float64 `json:"total_amount"`
	}
	decodeBody(t, rec, &summary)
	if summary.Total != 5 || summary.Pending != 5 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.TotalAmount != 100 {
		t.Fatalf("expected 5 x 20 pending amount, got %v", summary.TotalAmount)
	}
}

func TestTimelineRequiresRange(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)
	rec := api.do(t, http.MethodGet, "/timeline", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without range, got %d", rec.Code)
	}
}

func TestProgressEndpoints(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)
	studentID := api.createStudent(t)

	rec := api.do(t, http.MethodPost, fmt.Sprintf("/students/%s/progress", studentID), map[string]any{
		"recorded_on": "2025-10-08T00:00:00Z",
		"notes":       "started sight reading",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create progress returned %d: %s", rec.Code, rec.Body.String())
	}
	var created struct {
		Entry struct {
			ID string `json:"id"`
		} `json:"entry"`
	}
	decodeBody(t, rec, &created)

	rec = api.do(t, http.MethodGet, fmt.Sprintf("/students/%s/progress", studentID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list progress returned %d", rec.Code)
	}

	rec = api.do(t, http.MethodPut, "/progress/"+created.Entry.ID, map[string]any{
		"recorded_on": "2025-10-08T00:00:00Z",
		"notes":       "sight reading fluent",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update progress returned %d: %s", rec.Code, rec.Body.String())
	}

	rec = api.do(t, http.MethodDelete, "/progress/"+created.Entry.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete progress returned %d", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)
	rec := api.do(t, http.MethodPatch, "/students", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); allow == "" {
		t.Fatal("expected Allow header on 405 response")
	}
}

func TestStudentSubResources(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)
	studentID := api.createStudent(t)

	rec := api.do(t, http.MethodPost, "/rules", map[string]any{
		"student_id": studentID,
		"weekday":    1,
		"start_time": "10:00",
		"starts_on":  "2025-10-01T00:00:00Z",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create rule returned %d: %s", rec.Code, rec.Body.String())
	}

	rec = api.do(t, http.MethodGet, fmt.Sprintf("/students/%s/rules", studentID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("student rules returned %d", rec.Code)
	}
	var rules struct {
		Rules []struct {
			ID string `json:"id"`
		} `json:"rules"`
	}
	decodeBody(t, rec, &rules)
	if len(rules.Rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules.Rules))
	}

	rec = api.do(t, http.MethodGet, fmt.Sprintf("/students/%s/lessons", studentID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("student lessons returned %d", rec.Code)
	}
}
