package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/avolokh/cfp-comb/app/conference"
	"github.com/avolokh/cfp-comb/app/database"
	"github.com/avolokh/cfp-comb/app/listing"
	"github.com/avolokh/cfp-comb/app/tasks"
)

const testAPIKey = "test-api-key"

// stubScheduler records enqueued tasks instead of running them.
type stubScheduler struct {
	mu    sync.Mutex
	tasks []tasks.TaskInterface
}

func (s *stubScheduler) Start() {}
func (s *stubScheduler) Stop()  {}

func (s *stubScheduler) EnqueueTask(task tasks.TaskInterface) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, task)
	return nil
}

func (s *stubScheduler) Enqueued() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

func newTestServer(t *testing.T) (*gin.Engine, *database.DB, *stubScheduler) {
	t.Helper()

	db, err := database.NewConnection(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := database.RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	listings := listing.NewCache(t.TempDir())
	if err := listings.Run(); err != nil {
		t.Fatalf("Failed to load listings: %v", err)
	}

	scheduler := &stubScheduler{}
	handler := NewHandler(
		database.NewConferenceRepository(db),
		database.NewCFPRepository(db),
		database.NewImportantDateRepository(db),
		listings,
		conference.NewReconciler(db),
		scheduler,
	)

	return NewServer(handler, testAPIKey), db, scheduler
}

func aaaiBody(t *testing.T) []byte {
	t.Helper()

	body, err := json.Marshal(map[string]string{
		"Name":              "National Conference of the American Association for Artificial Intelligence",
		"Acronym":           "AAAI",
		"Link":              "https://aaai.org/conference/aaai/aaai-25/",
		"Location":          "Philadelphia, Pennsylvania, USA",
		"Type":              "Offline (in-person)",
		"Conference dates":  "February 25 – March 4, 2025",
		"Submission date":   "Full papers due: August 15, 2024",
		"Notification date": "Notification of final acceptance or rejection: December 9, 2024",
	})
	if err != nil {
		t.Fatalf("Failed to marshal body: %v", err)
	}
	return body
}

func TestIngestConferenceRequiresAPIKey(t *testing.T) {
	router, _, _ := newTestServer(t)

	req := httptest.NewRequest("POST", "/api/conferences", bytes.NewReader(aaaiBody(t)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}
}

func TestIngestConferenceRejectsWrongKey(t *testing.T) {
	router, _, _ := newTestServer(t)

	req := httptest.NewRequest("POST", "/api/conferences", bytes.NewReader(aaaiBody(t)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", "wrong-key")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}
}

func TestIngestConferenceWritesRows(t *testing.T) {
	router, db, _ := newTestServer(t)

	req := httptest.NewRequest("POST", "/api/conferences", bytes.NewReader(aaaiBody(t)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", testAPIKey)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Conference struct {
			Acronym string `json:"acronym"`
		} `json:"conference"`
		CFP struct {
			StartDate string `json:"start_date"`
			EndDate   string `json:"end_date"`
		} `json:"cfp"`
		CFPCreated     bool                     `json:"cfp_created"`
		ImportantDates []map[string]interface{} `json:"important_dates"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if resp.Conference.Acronym != "AAAI" {
		t.Errorf("Expected acronym AAAI, got %s", resp.Conference.Acronym)
	}
	if resp.CFP.StartDate != "2025-02-25" || resp.CFP.EndDate != "2025-03-04" {
		t.Errorf("Expected dates 2025-02-25/2025-03-04, got %s/%s", resp.CFP.StartDate, resp.CFP.EndDate)
	}
	if !resp.CFPCreated {
		t.Error("Expected cfp_created to be true")
	}
	if len(resp.ImportantDates) != 2 {
		t.Errorf("Expected 2 important dates, got %d", len(resp.ImportantDates))
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM conferences").Scan(&count); err != nil {
		t.Fatalf("Failed to count conferences: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 conference row, got %d", count)
	}
}

func TestIngestConferenceRejectsBadDates(t *testing.T) {
	router, db, _ := newTestServer(t)

	body, _ := json.Marshal(map[string]string{
		"Name":             "Broken Conference",
		"Acronym":          "BRK",
		"Conference dates": "sometime next spring",
	})

	req := httptest.NewRequest("POST", "/api/conferences", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", testAPIKey)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected status 422, got %d", w.Code)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM conferences").Scan(&count); err != nil {
		t.Fatalf("Failed to count conferences: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected no conference rows after failed ingest, got %d", count)
	}
}

func TestIngestConferenceRejectsIncompleteRecord(t *testing.T) {
	router, _, _ := newTestServer(t)

	body, _ := json.Marshal(map[string]string{"Name": "No Acronym Conference"})

	req := httptest.NewRequest("POST", "/api/conferences", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", testAPIKey)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestGetConference(t *testing.T) {
	router, _, _ := newTestServer(t)

	req := httptest.NewRequest("POST", "/api/conferences", bytes.NewReader(aaaiBody(t)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", testAPIKey)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Failed to seed conference: status %d", w.Code)
	}

	req = httptest.NewRequest("GET", "/conferences/AAAI", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var resp struct {
		Acronym string `json:"acronym"`
		CFPs    []struct {
			ImportantDates []map[string]interface{} `json:"important_dates"`
		} `json:"call_for_papers"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if resp.Acronym != "AAAI" {
		t.Errorf("Expected acronym AAAI, got %s", resp.Acronym)
	}
	if len(resp.CFPs) != 1 {
		t.Fatalf("Expected 1 CFP, got %d", len(resp.CFPs))
	}
	if len(resp.CFPs[0].ImportantDates) != 2 {
		t.Errorf("Expected 2 important dates, got %d", len(resp.CFPs[0].ImportantDates))
	}
}

func TestGetConferenceNotFound(t *testing.T) {
	router, _, _ := newTestServer(t)

	req := httptest.NewRequest("GET", "/conferences/NOPE", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestListConferences(t *testing.T) {
	router, _, _ := newTestServer(t)

	req := httptest.NewRequest("POST", "/api/conferences", bytes.NewReader(aaaiBody(t)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", testAPIKey)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Failed to seed conference: status %d", w.Code)
	}

	req = httptest.NewRequest("GET", "/conferences", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var resp struct {
		Conferences []map[string]interface{} `json:"conferences"`
		Total       int                      `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Total != 1 {
		t.Errorf("Expected total 1, got %d", resp.Total)
	}
}

func TestReconcileListingQueuesTask(t *testing.T) {
	db, err := database.NewConnection(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if _, _, err := database.RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	dir := t.TempDir()
	yml := `conference:
  name: "Example Conference"
  acronym: "EXC"
  dates: "March 1 – March 3, 2026"
deadlines:
  submission: "Papers due: October 1, 2025"
`
	if err := os.WriteFile(filepath.Join(dir, "exc.yml"), []byte(yml), 0o644); err != nil {
		t.Fatalf("Failed to write listing: %v", err)
	}

	listings := listing.NewCache(dir)
	if err := listings.Run(); err != nil {
		t.Fatalf("Failed to load listings: %v", err)
	}

	scheduler := &stubScheduler{}
	handler := NewHandler(
		database.NewConferenceRepository(db),
		database.NewCFPRepository(db),
		database.NewImportantDateRepository(db),
		listings,
		conference.NewReconciler(db),
		scheduler,
	)
	router := NewServer(handler, testAPIKey)

	req := httptest.NewRequest("POST", "/api/listings/exc/reconcile", nil)
	req.Header.Set("X-API-Key", testAPIKey)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("Expected status 202, got %d: %s", w.Code, w.Body.String())
	}
	if scheduler.Enqueued() != 1 {
		t.Errorf("Expected 1 enqueued task, got %d", scheduler.Enqueued())
	}
}

func TestReconcileListingNotFound(t *testing.T) {
	router, _, _ := newTestServer(t)

	req := httptest.NewRequest("POST", "/api/listings/missing/reconcile", nil)
	req.Header.Set("X-API-Key", testAPIKey)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestGetHealth(t *testing.T) {
	router, _, _ := newTestServer(t)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if _, ok := resp["timestamp"]; !ok {
		t.Error("Expected timestamp in health response")
	}
}

func TestGetStats(t *testing.T) {
	router, _, _ := newTestServer(t)

	req := httptest.NewRequest("GET", "/stats", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if v, ok := resp["conferences"].(float64); !ok || v != 0 {
		t.Errorf("Expected 0 conferences in stats, got %v", resp["conferences"])
	}
}
