package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"disinfowatch/internal/common"
	"disinfowatch/internal/config"
	"disinfowatch/internal/inference"
	"disinfowatch/internal/jobs"
	"disinfowatch/internal/labels"
	"disinfowatch/internal/review"
	"disinfowatch/internal/schedule"
)

type fakeJobs struct {
	startOK  bool
	startMsg string
	endOK    bool
	endMsg   string

	gotName    string
	gotCommand string
}

func (f *fakeJobs) Start(name, command string) (bool, string) {
	f.gotName, f.gotCommand = name, command
	return f.startOK, f.startMsg
}

func (f *fakeJobs) End(name string) (bool, string) {
	f.gotName = name
	return f.endOK, f.endMsg
}

func (f *fakeJobs) Status() (map[string]jobs.Record, error) {
	return map[string]jobs.Record{"inference": {Status: jobs.StatusRunning, PID: 42}}, nil
}

func testService(t *testing.T, fj *fakeJobs) *Service {
	t.Helper()
	dir := t.TempDir()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("default config: %v", err)
	}

	processed := filepath.Join(dir, "processed")
	return &Service{
		Log:      log,
		Cfg:      cfg,
		Jobs:     fj,
		Schedule: schedule.NewStore(filepath.Join(dir, "scheduler_config.json")),
		Queue:    review.NewQueue(log, filepath.Join(dir, "review_queue.jsonl")),
		Labels:   labels.NewStore(log, filepath.Join(dir, "manual_labels.jsonl")),
		InfLog:   inference.NewLog(log, filepath.Join(dir, "inference_log.jsonl"), processed),
	}
}

func doRequest(t *testing.T, svc *Service, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if key := svc.Cfg.Server.APIKey; key != "" {
		req.Header.Set(common.HeaderAPIKey, key)
	}
	rec := httptest.NewRecorder()
	svc.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	svc := testService(t, &fakeJobs{})
	rec := doRequest(t, svc, http.MethodGet, common.PathHealthz, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz returned %d", rec.Code)
	}
}

func TestJobStart_DefaultCommandAndConflict(t *testing.T) {
	fj := &fakeJobs{startOK: true, startMsg: "Started job inference (PID 42)"}
	svc := testService(t, fj)

	rec := doRequest(t, svc, http.MethodPost, common.PathJobs+"/inference/start", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("start returned %d: %s", rec.Code, rec.Body)
	}
	if fj.gotName != "inference" {
		t.Fatalf("wrong job name: %q", fj.gotName)
	}
	if fj.gotCommand != svc.Cfg.Scheduler.Command("inference") {
		t.Fatalf("default command not applied: %q", fj.gotCommand)
	}

	fj.startOK, fj.startMsg = false, "Job already running"
	rec = doRequest(t, svc, http.MethodPost, common.PathJobs+"/inference/start", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("refused start should be 409, got %d", rec.Code)
	}
	var resp controlResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.OK || resp.Message != "Job already running" {
		t.Fatalf("failure message must pass through verbatim: %+v", resp)
	}
}

func TestJobStart_ExplicitCommand(t *testing.T) {
	fj := &fakeJobs{startOK: true, startMsg: "ok"}
	svc := testService(t, fj)

	rec := doRequest(t, svc, http.MethodPost, common.PathJobs+"/custom/start", `{"command":"bin/other --flag"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("start returned %d", rec.Code)
	}
	if fj.gotCommand != "bin/other --flag" {
		t.Fatalf("explicit command ignored: %q", fj.gotCommand)
	}
}

func TestJobEnd_NoRunningJob(t *testing.T) {
	fj := &fakeJobs{endOK: false, endMsg: "No running job found"}
	svc := testService(t, fj)

	rec := doRequest(t, svc, http.MethodPost, common.PathJobs+"/ghost/end", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No running job found") {
		t.Fatalf("message missing: %s", rec.Body)
	}
}

func TestJobStatus(t *testing.T) {
	svc := testService(t, &fakeJobs{})
	rec := doRequest(t, svc, http.MethodGet, common.PathJobs, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status returned %d", rec.Code)
	}
	var resp struct {
		Jobs map[string]jobs.Record `json:"jobs"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Jobs["inference"].PID != 42 {
		t.Fatalf("unexpected status payload: %+v", resp.Jobs)
	}
}

func TestSchedulePut_ClampsIntervalAndPersists(t *testing.T) {
	svc := testService(t, &fakeJobs{})

	rec := doRequest(t, svc, http.MethodPut, common.PathSchedule+"/active_learning",
		`{"enabled":true,"interval_minutes":5}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("put returned %d: %s", rec.Code, rec.Body)
	}

	entries, err := svc.Schedule.Load()
	if err != nil {
		t.Fatalf("load schedule: %v", err)
	}
	entry := entries["active_learning"]
	if !entry.Enabled || entry.IntervalMinutes != common.MinIntervalMinutes {
		t.Fatalf("interval not clamped to operator minimum: %+v", entry)
	}

	rec = doRequest(t, svc, http.MethodPut, common.PathSchedule+"/active_learning",
		`{"enabled":true,"interval_minutes":99999}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("put returned %d", rec.Code)
	}
	entries, _ = svc.Schedule.Load()
	if entries["active_learning"].IntervalMinutes != common.MaxIntervalMinutes {
		t.Fatalf("interval not clamped to operator maximum: %+v", entries["active_learning"])
	}
}

func TestScheduleGet(t *testing.T) {
	svc := testService(t, &fakeJobs{})
	if err := svc.Schedule.SetTask("inference", schedule.Entry{Enabled: true, IntervalMinutes: 60}); err != nil {
		t.Fatalf("seed schedule: %v", err)
	}
	rec := doRequest(t, svc, http.MethodGet, common.PathSchedule, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get returned %d", rec.Code)
	}
	var entries map[string]schedule.Entry
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if entries["inference"].IntervalMinutes != 60 {
		t.Fatalf("unexpected schedule: %+v", entries)
	}
}

func TestReviewQueue_EmptyAndPopulated(t *testing.T) {
	svc := testService(t, &fakeJobs{})

	rec := doRequest(t, svc, http.MethodGet, common.PathReviewQueue, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get returned %d", rec.Code)
	}
	var resp struct {
		Items []review.Item `json:"items"`
		Count int           `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 0 || resp.Items == nil {
		t.Fatalf("empty queue should be [] with count 0: %s", rec.Body)
	}

	if err := svc.Queue.Write([]review.Item{{File: "a.json", Uncertainty: 0.9, Type: "article"}}); err != nil {
		t.Fatalf("write queue: %v", err)
	}
	rec = doRequest(t, svc, http.MethodGet, common.PathReviewQueue, "")
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 1 || resp.Items[0].File != "a.json" {
		t.Fatalf("unexpected queue payload: %s", rec.Body)
	}
}

func TestLabelCreate_ValidationAndPersistence(t *testing.T) {
	svc := testService(t, &fakeJobs{})

	rec := doRequest(t, svc, http.MethodPost, common.PathLabels, `{"id":"a.json","label":"Disinformation"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create returned %d: %s", rec.Code, rec.Body)
	}

	rec = doRequest(t, svc, http.MethodPost, common.PathLabels, `{"id":"a.json","label":"Bogus"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown label should be 400, got %d", rec.Code)
	}
	rec = doRequest(t, svc, http.MethodPost, common.PathLabels, `{"label":"Legit"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing id should be 400, got %d", rec.Code)
	}

	all, err := svc.Labels.LoadAll()
	if err != nil {
		t.Fatalf("load labels: %v", err)
	}
	if all["a.json"].Label != common.LabelDisinformation {
		t.Fatalf("label not persisted: %+v", all)
	}
}

func TestInferenceLog_FiltersAndExport(t *testing.T) {
	svc := testService(t, &fakeJobs{})
	entries := []inference.Entry{
		{File: "a.json", Type: "article", Result: inference.Result{Confidence: 0.9, Flagged: true, Reason: "High named entity density"}},
		{File: "b.json", Type: "tweet", Result: inference.Result{Confidence: 0.1, Flagged: false, Reason: "Normal content"}},
	}
	for _, e := range entries {
		if err := svc.InfLog.Append(e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	rec := doRequest(t, svc, http.MethodGet, common.PathInference+"/log?flagged=true&min_confidence=0.5", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("log returned %d: %s", rec.Code, rec.Body)
	}
	var resp struct {
		Count   int `json:"count"`
		Entries []struct {
			File string `json:"file"`
		} `json:"entries"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 1 || resp.Entries[0].File != "a.json" {
		t.Fatalf("filter mismatch: %s", rec.Body)
	}

	rec = doRequest(t, svc, http.MethodGet, common.PathInference+"/log?days_back=oops", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad days_back should be 400, got %d", rec.Code)
	}

	rec = doRequest(t, svc, http.MethodGet, common.PathInference+"/export.csv", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("export returned %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != common.ContentTypeCSV {
		t.Fatalf("wrong content type: %q", got)
	}
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 3 || lines[0] != "file,type,flagged,confidence,reason" {
		t.Fatalf("unexpected csv: %q", rec.Body.String())
	}
}

func TestAPIKey_Enforced(t *testing.T) {
	svc := testService(t, &fakeJobs{})
	svc.Cfg.Server.APIKey = "sekret"

	req := httptest.NewRequest(http.MethodGet, common.PathJobs, nil)
	rec := httptest.NewRecorder()
	svc.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing key should be 401, got %d", rec.Code)
	}

	req.Header.Set(common.HeaderAPIKey, "sekret")
	rec = httptest.NewRecorder()
	svc.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("valid key should pass, got %d", rec.Code)
	}

	// Probes stay open.
	rec = httptest.NewRecorder()
	svc.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, common.PathHealthz, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz should not require a key, got %d", rec.Code)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := recoveryMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("panic should map to 500, got %d", rec.Code)
	}
}
