// Package server exposes the dashboard API: job control, schedule edits,
// the review queue, manual labels, and filtered views of the inference log.
package server

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"disinfowatch/internal/common"
	"disinfowatch/internal/config"
	"disinfowatch/internal/inference"
	"disinfowatch/internal/jobs"
	"disinfowatch/internal/labels"
	"disinfowatch/internal/review"
	"disinfowatch/internal/schedule"
	"disinfowatch/internal/telemetry"
)

// JobControl is the job controller surface the API depends on.
type JobControl interface {
	Start(name, command string) (ok bool, message string)
	End(name string) (ok bool, message string)
	Status() (map[string]jobs.Record, error)
}

// Service bundles the collaborators the handlers need.
type Service struct {
	Log      *slog.Logger
	Cfg      *config.Config
	Jobs     JobControl
	Schedule *schedule.Store
	Queue    *review.Queue
	Labels   *labels.Store
	InfLog   *inference.Log
}

// NewHTTPServer builds the http.Server with routes and middleware.
func NewHTTPServer(svc *Service) *http.Server {
	return &http.Server{
		Addr:         svc.Cfg.Server.Addr,
		Handler:      svc.Router(),
		ReadTimeout:  svc.Cfg.Server.ReadTimeout,
		WriteTimeout: svc.Cfg.Server.WriteTimeout,
		IdleTimeout:  svc.Cfg.Server.IdleTimeout,
	}
}

// Router builds the HTTP router. Health and metrics stay outside the API key
// check so probes and scrapers need no credentials.
func (svc *Service) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(loggingMiddleware(svc.Log), recoveryMiddleware)

	r.Get(common.PathHealthz, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Mount(common.PathMetrics, telemetry.Handler())

	r.Group(func(r chi.Router) {
		r.Use(svc.apiKeyMiddleware)

		r.Get(common.PathJobs, svc.handleJobStatus)
		r.Post(common.PathJobs+"/{name}/start", svc.handleJobStart)
		r.Post(common.PathJobs+"/{name}/end", svc.handleJobEnd)

		r.Get(common.PathSchedule, svc.handleScheduleGet)
		r.Put(common.PathSchedule+"/{task}", svc.handleSchedulePut)

		r.Get(common.PathReviewQueue, svc.handleReviewQueue)

		r.Post(common.PathLabels, svc.handleLabelCreate)
		r.Get(common.PathLabels, svc.handleLabelList)

		r.Get(common.PathInference+"/log", svc.handleInferenceLog)
		r.Get(common.PathInference+"/export.csv", svc.handleInferenceExport)
	})
	return r
}

func (svc *Service) handleJobStatus(w http.ResponseWriter, _ *http.Request) {
	records, err := svc.Jobs.Status()
	if err != nil {
		svc.Log.Error("job status read failed", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobs": records})
}

type startRequest struct {
	Command string `json:"command"`
}

type controlResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

func (svc *Service) handleJobStart(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	command := strings.TrimSpace(req.Command)
	if command == "" {
		command = svc.Cfg.Scheduler.Command(name)
	}

	ok, message := svc.Jobs.Start(name, command)
	status := http.StatusOK
	if !ok {
		// The operator needs the exact reason a start was refused.
		status = http.StatusConflict
	}
	writeJSON(w, status, controlResponse{OK: ok, Message: message})
}

func (svc *Service) handleJobEnd(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	ok, message := svc.Jobs.End(name)
	status := http.StatusOK
	if !ok {
		status = http.StatusConflict
	}
	writeJSON(w, status, controlResponse{OK: ok, Message: message})
}

func (svc *Service) handleScheduleGet(w http.ResponseWriter, _ *http.Request) {
	entries, err := svc.Schedule.Load()
	if err != nil {
		svc.Log.Error("schedule read failed", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (svc *Service) handleSchedulePut(w http.ResponseWriter, r *http.Request) {
	task := chi.URLParam(r, "task")

	var entry schedule.Entry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	// The store tolerates any positive interval; the operator-facing range
	// is enforced here at the edge.
	if entry.IntervalMinutes < common.MinIntervalMinutes {
		entry.IntervalMinutes = common.MinIntervalMinutes
	}
	if entry.IntervalMinutes > common.MaxIntervalMinutes {
		entry.IntervalMinutes = common.MaxIntervalMinutes
	}

	if err := svc.Schedule.SetTask(task, entry); err != nil {
		svc.Log.Error("schedule write failed", "task", task, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]schedule.Entry{task: entry})
}

func (svc *Service) handleReviewQueue(w http.ResponseWriter, _ *http.Request) {
	items, err := svc.Queue.Read()
	if err != nil {
		svc.Log.Error("review queue read failed", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []review.Item{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

type labelRequest struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

func (svc *Service) handleLabelCreate(w http.ResponseWriter, r *http.Request) {
	var req labelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.ID) == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}
	if !common.ValidLabel(req.Label) {
		http.Error(w, "unknown label", http.StatusBadRequest)
		return
	}
	if err := svc.Labels.Append(req.ID, req.Label); err != nil {
		svc.Log.Error("label write failed", "id", req.ID, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": req.ID, "label": req.Label})
}

func (svc *Service) handleLabelList(w http.ResponseWriter, _ *http.Request) {
	entries, err := svc.Labels.Entries()
	if err != nil {
		svc.Log.Error("label read failed", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []labels.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"labels": entries, "count": len(entries)})
}

type inferenceEntryOut struct {
	File     string           `json:"file"`
	Type     string           `json:"type"`
	Result   inference.Result `json:"result"`
	LoggedAt *time.Time       `json:"logged_at,omitempty"`
}

func (svc *Service) handleInferenceLog(w http.ResponseWriter, r *http.Request) {
	entries, err := svc.filteredInference(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	out := make([]inferenceEntryOut, 0, len(entries))
	for _, e := range entries {
		item := inferenceEntryOut{File: e.File, Type: e.Type, Result: e.Result}
		if !e.LoggedAt.IsZero() {
			t := e.LoggedAt
			item.LoggedAt = &t
		}
		out = append(out, item)
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": out, "count": len(out)})
}

func (svc *Service) handleInferenceExport(w http.ResponseWriter, r *http.Request) {
	entries, err := svc.filteredInference(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", common.ContentTypeCSV)
	w.Header().Set("Content-Disposition", `attachment; filename="inference_log.csv"`)

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"file", "type", "flagged", "confidence", "reason"})
	for _, e := range entries {
		_ = cw.Write([]string{
			e.File,
			e.Type,
			strconv.FormatBool(e.Result.Flagged),
			strconv.FormatFloat(e.Result.Confidence, 'f', -1, 64),
			e.Result.Reason,
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		svc.Log.Error("csv export failed", "err", err)
	}
}

// filteredInference loads the inference log and applies the query filters
// shared by the JSON and CSV views. A read failure degrades to an empty
// listing rather than failing the view.
func (svc *Service) filteredInference(r *http.Request) ([]inference.Entry, error) {
	entries, err := svc.InfLog.Load()
	if err != nil {
		svc.Log.Error("inference log read failed", "err", err)
		entries = nil
	}

	q := r.URL.Query()
	f := inference.NewFilter(entries)

	if v := q.Get("days_back"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			return nil, errors.New("days_back must be an integer")
		}
		f = f.ByDaysBack(days)
	}
	f = f.ByType(q.Get("type"))
	if v := q.Get("flagged"); v != "" {
		flagged, err := strconv.ParseBool(v)
		if err != nil {
			return nil, errors.New("flagged must be a boolean")
		}
		f = f.FlaggedOnly(flagged)
	}
	if v := q.Get("min_confidence"); v != "" {
		min, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, errors.New("min_confidence must be a number")
		}
		f = f.MinConfidence(min)
	}
	return f.Entries(), nil
}

func (svc *Service) apiKeyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if key := strings.TrimSpace(svc.Cfg.Server.APIKey); key != "" {
			if r.Header.Get(common.HeaderAPIKey) != key {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", common.ContentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func loggingMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &writeWrap{ResponseWriter: w, code: http.StatusOK}
			next.ServeHTTP(ww, r)
			log.Info("http",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.code,
				"duration", time.Since(start).String(),
				"remote", r.RemoteAddr)
		})
	}
}

type writeWrap struct {
	http.ResponseWriter
	code int
}

func (w *writeWrap) WriteHeader(statusCode int) {
	w.code = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
