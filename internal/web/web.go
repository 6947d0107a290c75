// Package web exposes the HTTP API: schedule CRUD, calendar grids,
// categories and tags, export and import.
package web

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"linecal/internal/config"
	"linecal/internal/dateutil"
	"linecal/internal/export"
	"linecal/internal/log"
	"linecal/internal/model"
	"linecal/internal/report"
	"linecal/internal/repository"
	"linecal/internal/scheduler"
	"linecal/internal/session"
	"linecal/internal/view"
)

const maxImportBytes = 10 << 20

// Server provides the HTTP API over one user's repositories. The
// repositories are not safe for concurrent use, so every handler runs
// under a single lock.
type Server struct {
	cfg *config.Config
	mux *http.ServeMux

	mu         sync.Mutex
	sess       *session.Session
	schedules  *repository.ScheduleRepository
	categories *repository.CategoryRepository
	prefs      *repository.PrefsRepository
	viewState  *view.State
	reminders  *scheduler.Scheduler
	exporter   *export.Exporter
}

// Deps bundles the server's collaborators.
type Deps struct {
	Session    *session.Session
	Schedules  *repository.ScheduleRepository
	Categories *repository.CategoryRepository
	Prefs      *repository.PrefsRepository
	View       *view.State
	Reminders  *scheduler.Scheduler
	Exporter   *export.Exporter
}

func NewServer(cfg *config.Config, deps Deps) *Server {
	s := &Server{
		cfg:        cfg,
		mux:        http.NewServeMux(),
		sess:       deps.Session,
		schedules:  deps.Schedules,
		categories: deps.Categories,
		prefs:      deps.Prefs,
		viewState:  deps.View,
		reminders:  deps.Reminders,
		exporter:   deps.Exporter,
	}
	s.registerRoutes()
	return s
}

// Handler returns the routing handler, wrapped with basic auth when
// configured.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		log.Info("http basic auth enabled", "listen", s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// ReconcileReminders re-arms every timer under the server lock. The cron
// jobs share the repositories with the HTTP handlers, so background work
// has to go through here.
func (s *Server) ReconcileReminders() scheduler.Results {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reminders.ReconcileAll(s.schedules.All())
}

// DailySummary builds the digest text under the server lock.
func (s *Server) DailySummary(now time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return report.DailySummary(s.schedules.Today(), s.schedules.Upcoming(), s.categories, now)
}

func (s *Server) basicAuthEnabled() bool {
	ba := s.cfg.BasicAuth
	return ba != nil && ba.Username != "" && ba.Password != ""
}

// basicAuthMiddleware guards every endpoint except /health.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}
		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="linecal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.mux.HandleFunc("GET /api/schedules", s.handleListSchedules)
	s.mux.HandleFunc("POST /api/schedules", s.handleCreateSchedule)
	s.mux.HandleFunc("GET /api/schedules/{id}", s.handleGetSchedule)
	s.mux.HandleFunc("PATCH /api/schedules/{id}", s.handleUpdateSchedule)
	s.mux.HandleFunc("DELETE /api/schedules/{id}", s.handleDeleteSchedule)
	s.mux.HandleFunc("POST /api/schedules/{id}/toggle", s.handleToggleSchedule)

	s.mux.HandleFunc("GET /api/grid", s.handleGrid)
	s.mux.HandleFunc("GET /api/categories", s.handleCategories)
	s.mux.HandleFunc("POST /api/tags", s.handleAddTag)
	s.mux.HandleFunc("DELETE /api/tags/{tag}", s.handleRemoveTag)

	s.mux.HandleFunc("GET /api/export", s.handleExport)
	s.mux.HandleFunc("POST /api/import", s.handleImport)
	s.mux.HandleFunc("GET /api/stats", s.handleStats)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleListSchedules returns active schedules, optionally filtered.
//
// GET /api/schedules?category=work&q=meeting
// GET /api/schedules?date=2026-08-31
// GET /api/schedules?from=2026-08-01&to=2026-08-31
func (s *Server) handleListSchedules(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := r.URL.Query()
	if dateStr := q.Get("date"); dateStr != "" {
		d, err := dateutil.ParseDate(dateStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date")
			return
		}
		writeJSON(w, http.StatusOK, s.schedules.ByDate(d))
		return
	}
	if from, to := q.Get("from"), q.Get("to"); from != "" && to != "" {
		lo, err := dateutil.ParseDate(from)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid from date")
			return
		}
		hi, err := dateutil.ParseDate(to)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid to date")
			return
		}
		writeJSON(w, http.StatusOK, s.schedules.ByRange(lo, hi))
		return
	}
	writeJSON(w, http.StatusOK, s.schedules.Filtered(q.Get("category"), q.Get("q")))
}

// scheduleRequest is the JSON body for create.
type scheduleRequest struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	StartDate   string            `json:"startDate"`
	StartTime   string            `json:"startTime"`
	EndDate     string            `json:"endDate"`
	EndTime     string            `json:"endTime"`
	IsAllDay    bool              `json:"isAllDay"`
	Category    string            `json:"category"`
	Tags        []string          `json:"tags"`
	Color       string            `json:"color"`
	Reminder    *model.Reminder   `json:"reminder"`
	Recurrence  *model.Recurrence `json:"recurrence"`
}

func (s *Server) handleCreateSchedule(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	created, err := s.schedules.Create(repository.ScheduleInput{
		Title:       req.Title,
		Description: req.Description,
		StartDate:   req.StartDate,
		StartTime:   req.StartTime,
		EndDate:     req.EndDate,
		EndTime:     req.EndTime,
		IsAllDay:    req.IsAllDay,
		Category:    req.Category,
		Tags:        req.Tags,
		Color:       req.Color,
		Reminder:    req.Reminder,
		Recurrence:  req.Recurrence,
	})
	if err != nil {
		writeRepoError(w, err)
		return
	}
	s.reminders.Arm(created)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetSchedule(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sched, err := s.schedules.Get(r.PathValue("id"))
	if err != nil {
		writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sched)
}

// scheduleUpdateRequest is the JSON body for patch; absent fields are
// left unchanged.
type scheduleUpdateRequest struct {
	Title       *string           `json:"title"`
	Description *string           `json:"description"`
	StartDate   *string           `json:"startDate"`
	StartTime   *string           `json:"startTime"`
	EndDate     *string           `json:"endDate"`
	EndTime     *string           `json:"endTime"`
	IsAllDay    *bool             `json:"isAllDay"`
	Category    *string           `json:"category"`
	Tags        *[]string         `json:"tags"`
	Color       *string           `json:"color"`
	Reminder    *model.Reminder   `json:"reminder"`
	Recurrence  *model.Recurrence `json:"recurrence"`
	IsCompleted *bool             `json:"isCompleted"`
}

func (s *Server) handleUpdateSchedule(w http.ResponseWriter, r *http.Request) {
	var req scheduleUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	updated, err := s.schedules.Update(r.PathValue("id"), repository.ScheduleUpdate{
		Title:       req.Title,
		Description: req.Description,
		StartDate:   req.StartDate,
		StartTime:   req.StartTime,
		EndDate:     req.EndDate,
		EndTime:     req.EndTime,
		IsAllDay:    req.IsAllDay,
		Category:    req.Category,
		Tags:        req.Tags,
		Color:       req.Color,
		Reminder:    req.Reminder,
		Recurrence:  req.Recurrence,
		IsCompleted: req.IsCompleted,
	})
	if err != nil {
		writeRepoError(w, err)
		return
	}
	s.reminders.Arm(updated)
	writeJSON(w, http.StatusOK, updated)
}

// handleDeleteSchedule soft-deletes by default; ?hard=1 removes the
// record outright.
func (s *Server) handleDeleteSchedule(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := r.PathValue("id")
	var err error
	if r.URL.Query().Get("hard") == "1" {
		err = s.schedules.HardDelete(id)
	} else {
		err = s.schedules.SoftDelete(id)
	}
	if err != nil {
		writeRepoError(w, err)
		return
	}
	s.reminders.Cancel(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToggleSchedule(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sched, err := s.schedules.ToggleComplete(r.PathValue("id"))
	if err != nil {
		writeRepoError(w, err)
		return
	}
	if sched.IsCompleted {
		s.reminders.Cancel(sched.ID)
	} else {
		s.reminders.Arm(sched)
	}
	writeJSON(w, http.StatusOK, sched)
}

// gridResponse is the JSON shape of /api/grid.
type gridResponse struct {
	Mode       model.ViewMode   `json:"mode"`
	Header     string           `json:"header"`
	Cells      []model.GridCell `json:"cells"`
	Counts     map[string]int   `json:"counts"`
	WeekStarts int              `json:"weekStartsOn"`
}

// handleGrid returns the calendar grid for a mode and anchor date, with
// per-day schedule counts for badges.
//
// GET /api/grid?mode=month&date=2026-08-31
func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := r.URL.Query()
	if mode := q.Get("mode"); mode != "" {
		if !s.viewState.SetViewMode(model.ViewMode(mode)) {
			writeError(w, http.StatusBadRequest, "unknown view mode")
			return
		}
	}
	if dateStr := q.Get("date"); dateStr != "" {
		d, err := dateutil.ParseDate(dateStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date")
			return
		}
		s.viewState.SetCurrentDate(d)
	}

	cells := s.viewState.Grid()
	counts := make(map[string]int, len(cells))
	for _, cell := range cells {
		d, err := dateutil.ParseDate(cell.Date)
		if err != nil {
			continue
		}
		if n := s.schedules.CountOn(d); n > 0 {
			counts[cell.Date] = n
		}
	}

	writeJSON(w, http.StatusOK, gridResponse{
		Mode:       s.viewState.Mode(),
		Header:     s.viewState.HeaderText(),
		Cells:      cells,
		Counts:     counts,
		WeekStarts: s.prefs.Get().WeekStartsOn,
	})
}

// categoriesResponse is the JSON shape of /api/categories.
type categoriesResponse struct {
	Categories []model.Category `json:"categories"`
	Tags       []string         `json:"tags"`
}

func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, categoriesResponse{
		Categories: s.categories.All(),
		Tags:       s.categories.Tags(),
	})
}

func (s *Server) handleAddTag(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Tag string `json:"tag"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	added, err := s.categories.AddTag(req.Tag)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	if !added {
		writeError(w, http.StatusConflict, "tag is empty or already present")
		return
	}
	writeJSON(w, http.StatusCreated, map[string][]string{"tags": s.categories.Tags()})
}

func (s *Server) handleRemoveTag(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, err := s.categories.RemoveTag(r.PathValue("tag"))
	if err != nil {
		writeRepoError(w, err)
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "tag not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleExport serves the JSON snapshot by default, or an ICS rendition
// with ?format=ics.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.URL.Query().Get("format") == "ics" {
		cal, err := s.exporter.ICS()
		if err != nil {
			log.Error("ics export failed", err)
			writeError(w, http.StatusInternalServerError, "export failed")
			return
		}
		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="linecal.ics"`)
		_, _ = w.Write([]byte(cal))
		return
	}

	data, err := s.exporter.JSON()
	if err != nil {
		log.Error("json export failed", err)
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="linecal.json"`)
	_, _ = w.Write(data)
}

// handleImport restores a snapshot; ?merge=1 appends instead of
// replacing. A successful import re-arms every reminder.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	merge := r.URL.Query().Get("merge") == "1"
	if err := s.exporter.Import(body, merge); err != nil {
		log.Error("import failed", err)
		writeError(w, http.StatusBadRequest, "import failed: "+err.Error())
		return
	}
	res := s.reminders.ReconcileAll(s.schedules.All())
	writeJSON(w, http.StatusOK, map[string]any{
		"imported": len(s.schedules.All()),
		"armed":    res.Armed,
	})
}

// statsResponse is the JSON shape of /api/stats.
type statsResponse struct {
	UserID    string `json:"userId"`
	Schedules int    `json:"schedules"`
	Pending   int    `json:"pendingReminders"`
	Items     int    `json:"storedItems"`
	Bytes     int64  `json:"storedBytes"`
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats, err := s.sess.Stats()
	if err != nil {
		log.Error("storage stats failed", err)
		writeError(w, http.StatusInternalServerError, "stats unavailable")
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{
		UserID:    s.sess.UserID(),
		Schedules: len(s.schedules.Active()),
		Pending:   s.reminders.PendingCount(),
		Items:     stats.Items,
		Bytes:     stats.Bytes,
	})
}

func writeRepoError(w http.ResponseWriter, err error) {
	var verr *repository.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "schedule not found")
	default:
		log.Error("request failed", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("write json response failed", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
