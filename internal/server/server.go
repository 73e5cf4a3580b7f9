// Package server provides the HTTP API for creating, reviewing and
// confirming scheduling batches.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/bryan-buckman/syndicate/internal/config"
	"github.com/bryan-buckman/syndicate/internal/model"
	"github.com/bryan-buckman/syndicate/internal/opml"
	"github.com/bryan-buckman/syndicate/internal/schedule"
	"github.com/bryan-buckman/syndicate/internal/transform"
)

// itemSelector draws source items from feed URLs.
type itemSelector interface {
	Select(ctx context.Context, sources []string, count int) []model.SourceItem
}

// postTransformer rewrites one item for one platform.
type postTransformer interface {
	Transform(ctx context.Context, item model.SourceItem, p model.Platform, cred model.Credential) (*model.Post, error)
}

// jobScheduler arms timed jobs for a confirmed batch.
type jobScheduler interface {
	Schedule(batch *model.Batch) []*schedule.Job
}

// Server is the main HTTP server.
type Server struct {
	cfg         config.Config
	logger      *logrus.Logger
	selector    itemSelector
	transformer postTransformer
	scheduler   jobScheduler
	batches     *schedule.BatchRegistry
	registry    *schedule.Registry
	router      chi.Router
}

// New creates a server wired to the pipeline components.
func New(cfg config.Config, logger *logrus.Logger, selector itemSelector, transformer postTransformer,
	scheduler jobScheduler, batches *schedule.BatchRegistry, registry *schedule.Registry) *Server {
	s := &Server{
		cfg:         cfg,
		logger:      logger,
		selector:    selector,
		transformer: transformer,
		scheduler:   scheduler,
		batches:     batches,
		registry:    registry,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	r.Route("/api", func(r chi.Router) {
		r.Get("/platforms", s.handlePlatforms)
		r.Post("/import-opml", s.handleImportOPML)
		r.Post("/batches", s.handleCreateBatch)
		r.Get("/batches/{batchID}", s.handleReviewBatch)
		r.Post("/batches/{batchID}/confirm", s.handleConfirmBatch)
		r.Get("/jobs", s.handleListJobs)
	})

	s.router = r
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins serving.
func (s *Server) Start(addr string) error {
	s.logger.WithField("addr", addr).Info("Server starting")
	return http.ListenAndServe(addr, s.router)
}

// --- API Handlers ---

func (s *Server) handlePlatforms(w http.ResponseWriter, r *http.Request) {
	connected := make(map[model.Platform]bool)
	for p, cred := range s.cfg.Credentials {
		connected[p] = cred.AccessToken != ""
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"connected": connected})
}

type createBatchRequest struct {
	FeedURLs        []string `json:"feed_urls"`
	PostsPerDay     int      `json:"posts_per_day"`
	ScheduleType    string   `json:"schedule_type"` // daily, weekly, monthly
	IntervalMinutes int      `json:"interval_minutes"`
	FirstPostTime   string   `json:"first_post_time"`
	Platforms       []string `json:"platforms"` // empty means all connected
}

func (s *Server) handleCreateBatch(w http.ResponseWriter, r *http.Request) {
	var req createBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	total, err := totalPosts(req.PostsPerDay, req.ScheduleType)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.FeedURLs) == 0 {
		s.writeError(w, http.StatusBadRequest, "at least one feed URL is required")
		return
	}
	first, err := parsePostTime(req.FirstPostTime)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	interval := req.IntervalMinutes
	if interval <= 0 {
		interval = s.cfg.DefaultIntervalMinutes
	}

	platforms, err := s.resolvePlatforms(req.Platforms)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items := s.selector.Select(r.Context(), req.FeedURLs, total)
	if len(items) == 0 {
		s.writeError(w, http.StatusBadGateway, "no entries could be fetched from the given feeds")
		return
	}

	batch := &model.Batch{
		ID:            uuid.New().String(),
		Posts:         make(map[model.Platform][]*model.Post),
		FirstPostTime: first,
		Interval:      time.Duration(interval) * time.Minute,
		CreatedAt:     time.Now(),
	}
	for _, p := range platforms {
		cred := s.cfg.Credentials[p]
		for _, item := range items {
			post, err := s.transformer.Transform(r.Context(), item, p, cred)
			if err != nil {
				// A single generation failure aborts the whole batch;
				// a partially transformed batch is never exposed.
				s.logger.WithError(err).WithFields(logrus.Fields{
					"platform": p,
					"item":     item.Title,
				}).Error("Transform failed, aborting batch")
				status := http.StatusBadGateway
				if !errors.Is(err, transform.ErrGeneration) && !errors.Is(err, transform.ErrMalformedOutput) {
					status = http.StatusInternalServerError
				}
				s.writeError(w, status, fmt.Sprintf("transform %q for %s: %v", item.Title, p, err))
				return
			}
			batch.Posts[p] = append(batch.Posts[p], post)
		}
	}

	s.batches.Put(batch)
	s.writeJSON(w, http.StatusCreated, batchResponse(batch))
}

func (s *Server) handleReviewBatch(w http.ResponseWriter, r *http.Request) {
	batch, ok := s.batches.Get(chi.URLParam(r, "batchID"))
	if !ok {
		s.writeError(w, http.StatusNotFound, "batch not found")
		return
	}
	s.writeJSON(w, http.StatusOK, batchResponse(batch))
}

func (s *Server) handleConfirmBatch(w http.ResponseWriter, r *http.Request) {
	// Take is atomic: a duplicate confirmation of the same id finds
	// nothing and cannot double-schedule.
	batch, ok := s.batches.Take(chi.URLParam(r, "batchID"))
	if !ok {
		s.writeError(w, http.StatusNotFound, "batch not found")
		return
	}

	jobs := s.scheduler.Schedule(batch)
	ids := make([]string, 0, len(jobs))
	for _, job := range jobs {
		ids = append(ids, job.ID)
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"batch_id": batch.ID,
		"job_ids":  ids,
	})
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	platform := model.Platform(r.URL.Query().Get("platform"))
	status := model.PostStatus(r.URL.Query().Get("status"))

	posts := s.registry.List(platform, status)
	out := make([]map[string]interface{}, 0, len(posts))
	for i := range posts {
		p := &posts[i]
		entry := map[string]interface{}{
			"text":           schedule.CombinedText(p),
			"platform":       p.Platform,
			"scheduled_time": p.ScheduledAt.Format(time.RFC3339),
			"status":         p.Status,
		}
		if p.StatusError != "" {
			entry["error"] = p.StatusError
		}
		out = append(out, entry)
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"jobs": out})
}

func (s *Server) handleImportOPML(w http.ResponseWriter, r *http.Request) {
	file, _, err := r.FormFile("opml")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	sources, err := opml.Parse(file)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse OPML: %v", err))
		return
	}

	urls := make([]string, 0, len(sources))
	for _, src := range sources {
		urls = append(urls, src.URL)
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"feed_urls": urls})
}

// --- Helpers ---

// totalPosts converts the per-day request into a batch size.
func totalPosts(perDay int, scheduleType string) (int, error) {
	if perDay <= 0 {
		return 0, errors.New("posts_per_day must be positive")
	}
	switch scheduleType {
	case "", "daily":
		return perDay, nil
	case "weekly":
		return perDay * 7, nil
	case "monthly":
		return perDay * 30, nil
	default:
		return 0, fmt.Errorf("unknown schedule_type %q", scheduleType)
	}
}

// parsePostTime accepts RFC 3339 or the HTML datetime-local format.
func parsePostTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, errors.New("first_post_time is required")
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02T15:04", raw); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid first_post_time %q", raw)
}

// resolvePlatforms validates the requested platforms against connected
// credentials, defaulting to every connected platform.
func (s *Server) resolvePlatforms(requested []string) ([]model.Platform, error) {
	connected := s.cfg.Connected()
	if len(connected) == 0 {
		return nil, errors.New("no platforms are connected")
	}
	if len(requested) == 0 {
		return connected, nil
	}
	connectedSet := make(map[model.Platform]bool, len(connected))
	for _, p := range connected {
		connectedSet[p] = true
	}
	var out []model.Platform
	for _, raw := range requested {
		p := model.Platform(raw)
		if !connectedSet[p] {
			return nil, fmt.Errorf("platform %q is not connected", raw)
		}
		out = append(out, p)
	}
	return out, nil
}

// batchResponse renders a batch for creation and review responses.
func batchResponse(batch *model.Batch) map[string]interface{} {
	posts := make([]map[string]interface{}, 0)
	for _, platformPosts := range batch.Posts {
		for _, p := range platformPosts {
			posts = append(posts, map[string]interface{}{
				"platform":  p.Platform,
				"title":     p.Title,
				"text":      p.Text,
				"image_url": p.ImageURL,
				"status":    p.Status,
			})
		}
	}
	return map[string]interface{}{
		"batch_id":         batch.ID,
		"first_post_time":  batch.FirstPostTime.Format(time.RFC3339),
		"interval_minutes": int(batch.Interval / time.Minute),
		"posts":            posts,
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Error("Encode response failed")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
