package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// webServer wires the HTTP surface onto the core services. Handlers stay
// thin: parse the request, call into containerService / containersStream,
// map errors onto statuses.
type webServer struct {
	cfg    Config
	svc    *containerService
	stream *containersStream
	msg    messageCatalog
	log    zerolog.Logger

	httpServer *http.Server
}

func newWebServer(cfg Config, svc *containerService, stream *containersStream) *webServer {
	s := &webServer{
		cfg:    cfg,
		svc:    svc,
		stream: stream,
		msg:    getMessages(cfg.AppLocale),
		log:    componentLogger("http"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleDashboard)
	mux.HandleFunc("GET /api/v2/containers", s.handleListContainers)
	mux.HandleFunc("GET /api/v2/containers/metrics", s.handleMetrics)
	mux.HandleFunc("POST /api/v2/containers/{name}/{action}", s.handleAction)
	mux.HandleFunc("GET /api/v2/containers/{name}/inspect", s.handleInspect)
	mux.HandleFunc("GET /api/v2/containers/stream", s.handleStream)
	mux.HandleFunc("GET /logs/{name}", s.handleLogsPage)
	mux.HandleFunc("GET /logs_raw/{name}", s.handleLogsRaw)
	mux.HandleFunc("GET /exec/{name}", s.handleExecPage)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           basicAuthMiddleware(cfg, s.logRequests(mux)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Start runs the HTTP server (blocking call).
func (s *webServer) Start() error {
	s.log.Info().Str("addr", s.cfg.ListenAddr).Msg("web server listening")
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests. Streaming connections are closed by
// their handlers when the server context dies.
func (s *webServer) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *webServer) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"detail": err.Error()})
}

func (s *webServer) handleDashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := renderDashboardPage(w, s.cfg, s.msg); err != nil {
		s.log.Error().Err(err).Msg("dashboard render failed")
	}
}

// handleListContainers serves the container list. include_metrics=true (the
// default) reads through the snapshot cache; false bypasses it for a fast,
// metrics-free listing.
func (s *webServer) handleListContainers(w http.ResponseWriter, r *http.Request) {
	includeMetrics := true
	if raw := r.URL.Query().Get("include_metrics"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			includeMetrics = v
		}
	}

	if includeMetrics {
		data, err := s.stream.getSnapshot(r.Context(), -1)
		if err != nil {
			writeError(w, http.StatusBadGateway, err)
			return
		}
		writeJSON(w, http.StatusOK, data)
		return
	}

	data, err := s.svc.listSummaries(r.Context(), false)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

// handleMetrics serves cpu/mem for the containers named by repeated ?name=
// parameters, or for all containers when none are given.
func (s *webServer) handleMetrics(w http.ResponseWriter, r *http.Request) {
	names := r.URL.Query()["name"]
	metrics, err := s.svc.metrics(r.Context(), names)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, metrics)
}

// handleAction executes start/stop/restart and pokes the stream on success
// so subscribers see the new state ahead of the next scheduled tick.
func (s *webServer) handleAction(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	action := r.PathValue("action")

	err := s.svc.action(r.Context(), name, action)
	switch {
	case err == nil:
	case errors.Is(err, errInvalidAction):
		writeError(w, http.StatusBadRequest, err)
		return
	case errors.Is(err, errContainerNotFound):
		writeError(w, http.StatusNotFound, err)
		return
	default:
		writeError(w, http.StatusBadGateway, err)
		return
	}

	s.stream.poke()
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleInspect returns the daemon's raw inspect document for one container.
func (s *webServer) handleInspect(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	inspect, err := resolveContainer(r.Context(), s.svc.api, name)
	if err != nil {
		if errors.Is(err, errContainerNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, inspect)
}

func (s *webServer) tailParam(r *http.Request) int {
	tail := s.cfg.LogDefaultTail
	if raw := r.URL.Query().Get("tail"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			tail = v
		}
	}
	if tail < 1 {
		tail = 1
	}
	if tail > s.cfg.LogMaxTail {
		tail = s.cfg.LogMaxTail
	}
	return tail
}

func (s *webServer) handleLogsPage(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := renderLogsPage(w, s.cfg, s.msg, name, s.tailParam(r)); err != nil {
		s.log.Error().Err(err).Msg("logs page render failed")
	}
}

func (s *webServer) handleLogsRaw(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	logs, err := s.svc.logs(r.Context(), name, s.tailParam(r))
	if err != nil {
		if errors.Is(err, errContainerNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusBadGateway, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(logs))
}

func (s *webServer) handleExecPage(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := renderTerminalPage(w, s.cfg, s.msg, name); err != nil {
		s.log.Error().Err(err).Msg("terminal page render failed")
	}
}

// handleHealth reports process vitals alongside the daemon's container
// count, useful both for container healthchecks and leak hunting.
func (s *webServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	containers, err := listContainers(r.Context(), s.svc.api, true)

	status := "healthy"
	if err != nil {
		status = "degraded"
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":           status,
		"version":          Version,
		"build_time":       BuildTime,
		"container_count":  len(containers),
		"subscribers":      s.stream.subscriberCount(),
		"goroutines":       getGoroutineCount(),
		"file_descriptors": countOpenFDs(),
	})
}
