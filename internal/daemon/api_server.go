package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"log/slog"

	"showrunner/internal/api"
	"showrunner/internal/config"
	"showrunner/internal/logging"
	"showrunner/internal/pipeline"
	"showrunner/internal/services"
	"showrunner/internal/store"
)

type apiServer struct {
	bind   string
	token  string
	logger *slog.Logger
	daemon *Daemon
	shots  *api.ShotService

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon) (*apiServer, error) {
	if cfg == nil || d == nil {
		return nil, nil
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, nil
	}

	srv := &apiServer{
		bind:   bind,
		token:  strings.TrimSpace(cfg.Paths.APIToken),
		logger: d.logger,
		daemon: d,
		shots:  api.NewShotService(d.store),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", srv.authed(srv.handleStatus))
	mux.HandleFunc("/api/shots", srv.authed(srv.handleShots))
	mux.HandleFunc("/api/shots/", srv.authed(srv.handleShotItem))
	mux.HandleFunc("/api/scenes/", srv.authed(srv.handleScene))
	mux.HandleFunc("/api/pipeline/", srv.authed(srv.handlePipeline))
	mux.HandleFunc("/api/blacklist", srv.authed(srv.handleBlacklist))
	mux.HandleFunc("/api/stats", srv.authed(srv.handleStats))
	mux.HandleFunc("/api/maintenance/recover", srv.authed(srv.handleRecover))
	mux.HandleFunc("/api/maintenance/clear-stuck", srv.authed(srv.handleClearStuck))

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) authed(next http.HandlerFunc) http.HandlerFunc {
	return authMiddleware(s.token, next)
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status := s.daemon.Status(r.Context())
	payload := api.DaemonStatus{
		Running:      status.Running,
		PID:          status.PID,
		DatabasePath: status.DatabasePath,
		LockFilePath: status.LockFilePath,
		Workflow: api.WorkflowStatus{
			ShotCounts: api.MergeShotCounts(status.Workflow.ShotCounts),
			GateHolder: status.Workflow.GateHolder,
		},
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *apiServer) handleShots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	items, err := s.shots.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, items)
}

// handleShotItem serves /api/shots/{id} plus the action subpaths
// generate, review, reset, and select.
func (s *apiServer) handleShotItem(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/shots/")
	idPart, action, _ := strings.Cut(rest, "/")
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid shot id")
		return
	}

	switch action {
	case "":
		if r.Method != http.MethodGet {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		item, err := s.shots.Describe(r.Context(), id)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		if item == nil {
			s.writeError(w, http.StatusNotFound, "shot not found")
			return
		}
		s.writeJSON(w, http.StatusOK, item)
	case "select":
		if r.Method != http.MethodGet {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		decision, err := s.daemon.workflow.SelectEngine(r.Context(), id)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, api.FromDecision(decision))
	case "generate":
		if r.Method != http.MethodPost {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		if err := s.daemon.workflow.DispatchShot(r.Context(), id); err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusAccepted, map[string]any{"shotId": id, "dispatched": true})
	case "review":
		if r.Method != http.MethodPost {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		var req api.ReviewRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid review payload")
			return
		}
		if err := s.daemon.workflow.ReviewShot(r.Context(), id, req.Approved, req.Feedback, req.BlacklistEngine); err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]any{"shotId": id, "approved": req.Approved})
	case "reset":
		if r.Method != http.MethodPost {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		if err := s.daemon.workflow.ResetShot(r.Context(), id); err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]any{"shotId": id, "status": string(store.ShotPending)})
	default:
		s.writeError(w, http.StatusNotFound, "unknown shot action")
	}
}

// handleScene serves POST /api/scenes/{id}/generate.
func (s *apiServer) handleScene(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/scenes/")
	idPart, action, _ := strings.Cut(rest, "/")
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid scene id")
		return
	}
	if action != "generate" || r.Method != http.MethodPost {
		s.writeError(w, http.StatusNotFound, "unknown scene action")
		return
	}
	started, err := s.daemon.workflow.GenerateScene(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"sceneId": id, "started": started})
}

// handlePipeline serves /api/pipeline/{type}/{id} and the action subpaths
// advance and override.
func (s *apiServer) handlePipeline(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/pipeline/")
	parts := strings.SplitN(rest, "/", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		s.writeError(w, http.StatusBadRequest, "expected /api/pipeline/{type}/{id}")
		return
	}
	entityType, ok := store.ParseEntityType(parts[0])
	if !ok {
		s.writeError(w, http.StatusBadRequest, "entity type must be project or character")
		return
	}
	entityID := parts[1]
	action := ""
	if len(parts) == 3 {
		action = parts[2]
	}

	switch action {
	case "":
		if r.Method != http.MethodGet {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		entries, err := s.daemon.workflow.GetPipelineState(r.Context(), entityType, entityID)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, api.FromPipelineEntries(entries))
	case "advance":
		if r.Method != http.MethodPost {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		entry, err := s.daemon.workflow.AdvancePhase(r.Context(), entityType, entityID)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, api.FromPipelineEntries([]store.PipelineEntry{entry})[0])
	case "override":
		if r.Method != http.MethodPost {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		var req api.OverrideRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid override payload")
			return
		}
		overrideAction, ok := pipeline.ParseOverrideAction(req.Action)
		if !ok {
			s.writeError(w, http.StatusBadRequest, "action must be complete, skip, or reset")
			return
		}
		if err := s.daemon.workflow.OverridePipelinePhase(r.Context(), entityType, entityID, req.Phase, overrideAction); err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]any{"phase": req.Phase, "action": req.Action})
	default:
		s.writeError(w, http.StatusNotFound, "unknown pipeline action")
	}
}

func (s *apiServer) handleBlacklist(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	entries, err := s.shots.Blacklist(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, entries)
}

func (s *apiServer) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	stats, err := s.shots.Stats(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *apiServer) handleRecover(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	recovered, err := s.daemon.workflow.RecoverOrphans(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.MaintenanceResult{Affected: recovered})
}

func (s *apiServer) handleClearStuck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	cleared, err := s.daemon.workflow.ClearStuckGenerations(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.MaintenanceResult{Affected: cleared})
}

func (s *apiServer) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrValidation):
		s.writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Warn("encode api response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return slog.Default()
}
