package server

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/jonathan/resume-matcher/internal/pipeline"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status          string `json:"status"`
	AgentConfigured string `json:"agent_configured"`
}

// RunAgentResponse is the body of a successful /run-agent trigger.
type RunAgentResponse struct {
	Message string `json:"message"`
	Agent   string `json:"agent"`
}

// StatusResponse is the body of GET /status.
type StatusResponse struct {
	Running   bool   `json:"running"`
	LastRun   string `json:"last_run"`
	LastError string `json:"last_error"`
	AgentMode string `json:"agent_mode"`
}

// handleHealth reports liveness and the configured default mode.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, HealthResponse{
		Status:          "ok",
		AgentConfigured: string(s.defaultMode),
	})
}

// handleRunAgent triggers a pipeline run in the background. The mode comes
// from the agent query parameter, falling back to the configured default.
// A trigger while a run is active answers 409 without queueing.
func (s *Server) handleRunAgent(w http.ResponseWriter, r *http.Request) {
	mode := s.defaultMode
	if raw := r.URL.Query().Get("agent"); raw != "" {
		parsed, err := pipeline.ParseMode(raw)
		if err != nil {
			s.errorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
		mode = parsed
	}

	if err := s.runner.Trigger(s.runCtx, mode); err != nil {
		if errors.Is(err, pipeline.ErrAlreadyRunning) {
			s.jsonResponse(w, http.StatusConflict, map[string]string{
				"message": "Agent is already running",
			})
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.log.Info("agent run triggered", zap.String("mode", string(mode)))
	s.jsonResponse(w, http.StatusAccepted, RunAgentResponse{
		Message: "Agent started",
		Agent:   string(mode),
	})
}

// handleStatus reports the runner state and the outcome of the last run.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	status := s.runner.Status()
	s.jsonResponse(w, http.StatusOK, StatusResponse{
		Running:   status.Running,
		LastRun:   status.LastRun,
		LastError: status.LastError,
		AgentMode: string(s.defaultMode),
	})
}
