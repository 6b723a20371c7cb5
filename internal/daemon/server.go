package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"interviewd/internal/domain"
	"interviewd/internal/extractor"
	"interviewd/internal/interview"
	"interviewd/internal/llm"
)

const version = "0.1.0"

// Server is the interviewd HTTP server.
type Server struct {
	server  *http.Server
	router  *http.ServeMux
	service *interview.Service

	extractor   extractor.Extractor
	llmRegistry *llm.Registry
	resumeDir   string
}

// ServerConfig holds configuration for creating a new server
type ServerConfig struct {
	Addr        string
	Service     *interview.Service
	Extractor   extractor.Extractor
	LLMRegistry *llm.Registry
	ResumeDir   string
}

// NewServer creates a new daemon server
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Service == nil {
		return nil, fmt.Errorf("interview service is required")
	}
	if cfg.ResumeDir != "" {
		if err := os.MkdirAll(cfg.ResumeDir, 0755); err != nil {
			return nil, fmt.Errorf("create resume directory: %w", err)
		}
	}

	s := &Server{
		router:      http.NewServeMux(),
		service:     cfg.Service,
		extractor:   cfg.Extractor,
		llmRegistry: cfg.LLMRegistry,
		resumeDir:   cfg.ResumeDir,
	}
	s.setupRoutes()

	handler := recoveryMiddleware(loggingMiddleware(correlationIDMiddleware(s.router)))
	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Health & status
	s.router.HandleFunc("GET /v1/health", s.handleHealth)
	s.router.HandleFunc("GET /v1/status", s.handleStatus)

	// Sessions
	s.router.HandleFunc("POST /v1/sessions", s.handleCreateSession)
	s.router.HandleFunc("GET /v1/sessions", s.handleListSessions)
	s.router.HandleFunc("GET /v1/sessions/stats", s.handleStats)
	s.router.HandleFunc("GET /v1/sessions/resumable", s.handleResumable)
	s.router.HandleFunc("GET /v1/sessions/current", s.handleCurrentSession)
	s.router.HandleFunc("PUT /v1/sessions/current", s.handleSwitchSession)
	s.router.HandleFunc("DELETE /v1/sessions/current", s.handleStartFresh)
	s.router.HandleFunc("GET /v1/sessions/{id}", s.handleGetSession)
	s.router.HandleFunc("DELETE /v1/sessions/{id}", s.handleDeleteSession)

	// Profile collection
	s.router.HandleFunc("PATCH /v1/profile", s.handleUpdateProfile)
	s.router.HandleFunc("POST /v1/resume", s.handleUploadResume)

	// Interview flow (operates on the current session)
	s.router.HandleFunc("POST /v1/interview/start", s.handleStartInterview)
	s.router.HandleFunc("POST /v1/interview/answers", s.handleSubmitAnswer)
	s.router.HandleFunc("PUT /v1/interview/draft", s.handleUpdateDraft)
	s.router.HandleFunc("POST /v1/interview/pause", s.handlePauseInterview)
	s.router.HandleFunc("POST /v1/interview/resume", s.handleResumeInterview)
	s.router.HandleFunc("POST /v1/interview/finalize", s.handleFinalize)
	s.router.HandleFunc("GET /v1/interview/timer", s.handleTimer)
	s.router.HandleFunc("PUT /v1/interview/answers/{questionID}/score", s.handleSetAnswerScore)

	// Dashboard tab
	s.router.HandleFunc("GET /v1/tab", s.handleGetTab)
	s.router.HandleFunc("PUT /v1/tab", s.handleSetTab)
}

// Start starts the HTTP server
func (s *Server) Start() error {
	slog.Info("starting interviewd daemon", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("shutting down daemon...")
	return s.server.Shutdown(ctx)
}

// Handler returns the middleware-wrapped handler for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Handler implementations

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var providers []string
	if s.llmRegistry != nil {
		providers = s.llmRegistry.List()
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":          "running",
		"version":         version,
		"llm_providers":   providers,
		"sessions":        len(s.service.Sessions()),
		"current_session": s.service.CurrentID(),
	})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Phone string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	sess, err := s.service.CreateSession(r.Context(), domain.CandidateProfile{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		s.serviceError(w, "create session", err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, sessionResponse(sess))
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	sortBy := interview.SortKey(r.URL.Query().Get("sort"))
	if sortBy == "" {
		sortBy = interview.SortByScore
	}

	sessions := interview.FilterSessions(s.service.Sessions(), search, sortBy)
	out := make([]map[string]any, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, sessionResponse(sess))
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"sessions": out})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, interview.ComputeStats(s.service.Sessions()))
}

func (s *Server) handleResumable(w http.ResponseWriter, r *http.Request) {
	sessions := s.service.Resumable()
	out := make([]map[string]any, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, sessionResponse(sess))
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"sessions": out})
}

func (s *Server) handleCurrentSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.service.Current()
	if err != nil {
		s.serviceError(w, "get current session", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, sessionResponse(sess))
}

func (s *Server) handleSwitchSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	sess, err := s.service.ResumeSession(r.Context(), req.ID)
	if err != nil {
		s.serviceError(w, "switch session", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, sessionResponse(sess))
}

func (s *Server) handleStartFresh(w http.ResponseWriter, r *http.Request) {
	if err := s.service.StartFresh(r.Context()); err != nil {
		s.serviceError(w, "start fresh", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.service.Get(r.PathValue("id"))
	if err != nil {
		s.serviceError(w, "get session", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, sessionResponse(sess))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Discard(r.Context(), r.PathValue("id")); err != nil {
		s.serviceError(w, "delete session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var fields domain.ProfileFields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	sess, err := s.service.UpdateProfile(r.Context(), fields)
	if err != nil {
		s.serviceError(w, "update profile", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, sessionResponse(sess))
}

func (s *Server) handleUploadResume(w http.ResponseWriter, r *http.Request) {
	if s.extractor == nil || s.resumeDir == "" {
		s.jsonError(w, http.StatusNotImplemented, "resume extraction is not configured", nil)
		return
	}

	file, _, err := r.FormFile("resume")
	if err != nil {
		s.jsonError(w, http.StatusBadRequest, "resume file is required", err)
		return
	}
	defer file.Close()

	path := filepath.Join(s.resumeDir, uuid.New().String()+".txt")
	dst, err := os.Create(path)
	if err != nil {
		s.jsonError(w, http.StatusInternalServerError, "failed to store resume", err)
		return
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		s.jsonError(w, http.StatusInternalServerError, "failed to store resume", err)
		return
	}
	dst.Close()

	fields, err := s.extractor.Extract(r.Context(), path)
	if err != nil {
		s.jsonError(w, http.StatusInternalServerError, "failed to extract resume", err)
		return
	}

	sess, err := s.service.UpdateProfile(r.Context(), fields)
	if err != nil {
		s.serviceError(w, "update profile from resume", err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"extracted":      fields,
		"missing_fields": domain.MissingFields(sess.Candidate),
		"session":        sessionResponse(sess),
	})
}

func (s *Server) handleStartInterview(w http.ResponseWriter, r *http.Request) {
	sess, err := s.service.StartInterview(r.Context())
	if err != nil {
		s.serviceError(w, "start interview", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, sessionResponse(sess))
}

func (s *Server) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		QuestionID string `json:"question_id"`
		Text       string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	sess, err := s.service.SubmitAnswer(r.Context(), req.QuestionID, req.Text)
	if err != nil {
		s.serviceError(w, "submit answer", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, sessionResponse(sess))
}

func (s *Server) handleUpdateDraft(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	s.service.UpdateDraft(req.Text)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePauseInterview(w http.ResponseWriter, r *http.Request) {
	sess, err := s.service.Pause(r.Context())
	if err != nil {
		s.serviceError(w, "pause interview", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, sessionResponse(sess))
}

func (s *Server) handleResumeInterview(w http.ResponseWriter, r *http.Request) {
	sess, err := s.service.Resume(r.Context())
	if err != nil {
		s.serviceError(w, "resume interview", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, sessionResponse(sess))
}

func (s *Server) handleFinalize(w http.ResponseWriter, r *http.Request) {
	sess, err := s.service.Finalize(r.Context())
	if err != nil {
		s.serviceError(w, "finalize interview", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, sessionResponse(sess))
}

func (s *Server) handleTimer(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.service.Timer())
}

func (s *Server) handleSetAnswerScore(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Score int `json:"score"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Score < 0 || req.Score > 100 {
		s.jsonError(w, http.StatusBadRequest, "score must be between 0 and 100", nil)
		return
	}

	sess, err := s.service.SetAnswerScore(r.Context(), r.PathValue("questionID"), req.Score)
	if err != nil {
		s.serviceError(w, "set answer score", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, sessionResponse(sess))
}

func (s *Server) handleGetTab(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{"tab": s.service.ActiveTab()})
}

func (s *Server) handleSetTab(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Tab interview.Tab `json:"tab"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Tab != interview.TabInterviewee && req.Tab != interview.TabInterviewer {
		s.jsonError(w, http.StatusBadRequest, "unknown tab", nil)
		return
	}

	s.service.SetActiveTab(req.Tab)
	w.WriteHeader(http.StatusNoContent)
}

// sessionResponse shapes a session for the API, adding derived fields.
func sessionResponse(sess *interview.Session) map[string]any {
	out := map[string]any{
		"id":                     sess.ID,
		"status":                 sess.Status,
		"candidate_profile":      sess.Candidate,
		"questions":              sess.Questions,
		"answers":                sess.Answers,
		"current_question_index": sess.CurrentQuestionIndex,
		"created_at":             sess.CreatedAt,
		"updated_at":             sess.UpdatedAt,
		"missing_fields":         domain.MissingFields(sess.Candidate),
	}
	if sess.StartTime != nil {
		out["start_time"] = sess.StartTime
	}
	if sess.EndTime != nil {
		out["end_time"] = sess.EndTime
	}
	if sess.TimeRemaining != nil {
		out["time_remaining"] = *sess.TimeRemaining
	}
	if sess.FinalScore != nil {
		out["final_score"] = *sess.FinalScore
		out["score_band"] = interview.BandFor(*sess.FinalScore)
	}
	if sess.AISummary != "" {
		out["ai_summary"] = sess.AISummary
	}
	if question, ok := sess.CurrentQuestion(); ok {
		out["current_question"] = question
	}
	return out
}

// serviceError maps domain errors onto HTTP status codes.
func (s *Server) serviceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrAnswerNotFound):
		s.jsonError(w, http.StatusNotFound, op+" failed", err)
	case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, domain.ErrAnswerMismatch):
		s.jsonError(w, http.StatusConflict, op+" failed", err)
	case errors.Is(err, domain.ErrInvalidProfile), errors.Is(err, domain.ErrEmptyQuestionSet):
		s.jsonError(w, http.StatusBadRequest, op+" failed", err)
	default:
		s.jsonError(w, http.StatusInternalServerError, op+" failed", err)
	}
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (s *Server) jsonError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]any{
		"error":  message,
		"status": status,
	}
	if err != nil {
		response["details"] = err.Error()
	}
	s.jsonResponse(w, status, response)
}
