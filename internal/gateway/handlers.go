package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/soyeahso/evaluet/internal/domain"
	"github.com/soyeahso/evaluet/internal/interview"
	"github.com/soyeahso/evaluet/internal/prompt"
	"github.com/soyeahso/evaluet/internal/store"
)

const maxRequestBody = 1 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:   "ok",
		Version:  s.version,
		Sessions: s.conns.Count(),
	})
}

// handleCreateInterview stores an ACTIVE session with its interviewer prompt.
func (s *Server) handleCreateInterview(w http.ResponseWriter, r *http.Request) {
	var req CreateInterviewRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	req.JobRole = strings.TrimSpace(req.JobRole)
	if req.JobRole == "" {
		writeError(w, r, http.StatusBadRequest, "jobRole is required")
		return
	}

	persona, err := s.roster.Lookup(req.InterviewerID)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "unknown interviewerId")
		return
	}
	voiceModel := req.VoiceModel
	if voiceModel == "" {
		voiceModel = persona.VoiceModel
	}

	iv := s.cfg.Interview
	sess := &domain.Session{
		UserID:         req.UserID,
		JobRole:        req.JobRole,
		JobDescription: req.JobDescription,
		CandidateLevel: req.CandidateLevel,
		VoiceModel:     voiceModel,
		InterviewerID:  persona.ID,
		SystemPrompt: prompt.Interviewer(prompt.InterviewerConfig{
			JobRole:           req.JobRole,
			CandidateLevel:    req.CandidateLevel,
			JobDescription:    req.JobDescription,
			ResumeText:        req.ResumeText,
			Persona:           persona,
			TimeLimit:         iv.TimeLimit,
			TimeUpInstruction: iv.TimeUpInstruction,
			StrikeClosing:     iv.StrikeClosing,
		}),
		Status: domain.StatusActive,
	}

	if err := s.store.CreateSession(r.Context(), sess); err != nil {
		s.log.Error().Err(err).Msg("creating session failed")
		writeError(w, r, http.StatusInternalServerError, "could not create session")
		return
	}

	s.log.Info().Str("session", sess.ID).Str("role", sess.JobRole).Str("interviewer", sess.InterviewerID).Msg("interview created")
	writeJSON(w, http.StatusCreated, CreateInterviewResponse{
		SessionID: sess.ID,
		WSURL:     interviewSocketPath(sess.ID),
	})
}

func (s *Server) handleListInterviewers(w http.ResponseWriter, r *http.Request) {
	out := make([]InterviewerResponse, 0, s.roster.Len())
	for _, iv := range s.roster.List() {
		out = append(out, InterviewerResponse{
			ID:          iv.ID,
			Name:        iv.Name,
			Description: iv.Description,
			FocusAreas:  iv.FocusAreas,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetInterview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	sess, err := s.store.LoadSession(r.Context(), id)
	if errors.Is(err, domain.ErrSessionNotFound) {
		writeError(w, r, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		s.log.Error().Err(err).Str("session", id).Msg("loading session failed")
		writeError(w, r, http.StatusInternalServerError, "could not load session")
		return
	}

	resp := InterviewResponse{
		SessionID:      sess.ID,
		UserID:         sess.UserID,
		JobRole:        sess.JobRole,
		CandidateLevel: sess.CandidateLevel,
		InterviewerID:  sess.InterviewerID,
		Status:         sess.Status,
		Turns:          len(sess.Transcript),
		CreatedAt:      sess.CreatedAt,
		UpdatedAt:      sess.UpdatedAt,
	}
	rep, err := s.store.LoadReport(r.Context(), id)
	switch {
	case err == nil:
		resp.Report = rep
	case !errors.Is(err, store.ErrReportNotFound):
		s.log.Warn().Err(err).Str("session", id).Msg("loading report failed")
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleInterviewSocket upgrades to a websocket and runs the interview on it.
// Session validation happens after the upgrade so rejections arrive as close
// codes the client can read.
func (s *Server) handleInterviewSocket(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")

	socket, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Str("session", id).Msg("websocket upgrade failed")
		return
	}

	conn := newWSConn(socket, id, s.cfg.Server.MaxFrameBytes)
	s.conns.Add(conn)
	s.sessions.Add(1)
	defer func() {
		s.conns.Remove(conn.ID)
		conn.Close(interview.CloseNormal, "")
		s.sessions.Done()
	}()

	reason, err := s.runner.Serve(s.baseCtx, id, conn)
	if err != nil {
		s.log.Warn().Err(err).Str("session", id).Msg("interview rejected")
		return
	}
	s.log.Debug().Str("session", id).Str("reason", string(reason)).Msg("interview socket done")
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusNotFound, "not found")
}

func handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg, Path: r.URL.Path})
}
