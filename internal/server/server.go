package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"storyloom/internal/turn"
)

// Runner is the pipeline entry point the server drives.
type Runner interface {
	Run(ctx context.Context, req turn.Request) (*turn.Result, error)
}

type Server struct {
	pipeline Runner
	log      *zap.Logger
	mux      *http.ServeMux
}

func New(pipeline Runner, log *zap.Logger) *Server {
	s := &Server{pipeline: pipeline, log: log, mux: http.NewServeMux()}
	s.mux.HandleFunc("/api/dm-response", s.handleDMResponse)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

type dmRequest struct {
	SessionID     string `json:"sessionId"`
	PlayerMessage string `json:"playerMessage"`
}

type dmResponse struct {
	Response  string  `json:"response"`
	MessageID *string `json:"messageId"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleDMResponse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	var req dmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	start := time.Now()
	result, err := s.pipeline.Run(r.Context(), turn.Request{
		SessionID:     req.SessionID,
		PlayerMessage: req.PlayerMessage,
	})
	if err != nil {
		s.writeTurnError(w, req.SessionID, err)
		return
	}

	s.log.Info("turn completed",
		zap.String("session_id", req.SessionID),
		zap.Duration("elapsed", time.Since(start)),
		zap.Bool("persisted", result.MessageID != nil))

	writeJSON(w, http.StatusOK, dmResponse{
		Response:  result.Response,
		MessageID: result.MessageID,
	})
}

// writeTurnError maps pipeline errors onto the wire contract. Upstream
// model failures surface as a generic internal error: the raw provider
// message never reaches the client.
func (s *Server) writeTurnError(w http.ResponseWriter, sessionID string, err error) {
	switch {
	case errors.Is(err, turn.ErrInvalidRequest):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "sessionId and playerMessage are required"})
	case errors.Is(err, turn.ErrSessionNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "session not found"})
	default:
		s.log.Error("turn failed", zap.String("session_id", sessionID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
