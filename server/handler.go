package server

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/tbxark/depositagent/agent"
)

const maxBodyBytes = 1 << 20

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	body, err := sonic.Marshal(v)
	if err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, agent.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, agent.ErrSessionNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("Request failed", "path", r.URL.Path, "error", err)
		Error(w, status, "internal error")
		return
	}
	Error(w, status, err.Error())
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: read body: %v", agent.ErrInvalidInput, err)
	}
	if err := sonic.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: malformed json: %v", agent.ErrInvalidInput, err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.pinger != nil {
		if err := s.pinger.Ping(r.Context()); err != nil {
			slog.Warn("Health check failed", "error", err)
			JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req agent.StartRequest
	if err := decode(w, r, &req); err != nil {
		writeEngineError(w, r, err)
		return
	}
	resp, err := s.engine.Start(r.Context(), &req)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, resp)
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	var req agent.TurnRequest
	if err := decode(w, r, &req); err != nil {
		writeEngineError(w, r, err)
		return
	}
	resp, err := s.engine.Turn(r.Context(), &req)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, resp)
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	var req agent.CompleteRequest
	if err := decode(w, r, &req); err != nil {
		writeEngineError(w, r, err)
		return
	}
	resp, err := s.engine.Complete(r.Context(), &req)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, resp)
}
