package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"macrorec/replay"
	"macrorec/storage"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeOK(w http.ResponseWriter) {
	writeJSON(w, map[string]string{"status": "success"})
}

// handleInstallHooks installs the global capture hooks
func (s *Server) handleInstallHooks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := s.ctrl.InstallHooks(); err != nil {
		slog.Error("Failed to install hooks", "error", err)
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	writeOK(w)
}

// handleUninstallHooks removes the global capture hooks
func (s *Server) handleUninstallHooks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := s.ctrl.UninstallHooks(); err != nil {
		slog.Error("Failed to uninstall hooks", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeOK(w)
}

// handleStartRecording begins a capture session
func (s *Server) handleStartRecording(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := s.ctrl.StartRecording(); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	writeOK(w)
}

// handleStopRecording ends the capture session and returns the stored
// recording (or null if nothing was captured)
func (s *Server) handleStopRecording(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rec, err := s.ctrl.StopRecording()
	if err != nil {
		slog.Error("Failed to stop recording", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"recording": rec})
}

// handleStartReplay loads a recording (if an id is given) and starts
// replaying it
func (s *Server) handleStartReplay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		ID    string  `json:"id"`
		Path  string  `json:"path"`
		Speed float64 `json:"speed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Speed == 0 {
		req.Speed = 1.0
	}

	switch {
	case req.ID != "":
		if err := s.ctrl.LoadRecording(req.ID); err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, storage.ErrNotFound) {
				status = http.StatusNotFound
			}
			http.Error(w, err.Error(), status)
			return
		}
	case req.Path != "":
		if err := s.ctrl.LoadRecordingFile(req.Path); err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, replay.ErrMalformedDocument) {
				status = http.StatusBadRequest
			}
			http.Error(w, err.Error(), status)
			return
		}
	}

	if err := s.ctrl.StartReplay(req.Speed); err != nil {
		status := http.StatusConflict
		if errors.Is(err, replay.ErrInvalidSpeed) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}
	writeOK(w)
}

// handleStopReplay cancels a running replay
func (s *Server) handleStopReplay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.ctrl.StopReplay()
	writeOK(w)
}

// handleReplayProgress returns replay progress as a percentage
func (s *Server) handleReplayProgress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, map[string]float64{"progress": s.ctrl.ReplayProgress()})
}

// handleRecordings returns paginated stored recordings
func (s *Server) handleRecordings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 50
	offset := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	recs, err := s.ctrl.Recordings(limit, offset)
	if err != nil {
		slog.Error("Failed to list recordings", "error", err)
		http.Error(w, "Failed to list recordings", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"recordings": recs,
		"limit":      limit,
		"offset":     offset,
	})
}

// handleRecordingByID deletes a recording by id (e.g. /api/recordings/<id>)
func (s *Server) handleRecordingByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/recordings/")
	if id == "" {
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return
	}

	if err := s.ctrl.DeleteRecording(id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "Recording not found", http.StatusNotFound)
			return
		}
		slog.Error("Failed to delete recording", "error", err, "id", id)
		http.Error(w, "Failed to delete recording", http.StatusInternalServerError)
		return
	}
	writeOK(w)
}

// handleStats returns aggregate statistics over the stored recordings
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	days := 7
	if v := r.URL.Query().Get("days"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			days = n
		}
	}

	overall, err := s.ctrl.Stats()
	if err != nil {
		slog.Error("Failed to get stats", "error", err)
		http.Error(w, "Failed to get statistics", http.StatusInternalServerError)
		return
	}
	daily, err := s.ctrl.DailyStats(days)
	if err != nil {
		slog.Error("Failed to get daily stats", "error", err)
		http.Error(w, "Failed to get statistics", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{
		"overall": overall,
		"daily":   daily,
	})
}

// handleStatus returns the current agent status
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, s.ctrl.StatusSnapshot())
}
