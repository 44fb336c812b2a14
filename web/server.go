// Package web exposes the agent's command boundary over HTTP plus a
// WebSocket stream of status updates for the control page.
package web

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"macrorec/storage"
)

//go:embed static/*
var staticFiles embed.FS

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// Status is a snapshot of what the agent is doing.
type Status struct {
	HooksInstalled bool    `json:"hooksInstalled"`
	Recording      bool    `json:"recording"`
	Playing        bool    `json:"playing"`
	Progress       float64 `json:"progress"`
	LoadedEvents   int     `json:"loadedEvents"`
}

// Controller is the command surface the server drives; the agent
// implements it.
type Controller interface {
	InstallHooks() error
	UninstallHooks() error
	StartRecording() error
	StopRecording() (*storage.Recording, error)
	LoadRecording(id string) error
	LoadRecordingFile(path string) error
	StartReplay(speed float64) error
	StopReplay()
	ReplayProgress() float64
	Recordings(limit, offset int) ([]storage.Recording, error)
	DeleteRecording(id string) error
	Stats() (*storage.OverallStats, error)
	DailyStats(days int) ([]storage.DailyStats, error)
	StatusSnapshot() Status
}

// Server represents the web server
type Server struct {
	ctrl Controller
	port int
	hub  *Hub
}

// NewServer creates a new web server
func NewServer(ctrl Controller, port int) *Server {
	hub := NewHub()
	go hub.Run()

	return &Server{
		ctrl: ctrl,
		port: port,
		hub:  hub,
	}
}

// Start starts the web server
func (s *Server) Start() error {
	mux := http.NewServeMux()

	// API endpoints
	mux.HandleFunc("/api/hooks/install", s.handleInstallHooks)
	mux.HandleFunc("/api/hooks/uninstall", s.handleUninstallHooks)
	mux.HandleFunc("/api/record/start", s.handleStartRecording)
	mux.HandleFunc("/api/record/stop", s.handleStopRecording)
	mux.HandleFunc("/api/replay/start", s.handleStartReplay)
	mux.HandleFunc("/api/replay/stop", s.handleStopReplay)
	mux.HandleFunc("/api/replay/progress", s.handleReplayProgress)
	mux.HandleFunc("/api/recordings", s.handleRecordings)
	mux.HandleFunc("/api/recordings/", s.handleRecordingByID)
	mux.HandleFunc("/api/stats", s.handleStats)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/ws", s.handleWebSocket)

	// Static files
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return fmt.Errorf("failed to load static files: %w", err)
	}
	mux.Handle("/", http.FileServer(http.FS(staticFS)))

	addr := fmt.Sprintf(":%d", s.port)
	slog.Info("Starting web server", "port", s.port, "url", fmt.Sprintf("http://localhost:%d", s.port))

	return http.ListenAndServe(addr, mux)
}

// BroadcastStatus pushes a status snapshot to every connected client.
func (s *Server) BroadcastStatus(st Status) {
	s.hub.Broadcast(st)
}
