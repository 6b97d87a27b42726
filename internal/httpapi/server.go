// Package httpapi exposes a small read-only diagnostics surface on the
// local network: current outbox depth, directory cache state, and who
// the tracker believes is inside. It never mutates reader state.
package httpapi

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/GabrielViecili/RFID-and-distributed-systems/internal/access/directory"
	"github.com/GabrielViecili/RFID-and-distributed-systems/internal/access/presence"
	"github.com/GabrielViecili/RFID-and-distributed-systems/internal/access/report"
	"github.com/GabrielViecili/RFID-and-distributed-systems/internal/access/store"
)

type Dependencies struct {
	Logger  *log.Logger
	Addr    string
	Outbox  store.OutboxStore
	Cache   *directory.Cache
	Tracker *presence.Tracker
	DayLog  *report.Log
}

type Server struct {
	httpServer *http.Server
	logger     *log.Logger
	mux        *http.ServeMux
	outbox     store.OutboxStore
	cache      *directory.Cache
	tracker    *presence.Tracker
	dayLog     *report.Log
	startedAt  time.Time
}

func NewServer(d Dependencies) *Server {
	mux := http.NewServeMux()

	s := &Server{
		logger:    d.Logger,
		mux:       mux,
		outbox:    d.Outbox,
		cache:     d.Cache,
		tracker:   d.Tracker,
		dayLog:    d.DayLog,
		startedAt: time.Now().UTC(),
	}

	mux.HandleFunc("GET /v1/status", s.handleStatus)
	mux.HandleFunc("GET /v1/roster", s.handleRoster)

	handler := loggingMiddleware(d.Logger, mux)

	s.httpServer = &http.Server{
		Addr:              d.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

type statusResponse struct {
	OutboxDepth   int    `json:"outbox_depth"`
	DirectorySize int    `json:"directory_size"`
	LastRefresh   string `json:"last_refresh,omitempty"`
	EventsToday   int    `json:"events_today"`
	UptimeSeconds int64  `json:"uptime_s"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	pending, err := s.outbox.Pending(r.Context())
	if err != nil {
		s.logger.Printf("status: outbox read failed: %v", err)
		writeError(w, http.StatusInternalServerError, "outbox unavailable")
		return
	}

	resp := statusResponse{
		OutboxDepth:   len(pending),
		DirectorySize: s.cache.Size(),
		EventsToday:   s.dayLog.Len(),
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
	}
	if t := s.cache.LastRefresh(); !t.IsZero() {
		resp.LastRefresh = t.UTC().Format(time.RFC3339)
	}

	writeJSON(w, http.StatusOK, resp)
}

type rosterEntry struct {
	BadgeID        string `json:"badge_id"`
	Name           string `json:"name"`
	Inside         bool   `json:"inside"`
	EnteredAt      string `json:"entered_at,omitempty"`
	TotalMinutes   int    `json:"total_minutes"`
	KnownDirectory bool   `json:"known"`
}

func (s *Server) handleRoster(w http.ResponseWriter, r *http.Request) {
	records := s.tracker.Snapshot()

	entries := make([]rosterEntry, 0, len(records))
	for _, rec := range records {
		e := rosterEntry{
			BadgeID:      rec.BadgeID,
			Name:         "Unknown",
			Inside:       rec.Inside,
			TotalMinutes: int(rec.Cumulative.Minutes()),
		}
		if rec.Inside {
			e.EnteredAt = rec.EnteredAt.UTC().Format(time.RFC3339)
		}
		if de, ok := s.cache.Resolve(rec.BadgeID); ok {
			e.Name = de.Name
			e.KnownDirectory = true
		}
		entries = append(entries, e)
	}

	writeJSON(w, http.StatusOK, map[string]any{"roster": entries})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
