package api

import (
	"net/http"
	"runtime"
	"time"

	"github.com/nerrad567/relay-core/internal/wifi"
)

// StationReporter exposes station counters. *wifi.Machine satisfies it.
type StationReporter interface {
	Stats() wifi.Stats
}

// SystemStatus is the GET /status body.
type SystemStatus struct {
	Timestamp     string        `json:"timestamp"`
	Version       string        `json:"version"`
	UptimeSeconds int64         `json:"uptime_seconds"`
	Runtime       RuntimeStatus `json:"runtime"`
	WebSocket     WSStatus      `json:"websocket"`
	Station       *wifi.Stats   `json:"station,omitempty"`
	Outputs       []int         `json:"outputs"`
}

// RuntimeStatus contains Go runtime statistics.
type RuntimeStatus struct {
	Goroutines    int     `json:"goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`
	MemoryTotalMB float64 `json:"memory_total_mb"`
	NumGC         uint32  `json:"num_gc"`
}

// WSStatus contains WebSocket hub statistics.
type WSStatus struct {
	Enabled          bool `json:"enabled"`
	ConnectedClients int  `json:"connected_clients"`
}

// handleStatus returns a one-shot diagnostic view of the controller.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	status := SystemStatus{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Runtime: RuntimeStatus{
			Goroutines:    runtime.NumGoroutine(),
			MemoryAllocMB: float64(memStats.Alloc) / 1024 / 1024,
			MemoryTotalMB: float64(memStats.TotalAlloc) / 1024 / 1024,
			NumGC:         memStats.NumGC,
		},
	}

	if levels, err := s.bank.Snapshot(); err != nil {
		s.logger.Warn("status: output read failed", "error", err)
	} else {
		status.Outputs = encodeLevels(levels)
	}

	if s.hub != nil {
		status.WebSocket = WSStatus{Enabled: true, ConnectedClients: s.hub.ClientCount()}
	}
	if s.station != nil {
		stats := s.station.Stats()
		status.Station = &stats
	}

	writeJSON(w, http.StatusOK, status)
}
