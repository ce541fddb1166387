package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/emran-niftyitsolution/streaming/internal/config"
	"github.com/emran-niftyitsolution/streaming/internal/utils"
)

// HealthResponse is the /health payload.
type HealthResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Database      string  `json:"database"`
	DiskFree      string  `json:"disk_free"`
	DiskUsedPct   float64 `json:"disk_used_percent"`
}

// HealthHandler reports process, database, and disk health.
func HealthHandler(db *sql.DB, cfg *config.Config, startTime time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			sendError(w, "Method not allowed", "METHOD_NOT_ALLOWED", http.StatusMethodNotAllowed)
			return
		}

		// Health probes must never be cached.
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")

		resp := HealthResponse{
			Status:        "healthy",
			UptimeSeconds: time.Since(startTime).Seconds(),
			Database:      "ok",
		}
		status := http.StatusOK

		if err := db.PingContext(r.Context()); err != nil {
			slog.Error("health check database ping failed", "error", err)
			resp.Status = "unhealthy"
			resp.Database = "unreachable"
			status = http.StatusServiceUnavailable
		}

		if info, err := utils.GetDiskSpace(cfg.VideoDir); err == nil {
			resp.DiskFree = utils.FormatBytes(info.AvailableBytes)
			resp.DiskUsedPct = info.UsedPercent
			if info.AvailableBytes < utils.MinimumFreeSpace && resp.Status == "healthy" {
				resp.Status = "degraded"
			}
		} else {
			slog.Warn("health check disk probe failed", "error", err)
		}

		sendJSON(w, status, resp)
	}
}
