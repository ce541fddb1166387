package uploads

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/emran-niftyitsolution/streaming/internal/database"
	"github.com/emran-niftyitsolution/streaming/internal/metrics"
)

// Reaper removes abandoned upload sessions: chunk remnants on disk plus the
// session row. A session is abandoned when its last activity is older than
// the configured expiry.
type Reaper struct {
	db       *sql.DB
	store    *ChunkStore
	expiry   time.Duration
	interval time.Duration
}

// NewReaper creates a reaper for abandoned sessions.
func NewReaper(db *sql.DB, store *ChunkStore, expiry, interval time.Duration) *Reaper {
	return &Reaper{db: db, store: store, expiry: expiry, interval: interval}
}

// Run reaps on the configured interval until ctx is cancelled. The first
// sweep happens immediately so a restart clears stale state without waiting
// a full interval.
func (r *Reaper) Run(ctx context.Context) {
	slog.Info("session reaper started",
		"expiry", r.expiry,
		"interval", r.interval,
	)

	r.Sweep()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session reaper stopped")
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Sweep performs one reap pass and returns the number of sessions removed.
func (r *Reaper) Sweep() int {
	cutoff := time.Now().Add(-r.expiry)

	sessions, err := database.GetAbandonedSessions(r.db, cutoff)
	if err != nil {
		slog.Error("failed to query abandoned sessions", "error", err)
		return 0
	}

	removed := 0
	for _, session := range sessions {
		if err := r.store.DeleteChunks(session.SessionKey); err != nil {
			slog.Error("failed to delete abandoned chunks",
				"session", session.SessionKey, "error", err)
			continue
		}
		if err := database.DeleteUploadSession(r.db, session.SessionKey); err != nil {
			slog.Error("failed to delete abandoned session row",
				"session", session.SessionKey, "error", err)
			continue
		}
		removed++
		slog.Info("abandoned session reaped",
			"session", session.SessionKey,
			"chunks_received", session.ChunksReceived,
			"completed", session.Completed,
			"last_activity", session.LastActivity,
		)
	}

	if removed > 0 {
		metrics.SessionsReapedTotal.Add(float64(removed))
		slog.Info("reap pass complete", "removed", removed)
	}
	return removed
}
