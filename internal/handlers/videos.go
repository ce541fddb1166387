package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/emran-niftyitsolution/streaming/internal/database"
	"github.com/emran-niftyitsolution/streaming/internal/models"
)

// ListVideosHandler returns all published videos, newest first.
func ListVideosHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			sendError(w, "Method not allowed", "METHOD_NOT_ALLOWED", http.StatusMethodNotAllowed)
			return
		}

		videos, err := database.ListVideos(db)
		if err != nil {
			slog.Error("failed to list videos", "error", err)
			sendError(w, "Internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
			return
		}
		if videos == nil {
			videos = []*models.Video{}
		}

		sendJSON(w, http.StatusOK, videos)
	}
}
