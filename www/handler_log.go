package www

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/icodeforyou/spotprice-go/logging"
)

type logEntryJSON struct {
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	Attrs     string    `json:"attrs"`
}

// NewLogHandler pages through the persisted log, newest first.
// Query: page (from 1), pageSize, level (DEBUG, INFO, WARN, ERROR).
func NewLogHandler(logger *slog.Logger, logs LogReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := intOrDefault(r.URL, "page", 1)
		pageSize := intOrDefault(r.URL, "pageSize", 25)
		minLvl := slog.LevelDebug
		if lvl := r.URL.Query().Get("level"); lvl != "" {
			minLvl = logging.LevelFromString(&lvl)
		}

		rows, err := logs.GetLogEntries(r.Context(), minLvl, page, pageSize)
		if err != nil {
			logger.Error("handling log request", slog.Any("error", err))
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}

		entries := make([]logEntryJSON, 0, len(rows))
		for _, e := range rows {
			entries = append(entries, logEntryJSON{
				Timestamp: e.Timestamp,
				Level:     slog.Level(e.Level).String(),
				Message:   e.Message,
				Attrs:     e.Attrs,
			})
		}
		respondJSON(w, http.StatusOK, entries)
	}
}
