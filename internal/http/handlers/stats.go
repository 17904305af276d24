package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"genconsole/internal/sqlinline"
)

const defaultStatsDays = 30

// StatsDashboard returns the recent daily usage counters, newest day first.
func (a *App) StatsDashboard(w http.ResponseWriter, r *http.Request) {
	days := defaultStatsDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 365 {
			days = n
		}
	}

	rows, err := a.SQL.Query(r.Context(), sqlinline.QSelectAnalyticsSummary, days)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load analytics")
		return
	}
	defer rows.Close()

	items := make([]map[string]any, 0)
	for rows.Next() {
		var day time.Time
		var counters []byte
		var updatedAt time.Time
		if err := rows.Scan(&day, &counters, &updatedAt); err != nil {
			continue
		}
		parsed := map[string]int{}
		_ = json.Unmarshal(counters, &parsed)
		items = append(items, map[string]any{
			"day":        day.Format("2006-01-02"),
			"counters":   parsed,
			"updated_at": updatedAt,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}
