package handlers

import "net/http"

// Models exposes the configured model fallback order per request class so the
// console can populate its pickers.
func (a *App) Models(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{
		"text":  a.Cfg.TextModels,
		"image": a.Cfg.ImageModels,
		"video": a.Cfg.VideoModels,
	})
}
