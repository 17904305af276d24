package handlers

import (
	"encoding/json"
	"net/http"

	"genconsole/internal/infra"
	"genconsole/internal/infra/geoip"
	"genconsole/internal/infra/keys"
	"genconsole/internal/storage"
)

// App bundles the dependencies the API handlers share.
type App struct {
	SQL    infra.SQLExecutor
	Cfg    *infra.Config
	Logger infra.Logger
	Keys   *keys.Store
	Store  *storage.FileStore
	// Geo is optional; nil disables country counters.
	Geo geoip.CountryResolver
}

func NewApp(sql infra.SQLExecutor, cfg *infra.Config, logger infra.Logger, keyStore *keys.Store, store *storage.FileStore, geo geoip.CountryResolver) *App {
	return &App{SQL: sql, Cfg: cfg, Logger: logger, Keys: keyStore, Store: store, Geo: geo}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, slug, message string) {
	a.json(w, code, map[string]any{"error": slug, "message": message})
}
