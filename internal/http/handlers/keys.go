package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"genconsole/internal/domain"
)

type keyRequest struct {
	Key string `json:"key"`
}

type keyItem struct {
	Key    string `json:"key"`
	Masked string `json:"masked"`
}

// KeysList returns the configured API keys in pool order.
func (a *App) KeysList(w http.ResponseWriter, r *http.Request) {
	values, err := a.Keys.List(r.Context())
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load keys")
		return
	}
	items := make([]keyItem, 0, len(values))
	for _, v := range values {
		items = append(items, keyItem{Key: v, Masked: maskKey(v)})
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

// KeysAdd appends a key to the pool.
func (a *App) KeysAdd(w http.ResponseWriter, r *http.Request) {
	var req keyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if err := a.Keys.Add(r.Context(), req.Key); err != nil {
		if errors.Is(err, domain.ErrDuplicateKey) {
			a.error(w, http.StatusConflict, "duplicate", "key already exists")
			return
		}
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	a.json(w, http.StatusCreated, map[string]string{"status": "added"})
}

// KeysRemove deletes a key by value.
func (a *App) KeysRemove(w http.ResponseWriter, r *http.Request) {
	var req keyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if err := a.Keys.Remove(r.Context(), req.Key); err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to remove key")
		return
	}
	a.json(w, http.StatusOK, map[string]string{"status": "removed"})
}

func maskKey(key string) string {
	key = strings.TrimSpace(key)
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}
