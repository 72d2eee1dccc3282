package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/embercortex/embercortex/internal/api/response"
	"github.com/embercortex/embercortex/internal/domain"
)

// SettingHandler serves persisted key/value preferences
type SettingHandler struct {
	settingRepo domain.SettingRepository
}

// NewSettingHandler creates a new setting handler
func NewSettingHandler(settingRepo domain.SettingRepository) *SettingHandler {
	return &SettingHandler{settingRepo: settingRepo}
}

// Get returns one setting by key
func (h *SettingHandler) Get(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	setting, err := h.settingRepo.Get(r.Context(), key)
	if err != nil {
		response.InternalError(w, "failed to get setting")
		return
	}
	if setting == nil {
		response.NotFound(w, "setting not found")
		return
	}

	response.OK(w, setting)
}

// Set stores one setting; the body is the raw JSON value
func (h *SettingHandler) Set(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	body, err := io.ReadAll(r.Body)
	if err != nil {
		response.BadRequest(w, "failed to read body")
		return
	}
	if !json.Valid(body) {
		response.BadRequest(w, "value must be valid JSON")
		return
	}

	if err := h.settingRepo.Set(r.Context(), key, body); err != nil {
		response.InternalError(w, "failed to set setting")
		return
	}

	response.OK(w, map[string]string{"message": "setting saved"})
}
