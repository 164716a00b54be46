// internal/handlers/progress_handler.go
package handlers

import (
	"net/http"
	"strconv"

	"bgde_trainer/internal/model"
	"bgde_trainer/internal/service"
	"bgde_trainer/internal/webutil"
)

type ProgressHandler struct {
	service service.ProgressService
}

func NewProgressHandler(s service.ProgressService) *ProgressHandler {
	return &ProgressHandler{service: s}
}

func (h *ProgressHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		webutil.HandleError(w, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, summary)
}

func (h *ProgressHandler) GetSRSStats(w http.ResponseWriter, r *http.Request) {
	direction, err := model.ParseDirection(r.URL.Query().Get("direction"))
	if err != nil {
		webutil.HandleError(w, model.NewAppError("INVALID_REQUEST", "Unknown practice direction.", "direction", err))
		return
	}

	stats, err := h.service.SRSStats(r.Context(), direction)
	if err != nil {
		webutil.HandleError(w, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, stats)
}

func (h *ProgressHandler) GetWeakItems(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			webutil.HandleError(w, model.NewAppError("INVALID_REQUEST", "Limit must be a non-negative integer.", "limit", model.ErrInvalidInput))
			return
		}
		limit = n
	}

	items, err := h.service.WeakItems(r.Context(), limit)
	if err != nil {
		webutil.HandleError(w, err)
		return
	}
	if items == nil {
		items = []model.WeakItem{}
	}
	webutil.RespondWithJSON(w, http.StatusOK, items)
}

func (h *ProgressHandler) ResetProgress(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ResetProgress(r.Context()); err != nil {
		webutil.HandleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProgressHandler) ClearReviews(w http.ResponseWriter, r *http.Request) {
	removed, err := h.service.ClearReviews(r.Context())
	if err != nil {
		webutil.HandleError(w, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, map[string]int64{"removed": removed})
}
