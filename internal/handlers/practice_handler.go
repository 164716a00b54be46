// internal/handlers/practice_handler.go
package handlers

import (
	"errors"
	"net/http"

	"bgde_trainer/internal/model"
	"bgde_trainer/internal/service"
	"bgde_trainer/internal/webutil"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type PracticeHandler struct {
	service service.PracticeService
}

func NewPracticeHandler(s service.PracticeService) *PracticeHandler {
	return &PracticeHandler{service: s}
}

func (h *PracticeHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req model.StartSessionRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		webutil.HandleError(w, model.NewAppError("INVALID_REQUEST", "Invalid request body.", "", err))
		return
	}
	if err := webutil.Validator.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			webutil.HandleError(w, webutil.NewValidationErrorResponse(verrs))
			return
		}
		webutil.HandleError(w, err)
		return
	}

	direction, err := model.ParseDirection(req.Direction)
	if err != nil {
		webutil.HandleError(w, model.NewAppError("INVALID_REQUEST", "Unknown practice direction.", "direction", err))
		return
	}

	resp, err := h.service.StartSession(r.Context(), direction, req.Size)
	if err != nil {
		webutil.HandleError(w, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusCreated, resp)
}

func (h *PracticeHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	resp, err := h.service.GetSession(r.Context(), id)
	if err != nil {
		webutil.HandleError(w, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *PracticeHandler) Flip(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	resp, err := h.service.Flip(r.Context(), id)
	if err != nil {
		webutil.HandleError(w, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *PracticeHandler) Grade(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var req model.GradeRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		webutil.HandleError(w, model.NewAppError("INVALID_REQUEST", "Invalid request body.", "", err))
		return
	}
	if err := webutil.Validator.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			webutil.HandleError(w, webutil.NewValidationErrorResponse(verrs))
			return
		}
		webutil.HandleError(w, err)
		return
	}

	resp, err := h.service.Grade(r.Context(), id, *req.Quality)
	if err != nil {
		webutil.HandleError(w, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *PracticeHandler) Skip(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	resp, err := h.service.Skip(r.Context(), id)
	if err != nil {
		webutil.HandleError(w, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *PracticeHandler) End(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	resp, err := h.service.End(r.Context(), id)
	if err != nil {
		webutil.HandleError(w, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *PracticeHandler) History(w http.ResponseWriter, r *http.Request) {
	history, err := h.service.History(r.Context())
	if err != nil {
		webutil.HandleError(w, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, history)
}

func (h *PracticeHandler) sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "session_id"))
	if err != nil {
		webutil.HandleError(w, model.NewAppError("INVALID_REQUEST", "Invalid session ID format.", "session_id", model.ErrInvalidInput))
		return uuid.Nil, false
	}
	return id, true
}
