// internal/handlers/practice_handler_test.go
package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"bgde_trainer/internal/config"
	"bgde_trainer/internal/model"
	"bgde_trainer/internal/progress"
	"bgde_trainer/internal/repository"
	"bgde_trainer/internal/service"
	"bgde_trainer/internal/srs"
	"bgde_trainer/internal/vocab"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupRouter(t *testing.T) *chi.Mux {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&repository.KVEntry{}))

	kv := repository.NewGormKVStore()
	store := srs.NewStore(kv)
	ledger := progress.NewLedger(kv)
	catalogue := vocab.NewStatic([]model.VocabularyItem{
		{ID: "w1", Word: "куче", Translation: "Hund"},
		{ID: "w2", Word: "котка", Translation: "Katze"},
	})
	cfg := &config.Config{App: config.AppConfig{
		SessionSize:   20,
		DailyXPTarget: 50,
		XPPerReview:   10,
		HistoryLimit:  50,
	}}

	practiceSvc := service.NewPracticeService(db, kv, store, ledger, catalogue, cfg)
	progressSvc := service.NewProgressService(db, store, ledger, cfg)

	h := NewPracticeHandler(practiceSvc)
	ph := NewProgressHandler(progressSvc)

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/sessions", h.StartSession)
		r.Get("/sessions/history", h.History)
		r.Route("/sessions/{session_id}", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Post("/flip", h.Flip)
			r.Post("/grade", h.Grade)
			r.Post("/skip", h.Skip)
			r.Post("/end", h.End)
		})
		r.Get("/progress", ph.GetSummary)
		r.Get("/progress/srs-stats", ph.GetSRSStats)
	})
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeSession(t *testing.T, rr *httptest.ResponseRecorder) model.SessionResponse {
	t.Helper()
	var resp model.SessionResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func TestPracticeHandler_FullSessionFlow(t *testing.T) {
	router := setupRouter(t)

	rr := doJSON(t, router, http.MethodPost, "/api/v1/sessions", map[string]any{"direction": "de-bg", "size": 1})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	sess := decodeSession(t, rr)
	require.NotNil(t, sess.Card)
	assert.Equal(t, "Hund", sess.Card.Front)
	assert.Empty(t, sess.Card.Back)

	base := "/api/v1/sessions/" + sess.SessionID.String()

	rr = doJSON(t, router, http.MethodPost, base+"/flip", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	flipped := decodeSession(t, rr)
	assert.True(t, flipped.IsFlipped)
	require.NotNil(t, flipped.Card)
	assert.Equal(t, "куче", flipped.Card.Back)

	rr = doJSON(t, router, http.MethodPost, base+"/grade", map[string]any{"quality": 5})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	done := decodeSession(t, rr)
	assert.Equal(t, "complete", done.State)
	require.NotNil(t, done.Summary)
	assert.Equal(t, 1, done.Summary.CorrectCount)

	rr = doJSON(t, router, http.MethodGet, "/api/v1/progress", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var summary model.ProgressSummary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &summary))
	assert.Equal(t, 10, summary.TotalXP)
	assert.Equal(t, 1, summary.CurrentStreak)

	rr = doJSON(t, router, http.MethodGet, "/api/v1/sessions/history", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var history []model.SessionSummary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &history))
	assert.Len(t, history, 1)
}

func TestPracticeHandler_ValidationErrors(t *testing.T) {
	router := setupRouter(t)

	tests := []struct {
		name     string
		body     map[string]any
		wantCode int
	}{
		{"missing direction", map[string]any{}, http.StatusBadRequest},
		{"unknown direction", map[string]any{"direction": "en-fr"}, http.StatusBadRequest},
		{"size too large", map[string]any{"direction": "de-bg", "size": 500}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doJSON(t, router, http.MethodPost, "/api/v1/sessions", tt.body)
			assert.Equal(t, tt.wantCode, rr.Code, rr.Body.String())

			var errResp model.APIErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &errResp))
			assert.NotEmpty(t, errResp.Error.Code)
		})
	}
}

func TestPracticeHandler_StateErrors(t *testing.T) {
	router := setupRouter(t)

	rr := doJSON(t, router, http.MethodPost, "/api/v1/sessions", map[string]any{"direction": "bg-de"})
	require.Equal(t, http.StatusCreated, rr.Code)
	sess := decodeSession(t, rr)
	base := "/api/v1/sessions/" + sess.SessionID.String()

	// Grading before a flip conflicts with the session state.
	rr = doJSON(t, router, http.MethodPost, base+"/grade", map[string]any{"quality": 4})
	assert.Equal(t, http.StatusConflict, rr.Code)

	// Out-of-range quality fails validation.
	rr = doJSON(t, router, http.MethodPost, base+"/flip", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	rr = doJSON(t, router, http.MethodPost, base+"/grade", map[string]any{"quality": 6})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// Double flip conflicts.
	rr = doJSON(t, router, http.MethodPost, base+"/flip", nil)
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestPracticeHandler_UnknownSession(t *testing.T) {
	router := setupRouter(t)

	rr := doJSON(t, router, http.MethodPost, "/api/v1/sessions/not-a-uuid/flip", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doJSON(t, router, http.MethodPost, "/api/v1/sessions/6b8f8a80-1111-2222-3333-444455556666/flip", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestProgressHandler_SRSStatsRequiresDirection(t *testing.T) {
	router := setupRouter(t)

	rr := doJSON(t, router, http.MethodGet, "/api/v1/progress/srs-stats", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doJSON(t, router, http.MethodGet, "/api/v1/progress/srs-stats?direction=de-bg", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var stats model.SRSStats
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &stats))
	assert.Equal(t, 0, stats.Total)
}
