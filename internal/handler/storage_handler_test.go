package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/assert/v2"

	"tradingcoach/internal/model"
	"tradingcoach/internal/repository"
)

type brokenStore struct{}

func (brokenStore) Get(ctx context.Context, key string) (string, bool, error) {
	return "", false, errors.New("redis down")
}

func (brokenStore) Set(ctx context.Context, key, value string) error {
	return errors.New("redis down")
}

func (brokenStore) Remove(ctx context.Context, key string) error {
	return errors.New("redis down")
}

func (brokenStore) Ping(ctx context.Context) error {
	return errors.New("redis down")
}

func newTestStorageRouter(store *repository.ClientStorage) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ClientIdentity())
	h := NewStorageHandler(store, store)
	r.GET("/api/history", h.GetHistory)
	r.DELETE("/api/history", h.ClearHistory)
	r.GET("/api/history/:id", h.GetEntry)
	r.DELETE("/api/history/:id", h.DeleteEntry)
	r.GET("/api/profile", h.GetProfile)
	r.PUT("/api/profile", h.SaveProfile)
	r.DELETE("/api/profile", h.RemoveProfile)
	return r
}

func do(r *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(ClientIDHeader, "alice")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHistoryEndpoints(t *testing.T) {
	store := repository.NewClientStorage(repository.NewMemoryStore())
	store.AddEntry(context.Background(), "alice", model.AnalysisEntry{
		ID:       "e1",
		Date:     time.Date(2026, time.March, 4, 15, 30, 0, 0, time.UTC),
		Analyses: []model.AnalysisRecord{{ID: "a1", ChartAnalysis: model.ChartAnalysis{Source: "OpenAI"}}},
	})
	r := newTestStorageRouter(store)

	w := do(r, "GET", "/api/history", "")
	assert.Equal(t, http.StatusOK, w.Code)
	var entries []model.AnalysisEntry
	json.Unmarshal(w.Body.Bytes(), &entries)
	assert.Equal(t, 1, len(entries))

	w = do(r, "GET", "/api/history/e1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	var entry model.AnalysisEntry
	json.Unmarshal(w.Body.Bytes(), &entry)
	assert.Equal(t, "a1", entry.Analyses[0].ID)

	w = do(r, "GET", "/api/history/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, "DELETE", "/api/history/e1", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(r, "DELETE", "/api/history/e1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, "DELETE", "/api/history", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestHistory_StorageError(t *testing.T) {
	r := newTestStorageRouter(repository.NewClientStorage(brokenStore{}))

	w := do(r, "GET", "/api/history", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestProfileEndpoints(t *testing.T) {
	store := repository.NewClientStorage(repository.NewMemoryStore())
	r := newTestStorageRouter(store)

	w := do(r, "GET", "/api/profile", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	profile := `{
		"profile": "Breakout Trader",
		"strategy": "TSL Breakout",
		"experience": "Experienced",
		"timeframe": "15m - 1h",
		"asset": ["Indices"],
		"risk": "Conservative"
	}`
	w = do(r, "PUT", "/api/profile", profile)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, "GET", "/api/profile", "")
	assert.Equal(t, http.StatusOK, w.Code)
	var got model.TraderProfile
	json.Unmarshal(w.Body.Bytes(), &got)
	assert.Equal(t, "TSL Breakout", got.Strategy)
	assert.Equal(t, []string{"Indices"}, got.Asset)

	w = do(r, "DELETE", "/api/profile", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(r, "GET", "/api/profile", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSaveProfile_Validation(t *testing.T) {
	r := newTestStorageRouter(repository.NewClientStorage(repository.NewMemoryStore()))

	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "malformed", body: `{"profile":`, want: "Invalid profile"},
		{name: "missing fields", body: `{"profile":"Day Trader"}`, want: "Incomplete profile"},
		{name: "empty asset list", body: `{"profile":"a","strategy":"b","experience":"c","timeframe":"d","asset":[],"risk":"e"}`, want: "Asset is min"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, "PUT", "/api/profile", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, true, strings.Contains(w.Body.String(), tt.want))
		})
	}
}

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		store  repository.KeyValueStore
		status int
		body   string
	}{
		{name: "healthy", store: repository.NewMemoryStore(), status: http.StatusOK, body: `"storage":"connected"`},
		{name: "storage down", store: brokenStore{}, status: http.StatusServiceUnavailable, body: `"storage":"disconnected"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			h := NewHealthHandler(repository.NewClientStorage(tt.store), []string{"OpenAI", "Gemini"})
			r.GET("/health", h.GetHealth)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, true, strings.Contains(w.Body.String(), tt.body))
			assert.Equal(t, true, strings.Contains(w.Body.String(), `"vendors":["OpenAI","Gemini"]`))
		})
	}
}
