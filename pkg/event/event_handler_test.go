package event

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEventRouter(t *testing.T) (*mux.Router, EventService, func()) {
	service, _, _, teardown := setupService(t)
	handler := NewEventHandler(service)

	r := mux.NewRouter()
	r.HandleFunc("/api/event", handler.ListEvents).Methods("GET")
	r.HandleFunc("/api/event", handler.CreateEvent).Methods("POST")
	r.HandleFunc("/api/event/{eventId}", handler.GetEvent).Methods("GET")
	r.HandleFunc("/api/event/{eventId}", handler.UpdateEvent).Methods("PUT")
	r.HandleFunc("/api/event/{eventId}", handler.DeleteEvent).Methods("DELETE")
	return r, service, teardown
}

func TestEventHandlerCreateAndGet(t *testing.T) {
	router, _, teardown := setupEventRouter(t)
	defer teardown()

	payload := EventDTO{
		Title:     "Tech Conference",
		Start:     time.Date(2025, time.April, 17, 10, 0, 0, 0, time.UTC),
		End:       time.Date(2025, time.April, 17, 12, 0, 0, 0, time.UTC),
		Draggable: true,
		Tags:      []string{"conference"},
		Images:    []ImageDTO{{URL: "https://img.example/a.jpg", IsPrimary: true}},
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/event", bytes.NewReader(body)))

	require.Equal(t, http.StatusCreated, rec.Code)
	var created EventDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Tech Conference", created.Title)
	assert.NotEmpty(t, created.Color) // default applied
	require.Len(t, created.Images, 1)
	assert.NotEmpty(t, created.Images[0].ID)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/event/"+created.ID, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var fetched EventDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fetched))
	assert.Equal(t, created.ID, fetched.ID)
}

func TestEventHandlerCreateRejectsInvalidSpan(t *testing.T) {
	router, _, teardown := setupEventRouter(t)
	defer teardown()

	payload := EventDTO{
		Title: "Broken",
		Start: time.Date(2025, time.April, 17, 12, 0, 0, 0, time.UTC),
		End:   time.Date(2025, time.April, 17, 10, 0, 0, 0, time.UTC),
	}
	body, _ := json.Marshal(payload)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/event", bytes.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEventHandlerList(t *testing.T) {
	router, service, teardown := setupEventRouter(t)
	defer teardown()
	ctx := httptest.NewRequest("GET", "/", nil).Context()

	music := sampleEvent("music", time.Date(2025, time.April, 18, 10, 0, 0, 0, time.UTC))
	music.Category = "Music"
	tech := sampleEvent("tech", time.Date(2025, time.May, 2, 10, 0, 0, 0, time.UTC))
	tech.Category = "Tech"
	for _, e := range []Event{music, tech} {
		_, err := service.Create(ctx, e)
		require.NoError(t, err)
	}

	t.Run("lists everything by default", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/event", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var dtos []EventDTO
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dtos))
		assert.Len(t, dtos, 2)
	})

	t.Run("filters by category", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/event?category=music", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var dtos []EventDTO
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dtos))
		require.Len(t, dtos, 1)
		assert.Equal(t, "music", dtos[0].ID)
	})

	t.Run("filters by range", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET",
			"/api/event?from=2025-05-01T00:00:00Z&to=2025-05-31T00:00:00Z", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var dtos []EventDTO
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dtos))
		require.Len(t, dtos, 1)
		assert.Equal(t, "tech", dtos[0].ID)
	})

	t.Run("rejects malformed range", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/event?from=tomorrow", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects malformed upcoming limit", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/event?upcoming=lots", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestEventHandlerUpdate(t *testing.T) {
	router, service, teardown := setupEventRouter(t)
	defer teardown()
	ctx := httptest.NewRequest("GET", "/", nil).Context()

	_, err := service.Create(ctx, sampleEvent("e1", time.Date(2025, time.April, 18, 10, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	payload := EventDTO{
		Title:     "Renamed",
		Start:     time.Date(2025, time.April, 18, 10, 0, 0, 0, time.UTC),
		End:       time.Date(2025, time.April, 18, 11, 0, 0, 0, time.UTC),
		Draggable: true,
	}
	body, _ := json.Marshal(payload)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("PUT", "/api/event/e1", bytes.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	var updated EventDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "e1", updated.ID) // path id wins over body
	assert.Equal(t, "Renamed", updated.Title)

	t.Run("unknown event is 404", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("PUT", "/api/event/ghost", bytes.NewReader(body)))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestEventHandlerDelete(t *testing.T) {
	router, service, teardown := setupEventRouter(t)
	defer teardown()
	ctx := httptest.NewRequest("GET", "/", nil).Context()

	_, err := service.Create(ctx, sampleEvent("e1", time.Date(2025, time.April, 18, 10, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("DELETE", "/api/event/e1", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("DELETE", "/api/event/e1", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
