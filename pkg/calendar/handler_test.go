package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/delat04/agda/internal/utils"
	"github.com/delat04/agda/pkg/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type eventProviderStub struct {
	events     []event.Event
	updated    []Reschedule
	failUpdate error
}

func (s *eventProviderStub) GetEvents(context.Context) ([]event.Event, error) {
	return s.events, nil
}

func (s *eventProviderStub) Get(_ context.Context, id string) (*event.Event, error) {
	for _, e := range s.events {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, event.ErrEventNotFound
}

func (s *eventProviderStub) GetEventsForRange(_ context.Context, from, to time.Time) ([]event.Event, error) {
	matched := []event.Event{}
	for _, e := range s.events {
		if e.Start.Before(to) && e.End.After(from) {
			matched = append(matched, e)
		}
	}
	return matched, nil
}

func (s *eventProviderStub) UpdateEventDates(_ context.Context, id string, newStart, newEnd time.Time) (*event.Event, error) {
	if s.failUpdate != nil {
		return nil, s.failUpdate
	}
	s.updated = append(s.updated, Reschedule{EventID: id, NewStart: newStart, NewEnd: newEnd})
	for i := range s.events {
		if s.events[i].ID == id {
			s.events[i].Start = newStart
			s.events[i].End = newEnd
			return &s.events[i], nil
		}
	}
	return nil, event.ErrEventNotFound
}

func setupHandler(events ...event.Event) (*Handler, *eventProviderStub, *utils.MockClock) {
	clock := &utils.MockClock{FixedNow: time.Date(2025, time.April, 16, 12, 0, 0, 0, time.UTC)}
	provider := &eventProviderStub{events: events}
	view := NewViewState(clock)
	handler := NewHandler(view, provider, provider, NewICSRenderer("Agda"), clock, 64)
	return handler, provider, clock
}

func TestHandlerGetGrid(t *testing.T) {
	t.Run("returns the month grid for the requested date", func(t *testing.T) {
		handler, _, _ := setupHandler(
			timedEvent("e1", time.Date(2025, time.April, 3, 10, 0, 0, 0, time.UTC), time.Hour),
		)
		req := httptest.NewRequest("GET", "/api/calendar/grid?date=2025-04-15&view=month", nil)
		rec := httptest.NewRecorder()

		handler.GetGrid(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var snap SnapshotDTO
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
		assert.Equal(t, "month", snap.Mode)
		require.Len(t, snap.Month, MonthGridSize)
		assert.Empty(t, snap.Week)

		total := 0
		for _, cell := range snap.Month {
			total += len(cell.Events)
		}
		assert.Equal(t, 1, total)
	})

	t.Run("returns the week grid with boundaries", func(t *testing.T) {
		handler, _, _ := setupHandler()
		req := httptest.NewRequest("GET", "/api/calendar/grid?date=2025-04-16&view=week", nil)
		rec := httptest.NewRecorder()

		handler.GetGrid(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var snap SnapshotDTO
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
		assert.Equal(t, "week", snap.Mode)
		require.Len(t, snap.Week, DaysPerWeek)
		require.NotNil(t, snap.WeekStart)
		assert.Equal(t, 13, snap.WeekStart.Day())
		require.Len(t, snap.HourSlots, 24)
	})

	t.Run("missing date defaults to now", func(t *testing.T) {
		handler, _, clock := setupHandler()
		req := httptest.NewRequest("GET", "/api/calendar/grid", nil)
		rec := httptest.NewRecorder()

		handler.GetGrid(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var snap SnapshotDTO
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
		assert.Equal(t, clock.FixedNow.Day(), snap.Reference.Day())
	})

	t.Run("rejects malformed date", func(t *testing.T) {
		handler, _, _ := setupHandler()
		req := httptest.NewRequest("GET", "/api/calendar/grid?date=not-a-date", nil)
		rec := httptest.NewRecorder()

		handler.GetGrid(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandlerNavigate(t *testing.T) {
	t.Run("next moves the month forward", func(t *testing.T) {
		handler, _, _ := setupHandler()
		rec := httptest.NewRecorder()
		handler.GetGrid(rec, httptest.NewRequest("GET", "/api/calendar/grid?date=2025-04-15", nil))

		rec = httptest.NewRecorder()
		handler.Navigate(rec, httptest.NewRequest("POST", "/api/calendar/navigate?direction=next", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var snap SnapshotDTO
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
		assert.Equal(t, time.May, snap.Reference.Month())
		assert.Equal(t, 1, snap.Reference.Day())
	})

	t.Run("rejects unknown direction", func(t *testing.T) {
		handler, _, _ := setupHandler()
		rec := httptest.NewRecorder()

		handler.Navigate(rec, httptest.NewRequest("POST", "/api/calendar/navigate?direction=sideways", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func rescheduleRequest(t *testing.T, body RescheduleRequestDTO) *http.Request {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	return httptest.NewRequest("POST", "/api/calendar/reschedule", bytes.NewReader(payload))
}

func TestHandlerRescheduleEvent(t *testing.T) {
	eventStart := time.Date(2025, time.April, 17, 10, 0, 0, 0, time.UTC)

	t.Run("day drop persists the new span", func(t *testing.T) {
		handler, provider, _ := setupHandler(timedEvent("e1", eventStart, time.Hour))
		rec := httptest.NewRecorder()
		handler.GetGrid(rec, httptest.NewRequest("GET", "/api/calendar/grid?date=2025-04-15", nil))

		rec = httptest.NewRecorder()
		handler.RescheduleEvent(rec, rescheduleRequest(t, RescheduleRequestDTO{
			EventID:      "e1",
			TargetCellID: "day-2025-4-22",
		}))

		require.Equal(t, http.StatusOK, rec.Code)
		var resp RescheduleResponseDTO
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "e1", resp.EventID)
		assert.Equal(t, 22, resp.NewStart.Day())
		assert.Equal(t, 10, resp.NewStart.Hour())
		require.Len(t, provider.updated, 1)
	})

	t.Run("slot drop uses the requested hour", func(t *testing.T) {
		handler, provider, _ := setupHandler(timedEvent("e1", eventStart, time.Hour))
		rec := httptest.NewRecorder()
		handler.GetGrid(rec, httptest.NewRequest("GET", "/api/calendar/grid?date=2025-04-16&view=week", nil))

		hour := 15
		rec = httptest.NewRecorder()
		handler.RescheduleEvent(rec, rescheduleRequest(t, RescheduleRequestDTO{
			EventID:      "e1",
			TargetCellID: "week-day-2025-4-18",
			Hour:         &hour,
		}))

		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, provider.updated, 1)
		assert.Equal(t, 15, provider.updated[0].NewStart.Hour())
		assert.Equal(t, 18, provider.updated[0].NewStart.Day())
	})

	t.Run("pixel delta adjusts within the day", func(t *testing.T) {
		handler, provider, _ := setupHandler(timedEvent("e1", eventStart, time.Hour))

		delta := 96.0
		rec := httptest.NewRecorder()
		handler.RescheduleEvent(rec, rescheduleRequest(t, RescheduleRequestDTO{
			EventID:     "e1",
			PixelDeltaY: &delta,
		}))

		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, provider.updated, 1)
		assert.Equal(t, 11, provider.updated[0].NewStart.Hour())
		assert.Equal(t, 30, provider.updated[0].NewStart.Minute())
	})

	t.Run("dead-zone delta is a no-op", func(t *testing.T) {
		handler, provider, _ := setupHandler(timedEvent("e1", eventStart, time.Hour))

		delta := 10.0
		rec := httptest.NewRecorder()
		handler.RescheduleEvent(rec, rescheduleRequest(t, RescheduleRequestDTO{
			EventID:     "e1",
			PixelDeltaY: &delta,
		}))

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, provider.updated)
	})

	t.Run("unknown drop target is a no-op", func(t *testing.T) {
		handler, provider, _ := setupHandler(timedEvent("e1", eventStart, time.Hour))

		rec := httptest.NewRecorder()
		handler.RescheduleEvent(rec, rescheduleRequest(t, RescheduleRequestDTO{
			EventID:      "e1",
			TargetCellID: "trash-zone",
		}))

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, provider.updated)
	})

	t.Run("week drop on a past day is a no-op", func(t *testing.T) {
		handler, provider, _ := setupHandler(timedEvent("e1", eventStart, time.Hour))
		rec := httptest.NewRecorder()
		handler.GetGrid(rec, httptest.NewRequest("GET", "/api/calendar/grid?date=2025-04-16&view=week", nil))

		rec = httptest.NewRecorder()
		handler.RescheduleEvent(rec, rescheduleRequest(t, RescheduleRequestDTO{
			EventID:      "e1",
			TargetCellID: "week-day-2025-4-14", // two days before now
		}))

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, provider.updated)
	})

	t.Run("month drop on a past day is allowed", func(t *testing.T) {
		handler, provider, _ := setupHandler(timedEvent("e1", eventStart, time.Hour))
		rec := httptest.NewRecorder()
		handler.GetGrid(rec, httptest.NewRequest("GET", "/api/calendar/grid?date=2025-04-15", nil))

		rec = httptest.NewRecorder()
		handler.RescheduleEvent(rec, rescheduleRequest(t, RescheduleRequestDTO{
			EventID:      "e1",
			TargetCellID: "day-2025-4-10",
		}))

		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, provider.updated, 1)
		assert.Equal(t, 10, provider.updated[0].NewStart.Day())
	})

	t.Run("non-draggable event is a no-op", func(t *testing.T) {
		fixed := timedEvent("e1", eventStart, time.Hour)
		fixed.Draggable = false
		handler, provider, _ := setupHandler(fixed)
		rec := httptest.NewRecorder()
		handler.GetGrid(rec, httptest.NewRequest("GET", "/api/calendar/grid?date=2025-04-15", nil))

		rec = httptest.NewRecorder()
		handler.RescheduleEvent(rec, rescheduleRequest(t, RescheduleRequestDTO{
			EventID:      "e1",
			TargetCellID: "day-2025-4-22",
		}))

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, provider.updated)
	})

	t.Run("unknown event is 404", func(t *testing.T) {
		handler, _, _ := setupHandler()

		rec := httptest.NewRecorder()
		handler.RescheduleEvent(rec, rescheduleRequest(t, RescheduleRequestDTO{
			EventID:      "ghost",
			TargetCellID: "day-2025-4-22",
		}))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandlerCreateIntent(t *testing.T) {
	t.Run("day cell click seeds a morning hour", func(t *testing.T) {
		handler, _, _ := setupHandler()
		rec := httptest.NewRecorder()
		handler.GetGrid(rec, httptest.NewRequest("GET", "/api/calendar/grid?date=2025-04-15", nil))

		payload, _ := json.Marshal(CreateIntentRequestDTO{CellID: "day-2025-4-17"})
		rec = httptest.NewRecorder()
		handler.CreateIntent(rec, httptest.NewRequest("POST", "/api/calendar/intent", bytes.NewReader(payload)))

		require.Equal(t, http.StatusOK, rec.Code)
		var resp CreateIntentResponseDTO
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 9, resp.Start.Hour())
		assert.Equal(t, time.Hour, resp.End.Sub(resp.Start))
	})

	t.Run("slot click on an explicit date", func(t *testing.T) {
		handler, _, _ := setupHandler()
		hour, minutes := 13, 22

		payload, _ := json.Marshal(CreateIntentRequestDTO{Date: "2025-04-17", Hour: &hour, Minutes: &minutes})
		rec := httptest.NewRecorder()
		handler.CreateIntent(rec, httptest.NewRequest("POST", "/api/calendar/intent", bytes.NewReader(payload)))

		require.Equal(t, http.StatusOK, rec.Code)
		var resp CreateIntentResponseDTO
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 13, resp.Start.Hour())
		assert.Equal(t, 15, resp.Start.Minute())
	})

	t.Run("unknown cell id is a no-op", func(t *testing.T) {
		handler, _, _ := setupHandler()

		payload, _ := json.Marshal(CreateIntentRequestDTO{CellID: "nope"})
		rec := httptest.NewRecorder()
		handler.CreateIntent(rec, httptest.NewRequest("POST", "/api/calendar/intent", bytes.NewReader(payload)))

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func TestHandlerExportICS(t *testing.T) {
	t.Run("serializes all events as a calendar document", func(t *testing.T) {
		handler, _, _ := setupHandler(
			timedEvent("e1", time.Date(2025, time.April, 17, 10, 0, 0, 0, time.UTC), time.Hour),
		)

		rec := httptest.NewRecorder()
		handler.ExportICS(rec, httptest.NewRequest("GET", "/api/calendar/export", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/calendar")
		body := rec.Body.String()
		assert.Contains(t, body, "BEGIN:VCALENDAR")
		assert.Contains(t, body, "e1@agda")
	})

	t.Run("range filter limits the export", func(t *testing.T) {
		handler, _, _ := setupHandler(
			timedEvent("in", time.Date(2025, time.April, 17, 10, 0, 0, 0, time.UTC), time.Hour),
			timedEvent("out", time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC), time.Hour),
		)

		rec := httptest.NewRecorder()
		handler.ExportICS(rec, httptest.NewRequest("GET",
			"/api/calendar/export?from=2025-04-01T00:00:00Z&to=2025-05-01T00:00:00Z", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "in@agda")
		assert.NotContains(t, body, "out@agda")
	})

	t.Run("rejects a malformed range", func(t *testing.T) {
		handler, _, _ := setupHandler()

		rec := httptest.NewRecorder()
		handler.ExportICS(rec, httptest.NewRequest("GET", "/api/calendar/export?from=yesterday", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
