package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/delat04/agda/internal/rest"
	"github.com/delat04/agda/internal/utils"
	"github.com/delat04/agda/pkg/event"
)

// EventProvider supplies the event snapshot the calendar renders. The
// calendar never fetches or caches events on its own.
type EventProvider interface {
	GetEvents(ctx context.Context) ([]event.Event, error)
	Get(ctx context.Context, id string) (*event.Event, error)
	GetEventsForRange(ctx context.Context, from, to time.Time) ([]event.Event, error)
}

// Rescheduler persists a computed reschedule result.
type Rescheduler interface {
	UpdateEventDates(ctx context.Context, id string, newStart, newEnd time.Time) (*event.Event, error)
}

type Handler struct {
	view          *ViewState
	events        EventProvider
	rescheduler   Rescheduler
	ics           ICSRenderer
	clock         utils.Clock
	pixelsPerHour float64
}

func NewHandler(view *ViewState, events EventProvider, rescheduler Rescheduler, ics ICSRenderer, clock utils.Clock, pixelsPerHour int) *Handler {
	return &Handler{
		view:          view,
		events:        events,
		rescheduler:   rescheduler,
		ics:           ics,
		clock:         clock,
		pixelsPerHour: float64(pixelsPerHour),
	}
}

type GridCellDTO struct {
	ID             string           `json:"id"`
	Date           time.Time        `json:"date"`
	IsCurrentMonth bool             `json:"isCurrentMonth"`
	IsToday        bool             `json:"isToday"`
	Events         []event.EventDTO `json:"events"`
}

type WeekDayDTO struct {
	ID      string           `json:"id"`
	Date    time.Time        `json:"date"`
	DayName string           `json:"dayName"`
	IsToday bool             `json:"isToday"`
	Events  []event.EventDTO `json:"events"`
}

type HourSlotDTO struct {
	Hour  int    `json:"hour"`
	Label string `json:"label"`
}

type WarningDTO struct {
	Kind    string `json:"kind"`
	EventID string `json:"eventId,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

type SnapshotDTO struct {
	Mode      string        `json:"mode"`
	Reference time.Time     `json:"reference"`
	Month     []GridCellDTO `json:"month,omitempty"`
	Week      []WeekDayDTO  `json:"week,omitempty"`
	WeekStart *time.Time    `json:"weekStart,omitempty"`
	WeekEnd   *time.Time    `json:"weekEnd,omitempty"`
	HourSlots []HourSlotDTO `json:"hourSlots"`
	Warnings  []WarningDTO  `json:"warnings,omitempty"`
}

// GetGrid rebuilds the calendar for the requested date and view mode and
// returns the resulting snapshot.
func (h *Handler) GetGrid(w http.ResponseWriter, r *http.Request) {
	reference, ok := parseDateParam(r.URL.Query().Get("date"), h.clock.Now())
	if !ok {
		rest.WriteError(w, http.StatusBadRequest, "Invalid date format", "'date' must be in RFC3339 or yyyy-mm-dd format")
		return
	}
	mode := ParseViewMode(r.URL.Query().Get("view"))

	events, err := h.events.GetEvents(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.view.SetView(reference, mode)
	h.view.Refresh(events)

	writeJSON(w, http.StatusOK, snapshotToDTO(h.view.Snapshot()))
}

// Navigate shifts the calendar one period and returns the fresh snapshot.
func (h *Handler) Navigate(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("direction") {
	case "next":
		h.view.NextPeriod()
	case "previous":
		h.view.PreviousPeriod()
	default:
		rest.WriteError(w, http.StatusBadRequest, "Invalid direction", "'direction' must be 'next' or 'previous'")
		return
	}

	events, err := h.events.GetEvents(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.view.Refresh(events)

	writeJSON(w, http.StatusOK, snapshotToDTO(h.view.Snapshot()))
}

type RescheduleRequestDTO struct {
	EventID       string   `json:"eventId"`
	TargetCellID  string   `json:"targetCellId,omitempty"`
	Hour          *int     `json:"hour,omitempty"`
	Minutes       *int     `json:"minutes,omitempty"`
	PixelDeltaY   *float64 `json:"pixelDeltaY,omitempty"`
	PixelsPerHour *float64 `json:"pixelsPerHour,omitempty"`
}

type RescheduleResponseDTO struct {
	EventID  string    `json:"eventId"`
	NewStart time.Time `json:"newStart"`
	NewEnd   time.Time `json:"newEnd"`
}

// RescheduleEvent computes and persists a new span for a dragged event.
// A drag that cannot take effect (unknown drop target, dead-zone delta,
// non-draggable or past-locked event) is a no-op answered with 204.
func (h *Handler) RescheduleEvent(w http.ResponseWriter, r *http.Request) {
	var req RescheduleRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	e, err := h.events.Get(r.Context(), req.EventID)
	if err != nil {
		if errors.Is(err, event.ErrEventNotFound) {
			rest.WriteError(w, http.StatusNotFound, "Event not found", "")
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	result, ok := h.computeReschedule(*e, req)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if _, err := h.rescheduler.UpdateEventDates(r.Context(), result.EventID, result.NewStart, result.NewEnd); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, RescheduleResponseDTO{
		EventID:  result.EventID,
		NewStart: result.NewStart,
		NewEnd:   result.NewEnd,
	})
}

func (h *Handler) computeReschedule(e event.Event, req RescheduleRequestDTO) (Reschedule, bool) {
	now := h.clock.Now()

	if req.PixelDeltaY != nil {
		pixelsPerHour := h.pixelsPerHour
		if req.PixelsPerHour != nil && *req.PixelsPerHour > 0 {
			pixelsPerHour = *req.PixelsPerHour
		}
		return AdjustByPixelDelta(e, *req.PixelDeltaY, pixelsPerHour, now)
	}

	targetDate, ok := h.view.ResolveDropTarget(req.TargetCellID)
	if !ok {
		log.Warnf("%s: %q", UnresolvedDropTarget, req.TargetCellID)
		return Reschedule{}, false
	}

	// Week-view drops land on past-locked days; month-view drops do not.
	lockPast := strings.HasPrefix(req.TargetCellID, "week-day-")
	if err := CanReschedule(e, RescheduleContext{Now: now, LockPastDays: lockPast}); err != nil {
		log.Debugf("reschedule of event %s rejected: %v", e.ID, err)
		return Reschedule{}, false
	}
	if lockPast && utils.Midnight(targetDate).Before(utils.Midnight(now)) {
		log.Debugf("reschedule of event %s rejected: target day is in the past", e.ID)
		return Reschedule{}, false
	}

	if req.Hour != nil {
		minutes := 0
		if req.Minutes != nil {
			minutes = *req.Minutes
		}
		return DropOnSlot(e, targetDate, *req.Hour, minutes), true
	}
	return DropOnDay(e, targetDate), true
}

type CreateIntentRequestDTO struct {
	CellID  string `json:"cellId,omitempty"`
	Date    string `json:"date,omitempty"`
	Hour    *int   `json:"hour,omitempty"`
	Minutes *int   `json:"minutes,omitempty"`
}

type CreateIntentResponseDTO struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// CreateIntent seeds a new, unsaved event span from a click on an empty day
// or hour slot, for the client to open in its edit form.
func (h *Handler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	var req CreateIntentRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var date time.Time
	if req.CellID != "" {
		resolved, ok := h.view.ResolveDropTarget(req.CellID)
		if !ok {
			log.Warnf("%s: %q", UnresolvedDropTarget, req.CellID)
			w.WriteHeader(http.StatusNoContent)
			return
		}
		date = resolved
	} else {
		parsed, ok := parseDateParam(req.Date, time.Time{})
		if !ok || parsed.IsZero() {
			rest.WriteError(w, http.StatusBadRequest, "Invalid date format", "'date' must be in RFC3339 or yyyy-mm-dd format")
			return
		}
		date = parsed
	}

	var intent CreateIntent
	if req.Hour != nil {
		minutes := 0
		if req.Minutes != nil {
			minutes = *req.Minutes
		}
		intent = SlotClickIntent(date, *req.Hour, minutes)
	} else {
		intent = DayClickIntent(date)
	}

	writeJSON(w, http.StatusOK, CreateIntentResponseDTO{Start: intent.Start, End: intent.End})
}

// ExportICS serializes events as an iCalendar document, optionally limited
// to a from/to range.
func (h *Handler) ExportICS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	var events []event.Event
	var err error
	if query.Get("from") != "" || query.Get("to") != "" {
		from, parseErr := time.Parse(time.RFC3339, query.Get("from"))
		if parseErr != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid from (date) format", "'from' must be in RFC3339 format")
			return
		}
		to, parseErr := time.Parse(time.RFC3339, query.Get("to"))
		if parseErr != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid to (date) format", "'to' must be in RFC3339 format")
			return
		}
		events, err = h.events.GetEventsForRange(ctx, from, to)
	} else {
		events, err = h.events.GetEvents(ctx)
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	serialized, err := h.ics.RenderEvents(events)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="agda.ics"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(serialized)); err != nil {
		log.Errorf("failed to write ICS response: %v", err)
	}
}

func parseDateParam(value string, fallback time.Time) (time.Time, bool) {
	if value == "" {
		return fallback, true
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation("2006-01-02", value, time.Local); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}

func snapshotToDTO(s Snapshot) SnapshotDTO {
	dto := SnapshotDTO{
		Mode:      string(s.Mode),
		Reference: s.Reference,
		HourSlots: make([]HourSlotDTO, 0, len(s.HourSlots)),
	}
	for _, slot := range s.HourSlots {
		dto.HourSlots = append(dto.HourSlots, HourSlotDTO{Hour: slot.Hour, Label: slot.Label})
	}
	for _, cell := range s.Month {
		dto.Month = append(dto.Month, GridCellDTO{
			ID:             cell.ID,
			Date:           cell.Date,
			IsCurrentMonth: cell.IsCurrentMonth,
			IsToday:        cell.IsToday,
			Events:         eventsToDTOs(cell.Events),
		})
	}
	for _, day := range s.Week {
		dto.Week = append(dto.Week, WeekDayDTO{
			ID:      day.ID,
			Date:    day.Date,
			DayName: day.DayName,
			IsToday: day.IsToday,
			Events:  eventsToDTOs(day.Events),
		})
	}
	if s.Mode == ViewWeek {
		weekStart, weekEnd := s.WeekStart, s.WeekEnd
		dto.WeekStart = &weekStart
		dto.WeekEnd = &weekEnd
	}
	for _, warning := range s.Warnings {
		dto.Warnings = append(dto.Warnings, WarningDTO{
			Kind:    string(warning.Kind),
			EventID: warning.EventID,
			Detail:  warning.Detail,
		})
	}
	return dto
}

func eventsToDTOs(events []event.Event) []event.EventDTO {
	dtos := make([]event.EventDTO, 0, len(events))
	for _, e := range events {
		dtos = append(dtos, event.ToDTO(e))
	}
	return dtos
}
