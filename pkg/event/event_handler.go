package event

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/delat04/agda/internal/rest"
)

type EventHandler struct {
	service EventService
}

func NewEventHandler(service EventService) *EventHandler {
	return &EventHandler{service: service}
}

type EventDTO struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Start        time.Time  `json:"start"`
	End          time.Time  `json:"end"`
	Location     string     `json:"location,omitempty"`
	AllDay       bool       `json:"allDay"`
	Draggable    bool       `json:"draggable"`
	Color        string     `json:"color,omitempty"`
	Category     string     `json:"category,omitempty"`
	Organizer    string     `json:"organizer,omitempty"`
	ContactEmail string     `json:"contactEmail,omitempty"`
	Attendees    int        `json:"attendees"`
	MaxAttendees int        `json:"maxAttendees"`
	Tags         []string   `json:"tags,omitempty"`
	Images       []ImageDTO `json:"images,omitempty"`
	CreatedAt    time.Time  `json:"createdAt,omitempty"`
	UpdatedAt    time.Time  `json:"updatedAt,omitempty"`
}

type ImageDTO struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	Caption   string `json:"caption,omitempty"`
	IsPrimary bool   `json:"isPrimary"`
	Order     int    `json:"order"`
}

func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	var events []Event
	var err error

	switch {
	case query.Get("from") != "" || query.Get("to") != "":
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
		events, err = h.service.GetEventsForRange(ctx, from, to)
	case query.Get("category") != "":
		events, err = h.service.ByCategory(ctx, query.Get("category"))
	case query.Get("tag") != "":
		events, err = h.service.ByTag(ctx, query.Get("tag"))
	case query.Get("upcoming") != "":
		limit, parseErr := strconv.Atoi(query.Get("upcoming"))
		if parseErr != nil || limit < 0 {
			rest.WriteError(w, http.StatusBadRequest, "Invalid upcoming limit", "'upcoming' must be a non-negative integer")
			return
		}
		events, err = h.service.Upcoming(ctx, limit)
	default:
		events, err = h.service.GetEvents(ctx)
	}

	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]EventDTO, 0, len(events))
	for _, e := range events {
		dtos = append(dtos, ToDTO(e))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	event, err := h.service.Get(r.Context(), vars["eventId"])
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			rest.WriteError(w, http.StatusNotFound, "Event not found", "")
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(ToDTO(*event)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var dto EventDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	created, err := h.service.Create(r.Context(), FromDTO(dto))
	if err != nil {
		if errors.Is(err, ErrInvalidEventSpan) {
			rest.WriteError(w, http.StatusBadRequest, "Invalid event span", err.Error())
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(ToDTO(*created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var dto EventDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	vars := mux.Vars(r)
	dto.ID = vars["eventId"]

	updated, err := h.service.Update(r.Context(), FromDTO(dto))
	if err != nil {
		switch {
		case errors.Is(err, ErrEventNotFound):
			rest.WriteError(w, http.StatusNotFound, "Event not found", "")
		case errors.Is(err, ErrInvalidEventSpan):
			rest.WriteError(w, http.StatusBadRequest, "Invalid event span", err.Error())
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(ToDTO(*updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	vars := mux.Vars(r)
	log.Tracef("Deleting event %s", vars["eventId"])
	if err := h.service.Delete(r.Context(), vars["eventId"]); err != nil {
		if errors.Is(err, ErrEventNotFound) {
			rest.WriteError(w, http.StatusNotFound, "Event not found", "")
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func ToDTO(e Event) EventDTO {
	images := make([]ImageDTO, 0, len(e.Images))
	for _, img := range e.Images {
		images = append(images, ImageDTO{
			ID:        img.ID,
			URL:       img.URL,
			Caption:   img.Caption,
			IsPrimary: img.IsPrimary,
			Order:     img.Position,
		})
	}
	return EventDTO{
		ID:           e.ID,
		Title:        e.Title,
		Description:  e.Description,
		Start:        e.Start,
		End:          e.End,
		Location:     e.Location,
		AllDay:       e.AllDay,
		Draggable:    e.Draggable,
		Color:        e.Color,
		Category:     e.Category,
		Organizer:    e.Organizer,
		ContactEmail: e.ContactEmail,
		Attendees:    e.Attendees,
		MaxAttendees: e.MaxAttendees,
		Tags:         e.Tags,
		Images:       images,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

func FromDTO(dto EventDTO) Event {
	images := make([]Image, 0, len(dto.Images))
	for _, img := range dto.Images {
		images = append(images, Image{
			ID:        img.ID,
			URL:       img.URL,
			Caption:   img.Caption,
			IsPrimary: img.IsPrimary,
			Position:  img.Order,
		})
	}
	return Event{
		ID:           dto.ID,
		Title:        dto.Title,
		Description:  dto.Description,
		Start:        dto.Start,
		End:          dto.End,
		Location:     dto.Location,
		AllDay:       dto.AllDay,
		Draggable:    dto.Draggable,
		Color:        dto.Color,
		Category:     dto.Category,
		Organizer:    dto.Organizer,
		ContactEmail: dto.ContactEmail,
		Attendees:    dto.Attendees,
		MaxAttendees: dto.MaxAttendees,
		Tags:         dto.Tags,
		Images:       images,
	}
}
