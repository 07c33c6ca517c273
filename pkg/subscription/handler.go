package subscription

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/delat04/agda/internal/rest"
	"github.com/delat04/agda/pkg/event"
	"github.com/delat04/agda/pkg/user"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	err := h.service.Subscribe(r.Context(), vars["eventId"])
	if err != nil {
		switch {
		case errors.Is(err, user.ErrNoUser):
			rest.WriteError(w, http.StatusForbidden, "No user", "X-User-Id header is required")
		case errors.Is(err, event.ErrEventNotFound):
			rest.WriteError(w, http.StatusNotFound, "Event not found", "")
		case errors.Is(err, ErrAlreadySubscribed):
			rest.WriteError(w, http.StatusConflict, "Already subscribed", "")
		case errors.Is(err, ErrEventFull):
			rest.WriteError(w, http.StatusConflict, "Event is full", "")
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	err := h.service.Unsubscribe(r.Context(), vars["eventId"])
	if err != nil {
		switch {
		case errors.Is(err, user.ErrNoUser):
			rest.WriteError(w, http.StatusForbidden, "No user", "X-User-Id header is required")
		case errors.Is(err, ErrNotSubscribed):
			rest.WriteError(w, http.StatusNotFound, "Not subscribed", "")
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SubscribedEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.service.SubscribedEvents(r.Context())
	if err != nil {
		if errors.Is(err, user.ErrNoUser) {
			rest.WriteError(w, http.StatusForbidden, "No user", "X-User-Id header is required")
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]event.EventDTO, 0, len(events))
	for _, e := range events {
		dtos = append(dtos, event.ToDTO(e))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}
