package attraction_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"ms-park-access/internal/attractions/db"
	attractions "ms-park-access/internal/attractions/service"
	"ms-park-access/internal/logger"
	"ms-park-access/internal/models"
)

type Handler struct {
	AttractionService *attractions.AttractionService
	Logger            *logger.Logger
}

func NewHandler(service *attractions.AttractionService, log *logger.Logger) *Handler {
	return &Handler{AttractionService: service, Logger: log}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Route("/attractions", func(r chi.Router) {
		r.Get("/", h.ListAttractions)
		r.Post("/", h.CreateAttraction)
		r.Get("/{attractionID}", h.GetAttraction)
		r.Patch("/{attractionID}", h.UpdateAttraction)
		r.Delete("/{attractionID}", h.DeleteAttraction)
	})
	return r
}

func (h *Handler) ListAttractions(w http.ResponseWriter, r *http.Request) {
	all, err := h.AttractionService.ListAttractions(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListAttractions: %v", err))
		http.Error(w, "Failed to fetch attractions", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, all)
}

func (h *Handler) GetAttraction(w http.ResponseWriter, r *http.Request) {
	id, ok := h.attractionID(w, r)
	if !ok {
		return
	}

	attraction, err := h.AttractionService.GetAttraction(r.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "Attraction not found", http.StatusNotFound)
			return
		}
		h.Logger.Error("API", fmt.Sprintf("GetAttraction: %v", err))
		http.Error(w, "Failed to fetch attraction", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, attraction)
}

func (h *Handler) CreateAttraction(w http.ResponseWriter, r *http.Request) {
	var attraction models.Attraction
	if err := json.NewDecoder(r.Body).Decode(&attraction); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	created, err := h.AttractionService.CreateAttraction(r.Context(), attraction)
	if err != nil {
		if errors.Is(err, attractions.ErrInvalidAttraction) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.Logger.Error("API", fmt.Sprintf("CreateAttraction: %v", err))
		http.Error(w, "Failed to create attraction", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(created); err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateAttraction: failed to encode response: %v", err))
	}
}

func (h *Handler) UpdateAttraction(w http.ResponseWriter, r *http.Request) {
	id, ok := h.attractionID(w, r)
	if !ok {
		return
	}

	var update models.AttractionUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.AttractionService.UpdateAttraction(r.Context(), id, update); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "Attraction not found", http.StatusNotFound)
			return
		}
		h.Logger.Error("API", fmt.Sprintf("UpdateAttraction: %v", err))
		http.Error(w, "Failed to update attraction", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, map[string]string{"message": "attraction updated"})
}

func (h *Handler) DeleteAttraction(w http.ResponseWriter, r *http.Request) {
	id, ok := h.attractionID(w, r)
	if !ok {
		return
	}

	if err := h.AttractionService.DeleteAttraction(r.Context(), id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "Attraction not found", http.StatusNotFound)
			return
		}
		h.Logger.Error("API", fmt.Sprintf("DeleteAttraction: %v", err))
		http.Error(w, "Failed to delete attraction", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, map[string]string{"message": "attraction removed"})
}

func (h *Handler) attractionID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "attractionID"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid attraction id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (h *Handler) writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.Logger.Error("API", fmt.Sprintf("Failed to encode response: %v", err))
	}
}
