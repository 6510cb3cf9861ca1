/**
 * @description
 * HTTP handlers for the holder-service endpoints: registration, lookup and
 * removal of holders.
 */
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/xinton/desafio-dev-api-rest/internal/holders/app"
	"github.com/xinton/desafio-dev-api-rest/internal/holders/domain"
	"github.com/xinton/desafio-dev-api-rest/internal/holders/store"
)

// HolderHandlers holds the application service that handlers use.
type HolderHandlers struct {
	service *app.Service
}

// NewHolderHandlers creates the handler set for the holder-service API.
func NewHolderHandlers(service *app.Service) *HolderHandlers {
	return &HolderHandlers{service: service}
}

type createHolderRequest struct {
	Name string `json:"name"`
	CPF  string `json:"cpf"`
}

func (h *HolderHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func (h *HolderHandlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

// CreateHolderHandler registers a new holder.
func (h *HolderHandlers) CreateHolderHandler(w http.ResponseWriter, r *http.Request) {
	var req createHolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.CPF == "" {
		h.writeError(w, http.StatusBadRequest, "name and cpf are required")
		return
	}

	holder, err := h.service.Create(r.Context(), req.Name, req.CPF)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCPF):
			h.writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, store.ErrDuplicateCPF):
			h.writeError(w, http.StatusConflict, err.Error())
		default:
			log.Printf("ERROR: failed to create holder: %v", err)
			h.writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}
	h.writeJSON(w, http.StatusCreated, holder)
}

// GetHolderHandler returns one holder by CPF.
func (h *HolderHandlers) GetHolderHandler(w http.ResponseWriter, r *http.Request) {
	holder, err := h.service.Get(r.Context(), chi.URLParam(r, "cpf"))
	if err != nil {
		if errors.Is(err, store.ErrHolderNotFound) {
			h.writeError(w, http.StatusNotFound, err.Error())
			return
		}
		log.Printf("ERROR: failed to fetch holder: %v", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	h.writeJSON(w, http.StatusOK, holder)
}

// DeleteHolderHandler removes a holder by CPF.
func (h *HolderHandlers) DeleteHolderHandler(w http.ResponseWriter, r *http.Request) {
	holder, err := h.service.Remove(r.Context(), chi.URLParam(r, "cpf"))
	if err != nil {
		if errors.Is(err, store.ErrHolderNotFound) {
			h.writeError(w, http.StatusNotFound, err.Error())
			return
		}
		log.Printf("ERROR: failed to delete holder: %v", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	h.writeJSON(w, http.StatusOK, holder)
}
