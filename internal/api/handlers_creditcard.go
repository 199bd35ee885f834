/**
 * @description
 * This file contains the HTTP handlers for credit card record-keeping:
 * listing, registration, and deletion of the authenticated user's cards.
 */

package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/BarrosRichard/pygamentos/internal/domain"
)

// ListCreditCardsHandler returns the authenticated user's cards.
func (h *Handlers) ListCreditCardsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	cards, err := h.service.ListCreditCards(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if cards == nil {
		cards = []domain.CreditCard{}
	}
	h.writeJSON(w, http.StatusOK, cards)
}

// CreateCreditCardHandler registers a new card for the authenticated user.
func (h *Handlers) CreateCreditCardHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	var req domain.CreateCreditCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	card, err := h.service.RegisterCreditCard(r.Context(), userID, req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, card)
}

// DeleteCreditCardHandler removes one of the authenticated user's cards.
func (h *Handlers) DeleteCreditCardHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	cardID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid credit card id")
		return
	}

	if err := h.service.DeleteCreditCard(r.Context(), userID, cardID); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
