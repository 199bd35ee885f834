/**
 * @description
 * This file contains the HTTP handlers for pix key management: key types,
 * key registration, listing, and public resolution of a key to its owner.
 */

package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/BarrosRichard/pygamentos/internal/domain"
)

// ListPixKeysHandler returns the authenticated user's pix keys.
func (h *Handlers) ListPixKeysHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	keys, err := h.service.ListPixKeys(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if keys == nil {
		keys = []domain.PixKey{}
	}
	h.writeJSON(w, http.StatusOK, keys)
}

// CreatePixKeyHandler registers a new pix key for the authenticated user.
func (h *Handlers) CreatePixKeyHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	var req domain.CreatePixKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	key, err := h.service.RegisterPixKey(r.Context(), userID, req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, key)
}

// ResolvePixKeyHandler resolves a pix key to its owner's public view. Senders
// use this to confirm who they are paying before initiating a transfer.
func (h *Handlers) ResolvePixKeyHandler(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimSpace(r.URL.Query().Get("key"))
	if key == "" {
		h.writeError(w, http.StatusBadRequest, "key is a mandatory query parameter")
		return
	}

	owner, err := h.service.ResolvePixKey(r.Context(), key)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, owner)
}

// ListPixKeyTypesHandler returns the registered pix key types.
func (h *Handlers) ListPixKeyTypesHandler(w http.ResponseWriter, r *http.Request) {
	types, err := h.service.ListPixKeyTypes(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if types == nil {
		types = []domain.PixKeyType{}
	}
	h.writeJSON(w, http.StatusOK, types)
}

// CreatePixKeyTypeHandler registers a new pix key type.
func (h *Handlers) CreatePixKeyTypeHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.CreatePixKeyTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	keyType, err := h.service.CreatePixKeyType(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, keyType)
}
