/**
 * @description
 * This file contains the HTTP handlers for the public auth endpoints:
 * registration and login. Both validate the payload at the boundary and
 * delegate credential handling to the application service.
 */

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/BarrosRichard/pygamentos/internal/app"
	"github.com/BarrosRichard/pygamentos/internal/domain"
)

// RegisterHandler handles user registration requests.
func (h *Handlers) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	user, err := h.service.Register(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidUsername), errors.Is(err, app.ErrInvalidPassword):
			h.writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.writeServiceError(w, err)
		}
		return
	}

	log.Printf("level=info component=api endpoint=register outcome=created user_id=%s", user.ID)
	h.writeJSON(w, http.StatusCreated, struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	}{ID: user.ID.String(), Username: user.Username})
}

// LoginHandler handles authentication requests and issues session tokens.
func (h *Handlers) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, app.ErrInvalidCredentials) {
			h.writeError(w, http.StatusUnauthorized, "Invalid username or password.")
			return
		}
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, resp)
}
