/**
 * @description
 * This file contains the HTTP handlers for the money-movement and query
 * endpoints. Handlers are responsible for parsing incoming requests, calling
 * the appropriate methods on the application service, and writing the HTTP
 * response. They act as the bridge between the web layer and the business
 * logic layer.
 *
 * @dependencies
 * - encoding/json, log, net/http: Standard Go libraries.
 * - internal/app, internal/domain, internal/store: For service logic, models, and custom errors.
 */

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/BarrosRichard/pygamentos/internal/app"
	"github.com/BarrosRichard/pygamentos/internal/domain"
	"github.com/BarrosRichard/pygamentos/internal/store"
)

// Handlers holds the application service that handlers will use.
type Handlers struct {
	service *app.Service
}

// NewHandlers creates a new instance of Handlers.
func NewHandlers(service *app.Service) *Handlers {
	return &Handlers{service: service}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: message})
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("level=error component=api msg=\"response encode failed\" err=%v", err)
	}
}

// writeServiceError maps service and store errors onto distinct HTTP statuses,
// keeping the error taxonomy visible at the boundary.
func (h *Handlers) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrInvalidAmount),
		errors.Is(err, app.ErrInvalidTaxRate),
		errors.Is(err, app.ErrInvalidTransactionType),
		errors.Is(err, app.ErrInvalidPixKey),
		errors.Is(err, app.ErrInvalidPixKeyType),
		errors.Is(err, app.ErrInvalidCreditCard):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, app.ErrInvalidReceiver):
		h.writeError(w, http.StatusUnprocessableEntity, "Sender and receiver must be different accounts.")
	case errors.Is(err, store.ErrInsufficientFunds):
		h.writeError(w, http.StatusUnprocessableEntity, "Insufficient funds for this transfer.")
	case errors.Is(err, store.ErrPixKeyNotFound):
		h.writeError(w, http.StatusNotFound, "Receiver pix key not found.")
	case errors.Is(err, store.ErrTransactionTypeNotFound):
		h.writeError(w, http.StatusNotFound, "Transaction type not found.")
	case errors.Is(err, store.ErrAccountNotFound), errors.Is(err, store.ErrUserNotFound):
		h.writeError(w, http.StatusNotFound, "Account not found.")
	case errors.Is(err, store.ErrPixKeyTaken):
		h.writeError(w, http.StatusConflict, "This pix key is already registered.")
	case errors.Is(err, store.ErrUsernameTaken):
		h.writeError(w, http.StatusConflict, "This username is already registered.")
	case errors.Is(err, store.ErrCreditCardNotFound):
		h.writeError(w, http.StatusNotFound, "Credit card not found.")
	case errors.Is(err, store.ErrCommitConflict):
		h.writeError(w, http.StatusConflict, "Concurrent update conflict; please retry the operation.")
	default:
		log.Printf("level=error component=api msg=\"unhandled service error\" err=%v", err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func parseInt32Param(r *http.Request, name string) (int32, error) {
	raw := chi.URLParam(r, name)
	value, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return int32(value), nil
}

// transactionEntryResponse is sent back after a settled deposit or transfer.
type transactionEntryResponse struct {
	EntryID   string          `json:"entry_id"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt string          `json:"created_at"`
	Message   string          `json:"message"`
}

func buildEntryResponse(entry *domain.TransactionEntry, message string) transactionEntryResponse {
	return transactionEntryResponse{
		EntryID:   entry.ID.String(),
		Amount:    entry.Amount,
		CreatedAt: entry.CreatedAt.Format("2006-01-02 15:04:05"),
		Message:   message,
	}
}

// TransferHandler handles requests to transfer money to a pix key.
func (h *Handlers) TransferHandler(w http.ResponseWriter, r *http.Request) {
	senderID, ok := GetUserID(r.Context())
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	var req domain.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("level=warn component=api endpoint=transfer outcome=reject reason=invalid_json err=%v", err)
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	entry, err := h.service.Transfer(r.Context(), senderID, req)
	if err != nil {
		log.Printf("level=warn component=api endpoint=transfer outcome=reject sender_id=%s err=%v", senderID, err)
		h.writeServiceError(w, err)
		return
	}

	log.Printf("level=info component=api endpoint=transfer outcome=settled sender_id=%s entry_id=%s", senderID, entry.ID)
	h.writeJSON(w, http.StatusCreated, buildEntryResponse(entry, "Transfer settled successfully."))
}

// DepositHandler handles requests to deposit money from the external source.
func (h *Handlers) DepositHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	var req domain.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("level=warn component=api endpoint=deposit outcome=reject reason=invalid_json err=%v", err)
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	entry, err := h.service.Deposit(r.Context(), userID, req)
	if err != nil {
		log.Printf("level=warn component=api endpoint=deposit outcome=reject user_id=%s err=%v", userID, err)
		h.writeServiceError(w, err)
		return
	}

	log.Printf("level=info component=api endpoint=deposit outcome=settled user_id=%s entry_id=%s", userID, entry.ID)
	h.writeJSON(w, http.StatusCreated, buildEntryResponse(entry, "Deposit settled successfully."))
}

// GetBalanceHandler returns the authenticated user's current balance.
func (h *Handlers) GetBalanceHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	balance, err := h.service.GetBalance(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, struct {
		Balance decimal.Decimal `json:"balance"`
	}{Balance: balance})
}

// GetHistoryHandler returns the authenticated user's statement.
func (h *Handlers) GetHistoryHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	history, err := h.service.GetHistory(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if history == nil {
		history = []domain.HistoryEntry{}
	}

	h.writeJSON(w, http.StatusOK, history)
}

// ListTransactionTypesHandler returns the tax catalog.
func (h *Handlers) ListTransactionTypesHandler(w http.ResponseWriter, r *http.Request) {
	types, err := h.service.ListTransactionTypes(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if types == nil {
		types = []domain.TransactionType{}
	}
	h.writeJSON(w, http.StatusOK, types)
}

// CreateTransactionTypeHandler registers a new transfer category.
func (h *Handlers) CreateTransactionTypeHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateTransactionTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	txType, err := h.service.CreateTransactionType(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, txType)
}

// GetTransactionTaxHandler returns the tax rate for one transaction type.
func (h *Handlers) GetTransactionTaxHandler(w http.ResponseWriter, r *http.Request) {
	typeID, err := parseInt32Param(r, "id")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid transaction type id")
		return
	}

	tax, err := h.service.GetTransactionTax(r.Context(), typeID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, struct {
		Tax decimal.Decimal `json:"tax"`
	}{Tax: tax})
}
