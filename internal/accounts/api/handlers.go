/**
 * @description
 * This file contains the HTTP handlers for the account-service endpoints.
 * Handlers parse requests, call the application service and write responses.
 * This is the only layer where domain failure codes are mapped to HTTP
 * status codes.
 */
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/xinton/desafio-dev-api-rest/internal/accounts/app"
	"github.com/xinton/desafio-dev-api-rest/internal/accounts/domain"
)

// AccountHandlers holds the application service that handlers use.
type AccountHandlers struct {
	service *app.Service
}

// NewAccountHandlers creates the handler set for the account-service API.
func NewAccountHandlers(service *app.Service) *AccountHandlers {
	return &AccountHandlers{service: service}
}

type createAccountRequest struct {
	HolderCPF string `json:"holder_cpf"`
	Branch    string `json:"branch,omitempty"`
}

type amountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (h *AccountHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func (h *AccountHandlers) writeError(w http.ResponseWriter, status int, message, code string) {
	body := map[string]string{"error": message}
	if code != "" {
		body["code"] = code
	}
	h.writeJSON(w, status, body)
}

// writeDomainError maps a failure from the application service to an HTTP
// response. Domain codes decide the status; anything else is a 500.
func (h *AccountHandlers) writeDomainError(w http.ResponseWriter, err error) {
	var domainErr *domain.DomainError
	if !errors.As(err, &domainErr) {
		log.Printf("ERROR: unexpected failure: %v", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error", "")
		return
	}

	status := http.StatusBadRequest
	switch domainErr.Code {
	case domain.CodeAccountNotFound, domain.CodeHolderNotFound:
		status = http.StatusNotFound
	case domain.CodeDuplicateAccount, domain.CodeAccountClosed, domain.CodeConcurrentUpdate:
		status = http.StatusConflict
	}
	h.writeError(w, status, domainErr.Message, string(domainErr.Code))
}

// CreateAccountHandler opens an account for an existing holder.
func (h *AccountHandlers) CreateAccountHandler(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}
	if req.HolderCPF == "" {
		h.writeError(w, http.StatusBadRequest, "holder_cpf is required", "")
		return
	}

	account, err := h.service.CreateAccount(r.Context(), req.HolderCPF, req.Branch)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, account)
}

// GetAccountHandler returns one account by id.
func (h *AccountHandlers) GetAccountHandler(w http.ResponseWriter, r *http.Request) {
	account, err := h.service.GetAccount(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, account)
}

// CloseAccountHandler closes an account. Closing is terminal.
func (h *AccountHandlers) CloseAccountHandler(w http.ResponseWriter, r *http.Request) {
	account, err := h.service.Close(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, account)
}

// BlockAccountHandler blocks an account.
func (h *AccountHandlers) BlockAccountHandler(w http.ResponseWriter, r *http.Request) {
	account, err := h.service.Block(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, account)
}

// UnblockAccountHandler unblocks an account.
func (h *AccountHandlers) UnblockAccountHandler(w http.ResponseWriter, r *http.Request) {
	account, err := h.service.Unblock(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, account)
}

// GetBalanceHandler returns the current balance of an account.
func (h *AccountHandlers) GetBalanceHandler(w http.ResponseWriter, r *http.Request) {
	balance, err := h.service.GetBalance(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, balance)
}

func (h *AccountHandlers) decodeAmount(w http.ResponseWriter, r *http.Request) (decimal.Decimal, bool) {
	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body", "")
		return decimal.Zero, false
	}
	if !req.Amount.IsPositive() {
		h.writeError(w, http.StatusBadRequest, "amount must be greater than zero", string(domain.CodeInvalidAmount))
		return decimal.Zero, false
	}
	return req.Amount, true
}

// DepositHandler credits an amount to an account.
func (h *AccountHandlers) DepositHandler(w http.ResponseWriter, r *http.Request) {
	amount, ok := h.decodeAmount(w, r)
	if !ok {
		return
	}
	account, err := h.service.Deposit(r.Context(), chi.URLParam(r, "id"), amount)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, account)
}

// WithdrawHandler debits an amount from an account.
func (h *AccountHandlers) WithdrawHandler(w http.ResponseWriter, r *http.Request) {
	amount, ok := h.decodeAmount(w, r)
	if !ok {
		return
	}
	account, err := h.service.Withdraw(r.Context(), chi.URLParam(r, "id"), amount)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, account)
}

// GetStatementHandler returns one page of the account statement.
func (h *AccountHandlers) GetStatementHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page := parseIntOrDefault(query.Get("page"), 1)
	limit := parseIntOrDefault(query.Get("limit"), 10)

	statement, err := h.service.GetStatement(
		r.Context(),
		chi.URLParam(r, "id"),
		query.Get("start_date"),
		query.Get("end_date"),
		page,
		limit,
	)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, statement)
}

func parseIntOrDefault(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return fallback
	}
	return v
}
