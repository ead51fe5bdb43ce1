package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"horizon/internal/domain/bank"
	"horizon/internal/domain/banking"
	"horizon/internal/shared/middleware"
)

// AccountHandler serves the signed-in user's linked accounts
type AccountHandler struct {
	accounts banking.AccountLister
	account  banking.AccountLoader
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(accounts banking.AccountLister, account banking.AccountLoader) *AccountHandler {
	return &AccountHandler{accounts: accounts, account: account}
}

// AccountsResponse is the aggregate returned by GET /api/accounts
type AccountsResponse struct {
	Data                []bank.AccountSnapshot `json:"data"`
	TotalBanks          int                    `json:"totalBanks"`
	TotalCurrentBalance float64                `json:"totalCurrentBalance"`
	Unavailable         []string               `json:"unavailableConnections,omitempty"`
}

// HandleListAccounts returns every account the user has linked with balance totals
func (h *AccountHandler) HandleListAccounts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID := middleware.UserID(r.Context())
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	agg, err := h.accounts.GetAccounts(r.Context(), userID)
	if err != nil {
		log.Printf("Error listing accounts for user %s: %v", userID, err)
		http.Error(w, "Failed to list accounts", http.StatusInternalServerError)
		return
	}

	resp := AccountsResponse{
		Data:                agg.Accounts,
		TotalBanks:          agg.TotalBanks,
		TotalCurrentBalance: agg.TotalCurrentBalance,
	}
	for _, f := range agg.Failures {
		resp.Unavailable = append(resp.Unavailable, f.ConnectionID)
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleAccountByID returns one account with its full transaction history
func (h *AccountHandler) HandleAccountByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID := middleware.UserID(r.Context())
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	connectionID := r.PathValue("id")
	if connectionID == "" {
		http.Error(w, "Account ID is required", http.StatusBadRequest)
		return
	}

	view, err := h.account.GetAccount(r.Context(), userID, connectionID)
	if err != nil {
		switch {
		case errors.Is(err, bank.ErrConnectionNotFound):
			http.Error(w, "Account not found", http.StatusNotFound)
		case errors.Is(err, bank.ErrAccountFetch):
			log.Printf("Error fetching account for connection %s: %v", connectionID, err)
			http.Error(w, "Failed to load account from bank", http.StatusBadGateway)
		default:
			log.Printf("Error loading account for connection %s: %v", connectionID, err)
			http.Error(w, "Failed to load account", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, view)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}
