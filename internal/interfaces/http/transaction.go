package http

import (
	"context"
	"net/http"
	"strconv"

	"horizon/internal/domain/banking"
	"horizon/internal/shared/middleware"
)

// HistoryLoader builds the transaction-history view
type HistoryLoader interface {
	Load(ctx context.Context, userID, selection string, page int) *banking.HistoryView
}

// TransactionHandler serves the paginated transaction history
type TransactionHandler struct {
	history HistoryLoader
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(history HistoryLoader) *TransactionHandler {
	return &TransactionHandler{history: history}
}

var stateStatus = map[banking.State]int{
	banking.StateOK:                http.StatusOK,
	banking.StateNoTransactions:    http.StatusOK,
	banking.StateNoConnections:     http.StatusOK,
	banking.StateNotSignedIn:       http.StatusUnauthorized,
	banking.StateInvalidSelection:  http.StatusBadRequest,
	banking.StateAccountLoadFailed: http.StatusBadGateway,
	banking.StateError:             http.StatusInternalServerError,
}

// HandleTransactionHistory serves GET /api/transaction-history?id=&page=.
// Anonymous requests get the not_signed_in state rather than a bare 401.
func (h *TransactionHandler) HandleTransactionHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	view := h.history.Load(r.Context(), middleware.UserID(r.Context()), q.Get("id"), page)

	status, ok := stateStatus[view.State]
	if !ok {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, view)
}
