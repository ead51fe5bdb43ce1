package banking

import (
	"context"
	"errors"
	"log"

	"horizon/internal/domain/bank"
	"horizon/internal/domain/transaction"
)

// State is the outcome of a transaction-history request
type State string

const (
	StateOK                State = "ok"
	StateNotSignedIn       State = "not_signed_in"
	StateNoConnections     State = "no_connections"
	StateInvalidSelection  State = "invalid_selection"
	StateAccountLoadFailed State = "account_load_failed"
	StateNoTransactions    State = "no_transactions"
	StateError             State = "error"
)

type stateCopy struct {
	title   string
	message string
}

var stateMessages = map[State]stateCopy{
	StateOK:                {"Transaction History", "See your bank details and transactions."},
	StateNotSignedIn:       {"Authentication Required", "Please sign in to view your transactions."},
	StateNoConnections:     {"No Accounts Found", "Please connect a bank account to view transactions."},
	StateInvalidSelection:  {"Invalid Selection", "Invalid account selected. Please try again."},
	StateAccountLoadFailed: {"Error Loading Account", "Unable to load account details. Please try again later."},
	StateNoTransactions:    {"No Transactions Found", "There are no transactions available for this account yet."},
	StateError:             {"Error", "An error occurred while loading your transaction history. Please try again later."},
}

const depositoryHint = " New transactions will appear here as they occur."

// AccountLister is the part of AccountAggregator the history needs
type AccountLister interface {
	GetAccounts(ctx context.Context, userID string) (*Aggregate, error)
}

// AccountLoader is the part of AccountAssembler the history needs
type AccountLoader interface {
	GetAccount(ctx context.Context, userID, connectionID string) (*AccountView, error)
}

// HistoryView is everything the transaction-history screen renders.
type HistoryView struct {
	State    State                  `json:"state"`
	Title    string                 `json:"title"`
	Message  string                 `json:"message"`
	Accounts []bank.AccountSnapshot `json:"accounts,omitempty"`
	Account  *bank.AccountSnapshot  `json:"account,omitempty"`
	Page     *transaction.Page      `json:"page,omitempty"`
}

func newHistoryView(state State) *HistoryView {
	c := stateMessages[state]
	return &HistoryView{State: state, Title: c.title, Message: c.message}
}

// TransactionHistory resolves which account to show and pages through its history.
type TransactionHistory struct {
	accounts AccountLister
	account  AccountLoader
}

// NewTransactionHistory creates a new transaction history service
func NewTransactionHistory(accounts AccountLister, account AccountLoader) *TransactionHistory {
	return &TransactionHistory{accounts: accounts, account: account}
}

// Load builds the history view for userID. selection is a connection ID; when empty
// the user's first account is shown. The outcome is always reported through the
// view's State rather than an error.
func (h *TransactionHistory) Load(ctx context.Context, userID, selection string, page int) *HistoryView {
	if userID == "" {
		return newHistoryView(StateNotSignedIn)
	}

	agg, err := h.accounts.GetAccounts(ctx, userID)
	if err != nil {
		log.Printf("Error in transaction history for user %s: %v", userID, err)
		return newHistoryView(StateError)
	}
	if len(agg.Accounts) == 0 {
		return newHistoryView(StateNoConnections)
	}

	connectionID := selection
	if connectionID == "" {
		connectionID = agg.Accounts[0].ConnectionID
	}
	if connectionID == "" {
		return withAccounts(newHistoryView(StateInvalidSelection), agg)
	}

	view, err := h.account.GetAccount(ctx, userID, connectionID)
	if err != nil {
		if errors.Is(err, bank.ErrConnectionNotFound) {
			return withAccounts(newHistoryView(StateInvalidSelection), agg)
		}
		log.Printf("Error loading account for connection %s: %v", connectionID, err)
		return withAccounts(newHistoryView(StateAccountLoadFailed), agg)
	}

	account := view.Account
	if len(view.Transactions) == 0 {
		out := withAccounts(newHistoryView(StateNoTransactions), agg)
		if account.Type == "depository" {
			out.Message += depositoryHint
		}
		out.Account = &account
		return out
	}

	p := transaction.Paginate(view.Transactions, page)
	out := withAccounts(newHistoryView(StateOK), agg)
	out.Account = &account
	out.Page = &p
	return out
}

func withAccounts(v *HistoryView, agg *Aggregate) *HistoryView {
	v.Accounts = agg.Accounts
	return v
}
