package banking

import (
	"context"
	"sync"

	"horizon/internal/domain/bank"
	"horizon/internal/domain/transaction"
	"horizon/internal/infrastructure/plaid"
)

// MockClient implements plaid.ClientInterface
type MockClient struct {
	GetAccountsFunc      func(ctx context.Context, accessToken string) (*plaid.AccountsResponse, error)
	SyncTransactionsFunc func(ctx context.Context, accessToken, cursor string) (*plaid.SyncResponse, error)
	GetInstitutionFunc   func(ctx context.Context, institutionID string, countryCodes []string) (*plaid.InstitutionResponse, error)

	mu                  sync.Mutex
	getAccountsCalls    int
	syncCalls           int
	getInstitutionCalls int
}

func (m *MockClient) GetAccounts(ctx context.Context, accessToken string) (*plaid.AccountsResponse, error) {
	m.mu.Lock()
	m.getAccountsCalls++
	m.mu.Unlock()
	if m.GetAccountsFunc != nil {
		return m.GetAccountsFunc(ctx, accessToken)
	}
	return &plaid.AccountsResponse{}, nil
}

func (m *MockClient) SyncTransactions(ctx context.Context, accessToken, cursor string) (*plaid.SyncResponse, error) {
	m.mu.Lock()
	m.syncCalls++
	m.mu.Unlock()
	if m.SyncTransactionsFunc != nil {
		return m.SyncTransactionsFunc(ctx, accessToken, cursor)
	}
	return &plaid.SyncResponse{}, nil
}

func (m *MockClient) GetInstitution(ctx context.Context, institutionID string, countryCodes []string) (*plaid.InstitutionResponse, error) {
	m.mu.Lock()
	m.getInstitutionCalls++
	m.mu.Unlock()
	if m.GetInstitutionFunc != nil {
		return m.GetInstitutionFunc(ctx, institutionID, countryCodes)
	}
	return &plaid.InstitutionResponse{Institution: plaid.Institution{InstitutionID: institutionID, Name: "Bank " + institutionID}}, nil
}

func (m *MockClient) calls() (accounts, syncs, institutions int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getAccountsCalls, m.syncCalls, m.getInstitutionCalls
}

// MockDirectory implements bank.Directory
type MockDirectory struct {
	ListByUserIDFunc func(ctx context.Context, userID string) ([]*bank.Connection, error)
	GetByIDFunc      func(ctx context.Context, id string) (*bank.Connection, error)
	CreateFunc       func(ctx context.Context, params bank.CreateConnectionParams) (*bank.Connection, error)
}

func (m *MockDirectory) ListByUserID(ctx context.Context, userID string) ([]*bank.Connection, error) {
	if m.ListByUserIDFunc != nil {
		return m.ListByUserIDFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockDirectory) GetByID(ctx context.Context, id string) (*bank.Connection, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, bank.ErrConnectionNotFound
}

func (m *MockDirectory) Create(ctx context.Context, params bank.CreateConnectionParams) (*bank.Connection, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return nil, nil
}

// MockLedger implements transaction.Ledger
type MockLedger struct {
	ListByConnectionIDFunc func(ctx context.Context, connectionID string) ([]*transaction.Transfer, error)
	CreateFunc             func(ctx context.Context, params transaction.CreateTransferParams) (*transaction.Transfer, error)
}

func (m *MockLedger) ListByConnectionID(ctx context.Context, connectionID string) ([]*transaction.Transfer, error) {
	if m.ListByConnectionIDFunc != nil {
		return m.ListByConnectionIDFunc(ctx, connectionID)
	}
	return nil, nil
}

func (m *MockLedger) Create(ctx context.Context, params transaction.CreateTransferParams) (*transaction.Transfer, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return nil, nil
}

func ptr[T any](v T) *T { return &v }

// accountsFor returns a GetAccounts stub answering with one account per access token.
func accountsFor(balances map[string]float64) func(ctx context.Context, accessToken string) (*plaid.AccountsResponse, error) {
	return func(ctx context.Context, accessToken string) (*plaid.AccountsResponse, error) {
		current, ok := balances[accessToken]
		if !ok {
			return nil, &plaid.APIError{StatusCode: 400, ErrorType: "ITEM_ERROR", ErrorCode: "ITEM_LOGIN_REQUIRED"}
		}
		return &plaid.AccountsResponse{
			Accounts: []plaid.Account{{
				AccountID: "acc-" + accessToken,
				Balances:  plaid.Balances{Available: ptr(current - 10), Current: ptr(current)},
				Name:      "Checking " + accessToken,
				Type:      "depository",
				Subtype:   ptr("checking"),
				Mask:      ptr("0000"),
			}},
			Item: plaid.Item{ItemID: "item-" + accessToken, InstitutionID: ptr("ins_" + accessToken)},
		}, nil
	}
}
