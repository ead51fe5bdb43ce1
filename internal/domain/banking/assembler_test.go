package banking

import (
	"context"
	"errors"
	"testing"
	"time"

	"horizon/internal/domain/bank"
	"horizon/internal/domain/transaction"
	"horizon/internal/infrastructure/plaid"
)

type assemblerFixture struct {
	dir    *MockDirectory
	client *MockClient
	ledger *MockLedger
}

func newAssemblerFixture() *assemblerFixture {
	return &assemblerFixture{
		dir: &MockDirectory{
			GetByIDFunc: func(ctx context.Context, id string) (*bank.Connection, error) {
				if id != "conn-a" {
					return nil, bank.ErrConnectionNotFound
				}
				return &bank.Connection{ID: "conn-a", UserID: "user-1", AccessToken: "a", ShareableID: "share-a"}, nil
			},
		},
		client: &MockClient{GetAccountsFunc: accountsFor(map[string]float64{"a": 120})},
		ledger: &MockLedger{},
	}
}

func (f *assemblerFixture) assembler() *AccountAssembler {
	return NewAccountAssembler(
		f.dir,
		f.client,
		NewInstitutionResolver(f.client, []string{"US"}, nil),
		NewLiveTransactionFetcher(f.client),
		NewTransferLedgerReader(f.ledger),
	)
}

func TestAccountAssembler_MergesAndSorts(t *testing.T) {
	f := newAssemblerFixture()
	f.client.SyncTransactionsFunc = func(ctx context.Context, accessToken, cursor string) (*plaid.SyncResponse, error) {
		return &plaid.SyncResponse{Added: []plaid.Transaction{
			{TransactionID: "live-old", DateString: "2024-02-01"},
			{TransactionID: "live-tie", DateString: "2024-03-01"},
			{TransactionID: "", DateString: "2024-04-01"},
		}}, nil
	}
	f.ledger.ListByConnectionIDFunc = func(ctx context.Context, connectionID string) ([]*transaction.Transfer, error) {
		return []*transaction.Transfer{
			{ID: "transfer-new", SenderConnectionID: connectionID, CreatedAt: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
			{ID: "transfer-tie", ReceiverConnectionID: connectionID, CreatedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		}, nil
	}

	view, err := f.assembler().GetAccount(context.Background(), "user-1", "conn-a")
	if err != nil {
		t.Fatalf("GetAccount() error = %v", err)
	}

	want := []string{"transfer-new", "live-tie", "transfer-tie", "live-old"}
	if len(view.Transactions) != len(want) {
		t.Fatalf("got %d transactions, want %d", len(view.Transactions), len(want))
	}
	for i, id := range want {
		if view.Transactions[i].ID != id {
			t.Errorf("Transactions[%d] = %q, want %q", i, view.Transactions[i].ID, id)
		}
	}
	if view.Account.CurrentBalance != 120 || view.Account.InstitutionID != "ins_a" {
		t.Errorf("Account = %+v", view.Account)
	}
	if len(view.Diagnostics) != 0 {
		t.Errorf("Diagnostics = %v, want none", view.Diagnostics)
	}
}

func TestAccountAssembler_ConnectionNotFound(t *testing.T) {
	f := newAssemblerFixture()

	_, err := f.assembler().GetAccount(context.Background(), "user-1", "missing")
	if !errors.Is(err, bank.ErrConnectionNotFound) {
		t.Fatalf("GetAccount() error = %v, want ErrConnectionNotFound", err)
	}
	if a, s, i := f.client.calls(); a+s+i != 0 {
		t.Errorf("provider called %d/%d/%d times, want none", a, s, i)
	}
}

func TestAccountAssembler_ForeignConnection(t *testing.T) {
	f := newAssemblerFixture()
	f.client.GetAccountsFunc = func(ctx context.Context, accessToken string) (*plaid.AccountsResponse, error) {
		return nil, &plaid.APIError{StatusCode: 400, ErrorCode: "ITEM_LOGIN_REQUIRED"}
	}

	for _, userID := range []string{"user-2", ""} {
		_, err := f.assembler().GetAccount(context.Background(), userID, "conn-a")
		if !errors.Is(err, bank.ErrConnectionNotFound) {
			t.Errorf("GetAccount(%q) error = %v, want ErrConnectionNotFound", userID, err)
		}
	}
	if a, s, i := f.client.calls(); a+s+i != 0 {
		t.Errorf("provider called %d/%d/%d times, want none", a, s, i)
	}
	f.ledger.ListByConnectionIDFunc = func(ctx context.Context, connectionID string) ([]*transaction.Transfer, error) {
		t.Error("ledger read for a foreign connection")
		return nil, nil
	}
	_, _ = f.assembler().GetAccount(context.Background(), "user-2", "conn-a")
}

func TestAccountAssembler_SnapshotFailureIsFatal(t *testing.T) {
	f := newAssemblerFixture()
	f.client.GetAccountsFunc = func(ctx context.Context, accessToken string) (*plaid.AccountsResponse, error) {
		return nil, &plaid.APIError{StatusCode: 400, ErrorCode: "ITEM_LOGIN_REQUIRED"}
	}

	_, err := f.assembler().GetAccount(context.Background(), "user-1", "conn-a")
	if !errors.Is(err, bank.ErrAccountFetch) {
		t.Fatalf("GetAccount() error = %v, want ErrAccountFetch", err)
	}
}

func TestAccountAssembler_NonFatalFailures(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(f *assemblerFixture)
		wantErr  error
		wantIDs  int
		wantInst bool
	}{
		{
			name: "ledger failure",
			setup: func(f *assemblerFixture) {
				f.ledger.ListByConnectionIDFunc = func(ctx context.Context, connectionID string) ([]*transaction.Transfer, error) {
					return nil, errors.New("relation does not exist")
				}
			},
			wantErr:  bank.ErrLedgerRead,
			wantIDs:  1,
			wantInst: true,
		},
		{
			name: "institution failure",
			setup: func(f *assemblerFixture) {
				f.client.GetInstitutionFunc = func(ctx context.Context, institutionID string, countryCodes []string) (*plaid.InstitutionResponse, error) {
					return nil, errors.New("timeout")
				}
			},
			wantErr:  bank.ErrInstitutionLookup,
			wantIDs:  2,
			wantInst: false,
		},
		{
			name: "live sync failure",
			setup: func(f *assemblerFixture) {
				f.client.SyncTransactionsFunc = func(ctx context.Context, accessToken, cursor string) (*plaid.SyncResponse, error) {
					return nil, &plaid.APIError{StatusCode: 500, ErrorCode: "INTERNAL_SERVER_ERROR"}
				}
			},
			wantErr:  bank.ErrUpstreamSync,
			wantIDs:  1,
			wantInst: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAssemblerFixture()
			f.client.SyncTransactionsFunc = func(ctx context.Context, accessToken, cursor string) (*plaid.SyncResponse, error) {
				return &plaid.SyncResponse{Added: []plaid.Transaction{{TransactionID: "live-1", DateString: "2024-03-01"}}}, nil
			}
			f.ledger.ListByConnectionIDFunc = func(ctx context.Context, connectionID string) ([]*transaction.Transfer, error) {
				return []*transaction.Transfer{{ID: "transfer-1", SenderConnectionID: connectionID}}, nil
			}
			tt.setup(f)

			view, err := f.assembler().GetAccount(context.Background(), "user-1", "conn-a")
			if err != nil {
				t.Fatalf("GetAccount() error = %v, want nil", err)
			}
			if len(view.Transactions) != tt.wantIDs {
				t.Errorf("got %d transactions, want %d", len(view.Transactions), tt.wantIDs)
			}
			if len(view.Diagnostics) != 1 || !errors.Is(view.Diagnostics[0], tt.wantErr) {
				t.Errorf("Diagnostics = %v, want [%v]", view.Diagnostics, tt.wantErr)
			}
			if hasInst := view.Account.InstitutionID != ""; hasInst != tt.wantInst {
				t.Errorf("institution present = %v, want %v", hasInst, tt.wantInst)
			}
			if view.Account.CurrentBalance != 120 {
				t.Errorf("CurrentBalance = %v, want 120", view.Account.CurrentBalance)
			}
		})
	}
}

func TestAccountAssembler_ConsentRequiredKeepsTransfers(t *testing.T) {
	f := newAssemblerFixture()
	f.client.SyncTransactionsFunc = func(ctx context.Context, accessToken, cursor string) (*plaid.SyncResponse, error) {
		return nil, &plaid.APIError{StatusCode: 400, ErrorCode: plaid.ErrorCodeAdditionalConsentRequired}
	}
	f.ledger.ListByConnectionIDFunc = func(ctx context.Context, connectionID string) ([]*transaction.Transfer, error) {
		return []*transaction.Transfer{{ID: "transfer-1", ReceiverConnectionID: connectionID}}, nil
	}

	view, err := f.assembler().GetAccount(context.Background(), "user-1", "conn-a")
	if err != nil {
		t.Fatalf("GetAccount() error = %v", err)
	}
	if len(view.Transactions) != 1 || view.Transactions[0].Type != transaction.DirectionCredit {
		t.Errorf("Transactions = %+v", view.Transactions)
	}
	if len(view.Diagnostics) != 1 || !errors.Is(view.Diagnostics[0], bank.ErrConsentRequired) {
		t.Fatalf("Diagnostics = %v, want one ErrConsentRequired", view.Diagnostics)
	}
	if errors.Is(view.Diagnostics[0], bank.ErrUpstreamSync) {
		t.Error("consent reported as an upstream sync failure")
	}
}
