package banking

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"horizon/internal/domain/bank"
	"horizon/internal/infrastructure/plaid"
)

func connections(tokens ...string) []*bank.Connection {
	conns := make([]*bank.Connection, len(tokens))
	for i, tok := range tokens {
		conns[i] = &bank.Connection{ID: "conn-" + tok, UserID: "user-1", AccessToken: tok, ShareableID: "share-" + tok}
	}
	return conns
}

func newTestAggregator(dir *MockDirectory, client *MockClient, limit int) *AccountAggregator {
	return NewAccountAggregator(dir, client, NewInstitutionResolver(client, []string{"US"}, nil), limit)
}

func TestAccountAggregator_GetAccounts(t *testing.T) {
	dir := &MockDirectory{
		ListByUserIDFunc: func(ctx context.Context, userID string) ([]*bank.Connection, error) {
			return connections("a", "b", "c"), nil
		},
	}
	client := &MockClient{GetAccountsFunc: accountsFor(map[string]float64{"a": 100, "b": 250.5, "c": 49.5})}

	agg, err := newTestAggregator(dir, client, 2).GetAccounts(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetAccounts() error = %v", err)
	}

	if agg.TotalBanks != 3 {
		t.Errorf("TotalBanks = %d, want 3", agg.TotalBanks)
	}
	if agg.TotalCurrentBalance != 400 {
		t.Errorf("TotalCurrentBalance = %v, want 400", agg.TotalCurrentBalance)
	}
	for i, want := range []string{"conn-a", "conn-b", "conn-c"} {
		if agg.Accounts[i].ConnectionID != want {
			t.Errorf("Accounts[%d].ConnectionID = %q, want %q", i, agg.Accounts[i].ConnectionID, want)
		}
	}
	first := agg.Accounts[0]
	if first.InstitutionID != "ins_a" || first.InstitutionName != "Bank ins_a" {
		t.Errorf("institution = %q/%q", first.InstitutionID, first.InstitutionName)
	}
	if first.ShareableID != "share-a" || first.Mask != "0000" || first.Subtype != "checking" {
		t.Errorf("snapshot = %+v", first)
	}
	if len(agg.Failures) != 0 {
		t.Errorf("Failures = %v, want none", agg.Failures)
	}
}

func TestAccountAggregator_DropsFailedConnections(t *testing.T) {
	dir := &MockDirectory{
		ListByUserIDFunc: func(ctx context.Context, userID string) ([]*bank.Connection, error) {
			return connections("a", "broken", "c"), nil
		},
	}
	client := &MockClient{GetAccountsFunc: accountsFor(map[string]float64{"a": 100, "c": 50})}

	agg, err := newTestAggregator(dir, client, 4).GetAccounts(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetAccounts() error = %v", err)
	}

	if agg.TotalBanks != 2 || len(agg.Accounts) != 2 {
		t.Fatalf("TotalBanks = %d, accounts = %d, want 2", agg.TotalBanks, len(agg.Accounts))
	}
	if agg.TotalCurrentBalance != 150 {
		t.Errorf("TotalCurrentBalance = %v, want 150", agg.TotalCurrentBalance)
	}
	if agg.Accounts[0].ConnectionID != "conn-a" || agg.Accounts[1].ConnectionID != "conn-c" {
		t.Errorf("order = %q, %q", agg.Accounts[0].ConnectionID, agg.Accounts[1].ConnectionID)
	}
	if len(agg.Failures) != 1 || agg.Failures[0].ConnectionID != "conn-broken" {
		t.Fatalf("Failures = %+v", agg.Failures)
	}
	if !errors.Is(agg.Failures[0].Err, bank.ErrAccountFetch) {
		t.Errorf("failure error = %v, want ErrAccountFetch", agg.Failures[0].Err)
	}
}

func TestAccountAggregator_InstitutionFailureDropsConnection(t *testing.T) {
	dir := &MockDirectory{
		ListByUserIDFunc: func(ctx context.Context, userID string) ([]*bank.Connection, error) {
			return connections("a", "b"), nil
		},
	}
	client := &MockClient{
		GetAccountsFunc: accountsFor(map[string]float64{"a": 10, "b": 20}),
		GetInstitutionFunc: func(ctx context.Context, institutionID string, countryCodes []string) (*plaid.InstitutionResponse, error) {
			if institutionID == "ins_b" {
				return nil, errors.New("timeout")
			}
			return &plaid.InstitutionResponse{Institution: plaid.Institution{InstitutionID: institutionID, Name: "A"}}, nil
		},
	}

	agg, err := newTestAggregator(dir, client, 4).GetAccounts(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetAccounts() error = %v", err)
	}
	if agg.TotalBanks != 1 || agg.TotalCurrentBalance != 10 {
		t.Errorf("TotalBanks = %d, TotalCurrentBalance = %v", agg.TotalBanks, agg.TotalCurrentBalance)
	}
	if len(agg.Failures) != 1 || !errors.Is(agg.Failures[0].Err, bank.ErrInstitutionLookup) {
		t.Errorf("Failures = %+v", agg.Failures)
	}
}

func TestAccountAggregator_NoConnections(t *testing.T) {
	client := &MockClient{}
	agg, err := newTestAggregator(&MockDirectory{}, client, 4).GetAccounts(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetAccounts() error = %v", err)
	}
	if agg.Accounts == nil || len(agg.Accounts) != 0 {
		t.Errorf("Accounts = %v, want empty non-nil", agg.Accounts)
	}
	if agg.TotalBanks != 0 || agg.TotalCurrentBalance != 0 {
		t.Errorf("totals = %d/%v, want 0/0", agg.TotalBanks, agg.TotalCurrentBalance)
	}
	if n, _, _ := client.calls(); n != 0 {
		t.Errorf("GetAccounts called %d times, want 0", n)
	}
}

func TestAccountAggregator_ListError(t *testing.T) {
	dir := &MockDirectory{
		ListByUserIDFunc: func(ctx context.Context, userID string) ([]*bank.Connection, error) {
			return nil, errors.New("database down")
		},
	}
	if _, err := newTestAggregator(dir, &MockClient{}, 4).GetAccounts(context.Background(), "user-1"); err == nil {
		t.Error("GetAccounts() error = nil, want error")
	}
}

func TestAccountAggregator_BoundedConcurrency(t *testing.T) {
	const limit = 2
	tokens := []string{"a", "b", "c", "d", "e", "f"}
	balances := make(map[string]float64, len(tokens))
	for _, tok := range tokens {
		balances[tok] = 1
	}
	dir := &MockDirectory{
		ListByUserIDFunc: func(ctx context.Context, userID string) ([]*bank.Connection, error) {
			return connections(tokens...), nil
		},
	}

	var inFlight, peak int32
	respond := accountsFor(balances)
	client := &MockClient{
		GetAccountsFunc: func(ctx context.Context, accessToken string) (*plaid.AccountsResponse, error) {
			n := atomic.AddInt32(&inFlight, 1)
			defer atomic.AddInt32(&inFlight, -1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			return respond(ctx, accessToken)
		},
	}

	agg, err := newTestAggregator(dir, client, limit).GetAccounts(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetAccounts() error = %v", err)
	}
	if agg.TotalBanks != len(tokens) {
		t.Errorf("TotalBanks = %d, want %d", agg.TotalBanks, len(tokens))
	}
	if p := atomic.LoadInt32(&peak); p > limit {
		t.Errorf("peak concurrency = %d, want <= %d", p, limit)
	}
}

func TestNewAccountAggregator_DefaultLimit(t *testing.T) {
	a := NewAccountAggregator(&MockDirectory{}, &MockClient{}, nil, 0)
	if a.maxConcurrency != DefaultMaxConcurrency {
		t.Errorf("maxConcurrency = %d, want %d", a.maxConcurrency, DefaultMaxConcurrency)
	}
}
