package plaid

import (
	"context"
)

// ClientInterface defines the methods required from the banking provider API client
type ClientInterface interface {
	GetAccounts(ctx context.Context, accessToken string) (*AccountsResponse, error)
	SyncTransactions(ctx context.Context, accessToken, cursor string) (*SyncResponse, error)
	GetInstitution(ctx context.Context, institutionID string, countryCodes []string) (*InstitutionResponse, error)
}
