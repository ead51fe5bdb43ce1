package bank

import "context"

// Directory defines the interface for bank-connection data access.
// GetByID returns ErrConnectionNotFound when no connection has the given ID.
type Directory interface {
	ListByUserID(ctx context.Context, userID string) ([]*Connection, error)
	GetByID(ctx context.Context, id string) (*Connection, error)
	Create(ctx context.Context, params CreateConnectionParams) (*Connection, error)
}
