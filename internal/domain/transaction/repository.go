package transaction

import "context"

// Ledger defines the interface for transfer ledger access
type Ledger interface {
	// ListByConnectionID returns every transfer where the connection is the sender or the receiver
	ListByConnectionID(ctx context.Context, connectionID string) ([]*Transfer, error)

	// Create records a new transfer
	Create(ctx context.Context, params CreateTransferParams) (*Transfer, error)
}
