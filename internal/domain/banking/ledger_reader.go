package banking

import (
	"context"
	"fmt"
	"log"

	"horizon/internal/domain/bank"
	"horizon/internal/domain/transaction"
)

// TransferLedgerReader reads locally recorded transfers for one connection.
type TransferLedgerReader struct {
	ledger transaction.Ledger
}

// NewTransferLedgerReader creates a new ledger reader
func NewTransferLedgerReader(ledger transaction.Ledger) *TransferLedgerReader {
	return &TransferLedgerReader{ledger: ledger}
}

// Read returns the connection's transfers normalized and tagged debit or credit.
// On a ledger failure it logs and returns an empty list together with an error
// wrapping bank.ErrLedgerRead, so callers may keep going with what they have.
func (r *TransferLedgerReader) Read(ctx context.Context, connectionID string) ([]transaction.Transaction, error) {
	transfers, err := r.ledger.ListByConnectionID(ctx, connectionID)
	if err != nil {
		log.Printf("Error fetching transfer transactions for connection %s: %v", connectionID, err)
		return []transaction.Transaction{}, fmt.Errorf("%w: %w", bank.ErrLedgerRead, err)
	}

	out := make([]transaction.Transaction, 0, len(transfers))
	for _, t := range transfers {
		if t == nil {
			continue
		}
		out = append(out, fromTransfer(t, connectionID))
	}
	return out, nil
}
