package banking

import (
	"context"
	"fmt"
	"log"

	"horizon/internal/domain/bank"
	"horizon/internal/domain/transaction"
	"horizon/internal/infrastructure/plaid"
)

const (
	defaultLiveCategory     = "Uncategorized"
	defaultTransferName     = "Transfer"
	defaultTransferCategory = "Transfer"
	defaultTransferChannel  = "online"
)

// fromProviderTransaction maps one provider feed entry onto the shared record shape.
func fromProviderTransaction(tx plaid.Transaction) transaction.Transaction {
	date, err := tx.GetDate()
	if err != nil {
		log.Printf("Warning: transaction %s has an unreadable date: %v", tx.TransactionID, err)
	}

	category := defaultLiveCategory
	if len(tx.Category) > 0 && tx.Category[0] != "" {
		category = tx.Category[0]
	}

	var image string
	if tx.LogoURL != nil {
		image = *tx.LogoURL
	}

	return transaction.Transaction{
		ID:             tx.TransactionID,
		Name:           tx.Name,
		PaymentChannel: tx.PaymentChannel,
		Type:           tx.PaymentChannel,
		AccountID:      tx.AccountID,
		Amount:         tx.Amount,
		Pending:        tx.Pending,
		Category:       category,
		Date:           date,
		Image:          image,
		Source:         transaction.SourceLive,
	}
}

// fromTransfer maps one ledger entry onto the shared record shape, seen from connectionID.
// A transfer whose sender is connectionID is a debit, including the case where the
// connection is also the receiver.
func fromTransfer(t *transaction.Transfer, connectionID string) transaction.Transaction {
	direction := transaction.DirectionCredit
	if t.SenderConnectionID == connectionID {
		direction = transaction.DirectionDebit
	}

	out := transaction.Transaction{
		ID:             t.ID,
		Name:           defaultTransferName,
		PaymentChannel: defaultTransferChannel,
		Type:           direction,
		Category:       defaultTransferCategory,
		Date:           t.CreatedAt,
		Source:         transaction.SourceTransfer,
	}
	if t.Name != nil && *t.Name != "" {
		out.Name = *t.Name
	}
	if t.Amount != nil {
		out.Amount = *t.Amount
	}
	if t.Channel != nil && *t.Channel != "" {
		out.PaymentChannel = *t.Channel
	}
	if t.Category != nil && *t.Category != "" {
		out.Category = *t.Category
	}
	return out
}

// fetchSnapshot loads the connection's account from the provider. It returns the
// snapshot and the institution ID reported for the item ("" when the provider omits it).
func fetchSnapshot(ctx context.Context, client plaid.ClientInterface, conn *bank.Connection) (bank.AccountSnapshot, string, error) {
	resp, err := client.GetAccounts(ctx, conn.AccessToken)
	if err != nil {
		return bank.AccountSnapshot{}, "", fmt.Errorf("%w: %w", bank.ErrAccountFetch, err)
	}
	if len(resp.Accounts) == 0 {
		return bank.AccountSnapshot{}, "", fmt.Errorf("%w: provider returned no accounts for connection %s", bank.ErrAccountFetch, conn.ID)
	}

	acc := resp.Accounts[0]
	if conn.AccountID != "" {
		for _, a := range resp.Accounts {
			if a.AccountID == conn.AccountID {
				acc = a
				break
			}
		}
	}

	snapshot := bank.NewAccountSnapshot(bank.SnapshotParams{
		AccountID:    acc.AccountID,
		Available:    acc.Balances.Available,
		Current:      acc.Balances.Current,
		Name:         acc.Name,
		OfficialName: acc.OfficialName,
		Mask:         acc.Mask,
		Type:         acc.Type,
		Subtype:      acc.Subtype,
	}, conn)

	var institutionID string
	if resp.Item.InstitutionID != nil {
		institutionID = *resp.Item.InstitutionID
	}
	return snapshot, institutionID, nil
}
