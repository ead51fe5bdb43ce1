package banking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"go.opentelemetry.io/otel/attribute"

	"horizon/internal/domain/bank"
	"horizon/internal/domain/transaction"
	"horizon/internal/infrastructure/plaid"
)

// AccountView is one account with its full, merged transaction history.
// Diagnostics lists the non-fatal failures hit while assembling it.
type AccountView struct {
	Account      bank.AccountSnapshot      `json:"data"`
	Transactions []transaction.Transaction `json:"transactions"`
	Diagnostics  []error                   `json:"-"`
}

// AccountAssembler builds the single-account view.
type AccountAssembler struct {
	directory    bank.Directory
	client       plaid.ClientInterface
	institutions *InstitutionResolver
	live         *LiveTransactionFetcher
	ledger       *TransferLedgerReader
}

// NewAccountAssembler creates a new account assembler
func NewAccountAssembler(
	directory bank.Directory,
	client plaid.ClientInterface,
	institutions *InstitutionResolver,
	live *LiveTransactionFetcher,
	ledger *TransferLedgerReader,
) *AccountAssembler {
	return &AccountAssembler{
		directory:    directory,
		client:       client,
		institutions: institutions,
		live:         live,
		ledger:       ledger,
	}
}

// GetAccount loads userID's connection, its account snapshot, and the merged history
// of live and transfer transactions sorted newest first.
//
// An unknown connection, or one owned by another user, returns
// bank.ErrConnectionNotFound before the provider is called. A snapshot failure
// returns bank.ErrAccountFetch. Ledger, institution and live-feed failures are
// recorded in Diagnostics and the view is returned without that part. A live feed
// withheld for missing consent shows up there as bank.ErrConsentRequired.
func (a *AccountAssembler) GetAccount(ctx context.Context, userID, connectionID string) (*AccountView, error) {
	ctx, span := bankingTracer.Start(ctx, "banking.get_account")
	defer span.End()
	span.SetAttributes(attribute.String("banking.connection_id", connectionID))

	conn, err := a.directory.GetByID(ctx, connectionID)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, bank.ErrConnectionNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load bank connection: %w", err)
	}
	if conn == nil || conn.UserID != userID {
		return nil, bank.ErrConnectionNotFound
	}

	snapshot, institutionID, err := fetchSnapshot(ctx, a.client, conn)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	var (
		wg        sync.WaitGroup
		transfers []transaction.Transaction
		live      []transaction.Transaction
		inst      *bank.Institution
		ledgerErr error
		instErr   error
		liveErr   error
		consent   bool
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		transfers, ledgerErr = a.ledger.Read(ctx, conn.ID)
	}()
	go func() {
		defer wg.Done()
		inst, instErr = a.institutions.Resolve(ctx, institutionID)
	}()
	go func() {
		defer wg.Done()
		live, consent, liveErr = a.live.fetch(ctx, conn.AccessToken)
	}()
	wg.Wait()

	view := &AccountView{Account: snapshot}

	if ledgerErr != nil {
		view.Diagnostics = append(view.Diagnostics, ledgerErr)
		transfers = nil
	}
	if instErr != nil {
		log.Printf("Error resolving institution for connection %s: %v", conn.ID, instErr)
		view.Diagnostics = append(view.Diagnostics, instErr)
	} else {
		view.Account = snapshot.WithInstitution(inst)
	}
	if liveErr != nil {
		log.Printf("Error syncing transactions for connection %s: %v", conn.ID, liveErr)
		view.Diagnostics = append(view.Diagnostics, liveErr)
		live = nil
	}
	if consent {
		view.Diagnostics = append(view.Diagnostics, fmt.Errorf("%w: connection %s", bank.ErrConsentRequired, conn.ID))
	}

	view.Transactions = transaction.Merge(live, transfers)
	span.SetAttributes(
		attribute.Int("banking.transactions", len(view.Transactions)),
		attribute.Int("banking.diagnostics", len(view.Diagnostics)),
	)
	return view, nil
}
