package banking

import (
	"context"
	"fmt"
	"log"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"horizon/internal/domain/bank"
	"horizon/internal/domain/transaction"
	"horizon/internal/infrastructure/plaid"
)

// LiveTransactionFetcher drains the provider's cursor-based sync feed for one connection.
type LiveTransactionFetcher struct {
	client plaid.ClientInterface
}

// NewLiveTransactionFetcher creates a new live transaction fetcher
func NewLiveTransactionFetcher(client plaid.ClientInterface) *LiveTransactionFetcher {
	return &LiveTransactionFetcher{client: client}
}

// Fetch pages through the sync feed from an empty cursor until the provider reports
// no more pages, returning every added transaction normalized.
//
// When the provider asks for additional consent the fetch stops and returns an empty
// list with a nil error. Any other provider error aborts the fetch with an error
// wrapping bank.ErrUpstreamSync.
func (f *LiveTransactionFetcher) Fetch(ctx context.Context, accessToken string) ([]transaction.Transaction, error) {
	txs, _, err := f.fetch(ctx, accessToken)
	return txs, err
}

// fetch is Fetch that also reports whether the provider stopped the sync for consent.
func (f *LiveTransactionFetcher) fetch(ctx context.Context, accessToken string) ([]transaction.Transaction, bool, error) {
	ctx, span := bankingTracer.Start(ctx, "banking.live_transactions")
	defer span.End()

	var (
		all    []transaction.Transaction
		cursor string
		pages  int
	)

	for {
		resp, err := f.client.SyncTransactions(ctx, accessToken, cursor)
		if err != nil {
			if plaid.IsConsentRequired(err) {
				log.Println("Additional consent required for transactions")
				span.SetAttributes(attribute.Bool("banking.consent_required", true))
				return []transaction.Transaction{}, true, nil
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, false, fmt.Errorf("%w: %w", bank.ErrUpstreamSync, err)
		}
		pages++
		syncPagesTotal.Add(ctx, 1)

		for _, tx := range resp.Added {
			all = append(all, fromProviderTransaction(tx))
		}

		if !resp.HasMore {
			break
		}
		if resp.NextCursor == "" || resp.NextCursor == cursor {
			err := fmt.Errorf("%w: provider reported more pages without advancing the cursor", bank.ErrUpstreamSync)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, false, err
		}
		cursor = resp.NextCursor
	}

	span.SetAttributes(
		attribute.Int("banking.sync_pages", pages),
		attribute.Int("banking.transactions", len(all)),
	)
	liveTransactionsTotal.Add(ctx, int64(len(all)))

	if all == nil {
		all = []transaction.Transaction{}
	}
	return all, false, nil
}
