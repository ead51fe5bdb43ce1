// Package banking assembles account and transaction views from the upstream banking
// provider and the local transfer ledger.
package banking

import (
	"context"
	"fmt"
	"log"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"horizon/internal/domain/bank"
	"horizon/internal/infrastructure/plaid"
)

// DefaultMaxConcurrency bounds the per-connection fan-out when no limit is configured.
const DefaultMaxConcurrency = 4

// ConnectionFailure records a connection left out of an aggregate.
type ConnectionFailure struct {
	ConnectionID string `json:"connectionId"`
	Err          error  `json:"-"`
}

// Aggregate is the summary of every account a user has linked.
type Aggregate struct {
	Accounts            []bank.AccountSnapshot `json:"data"`
	TotalBanks          int                    `json:"totalBanks"`
	TotalCurrentBalance float64                `json:"totalCurrentBalance"`
	Failures            []ConnectionFailure    `json:"-"`
}

// AccountAggregator fetches a snapshot for each of a user's connections.
type AccountAggregator struct {
	directory      bank.Directory
	client         plaid.ClientInterface
	institutions   *InstitutionResolver
	maxConcurrency int
}

// NewAccountAggregator creates a new aggregator. A maxConcurrency below 1 uses DefaultMaxConcurrency.
func NewAccountAggregator(directory bank.Directory, client plaid.ClientInterface, institutions *InstitutionResolver, maxConcurrency int) *AccountAggregator {
	if maxConcurrency < 1 {
		maxConcurrency = DefaultMaxConcurrency
	}
	return &AccountAggregator{
		directory:      directory,
		client:         client,
		institutions:   institutions,
		maxConcurrency: maxConcurrency,
	}
}

type connectionResult struct {
	snapshot bank.AccountSnapshot
	err      error
}

// GetAccounts returns a snapshot for every connection whose account and institution
// could both be loaded, in connection order. Failed connections are dropped from the
// accounts and totals and listed in Failures. Only a failure to list the connections
// is returned as an error.
func (a *AccountAggregator) GetAccounts(ctx context.Context, userID string) (*Aggregate, error) {
	ctx, span := bankingTracer.Start(ctx, "banking.get_accounts")
	defer span.End()

	conns, err := a.directory.ListByUserID(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list bank connections: %w", err)
	}
	span.SetAttributes(attribute.Int("banking.connections", len(conns)))

	if len(conns) == 0 {
		return &Aggregate{Accounts: []bank.AccountSnapshot{}}, nil
	}

	results := make([]connectionResult, len(conns))

	var g errgroup.Group
	g.SetLimit(a.maxConcurrency)
	for i, conn := range conns {
		g.Go(func() error {
			snapshot, err := a.loadConnection(ctx, conn)
			results[i] = connectionResult{snapshot: snapshot, err: err}
			return nil
		})
	}
	_ = g.Wait()

	agg := &Aggregate{Accounts: make([]bank.AccountSnapshot, 0, len(conns))}
	for i, r := range results {
		if r.err != nil {
			log.Printf("Error fetching account for connection %s: %v", conns[i].ID, r.err)
			agg.Failures = append(agg.Failures, ConnectionFailure{ConnectionID: conns[i].ID, Err: r.err})
			accountFetchTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", "error")))
			continue
		}
		agg.Accounts = append(agg.Accounts, r.snapshot)
		agg.TotalCurrentBalance += r.snapshot.CurrentBalance
		accountFetchTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", "ok")))
	}
	agg.TotalBanks = len(agg.Accounts)

	span.SetAttributes(
		attribute.Int("banking.accounts", agg.TotalBanks),
		attribute.Int("banking.failures", len(agg.Failures)),
	)
	return agg, nil
}

func (a *AccountAggregator) loadConnection(ctx context.Context, conn *bank.Connection) (bank.AccountSnapshot, error) {
	snapshot, institutionID, err := fetchSnapshot(ctx, a.client, conn)
	if err != nil {
		return bank.AccountSnapshot{}, err
	}

	inst, err := a.institutions.Resolve(ctx, institutionID)
	if err != nil {
		return bank.AccountSnapshot{}, fmt.Errorf("%w: %w", bank.ErrAccountFetch, err)
	}
	return snapshot.WithInstitution(inst), nil
}
