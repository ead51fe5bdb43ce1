package banking

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var (
	bankingTracer        = otel.Tracer("horizon/banking")
	bankingMeter         = otel.Meter("horizon/banking")
	accountFetchTotal, _ = bankingMeter.Int64Counter("banking.accounts.fetch",
		metric.WithDescription("Account snapshot fetches by status"),
	)
	liveTransactionsTotal, _ = bankingMeter.Int64Counter("banking.transactions.synced",
		metric.WithDescription("Transactions received from the provider sync feed"),
	)
	syncPagesTotal, _ = bankingMeter.Int64Counter("banking.sync.pages",
		metric.WithDescription("Provider sync pages fetched"),
	)
)
