package main

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"horizon/internal/domain/bank"
	"horizon/internal/domain/banking"
	"horizon/internal/infrastructure/crypto"
	"horizon/internal/infrastructure/plaid"
	"horizon/internal/infrastructure/postgres"
	"horizon/internal/shared/cache"
	"horizon/internal/shared/config"
)

var flagTimeout time.Duration

var rootCmd = &cobra.Command{
	Use:           "admin",
	Short:         "Horizon admin CLI",
	Long:          "Management commands for the horizon API: schema migrations, linking banks, recording transfers and inspecting accounts.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", 2*time.Minute, "Timeout for the operation (e.g. 30s, 5m)")
}

// env is what every database-backed command needs
type env struct {
	cfg        *config.Config
	db         *postgres.DB
	encryptor  *crypto.Encryptor
	connection *postgres.ConnectionRepository
	transfers  *postgres.TransferRepository
}

func openEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.New(cfg.Database.ConnectionString(), postgres.PoolConfig{MaxOpenConns: 4})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Connected to database")

	encryptor, err := crypto.NewEncryptor(cfg.Encryption.Key)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create encryptor: %w", err)
	}

	return &env{
		cfg:        cfg,
		db:         db,
		encryptor:  encryptor,
		connection: postgres.NewConnectionRepository(db, encryptor),
		transfers:  postgres.NewTransferRepository(db),
	}, nil
}

func (e *env) Close() error {
	return e.db.Close()
}

// bankingServices builds the same aggregation stack the API serves
func (e *env) bankingServices() (*banking.AccountAggregator, *banking.TransactionHistory, error) {
	client, err := plaid.NewClient(plaid.Config{
		ClientID:    e.cfg.Plaid.ClientID,
		Secret:      e.cfg.Plaid.Secret,
		Environment: e.cfg.Plaid.Environment,
		Timeout:     e.cfg.Plaid.Timeout,
	})
	if err != nil {
		return nil, nil, err
	}

	institutions := banking.NewInstitutionResolver(client, e.cfg.Plaid.CountryCodes,
		cache.NewLRU[*bank.Institution](e.cfg.Banking.InstitutionCache, e.cfg.Banking.InstitutionTTL))
	aggregator := banking.NewAccountAggregator(e.connection, client, institutions, e.cfg.Banking.MaxConcurrency)
	assembler := banking.NewAccountAssembler(
		e.connection,
		client,
		institutions,
		banking.NewLiveTransactionFetcher(client),
		banking.NewTransferLedgerReader(e.transfers),
	)
	return aggregator, banking.NewTransactionHistory(aggregator, assembler), nil
}
