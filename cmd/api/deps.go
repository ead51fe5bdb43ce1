package main

import (
	"log"

	"horizon/internal/domain/bank"
	"horizon/internal/domain/banking"
	"horizon/internal/infrastructure/crypto"
	"horizon/internal/infrastructure/plaid"
	"horizon/internal/infrastructure/postgres"
	httphandlers "horizon/internal/interfaces/http"
	"horizon/internal/shared/auth"
	"horizon/internal/shared/cache"
	"horizon/internal/shared/config"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	DB *postgres.DB

	// Handlers
	AccountHandler     *httphandlers.AccountHandler
	TransactionHandler *httphandlers.TransactionHandler
	HealthHandler      *httphandlers.HealthHandler

	// Auth
	JWT *auth.JWT
}

// NewDependencies initializes all application dependencies.
func NewDependencies(cfg *config.Config) (*Dependencies, error) {
	db, err := postgres.New(cfg.Database.ConnectionString(), postgres.PoolConfig{
		MaxOpenConns: cfg.Database.MaxOpenConns,
	})
	if err != nil {
		return nil, err
	}
	log.Println("Connected to database")

	encryptor, err := crypto.NewEncryptor(cfg.Encryption.Key)
	if err != nil {
		db.Close()
		return nil, err
	}

	client, err := plaid.NewClient(plaid.Config{
		ClientID:    cfg.Plaid.ClientID,
		Secret:      cfg.Plaid.Secret,
		Environment: cfg.Plaid.Environment,
		Timeout:     cfg.Plaid.Timeout,
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	// Repositories
	connectionRepo := postgres.NewConnectionRepository(db, encryptor)
	transferRepo := postgres.NewTransferRepository(db)

	// Banking services
	institutions := banking.NewInstitutionResolver(
		client,
		cfg.Plaid.CountryCodes,
		cache.NewLRU[*bank.Institution](cfg.Banking.InstitutionCache, cfg.Banking.InstitutionTTL),
	)
	aggregator := banking.NewAccountAggregator(connectionRepo, client, institutions, cfg.Banking.MaxConcurrency)
	assembler := banking.NewAccountAssembler(
		connectionRepo,
		client,
		institutions,
		banking.NewLiveTransactionFetcher(client),
		banking.NewTransferLedgerReader(transferRepo),
	)
	history := banking.NewTransactionHistory(aggregator, assembler)

	return &Dependencies{
		DB:                 db,
		AccountHandler:     httphandlers.NewAccountHandler(aggregator, assembler),
		TransactionHandler: httphandlers.NewTransactionHandler(history),
		HealthHandler:      httphandlers.NewHealthHandler(db),
		JWT:                auth.NewJWT(cfg.JWT.Secret).WithIssuer(cfg.JWT.Issuer),
	}, nil
}
