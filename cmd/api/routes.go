package main

import (
	"log"
	"net/http"

	"horizon/internal/shared/config"
	"horizon/internal/shared/middleware"
	"horizon/internal/shared/telemetry"
)

// SetupRoutes configures all HTTP routes and returns the final handler with middleware.
func SetupRoutes(deps *Dependencies, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", deps.HealthHandler.HandleHealth)
	if cfg.Telemetry.Enabled {
		mux.Handle("GET /metrics", telemetry.MetricsHandler())
	}

	authMiddleware := middleware.Auth(deps.JWT)
	optionalAuth := middleware.OptionalAuth(deps.JWT)

	// Balances and transactions must not linger in shared caches
	mux.Handle("/api/accounts", middleware.NoStore(authMiddleware(http.HandlerFunc(deps.AccountHandler.HandleListAccounts))))
	mux.Handle("/api/accounts/{id}", middleware.NoStore(authMiddleware(http.HandlerFunc(deps.AccountHandler.HandleAccountByID))))
	mux.Handle("/api/transaction-history", middleware.NoStore(optionalAuth(http.HandlerFunc(deps.TransactionHandler.HandleTransactionHistory))))

	// Apply global middleware
	handler := middleware.CORS(cfg.Server.AllowedHosts)(mux)
	if cfg.Telemetry.Enabled {
		handler = middleware.Tracing(handler)
	}
	handler = middleware.Logging(handler)
	if cfg.Telemetry.Enabled {
		handler = middleware.Telemetry(cfg.Telemetry.ServiceName)(handler)
	}

	// Apply security middleware when TLS is enabled
	if cfg.TLS.Enabled {
		handler = middleware.HSTS(handler)
		log.Println("TLS security middleware enabled (HSTS)")
	}

	return handler
}
