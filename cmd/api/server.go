package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"horizon/internal/shared/config"
	"horizon/internal/shared/middleware"
)

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Handler      http.Handler
	Addr         string
	TLSEnabled   bool
	CertPath     string
	KeyPath      string
	RedirectHTTP bool
	// RedirectAddr is where the plain HTTP to HTTPS redirect listens
	RedirectAddr    string
	AllowedHosts    []string
	ShutdownTimeout time.Duration
}

// Serve runs the API server, plus the HTTPS redirect server when TLS and redirect are
// both enabled, until ctx is cancelled or a listener fails. Servers are drained within
// ShutdownTimeout either way.
func Serve(ctx context.Context, scfg ServerConfig) error {
	servers := []*http.Server{{
		Addr:         scfg.Addr,
		Handler:      scfg.Handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		srv := servers[0]
		var err error
		if scfg.TLSEnabled {
			log.Printf("HTTPS server starting on %s", srv.Addr)
			err = srv.ListenAndServeTLS(scfg.CertPath, scfg.KeyPath)
		} else {
			log.Printf("HTTP server starting on %s", srv.Addr)
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	})

	if scfg.TLSEnabled && scfg.RedirectHTTP {
		redirect := &http.Server{
			Addr:         scfg.RedirectAddr,
			Handler:      middleware.RedirectHTTPS(scfg.AllowedHosts),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		servers = append(servers, redirect)

		g.Go(func() error {
			log.Printf("HTTP redirect server starting on %s", redirect.Addr)
			if err := redirect.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("redirect server: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Println("Server shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), scfg.ShutdownTimeout)
		defer cancel()

		var errs []error
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("shutdown %s: %w", srv.Addr, err))
			}
		}
		log.Println("Server stopped")
		return errors.Join(errs...)
	})

	return g.Wait()
}

// NewServerConfigFromConfig creates ServerConfig from application config.
func NewServerConfigFromConfig(handler http.Handler, cfg *config.Config) ServerConfig {
	return ServerConfig{
		Handler:         handler,
		Addr:            cfg.Server.Host + ":" + cfg.Server.Port,
		TLSEnabled:      cfg.TLS.Enabled,
		CertPath:        cfg.TLS.CertPath,
		KeyPath:         cfg.TLS.KeyPath,
		RedirectHTTP:    cfg.TLS.RedirectHTTP,
		RedirectAddr:    ":80",
		AllowedHosts:    cfg.Server.AllowedHosts,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}
}
