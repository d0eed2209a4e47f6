// Package main provides the campus wallet command line: the API server and operator tooling.
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/go-petr/campus-wallet/cmd/httpserver"
	"github.com/go-petr/campus-wallet/internal/domain"
	"github.com/go-petr/campus-wallet/internal/middleware"
	"github.com/go-petr/campus-wallet/pkg/configpkg"
	"github.com/go-petr/campus-wallet/pkg/dbpkg"

	_ "github.com/lib/pq"
)

const shutdownTimeout = 10 * time.Second

type app struct {
	configPath string
	config     configpkg.Config
	logger     zerolog.Logger
}

func (a *app) load(_ *cobra.Command, _ []string) error {
	config, err := configpkg.Load(a.configPath)
	if err != nil {
		return err
	}

	a.config = config
	a.logger = middleware.CreateLogger(config)

	return nil
}

// openDB connects to postgres, or returns nil when the memory store is configured.
func (a *app) openDB() (*sql.DB, error) {
	if a.config.StoreDriver != configpkg.StorePostgres {
		return nil, nil
	}

	return dbpkg.Setup(a.config.DBDriver, a.config.DBSource)
}

func main() {
	a := &app{}

	root := &cobra.Command{
		Use:               "campus-wallet",
		Short:             "Campus wallet ledger and escrow engine",
		SilenceUsage:      true,
		PersistentPreRunE: a.load,
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "./configs", "directory holding app.env")

	root.AddCommand(serveCommand(a))
	root.AddCommand(migrateCommand(a))
	root.AddCommand(profilesCommand(a))
	root.AddCommand(tokenCommand(a))

	if err := root.Execute(); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}

func serveCommand(a *app) *cobra.Command {
	var admins []string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "start the wallet API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := a.logger

			db, err := a.openDB()
			if err != nil {
				logger.Error().Err(err).Msg("cannot connect to database")
				return err
			}

			if db != nil {
				defer db.Close()
			}

			gin.SetMode(gin.ReleaseMode)

			server, err := httpserver.New(db, logger, a.config)
			if err != nil {
				logger.Error().Err(err).Msg("cannot create server")
				return err
			}
			defer server.Close()

			ctx := logger.WithContext(cmd.Context())
			for _, entry := range admins {
				if err := seedAdmin(ctx, server, entry); err != nil {
					return err
				}
			}

			return run(ctx, logger, server, a.config.ServerAddress)
		},
	}

	cmd.Flags().StringArrayVar(&admins, "admin", nil, "seed an admin profile as id=name before serving")

	return cmd
}

func seedAdmin(ctx context.Context, server *httpserver.Server, entry string) error {
	id, name, ok := strings.Cut(entry, "=")
	if !ok {
		return errors.New("admin must be given as id=name")
	}

	_, err := server.Directory.Seed(ctx, domain.Identity{ID: id, Name: name, Role: domain.RoleAdmin})
	if errors.Is(err, domain.ErrProfileAlreadyExists) {
		return nil
	}

	return err
}

func run(ctx context.Context, logger zerolog.Logger, handler http.Handler, addr string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		logger.Info().Str("addr", addr).Msg("CAMPUS WALLET SERVER HAS STARTED")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("cannot start server")
			return err
		}

		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
