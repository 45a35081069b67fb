package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"example/storefront/internal/config"
	"example/storefront/internal/database"
	"example/storefront/internal/logger"
	"example/storefront/internal/server"
	"example/storefront/internal/service"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

func main() {
	app := &cli.App{
		Name:  "storefront",
		Usage: "products, customers and balance-debited purchases over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env-file",
				Value:   ".env",
				Usage:   "dotenv file loaded before reading the environment",
				EnvVars: []string{"ENV_FILE"},
			},
		},
		Before: func(c *cli.Context) error {
			// Resolve APP_ENV before the .env file is read so that loading
			// problems are reported in the right format.
			logger.Init(os.Getenv("APP_ENV"))
			return nil
		},
		After: func(c *cli.Context) error {
			logger.Sync()
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP and WebSocket API",
				Action: serve,
			},
			{
				Name:  "migrate",
				Usage: "apply the schema migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "down", Usage: "revert every migration instead"},
				},
				Action: func(c *cli.Context) error {
					cfg, err := loadConfig(c)
					if err != nil {
						return err
					}
					return database.Migrate(cfg.Database, c.Bool("down"))
				},
			},
			{
				Name:  "seed",
				Usage: "insert the demo catalog and customers into an empty database",
				Action: func(c *cli.Context) error {
					cfg, err := loadConfig(c)
					if err != nil {
						return err
					}
					db, err := database.Open(c.Context, cfg.Database)
					if err != nil {
						return err
					}
					defer database.Close(db)

					_, err = database.Seed(c.Context, db)
					return err
				},
			},
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatalw("Command failed", "error", err)
	}
}

func loadConfig(c *cli.Context) (config.Config, error) {
	cfg, err := config.Load(c.String("env-file"))
	if err != nil {
		return cfg, err
	}
	logger.Init(cfg.AppEnv)
	return cfg, nil
}

func serve(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	logger.Log.Infow("Starting storefront API server", "env", cfg.AppEnv)

	if cfg.MigrateOnStart {
		if err := database.Migrate(cfg.Database, false); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if cfg.SeedOnStart {
		if _, err := database.Seed(ctx, db); err != nil {
			return err
		}
	}

	srv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: server.Router(service.NewShop(db), server.Options{
			CORSOrigin: cfg.CORSOrigin,
			Verbose:    !cfg.Production(),
		}),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Log.Infow("HTTP server starting", "addr", cfg.HTTPAddr, "websocket", "/ws", "api", "/api")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "listen")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Log.Info("Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
