package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	app_service "crypto-cluster-analyzer/internal/application/service"
	"crypto-cluster-analyzer/internal/domain/repository"
	domain_service "crypto-cluster-analyzer/internal/domain/service"
	"crypto-cluster-analyzer/internal/infrastructure/config"
	"crypto-cluster-analyzer/internal/infrastructure/database"
	"crypto-cluster-analyzer/internal/infrastructure/logger"
	"crypto-cluster-analyzer/internal/infrastructure/messaging"
	"crypto-cluster-analyzer/internal/infrastructure/store"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Create logger
	log, err := logger.NewLogger(cfg.App.LogLevel)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}

	// Create FX application
	app := fx.New(
		// Provide dependencies
		fx.Supply(cfg),
		fx.Supply(log),

		// Infrastructure providers
		fx.Provide(
			newRecordStore,
			newProgressNotifier,
		),

		// Domain services
		fx.Provide(
			domain_service.NewClusterBuilder,
			domain_service.NewBalanceTracker,
		),

		// Application providers
		fx.Provide(
			app_service.NewClusterAnalysisService,
		),

		// Lifecycle hooks
		fx.Invoke(runAnalysis),
		fx.Invoke(startHealthServer),

		// Configure logging
		fx.WithLogger(func() fxevent.Logger {
			return fxevent.NopLogger
		}),
	)

	// Start the application
	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		log.Error("Failed to start application", zap.Error(err))
		os.Exit(1)
	}

	// Wait for the analysis to finish or a shutdown signal
	sig := <-app.Wait()

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.Stop(stopCtx); err != nil {
		log.Error("Failed to stop application gracefully", zap.Error(err))
		os.Exit(1)
	}

	os.Exit(sig.ExitCode)
}

// newRecordStore selects the record store backend from configuration.
func newRecordStore(lc fx.Lifecycle, cfg *config.Config, log *logger.Logger) (repository.RecordStore, error) {
	switch cfg.Store.Backend {
	case "file":
		return store.NewFileRecordStore(&cfg.Store, log), nil
	case "http":
		return store.NewHTTPRecordStore(&cfg.Store, log), nil
	case "neo4j":
		client := database.NewNeo4JClient(&cfg.Neo4J, log)
		lc.Append(fx.Hook{
			OnStart: client.Connect,
			OnStop:  client.Close,
		})
		return database.NewNeo4JRecordStore(client, log), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// newProgressNotifier publishes progress to NATS when enabled, otherwise to
// the application log.
func newProgressNotifier(lc fx.Lifecycle, cfg *config.Config, log *logger.Logger) domain_service.ProgressNotifier {
	if !cfg.NATS.Enabled {
		return messaging.NewLogNotifier(log)
	}

	publisher := messaging.NewNATSProgressPublisher(&cfg.NATS, log)
	lc.Append(fx.Hook{
		OnStart: publisher.Connect,
		OnStop: func(ctx context.Context) error {
			return publisher.Disconnect()
		},
	})
	return publisher
}

// runAnalysis runs one analysis for the configured seed address and writes
// the result record to stdout.
func runAnalysis(
	lifecycle fx.Lifecycle,
	shutdowner fx.Shutdowner,
	analysisService domain_service.AnalysisService,
	cfg *config.Config,
	log *logger.Logger,
) {
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			seed := cfg.App.SeedAddress
			if seed == "" {
				return fmt.Errorf("no seed address configured (set app.seed_address or SEED_ADDRESS)")
			}

			go func() {
				result, err := analysisService.Analyze(context.Background(), seed)
				if result == nil {
					log.Error("Analysis failed", zap.String("seed", seed), zap.Error(err))
					shutdowner.Shutdown(fx.ExitCode(1))
					return
				}
				if err != nil {
					// Degenerate statistics: the rest of the result stands.
					log.Warn("Analysis finished with unavailable statistics", zap.Error(err))
				}

				output, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					log.Error("Failed to encode analysis result", zap.Error(err))
					shutdowner.Shutdown(fx.ExitCode(1))
					return
				}
				fmt.Println(string(output))
				shutdowner.Shutdown()
			}()

			return nil
		},
	})
}

// startHealthServer starts the health check server
func startHealthServer(
	lifecycle fx.Lifecycle,
	cfg *config.Config,
	logger *logger.Logger,
) {
	var server *http.Server

	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("Starting health server", zap.Int("port", cfg.App.HTTPPort))

			mux := http.NewServeMux()
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte(`{"status":"ok"}`))
			})

			server = &http.Server{
				Addr:    fmt.Sprintf(":%d", cfg.App.HTTPPort),
				Handler: mux,
			}

			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("Health server error", zap.Error(err))
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			if server != nil {
				return server.Shutdown(ctx)
			}
			return nil
		},
	})
}
