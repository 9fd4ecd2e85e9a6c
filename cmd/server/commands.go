package main

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"liturgy-live/internal/config"
	"liturgy-live/internal/db"
	"liturgy-live/internal/handlers"
	"liturgy-live/internal/services"
)

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "liturgy-live",
		Short: "Live presentation server for liturgies.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage: true,
	}
	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newSeedCommand())
	return cmd
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the operator API and output websocket.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			return serve(cfg)
		},
	}
}

func newSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed <liturgy.json>...",
		Short: "Load liturgies from JSON files into the catalogue.",
		Example: `
liturgy-live seed ./liturgies/advent-1.json
`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			database, err := db.InitDatabase(cfg.Storage.DBPath)
			if err != nil {
				return err
			}
			defer database.Close()

			loader := services.NewSQLiteSlideLoader(database)
			for _, path := range args {
				in, err := readLiturgyFile(path)
				if err != nil {
					return err
				}
				if err := loader.SaveLiturgy(cmd.Context(), in); err != nil {
					return fmt.Errorf("failed to seed %s: %w", path, err)
				}
			}
			return nil
		},
	}
}

func readLiturgyFile(path string) (services.LiturgyInput, error) {
	var in services.LiturgyInput
	data, err := os.ReadFile(path)
	if err != nil {
		return in, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return in, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return in, nil
}

func serve(cfg *config.Config) error {
	database, err := db.InitDatabase(cfg.Storage.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	// Initialize services
	loader := services.NewSQLiteSlideLoader(database)
	hub := services.NewSyncHub(cfg.Sync.BufferSize)
	snapshots := services.NewDiskSnapshotStore(cfg.Storage.SnapshotDir)
	sessions := services.NewSessionManager(loader, hub, snapshots, services.SessionOptions{
		AutoSaveDelay:  cfg.AutoSave.Delay,
		SnapshotMaxAge: cfg.AutoSave.MaxAge,
	})
	defer sessions.CloseAll()

	// Initialize handlers
	presentationHandler := handlers.NewPresentationHandler(sessions, cfg.Import.MaxBytes)
	wsHandler := handlers.NewWebSocketHandler(sessions)
	router := handlers.SetupRoutes(presentationHandler, wsHandler)

	server := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		if cfg.TLS.Enabled {
			server.TLSConfig = &tls.Config{
				MinVersion: getTLSVersion(cfg.TLS.MinVersion),
			}
			log.Printf("Starting HTTPS server on %s", cfg.Addr())
			log.Printf("TLS Certificate: %s", cfg.TLS.CertFile)
			log.Printf("TLS Key: %s", cfg.TLS.KeyFile)
			log.Printf("TLS Min Version: %s", cfg.TLS.MinVersion)
			errCh <- server.ListenAndServeTLS(cfg.TLS.CertFile, cfg.TLS.KeyFile)
			return
		}
		log.Printf("Starting HTTP server on %s", cfg.Addr())
		log.Printf("Warning: HTTP mode is not recommended for production")
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case sig := <-stop:
		log.Printf("Received %s, shutting down", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shut down: %w", err)
		}
	}
	return nil
}

// getTLSVersion converts string version to tls.Version constant
func getTLSVersion(version string) uint16 {
	switch version {
	case "1.0":
		return tls.VersionTLS10
	case "1.1":
		return tls.VersionTLS11
	case "1.2":
		return tls.VersionTLS12
	case "1.3":
		return tls.VersionTLS13
	default:
		return tls.VersionTLS12
	}
}
