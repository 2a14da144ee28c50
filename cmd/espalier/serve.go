package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/espalier/internal/config"
	"github.com/aretw0/espalier/internal/presentation/tui"
	httpAdapter "github.com/aretw0/espalier/pkg/adapters/http"
	"github.com/aretw0/espalier/pkg/adapters/memory"
	redisAdapter "github.com/aretw0/espalier/pkg/adapters/redis"
	"github.com/aretw0/espalier/pkg/ports"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the graph editing HTTP server",
	Long: `Starts the REST API for editing, validating and compiling workflow drafts.
Drafts live in memory unless a Redis address is configured.`,
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger(cmd)
		cfgPath, _ := cmd.Flags().GetString("config")
		listen, _ := cmd.Flags().GetString("listen")

		cfg, err := config.Load(cfgPath)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}
		if cmd.Flags().Changed("listen") {
			cfg.Listen = listen
		}

		var drafts ports.DraftStore
		if cfg.Redis.Addr != "" {
			var opts []redisAdapter.Option
			if cfg.Redis.Prefix != "" {
				opts = append(opts, redisAdapter.WithPrefix(cfg.Redis.Prefix))
			}
			if cfg.Redis.TTL > 0 {
				opts = append(opts, redisAdapter.WithTTL(cfg.Redis.TTL))
			}
			store := redisAdapter.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, opts...)
			defer store.Close()
			drafts = store
		} else {
			drafts = memory.NewStore()
		}

		tui.PrintBanner()

		handler := httpAdapter.NewHandler(drafts, httpAdapter.WithLogger(logger))
		srv := &http.Server{
			Addr:    cfg.Listen,
			Handler: handler,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			fmt.Printf("Starting Espalier Server on %s\n", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		// Blocking main and waiting for shutdown.
		select {
		case err := <-serverErrors:
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			fmt.Printf("\nStart shutdown... Signal: %v\n", sig)

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					fmt.Printf("Error killing server: %v\n", err)
				}
			}
			fmt.Println("Espalier Server stopped gracefully")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("listen", "l", ":8080", "Address to listen on")
	serveCmd.Flags().StringP("config", "c", "espalier.yaml", "Path to the config file")
}
