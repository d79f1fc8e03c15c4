package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"webhook-notify/internal/apikeys"
	"webhook-notify/internal/common/httpclient"
	"webhook-notify/internal/common/logging"
	"webhook-notify/internal/config"
	"webhook-notify/internal/handlers"
	"webhook-notify/internal/server"
	"webhook-notify/internal/storage/jsonfile"
	"webhook-notify/internal/webhooks"
)

func main() {
	_ = godotenv.Load()
	runtime.GOMAXPROCS(runtime.NumCPU())

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logging.InitGlobalLogger()
	defer logging.MustSync()

	keys := apikeys.NewStore(jsonfile.New(cfg.APIKeysFile))
	registry := webhooks.NewManager(jsonfile.New(cfg.WebhookConfigFile))
	dispatcher := webhooks.NewDispatcher(registry, httpclient.New(
		httpclient.WithTimeout(cfg.WebhookTimeout),
	))

	h := handlers.New(keys, registry, dispatcher, cfg)
	srv := server.New(h.NewRouter(), cfg.Port)

	logging.Info("Server starting",
		logging.String("port", cfg.Port),
		logging.Bool("require_auth", cfg.RequireAuth),
	)
	errCh := srv.Start()
	fmt.Printf("Server listening on port %s\n", cfg.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatalf("Server failed: %v", err)
	case <-quit:
	}

	logging.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	logging.Info("Server exited")
}
