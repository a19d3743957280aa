package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/oakandvine/concierge-widget/internal/config"
	"github.com/oakandvine/concierge-widget/internal/devstub"
	"github.com/oakandvine/concierge-widget/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	settings := config.Load()
	logger := logging.New(settings.LogLevel)

	apiKey := settings.APIKey
	if apiKey == "" {
		apiKey = "nc_dev_key"
	}

	stub := devstub.New(apiKey, logger, devstub.WithAllowedOrigins(settings.CORSAllowedOrigins))

	server := &http.Server{
		Addr:              ":" + settings.Port,
		Handler:           stub.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("devserver: listening", "port", settings.Port, "api_key", apiKey)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("devserver: server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("devserver: shutdown failed", "error", err)
	}
	logger.Info("devserver: stopped")
}
