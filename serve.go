package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"scoredAPI/handlers"
	"scoredAPI/internal/logger"
	"scoredAPI/internal/metrics"
)

func runServe(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(memoryMode); err != nil {
		return err
	}

	a, err := newApp(cmd.Context(), memoryMode)
	if err != nil {
		return err
	}
	defer a.Close()

	metrics.Register(prometheus.DefaultRegisterer)

	r, err := handlers.NewRouter(handlers.RouterDeps{
		UserService:         a.users,
		FriendService:       a.friends,
		ScoreService:        a.scores,
		NotificationService: a.notifications,
		Verifier:            newVerifier(),
		DB:                  a.backend,
		WebhookSecret:       cfg.ClerkWebhookSecret,
		MetricsUser:         cfg.MetricsUser,
		MetricsPass:         cfg.MetricsPass,
		RateLimitRPS:        cfg.RateLimitRPS,
		RateLimitBurst:      cfg.RateLimitBurst,
	})
	if err != nil {
		return err
	}
	if cfg.ClerkWebhookSecret == "" {
		logger.Warn("CLERK_WEBHOOK_SECRET not set, webhook signatures are not checked")
	}

	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins(cfg.AllowedOrigins),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Request-ID"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length", "Content-Disposition", "X-Request-ID"}),
		gorilllaHandlers.AllowCredentials(),
	)

	server := http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "port", cfg.Port, "env", cfg.AppEnv, "memory", memoryMode)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return err
	case sig := <-sigChan:
		logger.Info("Got signal", "signal", sig.String())
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Server shutdown complete")
	return nil
}
