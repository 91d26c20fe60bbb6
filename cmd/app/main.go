package main

import (
	"calbook-service/internal/config"
	appointmentCancel "calbook-service/internal/http-server/handlers/appointments/cancel"
	appointmentCreate "calbook-service/internal/http-server/handlers/appointments/create"
	appointmentGet "calbook-service/internal/http-server/handlers/appointments/get"
	appointmentUpdate "calbook-service/internal/http-server/handlers/appointments/update"
	availabilityGet "calbook-service/internal/http-server/handlers/availability/get"
	overrideDelete "calbook-service/internal/http-server/handlers/overrides/delete"
	overrideGet "calbook-service/internal/http-server/handlers/overrides/get"
	overrideUpsert "calbook-service/internal/http-server/handlers/overrides/upsert"
	ruleCreate "calbook-service/internal/http-server/handlers/rules/create"
	ruleDelete "calbook-service/internal/http-server/handlers/rules/delete"
	ruleGet "calbook-service/internal/http-server/handlers/rules/get"
	ruleUpdate "calbook-service/internal/http-server/handlers/rules/update"
	settingsGet "calbook-service/internal/http-server/handlers/settings/get"
	settingsUpdate "calbook-service/internal/http-server/handlers/settings/update"
	"calbook-service/internal/repository"
	svc "calbook-service/internal/service"
	"calbook-service/internal/storage"
	"calbook-service/internal/storage/memory"
	pgstorage "calbook-service/internal/storage/postgres"
	redisstorage "calbook-service/internal/storage/redis"
	slogpretty "calbook-service/pkg/handlers/slogpretty"
	"calbook-service/pkg/middleware/mwLogger"
	"calbook-service/pkg/sl"
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Content-Type", "application/json; charset=utf-8")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {

	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("Starting API", slog.String("env", cfg.Env), slog.String("storage", cfg.StorageDriver))
	log.Debug("Debug messages are enabled")

	store, err := openStorage(cfg)
	if err != nil {
		log.Error("Failed to init storage", sl.Err(err))
		os.Exit(1)
	}

	repo := repository.New(store)
	service := svc.NewService(repo)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(mwLogger.New(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)
	router.Use(CORS)

	router.Route("/providers/{providerID}", func(r chi.Router) {
		// Settings
		r.Get("/settings", settingsGet.New(log, service))
		r.Patch("/settings", settingsUpdate.New(log, service))

		// Monthly Rules
		r.Get("/rules", ruleGet.New(log, service))
		r.Post("/rules", ruleCreate.New(log, service))
		r.Get("/rules/{dayOfMonth}", ruleGet.New(log, service))
		r.Patch("/rules/{dayOfMonth}", ruleUpdate.New(log, service))
		r.Delete("/rules/{dayOfMonth}", ruleDelete.New(log, service))

		// Date Overrides
		r.Get("/overrides/{date}", overrideGet.New(log, service))
		r.Put("/overrides/{date}", overrideUpsert.New(log, service))
		r.Delete("/overrides/{date}", overrideDelete.New(log, service))

		// Availability
		r.Get("/availability", availabilityGet.New(log, service))

		// Appointments
		r.Post("/appointments", appointmentCreate.New(log, service))
		r.Get("/appointments/{date}/{time}", appointmentGet.New(log, service))
		r.Patch("/appointments/{date}/{time}", appointmentUpdate.New(log, service))
		r.Delete("/appointments/{date}/{time}", appointmentCancel.New(log, service))
	})

	serv := &http.Server{
		Addr:         cfg.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	serverErrCh := make(chan error, 1)

	go func() {
		log.Info("Starting HTTP server", slog.String("addr", cfg.Address))
		if err := serv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		} else {
			serverErrCh <- nil
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Received shutdown signal", slog.String("signal", sig.String()))
	case err := <-serverErrCh:
		if err != nil {
			log.Error("HTTP server stopped unexpectedly", sl.Err(err))
		} else {
			log.Info("HTTP server stopped gracefully")
		}
	}

	shutdownTimeout := cfg.HTTPServer.ShutdownTimeout

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info("Shutting down HTTP server", slog.String("timeout", shutdownTimeout.String()))

	if err := serv.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", sl.Err(err))
	} else {
		log.Info("Server shutdown complete")
	}

	if err := store.Close(); err != nil {
		log.Error("Failed to close storage", sl.Err(err))
	} else {
		log.Info("Storage closed")
	}

	log.Info("Shutdown finished, server stopped")

}

func openStorage(cfg *config.Config) (storage.Store, error) {
	switch cfg.StorageDriver {
	case "postgres":
		return pgstorage.New(cfg.StoragePath)
	case "memory":
		return memory.New(), nil
	default:
		return redisstorage.New(cfg.RedisAddr)
	}
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger
	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}
