package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/agentdash/agentdash/internal/api"
	"github.com/agentdash/agentdash/internal/auth"
	"github.com/agentdash/agentdash/internal/metrics"
	"github.com/agentdash/agentdash/internal/models"
	"github.com/agentdash/agentdash/internal/middleware"
	"github.com/agentdash/agentdash/internal/service"
	"github.com/agentdash/agentdash/internal/storage/sqlite"
	"github.com/agentdash/agentdash/pkg/logging"
)

const tokenDuration = 24 * time.Hour

// noUserStorage backs the authenticator when the store is unavailable.
// Accounts cannot be created or verified, so every request stays
// anonymous and is served from the fallback-bound collections.
type noUserStorage struct{}

var errStoreUnavailable = errors.New("user store unavailable")

func (noUserStorage) CreateUser(ctx context.Context, user *models.User) error {
	return errStoreUnavailable
}

func (noUserStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, errStoreUnavailable
}

func (noUserStorage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return nil, errStoreUnavailable
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	logging.Setup()

	dbPath := getEnv("DB_PATH", "./data/agentdash.db")
	port := getEnv("PORT", "8080")
	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		jwtSecret = "dev-secret-change-me"
		slog.Warn("JWT_SECRET not set, using insecure development secret")
	}

	// A broken store is not fatal: collections bind to the in-memory
	// fallback instead, and /api/status reports it.
	store, err := sqlite.New(dbPath)
	if err != nil {
		slog.Warn("storage unavailable, serving from local fallback", "database", dbPath, "error", err)
		store = nil
	} else {
		defer store.Close()
		slog.Info("storage initialized", "database", dbPath)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	met := metrics.New(registry)

	jwtManager := auth.NewJWTManager(jwtSecret, tokenDuration)
	var authService *service.AuthService
	if store != nil {
		authService = service.NewAuthService(auth.NewPasswordAuthenticator(store), jwtManager, slog.Default())
	} else {
		authService = service.NewAuthService(auth.NewPasswordAuthenticator(noUserStorage{}), jwtManager, slog.Default())
	}

	sessions := service.NewSessions(store, service.DefaultBudgets, slog.Default(), met)
	defer sessions.Close()

	mux := http.NewServeMux()
	api.New(authService, sessions, slog.Default()).Routes(mux)
	mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := middleware.Logging(middleware.CORS(middleware.OptionalAuth(jwtManager, mux)))

	// h2c lets clients use HTTP/2 without TLS behind a terminating proxy.
	h2cHandler := h2c.NewHandler(handler, &http2.Server{})

	addr := fmt.Sprintf(":%s", port)
	slog.Info("server starting", "address", addr)
	if err := http.ListenAndServe(addr, h2cHandler); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
