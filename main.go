package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"scoredAPI/internal/auth"
	"scoredAPI/internal/config"
	"scoredAPI/internal/logger"
	"scoredAPI/internal/migrations"
	"scoredAPI/internal/notification"
	"scoredAPI/internal/store"
	"scoredAPI/services"
)

var (
	cfg *config.Config

	memoryMode bool
	seedUsers  int
	seedDays   int

	rootCmd = &cobra.Command{
		Use:           "scored",
		Short:         "Daily mood scores shared between friends",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.LoadConfig()
			if err != nil {
				return err
			}
			logger.Init(cfg.LogLevel, cfg.AppEnv)
			return nil
		},
		RunE: runServe,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		RunE:  runServe,
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE:  runMigrate,
	}

	seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Fill the database with demo users, friendships and scores",
		RunE:  runSeed,
	}
)

func init() {
	rootCmd.Flags().BoolVar(&memoryMode, "memory", false, "keep all data in memory instead of Postgres")
	serveCmd.Flags().BoolVar(&memoryMode, "memory", false, "keep all data in memory instead of Postgres")

	seedCmd.Flags().IntVar(&seedUsers, "users", 8, "number of demo users")
	seedCmd.Flags().IntVar(&seedDays, "days", 30, "days of score history per user")

	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

func main() {
	defer logger.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		logger.Sync()
		os.Exit(1)
	}
}

// backend is everything the services need from a store.
type backend interface {
	services.UserStore
	services.FriendStore
	services.ScoreStore
	services.DeviceStore
	Ping(ctx context.Context) error
}

type app struct {
	backend       backend
	pool          *pgxpool.Pool
	users         *services.UserService
	friends       *services.FriendService
	scores        *services.ScoreService
	notifications *services.NotificationService
}

// newApp opens the store and builds the service graph.
func newApp(ctx context.Context, memory bool) (*app, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	a := &app{}
	if memory {
		logger.Warn("Running with the in-memory store; data is lost on exit")
		a.backend = store.NewMemory()
	} else {
		pool, err := openPool(ctx)
		if err != nil {
			return nil, err
		}
		if cfg.AutoMigrate {
			if err := migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, err
			}
		}
		a.pool = pool
		a.backend = store.NewPostgres(pool)
	}

	a.notifications = services.NewNotificationService(a.backend)
	fcmService, err := notification.NewFCMService(ctx, cfg.FCMServiceAccountJSON, cfg.FCMCredentialsFile)
	if err != nil {
		logger.Warn("Push notifications disabled", "error", err)
	} else {
		a.notifications.SetPushProvider(fcmService)
		logger.Info("FCM push provider initialized")
	}

	a.users = services.NewUserService(a.backend)
	a.friends = services.NewFriendService(a.backend, a.backend, a.notifications)
	a.scores = services.NewScoreService(a.backend, a.friends, a.backend, loc)
	return a, nil
}

func (a *app) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
}

func openPool(ctx context.Context) (*pgxpool.Pool, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	poolConfig.MaxConns = cfg.DBMaxConns
	poolConfig.MinConns = cfg.DBMinConns
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Connected to database", "max_conns", poolConfig.MaxConns)
	return pool, nil
}

func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	if err := migrations.Apply(ctx, db); err != nil {
		return err
	}
	logger.Info("Database migrations applied")
	return nil
}

// newVerifier prefers Clerk. The HMAC verifier only exists for local work.
func newVerifier() auth.Verifier {
	if cfg.ClerkSecretKey != "" {
		return auth.NewClerkVerifier(cfg.ClerkSecretKey)
	}
	logger.Warn("CLERK_SECRET_KEY not set, accepting locally signed development tokens")
	return auth.NewHMACVerifier(cfg.DevJWTSecret)
}
