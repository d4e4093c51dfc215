package main

import (
	"context"
	"database/sql"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/Paw-Connect/user-service/internal/api"
	"github.com/Paw-Connect/user-service/internal/config"
	"github.com/Paw-Connect/user-service/internal/events"
	"github.com/Paw-Connect/user-service/internal/jwt"
	"github.com/Paw-Connect/user-service/internal/repository"
	"github.com/Paw-Connect/user-service/internal/service"
	"github.com/Paw-Connect/user-service/internal/tracing"
	_ "github.com/Paw-Connect/user-service/migrations"
)

func main() {
	if err := godotenv.Load(".env.dev"); err != nil {
		log.Println("No .env.dev file found, reading from environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	api.SetupGlobalLogger("user-service", cfg.Environment)

	shutdownTracer, err := tracing.InitTracerProvider("user-service")
	if err != nil {
		log.Fatalf("Failed to initialize OpenTelemetry: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			slog.Error("Error shutting down tracer provider", "error", err)
		}
	}()

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		handleMigrations(cfg)
		return
	}

	db := connectDB(cfg)
	defer db.Close()

	go watchDB(db)

	var publisher events.EventPublisher = events.NoopPublisher{}
	if cfg.NatsURL != "" {
		publisher, err = events.NewNatsPublisher(cfg.NatsURL)
		if err != nil {
			slog.Warn("Failed to connect to NATS, events will be dropped", "error", err)
			publisher = events.NoopPublisher{}
		} else {
			slog.Info("Successfully connected to NATS")
		}
	}

	userRepo := repository.NewPostgresUserRepository(db, cfg.DBQueryTimeout)
	issuer := jwt.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTokenTTL)
	userService := service.NewUserService(userRepo, issuer, publisher)
	userHandler := api.NewUserHandler(userService)

	app := fiber.New()
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.AllowedOrigin}))
	app.Use(otelfiber.Middleware())
	app.Use(api.PrometheusMiddleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": "user-service"})
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	userRoutes := app.Group("/api/users")
	userRoutes.Post("/", userHandler.Register)
	userRoutes.Get("/profiles-for-matching", userHandler.GetProfilesForMatching)
	userRoutes.Post("/login", userHandler.Login)
	userRoutes.Patch("/:userId/skills", userHandler.UpdateSkills)
	userRoutes.Patch("/:userId/availability", userHandler.UpdateAvailability)
	userRoutes.Get("/:userId", userHandler.GetUserByID)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Not found."})
	})

	go func() {
		slog.Info("Listening user-service", "port", cfg.AppPort)
		if err := app.Listen(":" + cfg.AppPort); err != nil {
			log.Fatalf("Server stopped: %v", err)
		}
	}()

	// No drain on shutdown: accept the signal, log, and exit.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("Received termination signal, exiting", "signal", sig.String())
}

func connectDB(cfg *config.Config) *sqlx.DB {
	db, err := sqlx.Connect("pgx", cfg.DatabaseURL())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxIdleTime(cfg.DBConnMaxIdleTime)

	slog.Info("Successfully connected to the database")
	return db
}

// watchDB terminates the process when the database connection is lost;
// reconnection is an operator concern, not ours.
func watchDB(db *sqlx.DB) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := db.PingContext(ctx)
		cancel()

		if err != nil {
			log.Fatalf("Lost database connection: %v", err)
		}
	}
}

func handleMigrations(cfg *config.Config) {
	slog.Info("Running database migrations")

	db, err := sql.Open("pgx", cfg.DatabaseURL())
	if err != nil {
		log.Fatalf("failed to connect to database for migration: %v", err)
	}
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("failed to set goose dialect: %v", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		log.Fatalf("goose: failed to run migrations: %v", err)
	}

	slog.Info("Migrations applied successfully")
}
