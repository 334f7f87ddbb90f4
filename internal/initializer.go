// Package internal sets up the server: configuration, database, migrations,
// managers, background cleanup and the HTTP listener.
package internal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
	log "github.com/sirupsen/logrus"

	"hoax-server/internal/managers"
	"hoax-server/internal/migrations"
	"hoax-server/internal/routing"
)

const envFile = ".env"

func Init() {
	if err := godotenv.Load(envFile); err != nil {
		log.Info("No .env file found, using environment variables from system")
	} else {
		log.Info("Loaded environment variables from .env file")
	}

	setLogLevel(os.Getenv("LOG_LEVEL"))

	// Connect to database
	pool := initializeDatabase()
	defer pool.Close()

	if err := runMigrations(); err != nil {
		log.Fatal("Error running migrations: ", err)
	}

	// Initialize managers
	databaseMgr := managers.NewDatabaseManager(pool)
	tokenMgr := managers.NewTokenManager(databaseMgr)
	mailMgr := managers.NewMailManager()

	imageMgr, err := managers.NewImageManager(context.Background())
	if err != nil {
		log.Fatal("Error initializing image manager: ", err)
	}

	// Start the background token sweep, stopped again on shutdown
	tokenCleanup := managers.NewTokenCleanup(tokenMgr, managers.CleanupInterval)
	tokenCleanup.Start()

	// Initialize router
	router := routing.InitRouter(databaseMgr, tokenMgr, mailMgr, imageMgr)
	log.Info("Initialized router")

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		log.Info("Starting server on port ", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Error starting server: ", err)
		}
	}()

	// Handle interrupt signal gracefully
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("Server shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down server: ", err)
	}

	tokenCleanup.Stop()
	log.Info("Server stopped")
}

func initializeDatabase() *pgxpool.Pool {
	log.Info("Initializing database")

	url := databaseURL()

	config, err := pgxpool.ParseConfig(url)
	if err != nil {
		log.Fatal("error configuring database: ", err)
	}

	config.MinConns = 5
	config.MaxConns = 30
	config.MaxConnIdleTime = time.Minute * 2
	config.HealthCheckPeriod = time.Minute * 1

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		log.Fatal("error connecting to database: ", err)
	}
	log.Info("Connected to database")
	return pool
}

// runMigrations applies the embedded schema migrations through goose. It uses
// a short-lived database/sql connection, the runtime traffic stays on pgxpool.
func runMigrations() error {
	db, err := sql.Open("pgx", databaseURL())
	if err != nil {
		return err
	}
	defer db.Close()

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	return goose.Up(db, ".")
}

func databaseURL() string {
	var (
		dbHost     = os.Getenv("DB_HOST")
		dbPort     = os.Getenv("DB_PORT")
		dbUser     = os.Getenv("DB_USER")
		dbPassword = os.Getenv("DB_PASS")
		dbName     = os.Getenv("DB_NAME")
	)

	if dbHost == "" || dbPort == "" || dbUser == "" || dbPassword == "" || dbName == "" {
		log.Fatal("database environment variables not set")
	}

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable", dbHost, dbPort, dbUser, dbPassword, dbName)
}

func setLogLevel(logLevel string) {
	switch logLevel {
	case "DEBUG":
		log.SetLevel(log.DebugLevel)
	case "INFO":
		log.SetLevel(log.InfoLevel)
	case "WARN":
		log.SetLevel(log.WarnLevel)
	case "ERROR":
		log.SetLevel(log.ErrorLevel)
	case "FATAL":
		log.SetLevel(log.FatalLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}

	log.SetOutput(os.Stdout)
}
