package config

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

var (
	db *gorm.DB
)

func GetDB() *gorm.DB {
	return db
}

func init() {
	// Load env from .env
	godotenv.Load()
}

// DatabaseDSN builds the MySQL DSN from DB_* variables. A DB_HOST of the form
// "/cloudsql/<CONNECTION_NAME>" connects through the Cloud SQL unix socket.
func DatabaseDSN() string {
	cfg := mysqlDriver.NewConfig()
	cfg.User = os.Getenv("DB_USER")
	cfg.Passwd = os.Getenv("DB_PASSWORD")
	cfg.DBName = os.Getenv("DB_NAME")
	cfg.ParseTime = true

	dbHost := envString("DB_HOST", "127.0.0.1")
	if strings.HasPrefix(dbHost, "/cloudsql/") {
		cfg.Net = "unix"
		cfg.Addr = dbHost
	} else {
		cfg.Net = "tcp"
		cfg.Addr = fmt.Sprintf("%s:%s", dbHost, envString("DB_PORT", "3306"))
	}
	return cfg.FormatDSN()
}

// ConnectDatabase opens the target database and sets the global DB, retrying
// with capped exponential backoff up to maxAttempts times.
func ConnectDatabase(ctx context.Context, maxAttempts int) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	dsn := DatabaseDSN()

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		conn, err := gorm.Open(mysql.Open(dsn), initConfig())
		if err == nil {
			if sqlDB, derr := conn.DB(); derr == nil && sqlDB != nil {
				sqlDB.SetMaxOpenConns(intFromEnv("DB_MAX_OPEN_CONNS", 5))
				sqlDB.SetMaxIdleConns(intFromEnv("DB_MAX_IDLE_CONNS", 2))
				sqlDB.SetConnMaxLifetime(time.Duration(intFromEnv("DB_CONN_MAX_LIFETIME_SECONDS", 300)) * time.Second)
			}
			if pluginErr := conn.Use(otelgorm.NewPlugin()); pluginErr != nil {
				log.Printf("db connected but failed to install otelgorm plugin: %v", pluginErr)
			}
			db = conn
			return nil
		}
		lastErr = err
		if attempt == maxAttempts {
			break
		}

		sleep := time.Second * time.Duration(1<<min(attempt, 5))
		if sleep > 30*time.Second {
			sleep = 30 * time.Second
		}
		log.Printf("failed to connect database (attempt=%d): %v; retrying in %s", attempt, err, sleep)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}
	}
	return fmt.Errorf("connect database after %d attempts: %w", maxAttempts, lastErr)
}

// CloseDatabase releases the pool behind the global DB, if any.
func CloseDatabase() {
	if db == nil {
		return
	}
	if sqlDB, err := db.DB(); err == nil && sqlDB != nil {
		_ = sqlDB.Close()
	}
}

func initConfig() *gorm.Config {
	return &gorm.Config{
		Logger:         initLog(),
		NamingStrategy: schema.NamingStrategy{SingularTable: false},
	}
}

func initLog() logger.Interface {
	level := logger.Error
	if envBool("DB_LOG_SQL", false) {
		level = logger.Info
	}
	return logger.New(
		log.New(os.Stderr, "\r\n", log.LstdFlags),
		logger.Config{
			Colorful:                  false,
			LogLevel:                  level,
			SlowThreshold:             time.Second,
			IgnoreRecordNotFoundError: true,
		},
	)
}
