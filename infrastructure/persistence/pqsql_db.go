package persistence

import (
	"database/sql"
	"fmt"
	"time"

	"agent-hub/infrastructure/configuration"
	"agent-hub/infrastructure/logger"

	_ "github.com/lib/pq"
)

// NewPostgreSQLDB opens the primary Postgres connection using the loaded
// configuration and verifies it with a ping.
func NewPostgreSQLDB() (*sql.DB, error) {
	cfg := configuration.C.Database.Psql
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error opening PostgreSQL connection")
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Error pinging PostgreSQL")
		return nil, err
	}

	logger.GetLogger().WithFields(map[string]interface{}{
		"host": cfg.Host,
		"name": cfg.Name,
	}).Info("Connected to PostgreSQL")
	return db, nil
}
