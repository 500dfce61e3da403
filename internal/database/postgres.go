// Package database opens the postgres pool the repositories run on.
package database

import (
	"database/sql"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/Charbel-5/moondev-coding-challenge/internal/common"
)

type PostgresConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdle     time.Duration
	ConnMaxLifetime time.Duration
	// PingTimeout bounds how long NewPostgres waits for the database to
	// come up. Zero means 30 seconds.
	PingTimeout time.Duration
}

// NewPostgres opens the pool and waits for the database to answer a ping,
// retrying with backoff until PingTimeout elapses. The caller owns Close.
func NewPostgres(cfg PostgresConfig, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "open postgres pool", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdle)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingTimeout := cfg.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = 30 * time.Second
	}
	deadline := time.Now().Add(pingTimeout)
	backoff := 500 * time.Millisecond
	for {
		err := db.Ping()
		if err == nil {
			return db, nil
		}
		if time.Now().After(deadline) {
			db.Close()
			return nil, common.NewError(common.CodeUpstream, "postgres did not become ready", err)
		}
		logger.Warn("postgres not ready yet", "error", err)
		time.Sleep(backoff)
		if backoff < 5*time.Second {
			backoff *= 2
		}
	}
}
