package db_client

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func Open(host, port, user, pass, database string) (*sql.DB, error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
		user, pass, host, port, database,
	)

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(50)
	db.SetConnMaxIdleTime(time.Minute)
	return db, db.Ping()
}

// EnsureSchema creates the tables the relay needs if they are missing.
// Safe to run on every boot.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	const usersQ = `
	CREATE TABLE IF NOT EXISTS users (
		username         TEXT PRIMARY KEY,
		email            TEXT UNIQUE NOT NULL,
		password_hash    TEXT NOT NULL,
		avatar           TEXT NOT NULL DEFAULT '',
		bio              TEXT NOT NULL DEFAULT '',
		theme_preference TEXT NOT NULL DEFAULT 'light',
		online           BOOLEAN NOT NULL DEFAULT false,
		last_seen        TIMESTAMPTZ NOT NULL DEFAULT now(),
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
	)`
	if _, err := db.ExecContext(ctx, usersQ); err != nil {
		return err
	}

	const roomsQ = `
	CREATE TABLE IF NOT EXISTS chat_rooms (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		created_by TEXT NOT NULL REFERENCES users(username),
		is_private BOOLEAN NOT NULL DEFAULT false,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`
	_, err := db.ExecContext(ctx, roomsQ)
	return err
}
