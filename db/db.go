// Package db opens the Postgres connection and creates the schema on boot so
// a fresh database works without a separate migration step.
package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

func Open(dsn string) (*sql.DB, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	conn.SetMaxOpenConns(20)
	conn.SetMaxIdleConns(10)

	if err := createTables(conn); err != nil {
		return nil, err
	}
	return conn, nil
}

func createTables(conn *sql.DB) error {
	createUsersTable := `
	CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		verify_token TEXT NOT NULL DEFAULT '',
		verified BOOLEAN NOT NULL DEFAULT FALSE,
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		photo_url TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		organization TEXT NOT NULL DEFAULT '',
		volunteer_hours DOUBLE PRECISION NOT NULL DEFAULT 0,
		points INTEGER NOT NULL DEFAULT 0,
		points_month TEXT NOT NULL DEFAULT '',
		login_streak INTEGER NOT NULL DEFAULT 0,
		last_login_date TEXT NOT NULL DEFAULT ''
	);`
	if _, err := conn.Exec(createUsersTable); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}

	// one row per user per calendar month
	createCompletedTable := `
	CREATE TABLE IF NOT EXISTS completed_events (
		user_id UUID NOT NULL REFERENCES users(id),
		month_key TEXT NOT NULL,
		count INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (user_id, month_key)
	);`
	if _, err := conn.Exec(createCompletedTable); err != nil {
		return fmt.Errorf("create completed_events table: %w", err)
	}
	return nil
}
