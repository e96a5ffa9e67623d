// Package database opens the MySQL handle the reservation store runs
// on.  The service leans on SELECT ... FOR UPDATE row locks, so every
// connection must land on the same server with consistent time
// handling; the DSN pins UTC and parses DATETIME columns into
// time.Time directly.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Pool sizing: reservation transactions are short (one row lock, two
// writes), so a modest pool bounds how many transactions can queue on
// the same show lock server-side.  Idle matches open so bursts do not
// churn connections.
const (
	maxOpenConns    = 25
	maxIdleConns    = 25
	connMaxLifetime = 30 * time.Minute
	pingTimeout     = 5 * time.Second
)

// Open connects to the reservation database and verifies the
// connection with a bounded ping before handing the pool to callers.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s@%s: %w", name, host, err)
	}
	return db, nil
}
