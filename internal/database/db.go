package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Open connects to MySQL and verifies the connection.  DATETIME columns
// are parsed into time.Time in the given zone so that business-hours
// and cutoff arithmetic never mixes zones.
func Open(user, pass, host, port, name, zone string) (*sql.DB, error) {
	db, err := sql.Open("mysql", buildDSN(user, pass, host, port, name, zone))
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// buildDSN assembles the driver DSN.
//   - parseTime=true: DATETIME -> time.Time
//   - loc: pins the session zone
//   - clientFoundRows=true: RowsAffected reports matched rows, not
//     changed rows.  Guarded status updates and no-op resubmits of
//     identical values depend on a matched row not reading as a miss.
func buildDSN(user, pass, host, port, name, zone string) string {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	return fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&clientFoundRows=true&loc=%s",
		auth, host, port, name, url.QueryEscape(zone))
}
