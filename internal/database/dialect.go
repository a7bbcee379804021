/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"vertex-bank-go/internal/models"
	"vertex-bank-go/internal/store"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// dialect captures the differences between the supported SQL backends.
type dialect struct {
	driver string
	schema string
	// lockClause is appended to single-row account reads inside an atomic unit.
	// SQLite has no row locks; its units begin with BEGIN IMMEDIATE instead.
	lockClause string
	numbered   bool
}

func newDialect(driver string) (*dialect, error) {
	switch driver {
	case DriverSQLite, "":
		return &dialect{driver: DriverSQLite, schema: sqliteSchema}, nil
	case DriverPostgres:
		return &dialect{driver: DriverPostgres, schema: postgresSchema, lockClause: " FOR UPDATE", numbered: true}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

func (d *dialect) dataSourceName(cfg models.DatabaseConfig) (string, error) {
	switch d.driver {
	case DriverPostgres:
		if cfg.URL == "" {
			return "", fmt.Errorf("database url cannot be empty for driver %s", d.driver)
		}
		return cfg.URL, nil
	default:
		if cfg.Path == "" {
			return "", fmt.Errorf("database path cannot be empty")
		}
		busy := cfg.BusyTimeout
		if busy <= 0 {
			busy = 5 * time.Second
		}
		return fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=1000&_foreign_keys=on&_txlock=immediate&_busy_timeout=%d",
			cfg.Path, busy.Milliseconds()), nil
	}
}

// rebind rewrites ? placeholders into $N for backends that need numbered parameters.
func (d *dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 16)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// classify maps driver-specific constraint violations onto store sentinels.
func (d *dialect) classify(err error) error {
	if err == nil {
		return nil
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		msg := sqliteErr.Error()
		switch {
		case strings.Contains(msg, "users.email"):
			return fmt.Errorf("%w: %v", store.ErrDuplicateEmail, err)
		case strings.Contains(msg, "accounts.number"):
			return fmt.Errorf("%w: %v", store.ErrDuplicateAccountNumber, err)
		}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		switch pqErr.Constraint {
		case "users_email_key":
			return fmt.Errorf("%w: %v", store.ErrDuplicateEmail, err)
		case "accounts_number_key":
			return fmt.Errorf("%w: %v", store.ErrDuplicateAccountNumber, err)
		}
	}

	return err
}

// isRetryable reports whether an atomic unit failed on a transient conflict
// and can be replayed from the start.
func (d *dialect) isRetryable(err error) bool {
	if errors.Is(err, store.ErrConcurrentModification) {
		return true
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// serialization_failure, deadlock_detected
		return pqErr.Code == "40001" || pqErr.Code == "40P01"
	}

	return false
}
