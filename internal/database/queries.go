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

const (
	// User queries
	queryUserColumns = `id, email, full_name, hashed_password, is_active, created_at, updated_at`

	queryGetActiveUsers = `
		SELECT ` + queryUserColumns + `
		FROM users
		WHERE is_active = ?
		ORDER BY created_at`

	queryInsertUser = `
		INSERT INTO users (id, email, full_name, hashed_password, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	queryGetUserById = `
		SELECT ` + queryUserColumns + `
		FROM users
		WHERE id = ?`

	queryGetUserByEmail = `
		SELECT ` + queryUserColumns + `
		FROM users
		WHERE email = ?`

	// Account queries
	queryAccountColumns = `id, number, balance, user_id, version, created_at, updated_at`

	queryInsertAccount = `
		INSERT INTO accounts (id, number, balance, user_id, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, 1, ?, ?)`

	queryGetAccountById = `
		SELECT ` + queryAccountColumns + `
		FROM accounts
		WHERE id = ?`

	queryGetAccountByUserId = `
		SELECT ` + queryAccountColumns + `
		FROM accounts
		WHERE user_id = ?`

	queryGetAccountByNumber = `
		SELECT ` + queryAccountColumns + `
		FROM accounts
		WHERE number = ?`

	queryUpdateAccountBalance = `
		UPDATE accounts
		SET balance = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`

	// Transaction queries
	queryTransactionColumns = `id, account_id, transaction_type, amount, balance_before, balance_after, description, created_at`

	queryInsertTransaction = `
		INSERT INTO transactions (
			id, account_id, transaction_type, amount, balance_before, balance_after, description, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	queryGetTransactionHistory = `
		SELECT ` + queryTransactionColumns + `
		FROM transactions
		WHERE account_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`

	queryGetAllTransactions = `
		SELECT ` + queryTransactionColumns + `
		FROM transactions
		WHERE account_id = ?
		ORDER BY created_at, id`

	queryPing = `SELECT 1`
)

const sqliteSchema = `
	-- Create users table
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		full_name TEXT NOT NULL,
		hashed_password TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	-- Create accounts table (one per user). Money is kept as TEXT with two
	-- decimals so no float rounding ever touches a balance.
	CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		number TEXT NOT NULL UNIQUE,
		balance TEXT NOT NULL DEFAULT '0.00',
		user_id TEXT NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
		version INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	-- Transactions table (append-only audit trail)
	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
		transaction_type TEXT NOT NULL CHECK (transaction_type IN ('deposit', 'withdraw', 'transfer')),
		amount TEXT NOT NULL,
		balance_before TEXT NOT NULL,
		balance_after TEXT NOT NULL,
		description TEXT,
		created_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_users_active ON users(is_active);
	CREATE INDEX IF NOT EXISTS idx_transactions_account_created ON transactions(account_id, created_at);
	`

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email VARCHAR(255) NOT NULL UNIQUE,
		full_name VARCHAR(255) NOT NULL,
		hashed_password VARCHAR(255) NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		number VARCHAR(20) NOT NULL UNIQUE,
		balance NUMERIC(15,2) NOT NULL DEFAULT 0,
		user_id TEXT NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
		version BIGINT NOT NULL DEFAULT 1,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
		transaction_type VARCHAR(16) NOT NULL CHECK (transaction_type IN ('deposit', 'withdraw', 'transfer')),
		amount NUMERIC(15,2) NOT NULL CHECK (amount > 0),
		balance_before NUMERIC(15,2) NOT NULL,
		balance_after NUMERIC(15,2) NOT NULL,
		description VARCHAR(255),
		created_at TIMESTAMPTZ NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_users_active ON users(is_active);
	CREATE INDEX IF NOT EXISTS idx_transactions_account_created ON transactions(account_id, created_at DESC);
	`
