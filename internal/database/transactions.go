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
	"context"
	"database/sql"
	"fmt"

	"vertex-bank-go/internal/models"
	"vertex-bank-go/internal/store"

	"go.uber.org/zap"
)

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var tx models.Transaction
	var description sql.NullString
	err := row.Scan(&tx.Id, &tx.AccountId, &tx.TransactionType,
		&tx.Amount, &tx.BalanceBefore, &tx.BalanceAfter,
		&description, &tx.CreatedAt)
	if err != nil {
		return nil, err
	}
	tx.Description = description.String
	return &tx, nil
}

// InsertTransaction appends an immutable ledger entry
func (q *queries) InsertTransaction(ctx context.Context, params store.InsertTransactionParams) (*models.Transaction, error) {
	tx := &models.Transaction{
		Id:              params.Id,
		AccountId:       params.AccountId,
		TransactionType: params.TransactionType,
		Amount:          params.Amount,
		BalanceBefore:   params.BalanceBefore,
		BalanceAfter:    params.BalanceAfter,
		Description:     params.Description,
		CreatedAt:       params.CreatedAt,
	}

	_, err := q.exec(ctx, queryInsertTransaction,
		tx.Id, tx.AccountId, string(tx.TransactionType),
		tx.Amount.StringFixed(2), tx.BalanceBefore.StringFixed(2), tx.BalanceAfter.StringFixed(2),
		nullString(tx.Description), tx.CreatedAt)
	if err != nil {
		zap.L().Error("Failed to insert transaction",
			zap.String("account_id", params.AccountId),
			zap.String("type", string(params.TransactionType)),
			zap.Error(err))
		return nil, fmt.Errorf("failed to insert transaction: %w", err)
	}

	zap.L().Debug("Transaction recorded",
		zap.String("transaction_id", tx.Id),
		zap.String("account_id", tx.AccountId),
		zap.String("type", string(tx.TransactionType)),
		zap.String("old_balance", tx.BalanceBefore.StringFixed(2)),
		zap.String("new_balance", tx.BalanceAfter.StringFixed(2)))
	return tx, nil
}

// ListTransactions returns a page of the account's history, newest first
func (q *queries) ListTransactions(ctx context.Context, accountId string, offset, limit int) ([]models.Transaction, error) {
	zap.L().Debug("Getting transaction history",
		zap.String("account_id", accountId),
		zap.Int("limit", limit),
		zap.Int("offset", offset))

	return q.listTransactions(ctx, queryGetTransactionHistory, accountId, limit, offset)
}

// ListAllTransactions returns the account's full history, oldest first
func (q *queries) ListAllTransactions(ctx context.Context, accountId string) ([]models.Transaction, error) {
	return q.listTransactions(ctx, queryGetAllTransactions, accountId)
}

func (q *queries) listTransactions(ctx context.Context, query string, args ...any) ([]models.Transaction, error) {
	rows, err := q.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction history: %w", err)
	}
	defer closeRows(rows)

	transactions := []models.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, *tx)
	}

	// Check for errors during iteration
	if err := rows.Err(); err != nil {
		zap.L().Error("Error during transaction row iteration", zap.Error(err))
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}

	return transactions, nil
}
