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
	"errors"
	"fmt"
	"slices"
	"time"

	"vertex-bank-go/internal/models"
	"vertex-bank-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func scanAccount(row rowScanner) (*models.Account, error) {
	var account models.Account
	err := row.Scan(&account.Id, &account.Number, &account.Balance, &account.UserId,
		&account.Version, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (q *queries) getAccount(ctx context.Context, query, key string) (*models.Account, error) {
	account, err := scanAccount(q.queryRow(ctx, query, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: account %s", store.ErrNotFound, key)
		}
		zap.L().Error("Failed to query account", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("unable to query account: %w", err)
	}
	return account, nil
}

func (q *queries) GetAccountById(ctx context.Context, accountId string) (*models.Account, error) {
	return q.getAccount(ctx, queryGetAccountById, accountId)
}

func (q *queries) GetAccountByUserId(ctx context.Context, userId string) (*models.Account, error) {
	return q.getAccount(ctx, queryGetAccountByUserId, userId)
}

func (q *queries) GetAccountByNumber(ctx context.Context, number string) (*models.Account, error) {
	return q.getAccount(ctx, queryGetAccountByNumber, number)
}

func (q *queries) CreateAccount(ctx context.Context, params store.CreateAccountParams) (*models.Account, error) {
	account := &models.Account{
		Id:        params.Id,
		Number:    params.Number,
		Balance:   decimal.Zero,
		UserId:    params.UserId,
		Version:   1,
		CreatedAt: params.CreatedAt,
		UpdatedAt: params.CreatedAt,
	}

	_, err := q.exec(ctx, queryInsertAccount,
		account.Id, account.Number, account.Balance.StringFixed(2), account.UserId, account.CreatedAt, account.UpdatedAt)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateAccountNumber) {
			return nil, err
		}
		zap.L().Error("Failed to insert account", zap.String("user_id", params.UserId), zap.Error(err))
		return nil, fmt.Errorf("unable to insert account: %w", err)
	}

	zap.L().Info("Account created",
		zap.String("account_id", account.Id),
		zap.String("number", account.Number),
		zap.String("user_id", account.UserId))
	return account, nil
}

// LockAccounts reads every requested account for update. Ids are locked in
// ascending order so two units touching the same pair never deadlock.
func (q *queries) LockAccounts(ctx context.Context, accountIds ...string) (map[string]*models.Account, error) {
	ids := slices.Clone(accountIds)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	query := queryGetAccountById
	if q.inTx {
		query += q.dialect.lockClause
	}

	locked := make(map[string]*models.Account, len(ids))
	for _, id := range ids {
		account, err := q.getAccount(ctx, query, id)
		if err != nil {
			return nil, err
		}
		locked[id] = account
	}
	return locked, nil
}

// UpdateAccountBalance writes a new balance if the row still carries the
// version the caller read. A stale version yields ErrConcurrentModification.
func (q *queries) UpdateAccountBalance(ctx context.Context, params store.UpdateBalanceParams) error {
	result, err := q.exec(ctx, queryUpdateAccountBalance,
		params.Balance.StringFixed(2), time.Now().UTC(), params.AccountId, params.ExpectedVersion)
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("balance update failed for account %s - %w", params.AccountId, store.ErrConcurrentModification)
	}
	return nil
}
