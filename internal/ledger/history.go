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

package ledger

import (
	"context"
	"errors"
	"fmt"

	"vertex-bank-go/internal/models"
	"vertex-bank-go/internal/store"

	"go.uber.org/zap"
)

// ListForUser returns a page of the caller's ledger rows, newest first.
func (e *Engine) ListForUser(ctx context.Context, userId string, offset, limit int) ([]models.Transaction, error) {
	account, err := e.directory.AccountForUser(ctx, userId)
	if err != nil {
		return nil, err
	}

	offset, limit = NormalizePage(offset, limit)
	transactions, err := e.store.ListTransactions(ctx, account.Id, offset, limit)
	if err != nil {
		return nil, storeFailure("list_transactions", err)
	}
	return transactions, nil
}

// Reconcile checks the caller's balance against its ledger history. The
// account is returned alongside ErrReconciliationFailed so callers can report it.
func (e *Engine) Reconcile(ctx context.Context, userId string) (*models.Account, error) {
	account, err := e.directory.AccountForUser(ctx, userId)
	if err != nil {
		return nil, err
	}

	err = e.store.ReconcileAccountBalance(ctx, account.Id)
	if err != nil {
		if errors.Is(err, store.ErrBalanceMismatch) {
			zap.L().Warn("Account failed reconciliation",
				zap.String("account_id", account.Id),
				zap.Error(err))
			return account, fmt.Errorf("%w: %w", ErrReconciliationFailed, err)
		}
		return nil, storeFailure("reconcile", err)
	}

	// Report the balance the check ran against
	current, err := e.store.GetAccountById(ctx, account.Id)
	if err != nil {
		return nil, settle("reconcile", err)
	}
	return current, nil
}
