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
	"time"

	"vertex-bank-go/internal/metrics"
	"vertex-bank-go/internal/models"
	"vertex-bank-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Engine applies balance-affecting operations. Every mutation runs as one
// atomic unit against the store: lock, check, update balances, append rows.
type Engine struct {
	store     store.LedgerStore
	directory *Directory
	metrics   metrics.Recorder
}

func NewEngine(s store.LedgerStore, directory *Directory, m metrics.Recorder) *Engine {
	if m == nil {
		m = metrics.NoOpRecorder{}
	}
	return &Engine{store: s, directory: directory, metrics: m}
}

func newTransactionId() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate transaction id: %w", err)
	}
	return id.String(), nil
}

func (e *Engine) observe(txType models.TransactionType, start time.Time, err error) {
	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeRejected
		if errors.Is(err, ErrStoreFailure) {
			outcome = metrics.OutcomeError
		}
	}
	e.metrics.RecordPosting(string(txType), outcome, time.Since(start))
}

// Post deposits into or withdraws from a single account.
func (e *Engine) Post(ctx context.Context, accountId string, txType models.TransactionType, amount decimal.Decimal, description string) (tx *models.Transaction, err error) {
	defer func(start time.Time) { e.observe(txType, start, err) }(time.Now())

	if txType != models.TransactionTypeDeposit && txType != models.TransactionTypeWithdraw {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTransactionType, txType)
	}
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	if err := validateDescription(description); err != nil {
		return nil, err
	}

	zap.L().Debug("Posting transaction",
		zap.String("account_id", accountId),
		zap.String("type", string(txType)),
		zap.String("amount", amount.StringFixed(MoneyScale)))

	err = e.store.RunAtomic(ctx, func(q store.Queries) error {
		locked, err := q.LockAccounts(ctx, accountId)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("%w: %s", ErrAccountNotFound, accountId)
			}
			return err
		}
		account := locked[accountId]

		var after decimal.Decimal
		switch txType {
		case models.TransactionTypeDeposit:
			after = account.Balance.Add(amount)
			if after.GreaterThan(MaxMoney) {
				return fmt.Errorf("%w: balance would reach %s", ErrBalanceLimitExceeded, after.StringFixed(MoneyScale))
			}
		case models.TransactionTypeWithdraw:
			if account.Balance.LessThan(amount) {
				return fmt.Errorf("%w: balance %s, requested %s",
					ErrInsufficientFunds, account.Balance.StringFixed(MoneyScale), amount.StringFixed(MoneyScale))
			}
			after = account.Balance.Sub(amount)
		}

		if err := q.UpdateAccountBalance(ctx, store.UpdateBalanceParams{
			AccountId:       account.Id,
			Balance:         after,
			ExpectedVersion: account.Version,
		}); err != nil {
			return err
		}

		id, err := newTransactionId()
		if err != nil {
			return err
		}
		tx, err = q.InsertTransaction(ctx, store.InsertTransactionParams{
			Id:              id,
			AccountId:       account.Id,
			TransactionType: txType,
			Amount:          amount,
			BalanceBefore:   account.Balance,
			BalanceAfter:    after,
			Description:     description,
			CreatedAt:       time.Now().UTC(),
		})
		return err
	})
	if err != nil {
		if IsBusinessError(err) {
			zap.L().Info("Posting rejected",
				zap.String("account_id", accountId),
				zap.String("type", string(txType)),
				zap.String("amount", amount.StringFixed(MoneyScale)),
				zap.Error(err))
			return nil, err
		}
		return nil, storeFailure("post", err)
	}

	zap.L().Info("Transaction posted",
		zap.String("transaction_id", tx.Id),
		zap.String("account_id", accountId),
		zap.String("type", string(txType)),
		zap.String("amount", amount.StringFixed(MoneyScale)),
		zap.String("new_balance", tx.BalanceAfter.StringFixed(MoneyScale)))
	return tx, nil
}

// PostForUser resolves the caller's account before posting.
func (e *Engine) PostForUser(ctx context.Context, userId string, txType models.TransactionType, amount decimal.Decimal, description string) (*models.Transaction, error) {
	account, err := e.directory.AccountForUser(ctx, userId)
	if err != nil {
		return nil, err
	}
	return e.Post(ctx, account.Id, txType, amount, description)
}
