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

	"vertex-bank-go/internal/models"
	"vertex-bank-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func annotate(prefix, number, description string) string {
	text := prefix + number
	if description != "" {
		text += ": " + description
	}
	return truncateDescription(text)
}

// Transfer moves funds from the caller's account to the account carrying
// targetNumber. Both balances and both ledger rows commit together. The
// returned Transaction is the sender's row.
func (e *Engine) Transfer(ctx context.Context, sourceUserId, targetNumber string, amount decimal.Decimal, description string) (receipt *models.Transaction, err error) {
	defer func(start time.Time) { e.observe(models.TransactionTypeTransfer, start, err) }(time.Now())

	source, err := e.directory.AccountForUser(ctx, sourceUserId)
	if err != nil {
		return nil, err
	}
	target, err := e.directory.AccountForNumber(ctx, targetNumber)
	if err != nil {
		return nil, err
	}

	if source.Id == target.Id {
		return nil, fmt.Errorf("%w: %s", ErrSelfTransfer, source.Number)
	}
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	if err := validateDescription(description); err != nil {
		return nil, err
	}

	err = e.store.RunAtomic(ctx, func(q store.Queries) error {
		locked, err := q.LockAccounts(ctx, source.Id, target.Id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("%w: %v", ErrAccountNotFound, err)
			}
			return err
		}
		from, to := locked[source.Id], locked[target.Id]

		if from.Balance.LessThan(amount) {
			return fmt.Errorf("%w: balance %s, requested %s",
				ErrInsufficientFunds, from.Balance.StringFixed(MoneyScale), amount.StringFixed(MoneyScale))
		}
		fromAfter := from.Balance.Sub(amount)
		toAfter := to.Balance.Add(amount)
		if toAfter.GreaterThan(MaxMoney) {
			return fmt.Errorf("%w: target balance would reach %s", ErrBalanceLimitExceeded, toAfter.StringFixed(MoneyScale))
		}

		if err := q.UpdateAccountBalance(ctx, store.UpdateBalanceParams{
			AccountId:       from.Id,
			Balance:         fromAfter,
			ExpectedVersion: from.Version,
		}); err != nil {
			return err
		}
		if err := q.UpdateAccountBalance(ctx, store.UpdateBalanceParams{
			AccountId:       to.Id,
			Balance:         toAfter,
			ExpectedVersion: to.Version,
		}); err != nil {
			return err
		}

		now := time.Now().UTC()
		debitId, err := newTransactionId()
		if err != nil {
			return err
		}
		receipt, err = q.InsertTransaction(ctx, store.InsertTransactionParams{
			Id:              debitId,
			AccountId:       from.Id,
			TransactionType: models.TransactionTypeTransfer,
			Amount:          amount,
			BalanceBefore:   from.Balance,
			BalanceAfter:    fromAfter,
			Description:     annotate(models.TransferOutPrefix, to.Number, description),
			CreatedAt:       now,
		})
		if err != nil {
			return err
		}

		creditId, err := newTransactionId()
		if err != nil {
			return err
		}
		_, err = q.InsertTransaction(ctx, store.InsertTransactionParams{
			Id:              creditId,
			AccountId:       to.Id,
			TransactionType: models.TransactionTypeTransfer,
			Amount:          amount,
			BalanceBefore:   to.Balance,
			BalanceAfter:    toAfter,
			Description:     annotate(models.TransferInPrefix, from.Number, description),
			CreatedAt:       now,
		})
		return err
	})
	if err != nil {
		if IsBusinessError(err) {
			zap.L().Info("Transfer rejected",
				zap.String("source_account", source.Number),
				zap.String("target_account", target.Number),
				zap.String("amount", amount.StringFixed(MoneyScale)),
				zap.Error(err))
			return nil, err
		}
		return nil, storeFailure("transfer", err)
	}

	zap.L().Info("Transfer posted",
		zap.String("transaction_id", receipt.Id),
		zap.String("source_account", source.Number),
		zap.String("target_account", target.Number),
		zap.String("amount", amount.StringFixed(MoneyScale)))
	return receipt, nil
}
