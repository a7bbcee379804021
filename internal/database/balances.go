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
	"fmt"

	"vertex-bank-go/internal/models"
	"vertex-bank-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ReconcileAccountBalance verifies that the stored balance matches the
// replayed transaction history and that the history forms an unbroken chain.
func (s *Service) ReconcileAccountBalance(ctx context.Context, accountId string) error {
	zap.L().Info("Reconciling balance", zap.String("account_id", accountId))

	var account *models.Account
	var history []models.Transaction
	err := s.RunAtomic(ctx, func(q store.Queries) error {
		var err error
		account, err = q.GetAccountById(ctx, accountId)
		if err != nil {
			return err
		}
		history, err = q.ListAllTransactions(ctx, accountId)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to load account history: %w", err)
	}

	return checkHistory(account, history)
}

func checkHistory(account *models.Account, history []models.Transaction) error {
	calculated := decimal.Zero
	for i, tx := range history {
		if !tx.BalanceBefore.Equal(calculated) {
			zap.L().Error("Transaction chain broken",
				zap.String("account_id", account.Id),
				zap.String("transaction_id", tx.Id),
				zap.Int("position", i),
				zap.String("expected_before", calculated.StringFixed(2)),
				zap.String("recorded_before", tx.BalanceBefore.StringFixed(2)))
			return fmt.Errorf("%w: transaction %s starts at %s, expected %s",
				store.ErrBalanceMismatch, tx.Id, tx.BalanceBefore.StringFixed(2), calculated.StringFixed(2))
		}

		signed, err := signedAmount(tx)
		if err != nil {
			zap.L().Error("Transaction amount disagrees with balance movement",
				zap.String("account_id", account.Id),
				zap.String("transaction_id", tx.Id),
				zap.Int("position", i),
				zap.String("type", string(tx.TransactionType)),
				zap.String("amount", tx.Amount.StringFixed(2)),
				zap.String("delta", tx.Delta().StringFixed(2)),
				zap.Error(err))
			return fmt.Errorf("%w: transaction %s: %v", store.ErrBalanceMismatch, tx.Id, err)
		}
		calculated = calculated.Add(signed)
	}

	// Check if balances match (exact decimal comparison)
	if !account.Balance.Equal(calculated) {
		zap.L().Error("Balance reconciliation failed",
			zap.String("account_id", account.Id),
			zap.String("current_balance", account.Balance.StringFixed(2)),
			zap.String("calculated_balance", calculated.StringFixed(2)),
			zap.String("difference", account.Balance.Sub(calculated).StringFixed(2)))
		return fmt.Errorf("%w: current=%s, calculated=%s",
			store.ErrBalanceMismatch, account.Balance.StringFixed(2), calculated.StringFixed(2))
	}

	zap.L().Info("Balance reconciliation successful",
		zap.String("account_id", account.Id),
		zap.String("balance", account.Balance.StringFixed(2)),
		zap.Int("transactions", len(history)))
	return nil
}

// signedAmount derives the entry's effect from its type and amount and checks
// that the recorded balance movement agrees with it.
func signedAmount(tx models.Transaction) (decimal.Decimal, error) {
	if !tx.Amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("amount %s is not positive", tx.Amount.StringFixed(2))
	}

	delta := tx.Delta()
	direction := tx.Direction()
	if direction == 0 {
		if tx.TransactionType != models.TransactionTypeTransfer {
			return decimal.Zero, fmt.Errorf("unknown transaction type %q", tx.TransactionType)
		}
		// Unannotated transfer rows only carry their direction in the balance movement.
		direction = delta.Sign()
	}

	signed := tx.Amount
	if direction < 0 {
		signed = signed.Neg()
	}
	if !delta.Equal(signed) {
		return decimal.Zero, fmt.Errorf("%s of %s moved the balance by %s",
			tx.TransactionType, tx.Amount.StringFixed(2), delta.StringFixed(2))
	}
	return signed, nil
}
