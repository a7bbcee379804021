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

package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType identifies how a ledger entry affects its account
type TransactionType string

const (
	TransactionTypeDeposit  TransactionType = "deposit"
	TransactionTypeWithdraw TransactionType = "withdraw"
	TransactionTypeTransfer TransactionType = "transfer"
)

// Transfer rows are annotated with their direction and the counterparty number.
const (
	TransferOutPrefix = "Transfer to "
	TransferInPrefix  = "Transfer from "
)

func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeDeposit, TransactionTypeWithdraw, TransactionTypeTransfer:
		return true
	}
	return false
}

// User represents a registered identity. HashedPassword is owned by the auth provider.
type User struct {
	Id             string    `db:"id"`
	Email          string    `db:"email"`
	FullName       string    `db:"full_name"`
	HashedPassword string    `db:"hashed_password"`
	IsActive       bool      `db:"is_active"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// Account represents the single balance holder owned by a user (hot data)
type Account struct {
	Id        string          `db:"id"`
	Number    string          `db:"number"`
	Balance   decimal.Decimal `db:"balance"`
	UserId    string          `db:"user_id"`
	Version   int64           `db:"version"`
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt time.Time       `db:"updated_at"`
}

// Transaction represents an immutable ledger entry (cold data)
type Transaction struct {
	Id              string          `db:"id"`
	AccountId       string          `db:"account_id"`
	TransactionType TransactionType `db:"transaction_type"`
	Amount          decimal.Decimal `db:"amount"`
	BalanceBefore   decimal.Decimal `db:"balance_before"`
	BalanceAfter    decimal.Decimal `db:"balance_after"`
	Description     string          `db:"description"`
	CreatedAt       time.Time       `db:"created_at"`
}

// Delta returns the signed effect the entry had on its account balance.
func (t Transaction) Delta() decimal.Decimal {
	return t.BalanceAfter.Sub(t.BalanceBefore)
}

// Direction returns 1 for entries that credit the account and -1 for debits.
// It returns 0 for unknown types and for transfer rows without a direction annotation.
func (t Transaction) Direction() int {
	switch t.TransactionType {
	case TransactionTypeDeposit:
		return 1
	case TransactionTypeWithdraw:
		return -1
	case TransactionTypeTransfer:
		switch {
		case strings.HasPrefix(t.Description, TransferInPrefix):
			return 1
		case strings.HasPrefix(t.Description, TransferOutPrefix):
			return -1
		}
	}
	return 0
}
