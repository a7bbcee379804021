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
	"time"

	"github.com/shopspring/decimal"
)

// UserPublic is the user representation returned to API callers
type UserPublic struct {
	Id       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	IsActive bool   `json:"is_active"`
}

// AccountPublic is the account representation returned to API callers
type AccountPublic struct {
	Id      string `json:"id"`
	Number  string `json:"number"`
	Balance string `json:"balance"`
}

// TransactionPublic is a ledger entry as returned to API callers
type TransactionPublic struct {
	Id              string          `json:"id"`
	AccountId       string          `json:"account_id"`
	Amount          string          `json:"amount"`
	TransactionType TransactionType `json:"transaction_type"`
	Description     string          `json:"description,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// TransactionCreate is the body of a deposit or withdraw request
type TransactionCreate struct {
	Amount          decimal.Decimal `json:"amount"`
	TransactionType TransactionType `json:"transaction_type"`
	Description     string          `json:"description"`
}

// TransferCreate is the body of a transfer request
type TransferCreate struct {
	TargetAccountNumber string          `json:"target_account_number"`
	Amount              decimal.Decimal `json:"amount"`
	Description         string          `json:"description"`
}

// UserCreate is the body of a registration request
type UserCreate struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
}

// Token is the login response
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// ReconcileResult reports whether an account balance matches its ledger history
type ReconcileResult struct {
	AccountId  string `json:"account_id"`
	Balance    string `json:"balance"`
	Consistent bool   `json:"consistent"`
	Error      string `json:"error,omitempty"`
}

func NewUserPublic(u *User) UserPublic {
	return UserPublic{Id: u.Id, Email: u.Email, FullName: u.FullName, IsActive: u.IsActive}
}

func NewAccountPublic(a *Account) AccountPublic {
	return AccountPublic{Id: a.Id, Number: a.Number, Balance: a.Balance.StringFixed(2)}
}

func NewTransactionPublic(t *Transaction) TransactionPublic {
	return TransactionPublic{
		Id:              t.Id,
		AccountId:       t.AccountId,
		Amount:          t.Amount.StringFixed(2),
		TransactionType: t.TransactionType,
		Description:     t.Description,
		CreatedAt:       t.CreatedAt,
	}
}
