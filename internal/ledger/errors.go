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
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Business failures. Each one is returned as-is and leaves the ledger untouched.
var (
	ErrAccountNotFound        = errors.New("account not found")
	ErrUserNotFound           = errors.New("user not found")
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrSelfTransfer           = errors.New("cannot transfer to the same account")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrDescriptionTooLong     = errors.New("description too long")
	ErrBalanceLimitExceeded   = errors.New("balance limit exceeded")
	ErrDuplicateEmail         = errors.New("email already registered")
	ErrInvalidUserDetails     = errors.New("invalid user details")
	ErrReconciliationFailed   = errors.New("reconciliation failed")
)

// ErrStoreFailure wraps any unexpected persistence error.
var ErrStoreFailure = errors.New("ledger store failure")

var businessErrors = []error{
	ErrAccountNotFound,
	ErrUserNotFound,
	ErrInvalidAmount,
	ErrInsufficientFunds,
	ErrSelfTransfer,
	ErrInvalidTransactionType,
	ErrDescriptionTooLong,
	ErrBalanceLimitExceeded,
	ErrDuplicateEmail,
	ErrInvalidUserDetails,
	ErrReconciliationFailed,
}

// IsBusinessError reports whether err is an expected rule violation rather than a fault.
func IsBusinessError(err error) bool {
	for _, target := range businessErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func storeFailure(operation string, err error) error {
	zap.L().Error("Ledger store failure", zap.String("operation", operation), zap.Error(err))
	return fmt.Errorf("%w: %w", ErrStoreFailure, err)
}

// settle passes business errors through and wraps everything else.
func settle(operation string, err error) error {
	if err == nil || IsBusinessError(err) {
		return err
	}
	return storeFailure(operation, err)
}
