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
	"encoding/binary"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"vertex-bank-go/internal/metrics"
	"vertex-bank-go/internal/models"
	"vertex-bank-go/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// accountNumberAttempts bounds how many fresh numbers Register tries after a collision.
const accountNumberAttempts = 5

// Directory resolves users and accounts and provisions new ones.
type Directory struct {
	store      store.LedgerStore
	metrics    metrics.Recorder
	nextNumber func() string
}

func NewDirectory(s store.LedgerStore, m metrics.Recorder) *Directory {
	if m == nil {
		m = metrics.NoOpRecorder{}
	}
	return &Directory{store: s, metrics: m, nextNumber: NewAccountNumber}
}

// NewAccountNumber returns a random 10-digit account number.
func NewAccountNumber() string {
	id := uuid.New()
	n := binary.BigEndian.Uint64(id[:8]) % 10_000_000_000
	return fmt.Sprintf("%010d", n)
}

func (d *Directory) AccountForUser(ctx context.Context, userId string) (*models.Account, error) {
	account, err := d.store.GetAccountByUserId(ctx, userId)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			zap.L().Debug("No account for user", zap.String("user_id", userId))
			return nil, fmt.Errorf("%w: user %s has no account", ErrAccountNotFound, userId)
		}
		return nil, storeFailure("account_for_user", err)
	}
	return account, nil
}

func (d *Directory) AccountForNumber(ctx context.Context, number string) (*models.Account, error) {
	account, err := d.store.GetAccountByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			zap.L().Debug("Unknown account number", zap.String("number", number))
			return nil, fmt.Errorf("%w: number %s", ErrAccountNotFound, number)
		}
		return nil, storeFailure("account_for_number", err)
	}
	return account, nil
}

func (d *Directory) UserById(ctx context.Context, userId string) (*models.User, error) {
	user, err := d.store.GetUserById(ctx, userId)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUserNotFound, userId)
		}
		return nil, storeFailure("user_by_id", err)
	}
	return user, nil
}

// RegisterParams describes a new user. PasswordHash is produced by the auth provider.
type RegisterParams struct {
	Email        string
	FullName     string
	PasswordHash string
}

// Register creates a user and its zero-balance account in one atomic unit.
func (d *Directory) Register(ctx context.Context, params RegisterParams) (*models.User, *models.Account, error) {
	user, account, err := d.register(ctx, params)
	switch {
	case err == nil:
		d.metrics.RecordRegistration(metrics.OutcomeSuccess)
	case IsBusinessError(err):
		d.metrics.RecordRegistration(metrics.OutcomeRejected)
	default:
		d.metrics.RecordRegistration(metrics.OutcomeError)
	}
	return user, account, err
}

func (d *Directory) register(ctx context.Context, params RegisterParams) (*models.User, *models.Account, error) {
	email := strings.TrimSpace(params.Email)
	fullName := strings.TrimSpace(params.FullName)
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, nil, fmt.Errorf("%w: email %q is not valid", ErrInvalidUserDetails, params.Email)
	}
	if fullName == "" {
		return nil, nil, fmt.Errorf("%w: full name is required", ErrInvalidUserDetails)
	}
	if params.PasswordHash == "" {
		return nil, nil, fmt.Errorf("%w: password is required", ErrInvalidUserDetails)
	}

	var user *models.User
	var account *models.Account
	for attempt := 1; attempt <= accountNumberAttempts; attempt++ {
		number := d.nextNumber()
		err := d.store.RunAtomic(ctx, func(q store.Queries) error {
			_, err := q.GetUserByEmail(ctx, email)
			if err == nil {
				return store.ErrDuplicateEmail
			}
			if !errors.Is(err, store.ErrNotFound) {
				return err
			}

			now := time.Now().UTC()
			user, err = q.CreateUser(ctx, store.CreateUserParams{
				Id:             uuid.New().String(),
				Email:          email,
				FullName:       fullName,
				HashedPassword: params.PasswordHash,
				CreatedAt:      now,
			})
			if err != nil {
				return err
			}

			account, err = q.CreateAccount(ctx, store.CreateAccountParams{
				Id:        uuid.New().String(),
				Number:    number,
				UserId:    user.Id,
				CreatedAt: now,
			})
			return err
		})

		switch {
		case err == nil:
			zap.L().Info("User registered",
				zap.String("user_id", user.Id),
				zap.String("email", user.Email),
				zap.String("account_number", account.Number))
			return user, account, nil
		case errors.Is(err, store.ErrDuplicateEmail):
			zap.L().Info("Registration rejected, email in use", zap.String("email", email))
			return nil, nil, fmt.Errorf("%w: %s", ErrDuplicateEmail, email)
		case errors.Is(err, store.ErrDuplicateAccountNumber):
			zap.L().Debug("Account number collision, retrying",
				zap.String("number", number),
				zap.Int("attempt", attempt))
			continue
		default:
			return nil, nil, storeFailure("register", err)
		}
	}

	return nil, nil, storeFailure("register",
		fmt.Errorf("no free account number after %d attempts: %w", accountNumberAttempts, store.ErrDuplicateAccountNumber))
}
