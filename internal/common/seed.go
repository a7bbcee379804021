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

package common

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"vertex-bank-go/internal/auth"
	"vertex-bank-go/internal/ledger"
	"vertex-bank-go/internal/models"
	"vertex-bank-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v2"
)

// seedConcurrency bounds parallel registrations; bcrypt dominates the cost.
const seedConcurrency = 4

type SeedUser struct {
	Email          string `yaml:"email"`
	FullName       string `yaml:"full_name"`
	Password       string `yaml:"password"`
	OpeningBalance string `yaml:"opening_balance"`
}

type SeedTransfer struct {
	From        string `yaml:"from"`
	To          string `yaml:"to"`
	Amount      string `yaml:"amount"`
	Description string `yaml:"description"`
}

type SeedConfig struct {
	Users     []SeedUser     `yaml:"users"`
	Transfers []SeedTransfer `yaml:"transfers"`
}

// SeedResult summarizes what ApplySeed changed
type SeedResult struct {
	Created   int
	Skipped   int
	Deposits  int
	Transfers int
}

func LoadSeedConfig(seedFile string) (*SeedConfig, error) {
	var seedPath string
	if filepath.IsAbs(seedFile) {
		seedPath = seedFile
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		seedPath = filepath.Join(wd, seedFile)
	}

	data, err := os.ReadFile(seedPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", seedFile, err)
	}

	return ParseSeedConfig(data)
}

func ParseSeedConfig(data []byte) (*SeedConfig, error) {
	var config SeedConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unable to parse seed file: %w", err)
	}

	emails := make(map[string]bool, len(config.Users))
	for i, user := range config.Users {
		if user.Email == "" {
			return nil, fmt.Errorf("user at index %d missing email", i)
		}
		if user.Password == "" {
			return nil, fmt.Errorf("user %s missing password", user.Email)
		}
		if emails[user.Email] {
			return nil, fmt.Errorf("user %s listed more than once", user.Email)
		}
		emails[user.Email] = true
		if user.OpeningBalance != "" {
			if _, err := decimal.NewFromString(user.OpeningBalance); err != nil {
				return nil, fmt.Errorf("user %s has invalid opening_balance %q: %w", user.Email, user.OpeningBalance, err)
			}
		}
	}

	for i, transfer := range config.Transfers {
		if transfer.From == "" || transfer.To == "" {
			return nil, fmt.Errorf("transfer at index %d missing from or to", i)
		}
		if _, err := decimal.NewFromString(transfer.Amount); err != nil {
			return nil, fmt.Errorf("transfer at index %d has invalid amount %q: %w", i, transfer.Amount, err)
		}
	}

	return &config, nil
}

// Seeder provisions demo users through the same paths the API uses.
type Seeder struct {
	Store     store.LedgerStore
	Directory *ledger.Directory
	Engine    *ledger.Engine
	HashCost  int
}

func NewSeeder(services *Services) *Seeder {
	return &Seeder{
		Store:     services.Store,
		Directory: services.Directory,
		Engine:    services.Engine,
		HashCost:  auth.DefaultCost,
	}
}

// ApplySeed registers missing users with their opening deposits, then runs the transfers in order.
// Users that already exist are left untouched, so rerunning a seed file only adds what is new.
func (s *Seeder) ApplySeed(ctx context.Context, config *SeedConfig) (SeedResult, error) {
	results := make([]SeedResult, len(config.Users))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(seedConcurrency)
	for i, user := range config.Users {
		g.Go(func() error {
			result, err := s.seedUser(gctx, user)
			if err != nil {
				return fmt.Errorf("seeding %s: %w", user.Email, err)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return SeedResult{}, err
	}

	var total SeedResult
	for _, r := range results {
		total.Created += r.Created
		total.Skipped += r.Skipped
		total.Deposits += r.Deposits
	}

	for i, transfer := range config.Transfers {
		if err := s.seedTransfer(ctx, transfer); err != nil {
			return total, fmt.Errorf("transfer at index %d: %w", i, err)
		}
		total.Transfers++
	}

	zap.L().Info("Seed applied",
		zap.Int("created", total.Created),
		zap.Int("skipped", total.Skipped),
		zap.Int("deposits", total.Deposits),
		zap.Int("transfers", total.Transfers))
	return total, nil
}

func (s *Seeder) seedUser(ctx context.Context, user SeedUser) (SeedResult, error) {
	hash, err := auth.HashPasswordWithCost(user.Password, s.HashCost)
	if err != nil {
		return SeedResult{}, err
	}

	_, account, err := s.Directory.Register(ctx, ledger.RegisterParams{
		Email:        user.Email,
		FullName:     user.FullName,
		PasswordHash: hash,
	})
	if errors.Is(err, ledger.ErrDuplicateEmail) {
		zap.L().Info("User already exists, skipping", zap.String("email", user.Email))
		return SeedResult{Skipped: 1}, nil
	}
	if err != nil {
		return SeedResult{}, err
	}

	result := SeedResult{Created: 1}
	if user.OpeningBalance == "" {
		return result, nil
	}

	amount := decimal.RequireFromString(user.OpeningBalance)
	if amount.IsZero() {
		return result, nil
	}
	if _, err := s.Engine.Post(ctx, account.Id, models.TransactionTypeDeposit, amount, "Opening deposit"); err != nil {
		return result, err
	}
	result.Deposits = 1
	return result, nil
}

func (s *Seeder) seedTransfer(ctx context.Context, transfer SeedTransfer) error {
	source, err := s.Store.GetUserByEmail(ctx, strings.TrimSpace(transfer.From))
	if err != nil {
		return fmt.Errorf("unknown sender %s: %w", transfer.From, err)
	}
	target, err := s.Store.GetUserByEmail(ctx, strings.TrimSpace(transfer.To))
	if err != nil {
		return fmt.Errorf("unknown recipient %s: %w", transfer.To, err)
	}
	targetAccount, err := s.Directory.AccountForUser(ctx, target.Id)
	if err != nil {
		return err
	}

	_, err = s.Engine.Transfer(ctx, source.Id, targetAccount.Number, decimal.RequireFromString(transfer.Amount), transfer.Description)
	return err
}
