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

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"

	"vertex-bank-go/internal/common"
	"vertex-bank-go/internal/config"
	"vertex-bank-go/internal/ledger"
	"vertex-bank-go/internal/models"

	"go.uber.org/zap"
)

type balanceStats struct {
	totalUsers   int
	reconciled   int
	inconsistent int
	failed       int
}

func formatTransactionId(txId string) string {
	if txId == "" {
		return "none"
	}
	if len(txId) > 8 {
		return txId[:8] + "..."
	}
	return txId
}

func printTransactions(transactions []models.Transaction) {
	for i, tx := range transactions {
		isLast := i == len(transactions)-1
		fmt.Printf("%s %-9s %14s -> %14s  %s  %s\n",
			common.BoxPrefix(isLast),
			tx.TransactionType,
			common.FormatMoney(tx.Amount),
			common.FormatMoney(tx.BalanceAfter),
			formatTransactionId(tx.Id),
			tx.CreatedAt.Format("2006-01-02 15:04:05"))
	}
}

func printUserHeader(user common.UserInfo, account *models.Account, consistent bool) {
	fmt.Printf("\n┌─ User: %s (%s)\n", user.FullName, user.Email)
	fmt.Printf("│  ID: %s\n", user.Id)
	fmt.Printf("│  Account: %s  Balance: %s (v%d)  Reconciled: %s\n",
		account.Number,
		common.FormatMoney(account.Balance),
		account.Version,
		common.StatusMark(consistent))
	common.PrintBoxSeparator(78)
}

func processUser(ctx context.Context, user common.UserInfo, services *common.Services, recent int) (bool, error) {
	account, err := services.Engine.Reconcile(ctx, user.Id)
	consistent := err == nil
	if err != nil && !errors.Is(err, ledger.ErrReconciliationFailed) {
		return false, err
	}

	printUserHeader(user, account, consistent)

	if recent > 0 {
		transactions, err := services.Engine.ListForUser(ctx, user.Id, 0, recent)
		if err != nil {
			return consistent, fmt.Errorf("failed to list transactions: %w", err)
		}
		printTransactions(transactions)
	}

	return consistent, nil
}

func processUsersAndGenerateReport(ctx context.Context, users []common.UserInfo, services *common.Services, recent int) balanceStats {
	stats := balanceStats{}

	for _, user := range users {
		stats.totalUsers++

		consistent, err := processUser(ctx, user, services, recent)
		if err != nil {
			stats.failed++
			zap.L().Error("Failed to process user",
				zap.String("user_id", user.Id),
				zap.String("user_name", user.FullName),
				zap.Error(err))
			continue
		}

		if consistent {
			stats.reconciled++
		} else {
			stats.inconsistent++
			zap.L().Warn("Balance does not match history",
				zap.String("user_id", user.Id),
				zap.String("email", user.Email))
		}
	}

	return stats
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	_, loggerCleanup := common.InitializeLogger(cfg.Log)
	defer loggerCleanup()

	// Parse command line flags
	emailFlag := flag.String("email", "", "Filter by specific user email (optional)")
	recentFlag := flag.Int("recent", 5, "Number of recent transactions to show per user")
	flag.Parse()

	zap.L().Info("Starting balance query")

	services, err := common.InitializeLedger(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	// Initialize users based on filter
	users, err := common.InitializeUsers(ctx, services.Store, *emailFlag)
	if err != nil {
		zap.L().Fatal("Failed to initialize users", zap.Error(err))
	}

	common.PrintHeader("ACCOUNT BALANCE REPORT", common.DefaultWidth)

	stats := processUsersAndGenerateReport(ctx, users, services, *recentFlag)

	summary := fmt.Sprintf("SUMMARY: %d users queried, %d reconciled, %d inconsistent, %d failed",
		stats.totalUsers, stats.reconciled, stats.inconsistent, stats.failed)
	common.PrintFooter(summary, common.DefaultWidth)

	zap.L().Info("Balance query completed",
		zap.Int("users_queried", stats.totalUsers),
		zap.Int("reconciled", stats.reconciled),
		zap.Int("inconsistent", stats.inconsistent),
		zap.Int("failed", stats.failed))
}
