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
	"flag"
	"fmt"
	"log"

	"vertex-bank-go/internal/common"
	"vertex-bank-go/internal/config"
	"vertex-bank-go/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type postingRequest struct {
	email       string
	txType      models.TransactionType
	amount      decimal.Decimal
	to          string
	description string
}

func parseAndValidateFlags() (*postingRequest, error) {
	emailFlag := flag.String("email", "", "User email (required)")
	typeFlag := flag.String("type", "", "deposit, withdraw or transfer (required)")
	amountFlag := flag.String("amount", "", "Amount with up to two decimals (required)")
	toFlag := flag.String("to", "", "Target account number (transfer only)")
	descriptionFlag := flag.String("description", "", "Optional description")
	flag.Parse()

	if *emailFlag == "" || *typeFlag == "" || *amountFlag == "" {
		return nil, fmt.Errorf("flags --email, --type and --amount are required")
	}

	txType := models.TransactionType(*typeFlag)
	if !txType.Valid() {
		return nil, fmt.Errorf("unknown transaction type %q", *typeFlag)
	}
	if txType == models.TransactionTypeTransfer && *toFlag == "" {
		return nil, fmt.Errorf("--to is required for transfers")
	}

	amount, err := decimal.NewFromString(*amountFlag)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", *amountFlag, err)
	}

	return &postingRequest{
		email:       *emailFlag,
		txType:      txType,
		amount:      amount,
		to:          *toFlag,
		description: *descriptionFlag,
	}, nil
}

func post(ctx context.Context, services *common.Services, userId string, req *postingRequest) (*models.Transaction, error) {
	if req.txType == models.TransactionTypeTransfer {
		return services.Engine.Transfer(ctx, userId, req.to, req.amount, req.description)
	}
	return services.Engine.PostForUser(ctx, userId, req.txType, req.amount, req.description)
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	_, loggerCleanup := common.InitializeLogger(cfg.Log)
	defer loggerCleanup()

	req, err := parseAndValidateFlags()
	if err != nil {
		zap.L().Fatal("Invalid flags", zap.Error(err))
	}

	zap.L().Info("Starting posting",
		zap.String("email", req.email),
		zap.String("type", string(req.txType)),
		zap.String("amount", req.amount.String()))

	services, err := common.InitializeLedger(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	user, err := services.Store.GetUserByEmail(ctx, req.email)
	if err != nil {
		common.PrintHeader("POSTING FAILED", common.DefaultWidth)
		fmt.Printf("Error: User not found for email %s\n", req.email)
		common.PrintSeparator("=", common.DefaultWidth)
		zap.L().Fatal("User not found", zap.String("email", req.email), zap.Error(err))
	}

	tx, err := post(ctx, services, user.Id, req)
	if err != nil {
		common.PrintHeader("POSTING FAILED", common.DefaultWidth)
		fmt.Printf("User:    %s (%s)\n", user.FullName, user.Email)
		fmt.Printf("Type:    %s\n", req.txType)
		fmt.Printf("Amount:  %s\n", req.amount.String())
		fmt.Printf("Error:   %v\n", err)
		common.PrintSeparator("=", common.DefaultWidth)
		zap.L().Fatal("Posting failed", zap.Error(err))
	}

	common.PrintHeader("POSTING COMPLETE", common.DefaultWidth)
	fmt.Printf("Transaction:     %s\n", tx.Id)
	fmt.Printf("Type:            %s\n", tx.TransactionType)
	fmt.Printf("Amount:          %s\n", common.FormatMoney(tx.Amount))
	fmt.Printf("Balance before:  %s\n", common.FormatMoney(tx.BalanceBefore))
	fmt.Printf("Balance after:   %s\n", common.FormatMoney(tx.BalanceAfter))
	if tx.Description != "" {
		fmt.Printf("Description:     %s\n", tx.Description)
	}
	common.PrintSeparator("=", common.DefaultWidth)
}
