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
	"strings"

	"vertex-bank-go/internal/auth"
	"vertex-bank-go/internal/common"
	"vertex-bank-go/internal/config"
	"vertex-bank-go/internal/ledger"

	"go.uber.org/zap"
)

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if len(name) < 2 {
		return fmt.Errorf("name must be at least 2 characters")
	}
	return nil
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
	nameFlag := flag.String("name", "", "User's full name (required)")
	emailFlag := flag.String("email", "", "User's email address (required)")
	passwordFlag := flag.String("password", "", "Initial password (required)")
	flag.Parse()

	if *nameFlag == "" || *emailFlag == "" || *passwordFlag == "" {
		zap.L().Fatal("All flags are required: --name, --email and --password")
	}

	name := strings.TrimSpace(*nameFlag)
	if err := validateName(name); err != nil {
		zap.L().Fatal("Invalid name", zap.Error(err))
	}

	zap.L().Info("Starting user creation process",
		zap.String("name", name),
		zap.String("email", *emailFlag))

	services, err := common.InitializeLedger(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	hash, err := auth.HashPassword(*passwordFlag)
	if err != nil {
		zap.L().Fatal("Failed to hash password", zap.Error(err))
	}

	user, account, err := services.Directory.Register(ctx, ledger.RegisterParams{
		Email:        *emailFlag,
		FullName:     name,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, ledger.ErrDuplicateEmail) {
			zap.L().Fatal("User already exists with this email", zap.String("email", *emailFlag))
		}
		zap.L().Fatal("Failed to create user", zap.Error(err))
	}

	fmt.Println()
	common.PrintHeader("USER CREATED", common.DefaultWidth)
	fmt.Printf("ID:       %s\n", user.Id)
	fmt.Printf("Name:     %s\n", user.FullName)
	fmt.Printf("Email:    %s\n", user.Email)
	fmt.Printf("Account:  %s\n", account.Number)
	fmt.Printf("Balance:  %s\n", common.FormatMoney(account.Balance))
	common.PrintSeparator("=", common.DefaultWidth)
	fmt.Println()

	zap.L().Info("User created successfully",
		zap.String("id", user.Id),
		zap.String("account_number", account.Number))
}
