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

	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	_, loggerCleanup := common.InitializeLogger(cfg.Log)
	defer loggerCleanup()

	fileFlag := flag.String("file", cfg.SeedFile, "Path to the seed YAML file")
	flag.Parse()

	zap.L().Info("Loading seed file", zap.String("file", *fileFlag))
	seed, err := common.LoadSeedConfig(*fileFlag)
	if err != nil {
		zap.L().Fatal("Failed to load seed file", zap.Error(err))
	}

	services, err := common.InitializeLedger(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	result, err := common.NewSeeder(services).ApplySeed(ctx, seed)
	if err != nil {
		zap.L().Fatal("Failed to apply seed", zap.Error(err))
	}

	common.PrintHeader("SEED COMPLETE", common.DefaultWidth)
	fmt.Printf("Users created:     %d\n", result.Created)
	fmt.Printf("Users skipped:     %d\n", result.Skipped)
	fmt.Printf("Opening deposits:  %d\n", result.Deposits)
	fmt.Printf("Transfers:         %d\n", result.Transfers)
	common.PrintSeparator("=", common.DefaultWidth)
}
