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
	"log"
	"os"
	"os/signal"
	"syscall"

	"vertex-bank-go/internal/common"
	"vertex-bank-go/internal/config"
	"vertex-bank-go/internal/server"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	_, loggerCleanup := common.InitializeLogger(cfg.Log)
	defer loggerCleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	zap.L().Info("Starting Vertex Bank API",
		zap.String("driver", cfg.Database.Driver),
		zap.String("address", cfg.Server.Address))

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	srv := server.New(cfg.Server, server.Deps{
		Store:     services.Store,
		Directory: services.Directory,
		Engine:    services.Engine,
		Auth:      services.Auth,
		Metrics:   services.Metrics,
		Gatherer:  services.Registry,
	})

	zap.L().Info("Press Ctrl+C to stop")
	if err := srv.Run(ctx); err != nil {
		zap.L().Error("Server exited with error", zap.Error(err))
		return
	}
	zap.L().Info("Shutdown complete")
}
