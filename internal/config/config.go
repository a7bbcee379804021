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

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"vertex-bank-go/internal/models"
)

func Load() (*models.Config, error) {
	connMaxLifetime, err := getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	connMaxIdleTime, err := getEnvDuration("DB_CONN_MAX_IDLE_TIME", 30*time.Second)
	if err != nil {
		return nil, err
	}

	pingTimeout, err := getEnvDuration("DB_PING_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	busyTimeout, err := getEnvDuration("DB_BUSY_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	retryBackoff, err := getEnvDuration("DB_ATOMIC_RETRY_BACKOFF", 20*time.Millisecond)
	if err != nil {
		return nil, err
	}

	readTimeout, err := getEnvDuration("HTTP_READ_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}

	writeTimeout, err := getEnvDuration("HTTP_WRITE_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}

	idleTimeout, err := getEnvDuration("HTTP_IDLE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, err
	}

	shutdownTimeout, err := getEnvDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	tokenMinutes := getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES", 30)
	if tokenMinutes <= 0 {
		return nil, fmt.Errorf("invalid ACCESS_TOKEN_EXPIRE_MINUTES: %d", tokenMinutes)
	}

	return &models.Config{
		Database: models.DatabaseConfig{
			Driver:             getEnvString("DB_DRIVER", "sqlite3"),
			Path:               getEnvString("DATABASE_PATH", "bank.db"),
			URL:                getEnvString("DATABASE_URL", ""),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime:    connMaxLifetime,
			ConnMaxIdleTime:    connMaxIdleTime,
			PingTimeout:        pingTimeout,
			BusyTimeout:        busyTimeout,
			AtomicMaxAttempts:  getEnvInt("DB_ATOMIC_MAX_ATTEMPTS", 5),
			AtomicRetryBackoff: retryBackoff,
		},
		Server: models.ServerConfig{
			Address:         getEnvString("HTTP_ADDRESS", ":8000"),
			APIPrefix:       getEnvString("API_PREFIX", "/api/v1"),
			ReadTimeout:     readTimeout,
			WriteTimeout:    writeTimeout,
			IdleTimeout:     idleTimeout,
			ShutdownTimeout: shutdownTimeout,
			MaxConnections:  getEnvInt("HTTP_MAX_CONNECTIONS", 512),
			AllowedOrigins:  getEnvList("ALLOWED_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000"),
		},
		Auth: models.AuthConfig{
			SecretKey: getEnvString("SECRET_KEY", ""),
			TokenTTL:  time.Duration(tokenMinutes) * time.Minute,
			Issuer:    getEnvString("TOKEN_ISSUER", "vertex-bank"),
		},
		Log: models.LogConfig{
			Level:  getEnvString("LOG_LEVEL", "info"),
			Format: getEnvString("LOG_FORMAT", "json"),
		},
		Metrics: models.MetricsConfig{
			Namespace: getEnvString("METRICS_NAMESPACE", "vertex_bank"),
		},
		SeedFile: getEnvString("SEED_FILE", "seed.yaml"),
	}, nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	if value := os.Getenv(key); value != "" {
		duration, err := time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("invalid duration for %s: %q (%w)", key, value, err)
		}
		return duration, nil
	}
	return defaultValue, nil
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvList splits a comma-separated value and drops empty entries.
func getEnvList(key, defaultValue string) []string {
	var out []string
	for _, item := range strings.Split(getEnvString(key, defaultValue), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
