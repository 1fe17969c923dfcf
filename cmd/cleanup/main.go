// Copyright 2026 The CanchaHub Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/canchahub/canchahub/internal/audit"
	"github.com/canchahub/canchahub/internal/config"
	"github.com/canchahub/canchahub/internal/observability/logger"
	"github.com/canchahub/canchahub/internal/observability/metrics"
	"github.com/canchahub/canchahub/internal/rbac"
	"github.com/canchahub/canchahub/internal/store/postgres"
)

// Removes user-role grant rows that expired longer ago than the
// configured retention. Expiry itself is enforced at authorization
// time; this only reclaims rows past their audit retention.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(logger.Config{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: cfg.Observability.ServiceName,
		OTELEnabled: cfg.Observability.OTELEnabled,
	})

	ctx := context.Background()

	meter, err := metrics.New(metrics.Config{
		Enabled: cfg.Observability.OTELEnabled,
	}, cfg.Observability.ServiceName)
	if err != nil {
		slog.Error("failed to initialize metrics", logger.Error(err))
		os.Exit(1)
	}

	db, err := postgres.New(ctx, postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Database,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		slog.Error("failed to connect to database", logger.Error(err))
		os.Exit(1)
	}
	defer db.Close()

	rbacService := rbac.NewService(
		postgres.NewPermissionRepository(db),
		postgres.NewRoleRepository(db),
		postgres.NewRolePermissionRepository(db),
		postgres.NewUserRoleRepository(db),
		postgres.NewUserRepository(db),
		audit.NewSlogLogger(),
	)

	cutoff := time.Now().Add(-cfg.Cleanup.GrantRetention)
	purged, err := rbacService.PurgeExpiredGrants(ctx, cutoff)
	if err != nil {
		slog.Error("failed to purge expired grants", logger.Error(err))
		os.Exit(1)
	}

	meter.RecordGrantsPurged(ctx, purged)
	slog.Info("cleanup completed", logger.RowsAffected(purged))
}
