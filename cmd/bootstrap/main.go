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

	"github.com/canchahub/canchahub/internal/audit"
	"github.com/canchahub/canchahub/internal/config"
	"github.com/canchahub/canchahub/internal/identity"
	"github.com/canchahub/canchahub/internal/observability/logger"
	"github.com/canchahub/canchahub/internal/observability/metrics"
	"github.com/canchahub/canchahub/internal/observability/tracing"
	"github.com/canchahub/canchahub/internal/rbac"
	"github.com/canchahub/canchahub/internal/session"
	"github.com/canchahub/canchahub/internal/store/postgres"
	"github.com/canchahub/canchahub/internal/tenant"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(logger.Config{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: cfg.Observability.ServiceName,
		OTELEnabled: cfg.Observability.OTELEnabled,
	})
	slog.Info("starting canchahub bootstrap")

	ctx := context.Background()

	// Initialize tracing
	shutdownTracing, err := tracing.Setup(ctx, tracing.Config{
		Enabled:        cfg.Observability.OTELEnabled,
		ServiceName:    cfg.Observability.ServiceName,
		ServiceVersion: cfg.Observability.ServiceVersion,
		SamplingRate:   1.0,
	})
	if err != nil {
		slog.Error("failed to initialize tracing", logger.Error(err))
	} else {
		defer shutdownTracing(ctx)
	}

	// Initialize metrics
	meter, err := metrics.New(metrics.Config{
		Enabled: cfg.Observability.OTELEnabled,
	}, cfg.Observability.ServiceName)
	if err != nil {
		slog.Error("failed to initialize metrics", logger.Error(err))
		os.Exit(1)
	}

	// Initialize database
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
	slog.Info("connected to database")

	// Initialize repositories
	tenantRepo := postgres.NewTenantRepository(db)
	userRepo := postgres.NewUserRepository(db)
	permissionRepo := postgres.NewPermissionRepository(db)
	roleRepo := postgres.NewRoleRepository(db)
	rolePermissionRepo := postgres.NewRolePermissionRepository(db)
	userRoleRepo := postgres.NewUserRoleRepository(db)

	// Initialize helpers
	auditLogger := audit.NewSlogLogger()
	passwordHasher := identity.NewPasswordHasher(
		cfg.Security.Argon2Memory,
		cfg.Security.Argon2Iterations,
		cfg.Security.Argon2Parallelism,
		cfg.Security.Argon2SaltLength,
		cfg.Security.Argon2KeyLength,
	)

	// Initialize services
	rbacService := rbac.NewService(permissionRepo, roleRepo, rolePermissionRepo, userRoleRepo, userRepo, auditLogger)
	tenantService := tenant.NewService(tenantRepo, rbacService, auditLogger)
	identityService := identity.NewService(
		userRepo,
		passwordHasher,
		auditLogger,
		cfg.Security.LockoutMaxAttempts,
		cfg.Security.LockoutDuration,
		cfg.Security.LoginRatePerMinute,
		cfg.Security.LoginBurst,
	)

	bootstrapService := identity.NewBootstrapService(identityService, tenantService, rbacService, auditLogger)
	owner, err := bootstrapService.Bootstrap(ctx)
	if err != nil {
		slog.Error("bootstrap failed", logger.Error(err))
		os.Exit(1)
	}

	if owner != nil {
		meter.RecordAdminBootstrap(ctx)
		issueInitialToken(cfg, owner)
	}

	slog.Info("bootstrap completed")
}

// issueInitialToken prints a session token for the freshly created owner
// so the operator can sign in before any transport is up. The token goes
// to stdout, never to the logs.
func issueInitialToken(cfg *config.Config, owner *identity.User) {
	if err := cfg.Token.Validate(); err != nil {
		slog.Warn("skipping initial session token", logger.Error(err))
		return
	}
	sessions := session.NewService(cfg.Token.Secret, cfg.Token.Issuer, cfg.Token.Lifetime)
	token, err := sessions.Issue(owner)
	if err != nil {
		slog.Error("failed to issue initial session token", logger.Error(err))
		return
	}
	fmt.Printf("Initial session token for %s (valid %s):\n%s\n", owner.Email, cfg.Token.Lifetime, token)
}
