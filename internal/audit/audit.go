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

package audit

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// Event types
const (
	TypeTenantCreated         = "tenant_created"
	TypeTenantDeactivated     = "tenant_deactivated"
	TypeUserCreated           = "user_created"
	TypeLoginSuccess          = "login_success"
	TypeLoginFailed           = "login_failed"
	TypeUserLocked            = "user_locked"
	TypePasswordChanged       = "password_changed"
	TypePermissionCreated     = "permission_created"
	TypePermissionDeactivated = "permission_deactivated"
	TypeRoleCreated           = "role_created"
	TypeRoleDeactivated       = "role_deactivated"
	TypeRoleDeleted           = "role_deleted"
	TypePermissionGranted     = "permission_granted"
	TypePermissionRevoked     = "permission_revoked"
	TypeRoleAssigned          = "role_assigned"
	TypeRoleRevoked           = "role_revoked"
	TypeExpiredGrantsPurged   = "expired_grants_purged"
	TypeAdminBootstrap        = "admin_bootstrap"
)

// Well-known actor IDs for non-user actors
const (
	ActorSystemBootstrap = "system:bootstrap"
	ActorSystemCleanup   = "system:cleanup"
)

// Metadata attribute keys
const (
	AttrEmail        = "email"
	AttrTenantID     = "tenant_id"
	AttrUserID       = "user_id"
	AttrRoleID       = "role_id"
	AttrPermissionID = "permission_id"
	AttrExpiresAt    = "expires_at"
)

// Event represents an auditable action
type Event struct {
	Type      string
	TenantID  string
	ActorID   string
	Resource  string
	Metadata  map[string]any
	Timestamp time.Time
}

// Logger defines the interface for audit logging
type Logger interface {
	Log(ctx context.Context, event Event)
}

// SlogLogger implements Logger using slog
type SlogLogger struct{}

// NewSlogLogger creates a new audit logger
func NewSlogLogger() *SlogLogger {
	return &SlogLogger{}
}

// Log records an audit event
func (l *SlogLogger) Log(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	attrs := []any{
		slog.String("audit_type", event.Type),
		slog.String("tenant_id", event.TenantID),
		slog.String("actor_id", event.ActorID),
		slog.String("resource", event.Resource),
		slog.Time("timestamp", event.Timestamp),
	}

	// Flatten metadata
	if len(event.Metadata) > 0 {
		group := []any{}
		for k, v := range event.Metadata {
			// Redact secrets
			if isSecret(k) {
				v = "[REDACTED]"
			}
			group = append(group, slog.Any(k, v))
		}
		attrs = append(attrs, slog.Group("metadata", group...))
	}

	slog.InfoContext(ctx, "AUDIT_EVENT", append(attrs, slog.String("component", "audit"))...)
}

// isSecret checks if a key likely contains a secret
func isSecret(key string) bool {
	lower := strings.ToLower(key)
	for _, s := range []string{"password", "secret", "token", "key", "hash", "credential", "authorization"} {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}
