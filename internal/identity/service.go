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

package identity

import (
	"context"
	"fmt"
	"net/mail"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/canchahub/canchahub/internal/audit"
	"github.com/canchahub/canchahub/internal/id"
)

const minPasswordLength = 10

// Service provides identity management business logic
type Service struct {
	repo               UserRepository
	hasher             *PasswordHasher
	auditLogger        audit.Logger
	lockoutMaxAttempts int
	lockoutDuration    time.Duration

	loginRate  rate.Limit
	loginBurst int
	mu         sync.Mutex
	limiters   map[string]*rate.Limiter
}

// NewService creates a new identity service
func NewService(
	repo UserRepository,
	hasher *PasswordHasher,
	auditLogger audit.Logger,
	lockoutMaxAttempts int,
	lockoutDuration time.Duration,
	loginRatePerMinute int,
	loginBurst int,
) *Service {
	// A non-positive rate disables throttling; lockout still applies.
	loginRate := rate.Inf
	if loginRatePerMinute > 0 {
		loginRate = rate.Every(time.Minute / time.Duration(loginRatePerMinute))
	}
	return &Service{
		repo:               repo,
		hasher:             hasher,
		auditLogger:        auditLogger,
		lockoutMaxAttempts: lockoutMaxAttempts,
		lockoutDuration:    lockoutDuration,
		loginRate:          loginRate,
		loginBurst:         loginBurst,
		limiters:           make(map[string]*rate.Limiter),
	}
}

// CreateUser provisions a new administrator. A nil tenantID creates a
// platform-level user. Email must be unique within the tenant context.
func (s *Service) CreateUser(ctx context.Context, tenantID *string, email, password string, preferences Preferences) (*User, error) {
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if len(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	if _, err := s.repo.GetByEmail(ctx, tenantID, email); err == nil {
		return nil, ErrUserAlreadyExists
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &User{
		ID:          id.NewUUIDv7(),
		TenantID:    tenantID,
		Email:       email,
		Preferences: preferences,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	if err := s.repo.AddCredentials(ctx, &Credentials{UserID: user.ID, PasswordHash: passwordHash, UpdatedAt: now}); err != nil {
		return nil, fmt.Errorf("failed to store credentials: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeUserCreated,
		TenantID: tenantIDString(tenantID),
		Resource: user.ID,
		Metadata: map[string]any{audit.AttrEmail: email},
	})

	return user, nil
}

// Authenticate verifies email/password within a tenant context. Failed
// attempts are rate limited and counted toward account lockout.
func (s *Service) Authenticate(ctx context.Context, tenantID *string, email, password string) (*User, error) {
	if !s.limiter(tenantIDString(tenantID) + "/" + email).Allow() {
		return nil, ErrTooManyAttempts
	}

	user, err := s.repo.GetByEmail(ctx, tenantID, email)
	if err != nil {
		// Same failure as a bad password, to avoid revealing which
		// emails exist.
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	if user.LockedUntil != nil && user.LockedUntil.After(now) {
		return nil, ErrAccountLocked
	}

	credentials, err := s.repo.GetCredentials(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}

	ok, err := s.hasher.Verify(password, credentials.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return nil, s.recordFailedLogin(ctx, user)
	}

	if user.FailedLoginAttempts > 0 || user.LockedUntil != nil {
		if err := s.repo.UpdateLockout(ctx, user.ID, 0, nil); err != nil {
			return nil, fmt.Errorf("failed to reset lockout: %w", err)
		}
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeLoginSuccess,
		TenantID: tenantIDString(user.TenantID),
		ActorID:  user.ID,
		Metadata: map[string]any{audit.AttrEmail: email},
	})

	return user, nil
}

func (s *Service) recordFailedLogin(ctx context.Context, user *User) error {
	attempts := user.FailedLoginAttempts + 1

	var lockedUntil *time.Time
	if attempts >= s.lockoutMaxAttempts {
		until := time.Now().Add(s.lockoutDuration)
		lockedUntil = &until
	}

	if err := s.repo.UpdateLockout(ctx, user.ID, attempts, lockedUntil); err != nil {
		return fmt.Errorf("failed to update lockout: %w", err)
	}

	eventType := audit.TypeLoginFailed
	if lockedUntil != nil {
		eventType = audit.TypeUserLocked
	}
	s.auditLogger.Log(ctx, audit.Event{
		Type:     eventType,
		TenantID: tenantIDString(user.TenantID),
		ActorID:  user.ID,
		Metadata: map[string]any{"failed_attempts": attempts},
	})

	if lockedUntil != nil {
		return ErrAccountLocked
	}
	return ErrInvalidCredentials
}

// ChangePassword replaces a user's password after verifying the old one.
func (s *Service) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return ErrWeakPassword
	}

	credentials, err := s.repo.GetCredentials(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load credentials: %w", err)
	}

	ok, err := s.hasher.Verify(oldPassword, credentials.PasswordHash)
	if err != nil {
		return fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return ErrInvalidCredentials
	}

	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.repo.UpdatePassword(ctx, userID, passwordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:    audit.TypePasswordChanged,
		ActorID: userID,
	})

	return nil
}

// VerifyEmail marks a user's email address as verified.
func (s *Service) VerifyEmail(ctx context.Context, userID string) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.EmailVerified {
		return nil
	}
	user.EmailVerified = true
	user.UpdatedAt = time.Now()
	return s.repo.Update(ctx, user)
}

// GetUser retrieves a user by ID
func (s *Service) GetUser(ctx context.Context, userID string) (*User, error) {
	return s.repo.GetByID(ctx, userID)
}

// limiter returns the per-login-key rate limiter, creating it on first use.
func (s *Service) limiter(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.limiters[key]
	if !ok {
		l = rate.NewLimiter(s.loginRate, s.loginBurst)
		s.limiters[key] = l
	}
	return l
}

func tenantIDString(tenantID *string) string {
	if tenantID == nil {
		return ""
	}
	return *tenantID
}
