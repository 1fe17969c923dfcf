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

package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Config holds metrics configuration
type Config struct {
	Enabled bool
}

// Meter holds the instruments the canchahub binaries record on. With
// metrics disabled the instruments come from the no-op global provider
// and recording is free.
type Meter struct {
	grantsPurged    metric.Int64Counter
	adminBootstraps metric.Int64Counter
}

// New builds the instrument set from the global meter provider.
func New(cfg Config, serviceName string) (*Meter, error) {
	scope := "noop"
	if cfg.Enabled {
		scope = serviceName
	}
	meter := otel.Meter(scope)

	grantsPurged, err := meter.Int64Counter(
		"canchahub.rbac.grants_purged",
		metric.WithDescription("Expired user-role grant rows removed by cleanup"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create grants_purged counter: %w", err)
	}

	adminBootstraps, err := meter.Int64Counter(
		"canchahub.identity.admin_bootstraps",
		metric.WithDescription("Initial tenant and admin bootstrap runs that created state"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create admin_bootstraps counter: %w", err)
	}

	return &Meter{
		grantsPurged:    grantsPurged,
		adminBootstraps: adminBootstraps,
	}, nil
}

// RecordGrantsPurged counts grant rows removed past their retention.
func (m *Meter) RecordGrantsPurged(ctx context.Context, n int64) {
	m.grantsPurged.Add(ctx, n)
}

// RecordAdminBootstrap counts a bootstrap run that created the initial
// tenant and owner.
func (m *Meter) RecordAdminBootstrap(ctx context.Context) {
	m.adminBootstraps.Add(ctx, 1)
}
