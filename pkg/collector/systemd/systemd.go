// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
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

package systemd

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/coreos/go-systemd/v22/dbus"

	"github.com/NVIDIA/fleet-inventory/pkg/collector/command"
	"github.com/NVIDIA/fleet-inventory/pkg/errors"
)

// UnitChecker reports whether a named unit is active under the service manager.
type UnitChecker interface {
	IsActive(ctx context.Context, name string) bool
}

// unitSuffixes are the unit types systemctl recognises in a unit name.
var unitSuffixes = []string{
	".service", ".socket", ".target", ".timer", ".mount", ".automount",
	".path", ".scope", ".slice", ".device", ".swap",
}

// UnitName returns name as a unit name the way systemctl expands it:
// ".service" is appended unless the name already ends in a unit type, so
// "php-fpm8.2" becomes "php-fpm8.2.service".
func UnitName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return name
	}
	for _, suffix := range unitSuffixes {
		if strings.HasSuffix(name, suffix) {
			return name
		}
	}
	return name + ".service"
}

type unitLister interface {
	ListUnitsByPatternsContext(ctx context.Context, states []string, patterns []string) ([]dbus.UnitStatus, error)
	Close()
}

// DBusChecker lists active units over the systemd D-Bus API once, on
// first use, and answers from that set. When the bus is unreachable it
// defers to Fallback.
type DBusChecker struct {
	// Fallback answers when D-Bus is unavailable. Nil means "not active".
	Fallback UnitChecker

	connect func(ctx context.Context) (unitLister, error)

	once   sync.Once
	active map[string]bool
	err    error
}

// NewDBusChecker returns a DBusChecker that falls back to systemctl.
func NewDBusChecker(runner command.Runner) *DBusChecker {
	return &DBusChecker{
		Fallback: &SystemctlChecker{Runner: runner},
		connect: func(ctx context.Context) (unitLister, error) {
			return dbus.NewSystemdConnectionContext(ctx)
		},
	}
}

// IsActive implements UnitChecker.
func (c *DBusChecker) IsActive(ctx context.Context, name string) bool {
	c.once.Do(func() { c.active, c.err = c.load(ctx) })
	if c.err != nil {
		if c.Fallback == nil {
			return false
		}
		return c.Fallback.IsActive(ctx, name)
	}
	return c.active[UnitName(name)]
}

func (c *DBusChecker) load(ctx context.Context) (map[string]bool, error) {
	conn, err := c.connect(ctx)
	if err != nil {
		slog.Debug("systemd bus unavailable, using systemctl", slog.String("error", err.Error()))
		return nil, errors.Wrap(errors.ErrCodeUnavailable, "failed to connect to systemd", err)
	}
	defer conn.Close()

	units, err := conn.ListUnitsByPatternsContext(ctx, []string{"active"}, nil)
	if err != nil {
		slog.Debug("failed to list systemd units", slog.String("error", err.Error()))
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to list systemd units", err)
	}

	active := make(map[string]bool, len(units))
	for _, u := range units {
		if u.ActiveState == "active" {
			active[u.Name] = true
		}
	}
	slog.Debug("loaded active systemd units", slog.Int("count", len(active)))
	return active, nil
}

// SystemctlChecker asks "systemctl is-active" about each unit.
type SystemctlChecker struct {
	Runner command.Runner
}

// IsActive implements UnitChecker.
func (c *SystemctlChecker) IsActive(ctx context.Context, name string) bool {
	unit := UnitName(name)
	if unit == "" || c.Runner == nil {
		return false
	}
	out, err := c.Runner.Run(ctx, []string{"systemctl", "is-active", unit})
	return err == nil && strings.TrimSpace(out) == "active"
}
