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

package socket

import (
	"context"
	"log/slog"

	"github.com/NVIDIA/fleet-inventory/pkg/collector/systemd"
	"github.com/NVIDIA/fleet-inventory/pkg/inventory"
)

// DetectorName labels socket scan candidates in logs and metrics.
const DetectorName = "socket"

// Detector emits one service candidate per listening (port, pid) pair whose
// pid is not owned by a container.
type Detector struct {
	lister   Lister
	resolver ProcessResolver
	units    systemd.UnitChecker
}

// NewDetector returns a socket scan detector. Process names are cached for
// the lifetime of the detector.
func NewDetector(lister Lister, resolver ProcessResolver, units systemd.UnitChecker) *Detector {
	return &Detector{
		lister:   lister,
		resolver: &CachingResolver{Resolver: resolver},
		units:    units,
	}
}

// Name implements the collector Detector contract.
func (d *Detector) Name() string {
	return DetectorName
}

// Detect lists listening sockets and classifies each owner as a systemd
// service or a bare process. Sockets owned by a claimed pid are skipped.
// Pairs are not merged here.
func (d *Detector) Detect(ctx context.Context, claimed inventory.PIDSet) ([]inventory.Candidate, error) {
	listeners, err := d.lister.ListListening(ctx)
	if err != nil {
		return nil, err
	}

	active := make(map[string]bool)
	var cands []inventory.Candidate
	skipped := 0
	for _, l := range listeners {
		if l.PID == "" || l.PID == inventory.UnknownPID {
			continue
		}
		if claimed.Has(l.PID) {
			skipped++
			continue
		}

		name, err := d.resolver.ProcessName(ctx, l.PID)
		if err != nil || name == "" {
			name = l.Process
		}
		if name == "" {
			slog.Debug("socket owner unresolved", slog.String("pid", l.PID), slog.Int("port", int(l.Port)))
		}

		kind := inventory.TypeProcess
		if name != "" {
			isActive, seen := active[name]
			if !seen {
				isActive = d.units != nil && d.units.IsActive(ctx, name)
				active[name] = isActive
			}
			if isActive {
				kind = inventory.TypeSystemd
			}
		}

		cands = append(cands, inventory.Candidate{
			Type:        kind,
			Name:        name,
			Status:      "running",
			ProcessName: name,
			Ports:       []uint16{l.Port},
			PID:         l.PID,
		})
	}

	slog.Debug("socket scan complete",
		slog.Int("listeners", len(listeners)),
		slog.Int("claimed", skipped),
		slog.Int("candidates", len(cands)))
	return cands, nil
}
