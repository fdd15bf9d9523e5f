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

package container

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/NVIDIA/fleet-inventory/pkg/defaults"
	"github.com/NVIDIA/fleet-inventory/pkg/inventory"
)

// excludedPrefixes are the lifecycle words a runtime prints for containers
// that are not running.
var excludedPrefixes = []string{"Exited", "Created", "Dead"}

// Detector emits one candidate per live container of a single runtime.
type Detector struct {
	kind        inventory.Type
	runtime     Runtime
	concurrency int
	limiter     *rate.Limiter
}

// Option configures a Detector.
type Option func(*Detector)

// WithConcurrency bounds parallel pid inspections.
func WithConcurrency(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.concurrency = n
		}
	}
}

// WithInspectRate paces pid inspections to perSecond calls. Zero disables pacing.
func WithInspectRate(perSecond float64) Option {
	return func(d *Detector) {
		if perSecond <= 0 {
			d.limiter = nil
			return
		}
		burst := int(perSecond)
		if burst < 1 {
			burst = 1
		}
		d.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// NewDetector returns a detector that labels its candidates with kind.
func NewDetector(kind inventory.Type, rt Runtime, opts ...Option) *Detector {
	d := &Detector{
		kind:        kind,
		runtime:     rt,
		concurrency: defaults.InspectConcurrency,
	}
	WithInspectRate(defaults.InspectRate)(d)
	for _, o := range opts {
		o(d)
	}
	return d
}

// Name returns the runtime type, e.g. "docker".
func (d *Detector) Name() string {
	return string(d.kind)
}

// Detect lists containers, drops those in an excluded state and resolves the
// host pid of each survivor. A failed inspection records inventory.UnknownPID.
// claimed is not consulted; container records are never suppressed.
func (d *Detector) Detect(ctx context.Context, _ inventory.PIDSet) ([]inventory.Candidate, error) {
	listCtx, cancel := context.WithTimeout(ctx, defaults.ContainerListTimeout)
	listings, err := d.runtime.ListContainers(listCtx)
	cancel()
	if err != nil {
		return nil, err
	}

	live := make([]Listing, 0, len(listings))
	for _, l := range listings {
		if hasExcludedPrefix(l.Status) {
			slog.Debug("skipping container", slog.String("runtime", d.Name()),
				slog.String("name", l.Name), slog.String("status", l.Status))
			continue
		}
		live = append(live, l)
	}

	pids := make([]string, len(live))
	g := new(errgroup.Group)
	g.SetLimit(d.concurrency)
	for i, l := range live {
		g.Go(func() error {
			pids[i] = d.inspect(ctx, l)
			return nil
		})
	}
	_ = g.Wait()

	cands := make([]inventory.Candidate, 0, len(live))
	for i, l := range live {
		cands = append(cands, inventory.Candidate{
			Type:        d.kind,
			Name:        l.Name,
			Status:      l.Status,
			Image:       l.Image,
			ContainerID: l.ID,
			PortsText:   l.Ports,
			PID:         pids[i],
		})
	}
	return cands, nil
}

func (d *Detector) inspect(ctx context.Context, l Listing) string {
	if l.ID == "" {
		return inventory.UnknownPID
	}
	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return inventory.UnknownPID
		}
	}
	pid, err := d.runtime.InspectPID(ctx, l.ID)
	if err != nil {
		slog.Debug("container pid unresolved", slog.String("runtime", d.Name()),
			slog.String("id", l.ID), slog.String("error", err.Error()))
		return inventory.UnknownPID
	}
	return pid
}

func hasExcludedPrefix(status string) bool {
	for _, p := range excludedPrefixes {
		if strings.HasPrefix(status, p) {
			return true
		}
	}
	return false
}
