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

package collector

import (
	"context"
	"log/slog"

	"github.com/NVIDIA/fleet-inventory/pkg/collector/command"
	"github.com/NVIDIA/fleet-inventory/pkg/collector/container"
	"github.com/NVIDIA/fleet-inventory/pkg/collector/socket"
	"github.com/NVIDIA/fleet-inventory/pkg/collector/systemd"
	"github.com/NVIDIA/fleet-inventory/pkg/defaults"
	"github.com/NVIDIA/fleet-inventory/pkg/errors"
	"github.com/NVIDIA/fleet-inventory/pkg/inventory"
)

// Runtime backends.
const (
	BackendCLI = "cli"
	BackendAPI = "api"
)

// Socket sources.
const (
	SocketSourceAuto   = "auto"
	SocketSourceSS     = "ss"
	SocketSourcePsutil = "psutil"
)

// Factory creates detectors with their dependencies.
// This interface enables dependency injection for testing.
type Factory interface {
	// CreateContainerDetectors returns one detector per runtime, in priority order.
	CreateContainerDetectors() []Detector
	// CreateSocketDetector returns the socket scan detector, or nil when disabled.
	CreateSocketDetector() Detector
}

// DefaultFactory creates detectors with production dependencies.
type DefaultFactory struct {
	Runtimes           []inventory.Type
	Backend            string
	SocketSource       string
	SocketScan         bool
	InspectConcurrency int
	InspectRate        float64
	Runner             command.Runner
}

// Option configures a DefaultFactory.
type Option func(*DefaultFactory)

// WithRuntimes sets the container runtimes in priority order.
func WithRuntimes(runtimes ...inventory.Type) Option {
	return func(f *DefaultFactory) {
		f.Runtimes = runtimes
	}
}

// WithBackend selects how runtimes are queried: BackendCLI or BackendAPI.
func WithBackend(backend string) Option {
	return func(f *DefaultFactory) {
		f.Backend = backend
	}
}

// WithSocketSource selects the socket table source.
func WithSocketSource(source string) Option {
	return func(f *DefaultFactory) {
		f.SocketSource = source
	}
}

// WithSocketScan enables or disables the socket scan detector.
func WithSocketScan(enabled bool) Option {
	return func(f *DefaultFactory) {
		f.SocketScan = enabled
	}
}

// WithInspect sets pid inspection concurrency and rate (calls per second).
func WithInspect(concurrency int, perSecond float64) Option {
	return func(f *DefaultFactory) {
		f.InspectConcurrency = concurrency
		f.InspectRate = perSecond
	}
}

// WithRunner sets the command runner shared by all detectors.
func WithRunner(r command.Runner) Option {
	return func(f *DefaultFactory) {
		f.Runner = r
	}
}

// NewDefaultFactory creates a factory with default settings: docker before
// podman over their CLIs, followed by the socket scan.
func NewDefaultFactory(opts ...Option) *DefaultFactory {
	f := &DefaultFactory{
		Runtimes:           []inventory.Type{inventory.TypeDocker, inventory.TypePodman},
		Backend:            BackendCLI,
		SocketSource:       SocketSourceAuto,
		SocketScan:         true,
		InspectConcurrency: defaults.InspectConcurrency,
		InspectRate:        defaults.InspectRate,
	}
	for _, o := range opts {
		o(f)
	}
	if f.Runner == nil {
		f.Runner = command.NewExecRunner()
	}
	return f
}

// CreateContainerDetectors implements Factory.
func (f *DefaultFactory) CreateContainerDetectors() []Detector {
	detectors := make([]Detector, 0, len(f.Runtimes))
	for _, kind := range f.Runtimes {
		rt, err := f.runtime(kind)
		if err != nil {
			detectors = append(detectors, failedDetector(string(kind), err))
			continue
		}
		detectors = append(detectors, container.NewDetector(kind, rt,
			container.WithConcurrency(f.InspectConcurrency),
			container.WithInspectRate(f.InspectRate)))
	}
	return detectors
}

func (f *DefaultFactory) runtime(kind inventory.Type) (container.Runtime, error) {
	if !kind.IsContainer() {
		return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest, "not a container runtime",
			map[string]any{"runtime": string(kind)})
	}
	if f.Backend != BackendAPI {
		return &container.CLIRuntime{Binary: string(kind), Runner: f.Runner}, nil
	}
	host := ""
	if kind == inventory.TypePodman {
		host = container.PodmanSocket
	}
	return container.NewAPIRuntime(host)
}

// CreateSocketDetector implements Factory.
func (f *DefaultFactory) CreateSocketDetector() Detector {
	if !f.SocketScan {
		return nil
	}

	ss := &socket.SSLister{Runner: f.Runner}
	var lister socket.Lister
	switch f.SocketSource {
	case SocketSourceSS:
		lister = ss
	case SocketSourcePsutil:
		lister = socket.NewPsutilLister()
	default:
		lister = &socket.FallbackLister{Primary: socket.NewPsutilLister(), Secondary: ss}
	}

	resolver := socket.ChainResolver{socket.PsutilResolver{}, &socket.PSResolver{Runner: f.Runner}}
	return socket.NewDetector(lister, resolver, systemd.NewDBusChecker(f.Runner))
}

// NewPipelineFromFactory assembles the detector pipeline in execution order.
func NewPipelineFromFactory(f Factory) *Pipeline {
	var scanners []Detector
	if d := f.CreateSocketDetector(); d != nil {
		scanners = append(scanners, d)
	}
	return NewPipeline(f.CreateContainerDetectors(), scanners)
}

func failedDetector(name string, err error) Detector {
	slog.Warn("detector disabled", slog.String("detector", name), slog.String("error", err.Error()))
	return DetectorFunc{
		ID: name,
		Fn: func(context.Context, inventory.PIDSet) ([]inventory.Candidate, error) {
			return nil, err
		},
	}
}
