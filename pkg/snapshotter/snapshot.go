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

package snapshotter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/NVIDIA/fleet-inventory/pkg/collector"
	"github.com/NVIDIA/fleet-inventory/pkg/errors"
	"github.com/NVIDIA/fleet-inventory/pkg/inventory"
	"github.com/NVIDIA/fleet-inventory/pkg/serializer"
)

// Snapshotter produces and emits one inventory.
type Snapshotter interface {
	Measure(ctx context.Context) error
}

// IdentityResolver names the local instance.
type IdentityResolver interface {
	Resolve(ctx context.Context) inventory.Identity
}

// Runner executes the detector pipeline.
type Runner interface {
	Run(ctx context.Context) collector.Result
}

// InventorySnapshotter collects the local inventory and writes it to the
// configured serializer. Identity resolution runs alongside detection.
type InventorySnapshotter struct {
	// Version is the binary version, logged with the run.
	Version string

	// CollectionID tags logs for this run. Generated when empty.
	CollectionID string

	// Factory builds the pipeline when Pipeline is nil.
	Factory collector.Factory

	// Pipeline overrides the factory-built pipeline.
	Pipeline Runner

	// Identity resolves the instance identity. Required.
	Identity IdentityResolver

	// Serializer receives the snapshot. Defaults to JSON on stdout.
	Serializer serializer.Serializer

	// MetricsFile, when set, receives the default registry in textfile
	// collector format after the run.
	MetricsFile string

	// Gatherer is written to MetricsFile. Defaults to prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
}

// Measure collects, serializes and records metrics for one run.
func (s *InventorySnapshotter) Measure(ctx context.Context) (err error) {
	start := time.Now()
	defer func() {
		runDuration.Observe(time.Since(start).Seconds())
		runTotal.WithLabelValues(runStatus(err)).Inc()
		if werr := s.writeMetrics(); werr != nil && err == nil {
			err = werr
		}
	}()

	snap, err := s.Collect(ctx)
	if err != nil {
		return err
	}

	ser := s.Serializer
	if ser == nil {
		ser = serializer.NewStdoutWriter(serializer.FormatJSON)
	}
	if err := ser.Serialize(ctx, snap); err != nil {
		slog.Error("failed to serialize inventory", slog.String("error", err.Error()))
		return fmt.Errorf("failed to serialize: %w", err)
	}
	lastRunTimestamp.SetToCurrentTime()
	return nil
}

// Collect runs identity resolution and the detector pipeline and assembles
// the snapshot. It fails only when the context ends before the pipeline
// completes.
func (s *InventorySnapshotter) Collect(ctx context.Context) (inventory.Snapshot, error) {
	if s.Identity == nil {
		return inventory.Snapshot{}, errors.New(errors.ErrCodeInvalidRequest, "identity resolver is required")
	}
	if s.CollectionID == "" {
		s.CollectionID = uuid.NewString()
	}
	pipeline := s.Pipeline
	if pipeline == nil {
		f := s.Factory
		if f == nil {
			f = collector.NewDefaultFactory()
		}
		pipeline = collector.NewPipelineFromFactory(f)
	}

	log := slog.With(slog.String("collection_id", s.CollectionID))
	log.Info("starting inventory collection", slog.String("version", s.Version))

	var (
		id  inventory.Identity
		res collector.Result
	)
	// Neither goroutine returns an error; the group only joins them.
	g := new(errgroup.Group)
	g.Go(func() error {
		id = s.Identity.Resolve(ctx)
		return nil
	})
	g.Go(func() error {
		res = pipeline.Run(ctx)
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return inventory.Snapshot{}, errors.FromContext(err, "collection did not finish",
			map[string]any{"collection_id": s.CollectionID})
	}

	snap := inventory.Assemble(id, inventory.SchemaVersion, res.Records)
	applicationsGauge.Set(float64(snap.TotalApplications))
	failedDetectorsGauge.Set(float64(len(res.Failed)))

	log.Info("inventory collected",
		slog.String("instance_id", snap.InstanceID),
		slog.Int("applications", snap.TotalApplications),
		slog.Int("claimed_pids", res.Claimed.Len()),
		slog.Any("failed_detectors", res.Failed))
	return snap, nil
}

func (s *InventorySnapshotter) writeMetrics() error {
	if s.MetricsFile == "" {
		return nil
	}
	g := s.Gatherer
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	if err := prometheus.WriteToTextfile(s.MetricsFile, g); err != nil {
		return errors.WrapWithContext(errors.ErrCodeInternal, "failed to write metrics file", err,
			map[string]any{"path": s.MetricsFile})
	}
	return nil
}

func runStatus(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.IsCode(err, errors.ErrCodeTimeout):
		return "timeout"
	default:
		return "error"
	}
}
