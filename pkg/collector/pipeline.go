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
	"time"

	"github.com/NVIDIA/fleet-inventory/pkg/defaults"
	"github.com/NVIDIA/fleet-inventory/pkg/errors"
	"github.com/NVIDIA/fleet-inventory/pkg/inventory"
)

const (
	outcomeAccepted     = "accepted"
	outcomeExcluded     = "excluded"
	outcomeMalformed    = "malformed"
	outcomeUnidentified = "unidentified"
)

// Pipeline runs detectors in a fixed order and folds their candidates into
// one record per identity key.
//
// All container detectors run, in runtime priority order, before any
// scanner, so the claimed pid set is complete when the socket scan starts.
type Pipeline struct {
	containers []Detector
	scanners   []Detector
}

// NewPipeline returns a pipeline running containers first, then scanners.
func NewPipeline(containers, scanners []Detector) *Pipeline {
	return &Pipeline{containers: containers, scanners: scanners}
}

// Result is the outcome of one pipeline run.
type Result struct {
	// Records are the deduplicated records in first-seen order.
	Records []inventory.ApplicationRecord
	// Claimed are the container pids withheld from the socket scan.
	Claimed inventory.PIDSet
	// Failed names the detectors that returned an error.
	Failed []string
}

// Detectors returns the detector names in execution order.
func (p *Pipeline) Detectors() []string {
	names := make([]string, 0, len(p.containers)+len(p.scanners))
	for _, d := range p.containers {
		names = append(names, d.Name())
	}
	for _, d := range p.scanners {
		names = append(names, d.Name())
	}
	return names
}

// Run executes every detector once. Detector failures are logged and counted;
// they never abort the run.
func (p *Pipeline) Run(ctx context.Context) Result {
	res := Result{Claimed: inventory.NewPIDSet()}
	ix := inventory.NewIndex()

	for _, d := range p.containers {
		cands := p.detect(ctx, d, res.Claimed, &res)
		for _, c := range cands {
			if c.Type.IsContainer() {
				res.Claimed.Add(c.PID)
			}
		}
		fold(ix, d.Name(), cands)
	}
	claimedPIDs.Set(float64(res.Claimed.Len()))
	slog.Debug("container pids claimed", slog.Int("count", res.Claimed.Len()))

	for _, d := range p.scanners {
		fold(ix, d.Name(), p.detect(ctx, d, res.Claimed, &res))
	}

	res.Records = ix.Records()
	return res
}

func (p *Pipeline) detect(ctx context.Context, d Detector, claimed inventory.PIDSet, res *Result) []inventory.Candidate {
	name := d.Name()
	start := time.Now()
	defer func() {
		detectorDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}()

	dctx, cancel := context.WithTimeout(ctx, defaults.CollectorTimeout)
	defer cancel()
	cands, err := d.Detect(dctx, claimed)
	if err != nil {
		code := errors.CodeOf(err)
		if code == "" {
			code = errors.ErrCodeInternal
		}
		detectorErrors.WithLabelValues(name, string(code)).Inc()
		res.Failed = append(res.Failed, name)
		level := slog.LevelWarn
		if code == errors.ErrCodeUnavailable {
			level = slog.LevelInfo
		}
		slog.Log(ctx, level, "detector failed",
			slog.String("detector", name),
			slog.String("code", string(code)),
			slog.String("error", err.Error()),
			slog.Int("candidates", len(cands)))
	}

	slog.Debug("detector complete",
		slog.String("detector", name),
		slog.Int("candidates", len(cands)),
		slog.Duration("duration", time.Since(start)))
	return cands
}

func fold(ix *inventory.Index, detector string, cands []inventory.Candidate) {
	for _, c := range cands {
		rec, err := inventory.Normalize(c)
		if err != nil {
			outcome := outcomeMalformed
			if errors.IsCode(err, errors.ErrCodeExcluded) {
				outcome = outcomeExcluded
			}
			candidateOutcomes.WithLabelValues(detector, outcome).Inc()
			slog.Debug("candidate dropped",
				slog.String("detector", detector),
				slog.String("key", c.Key().String()),
				slog.String("reason", err.Error()))
			continue
		}
		if !ix.Add(rec) {
			candidateOutcomes.WithLabelValues(detector, outcomeUnidentified).Inc()
			continue
		}
		candidateOutcomes.WithLabelValues(detector, outcomeAccepted).Inc()
	}
}
