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

	"github.com/NVIDIA/fleet-inventory/pkg/inventory"
)

// Detector observes one source on the local host and emits raw candidates.
//
// claimed holds the pids already owned by containers found earlier in the
// run. Detectors that emit service records must skip sockets owned by those
// pids. A Detector returns whatever candidates it could gather alongside any
// error; the pipeline logs the error and keeps the candidates.
type Detector interface {
	Name() string
	Detect(ctx context.Context, claimed inventory.PIDSet) ([]inventory.Candidate, error)
}

// DetectorFunc adapts a function into a Detector.
type DetectorFunc struct {
	ID string
	Fn func(ctx context.Context, claimed inventory.PIDSet) ([]inventory.Candidate, error)
}

// Name implements Detector.
func (d DetectorFunc) Name() string { return d.ID }

// Detect implements Detector.
func (d DetectorFunc) Detect(ctx context.Context, claimed inventory.PIDSet) ([]inventory.Candidate, error) {
	return d.Fn(ctx, claimed)
}
