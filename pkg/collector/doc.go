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

// Package collector runs the application detectors of one collection run.
//
// # Detectors
//
// A Detector observes one source on the host and returns raw candidates:
//
//	type Detector interface {
//	    Name() string
//	    Detect(ctx context.Context, claimed inventory.PIDSet) ([]inventory.Candidate, error)
//	}
//
// Implementations live in subpackages:
//   - container: docker and podman, one detector per runtime
//   - socket: listening TCP sockets, classified as systemd services or bare processes
//
// Host access is isolated in command (exec runner) and systemd (active unit
// lookups) so every detector can be exercised with canned output.
//
// # Pipeline
//
// Pipeline runs container detectors in runtime priority order and only then
// the socket scan, handing it the set of pids the containers own. Every
// candidate is normalized and folded into an inventory.Index as it arrives:
//
//	p := collector.NewPipelineFromFactory(collector.NewDefaultFactory(
//	    collector.WithRuntimes(inventory.TypeDocker, inventory.TypePodman),
//	    collector.WithBackend(collector.BackendCLI),
//	))
//	res := p.Run(ctx)
//	snap := inventory.Assemble(id, inventory.SchemaVersion, res.Records)
//
// A failing detector is logged, counted in appinv_detector_errors_total and
// listed in Result.Failed. The run continues with the remaining detectors.
//
// # Factory Pattern
//
// The Factory interface abstracts detector creation for tests. DefaultFactory
// wires production dependencies: the exec runner, the docker SDK when the api
// backend is selected, gopsutil socket tables with an ss fallback, and the
// systemd D-Bus checker with a systemctl fallback.
package collector
