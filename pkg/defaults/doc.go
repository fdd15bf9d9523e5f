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

// Package defaults provides centralized configuration constants for appinv.
//
// This package defines timeout values and concurrency limits used across the
// codebase. Centralizing these values ensures consistency and makes tuning easier.
//
// # Timeout Categories
//
// Timeouts are organized by component:
//
//   - Collector timeouts: detector runs and the external commands they issue
//   - Identity timeouts: cloud metadata lookups
//   - HTTP client timeouts: for outbound HTTP requests
//   - ConfigMap timeouts: for Kubernetes ConfigMap reads and writes
//   - CLI timeouts: the wall-clock ceiling of one collection
//
// # Usage
//
// Import and use constants directly:
//
//	import "github.com/NVIDIA/fleet-inventory/pkg/defaults"
//
//	ctx, cancel := context.WithTimeout(ctx, defaults.CommandTimeout)
//	defer cancel()
//
// # Timeout Guidelines
//
//   - Commands: 10s each, a failed or slow command degrades to "no data"
//   - Detectors: 60s, respects parent context deadline
//   - Metadata: 2s, so collections off-cloud are not held up
//   - Whole run: 5m, applied by the CLI
package defaults
