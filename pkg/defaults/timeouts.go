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

package defaults

import "time"

// Collector timeouts for data collection operations.
const (
	// CollectorTimeout is the default timeout for one detector run.
	// Detectors should respect parent context deadlines when shorter.
	CollectorTimeout = 60 * time.Second

	// CommandTimeout bounds a single external command (ps, inspect, ss, systemctl).
	CommandTimeout = 10 * time.Second

	// ContainerListTimeout bounds listing all containers of one runtime.
	ContainerListTimeout = 30 * time.Second

	// InspectConcurrency is the number of concurrent container pid inspections.
	InspectConcurrency = 4

	// InspectRate is the default number of container inspect calls per second.
	InspectRate = 20
)

// Identity timeouts for instance metadata lookups.
const (
	// MetadataTimeout bounds one cloud metadata request. Metadata endpoints
	// answer in milliseconds when present, so this stays short off-cloud.
	MetadataTimeout = 2 * time.Second
)

// HTTP client timeouts for outbound requests.
const (
	// HTTPClientTimeout is the default total timeout for HTTP requests.
	HTTPClientTimeout = 30 * time.Second

	// HTTPConnectTimeout is the timeout for establishing connections.
	HTTPConnectTimeout = 5 * time.Second

	// HTTPTLSHandshakeTimeout is the timeout for TLS handshake.
	HTTPTLSHandshakeTimeout = 5 * time.Second

	// HTTPResponseHeaderTimeout is the timeout for reading response headers.
	HTTPResponseHeaderTimeout = 10 * time.Second

	// HTTPIdleConnTimeout is the timeout for idle connections in the pool.
	HTTPIdleConnTimeout = 90 * time.Second

	// HTTPKeepAlive is the keep-alive duration for connections.
	HTTPKeepAlive = 30 * time.Second

	// HTTPExpectContinueTimeout is the timeout for Expect: 100-continue.
	HTTPExpectContinueTimeout = 1 * time.Second
)

// ConfigMap timeouts for Kubernetes ConfigMap operations.
const (
	// ConfigMapWriteTimeout is the timeout for writing to ConfigMaps.
	ConfigMapWriteTimeout = 30 * time.Second

	// ConfigMapReadTimeout is the timeout for reading inventories from ConfigMaps.
	ConfigMapReadTimeout = 30 * time.Second
)

// CLI timeouts for command-line operations.
const (
	// CLICollectTimeout is the default wall-clock ceiling for one collection run.
	CLICollectTimeout = 5 * time.Minute
)
