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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	detectorDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "appinv_detector_duration_seconds",
			Help:    "Time taken by individual detectors",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 10, 30},
		},
		[]string{"detector"}, // docker, podman, socket
	)

	detectorErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "appinv_detector_errors_total",
			Help: "Total number of detector failures by error code",
		},
		[]string{"detector", "code"},
	)

	candidateOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "appinv_candidates_total",
			Help: "Total number of candidates by normalization outcome",
		},
		[]string{"detector", "outcome"}, // accepted, excluded, malformed, unidentified
	)

	claimedPIDs = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "appinv_claimed_pids",
			Help: "Number of container pids excluded from the socket scan in the last run",
		},
	)
)
