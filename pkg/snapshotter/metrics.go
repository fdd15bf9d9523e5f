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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "appinv_collection_duration_seconds",
			Help:    "Time taken to collect a complete inventory",
			Buckets: []float64{0.5, 1, 5, 10, 30, 60, 300},
		},
	)

	runTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "appinv_collection_total",
			Help: "Total number of collection runs",
		},
		[]string{"status"}, // success, error, timeout
	)

	applicationsGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "appinv_applications",
			Help: "Number of applications in the last inventory",
		},
	)

	failedDetectorsGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "appinv_failed_detectors",
			Help: "Number of detectors that failed in the last run",
		},
	)

	lastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "appinv_last_collection_timestamp_seconds",
			Help: "Unix time of the last completed collection",
		},
	)
)
