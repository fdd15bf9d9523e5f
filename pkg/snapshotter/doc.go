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

// Package snapshotter runs one inventory collection end to end.
//
// InventorySnapshotter resolves the instance identity while the detector
// pipeline runs, assembles the snapshot and hands it to a serializer:
//
//	s := &snapshotter.InventorySnapshotter{
//	    Version:    version,
//	    Factory:    collector.NewDefaultFactory(collector.WithRuntimes(inventory.TypeDocker)),
//	    Identity:   &identity.Resolver{MetadataURL: identity.DefaultMetadataURL, Reader: serializer.NewHttpReader()},
//	    Serializer: serializer.NewStdoutWriter(serializer.FormatJSON),
//	}
//	if err := s.Measure(ctx); err != nil {
//	    return err
//	}
//
// Detector failures are logged and counted but do not fail the run. The run
// fails when the context ends before detection completes, so a truncated
// inventory is never emitted.
//
// # Metrics
//
//	appinv_collection_duration_seconds        histogram
//	appinv_collection_total{status}           success | error | timeout
//	appinv_applications                       gauge
//	appinv_failed_detectors                   gauge
//	appinv_last_collection_timestamp_seconds  gauge
//
// With MetricsFile set, the registry is written in node_exporter textfile
// format after every run.
package snapshotter
