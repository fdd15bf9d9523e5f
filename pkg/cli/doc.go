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

// Package cli implements the appinv command line.
//
// # Commands
//
// collect (alias snapshot) - Collect the inventory of this machine:
//
//	appinv collect [--runtime docker,podman] [--runtime-backend cli|api]
//	    [--socket-scan] [--socket-source auto|ss|psutil]
//	    [--instance-id ID] [--instance-name NAME] [--metadata-url URL]
//	    [--output PATH|cm://ns/name] [--format json|yaml|table]
//	    [--timeout 5m] [--metrics-file PATH]
//
// validate - Check inventories against the inventory format:
//
//	appinv validate [--strict] [--require-applications] <input>...
//
// summarize - Aggregate inventories from many instances:
//
//	appinv summarize [--top N] <input>...
//
// Inputs are files, directories of .json/.yaml/.yml files, http(s) URLs or
// cm://namespace/name ConfigMaps.
//
// # Configuration
//
// Every collect flag has an APPINV_* environment variable. Values are taken
// from the command line or environment first, then from the KEY=VALUE config
// file (--config, default /etc/appinv/appinv.conf when present), then from
// the flag default:
//
//	# /etc/appinv/appinv.conf
//	APPINV_RUNTIMES=podman
//	APPINV_OUTPUT=/var/lib/appinv/inventory.json
//	APPINV_METRICS_FILE=/var/lib/node_exporter/appinv.prom
//
// # Exit Codes
//
//	0  Success
//	1  General error (invalid arguments, invalid inventories, output failure)
//	2  Interrupted or timed out
//
// Version information is embedded at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/NVIDIA/fleet-inventory/pkg/cli.version=1.0.0'"
package cli
