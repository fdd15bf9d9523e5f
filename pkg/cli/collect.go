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

package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/fleet-inventory/pkg/collector"
	"github.com/NVIDIA/fleet-inventory/pkg/config"
	"github.com/NVIDIA/fleet-inventory/pkg/defaults"
	"github.com/NVIDIA/fleet-inventory/pkg/errors"
	"github.com/NVIDIA/fleet-inventory/pkg/identity"
	"github.com/NVIDIA/fleet-inventory/pkg/inventory"
	"github.com/NVIDIA/fleet-inventory/pkg/serializer"
	"github.com/NVIDIA/fleet-inventory/pkg/snapshotter"
)

func collectCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:                  "collect",
		Aliases:               []string{"snapshot"},
		EnableShellCompletion: true,
		Usage:                 "Collect the application inventory of this machine",
		Description: `Detect running containers and listening services and emit one inventory.

Container runtimes are queried first, in the order given by --runtime. Their
container pids are withheld from the socket scan, which reports the remaining
listening processes as systemd services or plain processes.

# Examples

Print the inventory as JSON:
  appinv collect

Write YAML to a file using only docker through its API socket:
  appinv collect --runtime docker --runtime-backend api -o inventory.yaml -t yaml

Store the inventory in a ConfigMap:
  appinv collect --output cm://fleet/$(hostname)

Collect without the cloud metadata lookup:
  appinv collect --metadata-url "" --instance-name web-01`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "runtime",
				Usage:   "comma separated container runtimes in priority order (docker, podman); empty disables",
				Value:   "docker,podman",
				Sources: cli.EnvVars(config.KeyRuntimes),
			},
			&cli.StringFlag{
				Name:    "runtime-backend",
				Usage:   "how runtimes are queried: cli or api",
				Value:   collector.BackendCLI,
				Sources: cli.EnvVars(config.KeyRuntimeBackend),
			},
			&cli.BoolFlag{
				Name:    "socket-scan",
				Usage:   "scan listening TCP sockets for non-container services",
				Value:   true,
				Sources: cli.EnvVars(config.KeySocketScan),
			},
			&cli.StringFlag{
				Name:    "socket-source",
				Usage:   "listening socket source: auto, ss or psutil",
				Value:   collector.SocketSourceAuto,
				Sources: cli.EnvVars(config.KeySocketSource),
			},
			&cli.IntFlag{
				Name:    "inspect-concurrency",
				Usage:   "maximum concurrent container pid lookups",
				Value:   defaults.InspectConcurrency,
				Sources: cli.EnvVars(config.KeyInspectConcurrency),
			},
			&cli.FloatFlag{
				Name:    "inspect-rate",
				Usage:   "maximum container pid lookups per second (0 for unlimited)",
				Value:   defaults.InspectRate,
				Sources: cli.EnvVars(config.KeyInspectRate),
			},
			&cli.StringFlag{
				Name:    "instance-id",
				Usage:   "instance id (default: metadata service, then node or host name)",
				Sources: cli.EnvVars(config.KeyInstanceID),
			},
			&cli.StringFlag{
				Name:    "instance-name",
				Usage:   "instance name (default: metadata service, then node or host name)",
				Sources: cli.EnvVars(config.KeyInstanceName),
			},
			&cli.StringFlag{
				Name:    "metadata-url",
				Usage:   "cloud metadata base URL; empty disables the lookup",
				Value:   identity.DefaultMetadataURL,
				Sources: cli.EnvVars(config.KeyMetadataURL),
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Usage:   "wall-clock limit for the whole collection",
				Value:   defaults.CLICollectTimeout,
				Sources: cli.EnvVars(config.KeyTimeout),
			},
			&cli.StringFlag{
				Name:    "metrics-file",
				Usage:   "write run metrics in node_exporter textfile format to this path",
				Sources: cli.EnvVars(config.KeyMetricsFile),
			},
			outputFlag(),
			formatFlag(),
			kubeconfigFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			opts, err := parseCollectOptions(settings{cmd: cmd, file: a.file})
			if err != nil {
				return err
			}

			collectionID := uuid.NewString()
			ser, err := a.newSerializer(opts.format, opts.output,
				serializer.WithKubeconfig(cmd.String("kubeconfig")),
				serializer.WithCollectionID(collectionID))
			if err != nil {
				return fmt.Errorf("failed to open output: %w", err)
			}

			ctx, cancel := context.WithTimeout(ctx, opts.timeout)
			defer cancel()

			s := &snapshotter.InventorySnapshotter{
				Version:      version,
				CollectionID: collectionID,
				Factory:      a.newFactory(opts.factory...),
				Identity: &identity.Resolver{
					InstanceID:   opts.instanceID,
					InstanceName: opts.instanceName,
					MetadataURL:  opts.metadataURL,
					Reader:       a.httpReader(),
				},
				Serializer:  ser,
				MetricsFile: opts.metricsFile,
			}
			return s.Measure(ctx)
		},
	}
}

type collectOptions struct {
	factory      []collector.Option
	instanceID   string
	instanceName string
	metadataURL  string
	output       string
	format       serializer.Format
	timeout      time.Duration
	metricsFile  string
}

func parseCollectOptions(s settings) (*collectOptions, error) {
	runtimes, err := parseRuntimes(s.str("runtime", config.KeyRuntimes))
	if err != nil {
		return nil, err
	}

	backend := strings.ToLower(s.str("runtime-backend", config.KeyRuntimeBackend))
	if backend != collector.BackendCLI && backend != collector.BackendAPI {
		return nil, invalidFlag("runtime-backend", backend)
	}

	source := strings.ToLower(s.str("socket-source", config.KeySocketSource))
	switch source {
	case collector.SocketSourceAuto, collector.SocketSourceSS, collector.SocketSourcePsutil:
	default:
		return nil, invalidFlag("socket-source", source)
	}

	scan, err := s.boolean("socket-scan", config.KeySocketScan)
	if err != nil {
		return nil, err
	}
	concurrency, err := s.integer("inspect-concurrency", config.KeyInspectConcurrency)
	if err != nil {
		return nil, err
	}
	if concurrency < 1 {
		return nil, invalidFlag("inspect-concurrency", concurrency)
	}
	rate, err := s.float("inspect-rate", config.KeyInspectRate)
	if err != nil {
		return nil, err
	}
	if rate < 0 {
		return nil, invalidFlag("inspect-rate", rate)
	}
	timeout, err := s.duration("timeout", config.KeyTimeout)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		return nil, invalidFlag("timeout", timeout)
	}
	format, err := parseOutputFormat(s.str("format", config.KeyFormat))
	if err != nil {
		return nil, err
	}

	return &collectOptions{
		factory: []collector.Option{
			collector.WithRuntimes(runtimes...),
			collector.WithBackend(backend),
			collector.WithSocketSource(source),
			collector.WithSocketScan(scan),
			collector.WithInspect(concurrency, rate),
		},
		instanceID:   s.str("instance-id", config.KeyInstanceID),
		instanceName: s.str("instance-name", config.KeyInstanceName),
		metadataURL:  strings.TrimSpace(s.str("metadata-url", config.KeyMetadataURL)),
		output:       s.str("output", config.KeyOutput),
		format:       format,
		timeout:      timeout,
		metricsFile:  s.str("metrics-file", config.KeyMetricsFile),
	}, nil
}

func parseRuntimes(value string) ([]inventory.Type, error) {
	var out []inventory.Type
	seen := map[inventory.Type]bool{}
	for _, name := range config.SplitList(value) {
		t := inventory.Type(strings.ToLower(name))
		if !t.IsContainer() {
			return nil, invalidFlag("runtime", name)
		}
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out, nil
}

func invalidFlag(flag string, value any) error {
	return errors.NewWithContext(errors.ErrCodeInvalidRequest,
		fmt.Sprintf("invalid --%s value %v", flag, value),
		map[string]any{"flag": flag, "value": value})
}
