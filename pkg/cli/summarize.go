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
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/fleet-inventory/pkg/errors"
	"github.com/NVIDIA/fleet-inventory/pkg/inventory"
	"github.com/NVIDIA/fleet-inventory/pkg/serializer"
)

func summarizeCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:                  "summarize",
		EnableShellCompletion: true,
		Usage:                 "Summarize inventories collected across a fleet",
		ArgsUsage:             "<file|dir|url|cm://namespace/name>...",
		Description: `Aggregate many inventories: instance and application totals, counts per
application type, average applications per instance, and the most used
ports and image repositories.

Instances are counted by unique instance_id. Inputs that cannot be loaded
or fail validation are skipped with a warning.

# Examples

  appinv summarize inventories/
  appinv summarize --top 5 --format table inventories/*.json`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "top",
				Usage: "number of ports and images to rank",
				Value: inventory.DefaultTopN,
			},
			outputFlag(),
			formatFlag(),
			kubeconfigFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			format, err := parseOutputFormat(cmd.String("format"))
			if err != nil {
				return err
			}
			if cmd.Int("top") < 1 {
				return invalidFlag("top", cmd.Int("top"))
			}
			inputs, err := expandInputs(cmd.Args().Slice())
			if err != nil {
				return err
			}

			load := []serializer.Option{
				serializer.WithKubeconfig(cmd.String("kubeconfig")),
				serializer.WithHTTPReader(a.httpReader()),
			}
			snaps := make([]inventory.Snapshot, 0, len(inputs))
			for _, in := range inputs {
				snap, err := serializer.FromFile[inventory.Snapshot](ctx, in, load...)
				if err != nil {
					slog.Warn("skipping unreadable inventory", "source", in, "error", err)
					continue
				}
				if err := inventory.Validate(*snap, inventory.ValidateOptions{}); err != nil {
					slog.Warn("skipping invalid inventory", "source", in, "problems", inventory.Problems(err))
					continue
				}
				snaps = append(snaps, *snap)
			}
			if len(snaps) == 0 {
				return errors.NewWithContext(errors.ErrCodeInvalidRequest, "no valid inventories to summarize",
					map[string]any{"inputs": len(inputs)})
			}

			summary := inventory.Summarize(snaps, cmd.Int("top"))
			slog.Info("fleet summarized",
				"inventories", len(snaps),
				"skipped", len(inputs)-len(snaps),
				"instances", summary.TotalInstances,
				"applications", summary.TotalApplications)

			ser, err := a.newSerializer(format, cmd.String("output"), serializer.WithKubeconfig(cmd.String("kubeconfig")))
			if err != nil {
				return fmt.Errorf("failed to open output: %w", err)
			}
			if err := ser.Serialize(ctx, summary); err != nil {
				return fmt.Errorf("failed to serialize summary: %w", err)
			}
			return nil
		},
	}
}
