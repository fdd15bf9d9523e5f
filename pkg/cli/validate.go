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
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/fleet-inventory/pkg/errors"
	"github.com/NVIDIA/fleet-inventory/pkg/inventory"
	"github.com/NVIDIA/fleet-inventory/pkg/serializer"
)

// ValidationResult is the outcome for one input.
type ValidationResult struct {
	Source       string   `json:"source" yaml:"source"`
	Valid        bool     `json:"valid" yaml:"valid"`
	InstanceID   string   `json:"instance_id,omitempty" yaml:"instance_id,omitempty"`
	Applications int      `json:"applications" yaml:"applications"`
	Problems     []string `json:"problems,omitempty" yaml:"problems,omitempty"`
}

// ValidationReport lists the results of one validate run.
type ValidationReport struct {
	Valid   int                `json:"valid" yaml:"valid"`
	Invalid int                `json:"invalid" yaml:"invalid"`
	Results []ValidationResult `json:"results" yaml:"results"`
}

// Table renders one row per input.
func (r ValidationReport) Table() ([]string, [][]string) {
	rows := make([][]string, 0, len(r.Results))
	for _, res := range r.Results {
		status := "valid"
		if !res.Valid {
			status = "invalid"
		}
		rows = append(rows, []string{
			res.Source, status, res.InstanceID, strconv.Itoa(res.Applications), strings.Join(res.Problems, "; "),
		})
	}
	return []string{"SOURCE", "STATUS", "INSTANCE", "APPS", "PROBLEMS"}, rows
}

func validateCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:                  "validate",
		EnableShellCompletion: true,
		Usage:                 "Validate inventories against the inventory format",
		ArgsUsage:             "<file|dir|url|cm://namespace/name>...",
		Description: `Check that inventories can be ingested: instance_id and instance_name are
set, applications is a list whose entries have a name and type,
total_applications matches the list, and script_version is compatible.

--strict also requires unique name/type pairs, the container or service
record shape, and at least one pid per application.

Directories are expanded to the .json, .yaml and .yml files they contain.
The command fails if any input is invalid.

# Examples

  appinv validate inventory.json
  appinv validate --strict --format table inventories/
  appinv validate cm://fleet/web-01 https://inventories.example.com/db-01.json`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "also enforce unique keys, record shape and non-empty pids",
			},
			&cli.BoolFlag{
				Name:  "require-applications",
				Usage: "reject inventories with no applications",
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
			inputs, err := expandInputs(cmd.Args().Slice())
			if err != nil {
				return err
			}

			opts := inventory.ValidateOptions{
				Strict:              cmd.Bool("strict"),
				RequireApplications: cmd.Bool("require-applications"),
			}
			load := []serializer.Option{
				serializer.WithKubeconfig(cmd.String("kubeconfig")),
				serializer.WithHTTPReader(a.httpReader()),
			}

			report := ValidationReport{Results: make([]ValidationResult, 0, len(inputs))}
			for _, in := range inputs {
				res := validateOne(ctx, in, opts, load)
				if res.Valid {
					report.Valid++
				} else {
					report.Invalid++
				}
				report.Results = append(report.Results, res)
			}

			ser, err := a.newSerializer(format, cmd.String("output"), serializer.WithKubeconfig(cmd.String("kubeconfig")))
			if err != nil {
				return fmt.Errorf("failed to open output: %w", err)
			}
			if err := ser.Serialize(ctx, report); err != nil {
				return fmt.Errorf("failed to serialize validation report: %w", err)
			}

			slog.Info("validation completed", "valid", report.Valid, "invalid", report.Invalid)
			if report.Invalid > 0 {
				return errors.NewWithContext(errors.ErrCodeInvalidRequest,
					fmt.Sprintf("%d of %d inventories failed validation", report.Invalid, len(inputs)),
					map[string]any{"invalid": report.Invalid})
			}
			return nil
		},
	}
}

func validateOne(ctx context.Context, source string, opts inventory.ValidateOptions, load []serializer.Option) ValidationResult {
	res := ValidationResult{Source: source}
	snap, err := serializer.FromFile[inventory.Snapshot](ctx, source, load...)
	if err != nil {
		res.Problems = []string{err.Error()}
		return res
	}
	res.InstanceID = snap.InstanceID
	res.Applications = len(snap.Applications)

	if err := inventory.Validate(*snap, opts); err != nil {
		res.Problems = inventory.Problems(err)
		if len(res.Problems) == 0 {
			res.Problems = []string{err.Error()}
		}
		return res
	}
	res.Valid = true
	return res
}
