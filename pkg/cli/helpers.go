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
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/fleet-inventory/pkg/config"
	"github.com/NVIDIA/fleet-inventory/pkg/errors"
	"github.com/NVIDIA/fleet-inventory/pkg/serializer"
)

// Flags hold parse state, so each command gets its own instances.

func outputFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "output destination: file path, cm://namespace/name, or - for stdout",
		Sources: cli.EnvVars(config.KeyOutput),
	}
}

func formatFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"t"},
		Usage:   fmt.Sprintf("output format (%s)", strings.Join(serializer.SupportedFormats(), ", ")),
		Value:   string(serializer.FormatJSON),
		Sources: cli.EnvVars(config.KeyFormat),
	}
}

func kubeconfigFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "kubeconfig",
		Usage:   "kubeconfig used for cm:// inputs and outputs (default: KUBECONFIG, ~/.kube/config, in-cluster)",
		Sources: cli.EnvVars("KUBECONFIG"),
	}
}

// settings resolves a value from the command line or environment first,
// then the config file, then the flag default.
type settings struct {
	cmd  *cli.Command
	file *config.Values
}

func (s settings) str(flag, key string) string {
	if s.cmd.IsSet(flag) {
		return s.cmd.String(flag)
	}
	return s.file.String(key, s.cmd.String(flag))
}

func (s settings) boolean(flag, key string) (bool, error) {
	if s.cmd.IsSet(flag) {
		return s.cmd.Bool(flag), nil
	}
	return s.file.Bool(key, s.cmd.Bool(flag))
}

func (s settings) integer(flag, key string) (int, error) {
	if s.cmd.IsSet(flag) {
		return s.cmd.Int(flag), nil
	}
	return s.file.Int(key, s.cmd.Int(flag))
}

func (s settings) float(flag, key string) (float64, error) {
	if s.cmd.IsSet(flag) {
		return s.cmd.Float(flag), nil
	}
	return s.file.Float(key, s.cmd.Float(flag))
}

func (s settings) duration(flag, key string) (time.Duration, error) {
	if s.cmd.IsSet(flag) {
		return s.cmd.Duration(flag), nil
	}
	return s.file.Duration(key, s.cmd.Duration(flag))
}

// parseOutputFormat validates the --format value.
func parseOutputFormat(value string) (serializer.Format, error) {
	f := serializer.Format(strings.ToLower(strings.TrimSpace(value)))
	if f.IsUnknown() {
		return "", errors.NewWithContext(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("unknown output format %q, want one of %s", value, strings.Join(serializer.SupportedFormats(), ", ")),
			map[string]any{"format": value})
	}
	return f, nil
}

// newSerializer returns the writer for output; stdout goes to a.stdout.
func (a *app) newSerializer(format serializer.Format, output string, opts ...serializer.Option) (serializer.Serializer, error) {
	if o := strings.TrimSpace(output); o == "" || o == "-" {
		return serializer.NewWriter(format, a.stdout), nil
	}
	return serializer.NewFileWriterOrStdout(format, output, opts...)
}

var inventoryExtensions = []string{".json", ".yaml", ".yml"}

// expandInputs turns directory arguments into the inventory files they
// contain, sorted by name. Files, URLs and cm:// URIs pass through.
func expandInputs(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		if serializer.IsRemote(arg) {
			out = append(out, arg)
			continue
		}
		info, err := os.Stat(arg)
		if err != nil {
			return nil, errors.WrapWithContext(errors.ErrCodeNotFound, "input not found", err, map[string]any{"path": arg})
		}
		if !info.IsDir() {
			out = append(out, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, errors.WrapWithContext(errors.ErrCodeInternal, "failed to read directory", err, map[string]any{"path": arg})
		}
		for _, e := range entries {
			if e.IsDir() || !slices.Contains(inventoryExtensions, strings.ToLower(filepath.Ext(e.Name()))) {
				continue
			}
			out = append(out, filepath.Join(arg, e.Name()))
		}
	}
	if len(out) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "no inventory inputs given")
	}
	return out, nil
}
