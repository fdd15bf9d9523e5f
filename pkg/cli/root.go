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
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/fleet-inventory/pkg/collector"
	"github.com/NVIDIA/fleet-inventory/pkg/config"
	"github.com/NVIDIA/fleet-inventory/pkg/errors"
	"github.com/NVIDIA/fleet-inventory/pkg/logging"
	"github.com/NVIDIA/fleet-inventory/pkg/serializer"
)

const (
	name           = "appinv"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// app carries state shared by all commands of one invocation.
type app struct {
	file *config.Values

	// stdout receives serialized output when no --output is given.
	stdout io.Writer

	newFactory func(opts ...collector.Option) collector.Factory
	httpReader func() *serializer.HttpReader
}

func newApp() *app {
	return &app{
		stdout: os.Stdout,
		newFactory: func(opts ...collector.Option) collector.Factory {
			return collector.NewDefaultFactory(opts...)
		},
		httpReader: func() *serializer.HttpReader { return serializer.NewHttpReader() },
	}
}

// Execute runs the CLI and exits with a non-zero code on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd(newApp()).Run(ctx, os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	stop()
	os.Exit(exitCode(err))
}

// exitCode maps an error to the process exit code: 0 success, 2 timeout or
// interrupt, 1 anything else.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.IsCode(err, errors.ErrCodeTimeout),
		stderrors.Is(err, context.Canceled),
		stderrors.Is(err, context.DeadlineExceeded):
		return 2
	default:
		return 1
	}
}

func newRootCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:                  name,
		Usage:                 "Fleet application inventory collector",
		Version:               fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		EnableShellCompletion: true,
		Description: `appinv records the applications running on one machine (containers and
listening system services) as a JSON inventory, and validates or summarizes
inventories collected across a fleet.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "KEY=VALUE config file (default " + config.DefaultPath + " when present)",
				Sources: cli.EnvVars("APPINV_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars(logging.EnvLogLevel, config.KeyLogLevel),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			file, err := config.Load(cmd.String("config"))
			if err != nil {
				return ctx, fmt.Errorf("failed to load config: %w", err)
			}
			a.file = file

			level := cmd.String("log-level")
			if !cmd.IsSet("log-level") {
				level = file.String(config.KeyLogLevel, level)
			}
			logging.SetDefaultStructuredLoggerWithLevel(name, version, level)
			slog.Debug("starting",
				"name", name,
				"version", version,
				"commit", commit,
				"date", date,
				"config", file.Path())
			return ctx, nil
		},
		Commands: []*cli.Command{
			collectCmd(a),
			validateCmd(a),
			summarizeCmd(a),
		},
	}
}
