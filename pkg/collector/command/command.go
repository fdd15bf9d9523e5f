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

package command

import (
	"bytes"
	"context"
	stderrors "errors"
	"os/exec"
	"strings"
	"time"

	"github.com/NVIDIA/fleet-inventory/pkg/defaults"
	"github.com/NVIDIA/fleet-inventory/pkg/errors"
)

// Runner executes a host command and returns its standard output.
type Runner interface {
	Run(ctx context.Context, command []string) (string, error)
}

// ExecRunner runs commands with os/exec, each under its own timeout.
type ExecRunner struct {
	// Timeout bounds each command. Zero uses defaults.CommandTimeout.
	Timeout time.Duration
}

// NewExecRunner returns an ExecRunner with the default per-command timeout.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{Timeout: defaults.CommandTimeout}
}

// Run implements Runner.
// A missing binary yields ErrCodeUnavailable, an expired deadline yields
// ErrCodeTimeout and a non-zero exit yields ErrCodeInternal with stderr in
// the error context.
func (r *ExecRunner) Run(ctx context.Context, command []string) (string, error) {
	if len(command) == 0 || command[0] == "" {
		return "", errors.New(errors.ErrCodeInvalidRequest, "empty command")
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = defaults.CommandTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.String(), nil
	}

	ectx := map[string]any{"command": strings.Join(command, " ")}
	switch {
	case stderrors.Is(err, exec.ErrNotFound):
		return "", errors.WrapWithContext(errors.ErrCodeUnavailable, "command not available", err, ectx)
	case ctx.Err() != nil:
		return "", errors.FromContext(ctx.Err(), "command did not complete", ectx)
	}
	if msg := strings.TrimSpace(stderr.String()); msg != "" {
		ectx["stderr"] = msg
	}
	return stdout.String(), errors.WrapWithContext(errors.ErrCodeInternal, "command failed", err, ectx)
}

// Lines splits command output into trimmed, non-empty lines.
func Lines(out string) []string {
	raw := strings.Split(out, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
