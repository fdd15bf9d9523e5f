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

package container

import (
	"context"
	"strings"

	"github.com/NVIDIA/fleet-inventory/pkg/collector/command"
	"github.com/NVIDIA/fleet-inventory/pkg/errors"
)

// Listing is one container as reported by a runtime, fields verbatim.
type Listing struct {
	ID     string
	Name   string
	Image  string
	Status string
	// Ports is the runtime's port mapping text, e.g. "0.0.0.0:80->80/tcp, 443/tcp".
	Ports string
}

// Runtime lists containers and resolves their host process ids.
type Runtime interface {
	// ListContainers returns all containers, including stopped ones.
	ListContainers(ctx context.Context) ([]Listing, error)
	// InspectPID returns the host pid of the container's main process.
	InspectPID(ctx context.Context, id string) (string, error)
}

const listFormat = "{{.ID}}\t{{.Names}}\t{{.Image}}\t{{.Status}}\t{{.Ports}}"

// CLIRuntime drives a docker-compatible command line client.
type CLIRuntime struct {
	// Binary is the client executable, e.g. "docker" or "podman".
	Binary string
	Runner command.Runner
}

// NewCLIRuntime returns a CLIRuntime for binary using the exec runner.
func NewCLIRuntime(binary string) *CLIRuntime {
	return &CLIRuntime{Binary: binary, Runner: command.NewExecRunner()}
}

// ListContainers implements Runtime.
func (r *CLIRuntime) ListContainers(ctx context.Context) ([]Listing, error) {
	out, err := r.Runner.Run(ctx, []string{r.Binary, "ps", "-a", "--format", listFormat})
	if err != nil {
		code := errors.CodeOf(err)
		if code == "" {
			code = errors.ErrCodeInternal
		}
		return nil, errors.WrapWithContext(code, "failed to list containers", err,
			map[string]any{"runtime": r.Binary})
	}
	return ParseListing(out), nil
}

// InspectPID implements Runtime.
func (r *CLIRuntime) InspectPID(ctx context.Context, id string) (string, error) {
	out, err := r.Runner.Run(ctx, []string{r.Binary, "inspect", "--format", "{{.State.Pid}}", id})
	if err != nil {
		return "", err
	}
	pid := strings.TrimSpace(out)
	if pid == "" || pid == "0" {
		return "", errors.NewWithContext(errors.ErrCodeNotFound, "container has no running process",
			map[string]any{"id": id})
	}
	return pid, nil
}

// ParseListing parses tab separated "ps --format" output. Short lines yield
// listings with empty trailing fields, which normalization later rejects.
func ParseListing(out string) []Listing {
	var listings []Listing
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		f := strings.SplitN(line, "\t", 5)
		for len(f) < 5 {
			f = append(f, "")
		}
		listings = append(listings, Listing{
			ID:     strings.TrimSpace(f[0]),
			Name:   strings.TrimSpace(f[1]),
			Image:  strings.TrimSpace(f[2]),
			Status: strings.TrimSpace(f[3]),
			Ports:  strings.TrimSpace(f[4]),
		})
	}
	return listings
}
