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
	"fmt"
	"net"
	"sort"
	"strconv"
	"strings"

	"github.com/docker/docker/api/types"
	dockercontainer "github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"

	"github.com/NVIDIA/fleet-inventory/pkg/errors"
)

// PodmanSocket is the rootful podman service's docker-compatible endpoint.
const PodmanSocket = "unix:///run/podman/podman.sock"

type engineClient interface {
	ContainerList(ctx context.Context, options dockercontainer.ListOptions) ([]types.Container, error)
	ContainerInspect(ctx context.Context, id string) (types.ContainerJSON, error)
}

// APIRuntime talks to a Docker Engine compatible API.
type APIRuntime struct {
	client engineClient
}

// NewAPIRuntime connects to the engine at host, or to the environment's
// DOCKER_HOST when host is empty.
func NewAPIRuntime(host string) (*APIRuntime, error) {
	opts := []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}
	if host != "" {
		opts = append(opts, client.WithHost(host))
	}
	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeUnavailable, "failed to create engine client", err,
			map[string]any{"host": host})
	}
	return &APIRuntime{client: cli}, nil
}

// ListContainers implements Runtime.
func (r *APIRuntime) ListContainers(ctx context.Context) ([]Listing, error) {
	containers, err := r.client.ContainerList(ctx, dockercontainer.ListOptions{All: true})
	if err != nil {
		code := errors.ErrCodeInternal
		if client.IsErrConnectionFailed(err) {
			code = errors.ErrCodeUnavailable
		}
		return nil, errors.Wrap(code, "failed to list containers", err)
	}

	listings := make([]Listing, 0, len(containers))
	for _, c := range containers {
		name := ""
		if len(c.Names) > 0 {
			name = strings.TrimPrefix(c.Names[0], "/")
		}
		listings = append(listings, Listing{
			ID:     shortID(c.ID),
			Name:   name,
			Image:  c.Image,
			Status: c.Status,
			Ports:  FormatPorts(c.Ports),
		})
	}
	return listings, nil
}

// InspectPID implements Runtime.
func (r *APIRuntime) InspectPID(ctx context.Context, id string) (string, error) {
	info, err := r.client.ContainerInspect(ctx, id)
	if err != nil {
		return "", errors.WrapWithContext(errors.ErrCodeInternal, "failed to inspect container", err,
			map[string]any{"id": id})
	}
	if info.ContainerJSONBase == nil || info.State == nil || info.State.Pid == 0 {
		return "", errors.NewWithContext(errors.ErrCodeNotFound, "container has no running process",
			map[string]any{"id": id})
	}
	return strconv.Itoa(info.State.Pid), nil
}

// FormatPorts renders engine port bindings the way "docker ps" prints them.
func FormatPorts(ports []types.Port) string {
	sorted := make([]types.Port, len(ports))
	copy(sorted, ports)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].PrivatePort != sorted[j].PrivatePort {
			return sorted[i].PrivatePort < sorted[j].PrivatePort
		}
		return sorted[i].IP < sorted[j].IP
	})

	parts := make([]string, 0, len(sorted))
	for _, p := range sorted {
		if p.PublicPort == 0 {
			parts = append(parts, fmt.Sprintf("%d/%s", p.PrivatePort, p.Type))
			continue
		}
		host := net.JoinHostPort(p.IP, strconv.Itoa(int(p.PublicPort)))
		parts = append(parts, fmt.Sprintf("%s->%d/%s", host, p.PrivatePort, p.Type))
	}
	return strings.Join(parts, ", ")
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
