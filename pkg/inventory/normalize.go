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

package inventory

import (
	"strings"

	"k8s.io/utils/ptr"

	"github.com/NVIDIA/fleet-inventory/pkg/errors"
)

// Candidate is a raw, not yet normalized observation emitted by one detector.
// Container detectors fill Image, ContainerID and PortsText; service detectors
// fill ProcessName and Ports.
type Candidate struct {
	Type        Type
	Name        string
	Status      string
	Image       string
	ContainerID string
	ProcessName string
	PortsText   string
	Ports       []uint16
	PID         string
}

// Key returns the identity key the candidate will normalize to.
func (c Candidate) Key() Key {
	return Key{Name: strings.TrimSpace(c.Name), Type: c.Type}
}

var excludedStatuses = []string{"exited", "created", "dead"}

// ExcludedStatus reports whether status begins with an excluded lifecycle word,
// ignoring case and leading whitespace.
func ExcludedStatus(status string) bool {
	s := strings.ToLower(strings.TrimSpace(status))
	for _, prefix := range excludedStatuses {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

// Normalize maps a candidate into the canonical record shape.
// Returned errors carry ErrCodeMalformed for candidates missing a required
// field and ErrCodeExcluded for candidates in an excluded lifecycle state.
func Normalize(c Candidate) (ApplicationRecord, error) {
	name := strings.TrimSpace(c.Name)
	status := strings.TrimSpace(c.Status)
	ctx := map[string]any{"name": name, "type": string(c.Type)}

	if name == "" {
		return ApplicationRecord{}, errors.NewWithContext(errors.ErrCodeMalformed, "candidate has no name", ctx)
	}
	if c.Type == "" {
		return ApplicationRecord{}, errors.NewWithContext(errors.ErrCodeMalformed, "candidate has no type", ctx)
	}
	if ExcludedStatus(status) {
		ctx["status"] = status
		return ApplicationRecord{}, errors.NewWithContext(errors.ErrCodeExcluded, "candidate status is excluded", ctx)
	}

	if c.Type.IsContainer() {
		return normalizeContainer(c, name, status, ctx)
	}
	return normalizeService(c, name, status, ctx)
}

func normalizeContainer(c Candidate, name, status string, ctx map[string]any) (ApplicationRecord, error) {
	image := strings.TrimSpace(c.Image)
	id := strings.TrimSpace(c.ContainerID)

	switch {
	case image == "":
		return ApplicationRecord{}, errors.NewWithContext(errors.ErrCodeMalformed, "container has no image", ctx)
	case status == "":
		return ApplicationRecord{}, errors.NewWithContext(errors.ErrCodeMalformed, "container has no status", ctx)
	case id == "":
		return ApplicationRecord{}, errors.NewWithContext(errors.ErrCodeMalformed, "container has no id", ctx)
	}

	pid := strings.TrimSpace(c.PID)
	if pid == "" {
		pid = UnknownPID
	}

	return ApplicationRecord{
		Name:        name,
		Type:        c.Type,
		Image:       ptr.To(image),
		Status:      status,
		Ports:       ParsePorts(c.PortsText).Union(NewPortList(c.Ports...)),
		PIDs:        NewPIDList(pid),
		ContainerID: ptr.To(id),
	}, nil
}

func normalizeService(c Candidate, name, status string, ctx map[string]any) (ApplicationRecord, error) {
	pid := strings.TrimSpace(c.PID)
	if pid == "" || pid == UnknownPID {
		return ApplicationRecord{}, errors.NewWithContext(errors.ErrCodeMalformed, "service has no pid", ctx)
	}

	process := strings.TrimSpace(c.ProcessName)
	if process == "" {
		process = name
	}
	if status == "" {
		status = "running"
	}

	return ApplicationRecord{
		Name:        name,
		Type:        c.Type,
		Status:      status,
		Ports:       NewPortList(c.Ports...).Union(ParsePorts(c.PortsText)),
		PIDs:        NewPIDList(pid),
		ProcessName: ptr.To(process),
	}, nil
}
