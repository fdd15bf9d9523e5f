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
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
	"k8s.io/utils/ptr"
)

// UnknownPID is the sentinel recorded when a container's process id cannot be resolved.
// It is part of the serialized contract.
const UnknownPID = "unknown"

// Type identifies the detection source family of an application.
type Type string

const (
	TypeDocker  Type = "docker"
	TypePodman  Type = "podman"
	TypeSystemd Type = "systemd"
	TypeProcess Type = "process"
)

var containerTypes = map[Type]bool{
	TypeDocker: true,
	TypePodman: true,
}

// IsContainer reports whether records of this type are container-shaped.
func (t Type) IsContainer() bool {
	return containerTypes[t]
}

// Key is the identity of an application for merge purposes.
type Key struct {
	Name string
	Type Type
}

// String returns name/type.
func (k Key) String() string {
	return k.Name + "/" + string(k.Type)
}

// Valid reports whether the key can participate in deduplication.
func (k Key) Valid() bool {
	return k.Name != "" && k.Type != ""
}

// ApplicationRecord is one detected application or service.
type ApplicationRecord struct {
	Name        string   `json:"name" yaml:"name"`
	Type        Type     `json:"type" yaml:"type"`
	Image       *string  `json:"image" yaml:"image"`
	Status      string   `json:"status" yaml:"status"`
	Ports       PortList `json:"ports" yaml:"ports"`
	PIDs        PIDList  `json:"pids" yaml:"pids"`
	ContainerID *string  `json:"container_id,omitempty" yaml:"container_id,omitempty"`
	ProcessName *string  `json:"process_name,omitempty" yaml:"process_name,omitempty"`
}

// Key returns the record's identity key.
func (r ApplicationRecord) Key() Key {
	return Key{Name: r.Name, Type: r.Type}
}

// ContainerShaped reports whether the record carries container metadata and no process name.
func (r ApplicationRecord) ContainerShaped() bool {
	return (r.Image != nil || r.ContainerID != nil) && r.ProcessName == nil
}

// ServiceShaped reports whether the record carries a process name and no container metadata.
func (r ApplicationRecord) ServiceShaped() bool {
	return r.ProcessName != nil && r.Image == nil && r.ContainerID == nil
}

// Clone returns a deep copy of the record.
func (r ApplicationRecord) Clone() ApplicationRecord {
	c := r
	c.Image = cloneString(r.Image)
	c.ContainerID = cloneString(r.ContainerID)
	c.ProcessName = cloneString(r.ProcessName)
	c.Ports = slices.Clone(r.Ports)
	c.PIDs = slices.Clone(r.PIDs)
	if c.Ports == nil {
		c.Ports = PortList{}
	}
	if c.PIDs == nil {
		c.PIDs = PIDList{}
	}
	return c
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return ptr.To(s)
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	return ptr.Deref(s, "")
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	return ptr.To(*s)
}

// PortList is an ascending set of port numbers.
// Decoding accepts both numbers and numeric strings.
type PortList []uint16

// NewPortList returns the sorted unique set of the given ports, ignoring zero.
func NewPortList(ports ...uint16) PortList {
	out := make(PortList, 0, len(ports))
	for _, p := range ports {
		if p != 0 {
			out = append(out, p)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Union returns the sorted set union of l and other.
func (l PortList) Union(other PortList) PortList {
	merged := make([]uint16, 0, len(l)+len(other))
	merged = append(merged, l...)
	merged = append(merged, other...)
	return NewPortList(merged...)
}

// Contains reports whether p is in the set.
func (l PortList) Contains(p uint16) bool {
	_, found := slices.BinarySearch(l, p)
	return found
}

// String renders the ports comma separated.
func (l PortList) String() string {
	parts := make([]string, len(l))
	for i, p := range l {
		parts[i] = strconv.Itoa(int(p))
	}
	return strings.Join(parts, ",")
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *PortList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("ports: %w", err)
	}
	ports := make([]uint16, 0, len(raw))
	for _, r := range raw {
		s := strings.Trim(strings.TrimSpace(string(r)), `"`)
		p, err := parsePortNumber(s)
		if err != nil {
			return err
		}
		ports = append(ports, p)
	}
	*l = NewPortList(ports...)
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *PortList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		return fmt.Errorf("ports: expected sequence at line %d", node.Line)
	}
	ports := make([]uint16, 0, len(node.Content))
	for _, n := range node.Content {
		p, err := parsePortNumber(n.Value)
		if err != nil {
			return err
		}
		ports = append(ports, p)
	}
	*l = NewPortList(ports...)
	return nil
}

func parsePortNumber(s string) (uint16, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 16)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("invalid port %q", s)
	}
	return uint16(n), nil
}

// PIDList is a set of process ids kept as strings so the UnknownPID sentinel fits.
// Numeric ids sort numerically ahead of non-numeric values.
type PIDList []string

// NewPIDList returns the sorted unique set of the given pids, ignoring blanks.
func NewPIDList(pids ...string) PIDList {
	out := make(PIDList, 0, len(pids))
	for _, p := range pids {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, comparePID)
	return slices.Compact(out)
}

// Union returns the sorted set union of l and other.
func (l PIDList) Union(other PIDList) PIDList {
	merged := make([]string, 0, len(l)+len(other))
	merged = append(merged, l...)
	merged = append(merged, other...)
	return NewPIDList(merged...)
}

// Contains reports whether pid is in the set.
func (l PIDList) Contains(pid string) bool {
	return slices.Contains(l, pid)
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *PIDList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("pids: %w", err)
	}
	pids := make([]string, 0, len(raw))
	for _, r := range raw {
		pids = append(pids, strings.Trim(strings.TrimSpace(string(r)), `"`))
	}
	*l = NewPIDList(pids...)
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *PIDList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		return fmt.Errorf("pids: expected sequence at line %d", node.Line)
	}
	pids := make([]string, 0, len(node.Content))
	for _, n := range node.Content {
		pids = append(pids, n.Value)
	}
	*l = NewPIDList(pids...)
	return nil
}

func comparePID(a, b string) int {
	an, aerr := strconv.ParseUint(a, 10, 64)
	bn, berr := strconv.ParseUint(b, 10, 64)
	switch {
	case aerr == nil && berr == nil:
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		}
		return 0
	case aerr == nil:
		return -1
	case berr == nil:
		return 1
	}
	return strings.Compare(a, b)
}

// PIDSet is the set of process ids claimed by container detectors.
type PIDSet map[string]struct{}

// NewPIDSet returns a set holding the given pids.
func NewPIDSet(pids ...string) PIDSet {
	s := make(PIDSet, len(pids))
	for _, p := range pids {
		s.Add(p)
	}
	return s
}

// Add inserts pid. Blank values and the UnknownPID sentinel are ignored.
func (s PIDSet) Add(pid string) {
	pid = strings.TrimSpace(pid)
	if pid == "" || pid == UnknownPID {
		return
	}
	s[pid] = struct{}{}
}

// Has reports whether pid is in the set.
func (s PIDSet) Has(pid string) bool {
	_, ok := s[strings.TrimSpace(pid)]
	return ok
}

// Len returns the number of pids in the set.
func (s PIDSet) Len() int {
	return len(s)
}
