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
	"strconv"
	"strings"
	"time"
)

// SchemaVersion is the script_version written by this collector.
const SchemaVersion = "1.0.0"

// now is replaced in tests.
var now = time.Now

// Identity names the instance a snapshot was collected on.
type Identity struct {
	InstanceID   string `json:"instance_id" yaml:"instance_id"`
	InstanceName string `json:"instance_name" yaml:"instance_name"`
}

// Snapshot is the result of one collection run.
// TotalApplications always serializes as len(Applications).
type Snapshot struct {
	InstanceID          string              `json:"instance_id" yaml:"instance_id"`
	InstanceName        string              `json:"instance_name" yaml:"instance_name"`
	CollectionTimestamp time.Time           `json:"collection_timestamp" yaml:"collection_timestamp"`
	ScriptVersion       string              `json:"script_version" yaml:"script_version"`
	Applications        []ApplicationRecord `json:"applications" yaml:"applications"`
	TotalApplications   int                 `json:"total_applications" yaml:"total_applications"`
}

// Assemble wraps deduplicated records with instance identity and a UTC
// timestamp captured once, truncated to whole seconds.
func Assemble(id Identity, scriptVersion string, records []ApplicationRecord) Snapshot {
	apps := make([]ApplicationRecord, 0, len(records))
	for _, r := range records {
		apps = append(apps, r.Clone())
	}
	return Snapshot{
		InstanceID:          id.InstanceID,
		InstanceName:        id.InstanceName,
		CollectionTimestamp: now().UTC().Truncate(time.Second),
		ScriptVersion:       scriptVersion,
		Applications:        apps,
		TotalApplications:   len(apps),
	}
}

// Describe returns the snapshot header as flat string metadata.
func (s Snapshot) Describe() map[string]string {
	return map[string]string{
		"instance_id":          s.InstanceID,
		"instance_name":        s.InstanceName,
		"collection_timestamp": s.CollectionTimestamp.UTC().Format(time.RFC3339),
		"script_version":       s.ScriptVersion,
		"total_applications":   strconv.Itoa(len(s.Applications)),
	}
}

type snapshotAlias Snapshot

func (s Snapshot) normalized() snapshotAlias {
	a := snapshotAlias(s)
	a.Applications = make([]ApplicationRecord, 0, len(s.Applications))
	for _, r := range s.Applications {
		a.Applications = append(a.Applications, r.Clone())
	}
	a.TotalApplications = len(a.Applications)
	return a
}

// MarshalJSON implements json.Marshaler.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.normalized())
}

// MarshalYAML implements yaml.Marshaler.
func (s Snapshot) MarshalYAML() (any, error) {
	return s.normalized(), nil
}

// Table renders one row per application.
func (s Snapshot) Table() ([]string, [][]string) {
	header := []string{"INSTANCE", "NAME", "TYPE", "STATUS", "IMAGE/PROCESS", "PORTS", "PIDS", "CONTAINER"}
	rows := make([][]string, 0, len(s.Applications))
	for _, a := range s.Applications {
		source := Deref(a.Image)
		if source == "" {
			source = Deref(a.ProcessName)
		}
		rows = append(rows, []string{
			s.InstanceName,
			a.Name,
			string(a.Type),
			a.Status,
			source,
			a.Ports.String(),
			strings.Join(a.PIDs, ","),
			shortID(Deref(a.ContainerID)),
		})
	}
	return header, rows
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
