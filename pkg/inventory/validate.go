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
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/NVIDIA/fleet-inventory/pkg/errors"
	"github.com/NVIDIA/fleet-inventory/pkg/version"
)

// ValidateOptions controls how strictly a loaded snapshot is checked.
type ValidateOptions struct {
	// Strict additionally enforces unique identity keys, the container/service
	// record shape and non-empty pid sets.
	Strict bool
	// RequireApplications rejects snapshots with no applications.
	RequireApplications bool
}

// Validate checks a snapshot against the inventory wire contract.
// All problems are collected into the returned error's "problems" context.
func Validate(s Snapshot, opts ValidateOptions) error {
	var problems []string
	addf := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if strings.TrimSpace(s.InstanceID) == "" {
		addf("instance_id must be a non-empty string")
	}
	if strings.TrimSpace(s.InstanceName) == "" {
		addf("instance_name must be a non-empty string")
	}
	if s.Applications == nil {
		addf("applications must be a list")
	}
	if opts.RequireApplications && len(s.Applications) == 0 {
		addf("applications list is empty")
	}
	if s.TotalApplications != len(s.Applications) {
		addf("total_applications is %d but %d applications are listed", s.TotalApplications, len(s.Applications))
	}

	if s.ScriptVersion != "" {
		v, err := version.ParseVersion(s.ScriptVersion)
		if err != nil {
			addf("script_version %q: %v", s.ScriptVersion, err)
		} else if supported := version.MustParseVersion(SchemaVersion); !v.Compatible(supported) {
			addf("script_version %s is not compatible with schema %s", v, supported)
		}
	}

	seen := make(map[Key]int, len(s.Applications))
	for i, a := range s.Applications {
		n := i + 1
		if strings.TrimSpace(a.Name) == "" {
			addf("application %d missing 'name' field", n)
		}
		if a.Type == "" {
			addf("application %d missing 'type' field", n)
		}
		if !opts.Strict {
			continue
		}
		if k := a.Key(); k.Valid() {
			if first, dup := seen[k]; dup {
				addf("application %d duplicates application %d (%s)", n, first, k)
			} else {
				seen[k] = n
			}
		}
		if a.Type.IsContainer() {
			if !a.ContainerShaped() {
				addf("application %d (%s) is not container-shaped", n, a.Key())
			}
		} else if a.Type != "" && !a.ServiceShaped() {
			addf("application %d (%s) is not service-shaped", n, a.Key())
		}
		if len(a.PIDs) == 0 {
			addf("application %d (%s) has no pids", n, a.Key())
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return errors.NewWithContext(errors.ErrCodeInvalidRequest,
		fmt.Sprintf("inventory failed validation: %s", problems[0]),
		map[string]any{
			"instance_id": s.InstanceID,
			"problems":    problems,
		})
}

// Problems returns the validation problems recorded on err, if any.
func Problems(err error) []string {
	var se *errors.StructuredError
	if !stderrors.As(err, &se) || se.Context == nil {
		return nil
	}
	p, _ := se.Context["problems"].([]string)
	return p
}
