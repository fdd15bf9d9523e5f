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
	"cmp"
	"math"
	"slices"
	"strconv"

	"github.com/distribution/reference"
)

// DefaultTopN is the number of entries kept in summary rankings.
const DefaultTopN = 10

// Count is one ranked value in a fleet summary.
type Count struct {
	Value string `json:"value" yaml:"value"`
	Count int    `json:"count" yaml:"count"`
}

// Summary aggregates many snapshots into fleet level figures.
type Summary struct {
	TotalInstances     int            `json:"total_instances" yaml:"total_instances"`
	TotalApplications  int            `json:"total_applications" yaml:"total_applications"`
	UniqueAppTypes     int            `json:"unique_app_types" yaml:"unique_app_types"`
	AvgAppsPerInstance float64        `json:"avg_apps_per_instance" yaml:"avg_apps_per_instance"`
	AppTypes           map[string]int `json:"app_types" yaml:"app_types"`
	TopPorts           []Count        `json:"top_ports" yaml:"top_ports"`
	TopImages          []Count        `json:"top_images" yaml:"top_images"`
}

// Summarize computes a fleet summary. Instances are counted by unique
// instance_id. Images are grouped by repository so tags and digests of the
// same image rank together. top bounds the rankings; values <= 0 use DefaultTopN.
func Summarize(snapshots []Snapshot, top int) Summary {
	if top <= 0 {
		top = DefaultTopN
	}

	instances := make(map[string]struct{})
	types := make(map[string]int)
	ports := make(map[string]int)
	images := make(map[string]int)
	total := 0

	for _, s := range snapshots {
		instances[s.InstanceID] = struct{}{}
		for _, a := range s.Applications {
			total++
			types[string(a.Type)]++
			for _, p := range a.Ports {
				ports[strconv.Itoa(int(p))]++
			}
			if a.Image != nil && *a.Image != "" {
				images[ImageRepository(*a.Image)]++
			}
		}
	}

	sum := Summary{
		TotalInstances:    len(instances),
		TotalApplications: total,
		UniqueAppTypes:    len(types),
		AppTypes:          types,
		TopPorts:          rank(ports, top),
		TopImages:         rank(images, top),
	}
	if len(instances) > 0 {
		sum.AvgAppsPerInstance = math.Round(float64(total)/float64(len(instances))*10) / 10
	}
	return sum
}

// ImageRepository returns the familiar repository name of an image reference,
// e.g. "nginx" for "docker.io/library/nginx:1.27". Unparseable references are
// returned unchanged.
func ImageRepository(image string) string {
	named, err := reference.ParseNormalizedNamed(image)
	if err != nil {
		return image
	}
	return reference.FamiliarName(named)
}

func rank(counts map[string]int, top int) []Count {
	out := make([]Count, 0, len(counts))
	for v, n := range counts {
		out = append(out, Count{Value: v, Count: n})
	}
	slices.SortFunc(out, func(a, b Count) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Value, b.Value)
	})
	if len(out) > top {
		out = out[:top]
	}
	return out
}

// Table renders the summary as metric/value rows.
func (s Summary) Table() ([]string, [][]string) {
	rows := [][]string{
		{"total_instances", strconv.Itoa(s.TotalInstances)},
		{"total_applications", strconv.Itoa(s.TotalApplications)},
		{"unique_app_types", strconv.Itoa(s.UniqueAppTypes)},
		{"avg_apps_per_instance", strconv.FormatFloat(s.AvgAppsPerInstance, 'f', 1, 64)},
	}
	typeNames := make([]string, 0, len(s.AppTypes))
	for t := range s.AppTypes {
		typeNames = append(typeNames, t)
	}
	slices.Sort(typeNames)
	for _, t := range typeNames {
		rows = append(rows, []string{"type/" + t, strconv.Itoa(s.AppTypes[t])})
	}
	for _, c := range s.TopPorts {
		rows = append(rows, []string{"port/" + c.Value, strconv.Itoa(c.Count)})
	}
	for _, c := range s.TopImages {
		rows = append(rows, []string{"image/" + c.Value, strconv.Itoa(c.Count)})
	}
	return []string{"METRIC", "VALUE"}, rows
}
