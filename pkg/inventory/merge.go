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

// Merge coalesces two records that share an identity key. a is the
// first-seen record: its name, type and status win, optional metadata keeps
// the first non-nil value, and ports and pids become the union of both.
func Merge(a, b ApplicationRecord) ApplicationRecord {
	out := a.Clone()
	out.Ports = a.Ports.Union(b.Ports)
	out.PIDs = a.PIDs.Union(b.PIDs)
	if out.Image == nil {
		out.Image = cloneString(b.Image)
	}
	if out.ContainerID == nil {
		out.ContainerID = cloneString(b.ContainerID)
	}
	if out.ProcessName == nil {
		out.ProcessName = cloneString(b.ProcessName)
	}
	return out
}

// Index folds records into one entry per identity key, remembering first-seen order.
// An Index is scoped to a single collection run; the zero value is not usable.
type Index struct {
	order   []Key
	records map[Key]ApplicationRecord
}

// NewIndex returns an empty Index.
func NewIndex() *Index {
	return &Index{records: make(map[Key]ApplicationRecord)}
}

// Add folds r into the index and reports whether it was accepted.
// Records with an empty name or type are rejected.
func (ix *Index) Add(r ApplicationRecord) bool {
	k := r.Key()
	if !k.Valid() {
		return false
	}
	if prev, ok := ix.records[k]; ok {
		ix.records[k] = Merge(prev, r)
		return true
	}
	ix.order = append(ix.order, k)
	ix.records[k] = r.Clone()
	return true
}

// get returns the merged record for k.
func (ix *Index) get(k Key) (ApplicationRecord, bool) {
	r, ok := ix.records[k]
	if !ok {
		return ApplicationRecord{}, false
	}
	return r.Clone(), true
}

// Len returns the number of distinct keys.
func (ix *Index) Len() int {
	return len(ix.order)
}

// Records returns the merged records in first-seen order.
func (ix *Index) Records() []ApplicationRecord {
	out := make([]ApplicationRecord, 0, len(ix.order))
	for _, k := range ix.order {
		out = append(out, ix.records[k].Clone())
	}
	return out
}

// Deduplicate returns one merged record per identity key, in first-seen order.
// records must be in detector priority order.
func Deduplicate(records []ApplicationRecord) []ApplicationRecord {
	ix := NewIndex()
	for _, r := range records {
		ix.Add(r)
	}
	return ix.Records()
}
