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

package collector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/fleet-inventory/pkg/collector/container"
	"github.com/NVIDIA/fleet-inventory/pkg/collector/socket"
	"github.com/NVIDIA/fleet-inventory/pkg/inventory"
)

func TestDefaultFactory_Defaults(t *testing.T) {
	f := NewDefaultFactory()

	assert.Equal(t, []inventory.Type{inventory.TypeDocker, inventory.TypePodman}, f.Runtimes)
	assert.Equal(t, BackendCLI, f.Backend)
	assert.True(t, f.SocketScan)
	assert.NotNil(t, f.Runner)
}

func TestDefaultFactory_CreateContainerDetectors(t *testing.T) {
	f := NewDefaultFactory(WithRuntimes(inventory.TypePodman, inventory.TypeDocker), WithRunner(&fakeRunner{}))

	detectors := f.CreateContainerDetectors()
	require.Len(t, detectors, 2)
	assert.Equal(t, "podman", detectors[0].Name())
	assert.Equal(t, "docker", detectors[1].Name())
	_, ok := detectors[0].(*container.Detector)
	assert.True(t, ok)
}

func TestDefaultFactory_RejectsNonContainerRuntime(t *testing.T) {
	f := NewDefaultFactory(WithRuntimes(inventory.TypeSystemd), WithRunner(&fakeRunner{}))

	detectors := f.CreateContainerDetectors()
	require.Len(t, detectors, 1)
	_, err := detectors[0].Detect(context.Background(), nil)
	assert.Error(t, err)
}

func TestDefaultFactory_CreateSocketDetector(t *testing.T) {
	f := NewDefaultFactory(WithRunner(&fakeRunner{}), WithSocketSource(SocketSourceSS))
	d := f.CreateSocketDetector()
	require.NotNil(t, d)
	_, ok := d.(*socket.Detector)
	assert.True(t, ok)

	f = NewDefaultFactory(WithSocketScan(false))
	assert.Nil(t, f.CreateSocketDetector())
}

func TestNewPipelineFromFactory(t *testing.T) {
	p := NewPipelineFromFactory(NewDefaultFactory(WithRunner(&fakeRunner{})))
	assert.Equal(t, []string{"docker", "podman", "socket"}, p.Detectors())

	p = NewPipelineFromFactory(NewDefaultFactory(WithRunner(&fakeRunner{}), WithSocketScan(false)))
	assert.Equal(t, []string{"docker", "podman"}, p.Detectors())
}
