package collector

import (
	"context"
	stderrors "errors"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/fleet-inventory/pkg/collector/container"
	"github.com/NVIDIA/fleet-inventory/pkg/collector/socket"
	"github.com/NVIDIA/fleet-inventory/pkg/errors"
	"github.com/NVIDIA/fleet-inventory/pkg/inventory"
)

type fakeRunner struct {
	outputs map[string]string
}

func (f *fakeRunner) Run(_ context.Context, command []string) (string, error) {
	key := strings.Join(command, " ")
	if out, ok := f.outputs[key]; ok {
		return out, nil
	}
	return "", errors.New(errors.ErrCodeUnavailable, "missing fixture for command: "+key)
}

func static(name string, cands []inventory.Candidate, err error) Detector {
	return DetectorFunc{
		ID: name,
		Fn: func(context.Context, inventory.PIDSet) ([]inventory.Candidate, error) {
			return cands, err
		},
	}
}

type fakeLister []socket.Listener

func (f fakeLister) ListListening(context.Context) ([]socket.Listener, error) { return f, nil }

type fakeResolver map[string]string

func (f fakeResolver) ProcessName(_ context.Context, pid string) (string, error) {
	if n, ok := f[pid]; ok {
		return n, nil
	}
	return "", stderrors.New("no such process")
}

type fakeUnits map[string]bool

func (f fakeUnits) IsActive(_ context.Context, name string) bool { return f[name] }

func TestPipelineClaimsContainerPIDsBeforeScan(t *testing.T) {
	var seenClaimed inventory.PIDSet
	scanner := DetectorFunc{
		ID: "scan",
		Fn: func(_ context.Context, claimed inventory.PIDSet) ([]inventory.Candidate, error) {
			seenClaimed = claimed
			return nil, nil
		},
	}
	containers := []Detector{
		static("docker", []inventory.Candidate{
			{Type: inventory.TypeDocker, Name: "web", Status: "Up", Image: "nginx", ContainerID: "c1", PID: "100"},
			{Type: inventory.TypeDocker, Name: "", Status: "Up", Image: "x", ContainerID: "c2", PID: "101"},
			{Type: inventory.TypeDocker, Name: "lost", Status: "Up", Image: "x", ContainerID: "c3", PID: inventory.UnknownPID},
		}, nil),
		static("podman", []inventory.Candidate{
			{Type: inventory.TypePodman, Name: "db", Status: "Up", Image: "postgres", ContainerID: "p1", PID: "200"},
		}, nil),
	}

	res := NewPipeline(containers, []Detector{scanner}).Run(context.Background())

	require.NotNil(t, seenClaimed)
	assert.True(t, seenClaimed.Has("100"))
	assert.True(t, seenClaimed.Has("101"))
	assert.True(t, seenClaimed.Has("200"))
	assert.False(t, seenClaimed.Has(inventory.UnknownPID))
	assert.Equal(t, 3, res.Claimed.Len())
	assert.Len(t, res.Records, 3)
}

func TestPipelineDegradesOnDetectorFailure(t *testing.T) {
	containers := []Detector{
		static("docker", nil, errors.New(errors.ErrCodeUnavailable, "docker not installed")),
		static("podman", []inventory.Candidate{
			{Type: inventory.TypePodman, Name: "db", Status: "Up", Image: "postgres", ContainerID: "p1", PID: "200"},
		}, errors.New(errors.ErrCodeTimeout, "partial")),
	}
	scanners := []Detector{static("socket", nil, stderrors.New("ss exploded"))}

	res := NewPipeline(containers, scanners).Run(context.Background())

	assert.Equal(t, []string{"docker", "podman", "socket"}, res.Failed)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "db", res.Records[0].Name)
}

func TestPipelineDropsExcludedAndMalformed(t *testing.T) {
	containers := []Detector{
		static("docker", []inventory.Candidate{
			{Type: inventory.TypeDocker, Name: "old", Status: "exited (0)", Image: "x", ContainerID: "c1", PID: "1"},
			{Type: inventory.TypeDocker, Name: "noimage", Status: "Up", ContainerID: "c2", PID: "2"},
			{Type: inventory.TypeDocker, Name: "ok", Status: "Up", Image: "x", ContainerID: "c3", PID: "3"},
		}, nil),
	}
	res := NewPipeline(containers, nil).Run(context.Background())
	require.Len(t, res.Records, 1)
	assert.Equal(t, "ok", res.Records[0].Name)
}

func TestPipelineEndToEndWithFakes(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{
		"docker ps -a --format {{.ID}}\t{{.Names}}\t{{.Image}}\t{{.Status}}\t{{.Ports}}": strings.Join([]string{
			"c1\tnginx\tnginx:latest\tUp 2 hours\t0.0.0.0:80->80/tcp, :::80->80/tcp",
			"c1b\tnginx\tnginx:latest\tUp 2 hours\t0.0.0.0:443->443/tcp",
			"c2\told\tbusybox\tExited (0) 1 day ago\t",
		}, "\n"),
		"docker inspect --format {{.State.Pid}} c1":  "999\n",
		"docker inspect --format {{.State.Pid}} c1b": "999\n",
	}}

	containers := []Detector{
		container.NewDetector(inventory.TypeDocker, &container.CLIRuntime{Binary: "docker", Runner: runner}, container.WithInspectRate(0)),
		container.NewDetector(inventory.TypePodman, &container.CLIRuntime{Binary: "podman", Runner: runner}),
	}
	scan := socket.NewDetector(
		fakeLister{
			{Port: 22, PID: "999"},
			{Port: 22, PID: "812"},
			{Port: 2222, PID: "812"},
			{Port: 6379, PID: "1500"},
		},
		fakeResolver{"999": "nginx", "812": "sshd", "1500": "redis-server"},
		fakeUnits{"sshd": true},
	)

	res := NewPipeline(containers, []Detector{scan}).Run(context.Background())

	assert.Equal(t, []string{"podman"}, res.Failed)

	recs := slices.Clone(res.Records)
	slices.SortFunc(recs, func(a, b inventory.ApplicationRecord) int { return strings.Compare(a.Key().String(), b.Key().String()) })
	require.Len(t, recs, 3)

	assert.Equal(t, "nginx/docker", recs[0].Key().String())
	assert.Equal(t, inventory.PortList{80, 443}, recs[0].Ports)
	assert.Equal(t, inventory.PIDList{"999"}, recs[0].PIDs)
	assert.Equal(t, "c1", inventory.Deref(recs[0].ContainerID))

	assert.Equal(t, "redis-server/process", recs[1].Key().String())

	assert.Equal(t, "sshd/systemd", recs[2].Key().String())
	assert.Equal(t, inventory.PortList{22, 2222}, recs[2].Ports)
	assert.Equal(t, "sshd", inventory.Deref(recs[2].ProcessName))
	assert.Nil(t, recs[2].Image)
}

func TestPipelineNoDetectors(t *testing.T) {
	res := NewPipeline(nil, nil).Run(context.Background())
	assert.NotNil(t, res.Records)
	assert.Empty(t, res.Records)
	assert.Empty(t, res.Failed)
}
