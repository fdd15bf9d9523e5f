package snapshotter

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/fleet-inventory/pkg/collector"
	"github.com/NVIDIA/fleet-inventory/pkg/errors"
	"github.com/NVIDIA/fleet-inventory/pkg/inventory"
	"github.com/NVIDIA/fleet-inventory/pkg/serializer"
)

type staticIdentity inventory.Identity

func (s staticIdentity) Resolve(context.Context) inventory.Identity {
	return inventory.Identity(s)
}

type blockingPipeline struct{}

func (blockingPipeline) Run(ctx context.Context) collector.Result {
	<-ctx.Done()
	return collector.Result{Claimed: inventory.NewPIDSet()}
}

type captureSerializer struct {
	got []any
	err error
}

func (c *captureSerializer) Serialize(_ context.Context, payload any) error {
	c.got = append(c.got, payload)
	return c.err
}

type fakeFactory struct {
	containers []collector.Detector
	socket     collector.Detector
}

func (f fakeFactory) CreateContainerDetectors() []collector.Detector { return f.containers }
func (f fakeFactory) CreateSocketDetector() collector.Detector       { return f.socket }

func dockerDetector() collector.Detector {
	return collector.DetectorFunc{ID: "docker", Fn: func(context.Context, inventory.PIDSet) ([]inventory.Candidate, error) {
		return []inventory.Candidate{{
			Type: inventory.TypeDocker, Name: "web", Status: "Up 2 hours", Image: "nginx:1.25",
			ContainerID: "abc123", PortsText: "0.0.0.0:8080->80/tcp", PID: "4242",
		}}, nil
	}}
}

func socketDetector(t *testing.T) collector.Detector {
	return collector.DetectorFunc{ID: "socket", Fn: func(_ context.Context, claimed inventory.PIDSet) ([]inventory.Candidate, error) {
		assert.True(t, claimed.Has("4242"), "container pids are claimed before the scan")
		return []inventory.Candidate{{
			Type: inventory.TypeSystemd, Name: "sshd", Status: "running", ProcessName: "sshd", Ports: []uint16{22}, PID: "812",
		}}, nil
	}}
}

func TestCollect(t *testing.T) {
	s := &InventorySnapshotter{
		Factory:  fakeFactory{containers: []collector.Detector{dockerDetector()}, socket: socketDetector(t)},
		Identity: staticIdentity{InstanceID: "i-1", InstanceName: "web-01"},
	}

	snap, err := s.Collect(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, s.CollectionID)
	assert.Equal(t, "i-1", snap.InstanceID)
	assert.Equal(t, "web-01", snap.InstanceName)
	assert.Equal(t, inventory.SchemaVersion, snap.ScriptVersion)
	require.Len(t, snap.Applications, 2)
	assert.Equal(t, 2, snap.TotalApplications)

	web := snap.Applications[0]
	assert.Equal(t, inventory.Key{Name: "web", Type: inventory.TypeDocker}, web.Key())
	assert.Equal(t, inventory.PortList{8080}, web.Ports)
	assert.Equal(t, inventory.PIDList{"4242"}, web.PIDs)

	sshd := snap.Applications[1]
	assert.Equal(t, inventory.Key{Name: "sshd", Type: inventory.TypeSystemd}, sshd.Key())
	assert.Nil(t, sshd.Image)
}

func TestCollectRequiresIdentity(t *testing.T) {
	_, err := (&InventorySnapshotter{Factory: fakeFactory{}}).Collect(context.Background())
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidRequest))
}

func TestCollectDetectorFailureIsNotFatal(t *testing.T) {
	failing := collector.DetectorFunc{ID: "podman", Fn: func(context.Context, inventory.PIDSet) ([]inventory.Candidate, error) {
		return nil, errors.New(errors.ErrCodeUnavailable, "podman not installed")
	}}
	s := &InventorySnapshotter{
		Factory:  fakeFactory{containers: []collector.Detector{failing, dockerDetector()}},
		Identity: staticIdentity{InstanceID: "i", InstanceName: "n"},
	}
	snap, err := s.Collect(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap.Applications, 1)
}

func TestCollectEmptyHost(t *testing.T) {
	s := &InventorySnapshotter{
		Factory:  fakeFactory{},
		Identity: staticIdentity{InstanceID: "i", InstanceName: "n"},
	}
	snap, err := s.Collect(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, snap.Applications)
	assert.Zero(t, snap.TotalApplications)
}

func TestCollectDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	s := &InventorySnapshotter{
		Pipeline: blockingPipeline{},
		Identity: staticIdentity{InstanceID: "i", InstanceName: "n"},
	}
	_, err := s.Collect(ctx)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeTimeout))
}

func TestMeasureSerializes(t *testing.T) {
	var buf bytes.Buffer
	s := &InventorySnapshotter{
		CollectionID: "run-1",
		Factory:      fakeFactory{containers: []collector.Detector{dockerDetector()}},
		Identity:     staticIdentity{InstanceID: "i-1", InstanceName: "web-01"},
		Serializer:   serializer.NewWriter(serializer.FormatJSON, &buf),
	}
	require.NoError(t, s.Measure(context.Background()))
	assert.Equal(t, "run-1", s.CollectionID)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &wire))
	assert.Equal(t, "i-1", wire["instance_id"])
	assert.EqualValues(t, 1, wire["total_applications"])
	apps := wire["applications"].([]any)
	first := apps[0].(map[string]any)
	assert.Equal(t, []any{float64(8080)}, first["ports"])
	assert.Equal(t, "abc123", first["container_id"])
}

func TestMeasureSerializerError(t *testing.T) {
	ser := &captureSerializer{err: errors.New(errors.ErrCodeInternal, "disk full")}
	s := &InventorySnapshotter{
		Factory:    fakeFactory{},
		Identity:   staticIdentity{InstanceID: "i", InstanceName: "n"},
		Serializer: ser,
	}
	err := s.Measure(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInternal))
	require.Len(t, ser.got, 1)
	assert.IsType(t, inventory.Snapshot{}, ser.got[0])
}

func TestMeasureWritesMetricsFile(t *testing.T) {
	reg := prometheus.NewRegistry()
	gauge := prometheus.NewGauge(prometheus.GaugeOpts{Name: "appinv_test_gauge", Help: "test gauge"})
	reg.MustRegister(gauge)
	gauge.Set(3)

	path := filepath.Join(t.TempDir(), "appinv.prom")
	s := &InventorySnapshotter{
		Factory:     fakeFactory{},
		Identity:    staticIdentity{InstanceID: "i", InstanceName: "n"},
		Serializer:  &captureSerializer{},
		MetricsFile: path,
		Gatherer:    reg,
	}
	require.NoError(t, s.Measure(context.Background()))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(b), "appinv_test_gauge 3"))
}

func TestMeasureMetricsFileError(t *testing.T) {
	s := &InventorySnapshotter{
		Factory:     fakeFactory{},
		Identity:    staticIdentity{InstanceID: "i", InstanceName: "n"},
		Serializer:  &captureSerializer{},
		MetricsFile: filepath.Join(t.TempDir(), "missing", "appinv.prom"),
		Gatherer:    prometheus.NewRegistry(),
	}
	err := s.Measure(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "metrics file")
}

func TestRunStatus(t *testing.T) {
	assert.Equal(t, "success", runStatus(nil))
	assert.Equal(t, "timeout", runStatus(errors.New(errors.ErrCodeTimeout, "x")))
	assert.Equal(t, "error", runStatus(errors.New(errors.ErrCodeInternal, "x")))
}
