package inventory

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func fixedClock(t *testing.T, ts time.Time) {
	t.Helper()
	prev := now
	now = func() time.Time { return ts }
	t.Cleanup(func() { now = prev })
}

func TestAssembleEmpty(t *testing.T) {
	fixedClock(t, time.Date(2025, 3, 1, 12, 30, 45, 999, time.FixedZone("X", 3600)))

	snap := Assemble(Identity{InstanceID: "i-123", InstanceName: "web-01"}, SchemaVersion, nil)

	assert.Equal(t, 0, snap.TotalApplications)
	assert.NotNil(t, snap.Applications)
	assert.Equal(t, time.Date(2025, 3, 1, 11, 30, 45, 0, time.UTC), snap.CollectionTimestamp)

	data, err := json.Marshal(snap)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "i-123", raw["instance_id"])
	assert.Equal(t, "web-01", raw["instance_name"])
	assert.Equal(t, "2025-03-01T11:30:45Z", raw["collection_timestamp"])
	assert.Equal(t, SchemaVersion, raw["script_version"])
	assert.Equal(t, []any{}, raw["applications"])
	assert.EqualValues(t, 0, raw["total_applications"])
}

func TestSnapshotTotalAlwaysMatchesLength(t *testing.T) {
	recs := []ApplicationRecord{
		{Name: "a", Type: TypeDocker, Image: StringPtr("a"), ContainerID: StringPtr("1")},
		{Name: "b", Type: TypeProcess, ProcessName: StringPtr("b")},
	}
	snap := Assemble(Identity{InstanceID: "i", InstanceName: "n"}, SchemaVersion, recs)
	assert.Equal(t, len(snap.Applications), snap.TotalApplications)

	snap.TotalApplications = 99
	data, err := json.Marshal(snap)
	require.NoError(t, err)

	var decoded Snapshot
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 2, decoded.TotalApplications)
	assert.Len(t, decoded.Applications, 2)

	out, err := yaml.Marshal(snap)
	require.NoError(t, err)
	assert.Contains(t, string(out), "total_applications: 2")
}

func TestSnapshotRecordWireShape(t *testing.T) {
	recs := []ApplicationRecord{
		{Name: "nginx", Type: TypeDocker, Status: "Up", Image: StringPtr("nginx:latest"), ContainerID: StringPtr("abc"), Ports: NewPortList(80), PIDs: NewPIDList("1")},
		{Name: "sshd", Type: TypeSystemd, Status: "running", ProcessName: StringPtr("sshd"), Ports: NewPortList(22), PIDs: NewPIDList("2")},
	}
	data, err := json.Marshal(Assemble(Identity{InstanceID: "i", InstanceName: "n"}, SchemaVersion, recs))
	require.NoError(t, err)

	var raw struct {
		Applications []map[string]any `json:"applications"`
	}
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw.Applications, 2)

	container := raw.Applications[0]
	assert.Equal(t, "nginx:latest", container["image"])
	assert.Equal(t, "abc", container["container_id"])
	assert.NotContains(t, container, "process_name")
	assert.Equal(t, []any{float64(80)}, container["ports"])
	assert.Equal(t, []any{"1"}, container["pids"])

	service := raw.Applications[1]
	assert.Contains(t, service, "image")
	assert.Nil(t, service["image"])
	assert.NotContains(t, service, "container_id")
	assert.Equal(t, "sshd", service["process_name"])
	assert.Equal(t, []any{float64(22)}, service["ports"])
}

func TestAssembleCopiesRecords(t *testing.T) {
	recs := []ApplicationRecord{{Name: "a", Type: TypeProcess, Ports: NewPortList(1)}}
	snap := Assemble(Identity{}, SchemaVersion, recs)
	recs[0].Ports[0] = 9
	assert.Equal(t, PortList{1}, snap.Applications[0].Ports)
}

func TestSnapshotDecodesLegacyInventory(t *testing.T) {
	doc := `{
  "instance_id": "i-1234567890abcdef0",
  "instance_name": "web-server-01",
  "script_version": "1.0.0",
  "applications": [
    {"name": "nginx", "type": "docker", "status": "running", "image": "nginx:latest",
     "ports": [80, 443], "pids": [1234, 5678], "container_id": "abc123def456"},
    {"name": "sshd", "type": "systemd", "status": "running", "image": null,
     "ports": ["22"], "pids": ["812"], "process_name": "sshd"}
  ],
  "total_applications": 2
}`
	var snap Snapshot
	require.NoError(t, json.Unmarshal([]byte(doc), &snap))
	assert.Equal(t, PortList{80, 443}, snap.Applications[0].Ports)
	assert.Equal(t, PIDList{"1234", "5678"}, snap.Applications[0].PIDs)
	assert.Equal(t, PortList{22}, snap.Applications[1].Ports)
	assert.Equal(t, "i-1234567890abcdef0", snap.InstanceID)
	assert.Equal(t, "web-server-01", snap.InstanceName)
}

func TestSnapshotTable(t *testing.T) {
	snap := Assemble(Identity{InstanceID: "i", InstanceName: "host-a"}, SchemaVersion, []ApplicationRecord{
		{Name: "nginx", Type: TypeDocker, Status: "Up", Image: StringPtr("nginx"), ContainerID: StringPtr("0123456789abcdef"), Ports: NewPortList(80, 443), PIDs: NewPIDList("1")},
		{Name: "sshd", Type: TypeSystemd, Status: "running", ProcessName: StringPtr("sshd"), Ports: NewPortList(22), PIDs: NewPIDList("2", "3")},
	})
	header, rows := snap.Table()
	require.Len(t, rows, 2)
	assert.Len(t, header, len(rows[0]))
	assert.Equal(t, []string{"host-a", "nginx", "docker", "Up", "nginx", "80,443", "1", "0123456789ab"}, rows[0])
	assert.Equal(t, []string{"host-a", "sshd", "systemd", "running", "sshd", "22", "2,3", ""}, rows[1])
}

func TestSnapshotDescribe(t *testing.T) {
	fixedClock(t, time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))

	snap := Assemble(Identity{InstanceID: "i-1", InstanceName: "web"}, SchemaVersion, []ApplicationRecord{
		{Name: "nginx", Type: TypeDocker, Status: "Up", Image: StringPtr("nginx"), ContainerID: StringPtr("c1"), PIDs: NewPIDList("1")},
	})
	assert.Equal(t, map[string]string{
		"instance_id":          "i-1",
		"instance_name":        "web",
		"collection_timestamp": "2025-03-01T10:00:00Z",
		"script_version":       SchemaVersion,
		"total_applications":   "1",
	}, snap.Describe())
}
