package cli

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/fleet-inventory/pkg/errors"
)

const validInventory = `{
  "instance_id": "i-0abc",
  "instance_name": "web-01",
  "collection_timestamp": "2025-03-01T10:00:00Z",
  "script_version": "1.0.0",
  "applications": [
    {"name": "nginx", "type": "docker", "image": "nginx:1.25", "status": "Up 2 hours",
     "ports": [80, 443], "pids": ["1234"], "container_id": "abc123"},
    {"name": "sshd", "type": "systemd", "image": null, "status": "running",
     "ports": [22], "pids": ["812"], "process_name": "sshd"}
  ],
  "total_applications": 2
}`

const emptyInventory = `{
  "instance_id": "i-0def",
  "instance_name": "idle-01",
  "collection_timestamp": "2025-03-01T10:00:00Z",
  "script_version": "1.0.0",
  "applications": [],
  "total_applications": 0
}`

const brokenInventory = `instance_id: ""
instance_name: db-01
script_version: "2.0.0"
applications:
  - name: postgres
total_applications: 3
`

func decodeReport(t *testing.T, h *harness) ValidationReport {
	t.Helper()
	var r ValidationReport
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &r))
	return r
}

func TestValidateValid(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "web.json", validInventory)
	writeFile(t, dir, "idle.json", emptyInventory)

	h := newHarness(t)
	require.NoError(t, h.run("validate", dir))

	r := decodeReport(t, h)
	assert.Equal(t, 2, r.Valid)
	assert.Zero(t, r.Invalid)
	assert.Equal(t, "i-0def", r.Results[0].InstanceID)
	assert.Equal(t, 2, r.Results[1].Applications)
}

func TestValidateRequireApplications(t *testing.T) {
	path := writeFile(t, t.TempDir(), "idle.json", emptyInventory)

	h := newHarness(t)
	err := h.run("validate", "--require-applications", path)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidRequest))
	assert.Equal(t, []string{"applications list is empty"}, decodeReport(t, h).Results[0].Problems)
}

func TestValidateReportsEveryProblem(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "web.json", validInventory)
	bad := writeFile(t, dir, "db.yaml", brokenInventory)

	h := newHarness(t)
	err := h.run("validate", good, bad)
	require.Error(t, err)

	r := decodeReport(t, h)
	assert.Equal(t, 1, r.Valid)
	assert.Equal(t, 1, r.Invalid)
	res := r.Results[1]
	assert.False(t, res.Valid)
	assert.Contains(t, res.Problems, "instance_id must be a non-empty string")
	assert.Contains(t, res.Problems, "total_applications is 3 but 1 applications are listed")
	assert.Contains(t, res.Problems, "application 1 missing 'type' field")
	assert.Contains(t, res.Problems, "script_version 2.0.0 is not compatible with schema 1.0.0")
}

func TestValidateStrict(t *testing.T) {
	dup := `{"instance_id":"i","instance_name":"n","script_version":"1.0.0","total_applications":2,
"applications":[
 {"name":"a","type":"docker","image":"x","status":"Up","ports":[],"pids":["1"],"container_id":"c1"},
 {"name":"a","type":"docker","image":"x","status":"Up","ports":[],"pids":["2"],"container_id":"c2"}]}`
	path := writeFile(t, t.TempDir(), "dup.json", dup)

	h := newHarness(t)
	require.NoError(t, h.run("validate", path))

	h = newHarness(t)
	require.Error(t, h.run("validate", "--strict", path))
	assert.Contains(t, decodeReport(t, h).Results[0].Problems, "application 2 duplicates application 1 (a/docker)")
}

func TestValidateUnreadableInput(t *testing.T) {
	path := writeFile(t, t.TempDir(), "junk.json", "{not json")

	h := newHarness(t)
	require.Error(t, h.run("validate", path))
	r := decodeReport(t, h)
	require.Len(t, r.Results[0].Problems, 1)
	assert.Contains(t, r.Results[0].Problems[0], "INVALID_REQUEST")
}

func TestValidateHTTPInput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(validInventory))
	}))
	t.Cleanup(srv.Close)

	h := newHarness(t)
	require.NoError(t, h.run("validate", "--format", "table", srv.URL+"/web-01.json"))
	assert.Contains(t, h.stdout.String(), "SOURCE")
	assert.Contains(t, h.stdout.String(), "valid")
	assert.Contains(t, h.stdout.String(), "i-0abc")
}

func TestValidateNoInputs(t *testing.T) {
	h := newHarness(t)
	err := h.run("validate")
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidRequest))
}
