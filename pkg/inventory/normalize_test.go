package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/fleet-inventory/pkg/errors"
)

func containerCandidate() Candidate {
	return Candidate{
		Type:        TypeDocker,
		Name:        "nginx",
		Status:      "Up 2 hours",
		Image:       "nginx:latest",
		ContainerID: "abc123",
		PortsText:   "0.0.0.0:8038->8038/tcp, :::8038->8038/tcp",
		PID:         "111",
	}
}

func TestNormalizeContainer(t *testing.T) {
	rec, err := Normalize(containerCandidate())
	require.NoError(t, err)

	assert.Equal(t, "nginx", rec.Name)
	assert.Equal(t, TypeDocker, rec.Type)
	assert.Equal(t, "Up 2 hours", rec.Status)
	assert.Equal(t, "nginx:latest", Deref(rec.Image))
	assert.Equal(t, "abc123", Deref(rec.ContainerID))
	assert.Nil(t, rec.ProcessName)
	assert.Equal(t, PortList{8038}, rec.Ports)
	assert.Equal(t, PIDList{"111"}, rec.PIDs)
	assert.True(t, rec.ContainerShaped())
}

func TestNormalizeContainerUnknownPID(t *testing.T) {
	c := containerCandidate()
	c.PID = ""
	rec, err := Normalize(c)
	require.NoError(t, err)
	assert.Equal(t, PIDList{UnknownPID}, rec.PIDs)
}

func TestNormalizeService(t *testing.T) {
	rec, err := Normalize(Candidate{
		Type:        TypeSystemd,
		Name:        "sshd",
		ProcessName: "sshd",
		Ports:       []uint16{22},
		PID:         "812",
	})
	require.NoError(t, err)

	assert.Nil(t, rec.Image)
	assert.Nil(t, rec.ContainerID)
	assert.Equal(t, "sshd", Deref(rec.ProcessName))
	assert.Equal(t, "running", rec.Status)
	assert.Equal(t, PortList{22}, rec.Ports)
	assert.True(t, rec.ServiceShaped())
}

func TestNormalizeServiceDefaultsProcessName(t *testing.T) {
	rec, err := Normalize(Candidate{Type: TypeProcess, Name: "redis-server", PID: "42", Ports: []uint16{6379}})
	require.NoError(t, err)
	assert.Equal(t, "redis-server", Deref(rec.ProcessName))
}

func TestNormalizeRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Candidate)
		code   errors.ErrorCode
	}{
		{"empty name", func(c *Candidate) { c.Name = "" }, errors.ErrCodeMalformed},
		{"blank name", func(c *Candidate) { c.Name = "   " }, errors.ErrCodeMalformed},
		{"empty type", func(c *Candidate) { c.Type = "" }, errors.ErrCodeMalformed},
		{"empty image", func(c *Candidate) { c.Image = "" }, errors.ErrCodeMalformed},
		{"empty status", func(c *Candidate) { c.Status = "" }, errors.ErrCodeMalformed},
		{"empty id", func(c *Candidate) { c.ContainerID = "" }, errors.ErrCodeMalformed},
		{"exited", func(c *Candidate) { c.Status = "Exited (0) 3 days ago" }, errors.ErrCodeExcluded},
		{"created", func(c *Candidate) { c.Status = "Created" }, errors.ErrCodeExcluded},
		{"dead lowercase", func(c *Candidate) { c.Status = "dead" }, errors.ErrCodeExcluded},
		{"exited uppercase", func(c *Candidate) { c.Status = "EXITED" }, errors.ErrCodeExcluded},
		{"service without pid", func(c *Candidate) { c.Type = TypeProcess; c.PID = "" }, errors.ErrCodeMalformed},
		{"service with unknown pid", func(c *Candidate) { c.Type = TypeSystemd; c.PID = UnknownPID }, errors.ErrCodeMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := containerCandidate()
			tt.mutate(&c)
			_, err := Normalize(c)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, tt.code), "got %v", err)
		})
	}
}

func TestExcludedStatus(t *testing.T) {
	assert.True(t, ExcludedStatus("Exited (137) 1 hour ago"))
	assert.True(t, ExcludedStatus(" created"))
	assert.True(t, ExcludedStatus("Dead"))
	assert.False(t, ExcludedStatus("Up 5 minutes"))
	assert.False(t, ExcludedStatus("running"))
	assert.False(t, ExcludedStatus("Restarting (1) 2 seconds ago"))
	assert.False(t, ExcludedStatus(""))
}

func TestNormalizedEmptyNameNeverKeyed(t *testing.T) {
	c := containerCandidate()
	c.Name = ""
	ix := NewIndex()
	if rec, err := Normalize(c); err == nil {
		ix.Add(rec)
	}
	assert.Zero(t, ix.Len())
	_, found := ix.get(Key{Name: "", Type: TypeDocker})
	assert.False(t, found)
}
