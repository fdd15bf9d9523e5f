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

package socket

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v3/net"

	"github.com/NVIDIA/fleet-inventory/pkg/collector/command"
	"github.com/NVIDIA/fleet-inventory/pkg/errors"
	"github.com/NVIDIA/fleet-inventory/pkg/inventory"
)

// Listener is one listening TCP socket and its owning process.
type Listener struct {
	Port uint16
	PID  string
	// Process is the command name reported alongside the socket, if any.
	Process string
}

// Lister enumerates listening TCP sockets.
type Lister interface {
	ListListening(ctx context.Context) ([]Listener, error)
}

var (
	pidPattern     = regexp.MustCompile(`pid=(\d+)`)
	processPattern = regexp.MustCompile(`\(\("([^"]+)"`)
)

// SSLister parses "ss -H -tlnp" output.
type SSLister struct {
	Runner command.Runner
}

// ListListening implements Lister.
func (l *SSLister) ListListening(ctx context.Context) ([]Listener, error) {
	out, err := l.Runner.Run(ctx, []string{"ss", "-H", "-tlnp"})
	if err != nil {
		return nil, err
	}
	return ParseSS(out), nil
}

// ParseSS extracts one listener per line of ss output. The first pid on a
// line is used. Lines without a pid or a parseable local port are skipped.
func ParseSS(out string) []Listener {
	var listeners []Listener
	for _, line := range command.Lines(out) {
		fields := strings.Fields(line)
		if len(fields) < 5 || fields[0] == "State" {
			continue
		}
		port, ok := inventory.ParseAddrPort(fields[3])
		if !ok {
			continue
		}
		m := pidPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		l := Listener{Port: port, PID: m[1]}
		if p := processPattern.FindStringSubmatch(line); p != nil {
			l.Process = p[1]
		}
		listeners = append(listeners, l)
	}
	return listeners
}

type connectionsFunc func(ctx context.Context, kind string) ([]net.ConnectionStat, error)

// PsutilLister reads listening sockets through gopsutil.
type PsutilLister struct {
	connections connectionsFunc
}

// NewPsutilLister returns a PsutilLister backed by the host's socket tables.
func NewPsutilLister() *PsutilLister {
	return &PsutilLister{connections: net.ConnectionsWithContext}
}

// ListListening implements Lister.
func (l *PsutilLister) ListListening(ctx context.Context) ([]Listener, error) {
	conns, err := l.connections(ctx, "tcp")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnavailable, "failed to read socket tables", err)
	}
	var listeners []Listener
	for _, c := range conns {
		if c.Status != "LISTEN" || c.Pid <= 0 || c.Laddr.Port == 0 || c.Laddr.Port > 65535 {
			continue
		}
		listeners = append(listeners, Listener{
			Port: uint16(c.Laddr.Port),
			PID:  strconv.Itoa(int(c.Pid)),
		})
	}
	return listeners, nil
}

// FallbackLister tries Primary first and uses Secondary when Primary fails
// or reports nothing.
type FallbackLister struct {
	Primary   Lister
	Secondary Lister
}

// ListListening implements Lister.
func (l *FallbackLister) ListListening(ctx context.Context) ([]Listener, error) {
	listeners, err := l.Primary.ListListening(ctx)
	if err == nil && len(listeners) > 0 {
		return listeners, nil
	}
	if err != nil {
		slog.Debug("primary socket lister failed", slog.String("error", err.Error()))
	}
	if l.Secondary == nil {
		return listeners, err
	}
	return l.Secondary.ListListening(ctx)
}
