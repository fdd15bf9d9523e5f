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
	"strconv"
	"strings"
	"sync"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/NVIDIA/fleet-inventory/pkg/collector/command"
	"github.com/NVIDIA/fleet-inventory/pkg/errors"
)

// ProcessResolver maps a pid to its command name.
type ProcessResolver interface {
	ProcessName(ctx context.Context, pid string) (string, error)
}

// PsutilResolver reads process names through gopsutil.
type PsutilResolver struct{}

// ProcessName implements ProcessResolver.
func (PsutilResolver) ProcessName(ctx context.Context, pid string) (string, error) {
	n, err := strconv.ParseInt(pid, 10, 32)
	if err != nil {
		return "", errors.NewWithContext(errors.ErrCodeInvalidRequest, "pid is not numeric", map[string]any{"pid": pid})
	}
	p, err := process.NewProcessWithContext(ctx, int32(n))
	if err != nil {
		return "", errors.WrapWithContext(errors.ErrCodeNotFound, "process not found", err, map[string]any{"pid": pid})
	}
	name, err := p.NameWithContext(ctx)
	if err != nil {
		return "", errors.WrapWithContext(errors.ErrCodeInternal, "failed to read process name", err, map[string]any{"pid": pid})
	}
	return name, nil
}

// PSResolver asks "ps" for the command name.
type PSResolver struct {
	Runner command.Runner
}

// ProcessName implements ProcessResolver.
func (r *PSResolver) ProcessName(ctx context.Context, pid string) (string, error) {
	out, err := r.Runner.Run(ctx, []string{"ps", "-p", pid, "-o", "comm="})
	if err != nil {
		return "", err
	}
	name := strings.TrimSpace(out)
	if name == "" {
		return "", errors.NewWithContext(errors.ErrCodeNotFound, "process not found", map[string]any{"pid": pid})
	}
	return name, nil
}

// ChainResolver returns the first successful answer of its resolvers.
type ChainResolver []ProcessResolver

// ProcessName implements ProcessResolver.
func (c ChainResolver) ProcessName(ctx context.Context, pid string) (string, error) {
	var lastErr error = errors.NewWithContext(errors.ErrCodeNotFound, "process not found", map[string]any{"pid": pid})
	for _, r := range c {
		name, err := r.ProcessName(ctx, pid)
		if err == nil && name != "" {
			return name, nil
		}
		if err != nil {
			lastErr = err
		}
	}
	return "", lastErr
}

// CachingResolver memoizes answers, including failures, for one run.
type CachingResolver struct {
	Resolver ProcessResolver

	mu    sync.Mutex
	cache map[string]cached
}

type cached struct {
	name string
	err  error
}

// ProcessName implements ProcessResolver.
func (c *CachingResolver) ProcessName(ctx context.Context, pid string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if hit, ok := c.cache[pid]; ok {
		return hit.name, hit.err
	}
	name, err := c.Resolver.ProcessName(ctx, pid)
	if c.cache == nil {
		c.cache = make(map[string]cached)
	}
	c.cache[pid] = cached{name: name, err: err}
	return name, err
}
