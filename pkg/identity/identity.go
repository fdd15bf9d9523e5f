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

package identity

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/NVIDIA/fleet-inventory/pkg/defaults"
	"github.com/NVIDIA/fleet-inventory/pkg/inventory"
)

// DefaultMetadataURL is the instance metadata service queried by default.
const DefaultMetadataURL = "http://100.100.100.200/latest/meta-data"

// Unknown is used when no source yields a value.
const Unknown = "unknown"

// Sources of a resolved value, reported in logs.
const (
	SourceFlag     = "flag"
	SourceMetadata = "metadata"
	SourceNode     = "node"
	SourceHostname = "hostname"
	SourceNone     = "none"
)

// MetadataReader fetches a metadata document.
type MetadataReader interface {
	ReadWithContext(ctx context.Context, url string) ([]byte, error)
}

// Resolver determines the identity of the local instance. Explicit values
// win, then the metadata service, then the Kubernetes node name, then the
// host name.
type Resolver struct {
	InstanceID   string
	InstanceName string

	// MetadataURL is the metadata base URL. Empty disables the lookup.
	MetadataURL string
	Reader      MetadataReader

	Getenv   func(string) string
	Hostname func() (string, error)
}

// Resolve never fails; unresolvable fields become Unknown.
func (r *Resolver) Resolve(ctx context.Context) inventory.Identity {
	id, idSource := strings.TrimSpace(r.InstanceID), SourceFlag
	name, nameSource := strings.TrimSpace(r.InstanceName), SourceFlag

	if (id == "" || name == "") && r.MetadataURL != "" && r.Reader != nil {
		mdID, mdName := r.fromMetadata(ctx)
		if id == "" && mdID != "" {
			id, idSource = mdID, SourceMetadata
		}
		if name == "" && mdName != "" {
			name, nameSource = mdName, SourceMetadata
		}
	}

	if id == "" || name == "" {
		host, source := r.localName()
		if id == "" {
			id, idSource = host, source
		}
		if name == "" {
			name, nameSource = host, source
		}
	}

	slog.Debug("resolved instance identity",
		slog.String("instance_id", id), slog.String("id_source", idSource),
		slog.String("instance_name", name), slog.String("name_source", nameSource))
	return inventory.Identity{InstanceID: id, InstanceName: name}
}

func (r *Resolver) fromMetadata(ctx context.Context) (string, string) {
	ctx, cancel := context.WithTimeout(ctx, defaults.MetadataTimeout)
	defer cancel()

	base := strings.TrimRight(r.MetadataURL, "/")
	var id, name string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		id = r.fetch(gctx, base+"/instance-id")
		return nil
	})
	g.Go(func() error {
		name = r.fetch(gctx, base+"/hostname")
		return nil
	})
	_ = g.Wait()
	return id, name
}

func (r *Resolver) fetch(ctx context.Context, url string) string {
	b, err := r.Reader.ReadWithContext(ctx, url)
	if err != nil {
		slog.Debug("metadata lookup failed", slog.String("url", url), slog.String("error", err.Error()))
		return ""
	}
	v := strings.TrimSpace(string(b))
	if strings.ContainsAny(v, "\n<") {
		slog.Debug("metadata response is not a plain value", slog.String("url", url))
		return ""
	}
	return v
}

func (r *Resolver) localName() (string, string) {
	getenv := r.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	for _, key := range []string{"NODE_NAME", "KUBERNETES_NODE_NAME"} {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v, SourceNode
		}
	}

	hostname := r.Hostname
	if hostname == nil {
		hostname = os.Hostname
	}
	if h, err := hostname(); err == nil && strings.TrimSpace(h) != "" {
		return strings.TrimSpace(h), SourceHostname
	}
	return Unknown, SourceNone
}
