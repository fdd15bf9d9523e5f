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

package client

import (
	"os"
	"path/filepath"
	"sync"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"

	"github.com/NVIDIA/fleet-inventory/pkg/errors"
)

// Interface is kubernetes.Interface, aliased so callers can inject
// fake.NewClientset() in tests.
type Interface = kubernetes.Interface

type cached struct {
	client Interface
	config *rest.Config
	err    error
}

var (
	mu      sync.Mutex
	clients = map[string]cached{}
)

// Get returns a client for kubeconfig, building it on first use. An empty
// path means automatic discovery. Results, including failures, are cached
// per path for the life of the process.
func Get(kubeconfig string) (Interface, *rest.Config, error) {
	mu.Lock()
	defer mu.Unlock()

	if c, ok := clients[kubeconfig]; ok {
		return c.client, c.config, c.err
	}
	cs, cfg, err := Build(kubeconfig)
	c := cached{config: cfg, err: err}
	if err == nil {
		c.client = cs
	}
	clients[kubeconfig] = c
	return c.client, c.config, c.err
}

// ResolveKubeconfig returns the kubeconfig path Build would use: the given
// path, then KUBECONFIG, then ~/.kube/config when it exists. Empty means
// in-cluster configuration.
func ResolveKubeconfig(kubeconfig string) string {
	if kubeconfig != "" {
		return kubeconfig
	}
	if env := os.Getenv("KUBECONFIG"); env != "" {
		return env
	}
	home := filepath.Join(homedir.HomeDir(), ".kube", "config")
	if _, err := os.Stat(home); err == nil {
		return home
	}
	return ""
}

// Build creates a new clientset, bypassing the cache.
func Build(kubeconfig string) (*kubernetes.Clientset, *rest.Config, error) {
	path := ResolveKubeconfig(kubeconfig)

	var (
		cfg *rest.Config
		err error
	)
	if path == "" {
		cfg, err = rest.InClusterConfig()
		if err != nil {
			return nil, nil, errors.Wrap(errors.ErrCodeUnavailable, "no kubeconfig found and not running in a cluster", err)
		}
	} else {
		cfg, err = clientcmd.BuildConfigFromFlags("", path)
		if err != nil {
			return nil, nil, errors.WrapWithContext(errors.ErrCodeInvalidRequest, "failed to build kube config", err,
				map[string]any{"kubeconfig": path})
		}
	}

	cs, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInternal, "failed to create kubernetes client", err)
	}
	return cs, cfg, nil
}

// AuthMethod names the credential type of cfg for audit logs.
func AuthMethod(cfg *rest.Config) string {
	switch {
	case cfg == nil:
		return "none"
	case cfg.AuthProvider != nil:
		return cfg.AuthProvider.Name
	case cfg.ExecProvider != nil:
		return "exec"
	case cfg.BearerToken != "" || cfg.BearerTokenFile != "":
		return "bearer-token"
	case cfg.CertData != nil || cfg.CertFile != "":
		return "cert"
	default:
		return "default"
	}
}
