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

package serializer

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	accorev1 "k8s.io/client-go/applyconfigurations/core/v1"

	"github.com/NVIDIA/fleet-inventory/pkg/defaults"
	"github.com/NVIDIA/fleet-inventory/pkg/errors"
	"github.com/NVIDIA/fleet-inventory/pkg/k8s/client"
)

const (
	// ConfigMapURIScheme prefixes ConfigMap destinations: cm://namespace/name.
	ConfigMapURIScheme = "cm://"

	// ConfigMapDataPrefix is the data key prefix; the key is prefix + extension.
	ConfigMapDataPrefix = "inventory."

	// FieldManager owns the fields written by server-side apply.
	FieldManager = "appinv"

	annotationPrefix = "appinv.nvidia.com/"
)

// Option configures ConfigMap and remote access.
type Option func(*options)

type options struct {
	kubeconfig   string
	kubeClient   client.Interface
	httpReader   *HttpReader
	collectionID string
}

// WithKubeconfig selects the kubeconfig used for cm:// URIs.
func WithKubeconfig(path string) Option {
	return func(o *options) { o.kubeconfig = path }
}

// WithKubeClient injects a Kubernetes client for cm:// URIs.
func WithKubeClient(c client.Interface) Option {
	return func(o *options) { o.kubeClient = c }
}

// WithHTTPReader injects the reader used for http(s) inputs.
func WithHTTPReader(r *HttpReader) Option {
	return func(o *options) { o.httpReader = r }
}

// WithCollectionID sets the collection id recorded on written ConfigMaps.
// A random id is generated when unset.
func WithCollectionID(id string) Option {
	return func(o *options) { o.collectionID = id }
}

func newOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *options) kube() (client.Interface, error) {
	if o.kubeClient != nil {
		return o.kubeClient, nil
	}
	cs, cfg, err := client.Get(o.kubeconfig)
	if err != nil {
		return nil, err
	}
	slog.Debug("kubernetes client ready", "auth_method", client.AuthMethod(cfg))
	return cs, nil
}

// ConfigMapWriter stores payloads in a ConfigMap using server-side apply.
type ConfigMapWriter struct {
	namespace string
	name      string
	format    Format
	opts      *options
}

// NewConfigMapWriter returns a writer for namespace/name.
func NewConfigMapWriter(namespace, name string, format Format, opts ...Option) *ConfigMapWriter {
	return &ConfigMapWriter{
		namespace: namespace,
		name:      name,
		format:    checkFormat(format),
		opts:      newOptions(opts),
	}
}

// Serialize encodes payload and applies the ConfigMap.
func (w *ConfigMapWriter) Serialize(ctx context.Context, payload any) error {
	ctx, cancel := context.WithTimeout(ctx, defaults.ConfigMapWriteTimeout)
	defer cancel()

	content, err := Encode(w.format, payload)
	if err != nil {
		return err
	}

	cs, err := w.opts.kube()
	if err != nil {
		return err
	}

	collectionID := w.opts.collectionID
	if collectionID == "" {
		collectionID = uuid.NewString()
	}

	annotations := map[string]string{}
	if d, ok := payload.(Describer); ok {
		for k, v := range d.Describe() {
			annotations[annotationPrefix+k] = v
		}
	}

	cm := accorev1.ConfigMap(w.name, w.namespace).
		WithLabels(map[string]string{
			"app.kubernetes.io/name":       "appinv",
			"app.kubernetes.io/component":  "inventory",
			"app.kubernetes.io/managed-by": FieldManager,
		}).
		WithAnnotations(annotations).
		WithData(map[string]string{
			ConfigMapDataPrefix + w.format.Extension(): string(content),
			"format":        string(w.format),
			"timestamp":     time.Now().UTC().Format(time.RFC3339),
			"collection_id": collectionID,
		})

	slog.Info("applying configmap",
		"namespace", w.namespace,
		"name", w.name,
		"format", w.format,
		"collection_id", collectionID)

	_, err = cs.CoreV1().ConfigMaps(w.namespace).Apply(ctx, cm, metav1.ApplyOptions{
		FieldManager: FieldManager,
		Force:        true,
	})
	if err != nil {
		return errors.WrapWithContext(errors.ErrCodeInternal, "failed to apply configmap", err,
			map[string]any{"namespace": w.namespace, "name": w.name})
	}
	return nil
}

func readConfigMap(ctx context.Context, o *options, namespace, name string) ([]byte, Format, error) {
	ctx, cancel := context.WithTimeout(ctx, defaults.ConfigMapReadTimeout)
	defer cancel()

	cs, err := o.kube()
	if err != nil {
		return nil, "", err
	}
	errCtx := map[string]any{"namespace": namespace, "name": name}

	cm, err := cs.CoreV1().ConfigMaps(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, "", errors.WrapWithContext(errors.ErrCodeNotFound, "failed to get configmap", err, errCtx)
	}

	candidates := []Format{FormatJSON, FormatYAML}
	if f := Format(cm.Data["format"]); f == FormatJSON || f == FormatYAML {
		candidates = append([]Format{f}, candidates...)
	}
	for _, f := range candidates {
		if data, ok := cm.Data[ConfigMapDataPrefix+f.Extension()]; ok {
			return []byte(data), f, nil
		}
	}
	return nil, "", errors.NewWithContext(errors.ErrCodeNotFound, "configmap holds no inventory data", errCtx)
}

func parseConfigMapURI(uri string) (string, string, error) {
	rest, ok := strings.CutPrefix(uri, ConfigMapURIScheme)
	if !ok {
		return "", "", errors.NewWithContext(errors.ErrCodeInvalidRequest, "configmap uri must start with "+ConfigMapURIScheme,
			map[string]any{"uri": uri})
	}
	namespace, name, found := strings.Cut(rest, "/")
	namespace, name = strings.TrimSpace(namespace), strings.TrimSpace(name)
	if !found || namespace == "" || name == "" || strings.Contains(name, "/") {
		return "", "", errors.NewWithContext(errors.ErrCodeInvalidRequest, "configmap uri must be cm://namespace/name",
			map[string]any{"uri": uri})
	}
	return namespace, name, nil
}
