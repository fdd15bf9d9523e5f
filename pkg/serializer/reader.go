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
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/fleet-inventory/pkg/errors"
)

// Reader decodes JSON or YAML from an io.Reader.
type Reader struct {
	format Format
	input  io.Reader
}

// NewReader returns a Reader. Table output cannot be read back.
func NewReader(format Format, input io.Reader) (*Reader, error) {
	switch format {
	case FormatJSON, FormatYAML:
	case FormatTable:
		return nil, errors.New(errors.ErrCodeInvalidRequest, "table format does not support deserialization")
	default:
		return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest, "unknown format",
			map[string]any{"format": string(format)})
	}
	if input == nil {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "input is nil")
	}
	return &Reader{format: format, input: input}, nil
}

// Deserialize decodes the input into v.
func (r *Reader) Deserialize(v any) error {
	var err error
	switch r.format {
	case FormatYAML:
		err = yaml.NewDecoder(r.input).Decode(v)
	default:
		err = json.NewDecoder(r.input).Decode(v)
	}
	if err != nil {
		return errors.WrapWithContext(errors.ErrCodeInvalidRequest, "failed to decode input", err,
			map[string]any{"format": string(r.format)})
	}
	return nil
}

// FromBytes decodes data in format into a new T.
func FromBytes[T any](format Format, data []byte) (*T, error) {
	r, err := NewReader(format, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	var v T
	if err := r.Deserialize(&v); err != nil {
		return nil, err
	}
	return &v, nil
}

// FromFile loads a T from a local path, an http(s) URL, or a
// cm://namespace/name URI. The format follows the extension, defaulting to
// JSON; ConfigMaps declare their own.
func FromFile[T any](ctx context.Context, path string, opts ...Option) (*T, error) {
	data, format, err := load(ctx, path, newOptions(opts))
	if err != nil {
		return nil, err
	}
	v, err := FromBytes[T](format, data)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeInvalidRequest, "failed to load document", err,
			map[string]any{"path": path})
	}
	slog.Debug("loaded document", "path", path, "format", format, "bytes", len(data))
	return v, nil
}

// IsRemote reports whether path names a URL or ConfigMap rather than a file.
func IsRemote(path string) bool {
	return strings.HasPrefix(path, ConfigMapURIScheme) ||
		strings.HasPrefix(path, "http://") ||
		strings.HasPrefix(path, "https://")
}

func load(ctx context.Context, path string, o *options) ([]byte, Format, error) {
	switch {
	case strings.HasPrefix(path, ConfigMapURIScheme):
		namespace, name, err := parseConfigMapURI(path)
		if err != nil {
			return nil, "", err
		}
		return readConfigMap(ctx, o, namespace, name)

	case strings.HasPrefix(path, "http://"), strings.HasPrefix(path, "https://"):
		hr := o.httpReader
		if hr == nil {
			hr = NewHttpReader()
		}
		data, err := hr.ReadWithContext(ctx, path)
		if err != nil {
			return nil, "", err
		}
		format := FormatJSON
		if u, perr := url.Parse(path); perr == nil {
			format = readableFormat(FormatFromPath(u.Path))
		}
		return data, format, nil

	default:
		data, err := os.ReadFile(path)
		if err != nil {
			code := errors.ErrCodeInternal
			if os.IsNotExist(err) {
				code = errors.ErrCodeNotFound
			}
			return nil, "", errors.WrapWithContext(code, "failed to read file", err, map[string]any{"path": path})
		}
		return data, readableFormat(FormatFromPath(path)), nil
	}
}

func readableFormat(f Format) Format {
	if f == FormatYAML {
		return f
	}
	return FormatJSON
}
