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

package config

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/NVIDIA/fleet-inventory/pkg/errors"
)

// DefaultPath is read when no config file is given explicitly.
const DefaultPath = "/etc/appinv/appinv.conf"

// Keys understood in the config file. They match the environment variables
// of the corresponding command line flags.
const (
	KeyRuntimes           = "APPINV_RUNTIMES"
	KeyRuntimeBackend     = "APPINV_RUNTIME_BACKEND"
	KeySocketScan         = "APPINV_SOCKET_SCAN"
	KeySocketSource       = "APPINV_SOCKET_SOURCE"
	KeyInspectConcurrency = "APPINV_INSPECT_CONCURRENCY"
	KeyInspectRate        = "APPINV_INSPECT_RATE"
	KeyInstanceID         = "APPINV_INSTANCE_ID"
	KeyInstanceName       = "APPINV_INSTANCE_NAME"
	KeyMetadataURL        = "APPINV_METADATA_URL"
	KeyOutput             = "APPINV_OUTPUT"
	KeyFormat             = "APPINV_FORMAT"
	KeyTimeout            = "APPINV_TIMEOUT"
	KeyMetricsFile        = "APPINV_METRICS_FILE"
	KeyLogLevel           = "APPINV_LOG_LEVEL"
)

// Values holds the settings read from a config file.
// A nil *Values behaves as an empty file.
type Values struct {
	path string
	m    map[string]string
}

// Load reads the config file at path. An empty path reads DefaultPath and
// tolerates its absence; an explicit path must exist.
func Load(path string) (*Values, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	m, err := NewParser().ParseFile(path)
	if err != nil {
		if !explicit && errors.IsCode(err, errors.ErrCodeNotFound) {
			slog.Debug("no config file", slog.String("path", path))
			return &Values{path: path, m: map[string]string{}}, nil
		}
		return nil, err
	}
	slog.Debug("loaded config file", slog.String("path", path), slog.Int("keys", len(m)))
	return &Values{path: path, m: m}, nil
}

// FromMap returns Values backed by m, keyed as in a config file.
func FromMap(m map[string]string) *Values {
	return &Values{path: "<memory>", m: m}
}

// Path returns the file the values were read from.
func (v *Values) Path() string {
	if v == nil {
		return ""
	}
	return v.path
}

// Lookup returns the raw value for key.
func (v *Values) Lookup(key string) (string, bool) {
	if v == nil {
		return "", false
	}
	s, ok := v.m[key]
	return s, ok
}

// String returns the value for key or def.
func (v *Values) String(key, def string) string {
	if s, ok := v.Lookup(key); ok {
		return s
	}
	return def
}

// List returns the comma separated value for key or def.
func (v *Values) List(key string, def []string) []string {
	s, ok := v.Lookup(key)
	if !ok {
		return def
	}
	return SplitList(s)
}

// Bool returns the boolean value for key or def.
func (v *Values) Bool(key string, def bool) (bool, error) {
	s, ok := v.Lookup(key)
	if !ok {
		return def, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return def, v.invalid(key, s, err)
	}
	return b, nil
}

// Int returns the integer value for key or def.
func (v *Values) Int(key string, def int) (int, error) {
	s, ok := v.Lookup(key)
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def, v.invalid(key, s, err)
	}
	return n, nil
}

// Float returns the floating point value for key or def.
func (v *Values) Float(key string, def float64) (float64, error) {
	s, ok := v.Lookup(key)
	if !ok {
		return def, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def, v.invalid(key, s, err)
	}
	return f, nil
}

// Duration returns the duration value for key or def.
func (v *Values) Duration(key string, def time.Duration) (time.Duration, error) {
	s, ok := v.Lookup(key)
	if !ok {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def, v.invalid(key, s, err)
	}
	return d, nil
}

func (v *Values) invalid(key, value string, err error) error {
	return errors.WrapWithContext(errors.ErrCodeInvalidRequest, "invalid config value", err,
		map[string]any{"key": key, "value": value, "path": v.Path()})
}

// SplitList splits a comma separated list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
