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
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/fleet-inventory/pkg/errors"
)

// Writer encodes payloads onto an io.Writer, or atomically into a file.
type Writer struct {
	format Format
	output io.Writer
	// path is set for file destinations. The file is only replaced once a
	// payload has been fully encoded and written.
	path string
}

// NewWriter returns a Writer for output; nil output means stdout. Unknown
// formats fall back to JSON.
func NewWriter(format Format, output io.Writer) *Writer {
	if output == nil {
		output = os.Stdout
	}
	return &Writer{format: checkFormat(format), output: output}
}

// NewStdoutWriter returns a Writer for stdout.
func NewStdoutWriter(format Format) *Writer {
	return NewWriter(format, os.Stdout)
}

// NewFileWriterOrStdout picks the destination from path: empty or "-" is
// stdout, cm://namespace/name is a ConfigMap, anything else is a file.
func NewFileWriterOrStdout(format Format, path string, opts ...Option) (Serializer, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" || trimmed == "-" {
		return NewStdoutWriter(format), nil
	}

	if strings.HasPrefix(trimmed, ConfigMapURIScheme) {
		namespace, name, err := parseConfigMapURI(trimmed)
		if err != nil {
			return nil, err
		}
		return NewConfigMapWriter(namespace, name, format, opts...), nil
	}

	if info, err := os.Stat(filepath.Dir(trimmed)); err != nil || !info.IsDir() {
		return nil, errors.WrapWithContext(errors.ErrCodeInvalidRequest, "output directory does not exist", err,
			map[string]any{"path": trimmed})
	}
	return &Writer{format: checkFormat(format), path: trimmed}, nil
}

// Serialize encodes payload in the writer's format.
func (w *Writer) Serialize(ctx context.Context, payload any) error {
	if err := ctx.Err(); err != nil {
		return errors.FromContext(err, "serialize canceled", nil)
	}
	b, err := Encode(w.format, payload)
	if err != nil {
		return err
	}
	if w.path != "" {
		return writeFileAtomic(w.path, b)
	}
	if _, err := w.output.Write(b); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to write output", err)
	}
	return nil
}

// writeFileAtomic writes b to a temporary file next to path and renames it
// into place, so path holds either the previous content or all of b.
func writeFileAtomic(path string, b []byte) error {
	ectx := map[string]any{"path": path}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.WrapWithContext(errors.ErrCodeInternal, "failed to create output file", err, ectx)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return errors.WrapWithContext(errors.ErrCodeInternal, "failed to write output", err, ectx)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return errors.WrapWithContext(errors.ErrCodeInternal, "failed to write output", err, ectx)
	}
	if err := tmp.Close(); err != nil {
		return errors.WrapWithContext(errors.ErrCodeInternal, "failed to write output", err, ectx)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.WrapWithContext(errors.ErrCodeInternal, "failed to replace output file", err, ectx)
	}
	return nil
}

// Encode renders payload in format. Table output requires a TableRenderer.
func Encode(format Format, payload any) ([]byte, error) {
	switch format {
	case FormatJSON:
		b, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, "failed to serialize to JSON", err)
		}
		return append(b, '\n'), nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(payload); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, "failed to serialize to YAML", err)
		}
		if err := enc.Close(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, "failed to serialize to YAML", err)
		}
		return buf.Bytes(), nil
	case FormatTable:
		tr, ok := payload.(TableRenderer)
		if !ok {
			return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest, "payload cannot be rendered as a table",
				map[string]any{"type": fmt.Sprintf("%T", payload)})
		}
		return renderTable(tr)
	default:
		return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest, "unsupported format",
			map[string]any{"format": string(format)})
	}
}

func renderTable(tr TableRenderer) ([]byte, error) {
	header, rows := tr.Table()
	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to render table", err)
	}
	return buf.Bytes(), nil
}

func checkFormat(format Format) Format {
	if format.IsUnknown() {
		slog.Warn("unknown format, defaulting to json", "format", format)
		return FormatJSON
	}
	return format
}
