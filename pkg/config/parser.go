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
	"bufio"
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/NVIDIA/fleet-inventory/pkg/errors"
)

// Option configures a Parser.
type Option func(*Parser)

// Parser reads KEY=VALUE configuration files.
//
// Blank lines and lines starting with '#' are ignored, an optional leading
// "export " is stripped and values may be wrapped in single or double quotes.
type Parser struct {
	maxSize     int
	kvDelimiter string
	upperKeys   bool
}

// WithMaxSize sets the maximum accepted file size in bytes. Default is 64KiB.
func WithMaxSize(size int) Option {
	return func(p *Parser) {
		p.maxSize = size
	}
}

// WithKVDelimiter sets the key-value delimiter. Default is "=".
func WithKVDelimiter(kvDelim string) Option {
	return func(p *Parser) {
		p.kvDelimiter = kvDelim
	}
}

// WithUpperKeys sets whether keys are upper-cased. Default is true.
func WithUpperKeys(upper bool) Option {
	return func(p *Parser) {
		p.upperKeys = upper
	}
}

// NewParser creates a parser with the provided options.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		maxSize:     64 << 10,
		kvDelimiter: "=",
		upperKeys:   true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseFile reads and parses the file at path.
func (p *Parser) ParseFile(path string) (map[string]string, error) {
	if path == "" {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "config path cannot be empty")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		code := errors.ErrCodeInternal
		if os.IsNotExist(err) {
			code = errors.ErrCodeNotFound
		}
		return nil, errors.WrapWithContext(code, "failed to read config file", err, map[string]any{"path": path})
	}
	values, err := p.Parse(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return values, nil
}

// Parse parses KEY=VALUE content from r. Later keys override earlier ones.
func (p *Parser) Parse(r io.Reader) (map[string]string, error) {
	b, err := io.ReadAll(io.LimitReader(r, int64(p.maxSize)+1))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to read config", err)
	}
	if len(b) > p.maxSize {
		return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest, "config exceeds maximum size",
			map[string]any{"max_size": p.maxSize})
	}
	if !utf8.Valid(b) {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "config is not valid UTF-8")
	}

	result := make(map[string]string)
	sc := bufio.NewScanner(bytes.NewReader(b))
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))

		key, value, ok := strings.Cut(line, p.kvDelimiter)
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest, "malformed config line",
				map[string]any{"line": lineNo})
		}
		if p.upperKeys {
			key = strings.ToUpper(key)
		}
		if _, dup := result[key]; dup {
			slog.Debug("config key overridden", slog.String("key", key), slog.Int("line", lineNo))
		}
		result[key] = unquote(strings.TrimSpace(value))
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "failed to scan config", err)
	}
	return result, nil
}

func unquote(v string) string {
	if len(v) >= 2 {
		if (v[0] == '"' && v[len(v)-1] == '"') || (v[0] == '\'' && v[len(v)-1] == '\'') {
			return v[1 : len(v)-1]
		}
	}
	if i := strings.Index(v, " #"); i >= 0 {
		return strings.TrimSpace(v[:i])
	}
	return v
}
