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
	"crypto/tls"
	stderrors "errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/NVIDIA/fleet-inventory/pkg/defaults"
	"github.com/NVIDIA/fleet-inventory/pkg/errors"
)

// HttpReaderUserAgent is sent with every request.
const HttpReaderUserAgent = "appinv/1.0"

// HttpReaderDefaultMaxBytes caps a response body.
const HttpReaderDefaultMaxBytes int64 = 16 << 20

// HttpReaderOption configures an HttpReader.
type HttpReaderOption func(*HttpReader)

// HttpReader fetches documents over HTTP GET.
type HttpReader struct {
	UserAgent      string
	TotalTimeout   time.Duration
	ConnectTimeout time.Duration
	MaxBytes       int64
	Client         *http.Client

	customClient bool
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) HttpReaderOption {
	return func(r *HttpReader) { r.UserAgent = userAgent }
}

// WithTotalTimeout bounds each request end to end.
func WithTotalTimeout(timeout time.Duration) HttpReaderOption {
	return func(r *HttpReader) { r.TotalTimeout = timeout }
}

// WithConnectTimeout bounds connection establishment.
func WithConnectTimeout(timeout time.Duration) HttpReaderOption {
	return func(r *HttpReader) { r.ConnectTimeout = timeout }
}

// WithMaxBytes caps the accepted body size.
func WithMaxBytes(n int64) HttpReaderOption {
	return func(r *HttpReader) { r.MaxBytes = n }
}

// WithClient replaces the HTTP client. Timeout options then only apply to
// the client's Timeout field.
func WithClient(client *http.Client) HttpReaderOption {
	return func(r *HttpReader) {
		r.Client = client
		r.customClient = client != nil
	}
}

// NewHttpReader returns a reader with the package defaults.
func NewHttpReader(options ...HttpReaderOption) *HttpReader {
	r := &HttpReader{
		UserAgent:      HttpReaderUserAgent,
		TotalTimeout:   defaults.HTTPClientTimeout,
		ConnectTimeout: defaults.HTTPConnectTimeout,
		MaxBytes:       HttpReaderDefaultMaxBytes,
	}
	for _, opt := range options {
		opt(r)
	}

	if !r.customClient {
		r.Client = &http.Client{Transport: newTransport(r.ConnectTimeout)}
	}
	if r.TotalTimeout > 0 {
		r.Client.Timeout = r.TotalTimeout
	}
	return r
}

func newTransport(connect time.Duration) *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   connect,
			KeepAlive: defaults.HTTPKeepAlive,
		}).DialContext,
		MaxIdleConns:          10,
		IdleConnTimeout:       defaults.HTTPIdleConnTimeout,
		TLSHandshakeTimeout:   defaults.HTTPTLSHandshakeTimeout,
		ResponseHeaderTimeout: defaults.HTTPResponseHeaderTimeout,
		ExpectContinueTimeout: defaults.HTTPExpectContinueTimeout,
		ForceAttemptHTTP2:     true,
		TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
	}
}

// ReadWithContext GETs url and returns the body. Non-200 responses are
// errors; 404 maps to ErrCodeNotFound.
func (r *HttpReader) ReadWithContext(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "url is empty")
	}
	errCtx := map[string]any{"url": url}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeInvalidRequest, "failed to create request", err, errCtx)
	}
	if r.UserAgent != "" {
		req.Header.Set("User-Agent", r.UserAgent)
	}

	resp, err := r.Client.Do(req)
	if err != nil {
		var nerr net.Error
		if stderrors.Is(err, context.DeadlineExceeded) || (stderrors.As(err, &nerr) && nerr.Timeout()) {
			return nil, errors.WrapWithContext(errors.ErrCodeTimeout, "http request timed out", err, errCtx)
		}
		return nil, errors.WrapWithContext(errors.ErrCodeUnavailable, "http request failed", err, errCtx)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.NewWithContext(errors.ErrCodeNotFound, "resource not found", errCtx)
	case resp.StatusCode != http.StatusOK:
		errCtx["status"] = resp.Status
		return nil, errors.NewWithContext(errors.ErrCodeUnavailable, "unexpected http status", errCtx)
	}

	limit := r.MaxBytes
	if limit <= 0 {
		limit = HttpReaderDefaultMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeInternal, "failed to read response body", err, errCtx)
	}
	if int64(len(data)) > limit {
		errCtx["limit"] = limit
		return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest, "response body too large", errCtx)
	}
	return data, nil
}
