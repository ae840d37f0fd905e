//
// Copyright 2018-2026 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package modelfetch

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/juju/clock"
)

const (
	// DefaultConnectTimeout bounds the time spent establishing a connection.
	DefaultConnectTimeout = 20 * time.Second
	// DefaultReadTimeout bounds the time spent waiting for response data.
	DefaultReadTimeout = 60 * time.Second
	// DefaultUserAgent is sent with every request unless overridden.
	DefaultUserAgent = "go.bug.st/modelfetch"
	// DefaultBufferSize is the size of the chunks copied to disk.
	DefaultBufferSize = 8 * 1024
	// TempSuffix is appended to the target path to name the temporary file.
	TempSuffix = ".tmp"
)

// Config contains the configuration for the transfers
type Config struct {
	// HttpClient to use to perform HTTP requests. If its Transport is nil,
	// a transport honoring ConnectTimeout is created for each transfer.
	HttpClient http.Client
	// ExtraHeaders to add to the HTTP requests.
	ExtraHeaders map[string]string
	// UserAgent sent with the requests. Default: DefaultUserAgent.
	UserAgent string
	// ConnectTimeout bounds dialing and the TLS handshake. Non-positive
	// values select DefaultConnectTimeout.
	ConnectTimeout time.Duration
	// ReadTimeout is the duration after which, if no data is received,
	// the transfer is aborted. It also bounds the wait for the response
	// headers. Non-positive values select DefaultReadTimeout.
	ReadTimeout time.Duration
	// BufferSize is the size of the read buffer. Default: DefaultBufferSize.
	BufferSize int
	// AcceptFunc is an optional function that will be called once the
	// server answered 200 OK, before anything is written to disk.
	// If the function returns an error, the transfer is aborted.
	AcceptFunc func(resp *http.Response) error
	// Clock drives the read timeout. Default: clock.WallClock.
	Clock clock.Clock
}

var defaultConfig Config = Config{}
var defaultConfigLock sync.Mutex

// SetDefaultConfig sets the configuration that will be used by NewStore.
func SetDefaultConfig(newConfig Config) {
	defaultConfigLock.Lock()
	defer defaultConfigLock.Unlock()
	defaultConfig = newConfig
}

// GetDefaultConfig returns a copy of the default configuration. The default
// configuration can be changed using the SetDefaultConfig function.
func GetDefaultConfig() Config {
	defaultConfigLock.Lock()
	defer defaultConfigLock.Unlock()

	// deep copy struct
	res := defaultConfig
	if defaultConfig.ExtraHeaders != nil {
		res.ExtraHeaders = make(map[string]string, len(defaultConfig.ExtraHeaders))
		for k, v := range defaultConfig.ExtraHeaders {
			res.ExtraHeaders[k] = v
		}
	}
	return res
}

// withDefaults returns a copy of the config with every unset field filled.
func (c Config) withDefaults() Config {
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	if c.BufferSize <= 0 {
		c.BufferSize = DefaultBufferSize
	}
	if c.Clock == nil {
		c.Clock = clock.WallClock
	}
	return c
}

// client returns the HTTP client for a single transfer. The returned
// function must be called when the transfer is over.
func (c Config) client() (*http.Client, func()) {
	client := c.HttpClient
	if client.Transport != nil {
		return &client, func() {}
	}
	dialer := &net.Dialer{
		Timeout:   c.ConnectTimeout,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   c.ConnectTimeout,
		ResponseHeaderTimeout: c.ReadTimeout,
		ForceAttemptHTTP2:     true,
		DisableKeepAlives:     true, // one transport per transfer
		DisableCompression:    true, // keep Content-Length usable for progress
	}
	client.Transport = transport
	return &client, transport.CloseIdleConnections
}
