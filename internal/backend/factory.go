// Copyright (c) 2025 Snapcourier
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"net/http"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"snapcourier/cli/internal/config"
	"snapcourier/cli/internal/keychain"
	"snapcourier/cli/internal/logging"
	"snapcourier/cli/internal/pipeline"
)

// Options wires an HTTP backend.
type Options struct {
	BaseURL   string
	Endpoints config.Endpoints
	Timeout   time.Duration
	// Transport is the plain transport. Defaults to http.DefaultTransport.
	Transport http.RoundTripper
	Store     keychain.Store
	// OnTeardown is handed to the pipeline and runs when renewal fails.
	OnTeardown func()
	Logger     *pterm.Logger
}

// FromConfig fills Options from the loaded configuration.
func FromConfig(c config.Config) Options {
	return Options{
		BaseURL:   c.BackendURL,
		Endpoints: c.Endpoints,
		Timeout:   c.Timeout(),
	}
}

// New creates the HTTP backend. Authenticated calls go through a pipeline
// built over opts.Transport; renewal uses opts.Transport directly.
func New(opts Options) *HTTP {
	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}

	h := &HTTP{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		endpoints: opts.Endpoints,
		plain:     &http.Client{Timeout: opts.Timeout, Transport: base},
		log:       log,
	}
	h.client = &http.Client{
		Timeout: opts.Timeout,
		Transport: pipeline.New(pipeline.Config{
			Base:       base,
			Store:      opts.Store,
			Renew:      h.RefreshToken,
			OnTeardown: opts.OnTeardown,
			Logger:     log,
		}),
	}
	return h
}
