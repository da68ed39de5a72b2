// Copyright (c) 2025 Snapcourier
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package auth owns the authenticated session of the CLI.
// The Controller resolves the current user from stored credentials, logs in
// and out, and publishes the derived {user, loading} view. It registers its
// Logout as the request pipeline's teardown handler, so a failed token
// renewal ends the session exactly like a user-initiated logout.
package auth

import (
	"context"
	"sync"

	"github.com/pterm/pterm"

	"snapcourier/cli/internal/backend"
	"snapcourier/cli/internal/keychain"
	"snapcourier/cli/internal/logging"
)

// APIFactory builds the backend the controller talks to. onTeardown must be
// wired into the request pipeline.
type APIFactory func(onTeardown func()) backend.API

// Controller is the session state machine.
type Controller struct {
	store keychain.Store
	api   backend.API
	log   *pterm.Logger

	mu       sync.Mutex
	state    State
	user     *backend.User
	inflight int
	lastErr  error
	subs     map[int]func(View)
	nextSub  int
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger used for login and identity failures.
func WithLogger(l *pterm.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// New creates a controller in the Initializing state. newAPI receives the
// controller's Logout as the teardown handler.
func New(store keychain.Store, newAPI APIFactory, opts ...Option) *Controller {
	c := &Controller{
		store: store,
		state: Initializing,
		log:   logging.Discard(),
		subs:  make(map[int]func(View)),
	}
	for _, o := range opts {
		o(c)
	}
	c.api = newAPI(c.Logout)
	return c
}

// API returns the backend wired to this session.
func (c *Controller) API() backend.API { return c.api }

// Init resolves the identity behind the stored credentials. Call it once at
// startup.
func (c *Controller) Init(ctx context.Context) {
	c.setErr(nil)
	c.resolveIdentity(ctx)
}

// Login exchanges credentials for a token pair, stores it and resolves the
// identity. It reports whether the session ended up authenticated; the
// underlying error is logged and kept for Err.
func (c *Controller) Login(ctx context.Context, email, password string) bool {
	c.begin()
	defer c.end()

	c.setErr(nil)
	pair, err := c.api.Login(ctx, email, password)
	if err != nil {
		c.setErr(err)
		c.log.Warn("login failed", c.log.Args(
			"email", logging.Email(email),
			"error", logging.Mask(err.Error()),
		))
		return false
	}
	if err := keychain.SavePair(c.store, pair); err != nil {
		c.setErr(err)
		c.log.Error("could not store credentials", c.log.Args("error", err.Error()))
		c.Logout()
		return false
	}
	return c.resolveIdentity(ctx)
}

// Logout clears the user and both stored tokens. Safe to call at any time.
func (c *Controller) Logout() {
	keychain.ClearPair(c.store)

	c.mu.Lock()
	changed := c.state != Unauthenticated || c.user != nil
	c.user = nil
	c.state = Unauthenticated
	c.mu.Unlock()

	if changed {
		c.log.Debug("session ended")
		c.notify()
	}
}

// View returns the current session view.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe registers fn to receive every view change. The returned function
// unregisters it.
func (c *Controller) Subscribe(fn func(View)) (cancel func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// Err returns the failure behind the last unsuccessful Login or Init, or nil.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

func (c *Controller) setErr(err error) {
	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()
}

// resolveIdentity fetches user-info. Any failure is treated as having no
// valid session.
func (c *Controller) resolveIdentity(ctx context.Context) bool {
	c.begin()
	defer c.end()

	if _, ok := keychain.LoadPair(c.store); !ok {
		c.Logout()
		return false
	}

	u, err := c.api.UserInfo(ctx)
	if err != nil {
		c.setErr(err)
		c.log.Warn("could not resolve identity", c.log.Args("error", logging.Mask(err.Error())))
		c.Logout()
		return false
	}
	// A logout while the call was in flight wins.
	if _, ok := keychain.LoadPair(c.store); !ok {
		c.Logout()
		return false
	}

	c.mu.Lock()
	c.user = &u
	c.state = Authenticated
	c.mu.Unlock()
	c.log.Debug("session resolved", c.log.Args("user", logging.Email(u.Email), "role", string(u.Role)))
	c.notify()
	return true
}

// begin and end bracket a loading operation. Nested operations keep loading
// true until the outermost one ends. An operation that finishes without
// resolving a session settles Initializing into Unauthenticated.
func (c *Controller) begin() {
	c.mu.Lock()
	c.inflight++
	c.mu.Unlock()
	c.notify()
}

func (c *Controller) end() {
	c.mu.Lock()
	c.inflight--
	if c.inflight == 0 && c.state == Initializing {
		c.state = Unauthenticated
	}
	c.mu.Unlock()
	c.notify()
}

func (c *Controller) viewLocked() View {
	v := View{Loading: c.inflight > 0 || c.state == Initializing}
	if c.user != nil {
		u := *c.user
		v.User = &u
	}
	return v
}

func (c *Controller) notify() {
	c.mu.Lock()
	v := c.viewLocked()
	subs := make([]func(View), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(v)
	}
}
