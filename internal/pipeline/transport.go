// Copyright (c) 2025 Snapcourier
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package pipeline wraps outbound backend calls with session handling.
//
// Transport is an http.RoundTripper that attaches the stored access token to
// every request and, when the backend answers 401, renews the token pair once
// and replays the request. Renewal and replay go through the plain base
// transport so the pipeline never intercepts its own traffic. Concurrent
// requests that hit an expired token share a single renewal.
package pipeline

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/pterm/pterm"
	"golang.org/x/sync/singleflight"

	"snapcourier/cli/internal/keychain"
	"snapcourier/cli/internal/logging"
)

// HeaderRequestID carries a per-request correlation id.
const HeaderRequestID = "X-Request-Id"

// renewKey is the singleflight key; there is one credential pair per store.
const renewKey = "renew"

// ErrNoRefreshToken is returned by renewal when the store holds no refresh token.
var ErrNoRefreshToken = errors.New("no refresh token stored")

// RenewFunc exchanges a refresh token for a new pair. It must not use the
// pipeline itself.
type RenewFunc func(ctx context.Context, refreshToken string) (keychain.Pair, error)

// Config wires a Transport.
type Config struct {
	// Base is the plain transport used for the original call, the renewal
	// and the replay. Defaults to http.DefaultTransport.
	Base http.RoundTripper
	// Store holds the credential pair.
	Store keychain.Store
	// Renew performs the refresh-token exchange.
	Renew RenewFunc
	// OnTeardown runs once per failed renewal.
	OnTeardown func()
	Logger     *pterm.Logger
}

// Transport is the authenticating round tripper.
type Transport struct {
	base       http.RoundTripper
	store      keychain.Store
	renew      RenewFunc
	onTeardown func()
	log        *pterm.Logger
	group      singleflight.Group
}

var _ http.RoundTripper = (*Transport)(nil)

// New builds a Transport from cfg.
func New(cfg Config) *Transport {
	t := &Transport{
		base:       cfg.Base,
		store:      cfg.Store,
		renew:      cfg.Renew,
		onTeardown: cfg.OnTeardown,
		log:        cfg.Logger,
	}
	if t.base == nil {
		t.base = http.DefaultTransport
	}
	if t.onTeardown == nil {
		t.onTeardown = func() {}
	}
	if t.log == nil {
		t.log = logging.Discard()
	}
	return t
}

// RoundTrip sends req with the current access token and handles a single
// renewal-and-replay on 401.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	out, err := t.outbound(req)
	if err != nil {
		return nil, err
	}
	sent := BearerToken(out.Header)

	resp, err := t.base.RoundTrip(out)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}
	if Retried(req.Context()) || t.renew == nil {
		return resp, nil
	}
	return t.renewAndReplay(out, resp, sent)
}

// outbound clones req, makes its body replayable and sets the auth and
// request-id headers.
func (t *Transport) outbound(req *http.Request) (*http.Request, error) {
	out := req.Clone(req.Context())
	if err := rewindable(out); err != nil {
		return nil, err
	}
	if access, ok := t.store.Get(keychain.KeyAccessToken); ok {
		out.Header.Set("Authorization", "Bearer "+access)
	} else {
		out.Header.Del("Authorization")
	}
	if out.Header.Get(HeaderRequestID) == "" {
		out.Header.Set(HeaderRequestID, uuid.NewString())
	}
	return out, nil
}

func (t *Transport) renewAndReplay(out *http.Request, original *http.Response, sent string) (*http.Response, error) {
	ctx := out.Context()
	reqID := out.Header.Get(HeaderRequestID)

	pair, err := t.freshPair(ctx, sent)
	if err != nil {
		t.log.Warn("session renewal failed", t.log.Args(
			"request_id", reqID,
			"error", logging.Mask(err.Error()),
		))
		return original, nil
	}
	drain(original)

	retry := out.Clone(MarkRetried(ctx))
	if retry.GetBody != nil {
		body, err := retry.GetBody()
		if err != nil {
			return nil, err
		}
		retry.Body = body
	}
	retry.Header.Set("Authorization", "Bearer "+pair.AccessToken)

	t.log.Debug("replaying request with renewed token", t.log.Args(
		"request_id", reqID,
		"method", retry.Method,
		"path", retry.URL.Path,
	))
	return t.base.RoundTrip(retry)
}

// freshPair returns a pair newer than the one the failed request carried.
// All concurrent callers share one renewal; a caller arriving after another
// request already rotated the tokens reuses the stored pair instead.
func (t *Transport) freshPair(ctx context.Context, sent string) (keychain.Pair, error) {
	v, err, shared := t.group.Do(renewKey, func() (any, error) {
		if cur, ok := keychain.LoadPair(t.store); ok && cur.AccessToken != sent {
			return cur, nil
		}
		// Detached so one caller's cancellation does not fail the waiters.
		pair, err := t.exchange(context.WithoutCancel(ctx))
		if err != nil {
			t.onTeardown()
			return nil, err
		}
		return pair, nil
	})
	if shared {
		t.log.Debug("joined in-flight renewal")
	}
	if err != nil {
		return keychain.Pair{}, err
	}
	return v.(keychain.Pair), nil
}

func (t *Transport) exchange(ctx context.Context) (keychain.Pair, error) {
	refresh, ok := t.store.Get(keychain.KeyRefreshToken)
	if !ok {
		return keychain.Pair{}, ErrNoRefreshToken
	}
	pair, err := t.renew(ctx, refresh)
	if err != nil {
		return keychain.Pair{}, err
	}
	if err := keychain.SavePair(t.store, pair); err != nil {
		return keychain.Pair{}, err
	}
	t.log.Debug("session renewed")
	return pair, nil
}

// drain discards and closes a response we are not returning.
func drain(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}
