// Copyright (c) 2025 Snapcourier
// Licensed under the MIT License. See LICENSE file in the project root for details.

package pipeline

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"snapcourier/cli/internal/keychain"
)

// tokenServer answers 200 for the accepted token and 401 for anything else.
// It records the Authorization header and body of every call.
type tokenServer struct {
	*httptest.Server

	mu       sync.Mutex
	accept   string
	seen     []string
	bodies   []string
	requests atomic.Int32
}

func newTokenServer(t *testing.T, accept string) *tokenServer {
	t.Helper()
	ts := &tokenServer{accept: accept}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.requests.Add(1)
		b, _ := io.ReadAll(r.Body)

		ts.mu.Lock()
		ts.seen = append(ts.seen, r.Header.Get("Authorization"))
		ts.bodies = append(ts.bodies, string(b))
		ok := r.Header.Get("Authorization") == "Bearer "+ts.accept
		ts.mu.Unlock()

		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"expired"}`))
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func (ts *tokenServer) headers() []string {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return append([]string(nil), ts.seen...)
}

func newClient(tr *Transport) *http.Client {
	return &http.Client{Transport: tr, Timeout: 5 * time.Second}
}

func seeded(t *testing.T, access, refresh string) *keychain.Manager {
	t.Helper()
	m := keychain.NewMemory()
	if access != "" || refresh != "" {
		require.NoError(t, keychain.SavePair(m, keychain.Pair{AccessToken: access, RefreshToken: refresh}))
	}
	return m
}

func TestAttachesBearerToken(t *testing.T) {
	srv := newTokenServer(t, "a1")
	tr := New(Config{Store: seeded(t, "a1", "r1")})

	resp, err := newClient(tr).Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, []string{"Bearer a1"}, srv.headers())
}

func TestNoTokenSendsUnauthenticated(t *testing.T) {
	var got, ids []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.Header.Get("Authorization"))
		ids = append(ids, r.Header.Get(HeaderRequestID))
		_, _ = w.Write([]byte("public"))
	}))
	defer srv.Close()

	tr := New(Config{Store: keychain.NewMemory()})
	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer stale-from-caller")

	resp, err := newClient(tr).Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, []string{""}, got)
	require.Len(t, ids, 1)
	require.NotEmpty(t, ids[0])
}

func TestRenewsOnceAndReplays(t *testing.T) {
	srv := newTokenServer(t, "a2")
	store := seeded(t, "a1", "r1")

	var renewals atomic.Int32
	var gotRefresh string
	tr := New(Config{
		Store: store,
		Renew: func(ctx context.Context, refresh string) (keychain.Pair, error) {
			renewals.Add(1)
			gotRefresh = refresh
			return keychain.Pair{AccessToken: "a2", RefreshToken: "r2"}, nil
		},
		OnTeardown: func() { t.Fatal("teardown must not run on successful renewal") },
	})

	resp, err := newClient(tr).Post(srv.URL, "application/json", strings.NewReader(`{"n":1}`))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ok", string(body))
	require.EqualValues(t, 1, renewals.Load())
	require.Equal(t, "r1", gotRefresh)
	require.Equal(t, []string{"Bearer a1", "Bearer a2"}, srv.headers())
	require.Equal(t, []string{`{"n":1}`, `{"n":1}`}, srv.bodies, "replay must resend the body")

	pair, ok := keychain.LoadPair(store)
	require.True(t, ok)
	require.Equal(t, keychain.Pair{AccessToken: "a2", RefreshToken: "r2"}, pair)
}

func TestReplayIsNeverRenewedAgain(t *testing.T) {
	srv := newTokenServer(t, "never")
	var renewals atomic.Int32
	tr := New(Config{
		Store: seeded(t, "a1", "r1"),
		Renew: func(ctx context.Context, refresh string) (keychain.Pair, error) {
			renewals.Add(1)
			return keychain.Pair{AccessToken: "a2", RefreshToken: "r2"}, nil
		},
	})

	resp, err := newClient(tr).Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.EqualValues(t, 1, renewals.Load())
	require.EqualValues(t, 2, srv.requests.Load())
}

func TestRenewalFailureTearsDownAndReturnsOriginal(t *testing.T) {
	srv := newTokenServer(t, "a2")
	store := seeded(t, "a1", "r1")

	var teardowns atomic.Int32
	tr := New(Config{
		Store: store,
		Renew: func(ctx context.Context, refresh string) (keychain.Pair, error) {
			return keychain.Pair{}, errors.New("refresh token expired")
		},
		OnTeardown: func() {
			teardowns.Add(1)
			keychain.ClearPair(store)
		},
	})

	resp, err := newClient(tr).Get(srv.URL)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.JSONEq(t, `{"error":"expired"}`, string(body))
	require.EqualValues(t, 1, teardowns.Load())
	require.EqualValues(t, 1, srv.requests.Load(), "no replay after failed renewal")

	_, ok := keychain.LoadPair(store)
	require.False(t, ok)
}

func TestMissingRefreshTokenTearsDown(t *testing.T) {
	srv := newTokenServer(t, "a2")
	var teardowns atomic.Int32
	tr := New(Config{
		Store: keychain.NewMemory(),
		Renew: func(ctx context.Context, refresh string) (keychain.Pair, error) {
			t.Fatal("renew must not be called without a refresh token")
			return keychain.Pair{}, nil
		},
		OnTeardown: func() { teardowns.Add(1) },
	})

	resp, err := newClient(tr).Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.EqualValues(t, 1, teardowns.Load())
}

func TestRetryMarkerSkipsRenewal(t *testing.T) {
	srv := newTokenServer(t, "a2")
	tr := New(Config{
		Store: seeded(t, "a1", "r1"),
		Renew: func(ctx context.Context, refresh string) (keychain.Pair, error) {
			t.Fatal("marked request must not trigger renewal")
			return keychain.Pair{}, nil
		},
	})

	req, err := http.NewRequestWithContext(MarkRetried(context.Background()), http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := newClient(tr).Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestNonAuthErrorsPassThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	tr := New(Config{
		Store: seeded(t, "a1", "r1"),
		Renew: func(ctx context.Context, refresh string) (keychain.Pair, error) {
			t.Fatal("500 must not trigger renewal")
			return keychain.Pair{}, nil
		},
	})

	resp, err := newClient(tr).Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestConcurrentExpiryCoalescesRenewal(t *testing.T) {
	const n = 8

	allSent := make(chan struct{})
	var expired atomic.Int32
	var mu sync.Mutex
	var replayed []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer fresh" {
			if expired.Add(1) == n {
				close(allSent)
			}
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		mu.Lock()
		replayed = append(replayed, r.Header.Get("Authorization"))
		mu.Unlock()
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	var renewals atomic.Int32
	tr := New(Config{
		Store: seeded(t, "stale", "r1"),
		Renew: func(ctx context.Context, refresh string) (keychain.Pair, error) {
			renewals.Add(1)
			select {
			case <-allSent:
			case <-time.After(3 * time.Second):
			}
			return keychain.Pair{AccessToken: "fresh", RefreshToken: "r2"}, nil
		},
	})
	client := newClient(tr)

	var wg sync.WaitGroup
	codes := make([]int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := client.Get(srv.URL)
			if err != nil {
				return
			}
			codes[i] = resp.StatusCode
			resp.Body.Close()
		}(i)
	}
	wg.Wait()

	require.EqualValues(t, 1, renewals.Load())
	for i, c := range codes {
		require.Equal(t, http.StatusOK, c, "request %d", i)
	}
	require.Len(t, replayed, n)
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{"Bearer abc", "abc"},
		{"bearer   abc ", "abc"},
		{"Basic abc", ""},
		{"Bearer", ""},
		{"Bearerabc", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			h := http.Header{}
			if tt.value != "" {
				h.Set("Authorization", tt.value)
			}
			require.Equal(t, tt.want, BearerToken(h))
		})
	}
}
