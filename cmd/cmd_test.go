package cmd

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"snapcourier/cli/internal/backend"
	"snapcourier/cli/internal/pipeline"
)

func TestRequestBody(t *testing.T) {
	r, err := requestBody("")
	require.NoError(t, err)
	require.Nil(t, r)

	r, err = requestBody(`{"pickup":"A1"}`)
	require.NoError(t, err)
	b, _ := io.ReadAll(r)
	require.JSONEq(t, `{"pickup":"A1"}`, string(b))
}

func TestStatusLineShowsRequestID(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "http://x/api/orders", nil)
	req.Header.Set(pipeline.HeaderRequestID, "abc-123")

	line := statusLine(&http.Response{Status: "200 OK", StatusCode: 200, Request: req})
	require.Contains(t, line, "200 OK")
	require.Contains(t, line, "abc-123")

	line = statusLine(&http.Response{Status: "401 Unauthorized", StatusCode: 401})
	require.Contains(t, line, "401 Unauthorized")
}

func TestDescribeUser(t *testing.T) {
	out := describeUser(&backend.User{ID: "7", Email: "a@b.com", FirstName: "Ana", Role: backend.RoleAdmin})
	require.Contains(t, out, "Ana")
	require.Contains(t, out, "a@b.com")
	require.Contains(t, out, "Admin")
}

func TestLoginGreetingNamesUser(t *testing.T) {
	for i := 0; i < 20; i++ {
		require.True(t, strings.Contains(getRandomLoginGreeting("Ana"), "Ana"))
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := map[string]bool{"login": false, "logout": false, "whoami": false, "open": false, "request": false, "version": false, "config": false}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		require.True(t, found, name)
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "a@b.com", want: "a@b.com"},
		{in: "  courier@snap.example ", want: "courier@snap.example"},
		{in: "", wantErr: true},
		{in: "not-an-email", wantErr: true},
		{in: "a@", wantErr: true},
		{in: "Ana <a@b.com>", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := validateEmail(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}
