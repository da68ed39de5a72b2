// Copyright (c) 2025 Snapcourier
// Licensed under the MIT License. See LICENSE file in the project root for details.

package guard

import (
	"testing"

	"github.com/stretchr/testify/require"

	"snapcourier/cli/internal/auth"
	"snapcourier/cli/internal/backend"
)

func user(r backend.Role) *backend.User {
	return &backend.User{ID: "1", Email: "x@y.z", Role: r}
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name     string
		view     auth.View
		required []backend.Role
		want     Decision
	}{
		{"loading wins over user", auth.View{Loading: true, User: user(backend.RoleAdmin)}, []backend.Role{backend.RoleAdmin}, Decision{Outcome: Pending}},
		{"loading without user", auth.View{Loading: true}, nil, Decision{Outcome: Pending}},
		{"no user", auth.View{}, nil, Decision{Outcome: Redirect, Target: "/login"}},
		{"no user with roles", auth.View{}, []backend.Role{backend.RoleCourier}, Decision{Outcome: Redirect, Target: "/login"}},
		{"any signed-in user", auth.View{User: user(backend.RoleCustomer)}, nil, Decision{Outcome: Allow}},
		{"role match", auth.View{User: user(backend.RoleCourier)}, []backend.Role{backend.RoleCourier}, Decision{Outcome: Allow}},
		{"one of several", auth.View{User: user(backend.RoleAdmin)}, []backend.Role{backend.RoleCourier, backend.RoleAdmin}, Decision{Outcome: Allow}},
		{"role mismatch", auth.View{User: user(backend.RoleCourier)}, []backend.Role{backend.RoleAdmin}, Decision{Outcome: Redirect, Target: "/login"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Decide(tt.view, tt.required...))
		})
	}
}

func TestResolve(t *testing.T) {
	courier := auth.View{User: user(backend.RoleCourier)}

	tests := []struct {
		path    string
		view    auth.View
		outcome Outcome
		title   string
	}{
		{"/", auth.View{}, Allow, "Home"},
		{"login", auth.View{Loading: true}, Allow, "Sign in"},
		{"/courier", courier, Allow, "Courier dashboard"},
		{"Courier/", courier, Allow, "Courier dashboard"},
		{"/admin", courier, Redirect, "Admin dashboard"},
		{"/courierPage", courier, Allow, "Courier dashboard"},
		{"/adminPage", auth.View{User: user(backend.RoleAdmin)}, Allow, "Admin dashboard"},
		{"/courier", auth.View{}, Redirect, "Courier dashboard"},
		{"/courier", auth.View{Loading: true}, Pending, "Courier dashboard"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			r, d, err := Resolve(tt.path, tt.view)
			require.NoError(t, err)
			require.Equal(t, tt.title, r.Title)
			require.Equal(t, tt.outcome, d.Outcome)
		})
	}
}

func TestCourierViewAdmission(t *testing.T) {
	tests := []struct {
		role backend.Role
		want Decision
	}{
		{backend.RoleCourier, Decision{Outcome: Allow}},
		{backend.RoleCustomer, Decision{Outcome: Allow}},
		{backend.RoleAdmin, Decision{Outcome: Redirect, Target: "/login"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			_, d, err := Resolve("/courier", auth.View{User: user(tt.role)})
			require.NoError(t, err)
			require.Equal(t, tt.want, d)
		})
	}
}

func TestResolveUnknown(t *testing.T) {
	_, _, err := Resolve("/orders", auth.View{})
	require.ErrorIs(t, err, ErrUnknownRoute)
}

func TestLandingFor(t *testing.T) {
	require.Equal(t, "/courier", LandingFor(backend.RoleCourier))
	require.Equal(t, "/admin", LandingFor(backend.RoleAdmin))
	require.Equal(t, "/", LandingFor(backend.RoleCustomer))

	// Landing views must let their own role through.
	for _, r := range []backend.Role{backend.RoleCourier, backend.RoleAdmin, backend.RoleCustomer} {
		_, d, err := Resolve(LandingFor(r), auth.View{User: user(r)})
		require.NoError(t, err)
		require.Equal(t, Allow, d.Outcome, string(r))
	}
}

func TestPathsSorted(t *testing.T) {
	require.Equal(t, []string{"/", "/admin", "/courier", "/login"}, Paths())
}

func TestOutcomeString(t *testing.T) {
	require.Equal(t, "pending", Pending.String())
	require.Equal(t, "redirect", Redirect.String())
	require.Equal(t, "allow", Allow.String())
}
