// Copyright (c) 2025 Snapcourier
// Licensed under the MIT License. See LICENSE file in the project root for details.

package guard

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"snapcourier/cli/internal/auth"
	"snapcourier/cli/internal/backend"
)

// ErrUnknownRoute is returned by Resolve for paths outside the route table.
var ErrUnknownRoute = errors.New("unknown route")

// Route is one navigable view.
type Route struct {
	Path  string
	Title string
	// Public routes skip the guard entirely.
	Public bool
	// Roles restricts a protected route; empty means any signed-in user.
	Roles []backend.Role
}

// Routes is the application's view table. The courier view admits every
// signed-in role except Admin; admins have their own view.
var Routes = map[string]Route{
	"/":        {Path: "/", Title: "Home", Public: true},
	LoginPath:  {Path: LoginPath, Title: "Sign in", Public: true},
	"/courier": {Path: "/courier", Title: "Courier dashboard", Roles: []backend.Role{backend.RoleCourier, backend.RoleCustomer}},
	"/admin":   {Path: "/admin", Title: "Admin dashboard", Roles: []backend.Role{backend.RoleAdmin}},
}

// aliases maps the web client's page paths onto Routes.
var aliases = map[string]string{
	"/courierpage": "/courier",
	"/adminpage":   "/admin",
}

// Paths lists the known routes in sorted order.
func Paths() []string {
	out := make([]string, 0, len(Routes))
	for p := range Routes {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Normalize accepts "courier", "/courier", "/courier/" and "/courierPage"
// alike.
func Normalize(path string) string {
	p := strings.TrimSpace(path)
	p = strings.ToLower("/" + strings.Trim(p, "/"))
	if to, ok := aliases[p]; ok {
		return to
	}
	return p
}

// Resolve looks path up and applies Decide with the route's roles.
func Resolve(path string, v auth.View) (Route, Decision, error) {
	r, ok := Routes[Normalize(path)]
	if !ok {
		return Route{}, Decision{}, fmt.Errorf("%w: %s", ErrUnknownRoute, path)
	}
	if r.Public {
		return r, Decision{Outcome: Allow}, nil
	}
	return r, Decide(v, r.Roles...), nil
}

// LandingFor is the view a user lands on right after signing in.
func LandingFor(role backend.Role) string {
	switch role {
	case backend.RoleCourier:
		return "/courier"
	case backend.RoleAdmin:
		return "/admin"
	default:
		return "/"
	}
}
