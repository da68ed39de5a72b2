// Copyright (c) 2025 Snapcourier
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	apperrors "snapcourier/cli/internal/errors"
)

// Role is the closed set of account roles the backend issues.
type Role string

const (
	RoleCustomer Role = "Customer"
	RoleCourier  Role = "Courier"
	RoleAdmin    Role = "Admin"
)

// ParseRole accepts a role name case-insensitively.
func ParseRole(s string) (Role, error) {
	for _, r := range []Role{RoleCustomer, RoleCourier, RoleAdmin} {
		if strings.EqualFold(strings.TrimSpace(s), string(r)) {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func (r *Role) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ID is an account identifier. The backend may send it as a JSON string or
// number.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*id = ID(n.String())
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = ID(s)
	return nil
}

// User is the identity returned by the user-info endpoint.
type User struct {
	ID        ID     `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Role      Role   `json:"role"`
}

// DisplayName prefers the full name and falls back to the email.
func (u User) DisplayName() string {
	if n := strings.TrimSpace(u.FirstName + " " + u.LastName); n != "" {
		return n
	}
	return u.Email
}

// UserInfo calls GET /api/auth/user-info through the pipeline.
func (h *HTTP) UserInfo(ctx context.Context) (User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+h.endpoints.UserInfo, nil)
	if err != nil {
		return User{}, err
	}
	setStandardHeaders(req)

	resp, err := h.client.Do(req)
	if err != nil {
		return User{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return User{}, statusError("user-info", resp)
	}

	var u User
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return User{}, apperrors.Wrap(apperrors.InvalidResponse, "decode user-info", err)
	}
	if u.Role == "" {
		return User{}, apperrors.New(apperrors.InvalidResponse, "user-info without role")
	}
	return u, nil
}
