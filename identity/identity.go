// Package identity holds the authenticated session value shared by the
// dashboard and assistant. The core only reads it; logout discards it.
package identity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// UserID is a user identifier. The login endpoint sends an integer, the chat
// endpoint expects a string; both decode into UserID.
type UserID string

// UnmarshalJSON accepts a JSON string or number.
func (id *UserID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("user_id: %w", err)
		}
		*id = UserID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("user_id must be a string or number: %w", err)
	}
	*id = UserID(n.String())
	return nil
}

func (id UserID) String() string { return string(id) }

// Identity is the logged-in user.
type Identity struct {
	UserID UserID `json:"user_id" yaml:"user_id"`
	Name   string `json:"name" yaml:"name"`
	Email  string `json:"email" yaml:"email"`
	Role   string `json:"role" yaml:"role"`
}

// Valid reports whether the identity can drive a dashboard: it needs a role.
func (i *Identity) Valid() bool {
	return i != nil && strings.TrimSpace(i.Role) != ""
}

// WithRole returns a copy acting as role. Roles are upper-cased the way the
// backend keys its dashboards.
func (i Identity) WithRole(role string) Identity {
	i.Role = NormalizeRole(role)
	return i
}

// Roles the backend serves dashboards for.
var Roles = []string{"CEO", "CFO", "COO", "HR"}

// NormalizeRole trims and upper-cases a role name.
func NormalizeRole(role string) string {
	return strings.ToUpper(strings.TrimSpace(role))
}

// NextRole cycles through Roles from current. step is +1 or -1. An unknown
// current role starts from the first entry.
func NextRole(current string, step int) string {
	idx := -1
	for i, r := range Roles {
		if r == NormalizeRole(current) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Roles[0]
	}
	n := len(Roles)
	return Roles[((idx+step)%n+n)%n]
}
