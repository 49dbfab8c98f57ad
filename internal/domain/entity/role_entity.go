package entity

import "strings"

// Role is an authorization role granted to an account.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
	RoleHost  Role = "HOST"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleHost:
		return true
	}
	return false
}

// ParseRole accepts any casing of a known role name.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	return r, r.Valid()
}

// RoleSet is an unordered set of roles.
type RoleSet map[Role]struct{}

func NewRoleSet(roles ...Role) RoleSet {
	rs := make(RoleSet, len(roles))
	for _, r := range roles {
		rs[r] = struct{}{}
	}
	return rs
}

func (rs RoleSet) Has(r Role) bool {
	_, ok := rs[r]
	return ok
}

// Intersects reports whether any of the given roles is in the set.
func (rs RoleSet) Intersects(roles []Role) bool {
	for _, r := range roles {
		if rs.Has(r) {
			return true
		}
	}
	return false
}

// Slice returns the roles in a stable order.
func (rs RoleSet) Slice() []Role {
	out := make([]Role, 0, len(rs))
	for _, r := range []Role{RoleAdmin, RoleHost, RoleUser} {
		if rs.Has(r) {
			out = append(out, r)
		}
	}
	return out
}

func (rs RoleSet) Strings() []string {
	roles := rs.Slice()
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}

func (rs RoleSet) Equal(other RoleSet) bool {
	if len(rs) != len(other) {
		return false
	}
	for r := range rs {
		if !other.Has(r) {
			return false
		}
	}
	return true
}
