package auth

import (
	"fmt"

	"github.com/casbin/casbin/v2"
)

const (
	// RoleMember may edit wiki content. Every registered user gets it.
	RoleMember = "member"
	// RoleAdmin may additionally inspect users and audit logs.
	RoleAdmin = "admin"
)

// Roles lists the roles that can be granted.
var Roles = []string{RoleMember, RoleAdmin}

// SeedDefaultPolicies ensures that the application has a baseline set of authorization rules.
// It checks if each default policy exists before adding it, making the operation idempotent
// and safe to run on every application start.
func SeedDefaultPolicies(e casbin.IEnforcer) error {
	policies := [][]string{
		// Members edit wiki content and renew their tokens.
		{RoleMember, "/v1/wiki/*", "POST"},
		{RoleMember, "/v1/wiki/*", "PUT"},
		{RoleMember, "/v1/wiki/*", "DELETE"},
		{RoleMember, "/auth/refresh", "GET"},

		// Admins read accounts and the audit trail.
		{RoleAdmin, "/v1/user", "GET"},
		{RoleAdmin, "/v1/user/*", "GET"},
		{RoleAdmin, "/v1/log", "GET"},
		{RoleAdmin, "/v1/log/*", "GET"},
	}
	for _, p := range policies {
		if has, _ := e.HasPolicy(p); !has {
			if _, err := e.AddPolicy(p); err != nil {
				return fmt.Errorf("failed to add policy %v: %w", p, err)
			}
		}
	}

	// Admins can do everything members can.
	if has, _ := e.HasRoleForUser(RoleAdmin, RoleMember); !has {
		if _, err := e.AddRoleForUser(RoleAdmin, RoleMember); err != nil {
			return fmt.Errorf("failed to add role %q -> %q: %w", RoleAdmin, RoleMember, err)
		}
	}
	return nil
}

// RoleAssigner is the part of an enforcer that grants roles.
type RoleAssigner interface {
	AddRoleForUser(user string, role string, domain ...string) (bool, error)
}

// GrantRole gives a user one of the known roles.
func GrantRole(e RoleAssigner, userID int64, role string) error {
	known := false
	for _, r := range Roles {
		known = known || r == role
	}
	if !known {
		return fmt.Errorf("unknown role %q", role)
	}
	if _, err := e.AddRoleForUser(Subject(userID), role); err != nil {
		return fmt.Errorf("failed to grant role %q: %w", role, err)
	}
	return nil
}
