// Package rbac is the single source of truth for role and permission
// checks. Both the client orchestrator and the server handlers consult it;
// the mapping must never be duplicated elsewhere.
//
// Roles form a closed enumeration, so an unknown role is a parse error at
// the wire boundary rather than a silent runtime miss.
package rbac

import (
	"fmt"

	"secureshare/internal/common"
)

// Role is one of the three closed account roles.
type Role int

const (
	RoleGuest Role = iota
	RoleUser
	RoleAdmin
)

// Permission is an atomic capability checked independently of role.
type Permission string

const (
	PermFileUpload    Permission = "file-upload"
	PermFileDownload  Permission = "file-download"
	PermFileShare     Permission = "file-share"
	PermManageUsers   Permission = "manage-users"
	PermManageFiles   Permission = "manage-files"
	PermViewAnalytics Permission = "view-analytics"
)

// String returns the wire spelling of the role.
func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleUser:
		return "user"
	case RoleGuest:
		return "guest"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// ParseRole converts a wire string into a Role. Unknown strings are a
// validation error, never a default role.
func ParseRole(s string) (Role, error) {
	switch s {
	case "admin":
		return RoleAdmin, nil
	case "user":
		return RoleUser, nil
	case "guest":
		return RoleGuest, nil
	default:
		return 0, fmt.Errorf("unknown role %q: %w", s, common.ErrValidation)
	}
}

// Permissions is the total function from a role to its permission set.
// The returned slice is a fresh copy; callers may not mutate shared state
// through it.
func Permissions(r Role) []Permission {
	switch r {
	case RoleAdmin:
		return []Permission{PermManageUsers, PermManageFiles, PermViewAnalytics}
	case RoleUser:
		return []Permission{PermFileUpload, PermFileDownload, PermFileShare}
	case RoleGuest:
		return []Permission{PermFileDownload}
	default:
		return nil
	}
}

// HasPermission reports whether p is a member of the permission set.
func HasPermission(perms []Permission, p Permission) bool {
	for _, have := range perms {
		if have == p {
			return true
		}
	}
	return false
}

// HasRole reports whether r is a member of the role set.
func HasRole(roles []Role, r Role) bool {
	for _, have := range roles {
		if have == r {
			return true
		}
	}
	return false
}

// CanAccess is the gate consulted before every privileged operation.
// Admin passes unconditionally; otherwise access requires a non-empty
// intersection between held and required permissions.
func CanAccess(roles []Role, perms []Permission, required []Permission) bool {
	if HasRole(roles, RoleAdmin) {
		return true
	}
	for _, want := range required {
		if HasPermission(perms, want) {
			return true
		}
	}
	return false
}
