package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secureshare/internal/common"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{"admin", RoleAdmin, false},
		{"user", RoleUser, false},
		{"guest", RoleGuest, false},
		{"superuser", 0, true},
		{"", 0, true},
		{"Admin", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRole(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRoleString_RoundTrip(t *testing.T) {
	for _, r := range []Role{RoleAdmin, RoleUser, RoleGuest} {
		parsed, err := ParseRole(r.String())
		require.NoError(t, err)
		assert.Equal(t, r, parsed)
	}
}

func TestPermissions(t *testing.T) {
	assert.Equal(t,
		[]Permission{PermManageUsers, PermManageFiles, PermViewAnalytics},
		Permissions(RoleAdmin))
	assert.Equal(t,
		[]Permission{PermFileUpload, PermFileDownload, PermFileShare},
		Permissions(RoleUser))
	assert.Equal(t,
		[]Permission{PermFileDownload},
		Permissions(RoleGuest))
}

func TestPermissions_ReturnsCopy(t *testing.T) {
	p := Permissions(RoleUser)
	p[0] = PermManageUsers
	assert.Equal(t, PermFileUpload, Permissions(RoleUser)[0])
}

func TestHasPermission(t *testing.T) {
	perms := Permissions(RoleUser)
	assert.True(t, HasPermission(perms, PermFileShare))
	assert.False(t, HasPermission(perms, PermManageUsers))
	assert.False(t, HasPermission(nil, PermFileDownload))
}

func TestCanAccess_AdminBypass(t *testing.T) {
	// admin with an empty permission set still passes any non-empty requirement
	for _, required := range [][]Permission{
		{PermFileUpload},
		{PermManageFiles, PermViewAnalytics},
		{PermFileShare},
	} {
		assert.True(t, CanAccess([]Role{RoleAdmin}, nil, required))
	}
}

func TestCanAccess_IntersectionRule(t *testing.T) {
	tests := []struct {
		name     string
		roles    []Role
		perms    []Permission
		required []Permission
		want     bool
	}{
		{
			name:     "user with download lacks share",
			roles:    []Role{RoleUser},
			perms:    []Permission{PermFileDownload},
			required: []Permission{PermFileShare},
			want:     false,
		},
		{
			name:     "user with full set may share",
			roles:    []Role{RoleUser},
			perms:    Permissions(RoleUser),
			required: []Permission{PermFileShare},
			want:     true,
		},
		{
			name:     "any of several required suffices",
			roles:    []Role{RoleGuest},
			perms:    Permissions(RoleGuest),
			required: []Permission{PermFileUpload, PermFileDownload},
			want:     true,
		},
		{
			name:     "empty required denies non-admin",
			roles:    []Role{RoleUser},
			perms:    Permissions(RoleUser),
			required: nil,
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanAccess(tt.roles, tt.perms, tt.required))
		})
	}
}
