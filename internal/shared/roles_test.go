package shared

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	cases := []struct {
		raw  string
		want Role
		err  bool
	}{
		{"BUYER", RoleBuyer, false},
		{"buyer", RoleBuyer, false},
		{"Comprador", RoleBuyer, false},
		{"MANAGER", RoleManager, false},
		{"gerente", RoleManager, false},
		{"  GERENTE  ", RoleManager, false},
		{"", "", true},
		{"ADMIN", "", true},
	}
	for _, tc := range cases {
		got, err := ParseRole(tc.raw)
		if tc.err {
			require.ErrorIs(t, err, ErrUnknownRole, tc.raw)
			continue
		}
		require.NoError(t, err, tc.raw)
		require.Equal(t, tc.want, got, tc.raw)
	}
}

func TestRoleValid(t *testing.T) {
	require.True(t, RoleBuyer.Valid())
	require.True(t, RoleManager.Valid())
	require.False(t, Role("GERENTE").Valid())
	require.False(t, Role("").Valid())
}
