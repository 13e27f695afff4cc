package permissions_test

import (
	"testing"

	"hotel/permissions"
	"hotel/shared/constant"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_EmbeddedTable(t *testing.T) {
	perms := permissions.Get()
	require.NotNil(t, perms)

	cancel := perms.FindPermissions("/v1/reservations/{id}/cancel", "post")
	assert.True(t, cancel.Allows(constant.RoleClient))

	deleteRoom := perms.FindPermissions("/v1/rooms/{id}", "DELETE")
	assert.True(t, deleteRoom.Allows(constant.RoleManager))
	assert.False(t, deleteRoom.Allows(constant.RoleOperator))

	assert.Equal(t, permissions.Permission{}, perms.FindPermissions("/v1/unknown", "GET"))
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{
			name: "valid",
			data: `{"endpoints":[{"path":"/v1/rooms/","method":"GET","permissions":["operator"]}]}`,
		},
		{
			name:    "duplicate endpoint",
			data:    `{"endpoints":[{"path":"/v1/rooms/","method":"GET"},{"path":"/v1/rooms/","method":"get"}]}`,
			wantErr: permissions.ErrDuplicateEndpoint,
		},
		{
			name:    "unknown role",
			data:    `{"endpoints":[{"path":"/v1/rooms/","method":"GET","permissions":["housekeeper"]}]}`,
			wantErr: permissions.ErrUnknownRole,
		},
		{
			name:    "relative path",
			data:    `{"endpoints":[{"path":"v1/rooms","method":"GET"}]}`,
			wantErr: permissions.ErrInvalidEndpoint,
		},
		{
			name:    "unsupported method",
			data:    `{"endpoints":[{"path":"/v1/rooms/","method":"TRACE"}]}`,
			wantErr: permissions.ErrInvalidEndpoint,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			perms, err := permissions.Parse([]byte(tt.data))

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, perms)

				return
			}

			require.NoError(t, err)
			assert.Len(t, perms.Endpoints, 1)
		})
	}

	_, err := permissions.Parse([]byte(`{`))
	assert.Error(t, err)
}

func TestPermission_AllowsAnyRoleWhenUnrestricted(t *testing.T) {
	assert.True(t, permissions.Permission{}.Allows(constant.RoleClient))
}
