package kernel_test

import (
	"testing"

	"orders/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	r, err := kernel.ParseRole("")
	require.NoError(t, err)
	assert.Equal(t, kernel.RoleGuest, r)

	r, err = kernel.ParseRole("ADMIN")
	require.NoError(t, err)
	assert.Equal(t, kernel.RoleAdmin, r)

	_, err = kernel.ParseRole("owner")
	require.Error(t, err)
}

func TestActor(t *testing.T) {
	accountID := kernel.NewUUID()

	customer := kernel.NewActor(accountID, kernel.RoleCustomer)
	assert.True(t, customer.IsAuthenticated())
	assert.True(t, customer.Owns(accountID))
	assert.False(t, customer.Owns(kernel.NewUUID()))
	assert.False(t, customer.CanManageAnyOrder())

	guest := kernel.GuestActor()
	assert.False(t, guest.IsAuthenticated())
	assert.False(t, guest.Owns(kernel.UUID{}))

	assert.True(t, kernel.NewActor(kernel.NewUUID(), kernel.RoleAdmin).CanManageAnyOrder())
	assert.True(t, kernel.SystemActor().CanManageAnyOrder())
}
