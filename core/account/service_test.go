package account_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LukaszKielczewski66/fightclub/core/account"
	"github.com/LukaszKielczewski66/fightclub/storage/database/inmem"
)

func TestService_Save(t *testing.T) {
	ctx := context.Background()
	svc := account.NewService(inmemdb.NewAccountRepository(inmemdb.New()))

	created, err := svc.Save(ctx, account.NewAccount{Name: "Ola", Email: "ola@club.test", Role: account.RoleTrainer})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.True(t, created.IsActive)
	assert.True(t, created.CanTeach())

	updated, err := svc.Save(ctx, account.NewAccount{Name: "Ola K", Email: "ola@club.test", Role: account.RoleMember, Inactive: true})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Ola K", updated.Name)
	assert.False(t, updated.IsActive)
	assert.False(t, updated.CanTeach())
}

func TestService_Names(t *testing.T) {
	ctx := context.Background()
	svc := account.NewService(inmemdb.NewAccountRepository(inmemdb.New()))

	ola, err := svc.Save(ctx, account.NewAccount{Name: "Ola", Email: "ola@club.test", Role: account.RoleMember})
	require.NoError(t, err)

	names, err := svc.Names(ctx, []string{ola.ID, "missing"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{ola.ID: "Ola"}, names)

	_, err = svc.Get(ctx, "missing")
	assert.Equal(t, account.ErrNotFound, err)
}
