package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/noteshelf/internal/common"
	"github.com/dmitrijs2005/noteshelf/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistrationGate_Decide(t *testing.T) {
	tests := []struct {
		name     string
		accounts int
		flag     any
		want     GateDecision
	}{
		{name: "empty deployment bootstraps", accounts: 0, want: GateDecision{Allowed: true, Bootstrap: true}},
		{name: "empty deployment ignores closed flag", accounts: 0, flag: false, want: GateDecision{Allowed: true, Bootstrap: true}},
		{name: "flag unset", accounts: 1, want: GateDecision{}},
		{name: "flag true", accounts: 1, flag: true, want: GateDecision{Allowed: true}},
		{name: "flag false", accounts: 2, flag: false, want: GateDecision{}},
		{name: "flag not a bool", accounts: 1, flag: "yes", want: GateDecision{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			for i := 0; i < tt.accounts; i++ {
				store.add(&models.Account{Role: common.RoleUser})
			}
			if tt.flag != nil {
				store.seedConfig(t, models.ConfigAllowRegister, models.GlobalScope, tt.flag)
			}

			got, err := NewRegistrationGate(&fakeRepoManager{s: store}).Decide(context.Background(), nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegistrationGate_BootstrapReopensWhenEmpty(t *testing.T) {
	store := newMemStore()
	g := NewRegistrationGate(&fakeRepoManager{s: store})
	ctx := context.Background()

	a := store.add(&models.Account{Role: common.RoleSuperAdmin})
	open, err := g.CanRegister(ctx, nil)
	require.NoError(t, err)
	assert.False(t, open)

	repo := &fakeAccountsRepo{s: store}
	require.NoError(t, repo.Delete(ctx, a.ID))

	d, err := g.Decide(ctx, nil)
	require.NoError(t, err)
	assert.True(t, d.Bootstrap)
}

func TestRegistrationGate_SetAllowRegister(t *testing.T) {
	store := newMemStore()
	store.add(&models.Account{Role: common.RoleSuperAdmin})
	g := NewRegistrationGate(&fakeRepoManager{s: store})
	ctx := context.Background()

	require.NoError(t, g.SetAllowRegister(ctx, nil, true))
	open, err := g.CanRegister(ctx, nil)
	require.NoError(t, err)
	assert.True(t, open)

	require.NoError(t, g.SetAllowRegister(ctx, nil, false))
	open, err = g.CanRegister(ctx, nil)
	require.NoError(t, err)
	assert.False(t, open)
}

func TestRegistrationGate_CountError(t *testing.T) {
	store := newMemStore()
	store.failCount = errors.New("db down")

	_, err := NewRegistrationGate(&fakeRepoManager{s: store}).Decide(context.Background(), nil)
	require.EqualError(t, err, "db down")
}

func TestRegistrationGate_UnwrappedFlagIsClosed(t *testing.T) {
	store := newMemStore()
	store.add(&models.Account{Role: common.RoleUser})
	store.setRaw(models.ConfigAllowRegister, models.GlobalScope, []byte("true"))

	got, err := NewRegistrationGate(&fakeRepoManager{s: store}).Decide(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, got.Allowed)
}

func TestRegistrationGate_SetAllowRegisterWrapsValue(t *testing.T) {
	store := newMemStore()
	store.add(&models.Account{Role: common.RoleUser})
	g := NewRegistrationGate(&fakeRepoManager{s: store})
	ctx := context.Background()

	require.NoError(t, g.SetAllowRegister(ctx, nil, true))
	raw, ok := store.config(models.ConfigAllowRegister, models.GlobalScope)
	require.True(t, ok)
	assert.JSONEq(t, `{"value": true}`, string(raw))

	open, err := g.CanRegister(ctx, nil)
	require.NoError(t, err)
	assert.True(t, open)
}
