package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/noteshelf/internal/common"
	"github.com/dmitrijs2005/noteshelf/internal/logging"
	"github.com/dmitrijs2005/noteshelf/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type linkFixture struct {
	*accountFixture
	links *LinkService
	alice *models.Account
	bob   *models.Account
}

// newLinkFixture seeds alice (native, password "pw-alice") and bob (an
// external login).
func newLinkFixture(t *testing.T) *linkFixture {
	t.Helper()
	f := newAccountFixture(t)
	lf := &linkFixture{
		accountFixture: f,
		links:          NewLinkService(f.db, &fakeRepoManager{s: f.store}, newPasswords(), f.sessions, logging.Nop{}),
	}
	lf.alice = f.store.add(&models.Account{Name: "alice", Password: mustHash(t, "pw-alice"), Role: common.RoleSuperAdmin})
	lf.bob = f.store.add(&models.Account{Name: "bob", Role: common.RoleUser, LoginType: "github"})
	return lf
}

func (f *linkFixture) caller(a *models.Account) Caller { return Caller{ID: a.ID, Role: a.Role} }

func TestLink_Success(t *testing.T) {
	f := newLinkFixture(t)
	ctx := context.Background()

	expectCommit(f.mock)
	require.NoError(t, f.links.Link(ctx, f.caller(f.bob), f.alice.ID, "pw-alice"))

	got := f.store.get(f.bob.ID).LinkAccountID
	require.NotNil(t, got)
	assert.Equal(t, f.alice.ID, *got)
	assert.Equal(t, []int64{f.bob.ID}, f.sessions.ids)

	linked, err := f.links.IsLinked(ctx, f.alice.ID)
	require.NoError(t, err)
	assert.True(t, linked)

	// same pair again
	expectCommit(f.mock)
	require.NoError(t, f.links.Link(ctx, f.caller(f.bob), f.alice.ID, "pw-alice"))
	assert.Equal(t, f.alice.ID, *f.store.get(f.bob.ID).LinkAccountID)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestLink_WrongPasswordChangesNothing(t *testing.T) {
	f := newLinkFixture(t)

	err := f.links.Link(context.Background(), f.caller(f.bob), f.alice.ID, "nope")
	require.ErrorIs(t, err, common.ErrPasswordIncorrect)

	assert.Nil(t, f.store.get(f.bob.ID).LinkAccountID)
	assert.Empty(t, f.sessions.ids)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestLink_Rejected(t *testing.T) {
	f := newLinkFixture(t)
	ctx := context.Background()
	ext := f.store.add(&models.Account{Name: "ext", Password: mustHash(t, "pw"), Role: common.RoleUser, LoginType: "google"})
	dave := f.store.add(&models.Account{Name: "dave", Role: common.RoleUser, LoginType: "github", LinkAccountID: &f.alice.ID})

	tests := []struct {
		name     string
		caller   *models.Account
		target   int64
		password string
		want     error
	}{
		{name: "self", caller: f.bob, target: f.bob.ID, password: "pw", want: common.ErrLinkTargetInvalid},
		{name: "missing target", caller: f.bob, target: 999, password: "pw", want: common.ErrAccountNotFound},
		{name: "non native target", caller: f.bob, target: ext.ID, password: "pw", want: common.ErrLinkTargetInvalid},
		{name: "target taken", caller: f.bob, target: f.alice.ID, password: "pw-alice", want: common.ErrLinkTargetInvalid},
		{name: "target is linked itself", caller: f.bob, target: dave.ID, password: "pw", want: common.ErrLinkTargetInvalid},
		{name: "caller is a link target", caller: f.alice, target: ext.ID, password: "pw", want: common.ErrLinkChain},
		{name: "target checked before password", caller: ext, target: f.alice.ID, password: "", want: common.ErrLinkTargetInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.links.Link(ctx, f.caller(tt.caller), tt.target, tt.password)
			require.ErrorIs(t, err, tt.want)
		})
	}
	assert.Nil(t, f.store.get(f.bob.ID).LinkAccountID)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestLink_PasswordRequired(t *testing.T) {
	f := newLinkFixture(t)

	err := f.links.Link(context.Background(), f.caller(f.bob), f.alice.ID, "")
	require.ErrorIs(t, err, common.ErrPasswordRequired)
}

func TestUnlink_ClearsAllLinks(t *testing.T) {
	f := newLinkFixture(t)
	ctx := context.Background()
	carol := f.store.add(&models.Account{Name: "carol", Role: common.RoleUser, LoginType: "github", LinkAccountID: &f.alice.ID})
	f.store.accounts[f.bob.ID].LinkAccountID = &f.alice.ID

	expectCommit(f.mock)
	require.NoError(t, f.links.Unlink(ctx, Caller{ID: f.alice.ID, Role: common.RoleUser}, f.alice.ID))

	assert.Nil(t, f.store.get(f.bob.ID).LinkAccountID)
	assert.Nil(t, f.store.get(carol.ID).LinkAccountID)
	assert.ElementsMatch(t, []int64{f.bob.ID, carol.ID}, f.sessions.ids)

	linked, err := f.links.IsLinked(ctx, f.alice.ID)
	require.NoError(t, err)
	assert.False(t, linked)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestUnlink_AnyAuthenticatedCaller(t *testing.T) {
	f := newLinkFixture(t)
	ctx := context.Background()
	eve := f.store.add(&models.Account{Name: "eve", Role: common.RoleUser})
	f.store.accounts[f.bob.ID].LinkAccountID = &f.alice.ID

	expectCommit(f.mock)
	require.NoError(t, f.links.Unlink(ctx, f.caller(eve), f.alice.ID))
	assert.Nil(t, f.store.get(f.bob.ID).LinkAccountID)
	assert.Equal(t, []int64{f.bob.ID}, f.sessions.ids)

	// nothing linked any more
	expectCommit(f.mock)
	require.NoError(t, f.links.Unlink(ctx, f.caller(eve), f.alice.ID))
	assert.Equal(t, []int64{f.bob.ID}, f.sessions.ids)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCandidates_ExcludeTakenTargets(t *testing.T) {
	f := newLinkFixture(t)
	free := f.store.add(&models.Account{Name: "free", Nickname: "Free", Role: common.RoleUser})

	expectCommit(f.mock)
	require.NoError(t, f.links.Link(context.Background(), f.caller(f.bob), f.alice.ID, "pw-alice"))

	got, err := f.links.Candidates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.LinkCandidate{{ID: free.ID, Name: "free", Nickname: "Free"}}, got)
}
