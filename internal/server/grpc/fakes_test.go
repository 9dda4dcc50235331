package grpc

import (
	"context"
	"strconv"
	"time"

	"github.com/dmitrijs2005/noteshelf/internal/common"
	"github.com/dmitrijs2005/noteshelf/internal/logging"
	"github.com/dmitrijs2005/noteshelf/internal/server/auth"
	"github.com/dmitrijs2005/noteshelf/internal/server/models"
	"github.com/dmitrijs2005/noteshelf/internal/server/policy"
	"github.com/dmitrijs2005/noteshelf/internal/server/services"
)

// ---- fakes ----

type fakeAccounts struct {
	list    []*models.Account
	profile *services.Profile
	login   *services.LoginResult
	account *models.Account
	allowed bool
	regen   bool
	token   string
	err     error

	gotCaller services.Caller
	gotUpsert services.UpsertInput
	gotAdmin  services.AdminUpsertInput
	gotID     *int64
	gotAllow  *bool
}

func (f *fakeAccounts) List(context.Context) ([]*models.Account, error)       { return f.list, f.err }
func (f *fakeAccounts) PublicList(context.Context) ([]*models.Account, error) { return f.list, f.err }
func (f *fakeAccounts) Detail(_ context.Context, c services.Caller, id *int64) (*services.Profile, error) {
	f.gotCaller, f.gotID = c, id
	return f.profile, f.err
}
func (f *fakeAccounts) CanRegister(context.Context) (bool, error) { return f.allowed, f.err }
func (f *fakeAccounts) SetAllowRegister(_ context.Context, allow bool) error {
	f.gotAllow = &allow
	return f.err
}
func (f *fakeAccounts) Register(context.Context, string, string) (*models.Account, error) {
	return f.account, f.err
}
func (f *fakeAccounts) Login(context.Context, string, string) (*services.LoginResult, error) {
	return f.login, f.err
}
func (f *fakeAccounts) RegenToken(_ context.Context, c services.Caller) (bool, error) {
	f.gotCaller = c
	return f.regen, f.err
}
func (f *fakeAccounts) GenLowPermToken(_ context.Context, c services.Caller) (string, error) {
	f.gotCaller = c
	return f.token, f.err
}
func (f *fakeAccounts) UpsertUser(_ context.Context, c services.Caller, in services.UpsertInput) error {
	f.gotCaller, f.gotUpsert = c, in
	return f.err
}
func (f *fakeAccounts) UpsertUserByAdmin(_ context.Context, in services.AdminUpsertInput) error {
	f.gotAdmin = in
	return f.err
}
func (f *fakeAccounts) DeleteUser(_ context.Context, c services.Caller, id int64) error {
	f.gotCaller, f.gotID = c, &id
	return f.err
}

type fakeLinks struct {
	candidates  []models.LinkCandidate
	err         error
	gotTarget   int64
	gotPassword string
}

func (f *fakeLinks) Candidates(context.Context) ([]models.LinkCandidate, error) { return f.candidates, f.err }
func (f *fakeLinks) Link(_ context.Context, _ services.Caller, target int64, password string) error {
	f.gotTarget, f.gotPassword = target, password
	return f.err
}
func (f *fakeLinks) Unlink(_ context.Context, _ services.Caller, target int64) error {
	f.gotTarget = target
	return f.err
}

type fakeTwoFactor struct {
	secret, qr string
	login      *services.LoginResult
	err        error
	gotCode    string
	disabled   bool
}

func (f *fakeTwoFactor) GenerateSecret(context.Context, string) (string, string, error) {
	return f.secret, f.qr, f.err
}
func (f *fakeTwoFactor) Enable(_ context.Context, _ services.Caller, code, _ string) error {
	f.gotCode = code
	return f.err
}
func (f *fakeTwoFactor) Disable(context.Context, services.Caller) error {
	f.disabled = true
	return f.err
}
func (f *fakeTwoFactor) LoginTwoFactor(_ context.Context, _ string, code string) (*services.LoginResult, error) {
	f.gotCode = code
	return f.login, f.err
}

type fakeAvatars struct {
	key, url string
	err      error
}

func (f *fakeAvatars) UploadURL(context.Context, services.Caller) (string, string, error) {
	return f.key, f.url, f.err
}

var testSecret = auth.StaticSecret("grpc-test-secret")

func newIssuer() *auth.Issuer { return auth.NewIssuer(testSecret, time.Hour) }

type fixture struct {
	srv       *GRPCServer
	accounts  *fakeAccounts
	links     *fakeLinks
	twoFactor *fakeTwoFactor
	avatars   *fakeAvatars
}

func newFixture(demo bool) *fixture {
	f := &fixture{
		accounts:  &fakeAccounts{},
		links:     &fakeLinks{},
		twoFactor: &fakeTwoFactor{},
		avatars:   &fakeAvatars{},
	}
	enforcer := policy.NewEnforcer(newIssuer(), nil, policy.Deployment{DemoMode: demo})
	f.srv = NewGRPCServer("", logging.Nop{}, enforcer, Services{
		Accounts:  f.accounts,
		Links:     f.links,
		TwoFactor: f.twoFactor,
		Avatars:   f.avatars,
	})
	return f
}

// asCaller returns ctx carrying claims for a verified account.
func asCaller(id int64, role string) context.Context {
	claims := &auth.Claims{Role: role}
	claims.Subject = strconv.FormatInt(id, 10)
	return auth.NewContext(context.Background(), claims)
}

var errBoom = common.ErrorInternal
