package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/dmitrijs2005/noteshelf/internal/api"
	"github.com/dmitrijs2005/noteshelf/internal/client/config"
	"github.com/dmitrijs2005/noteshelf/internal/client/session"
)

type fakeClient struct {
	token string
	calls []string

	canRegister bool
	loginResp   *api.LoginResponse
	twoFAResp   *api.LoginResponse
	detail      *api.DetailResponse
	accounts    []api.Account
	public      []api.PublicAccount
	candidates  []api.LinkCandidate
	secret      *api.Generate2FASecretResponse
	lowToken    string
	avatarKey   string
	err         error

	regName, regPass string
	loginPass        string
	gotChallenge     string
	gotCode          string
	detailID         *int64
	upsert           *api.UpsertUserRequest
	adminUpsert      *api.UpsertUserByAdminRequest
	linkID           int64
	linkPass         string
	unlinkID         int64
	deletedID        int64
	allow            *bool
	verified         [2]string
	avatarType       string
	avatarData       []byte
}

func (f *fakeClient) call(name string) error {
	f.calls = append(f.calls, name)
	return f.err
}

func (f *fakeClient) Close() error          { return nil }
func (f *fakeClient) SetToken(token string) { f.token = token }
func (f *fakeClient) Token() string         { return f.token }

func (f *fakeClient) CanRegister(context.Context) (bool, error) {
	return f.canRegister, f.call("CanRegister")
}

func (f *fakeClient) Register(_ context.Context, name, password string) error {
	f.regName, f.regPass = name, password
	return f.call("Register")
}

func (f *fakeClient) Login(_ context.Context, name, password string) (*api.LoginResponse, error) {
	f.loginPass = password
	if err := f.call("Login"); err != nil {
		return nil, err
	}
	return f.loginResp, nil
}

func (f *fakeClient) LoginTwoFactor(_ context.Context, challenge, code string) (*api.LoginResponse, error) {
	f.gotChallenge, f.gotCode = challenge, code
	if err := f.call("LoginTwoFactor"); err != nil {
		return nil, err
	}
	return f.twoFAResp, nil
}

func (f *fakeClient) Detail(_ context.Context, id *int64) (*api.DetailResponse, error) {
	f.detailID = id
	if err := f.call("Detail"); err != nil {
		return nil, err
	}
	return f.detail, nil
}

func (f *fakeClient) List(context.Context) ([]api.Account, error) {
	return f.accounts, f.call("List")
}

func (f *fakeClient) PublicUserList(context.Context) ([]api.PublicAccount, error) {
	return f.public, f.call("PublicUserList")
}

func (f *fakeClient) NativeAccountList(context.Context) ([]api.LinkCandidate, error) {
	return f.candidates, f.call("NativeAccountList")
}

func (f *fakeClient) LinkAccount(_ context.Context, id int64, password string) error {
	f.linkID, f.linkPass = id, password
	return f.call("LinkAccount")
}

func (f *fakeClient) UnlinkAccount(_ context.Context, id int64) error {
	f.unlinkID = id
	return f.call("UnlinkAccount")
}

func (f *fakeClient) RegenToken(context.Context) error { return f.call("RegenToken") }

func (f *fakeClient) GenLowPermToken(context.Context) (string, error) {
	return f.lowToken, f.call("GenLowPermToken")
}

func (f *fakeClient) UpsertUser(_ context.Context, req *api.UpsertUserRequest) error {
	f.upsert = req
	return f.call("UpsertUser")
}

func (f *fakeClient) UpsertUserByAdmin(_ context.Context, req *api.UpsertUserByAdminRequest) error {
	f.adminUpsert = req
	return f.call("UpsertUserByAdmin")
}

func (f *fakeClient) DeleteUser(_ context.Context, id int64) error {
	f.deletedID = id
	return f.call("DeleteUser")
}

func (f *fakeClient) SetAllowRegister(_ context.Context, allow bool) error {
	f.allow = &allow
	return f.call("SetAllowRegister")
}

func (f *fakeClient) Generate2FASecret(context.Context, string) (*api.Generate2FASecretResponse, error) {
	if err := f.call("Generate2FASecret"); err != nil {
		return nil, err
	}
	return f.secret, nil
}

func (f *fakeClient) Verify2FAToken(_ context.Context, code, secret string) error {
	f.verified = [2]string{code, secret}
	return f.call("Verify2FAToken")
}

func (f *fakeClient) Disable2FA(context.Context) error { return f.call("Disable2FA") }

func (f *fakeClient) UploadAvatar(_ context.Context, contentType string, image []byte) (string, error) {
	f.avatarType, f.avatarData = contentType, image
	return f.avatarKey, f.call("UploadAvatar")
}

type fakeStore struct {
	st      session.State
	saved   int
	cleared bool
	saveErr error
}

func (s *fakeStore) Load(context.Context) (session.State, error) { return s.st, nil }
func (s *fakeStore) Save(_ context.Context, st session.State) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.st = st
	s.saved++
	return nil
}
func (s *fakeStore) Clear(context.Context) error {
	s.st = session.State{}
	s.cleared = true
	return nil
}
func (s *fakeStore) Close() error { return nil }

// stubPrompts answers getSimpleText and getPassword from queues, in order.
func stubPrompts(t *testing.T, texts []string, passwords []string) {
	t.Helper()
	origST, origGP := getSimpleText, getPassword
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		if len(texts) == 0 {
			return "", io.EOF
		}
		v := texts[0]
		texts = texts[1:]
		return v, nil
	}
	getPassword = func(_ io.Writer, _ string) ([]byte, error) {
		if len(passwords) == 0 {
			return nil, io.EOF
		}
		v := passwords[0]
		passwords = passwords[1:]
		return []byte(v), nil
	}
	t.Cleanup(func() {
		getSimpleText = origST
		getPassword = origGP
	})
}

type appFixture struct {
	app    *App
	client *fakeClient
	store  *fakeStore
	out    *bytes.Buffer
}

func newAppFixture(t *testing.T, signedIn bool) *appFixture {
	t.Helper()
	fc := &fakeClient{}
	fs := &fakeStore{}
	if signedIn {
		fs.st = session.State{Token: "tok", Name: "alice"}
	}
	out := &bytes.Buffer{}
	cfg := &config.Config{SessionDir: ".ns"}
	app := newApp(cfg, fc, fs, bufio.NewReader(strings.NewReader("")), out)
	if err := app.restore(context.Background()); err != nil {
		t.Fatal(err)
	}
	return &appFixture{app: app, client: fc, store: fs, out: out}
}
