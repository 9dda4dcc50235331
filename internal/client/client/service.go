package client

import (
	"context"

	"github.com/dmitrijs2005/noteshelf/internal/api"
)

type Client interface {
	Close() error
	SetToken(token string)
	Token() string

	CanRegister(ctx context.Context) (bool, error)
	Register(ctx context.Context, name, password string) error
	Login(ctx context.Context, name, password string) (*api.LoginResponse, error)
	LoginTwoFactor(ctx context.Context, challenge, code string) (*api.LoginResponse, error)

	Detail(ctx context.Context, id *int64) (*api.DetailResponse, error)
	List(ctx context.Context) ([]api.Account, error)
	PublicUserList(ctx context.Context) ([]api.PublicAccount, error)
	NativeAccountList(ctx context.Context) ([]api.LinkCandidate, error)

	LinkAccount(ctx context.Context, id int64, password string) error
	UnlinkAccount(ctx context.Context, id int64) error

	RegenToken(ctx context.Context) error
	GenLowPermToken(ctx context.Context) (string, error)

	UpsertUser(ctx context.Context, req *api.UpsertUserRequest) error
	UpsertUserByAdmin(ctx context.Context, req *api.UpsertUserByAdminRequest) error
	DeleteUser(ctx context.Context, id int64) error
	SetAllowRegister(ctx context.Context, allow bool) error

	Generate2FASecret(ctx context.Context, name string) (*api.Generate2FASecretResponse, error)
	Verify2FAToken(ctx context.Context, code, secret string) error
	Disable2FA(ctx context.Context) error

	UploadAvatar(ctx context.Context, contentType string, image []byte) (string, error)
}
