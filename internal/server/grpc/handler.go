package grpc

import (
	"context"

	"github.com/dmitrijs2005/noteshelf/internal/api"
	"github.com/dmitrijs2005/noteshelf/internal/common"
	"github.com/dmitrijs2005/noteshelf/internal/server/models"
	"github.com/dmitrijs2005/noteshelf/internal/server/services"
)

var okResponse = &api.OKResponse{OK: true}

// fail logs err and converts it for the wire. Internal details stay in the
// log.
func (s *GRPCServer) fail(ctx context.Context, method string, err error, args ...any) error {
	args = append([]any{"method", method, "error", err}, args...)
	if common.CodeOf(err) == common.CodeInternal {
		s.logger.Error(ctx, "request failed", args...)
	} else {
		s.logger.Info(ctx, "request refused", args...)
	}
	return toStatus(err)
}

func toAccount(a *models.Account, withToken bool) api.Account {
	out := api.Account{
		ID:            a.ID,
		Name:          a.Name,
		Nickname:      a.Nickname,
		Role:          a.Role,
		LoginType:     a.LoginType,
		LinkAccountID: a.LinkAccountID,
		Image:         a.Image,
		Description:   a.Description,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
	if withToken {
		out.Token = a.APIToken
	}
	return out
}

func toLoginResponse(r *services.LoginResult) *api.LoginResponse {
	a := r.Account
	return &api.LoginResponse{
		ID:                a.ID,
		Name:              a.Name,
		Nickname:          a.Nickname,
		Role:              a.Role,
		Token:             r.Token,
		Image:             a.Image,
		LoginType:         a.LoginType,
		RequiresTwoFactor: r.RequiresTwoFactor,
		Challenge:         r.Challenge,
	}
}

func (s *GRPCServer) List(ctx context.Context, _ *api.Empty) (*api.ListResponse, error) {
	list, err := s.accounts.List(ctx)
	if err != nil {
		return nil, s.fail(ctx, api.MethodList, err)
	}
	out := &api.ListResponse{Accounts: make([]api.Account, 0, len(list))}
	for _, a := range list {
		out.Accounts = append(out.Accounts, toAccount(a, false))
	}
	return out, nil
}

func (s *GRPCServer) PublicUserList(ctx context.Context, _ *api.Empty) (*api.PublicUserListResponse, error) {
	list, err := s.accounts.PublicList(ctx)
	if err != nil {
		return nil, s.fail(ctx, api.MethodPublicUserList, err)
	}
	out := &api.PublicUserListResponse{Accounts: make([]api.PublicAccount, 0, len(list))}
	for _, a := range list {
		out.Accounts = append(out.Accounts, api.PublicAccount{
			ID:            a.ID,
			Name:          a.Name,
			Nickname:      a.Nickname,
			Role:          a.Role,
			LoginType:     a.LoginType,
			LinkAccountID: a.LinkAccountID,
			Image:         a.Image,
			Description:   a.Description,
			CreatedAt:     a.CreatedAt,
			UpdatedAt:     a.UpdatedAt,
		})
	}
	return out, nil
}

func (s *GRPCServer) NativeAccountList(ctx context.Context, _ *api.Empty) (*api.NativeAccountListResponse, error) {
	list, err := s.links.Candidates(ctx)
	if err != nil {
		return nil, s.fail(ctx, api.MethodNativeAccountList, err)
	}
	out := &api.NativeAccountListResponse{Accounts: make([]api.LinkCandidate, 0, len(list))}
	for _, c := range list {
		out.Accounts = append(out.Accounts, api.LinkCandidate{ID: c.ID, Name: c.Name, Nickname: c.Nickname})
	}
	return out, nil
}

func (s *GRPCServer) LinkAccount(ctx context.Context, req *api.LinkAccountRequest) (*api.OKResponse, error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	if err := s.links.Link(ctx, caller, req.ID, req.OriginalPassword); err != nil {
		return nil, s.fail(ctx, api.MethodLinkAccount, err, "account_id", caller.ID, "target_id", req.ID)
	}
	return okResponse, nil
}

func (s *GRPCServer) UnlinkAccount(ctx context.Context, req *api.UnlinkAccountRequest) (*api.OKResponse, error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	if err := s.links.Unlink(ctx, caller, req.ID); err != nil {
		return nil, s.fail(ctx, api.MethodUnlinkAccount, err, "account_id", caller.ID, "target_id", req.ID)
	}
	return okResponse, nil
}

func (s *GRPCServer) Detail(ctx context.Context, req *api.DetailRequest) (*api.DetailResponse, error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	p, err := s.accounts.Detail(ctx, caller, req.ID)
	if err != nil {
		return nil, s.fail(ctx, api.MethodDetail, err, "account_id", caller.ID)
	}
	return &api.DetailResponse{Account: toAccount(p.Account, true), IsLinked: p.IsLinked}, nil
}

func (s *GRPCServer) CanRegister(ctx context.Context, _ *api.Empty) (*api.CanRegisterResponse, error) {
	allowed, err := s.accounts.CanRegister(ctx)
	if err != nil {
		return nil, s.fail(ctx, api.MethodCanRegister, err)
	}
	return &api.CanRegisterResponse{Allowed: allowed}, nil
}

func (s *GRPCServer) Register(ctx context.Context, req *api.RegisterRequest) (*api.OKResponse, error) {
	s.logger.Info(ctx, "Registration request", "name", req.Name)

	a, err := s.accounts.Register(ctx, req.Name, req.Password)
	if err != nil {
		return nil, s.fail(ctx, api.MethodRegister, err, "name", req.Name)
	}

	s.logger.Info(ctx, "Registered", "name", req.Name, "account_id", a.ID)
	return okResponse, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *api.LoginRequest) (*api.LoginResponse, error) {
	res, err := s.accounts.Login(ctx, req.Name, req.Password)
	if err != nil {
		return nil, s.fail(ctx, api.MethodLogin, err, "name", req.Name)
	}
	return toLoginResponse(res), nil
}

func (s *GRPCServer) LoginTwoFactor(ctx context.Context, req *api.LoginTwoFactorRequest) (*api.LoginResponse, error) {
	res, err := s.twoFactor.LoginTwoFactor(ctx, req.Challenge, req.Code)
	if err != nil {
		return nil, s.fail(ctx, api.MethodLoginTwoFactor, err)
	}
	return toLoginResponse(res), nil
}

func (s *GRPCServer) RegenToken(ctx context.Context, _ *api.Empty) (*api.OKResponse, error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	done, err := s.accounts.RegenToken(ctx, caller)
	if err != nil {
		return nil, s.fail(ctx, api.MethodRegenToken, err, "account_id", caller.ID)
	}
	return &api.OKResponse{OK: done}, nil
}

func (s *GRPCServer) GenLowPermToken(ctx context.Context, _ *api.Empty) (*api.TokenResponse, error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	token, err := s.accounts.GenLowPermToken(ctx, caller)
	if err != nil {
		return nil, s.fail(ctx, api.MethodGenLowPermToken, err, "account_id", caller.ID)
	}
	return &api.TokenResponse{Token: token}, nil
}

func (s *GRPCServer) UpsertUser(ctx context.Context, req *api.UpsertUserRequest) (*api.OKResponse, error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	err = s.accounts.UpsertUser(ctx, caller, services.UpsertInput{
		ID:               req.ID,
		Name:             req.Name,
		Password:         req.Password,
		OriginalPassword: req.OriginalPassword,
		Nickname:         req.Nickname,
		Image:            req.Image,
	})
	if err != nil {
		return nil, s.fail(ctx, api.MethodUpsertUser, err, "account_id", caller.ID)
	}
	return okResponse, nil
}

func (s *GRPCServer) UpsertUserByAdmin(ctx context.Context, req *api.UpsertUserByAdminRequest) (*api.OKResponse, error) {
	err := s.accounts.UpsertUserByAdmin(ctx, services.AdminUpsertInput{
		ID:       req.ID,
		Name:     req.Name,
		Password: req.Password,
		Nickname: req.Nickname,
	})
	if err != nil {
		return nil, s.fail(ctx, api.MethodUpsertUserByAdmin, err)
	}
	return okResponse, nil
}

func (s *GRPCServer) Generate2FASecret(ctx context.Context, req *api.Generate2FASecretRequest) (*api.Generate2FASecretResponse, error) {
	secret, qr, err := s.twoFactor.GenerateSecret(ctx, req.Name)
	if err != nil {
		return nil, s.fail(ctx, api.MethodGenerate2FASecret, err)
	}
	return &api.Generate2FASecretResponse{Secret: secret, QRCode: qr}, nil
}

func (s *GRPCServer) Verify2FAToken(ctx context.Context, req *api.Verify2FATokenRequest) (*api.OKResponse, error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	if err := s.twoFactor.Enable(ctx, caller, req.Token, req.Secret); err != nil {
		return nil, s.fail(ctx, api.MethodVerify2FAToken, err, "account_id", caller.ID)
	}
	return okResponse, nil
}

func (s *GRPCServer) Disable2FA(ctx context.Context, _ *api.Empty) (*api.OKResponse, error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	if err := s.twoFactor.Disable(ctx, caller); err != nil {
		return nil, s.fail(ctx, api.MethodDisable2FA, err, "account_id", caller.ID)
	}
	return okResponse, nil
}

func (s *GRPCServer) SetAllowRegister(ctx context.Context, req *api.SetAllowRegisterRequest) (*api.OKResponse, error) {
	if err := s.accounts.SetAllowRegister(ctx, req.Value); err != nil {
		return nil, s.fail(ctx, api.MethodSetAllowRegister, err)
	}
	s.logger.Info(ctx, "registration toggled", "allow", req.Value)
	return okResponse, nil
}

func (s *GRPCServer) AvatarUploadURL(ctx context.Context, _ *api.Empty) (*api.AvatarUploadURLResponse, error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	if s.avatars == nil {
		return nil, s.fail(ctx, api.MethodAvatarUploadURL, common.ErrorInternal)
	}
	key, url, err := s.avatars.UploadURL(ctx, caller)
	if err != nil {
		return nil, s.fail(ctx, api.MethodAvatarUploadURL, err, "account_id", caller.ID)
	}
	return &api.AvatarUploadURLResponse{Key: key, URL: url}, nil
}

func (s *GRPCServer) DeleteUser(ctx context.Context, req *api.DeleteUserRequest) (*api.OKResponse, error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	if err := s.accounts.DeleteUser(ctx, caller, req.ID); err != nil {
		return nil, s.fail(ctx, api.MethodDeleteUser, err, "account_id", req.ID)
	}
	return okResponse, nil
}
