// Package policy decides whether a verified caller may run an operation.
//
// Every operation has a descriptor. The generic checks are an ordered list of
// pure guards over (claims, descriptor, deployment), evaluated in order until
// the first failure.
package policy

import "github.com/dmitrijs2005/noteshelf/internal/common"

// Operation describes the authorization needs of one operation.
type Operation struct {
	// ID is the identifier permission scopes refer to.
	ID string
	// Public operations need no token at all.
	Public bool
	// MinRole is the lowest role allowed to call the operation; empty
	// means any authenticated account.
	MinRole string
	// DemoRestricted operations are refused when the deployment runs in
	// demo mode.
	DemoRestricted bool
}

// Deployment is the part of the server configuration guards look at.
type Deployment struct {
	DemoMode bool
}

const (
	OpList              = "users.list"
	OpPublicUserList    = "users.publicUserList"
	OpNativeAccountList = "users.nativeAccountList"
	OpLinkAccount       = "users.linkAccount"
	OpUnlinkAccount     = "users.unlinkAccount"
	OpDetail            = "users.detail"
	OpCanRegister       = "users.canRegister"
	OpRegister          = "users.register"
	OpLogin             = "users.login"
	OpLoginTwoFactor    = "users.loginTwoFactor"
	OpRegenToken        = "users.regenToken"
	OpGenLowPermToken   = "users.genLowPermToken"
	OpUpsertUser        = "users.upsertUser"
	OpUpsertUserByAdmin = "users.upsertUserByAdmin"
	OpGenerate2FASecret = "users.generate2FASecret"
	OpVerify2FAToken    = "users.verify2FAToken"
	OpDisable2FA        = "users.disable2FA"
	OpSetAllowRegister  = "users.setAllowRegister"
	OpAvatarUploadURL   = "users.avatarUploadURL"
	OpDeleteUser        = "users.deleteUser"
)

// Catalog holds the descriptor of every account operation, keyed by ID.
var Catalog = map[string]Operation{}

func init() {
	for _, op := range []Operation{
		{ID: OpList, MinRole: common.RoleSuperAdmin},
		{ID: OpPublicUserList, Public: true},
		{ID: OpNativeAccountList},
		{ID: OpLinkAccount},
		{ID: OpUnlinkAccount},
		{ID: OpDetail},
		{ID: OpCanRegister, Public: true},
		{ID: OpRegister, Public: true},
		{ID: OpLogin, Public: true},
		{ID: OpLoginTwoFactor, Public: true},
		{ID: OpRegenToken},
		{ID: OpGenLowPermToken},
		{ID: OpUpsertUser, DemoRestricted: true},
		{ID: OpUpsertUserByAdmin, MinRole: common.RoleSuperAdmin, DemoRestricted: true},
		{ID: OpGenerate2FASecret},
		{ID: OpVerify2FAToken, DemoRestricted: true},
		{ID: OpDisable2FA, DemoRestricted: true},
		{ID: OpSetAllowRegister, MinRole: common.RoleSuperAdmin, DemoRestricted: true},
		{ID: OpAvatarUploadURL, DemoRestricted: true},
		{ID: OpDeleteUser, MinRole: common.RoleSuperAdmin, DemoRestricted: true},
	} {
		Catalog[op.ID] = op
	}
}
