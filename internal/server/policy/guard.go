package policy

import (
	"github.com/dmitrijs2005/noteshelf/internal/common"
	"github.com/dmitrijs2005/noteshelf/internal/server/auth"
)

// Guard is one authorization predicate. A nil error lets the next guard run.
type Guard func(claims *auth.Claims, op Operation, d Deployment) error

// DefaultChain is the order every privileged operation is checked in.
var DefaultChain = []Guard{Authenticated, RequireRole, DeploymentMode, PermissionScope}

var roleRank = map[string]int{
	common.RoleUser:       1,
	common.RoleSuperAdmin: 2,
}

// Authenticated requires verified claims.
func Authenticated(claims *auth.Claims, _ Operation, _ Deployment) error {
	if claims == nil {
		return common.ErrMissingToken
	}
	return nil
}

// RequireRole enforces the operation's minimum role. Unknown roles rank
// below every known one.
func RequireRole(claims *auth.Claims, op Operation, _ Deployment) error {
	if op.MinRole == "" {
		return nil
	}
	if roleRank[claims.Role] < roleRank[op.MinRole] {
		return common.ErrRoleRequired
	}
	return nil
}

// DeploymentMode refuses demo-restricted operations in demo deployments,
// whatever the role.
func DeploymentMode(_ *auth.Claims, op Operation, d Deployment) error {
	if d.DemoMode && op.DemoRestricted {
		return common.ErrDemoMode
	}
	return nil
}

// PermissionScope confines scoped tokens to their allowlist.
func PermissionScope(claims *auth.Claims, op Operation, _ Deployment) error {
	if !claims.Allows(op.ID) {
		return common.ErrPermissionMissing
	}
	return nil
}

// Evaluate runs chain in order and returns the first failure.
func Evaluate(chain []Guard, claims *auth.Claims, op Operation, d Deployment) error {
	for _, g := range chain {
		if err := g(claims, op, d); err != nil {
			return err
		}
	}
	return nil
}
