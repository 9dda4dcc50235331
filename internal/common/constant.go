package common

// AccessTokenHeaderName is the gRPC metadata key carrying the account token
// on inbound and outbound requests.
const AccessTokenHeaderName = "access_token"

// Roles known to the access policy. Exactly one superadmin is expected by
// convention; it is created by the first registration.
const (
	RoleUser       = "user"
	RoleSuperAdmin = "superadmin"
)

// Login types. Native accounts authenticate with a locally stored password.
const (
	LoginTypeNative = ""
	LoginTypeOAuth  = "oauth"
)
