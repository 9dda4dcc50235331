// Package cli provides the interactive noteshelf account console.
//
// It wires configuration, the local session store, the account API client
// and a REPL. A token saved by an earlier login is restored on start, so the
// user stays signed in between invocations until logout.
//
// Key features:
//   - Register / Login (with a second step for two-factor accounts) / Logout
//   - Profile: show, rename, change password, upload avatar
//   - Account linking with native accounts
//   - Personal and low-permission tokens
//   - Superadmin tools: user list, add and delete users, open or close
//     registration
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
