package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/noteshelf/internal/api"
	"github.com/dmitrijs2005/noteshelf/internal/client/session"
	"github.com/dmitrijs2005/noteshelf/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

var errEmptyInput = errors.New("input must not be empty")

// Register asks for a name and password and creates an account. The first
// account on a server becomes its superadmin.
func (a *App) Register(ctx context.Context) error {
	allowed, err := a.client.CanRegister(ctx)
	if err != nil {
		return err
	}
	if !allowed {
		a.printf("Registration is closed on this server\n")
		return nil
	}

	name, err := getSimpleText(a.reader, "Enter user name", a.out)
	if err != nil {
		return err
	}
	if name == "" {
		return errEmptyInput
	}

	password, err := getPassword(a.out, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.client.Register(ctx, name, string(password)); err != nil {
		return err
	}

	a.printf("Success! You can login now\n")
	return nil
}

// Login authenticates with a password and, for two-factor accounts, a
// verification code. The token is saved to the session store.
func (a *App) Login(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter user name", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	resp, err := a.client.Login(ctx, name, string(password))
	if err != nil {
		return err
	}

	if resp.RequiresTwoFactor {
		code, err := getSimpleText(a.reader, "Enter verification code", a.out)
		if err != nil {
			return err
		}
		resp, err = a.client.LoginTwoFactor(ctx, resp.Challenge, code)
		if err != nil {
			return err
		}
	}

	return a.signIn(ctx, resp)
}

func (a *App) signIn(ctx context.Context, resp *api.LoginResponse) error {
	st := session.State{Token: resp.Token, Name: resp.Name}
	if err := a.store.Save(ctx, st); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	a.setState(st)
	a.printf("Signed in as %s (%s)\n", resp.Name, resp.Role)
	return nil
}

// Logout forgets the saved token. Server-side the token stays valid until
// it expires or is rotated.
func (a *App) Logout(ctx context.Context) error {
	if err := a.store.Clear(ctx); err != nil {
		return err
	}
	a.setState(session.State{})
	a.printf("Signed out\n")
	return nil
}
