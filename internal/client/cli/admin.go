package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/noteshelf/internal/api"
	"github.com/dmitrijs2005/noteshelf/internal/common"
)

func (a *App) AllowRegister(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: allow-register <on|off>")
	}
	var allow bool
	switch args[0] {
	case "on", "true", "yes":
		allow = true
	case "off", "false", "no":
	default:
		return fmt.Errorf("usage: allow-register <on|off>")
	}

	if err := a.client.SetAllowRegister(ctx, allow); err != nil {
		return err
	}
	if allow {
		a.printf("Registration opened\n")
	} else {
		a.printf("Registration closed\n")
	}
	return nil
}

// AddUser creates an account on behalf of another person, regardless of
// whether registration is open.
func (a *App) AddUser(ctx context.Context) error {
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

	if err := a.client.UpsertUserByAdmin(ctx, &api.UpsertUserByAdminRequest{Name: name, Password: string(password)}); err != nil {
		return err
	}
	a.printf("User %s created\n", name)
	return nil
}

func (a *App) DeleteUser(ctx context.Context, args []string) error {
	id, err := parseID(args, "deluser <id>")
	if err != nil {
		return err
	}
	ok, err := confirm(a.reader, fmt.Sprintf("Delete account %d and all its notes?", id), a.out)
	if err != nil || !ok {
		return err
	}
	if err := a.client.DeleteUser(ctx, id); err != nil {
		return err
	}
	a.printf("Account %d deleted\n", id)
	return nil
}
