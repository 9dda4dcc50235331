package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/dmitrijs2005/noteshelf/internal/api"
	"github.com/dmitrijs2005/noteshelf/internal/common"
)

const timeLayout = "2006-01-02 15:04"

// parseID reads the account id from the first argument.
func parseID(args []string, usage string) (int64, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("usage: %s", usage)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid account id %q", args[0])
	}
	return id, nil
}

func (a *App) printAccount(acc api.Account, linked bool) {
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "ID:\t%d\n", acc.ID)
	fmt.Fprintf(w, "Name:\t%s\n", acc.Name)
	fmt.Fprintf(w, "Nickname:\t%s\n", acc.Nickname)
	fmt.Fprintf(w, "Role:\t%s\n", acc.Role)
	if acc.LoginType != "" {
		fmt.Fprintf(w, "Login:\t%s\n", acc.LoginType)
	}
	if acc.LinkAccountID != nil {
		fmt.Fprintf(w, "Linked to:\t%d\n", *acc.LinkAccountID)
	} else if linked {
		fmt.Fprintf(w, "Linked:\tyes\n")
	}
	if acc.Image != "" {
		fmt.Fprintf(w, "Avatar:\t%s\n", acc.Image)
	}
	if acc.Token != "" {
		fmt.Fprintf(w, "Token:\t%s\n", acc.Token)
	}
	fmt.Fprintf(w, "Created:\t%s\n", acc.CreatedAt.Format(timeLayout))
	_ = w.Flush()
}

func (a *App) Whoami(ctx context.Context) error {
	resp, err := a.client.Detail(ctx, nil)
	if err != nil {
		return err
	}
	a.printAccount(resp.Account, resp.IsLinked)
	return nil
}

func (a *App) Show(ctx context.Context, args []string) error {
	id, err := parseID(args, "show <id>")
	if err != nil {
		return err
	}
	resp, err := a.client.Detail(ctx, &id)
	if err != nil {
		return err
	}
	a.printAccount(resp.Account, resp.IsLinked)
	return nil
}

func (a *App) Users(ctx context.Context) error {
	accounts, err := a.client.List(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tNICKNAME\tROLE\tLOGIN\tLINKED")
	for _, acc := range accounts {
		linked := ""
		if acc.LinkAccountID != nil {
			linked = strconv.FormatInt(*acc.LinkAccountID, 10)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", acc.ID, acc.Name, acc.Nickname, acc.Role, acc.LoginType, linked)
	}
	return w.Flush()
}

func (a *App) Public(ctx context.Context) error {
	accounts, err := a.client.PublicUserList(ctx)
	if err != nil {
		return err
	}
	if len(accounts) == 0 {
		a.printf("No users\n")
		return nil
	}
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tNICKNAME\tROLE")
	for _, acc := range accounts {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", acc.ID, acc.Name, acc.Nickname, acc.Role)
	}
	return w.Flush()
}

// self returns the caller's account id.
func (a *App) self(ctx context.Context) (int64, error) {
	resp, err := a.client.Detail(ctx, nil)
	if err != nil {
		return 0, err
	}
	return resp.Account.ID, nil
}

func (a *App) Rename(ctx context.Context) error {
	id, err := a.self(ctx)
	if err != nil {
		return err
	}
	nick, err := getSimpleText(a.reader, "Enter new nickname", a.out)
	if err != nil {
		return err
	}
	if nick == "" {
		return errEmptyInput
	}
	if err := a.client.UpsertUser(ctx, &api.UpsertUserRequest{ID: &id, Nickname: nick}); err != nil {
		return err
	}
	a.printf("Nickname updated\n")
	return nil
}

func (a *App) ChangePassword(ctx context.Context) error {
	id, err := a.self(ctx)
	if err != nil {
		return err
	}
	current, err := getPassword(a.out, "Enter current password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(current)

	next, err := getPassword(a.out, "Enter new password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(next)
	if len(next) == 0 {
		return errEmptyInput
	}

	req := &api.UpsertUserRequest{ID: &id, Password: string(next), OriginalPassword: string(current)}
	if err := a.client.UpsertUser(ctx, req); err != nil {
		return err
	}
	a.printf("Password changed\n")
	return nil
}

// Avatar uploads an image file and makes it the profile picture.
func (a *App) Avatar(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: avatar <file>")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	key, err := a.client.UploadAvatar(ctx, http.DetectContentType(data), data)
	if err != nil {
		return err
	}
	a.printf("Avatar uploaded: %s\n", key)
	return nil
}

// RegenToken rotates the personal access token. Copies of the old one stop
// working.
func (a *App) RegenToken(ctx context.Context) error {
	if err := a.client.RegenToken(ctx); err != nil {
		return err
	}
	a.printf("Personal token regenerated, run 'whoami' to see it\n")
	return nil
}

func (a *App) LowPermToken(ctx context.Context) error {
	token, err := a.client.GenLowPermToken(ctx)
	if err != nil {
		return err
	}
	a.printf("Low-permission token:\n%s\n", token)
	return nil
}
