package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/dmitrijs2005/noteshelf/internal/common"
)

func (a *App) Candidates(ctx context.Context) error {
	list, err := a.client.NativeAccountList(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		a.printf("No accounts available for linking\n")
		return nil
	}
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tNICKNAME")
	for _, c := range list {
		fmt.Fprintf(w, "%d\t%s\t%s\n", c.ID, c.Name, c.Nickname)
	}
	return w.Flush()
}

// Link attaches the signed-in account to a native account. The native
// account's password proves ownership.
func (a *App) Link(ctx context.Context, args []string) error {
	id, err := parseID(args, "link <id>")
	if err != nil {
		return err
	}
	password, err := getPassword(a.out, "Enter password of the account to link")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.client.LinkAccount(ctx, id, string(password)); err != nil {
		return err
	}
	a.printf("Linked to account %d. Sign in again to refresh your session\n", id)
	return nil
}

func (a *App) Unlink(ctx context.Context, args []string) error {
	id, err := parseID(args, "unlink <id>")
	if err != nil {
		return err
	}
	if err := a.client.UnlinkAccount(ctx, id); err != nil {
		return err
	}
	a.printf("Account %d unlinked\n", id)
	return nil
}
