package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool

	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error

	Whoami(ctx context.Context) error
	Show(ctx context.Context, args []string) error
	Users(ctx context.Context) error
	Public(ctx context.Context) error
	Rename(ctx context.Context) error
	ChangePassword(ctx context.Context) error
	Avatar(ctx context.Context, args []string) error

	Candidates(ctx context.Context) error
	Link(ctx context.Context, args []string) error
	Unlink(ctx context.Context, args []string) error

	RegenToken(ctx context.Context) error
	LowPermToken(ctx context.Context) error

	EnableTwoFactor(ctx context.Context) error
	DisableTwoFactor(ctx context.Context) error

	AllowRegister(ctx context.Context, args []string) error
	AddUser(ctx context.Context) error
	DeleteUser(ctx context.Context, args []string) error
}

const (
	helpSignedOut = "Available commands: register, login, public, help, exit"
	helpSignedIn  = "Available commands: whoami, show <id>, users, public, nick, passwd, avatar <file>, " +
		"candidates, link <id>, unlink <id>, regen, lowtoken, 2fa-enable, 2fa-disable, " +
		"allow-register <on|off>, adduser, deluser <id>, logout, help, exit"
)

// runREPL starts a read–eval–print loop for the account console.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a' with the remaining tokens as arguments. The
// loop exits on EOF or when the user types "exit" or "quit". A failing
// command prints its error and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("ns %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if cmd == "exit" || cmd == "quit" {
			printlnFn("Bye!")
			return
		}
		if err := dispatch(ctx, a, cmd, args); err != nil {
			printlnFn("error:", err)
		}
	}
}

func dispatch(ctx context.Context, a execIface, cmd string, args []string) error {
	switch cmd {
	case "help":
		if a.isLoggedIn() {
			printlnFn(helpSignedIn)
		} else {
			printlnFn(helpSignedOut)
		}
		return nil
	case "register":
		return a.Register(ctx)
	case "login":
		return a.Login(ctx)
	case "public":
		return a.Public(ctx)
	}

	if !a.isLoggedIn() {
		switch cmd {
		case "logout", "whoami", "show", "users", "nick", "passwd", "avatar", "candidates", "link", "unlink",
			"regen", "lowtoken", "2fa-enable", "2fa-disable", "allow-register", "adduser", "deluser":
			printlnFn("Please login first")
			return nil
		}
	}

	switch cmd {
	case "logout":
		return a.Logout(ctx)
	case "whoami":
		return a.Whoami(ctx)
	case "show":
		return a.Show(ctx, args)
	case "users":
		return a.Users(ctx)
	case "nick":
		return a.Rename(ctx)
	case "passwd":
		return a.ChangePassword(ctx)
	case "avatar":
		return a.Avatar(ctx, args)
	case "candidates":
		return a.Candidates(ctx)
	case "link":
		return a.Link(ctx, args)
	case "unlink":
		return a.Unlink(ctx, args)
	case "regen":
		return a.RegenToken(ctx)
	case "lowtoken":
		return a.LowPermToken(ctx)
	case "2fa-enable":
		return a.EnableTwoFactor(ctx)
	case "2fa-disable":
		return a.DisableTwoFactor(ctx)
	case "allow-register":
		return a.AllowRegister(ctx, args)
	case "adduser":
		return a.AddUser(ctx)
	case "deluser":
		return a.DeleteUser(ctx, args)
	default:
		printlnFn("Unknown command:", cmd)
		return nil
	}
}
