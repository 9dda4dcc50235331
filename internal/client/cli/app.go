package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/noteshelf/internal/client/client"
	"github.com/dmitrijs2005/noteshelf/internal/client/config"
	"github.com/dmitrijs2005/noteshelf/internal/client/session"
)

// sessionStore persists the signed-in state between runs.
type sessionStore interface {
	Load(ctx context.Context) (session.State, error)
	Save(ctx context.Context, st session.State) error
	Clear(ctx context.Context) error
	Close() error
}

type App struct {
	config *config.Config
	client client.Client
	store  sessionStore
	state  session.State
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	store, err := session.Open(ctx, c.SessionDir)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}

	apiClient, err := client.NewAccountClient(c.ServerEndpointAddr, c.RequestTimeout)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	a := newApp(c, apiClient, store, bufio.NewReader(os.Stdin), os.Stdout)
	if err := a.restore(ctx); err != nil {
		_ = a.close()
		return nil, err
	}
	return a, nil
}

func newApp(c *config.Config, cl client.Client, store sessionStore, reader *bufio.Reader, out io.Writer) *App {
	return &App{config: c, client: cl, store: store, reader: reader, out: out}
}

// restore picks up the token saved by an earlier login.
func (a *App) restore(ctx context.Context) error {
	st, err := a.store.Load(ctx)
	if err != nil {
		return err
	}
	a.setState(st)
	return nil
}

func (a *App) setState(st session.State) {
	a.state = st
	a.client.SetToken(st.Token)
}

func (a *App) isLoggedIn() bool {
	return a.state.SignedIn()
}

func (a *App) getStatus() string {
	if a.state.Name == "" || !a.isLoggedIn() {
		return ""
	}
	return fmt.Sprintf("(%s)", a.state.Name)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) close() error {
	cerr := a.client.Close()
	serr := a.store.Close()
	if cerr != nil {
		return cerr
	}
	return serr
}

// Run starts the REPL on the app's input and blocks until the user exits
// or input ends.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	a.printf("Welcome to noteshelf account console (type 'help' for commands)\n")
	runREPL(ctx, a, a.getStatus, a.reader)
	return nil
}
