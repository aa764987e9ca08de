package cli

import (
	"bufio"
	"context"
	"log/slog"
	"os"

	_ "modernc.org/sqlite"

	"secureshare/internal/client/api"
	"secureshare/internal/client/config"
	"secureshare/internal/client/session"
	"secureshare/internal/client/vault"
	"secureshare/internal/logging"
)

// App wires the API client, the session manager and the vault together and
// drives them from an interactive prompt.
type App struct {
	config  *config.Config
	client  *api.HTTPClient
	session *session.Manager
	vault   *vault.Vault
	repos   *api.Repositories
	reader  *bufio.Reader
	log     logging.Logger
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	repos, err := api.InitDatabase(ctx, c.DatabaseDSN)
	if err != nil {
		logger.Error(ctx, "initializing local database", "error", err)
		return nil, err
	}

	// The 401 hook needs the manager, the manager needs the client. The
	// closure reads the variable after both exist.
	var mgr *session.Manager
	client := api.NewHTTPClient(c.ServerURL, func() {
		if mgr != nil {
			mgr.ExpireSession()
		}
	})

	store := session.NewMetadataStore(repos.Metadata)
	mgr = session.NewManager(client, store, session.NewRealClock(), logger)

	return &App{
		config:  c,
		client:  client,
		session: mgr,
		vault:   vault.New(client, mgr, logger),
		repos:   repos,
		reader:  bufio.NewReader(os.Stdin),
		log:     logger,
	}, nil
}

func (a *App) isLoggedIn() bool {
	return a.session.IsAuthenticated()
}

func (a *App) Run(ctx context.Context) {
	defer a.client.Close()
	defer a.repos.DB.Close()

	// Pick a previous session back up if one was persisted.
	if err := a.session.Restore(ctx); err != nil {
		a.log.Warn(ctx, "restoring session", "error", err)
	}

	a.Root(ctx)
}
