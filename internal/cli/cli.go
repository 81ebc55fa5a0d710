// Package cli implements the clipstream subcommands. Each command wires
// the components it needs, runs, and renders notifications published on
// the hub.
package cli

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	clipstream "github.com/kvasir-media/clipstream"
	"github.com/kvasir-media/clipstream/internal/api"
	"github.com/kvasir-media/clipstream/internal/auth"
	"github.com/kvasir-media/clipstream/internal/config"
	"github.com/kvasir-media/clipstream/internal/db"
	"github.com/kvasir-media/clipstream/internal/notify"
)

const usage = `usage: clipstream <command> [flags]

commands:
  login       authenticate with the platform
  register    create an account
  logout      clear the stored session
  whoami      show the current session
  list        browse the public catalog
  my          list your own videos with channel statistics
  watch       show one video and record a view
  like        like or unlike a video
  upload      upload a video
  history     show locally recorded uploads
`

// env carries the shared wiring every command starts from.
type env struct {
	cfg      *config.Config
	client   *api.Client
	database *sql.DB
	sessions *auth.Manager
	hub      *notify.Hub
}

// Run dispatches a subcommand. The returned error is already user-facing.
func Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("no command given")
	}

	database, err := db.Open(cfg.DataDir)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.Migrate(database, clipstream.MigrationFS); err != nil {
		return err
	}

	client := api.NewClient(cfg.BaseURL, cfg.RequestTimeout, cfg.UploadTimeout)
	sessions, err := auth.NewManager(client, database, client)
	if err != nil {
		return err
	}

	e := &env{
		cfg:      cfg,
		client:   client,
		database: database,
		sessions: sessions,
		hub:      notify.New(),
	}

	stop := renderEvents(e.hub)
	defer stop()

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "login":
		return cmdLogin(ctx, e, rest)
	case "register":
		return cmdRegister(ctx, e, rest)
	case "logout":
		return cmdLogout(e)
	case "whoami":
		return cmdWhoami(e)
	case "list":
		return cmdList(ctx, e, rest)
	case "my":
		return cmdMy(ctx, e, rest)
	case "watch":
		return cmdWatch(ctx, e, rest)
	case "like":
		return cmdLike(ctx, e, rest)
	case "upload":
		return cmdUpload(ctx, e, rest)
	case "history":
		return cmdHistory(e, rest)
	case "help", "-h", "--help":
		fmt.Print(usage)
		return nil
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// requireSession fails commands that need authentication.
func requireSession(e *env) error {
	if e.sessions.Current() == nil {
		return fmt.Errorf("not logged in; run `clipstream login` first")
	}
	return nil
}
