// ABOUTME: Entry point for the leadbook prospect CRM
// ABOUTME: Routes to the HTTP server, TUI, MCP server or CLI commands based on arguments
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/harperreed/leadbook/blobs"
	"github.com/harperreed/leadbook/cli"
	"github.com/harperreed/leadbook/client"
	"github.com/harperreed/leadbook/config"
	"github.com/harperreed/leadbook/db"
	"github.com/harperreed/leadbook/logging"
	"github.com/harperreed/leadbook/people"
)

const version = "0.1.0"

// app holds what every command needs. Stores are opened lazily per command.
type app struct {
	cfg    *config.Config
	logger *log.Logger

	database *sql.DB
	blobs    *blobs.Store
}

func main() {
	// Global flags
	showVersion := flag.Bool("version", false, "Show version and exit")
	dbPath := flag.String("db-path", "", "Database path (default: ~/.local/share/leadbook/leadbook.db)")
	initOnly := flag.Bool("init", false, "Initialize database and exit")
	flag.Usage = printUsage

	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("leadbook version %s\n", version)
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *dbPath != "" {
		cfg.Storage.DBPath = *dbPath
	}

	a := &app{cfg: cfg, logger: logging.New(cfg.LogLevel, os.Stderr)}
	defer a.close()
	for _, w := range cfg.Warnings {
		a.logger.Warn(w)
	}

	if *initOnly {
		if _, err := a.openDB(); err != nil {
			a.logger.Fatal("failed to open database", "err", err)
		}
		fmt.Printf("Database initialized at %s\n", cfg.Storage.DBPath)
		return
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.run(ctx, args[0], args[1:]); err != nil {
		a.close()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "serve":
		svc, err := a.service(true)
		if err != nil {
			return err
		}
		return cli.ServeCommand(ctx, a.cfg, svc, a.blobs, a.logger, args)

	case "tui":
		store, err := a.store(true)
		if err != nil {
			return err
		}
		return cli.TUICommand(ctx, store, a.logger)

	case "mcp":
		store, err := a.store(true)
		if err != nil {
			return err
		}
		return cli.MCPCommand(ctx, store, version, a.logger)

	case "people":
		return a.runPeople(ctx, args)

	case "dashboard":
		store, err := a.store(false)
		if err != nil {
			return err
		}
		return cli.DashboardCommand(ctx, store, os.Stdout, args)

	case "viz":
		if len(args) == 0 {
			return fmt.Errorf("viz requires a subcommand (pipeline or network)")
		}
		store, err := a.store(false)
		if err != nil {
			return err
		}
		switch args[0] {
		case "pipeline":
			return cli.VizPipelineCommand(ctx, store, os.Stdout, args[1:])
		case "network":
			return cli.VizNetworkCommand(ctx, store, os.Stdout, args[1:])
		}
		return fmt.Errorf("unknown viz command: %s", args[0])

	case "import":
		if len(args) == 0 || args[0] != "google" {
			return fmt.Errorf("import requires a source (google)")
		}
		if len(args) > 1 && args[1] == "auth" {
			return cli.ImportAuthCommand(ctx, a.cfg.Google, args[2:])
		}
		svc, err := a.service(true)
		if err != nil {
			return err
		}
		return cli.ImportGoogleCommand(ctx, a.cfg.Google, a.database, svc, a.logger, os.Stdout)

	case "images":
		if len(args) == 0 || args[0] != "prune" {
			return fmt.Errorf("images requires a subcommand (prune)")
		}
		svc, err := a.service(true)
		if err != nil {
			return err
		}
		return cli.PruneImagesCommand(ctx, svc, os.Stdout)
	}

	printUsage()
	return fmt.Errorf("unknown command: %s", command)
}

func (a *app) runPeople(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("people requires a subcommand")
	}
	sub, rest := args[0], args[1:]

	// Listing never touches images, so it can run next to a live server.
	store, err := a.store(sub != "list")
	if err != nil {
		return err
	}

	switch sub {
	case "add":
		return cli.AddPersonCommand(ctx, store, os.Stdout, rest)
	case "list":
		return cli.ListPeopleCommand(ctx, store, os.Stdout, rest)
	case "update":
		return cli.UpdatePersonCommand(ctx, store, os.Stdout, rest)
	case "delete":
		return cli.DeletePersonCommand(ctx, store, os.Stdout, rest)
	case "advance":
		return cli.AdvancePersonCommand(ctx, store, os.Stdout, rest)
	case "engage":
		return cli.EngageCommand(ctx, store, os.Stdout, rest)
	}
	return fmt.Errorf("unknown people command: %s", sub)
}

// store returns the remote API client when LEADBOOK_API_URL is set, otherwise
// the local service.
func (a *app) store(withImages bool) (people.Store, error) {
	if a.cfg.Client.APIURL != "" {
		a.logger.Debug("using remote store", "url", a.cfg.Client.APIURL)
		return client.New(a.cfg.Client.APIURL, a.cfg.Client.Timeout, a.logger), nil
	}
	return a.service(withImages)
}

// service opens the local database and, when asked, the image store.
// Badger locks its directory, so commands that leave images alone skip it.
func (a *app) service(withImages bool) (*people.Service, error) {
	database, err := a.openDB()
	if err != nil {
		return nil, err
	}

	var images people.Blobs
	if withImages {
		store, err := blobs.Open(blobs.Config{
			Dir:        a.cfg.Storage.BlobPath,
			PublicURL:  a.cfg.Server.PublicURL,
			HTTPClient: &http.Client{Timeout: a.cfg.Client.Timeout},
			Logger:     a.logger,
		})
		if err != nil {
			return nil, err
		}
		a.blobs = store
		images = store
	}

	return people.NewService(database, images, a.logger), nil
}

func (a *app) openDB() (*sql.DB, error) {
	if a.database != nil {
		return a.database, nil
	}
	database, err := db.OpenDatabase(a.cfg.Storage.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	a.logger.Debug("database opened", "path", a.cfg.Storage.DBPath)
	a.database = database
	return database, nil
}

func (a *app) close() {
	if a.blobs != nil {
		_ = a.blobs.Close()
		a.blobs = nil
	}
	if a.database != nil {
		_ = a.database.Close()
		a.database = nil
	}
}

func printUsage() {
	fmt.Printf(`leadbook v%s - prospect CRM with outreach pipeline

USAGE:
  leadbook [global flags] <command> [subcommand] [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --db-path <path>       Database path (default: ~/.local/share/leadbook/leadbook.db)
  --init                 Initialize database and exit

COMMANDS:
  serve                  Run the webhook, people API and image server
    --port <port>            Port (default: $PORT or 8080)
  tui                    Interactive prospect table (uses $LEADBOOK_API_URL when set)
  mcp                    Start MCP server on stdio

  people add [flags]     Add a person
    --name, --url, --image, --headline, --about, --position, --company,
    --location, --email, --phone, --status, --degree, --engagement,
    --connected, --website (repeatable)
  people list            List people
    --query <text>           Search text
    --status <status>        Filter by pipeline status
    --limit <n>              Max results (default: 50)
  people update [flags] <id>   Update only the given fields (flags before the ID)
  people delete <id>           Delete a person and its stored image
  people advance [--cancel] <id>   Move to the next stage (or Cancelled)
  people engage [--by n] <id>      Adjust the engagement score

  dashboard              Text pipeline dashboard
  viz pipeline           Pipeline graph
  viz network            Network graph by company and degree
    --output <file>          .svg, .png or .jpg (default: DOT to stdout)

  import google auth     Authorize Google contacts access
  import google          Import Google contacts
  images prune           Delete stored images no record uses

ENVIRONMENT:
  LEADBOOK_DB_PATH, LEADBOOK_BLOB_PATH, PORT, PUBLIC_URL, AUTH_X_TOKEN, LOG_LEVEL,
  LEADBOOK_API_URL, HTTP_TIMEOUT, GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET, GOOGLE_TOKEN_FILE

`, version)
}
