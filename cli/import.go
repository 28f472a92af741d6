// ABOUTME: Google contacts import CLI commands
// ABOUTME: Handles the OAuth browser flow and runs the People API import
package cli

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/term"
	"google.golang.org/api/option"

	"github.com/harperreed/leadbook/config"
	"github.com/harperreed/leadbook/importer"
	"github.com/harperreed/leadbook/people"
)

const callbackAddr = "127.0.0.1:8085"

// ImportAuthCommand runs the OAuth consent flow and stores the token.
func ImportAuthCommand(ctx context.Context, cfg config.GoogleConfig, args []string) error {
	fs := flag.NewFlagSet("import google auth", flag.ContinueOnError)
	noBrowser := fs.Bool("no-browser", false, "Print the consent URL instead of opening a browser")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if cfg.ClientID == "" {
		return fmt.Errorf("google OAuth client not configured. Set GOOGLE_CLIENT_ID")
	}
	if cfg.ClientSecret == "" {
		secret, err := promptSecret("Google client secret: ")
		if err != nil {
			return err
		}
		cfg.ClientSecret = secret
	}

	oauthCfg := importer.NewOAuthConfig(cfg, "http://"+callbackAddr+"/oauth/callback")
	state := uuid.NewString()

	tokens := make(chan *oauth2.Token, 1)
	errs := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/callback", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			errs <- fmt.Errorf("OAuth state mismatch")
			return
		}
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			errs <- fmt.Errorf("no authorization code received")
			return
		}

		token, err := oauthCfg.Exchange(r.Context(), code)
		if err != nil {
			http.Error(w, "token exchange failed", http.StatusBadGateway)
			errs <- fmt.Errorf("failed to exchange code: %w", err)
			return
		}

		tokens <- token
		_, _ = fmt.Fprintf(w, "Authorization successful! You can close this window.")
	})

	listener, err := net.Listen("tcp", callbackAddr)
	if err != nil {
		return fmt.Errorf("failed to listen for OAuth callback: %w", err)
	}
	server := &http.Server{Handler: mux}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()
	defer func() { _ = server.Shutdown(context.WithoutCancel(ctx)) }()

	authURL := oauthCfg.AuthCodeURL(state, oauth2.AccessTypeOffline)
	fmt.Printf("\nIf your browser doesn't open, visit this URL:\n%s\n\n", authURL)
	if !*noBrowser {
		_ = openBrowser(authURL)
	}

	select {
	case token := <-tokens:
		if err := importer.SaveToken(cfg.TokenFile, token); err != nil {
			return fmt.Errorf("failed to save token: %w", err)
		}
		fmt.Printf("✓ Authenticated successfully\n")
		fmt.Printf("✓ Token saved to %s\n\n", cfg.TokenFile)
		fmt.Println("Run 'leadbook import google' to import contacts.")
		return nil
	case err := <-errs:
		return fmt.Errorf("OAuth flow failed: %w", err)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ImportGoogleCommand imports Google contacts into the local store.
func ImportGoogleCommand(ctx context.Context, cfg config.GoogleConfig, database *sql.DB, svc *people.Service, logger *log.Logger, w io.Writer) error {
	token, err := importer.LoadToken(cfg.TokenFile)
	if err != nil {
		return fmt.Errorf("no Google token found. Run 'leadbook import google auth' first: %w", err)
	}

	oauthCfg := importer.NewOAuthConfig(cfg, "")
	ts := oauthCfg.TokenSource(ctx, token)

	src, err := importer.NewGoogleSource(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, ts)))
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(w, "Importing Google contacts...")
	res, err := importer.New(database, svc, logger).Run(ctx, src)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	// Keep a refreshed access token for next time.
	if fresh, err := ts.Token(); err == nil && fresh.AccessToken != token.AccessToken {
		if err := importer.SaveToken(cfg.TokenFile, fresh); err != nil {
			logger.Warn("could not save refreshed token", "err", err)
		}
	}

	_, _ = fmt.Fprintf(w, "\n✓ Fetched %d contacts from Google\n", res.Fetched)
	_, _ = fmt.Fprintf(w, "  ✓ Imported %d new people\n", res.Imported)
	_, _ = fmt.Fprintf(w, "  ✓ Skipped %d already known\n", res.Skipped)
	if res.Failed > 0 {
		_, _ = fmt.Fprintf(w, "  ✗ %d contacts failed (see log)\n", res.Failed)
	}
	return nil
}

// promptSecret reads a secret from the terminal without echo.
func promptSecret(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("GOOGLE_CLIENT_SECRET is not set and stdin is not a terminal")
	}

	fmt.Print(prompt)
	secret, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read secret: %w", err)
	}
	return strings.TrimSpace(string(secret)), nil
}

// openBrowser attempts to open URL in default browser
func openBrowser(url string) error {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
		args = []string{url}
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start", url}
	default:
		cmd = "xdg-open"
		args = []string{url}
	}

	return exec.Command(cmd, args...).Start()
}
