// ABOUTME: HTTP server subcommand
// ABOUTME: Serves the webhook, the people API and stored profile images
package cli

import (
	"context"
	"flag"

	"github.com/charmbracelet/log"

	"github.com/harperreed/leadbook/config"
	"github.com/harperreed/leadbook/logging"
	"github.com/harperreed/leadbook/people"
	"github.com/harperreed/leadbook/web"
)

// ServeCommand runs the HTTP server until ctx is cancelled.
func ServeCommand(ctx context.Context, cfg *config.Config, store people.Store, images web.ImageSource, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	port := fs.String("port", cfg.Server.Port, "Port to listen on")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if cfg.Server.WebhookToken == "" {
		logger.Warn("AUTH_X_TOKEN is not set; webhook posts will be rejected")
	} else {
		logger.Info("webhook enabled", "token", logging.Mask(cfg.Server.WebhookToken))
	}

	server := web.NewServer(web.Options{
		Store:        store,
		Images:       images,
		WebhookToken: cfg.Server.WebhookToken,
		Logger:       logger,
	})
	return server.Start(ctx, *port)
}
