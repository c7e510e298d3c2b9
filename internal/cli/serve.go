package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/soyeahso/botway/internal/api"
	"github.com/soyeahso/botway/internal/app"
	"github.com/soyeahso/botway/internal/config"
	"github.com/soyeahso/botway/internal/devtools"
	"github.com/soyeahso/botway/internal/logging"
	"github.com/soyeahso/botway/internal/plugin"
	"github.com/soyeahso/botway/internal/store"
	"github.com/soyeahso/botway/internal/stream"
	"github.com/soyeahso/botway/internal/transport"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot with an echo handler",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			log := logging.New(nil, cfg.Logging.Level)
			return serve(cmd.Context(), cfg, log)
		},
	}
}

func serve(parent context.Context, cfg config.Config, log *logging.Logger) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var storage store.Storage
	switch cfg.Storage.Driver {
	case "sqlite":
		db, err := store.OpenSQLite(cfg.Storage.Path, log)
		if err != nil {
			return err
		}
		defer db.Close()
		storage = db
	default:
		storage = store.NewMemory()
	}

	client := api.NewRESTClient(api.RESTClientConfig{
		ClientID:        cfg.App.ClientID,
		ClientSecret:    cfg.App.ClientSecret,
		AuthTokenURL:    cfg.App.AuthTokenURL,
		TokenServiceURL: cfg.App.TokenServiceURL,
	}, log)

	bot, err := app.New(
		app.WithLogger(log),
		app.WithStorage(storage),
		app.WithClient(client),
		app.WithAppID(cfg.App.ID),
		app.WithConnectionName(cfg.App.ConnectionName),
	)
	if err != nil {
		return err
	}

	if err := bot.AddPlugin(plugin.NewHTTPSender(client, stream.Config{})); err != nil {
		return err
	}
	if cfg.DevTools.Enabled {
		if err := bot.AddPlugin(devtools.New(cfg.DevTools.Port)); err != nil {
			return err
		}
	}

	bot.OnMessage("*", func(c *app.Context) (any, error) {
		if _, err := c.Reply("you said: " + c.Activity.Text); err != nil {
			return nil, err
		}
		return c.Next()
	})

	if err := bot.Start(ctx); err != nil {
		return err
	}
	defer bot.Close()

	return transport.New(cfg.Server, bot, log).Start(ctx)
}
