package main

import (
	"context"
	"errors"

	"github.com/matt-steen/todo-relay/pkg/client"
	"github.com/matt-steen/todo-relay/pkg/controller"
	"github.com/matt-steen/todo-relay/pkg/dispatch"
	"github.com/matt-steen/todo-relay/pkg/feedback"
	"github.com/matt-steen/todo-relay/pkg/store"
	"github.com/matt-steen/todo-relay/pkg/syncer"
	"github.com/matt-steen/todo-relay/pkg/todo"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const eventBuffer = 64

func panelCmd() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "panel",
		Short: "Open the todo panel",
		RunE: func(cmd *cobra.Command, args []string) error {
			if user != "" {
				cfg.Client.User = user
			}

			return runPanel(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "user name (overrides client.user)")

	return cmd
}

func runPanel(ctx context.Context) error {
	if cfg.Client.User == "" {
		return errors.New("no user configured: set client.user or pass --user")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log.Info().Str("user", cfg.Client.User).Str("url", cfg.Client.URL).Msg("starting panel...")

	c := client.NewClient(cfg.Client.URL, cfg.Client.User)
	s := store.New()
	refresher := store.NewRefresher(s, c)
	dispatcher := dispatch.New(c, refresher)
	syncCtrl := syncer.NewController(refresher, s, nil, cfg.Client.StaleAfter)
	toasts := feedback.NewManager(cfg.Client.ToastTimeout)

	ctrl, err := controller.NewController(ctx, cfg.Client.User, s, dispatcher, syncCtrl, toasts)
	if err != nil {
		return err
	}

	events := make(chan syncer.Event, eventBuffer)
	emit := func(event syncer.Event) {
		select {
		case events <- event:
		case <-ctx.Done():
		}
	}

	sub := c.Subscriber()
	sub.OnMessage = func(msg todo.PushMessage) {
		event, err := syncer.FromPush(msg)
		if err != nil {
			log.Warn().Err(err).Msg("ignoring push message")

			return
		}

		emit(event)
	}
	sub.OnReconnect = func() { emit(syncer.Reconnect{}) }

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return sub.Run(gctx) })
	g.Go(func() error { return syncCtrl.Run(gctx, events) })
	g.Go(func() error {
		if config, err := c.Config(gctx); err != nil {
			log.Warn().Err(err).Msg("unable to load client config")
		} else {
			s.SetConfig(config)
		}

		if err := c.Telemetry(gctx, "panel_open", map[string]interface{}{"list": string(todo.ListMy)}); err != nil {
			log.Debug().Err(err).Msg("unable to send telemetry")
		}

		if err := refresher.RefreshAll(gctx, true); err != nil {
			log.Warn().Err(err).Msg("initial refresh failed")
			toasts.Show(feedback.IconError, "Unable to load todos: "+err.Error(), nil)
		}

		return nil
	})

	runErr := ctrl.Go()

	cancel()

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Warn().Err(err).Msg("background task failed")
	}

	return runErr
}
