// Package syncer turns push events, reconnects and user activity into list refreshes.
package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/matt-steen/todo-relay/pkg/todo"
	"github.com/rs/zerolog/log"
)

// Refresher reloads lists into the local store.
type Refresher interface {
	Refresh(ctx context.Context, lists ...todo.ListName) error
	RefreshAll(ctx context.Context, reminder bool) error
}

// ConfigStore keeps the client configuration.
type ConfigStore interface {
	SetConfig(config todo.ClientConfig)
}

// Controller is the single entry point for everything that can make the local lists stale.
type Controller struct {
	refresher Refresher
	config    ConfigStore
	activity  *ActivityTracker

	// OnReminder shows the daily reminder to the user.
	OnReminder func(message string)
}

// NewController creates a Controller. The activity tracker uses clock, or the wall clock if
// nil, and considers the lists stale after staleAfter, or DefaultStaleAfter if zero.
func NewController(refresher Refresher, config ConfigStore, clock func() time.Time, staleAfter time.Duration) *Controller {
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}

	return &Controller{
		refresher:  refresher,
		config:     config,
		activity:   NewActivityTracker(clock, staleAfter),
		OnReminder: func(string) {},
	}
}

// Handle applies one event.
func (c *Controller) Handle(ctx context.Context, event Event) error {
	switch e := event.(type) {
	case Refresh:
		lists := canonicalLists(e.Lists)
		if len(lists) == 0 {
			return nil
		}

		return c.refresher.Refresh(ctx, lists...)
	case Reconnect:
		return c.refresher.RefreshAll(ctx, false)
	case ConfigUpdate:
		c.config.SetConfig(todo.ClientConfig{HideTeamSidebar: e.HideTeamSidebar})
	case Reminder:
		c.OnReminder(e.Message)
	default:
		return fmt.Errorf("unsupported event %T", event)
	}

	return nil
}

// Activity records a user interaction. After a long idle period every list is reloaded and
// the server is asked for the daily reminder.
func (c *Controller) Activity(ctx context.Context) error {
	if !c.activity.Touch() {
		return nil
	}

	log.Debug().Msg("lists are stale, refreshing")

	return c.refresher.RefreshAll(ctx, true)
}

// Run handles events until the channel is closed or ctx is done. Errors are logged.
func (c *Controller) Run(ctx context.Context, events <-chan Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-events:
			if !ok {
				return nil
			}

			if err := c.Handle(ctx, event); err != nil {
				log.Warn().Err(err).Msgf("error handling %T", event)
			}
		}
	}
}

func canonicalLists(names []string) []todo.ListName {
	lists := make([]todo.ListName, 0, len(names))
	seen := map[todo.ListName]bool{}

	for _, name := range names {
		list, err := todo.ParseListName(name)
		if err != nil {
			log.Warn().Err(err).Msg("skipping list in refresh event")

			continue
		}

		if seen[list] {
			continue
		}

		seen[list] = true
		lists = append(lists, list)
	}

	return lists
}
