package controller

import (
	"context"

	"github.com/gdamore/tcell/v2"
	"github.com/matt-steen/todo-relay/pkg/feedback"
	"github.com/matt-steen/todo-relay/pkg/syncer"
	"github.com/matt-steen/todo-relay/pkg/todo"
	"github.com/rs/zerolog/log"
)

func (c *Controller) initEvents() {
	c.events = map[tcell.Key]KeyEvent{}
	c.formEvents = map[tcell.Key]KeyEvent{}

	c.initShowEvents(c.events)
	c.initTodoEvents(c.events)
	c.initExitEvent(c.events)

	c.formEvents[tcell.KeyEscape] = KeyEvent{
		Description: "Cancel",
		Action: func(key *tcell.EventKey) *tcell.EventKey {
			c.store.SetEditing("")
			c.showList(c.selector.OpenList())

			return nil
		},
	}
}

func (c *Controller) getExitAction() func(key *tcell.EventKey) *tcell.EventKey {
	return func(key *tcell.EventKey) *tcell.EventKey {
		log.Info().Msg("terminating application")

		c.app.Stop()

		return nil
	}
}

func (c *Controller) initExitEvent(events map[tcell.Key]KeyEvent) {
	events[KeyQ] = KeyEvent{
		Description: "Exit",
		Action:      c.getExitAction(),
	}
}

func (c *Controller) getShowAction(list todo.ListName) func(key *tcell.EventKey) *tcell.EventKey {
	return func(key *tcell.EventKey) *tcell.EventKey {
		c.showList(list)

		return nil
	}
}

func (c *Controller) initShowEvents(events map[tcell.Key]KeyEvent) {
	events[KeyShiftM] = KeyEvent{
		Description: "Show My Todos",
		Action:      c.getShowAction(todo.ListMy),
	}

	events[KeyShiftI] = KeyEvent{
		Description: "Show Incoming Todos",
		Action:      c.getShowAction(todo.ListIn),
	}

	events[KeyShiftO] = KeyEvent{
		Description: "Show Sent Todos",
		Action:      c.getShowAction(todo.ListOut),
	}
}

// itemAction wraps an action on the selected todo. It does nothing when no todo is selected
// or when allowed says the action is not available from the open list.
func (c *Controller) itemAction(allowed func(todo.Actions) bool, action func(item todo.Item)) func(*tcell.EventKey) *tcell.EventKey {
	return func(key *tcell.EventKey) *tcell.EventKey {
		if c.selectedItem == nil {
			return nil
		}

		item := *c.selectedItem

		if allowed != nil && !allowed(todo.Capabilities(c.selector.OpenList(), item)) {
			log.Debug().Str("item", item.ID).Str("list", string(c.selector.OpenList())).Msg("action not available")

			return nil
		}

		action(item)

		return nil
	}
}

func (c *Controller) initTodoEvents(events map[tcell.Key]KeyEvent) {
	events[KeyN] = KeyEvent{
		Description: "New Todo",
		Action: func(key *tcell.EventKey) *tcell.EventKey {
			c.store.SetEditing("")
			c.switchToForm(nil)

			return nil
		},
	}

	events[KeyE] = KeyEvent{
		Description: "Edit Todo",
		Action: c.itemAction(nil, func(item todo.Item) {
			c.store.SetEditing(item.ID)
			c.switchToForm(&item)
		}),
	}

	events[KeyS] = KeyEvent{
		Description: "Assign to...",
		Action: c.itemAction(nil, func(item todo.Item) {
			c.switchToAssigneeForm()
		}),
	}

	events[KeyC] = KeyEvent{
		Description: "Complete",
		Action: c.itemAction(func(a todo.Actions) bool { return a.Complete }, func(item todo.Item) {
			c.run("complete", feedback.IconCheck, "Todo completed", nil, func(ctx context.Context) error {
				return c.dispatcher.Complete(ctx, item.ID)
			})
		}),
	}

	events[KeyD] = KeyEvent{
		Description: "Delete",
		Action: c.itemAction(func(a todo.Actions) bool { return a.Remove }, func(item todo.Item) {
			list := c.selector.OpenList()
			undo := func(ctx context.Context) error {
				return c.dispatcher.UndoRemove(ctx, list, item)
			}

			c.run("remove", feedback.IconTrash, "Todo deleted", undo, func(ctx context.Context) error {
				return c.dispatcher.Remove(ctx, item.ID)
			})
		}),
	}

	events[KeyA] = KeyEvent{
		Description: "Accept",
		Action: c.itemAction(func(a todo.Actions) bool { return a.Accept }, func(item todo.Item) {
			c.run("accept", feedback.IconCheck, "Todo accepted", nil, func(ctx context.Context) error {
				return c.dispatcher.Accept(ctx, item.ID)
			})
		}),
	}

	events[KeyB] = KeyEvent{
		Description: "Bump",
		Action: c.itemAction(func(a todo.Actions) bool { return a.Bump }, func(item todo.Item) {
			c.run("bump", feedback.IconInfo, "Todo bumped", nil, func(ctx context.Context) error {
				return c.dispatcher.Bump(ctx, item.ID)
			})
		}),
	}

	events[KeyU] = KeyEvent{
		Description: "Undo",
		Action: func(key *tcell.EventKey) *tcell.EventKey {
			go func() {
				if err := c.toasts.Undo(c.ctx); err != nil {
					log.Warn().Err(err).Msg("error undoing")
					c.toasts.Show(feedback.IconError, "Unable to undo: "+err.Error(), nil)
				}
			}()

			return nil
		},
	}

	events[KeyR] = KeyEvent{
		Description: "Refresh",
		Action: func(key *tcell.EventKey) *tcell.EventKey {
			c.run("refresh", "", "", nil, func(ctx context.Context) error {
				return c.syncer.Handle(ctx, syncer.Reconnect{})
			})

			return nil
		},
	}
}
