// Package dispatch runs the todo operations against the server and refreshes the lists each
// one affects once it succeeded.
package dispatch

import (
	"context"
	"fmt"

	"github.com/matt-steen/todo-relay/pkg/todo"
	"github.com/rs/zerolog/log"
)

// Remote is the server side of the operations.
type Remote interface {
	Add(ctx context.Context, message, description, sendTo, postID string) error
	Remove(ctx context.Context, id string) error
	Complete(ctx context.Context, id string) error
	Accept(ctx context.Context, id string) error
	Bump(ctx context.Context, id string) error
	Edit(ctx context.Context, id, message, description string) error
	ChangeAssignment(ctx context.Context, id, sendTo string) error
}

// Refresher reloads lists into the local store.
type Refresher interface {
	Refresh(ctx context.Context, lists ...todo.ListName) error
}

// Dispatcher runs operations and their follow up refreshes.
type Dispatcher struct {
	remote    Remote
	refresher Refresher
}

// New creates a Dispatcher.
func New(remote Remote, refresher Refresher) *Dispatcher {
	return &Dispatcher{remote: remote, refresher: refresher}
}

// run calls op and, when it succeeded, refreshes lists. A failed refresh is logged only: the
// operation itself went through and the next push event will bring the lists up to date.
func (d *Dispatcher) run(ctx context.Context, name string, op func() error, lists ...todo.ListName) error {
	if err := op(); err != nil {
		return fmt.Errorf("error running %s: %w", name, err)
	}

	if len(lists) == 0 {
		return nil
	}

	if err := d.refresher.Refresh(ctx, lists...); err != nil {
		log.Warn().Err(err).Str("operation", name).Msg("error refreshing lists")
	}

	return nil
}

// Add creates a todo, sent to sendTo when it is not empty.
func (d *Dispatcher) Add(ctx context.Context, message, description, sendTo, postID string) error {
	lists := []todo.ListName{todo.ListMy}
	if sendTo != "" {
		lists = append(lists, todo.ListOut)
	}

	return d.run(ctx, "add", func() error {
		return d.remote.Add(ctx, message, description, sendTo, postID)
	}, lists...)
}

func (d *Dispatcher) Remove(ctx context.Context, id string) error {
	return d.run(ctx, "remove", func() error {
		return d.remote.Remove(ctx, id)
	}, todo.ListMy, todo.ListIn, todo.ListOut)
}

func (d *Dispatcher) Complete(ctx context.Context, id string) error {
	return d.run(ctx, "complete", func() error {
		return d.remote.Complete(ctx, id)
	}, todo.ListMy, todo.ListIn)
}

func (d *Dispatcher) Accept(ctx context.Context, id string) error {
	return d.run(ctx, "accept", func() error {
		return d.remote.Accept(ctx, id)
	}, todo.ListIn, todo.ListMy)
}

func (d *Dispatcher) Bump(ctx context.Context, id string) error {
	return d.run(ctx, "bump", func() error {
		return d.remote.Bump(ctx, id)
	}, todo.ListOut)
}

// Edit changes the text of a todo. The server pushes the refresh.
func (d *Dispatcher) Edit(ctx context.Context, id, message, description string) error {
	return d.run(ctx, "edit", func() error {
		return d.remote.Edit(ctx, id, message, description)
	})
}

// ChangeAssignee sends a todo to another user. The server pushes the refresh.
func (d *Dispatcher) ChangeAssignee(ctx context.Context, id, user string) error {
	return d.run(ctx, "change assignment", func() error {
		return d.remote.ChangeAssignment(ctx, id, user)
	})
}

// UndoRemove recreates a removed item. An item removed from the outgoing list is sent to the
// same user again; anything else comes back in the own list.
func (d *Dispatcher) UndoRemove(ctx context.Context, viewed todo.ListName, item todo.Item) error {
	sendTo := ""
	if viewed == todo.ListOut {
		sendTo = item.User
	}

	return d.Add(ctx, item.Message, item.Description, sendTo, item.PostID)
}
