package db

import (
	"errors"

	"github.com/matt-steen/todo-relay/pkg/todo"
)

// These errors are returned when a request does not match the stored state.
var (
	ErrNotFound   = errors.New("todo not found")
	ErrNotOwner   = errors.New("todo is not owned by the user")
	ErrNotPending = errors.New("todo is not pending")
)

// record is a row of the item table. Every user involved in a send holds their own record.
type record struct {
	id          string
	message     string
	description string
	postID      string
	createAt    int64
}

// ref places a record in one of a user's lists.
// Rank is maintained within each list. It starts at 0 and increments by 1.
// When a ref moves to a different list, it is appended, so it has the highest rank there.
type ref struct {
	userID        string
	itemID        string
	list          todo.ListName
	rank          int
	foreignUserID string
	foreignItemID string
}

func (r *ref) hasForeign() bool {
	return r.foreignUserID != "" && r.foreignItemID != ""
}

// Change describes the effect of a mutation: which lists of which users need a refresh.
type Change struct {
	Message      string
	Counterparty string
	Refresh      map[string][]todo.ListName
}

func newChange() *Change {
	return &Change{Refresh: map[string][]todo.ListName{}}
}

func (c *Change) touch(userID string, lists ...todo.ListName) {
	for _, list := range lists {
		found := false

		for _, l := range c.Refresh[userID] {
			if l == list {
				found = true

				break
			}
		}

		if !found {
			c.Refresh[userID] = append(c.Refresh[userID], list)
		}
	}
}
