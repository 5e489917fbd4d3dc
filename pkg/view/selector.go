// Package view derives what the panel shows from the store.
package view

import (
	"fmt"
	"sync"

	"github.com/matt-steen/todo-relay/pkg/store"
	"github.com/matt-steen/todo-relay/pkg/todo"
)

// Row is one todo as rendered in the open list.
type Row struct {
	Item    todo.Item
	Actions todo.Actions
	// Created is "Created", "Sent to U" or "Received from U".
	Created string
	// Status describes the counterparty copy, e.g. "In Inbox on position 2.".
	Status  string
	Editing bool
}

// Counts holds the number of todos per list.
type Counts struct {
	My  int
	In  int
	Out int
}

// Selector keeps track of the list the user is looking at.
type Selector struct {
	mu    sync.Mutex
	store *store.Store
	open  todo.ListName
}

// NewSelector creates a Selector showing the own list.
func NewSelector(s *store.Store) *Selector {
	return &Selector{store: s, open: todo.ListMy}
}

// Open switches the displayed list.
func (s *Selector) Open(list todo.ListName) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.open = list
}

// OpenList returns the displayed list.
func (s *Selector) OpenList() todo.ListName {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.open
}

// Counts returns the number of todos in each list.
func (s *Selector) Counts() Counts {
	lists := s.store.Snapshot()

	return Counts{My: len(lists.My), In: len(lists.In), Out: len(lists.Out)}
}

// Rows returns the rows of the open list.
func (s *Selector) Rows() []Row {
	return s.RowsOf(s.OpenList())
}

// RowsOf returns the rows of any list.
func (s *Selector) RowsOf(list todo.ListName) []Row {
	items := s.store.List(list)
	editing := s.store.Editing()

	rows := make([]Row, 0, len(items))

	for _, item := range items {
		created, status := subtitles(item)

		rows = append(rows, Row{
			Item:    item,
			Actions: todo.Capabilities(list, item),
			Created: created,
			Status:  status,
			Editing: item.ID != "" && item.ID == editing,
		})
	}

	return rows
}

// TabTitle is the label of the tab of a list, with its counts.
func (s *Selector) TabTitle(list todo.ListName) string {
	counts := s.Counts()

	switch list {
	case todo.ListOut:
		if counts.Out == 0 {
			return "Sent"
		}

		return fmt.Sprintf("Sent (%d)", counts.Out)
	case todo.ListIn:
		return fmt.Sprintf("Incoming Todos (%d)", counts.In)
	}

	title := "Todos"
	if counts.My > 0 {
		title += fmt.Sprintf(" (%d)", counts.My)
	}

	if counts.In > 0 {
		title += fmt.Sprintf(" (%d received)", counts.In)
	}

	return title
}

// Heading is shown above the rows of a list.
func Heading(list todo.ListName) string {
	switch list {
	case todo.ListIn:
		return "Incoming Todos"
	case todo.ListOut:
		return "Sent Todos"
	}

	return "My Todos"
}

// HideTeamSidebar reports whether the team sidebar button should be hidden.
func (s *Selector) HideTeamSidebar() bool {
	return s.store.Config().HideTeamSidebar
}

func subtitles(item todo.Item) (string, string) {
	switch item.Origin {
	case todo.OriginIn:
		return "Sent to " + item.User, fmt.Sprintf("In Inbox on position %d.", item.ForeignPosition+1)
	case todo.OriginOut:
		return "Received from " + item.User, ""
	}

	// without a counterparty copy the direction of a share is unknown
	return "Created " + item.CreatedAt().Format("January 2, 2006 15:04"), ""
}
