package store

import (
	"sync"

	"github.com/matt-steen/todo-relay/pkg/todo"
)

// Listener is notified after the store changed. list is empty when only the auxiliary state
// (config) changed.
type Listener func(list todo.ListName)

type listState struct {
	items []todo.Item
	// issued is the last ticket handed out, applied the ticket of the data in items.
	issued   uint64
	applied  uint64
	inflight int
}

// Store caches the three lists of the current user. Lists only change through Replace.
type Store struct {
	mu        sync.Mutex
	lists     map[todo.ListName]*listState
	assignee  string
	editing   string
	config    todo.ClientConfig
	listeners []Listener
}

// New creates a Store with three empty lists.
func New() *Store {
	s := &Store{lists: map[todo.ListName]*listState{}}

	for _, list := range todo.AllLists {
		s.lists[list] = &listState{items: []todo.Item{}}
	}

	return s
}

// Begin hands out the ticket for a fetch of list that is about to be issued.
func (s *Store) Begin(list todo.ListName) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.lists[list]
	state.issued++
	state.inflight++

	return state.issued
}

// Replace swaps the content of list if seq is newer than the data it holds and reports
// whether it did. A fetch that was issued before the current data is dropped.
func (s *Store) Replace(list todo.ListName, items []todo.Item, seq uint64) bool {
	s.mu.Lock()

	state := s.lists[list]
	if state.inflight > 0 {
		state.inflight--
	}

	if seq <= state.applied {
		s.mu.Unlock()

		return false
	}

	state.items = copyItems(items)
	state.applied = seq
	listeners := s.listeners

	s.mu.Unlock()

	for _, fn := range listeners {
		fn(list)
	}

	return true
}

// Abort ends a fetch that failed. The list keeps its data.
func (s *Store) Abort(list todo.ListName) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if state := s.lists[list]; state.inflight > 0 {
		state.inflight--
	}
}

// Fetching reports whether a fetch of list is in flight.
func (s *Store) Fetching(list todo.ListName) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lists[list].inflight > 0
}

// List returns a copy of the items of list.
func (s *Store) List(list todo.ListName) []todo.Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	return copyItems(s.lists[list].items)
}

// Snapshot returns a copy of every list.
func (s *Store) Snapshot() todo.Lists {
	s.mu.Lock()
	defer s.mu.Unlock()

	return todo.Lists{
		My:  copyItems(s.lists[todo.ListMy].items),
		In:  copyItems(s.lists[todo.ListIn].items),
		Out: copyItems(s.lists[todo.ListOut].items),
	}
}

// OnChange registers fn to be called after every applied change.
func (s *Store) OnChange(fn Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.listeners = append(s.listeners, fn)
}

// Assignee is the user new todos are sent to, empty for the own list.
func (s *Store) Assignee() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.assignee
}

// SetAssignee remembers the user new todos are sent to.
func (s *Store) SetAssignee(user string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.assignee = user
}

// Editing is the id of the todo being edited, if any.
func (s *Store) Editing() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.editing
}

// SetEditing marks the todo with the given id as being edited. An empty id clears it.
func (s *Store) SetEditing(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.editing = id
}

// Config returns the last configuration pushed by the server.
func (s *Store) Config() todo.ClientConfig {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.config
}

// SetConfig stores the client configuration and notifies listeners with an empty list name.
func (s *Store) SetConfig(config todo.ClientConfig) {
	s.mu.Lock()
	s.config = config
	listeners := s.listeners
	s.mu.Unlock()

	for _, fn := range listeners {
		fn("")
	}
}

func copyItems(items []todo.Item) []todo.Item {
	out := make([]todo.Item, len(items))
	copy(out, items)

	return out
}
