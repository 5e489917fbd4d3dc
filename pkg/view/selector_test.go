package view

import (
	"testing"
	"time"

	"github.com/matt-steen/todo-relay/pkg/store"
	"github.com/matt-steen/todo-relay/pkg/todo"
	"github.com/stretchr/testify/assert"
)

func fill(s *store.Store, list todo.ListName, items ...todo.Item) {
	for i := range items {
		items[i].Position = i
	}

	s.Replace(list, items, s.Begin(list))
}

func TestRows(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)
	s := store.New()
	created := time.Date(2024, 3, 1, 9, 30, 0, 0, time.Local).UnixMilli()

	fill(s, todo.ListMy, todo.Item{ID: "1", Message: "Buy milk", CreateAt: created})
	fill(s, todo.ListIn, todo.Item{ID: "2", Message: "Review PR", User: "alice", Origin: todo.OriginOut})
	fill(s, todo.ListOut,
		todo.Item{ID: "3", Message: "Deploy", User: "bob", Origin: todo.OriginIn, ForeignPosition: 1},
		todo.Item{ID: "4", Message: "Old", User: "carol", Origin: todo.OriginOwn, CreateAt: created},
	)
	s.SetEditing("1")

	sel := NewSelector(s)
	assert.Equal(todo.ListMy, sel.OpenList())

	rows := sel.Rows()
	assert.Equal(1, len(rows))
	assert.Equal("Created March 1, 2024 09:30", rows[0].Created)
	assert.True(rows[0].Editing)
	assert.Equal(todo.Actions{Remove: true, Complete: true}, rows[0].Actions)

	rows = sel.RowsOf(todo.ListIn)
	assert.Equal("Received from alice", rows[0].Created)
	assert.Equal("", rows[0].Status)
	assert.True(rows[0].Actions.Accept)

	sel.Open(todo.ListOut)
	rows = sel.Rows()
	assert.Equal("Sent to bob", rows[0].Created)
	assert.Equal("In Inbox on position 2.", rows[0].Status)
	assert.Equal(todo.Actions{Remove: true, Bump: true}, rows[0].Actions)
	assert.Equal("Created March 1, 2024 09:30", rows[1].Created)
	assert.Equal("", rows[1].Status)
	assert.False(rows[1].Actions.Any())
}

func TestTitles(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)
	s := store.New()
	sel := NewSelector(s)

	assert.Equal("Todos", sel.TabTitle(todo.ListMy))
	assert.Equal("Sent", sel.TabTitle(todo.ListOut))

	fill(s, todo.ListMy, todo.Item{ID: "1"}, todo.Item{ID: "2"})
	fill(s, todo.ListIn, todo.Item{ID: "3"})
	fill(s, todo.ListOut, todo.Item{ID: "4"})

	assert.Equal(Counts{My: 2, In: 1, Out: 1}, sel.Counts())
	assert.Equal("Todos (2) (1 received)", sel.TabTitle(todo.ListMy))
	assert.Equal("Incoming Todos (1)", sel.TabTitle(todo.ListIn))
	assert.Equal("Sent (1)", sel.TabTitle(todo.ListOut))
	assert.Equal("Sent Todos", Heading(todo.ListOut))
}

func TestHideTeamSidebar(t *testing.T) {
	t.Parallel()

	s := store.New()
	sel := NewSelector(s)

	assert.False(t, sel.HideTeamSidebar())

	s.SetConfig(todo.ClientConfig{HideTeamSidebar: true})
	assert.True(t, sel.HideTeamSidebar())
}
