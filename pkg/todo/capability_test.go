package todo_test

import (
	"fmt"
	"testing"

	"github.com/matt-steen/todo-relay/pkg/todo"
	"github.com/stretchr/testify/assert"
)

var origins = []todo.Origin{todo.OriginOwn, todo.OriginIn, todo.OriginOut}

func TestCanAccept(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	assert.False(todo.CanAccept(todo.ListMy))
	assert.True(todo.CanAccept(todo.ListIn))
	assert.False(todo.CanAccept(todo.ListOut))
}

func TestCanComplete(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	assert.True(todo.CanComplete(todo.ListMy))
	assert.True(todo.CanComplete(todo.ListIn))
	assert.False(todo.CanComplete(todo.ListOut))
}

func TestCanBump(t *testing.T) {
	t.Parallel()

	for _, viewed := range todo.AllLists {
		for _, origin := range origins {
			viewed, origin := viewed, origin

			t.Run(fmt.Sprintf("%s/%q", viewed, origin), func(t *testing.T) {
				t.Parallel()

				expected := viewed == todo.ListOut && origin == todo.OriginIn
				assert.Equal(t, expected, todo.CanBump(viewed, origin))
			})
		}
	}
}

func TestCanRemove(t *testing.T) {
	t.Parallel()

	expected := map[todo.ListName]map[todo.Origin]bool{
		todo.ListMy:  {todo.OriginOwn: true, todo.OriginIn: true, todo.OriginOut: true},
		todo.ListIn:  {todo.OriginOwn: true, todo.OriginIn: true, todo.OriginOut: true},
		todo.ListOut: {todo.OriginOwn: false, todo.OriginIn: true, todo.OriginOut: false},
	}

	for viewed, row := range expected {
		for origin, allowed := range row {
			assert.Equal(t, allowed, todo.CanRemove(viewed, origin), "viewed %s origin %q", viewed, origin)
		}
	}
}

func TestCapabilities(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	sent := todo.Item{ID: "a", User: "bob", Origin: todo.OriginIn}
	actions := todo.Capabilities(todo.ListOut, sent)
	assert.Equal(todo.Actions{Remove: true, Bump: true}, actions)
	assert.True(actions.Any())

	received := todo.Item{ID: "b", User: "alice", Origin: todo.OriginOut}
	assert.Equal(todo.Actions{Remove: true, Complete: true, Accept: true}, todo.Capabilities(todo.ListIn, received))

	accepted := todo.Item{ID: "c"}
	assert.False(todo.Capabilities(todo.ListOut, accepted).Any())
}
