package server

import (
	"testing"

	"github.com/matt-steen/todo-relay/pkg/todo"
	"github.com/stretchr/testify/assert"
)

func TestSlowSubscriberEvicted(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)
	hub := NewHub()

	sub := &subscriber{userID: "alice", send: make(chan todo.PushMessage, 1)}
	other := &subscriber{userID: "bob", send: make(chan todo.PushMessage, 4)}

	hub.register(sub)
	hub.register(other)
	assert.Equal(1, hub.Connections("alice"))

	hub.Publish("alice", todo.PushMessage{Event: todo.EventRefresh})
	hub.Broadcast(todo.PushMessage{Event: todo.EventConfigUpdate})

	assert.Equal(0, hub.Connections("alice"))
	assert.Equal(1, hub.Connections("bob"))

	msg, ok := <-sub.send
	assert.True(ok)
	assert.Equal(todo.EventRefresh, msg.Event)

	_, ok = <-sub.send
	assert.False(ok)

	assert.NotPanics(func() { hub.unregister(sub) })

	msg = <-other.send
	assert.Equal(todo.EventConfigUpdate, msg.Event)
}
