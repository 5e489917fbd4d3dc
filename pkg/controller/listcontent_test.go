package controller

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/matt-steen/todo-relay/pkg/store"
	"github.com/matt-steen/todo-relay/pkg/todo"
	"github.com/matt-steen/todo-relay/pkg/view"
	"github.com/stretchr/testify/assert"
)

func TestListContent(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)
	s := store.New()
	content := NewListContent(view.NewSelector(s), todo.ListOut)

	assert.Equal(1, content.GetRowCount())
	assert.Equal(4, content.GetColumnCount())
	assert.Nil(content.GetCell(1, 0))

	s.Replace(todo.ListOut, []todo.Item{
		{ID: "1", Message: "Review PR", User: "bob", Origin: todo.OriginIn},
	}, s.Begin(todo.ListOut))

	assert.Equal(1, content.GetRowCount(), "rows only change on reload")

	content.Reload()

	assert.Equal(2, content.GetRowCount())
	assert.Equal("todo", content.GetCell(0, 0).Text)
	assert.Equal("Review PR", content.GetCell(1, 0).Text)
	assert.Equal("1", content.GetCell(1, 0).GetReference())
	assert.Equal("Sent to bob", content.GetCell(1, 2).Text)
	assert.Equal("In Inbox on position 1.", content.GetCell(1, 3).Text)
	assert.Equal(tcell.ColorGray, content.GetCell(1, 3).Color)
	assert.Nil(content.GetCell(1, 4))
}
