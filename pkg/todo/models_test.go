package todo_test

import (
	"errors"
	"testing"

	"github.com/matt-steen/todo-relay/pkg/todo"
	"github.com/stretchr/testify/assert"
)

func TestParseListName(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	cases := map[string]todo.ListName{
		"":     todo.ListMy,
		"my":   todo.ListMy,
		"in":   todo.ListIn,
		"_in":  todo.ListIn,
		"out":  todo.ListOut,
		"_out": todo.ListOut,
	}

	for raw, expected := range cases {
		name, err := todo.ParseListName(raw)
		assert.Nil(err)
		assert.Equal(expected, name)
	}

	_, err := todo.ParseListName("inbox")
	assert.True(errors.Is(err, todo.ErrUnknownList))
}

func TestPushName(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	assert.Equal("", todo.ListMy.PushName())
	assert.Equal("in", todo.ListIn.PushName())
	assert.Equal("out", todo.ListOut.PushName())
}

func TestValidatePositions(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	assert.Nil(todo.ValidatePositions(nil))
	assert.Nil(todo.ValidatePositions([]todo.Item{{ID: "a", Position: 0}, {ID: "b", Position: 1}}))
	assert.NotNil(todo.ValidatePositions([]todo.Item{{ID: "a", Position: 0}, {ID: "b", Position: 2}}))
	assert.NotNil(todo.ValidatePositions([]todo.Item{{ID: "a", Position: 0}, {ID: "b", Position: 0}}))
}
