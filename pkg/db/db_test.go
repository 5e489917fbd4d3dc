package db_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/matt-steen/todo-relay/pkg/db"
	"github.com/matt-steen/todo-relay/pkg/todo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getDB(t *testing.T) *db.Database {
	t.Helper()

	database, err := db.NewDatabase(context.Background(), filepath.Join(t.TempDir(), "test.sqlite"))
	require.Nil(t, err)
	require.NotNil(t, database)

	t.Cleanup(func() { database.Close() })

	return database
}

func list(t *testing.T, database *db.Database, userID string, name todo.ListName) []todo.Item {
	t.Helper()

	items, err := database.List(context.Background(), userID, name)
	require.Nil(t, err)
	require.Nil(t, todo.ValidatePositions(items), "positions of %s/%s", userID, name)

	return items
}

func send(t *testing.T, database *db.Database, from, to, message string) string {
	t.Helper()

	id, _, err := database.SendItem(context.Background(), from, to, message, "details", "")
	require.Nil(t, err)

	return id
}

func TestNewDatabaseBadFile(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	database, err := db.NewDatabase(context.Background(), "/alwfkjasfd/asdflkjdsal.sqlite")
	assert.Nil(database)
	assert.NotNil(err)
	assert.Contains(err.Error(), "error running base sql")
}

func TestNewDatabaseIdempotent(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)
	ctx := context.Background()
	filename := filepath.Join(t.TempDir(), "test.sqlite")

	database, err := db.NewDatabase(ctx, filename)
	assert.Nil(err)

	_, _, err = database.AddItem(ctx, "alice", "do some work", "", "")
	assert.Nil(err)
	assert.Nil(database.Close())

	database2, err := db.NewDatabase(ctx, filename)
	assert.Nil(err)

	defer database2.Close()

	items, err := database2.List(ctx, "alice", todo.ListMy)
	assert.Nil(err)
	assert.Equal(1, len(items))
}

func TestAddItem(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)
	database := getDB(t)

	item, change, err := database.AddItem(context.Background(), "alice", "Buy milk", "two litres", "")
	assert.Nil(err)
	assert.Equal("Buy milk", item.Message)
	assert.Equal(0, item.Position)
	assert.Equal(map[string][]todo.ListName{"alice": {todo.ListMy}}, change.Refresh)

	_, _, err = database.AddItem(context.Background(), "alice", "Buy bread", "", "")
	assert.Nil(err)

	items := list(t, database, "alice", todo.ListMy)
	assert.Equal(2, len(items))
	assert.Equal("Buy milk", items[0].Message)
	assert.Equal("two litres", items[0].Description)
	assert.Equal(todo.OriginOwn, items[0].Origin)
	assert.Equal("", items[0].User)
	assert.Equal("Buy bread", items[1].Message)
}

func TestSendItem(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)
	database := getDB(t)

	id, change, err := database.SendItem(context.Background(), "alice", "bob", "Review PR", "", "")
	assert.Nil(err)
	assert.Equal([]todo.ListName{todo.ListOut}, change.Refresh["alice"])
	assert.Equal([]todo.ListName{todo.ListIn}, change.Refresh["bob"])

	in := list(t, database, "bob", todo.ListIn)
	assert.Equal(1, len(in))
	assert.Equal(id, in[0].ID)
	assert.Equal("Review PR", in[0].Message)
	assert.Equal("alice", in[0].User)
	assert.Equal(todo.OriginOut, in[0].Origin)
	assert.Equal(0, in[0].Position)

	out := list(t, database, "alice", todo.ListOut)
	assert.Equal(1, len(out))
	assert.Equal("bob", out[0].User)
	assert.Equal(todo.OriginIn, out[0].Origin)
	assert.NotEqual(id, out[0].ID)

	assert.Equal(0, len(list(t, database, "alice", todo.ListMy)))
}

func TestAcceptItem(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)
	database := getDB(t)

	id := send(t, database, "alice", "bob", "Review PR")

	change, err := database.AcceptItem(context.Background(), "bob", id)
	assert.Nil(err)
	assert.Equal("alice", change.Counterparty)
	assert.ElementsMatch([]todo.ListName{todo.ListMy, todo.ListIn}, change.Refresh["bob"])
	assert.Equal([]todo.ListName{todo.ListOut}, change.Refresh["alice"])

	my := list(t, database, "bob", todo.ListMy)
	assert.Equal(1, len(my))
	assert.Equal(id, my[0].ID)
	assert.Equal("Review PR", my[0].Message)
	assert.Equal("details", my[0].Description)
	assert.Equal(todo.OriginOwn, my[0].Origin)

	assert.Equal(0, len(list(t, database, "bob", todo.ListIn)))
	assert.Equal(0, len(list(t, database, "alice", todo.ListOut)))

	_, err = database.AcceptItem(context.Background(), "bob", id)
	assert.True(errors.Is(err, db.ErrNotPending))
}

func TestRemoveRecallsSentItem(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)
	database := getDB(t)

	send(t, database, "alice", "bob", "Review PR")
	out := list(t, database, "alice", todo.ListOut)

	change, err := database.RemoveItem(context.Background(), "alice", out[0].ID)
	assert.Nil(err)
	assert.Equal("bob", change.Counterparty)
	assert.Equal([]todo.ListName{todo.ListIn}, change.Refresh["bob"])

	assert.Equal(0, len(list(t, database, "alice", todo.ListOut)))
	assert.Equal(0, len(list(t, database, "bob", todo.ListIn)))
}

func TestCompleteSentItemRejected(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)
	database := getDB(t)

	send(t, database, "alice", "bob", "Review PR")
	out := list(t, database, "alice", todo.ListOut)

	_, err := database.CompleteItem(context.Background(), "alice", out[0].ID)
	assert.True(errors.Is(err, db.ErrNotOwner))

	assert.Equal(1, len(list(t, database, "alice", todo.ListOut)))
	assert.Equal(1, len(list(t, database, "bob", todo.ListIn)))
}

func TestRemoveUnknownItem(t *testing.T) {
	t.Parallel()

	database := getDB(t)

	_, err := database.RemoveItem(context.Background(), "alice", "nope")
	assert.True(t, errors.Is(err, db.ErrNotFound))
}

func TestCompleteItemReranks(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)
	ctx := context.Background()
	database := getDB(t)

	for _, message := range []string{"one", "two", "three"} {
		_, _, err := database.AddItem(ctx, "alice", message, "", "")
		assert.Nil(err)
	}

	items := list(t, database, "alice", todo.ListMy)

	_, err := database.CompleteItem(ctx, "alice", items[1].ID)
	assert.Nil(err)

	items = list(t, database, "alice", todo.ListMy)
	assert.Equal(2, len(items))
	assert.Equal("one", items[0].Message)
	assert.Equal("three", items[1].Message)
}

func TestCompleteNotifiesSender(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)
	database := getDB(t)

	id := send(t, database, "alice", "bob", "Review PR")

	change, err := database.CompleteItem(context.Background(), "bob", id)
	assert.Nil(err)
	assert.Equal([]todo.ListName{todo.ListOut}, change.Refresh["alice"])
	assert.Equal(0, len(list(t, database, "alice", todo.ListOut)))
}

func TestBumpItem(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)
	ctx := context.Background()
	database := getDB(t)

	send(t, database, "alice", "bob", "first")
	send(t, database, "carol", "bob", "from carol")
	send(t, database, "alice", "bob", "second")

	out := list(t, database, "alice", todo.ListOut)
	assert.Equal(2, out[1].ForeignPosition)

	change, err := database.BumpItem(ctx, "alice", out[1].ID)
	assert.Nil(err)
	assert.Equal("bob", change.Counterparty)
	assert.Equal([]todo.ListName{todo.ListIn}, change.Refresh["bob"])
	// carol's item moved down a position
	assert.Equal([]todo.ListName{todo.ListOut}, change.Refresh["carol"])

	in := list(t, database, "bob", todo.ListIn)
	assert.Equal("second", in[0].Message)
	assert.Equal("first", in[1].Message)
	assert.Equal("from carol", in[2].Message)

	out = list(t, database, "alice", todo.ListOut)
	assert.Equal(0, out[1].ForeignPosition)
}

func TestBumpOwnItem(t *testing.T) {
	t.Parallel()

	database := getDB(t)

	item, _, err := database.AddItem(context.Background(), "alice", "mine", "", "")
	require.Nil(t, err)

	_, err = database.BumpItem(context.Background(), "alice", item.ID)
	assert.True(t, errors.Is(err, db.ErrNotPending))
}

func TestEditItem(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)
	database := getDB(t)

	id := send(t, database, "alice", "bob", "Review PR")

	change, err := database.EditItem(context.Background(), "bob", id, "Review PR #2", "now")
	assert.Nil(err)
	assert.Equal([]todo.ListName{todo.ListOut}, change.Refresh["alice"])

	out := list(t, database, "alice", todo.ListOut)
	assert.Equal("Review PR #2", out[0].Message)
	assert.Equal("now", out[0].Description)
}

func TestChangeAssignment(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)
	ctx := context.Background()
	database := getDB(t)

	send(t, database, "alice", "bob", "Review PR")
	out := list(t, database, "alice", todo.ListOut)

	change, err := database.ChangeAssignment(ctx, "alice", out[0].ID, "carol")
	assert.Nil(err)
	assert.Equal("bob", change.Counterparty)
	assert.Equal([]todo.ListName{todo.ListIn}, change.Refresh["bob"])
	assert.Equal([]todo.ListName{todo.ListIn}, change.Refresh["carol"])

	assert.Equal(0, len(list(t, database, "bob", todo.ListIn)))

	in := list(t, database, "carol", todo.ListIn)
	assert.Equal(1, len(in))
	assert.Equal("alice", in[0].User)

	out = list(t, database, "alice", todo.ListOut)
	assert.Equal(1, len(out))
	assert.Equal("carol", out[0].User)

	_, err = database.ChangeAssignment(ctx, "alice", out[0].ID, "alice")
	assert.Nil(err)

	assert.Equal(0, len(list(t, database, "alice", todo.ListOut)))
	assert.Equal(0, len(list(t, database, "carol", todo.ListIn)))

	my := list(t, database, "alice", todo.ListMy)
	assert.Equal(1, len(my))
	assert.Equal("", my[0].User)
}

func TestChangeAssignmentOfOwnItem(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)
	database := getDB(t)

	item, _, err := database.AddItem(context.Background(), "alice", "mine", "", "")
	assert.Nil(err)

	_, err = database.ChangeAssignment(context.Background(), "alice", item.ID, "bob")
	assert.Nil(err)

	assert.Equal(0, len(list(t, database, "alice", todo.ListMy)))
	assert.Equal(1, len(list(t, database, "alice", todo.ListOut)))
	assert.Equal(1, len(list(t, database, "bob", todo.ListIn)))
}

func TestChangeAssignmentNotOwner(t *testing.T) {
	t.Parallel()

	database := getDB(t)

	id := send(t, database, "alice", "bob", "Review PR")

	_, err := database.ChangeAssignment(context.Background(), "bob", id, "carol")
	assert.True(t, errors.Is(err, db.ErrNotOwner))
}

func TestLists(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)
	ctx := context.Background()
	database := getDB(t)

	_, _, err := database.AddItem(ctx, "alice", "mine", "", "")
	assert.Nil(err)

	send(t, database, "alice", "bob", "yours")
	send(t, database, "bob", "alice", "for alice")

	lists, err := database.Lists(ctx, "alice")
	assert.Nil(err)
	assert.Equal(1, len(lists.My))
	assert.Equal(1, len(lists.In))
	assert.Equal(1, len(lists.Out))
	assert.Equal("for alice", lists.Get(todo.ListIn)[0].Message)
}

func TestReminder(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)
	ctx := context.Background()
	database := getDB(t)

	last, err := database.LastReminder(ctx, "alice")
	assert.Nil(err)
	assert.True(last.IsZero())

	at := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	assert.Nil(database.SetLastReminder(ctx, "alice", at))
	assert.Nil(database.SetLastReminder(ctx, "alice", at.Add(time.Hour)))

	last, err = database.LastReminder(ctx, "alice")
	assert.Nil(err)
	assert.True(at.Add(time.Hour).Equal(last))
}
