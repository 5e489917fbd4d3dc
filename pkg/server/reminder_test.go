package server

import (
	"testing"
	"time"

	"github.com/matt-steen/todo-relay/pkg/todo"
	"github.com/stretchr/testify/assert"
)

func TestReminderDue(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	morning := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	assert.True(reminderDue(morning, time.Time{}, time.UTC))
	assert.False(reminderDue(morning.Add(3*time.Hour), morning, time.UTC), "same day")
	assert.True(reminderDue(morning.Add(24*time.Hour), morning, time.UTC), "next day")

	lateEvening := time.Date(2024, 3, 1, 23, 40, 0, 0, time.UTC)
	assert.False(reminderDue(lateEvening.Add(30*time.Minute), lateEvening, time.UTC), "less than an hour")

	// 23:00 UTC on the 1st is already the 2nd two hours east of UTC
	assert.True(reminderDue(time.Date(2024, 3, 1, 23, 0, 0, 0, time.UTC), morning, timezoneFromOffset("-120")))
}

func TestTimezoneFromOffset(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(7, at.In(timezoneFromOffset("300")).Hour())
	assert.Equal(12, at.In(timezoneFromOffset("garbage")).Hour())
}

func TestItemsToString(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	assert.Equal("Nothing to do!", itemsToString(nil))

	text := itemsToString([]todo.Item{{Message: "Buy milk", CreateAt: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC).UnixMilli()}})
	assert.Equal("* Buy milk\n  * (March 1, 2024 at 09:00)\n", text)
}
