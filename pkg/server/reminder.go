package server

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/matt-steen/todo-relay/pkg/todo"
	"github.com/rs/zerolog/log"
)

// reminderDue reports whether a daily reminder should go out: it must be a different day in
// the user's timezone and at least an hour since the last one.
func reminderDue(now, last time.Time, loc *time.Location) bool {
	if last.IsZero() {
		return true
	}

	nt := now.In(loc)
	lt := last.In(loc)

	if nt.Sub(lt) < time.Hour {
		return false
	}

	return nt.Year() != lt.Year() || nt.YearDay() != lt.YearDay()
}

// timezoneFromOffset converts a browser style offset (minutes, positive west of UTC).
func timezoneFromOffset(header string) *time.Location {
	offset, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil {
		return time.UTC
	}

	return time.FixedZone("local", -60*offset)
}

func itemsToString(items []todo.Item) string {
	if len(items) == 0 {
		return "Nothing to do!"
	}

	var b strings.Builder

	for _, item := range items {
		fmt.Fprintf(&b, "* %s\n  * (%s)\n", item.Message, item.CreatedAt().UTC().Format("January 2, 2006 at 15:04"))
	}

	return b.String()
}

func (s *Server) remindIfDue(ctx context.Context, userID string, items []todo.Item, offsetHeader string) {
	if len(items) == 0 {
		return
	}

	last, err := s.lists.LastReminder(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user", userID).Msg("unable to load last reminder")

		return
	}

	now := s.now()
	if !reminderDue(now, last, timezoneFromOffset(offsetHeader)) {
		return
	}

	msg, err := todo.NewPushMessage(todo.EventReminder, todo.ReminderData{
		Message: "Daily Reminder:\n\n" + itemsToString(items),
	})
	if err != nil {
		log.Error().Err(err).Msg("error encoding reminder")

		return
	}

	s.hub.Publish(userID, msg)

	if err := s.lists.SetLastReminder(ctx, userID, now); err != nil {
		log.Error().Err(err).Str("user", userID).Msg("unable to save last reminder")
	}
}
