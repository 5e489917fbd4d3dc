package syncer

import (
	"encoding/json"
	"fmt"

	"github.com/matt-steen/todo-relay/pkg/todo"
)

// Event is something that may require the local lists to be reloaded.
type Event interface {
	isEvent()
}

// Refresh asks for the named lists, as spelled on the push channel.
type Refresh struct {
	Lists []string
}

// Reconnect is emitted after the push channel came back; events may have been missed.
type Reconnect struct{}

// ConfigUpdate carries a new client configuration.
type ConfigUpdate struct {
	HideTeamSidebar bool
}

// Reminder carries the daily summary.
type Reminder struct {
	Message string
}

func (Refresh) isEvent()      {}
func (Reconnect) isEvent()    {}
func (ConfigUpdate) isEvent() {}
func (Reminder) isEvent()     {}

// FromPush converts a push frame into an Event.
func FromPush(msg todo.PushMessage) (Event, error) {
	switch msg.Event {
	case todo.EventRefresh:
		var data todo.RefreshData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return nil, fmt.Errorf("error decoding %s event: %w", msg.Event, err)
		}

		return Refresh{Lists: data.Lists}, nil
	case todo.EventConfigUpdate:
		var data todo.ClientConfig
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return nil, fmt.Errorf("error decoding %s event: %w", msg.Event, err)
		}

		return ConfigUpdate{HideTeamSidebar: data.HideTeamSidebar}, nil
	case todo.EventReminder:
		var data todo.ReminderData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return nil, fmt.Errorf("error decoding %s event: %w", msg.Event, err)
		}

		return Reminder{Message: data.Message}, nil
	}

	return nil, fmt.Errorf("unknown push event %q", msg.Event)
}
