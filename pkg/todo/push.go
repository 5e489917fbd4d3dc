package todo

import "encoding/json"

// Events published on the push channel.
const (
	EventRefresh      = "refresh"
	EventConfigUpdate = "config_update"
	EventReminder     = "reminder"
)

// PushMessage is one frame of the push channel.
type PushMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// RefreshData names the lists that changed. The own list is sent as "".
type RefreshData struct {
	Lists []string `json:"lists"`
}

// ClientConfig is the part of the server configuration clients care about.
type ClientConfig struct {
	HideTeamSidebar bool `json:"hide_team_sidebar"`
}

// ReminderData carries the daily summary of a user's todos.
type ReminderData struct {
	Message string `json:"message"`
}

// NewPushMessage builds a frame for the given event and payload.
func NewPushMessage(event string, data interface{}) (PushMessage, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return PushMessage{}, err
	}

	return PushMessage{Event: event, Data: raw}, nil
}
