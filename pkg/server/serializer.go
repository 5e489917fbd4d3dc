package server

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
)

func decode(data io.Reader, body interface{}) error {
	return json.NewDecoder(data).Decode(body)
}

type telemetryRequest struct {
	Event      string                 `json:"event"`
	Properties map[string]interface{} `json:"properties"`
}

func (t *telemetryRequest) IsValid() error {
	if t.Event == "" {
		return errors.New("event is required")
	}

	return nil
}

type addRequest struct {
	Message     string `json:"message"`
	Description string `json:"description"`
	SendTo      string `json:"send_to"`
	PostID      string `json:"post_id"`
}

func (a *addRequest) IsValid() error {
	if strings.TrimSpace(a.Message) == "" {
		return errors.New("message is required")
	}

	return nil
}

type editRequest struct {
	ID          string `json:"id"`
	Message     string `json:"message"`
	Description string `json:"description"`
}

func (e *editRequest) IsValid() error {
	if e.ID == "" {
		return errors.New("id is required")
	}

	if strings.TrimSpace(e.Message) == "" {
		return errors.New("message is required")
	}

	return nil
}

type changeAssignmentRequest struct {
	ID     string `json:"id"`
	SendTo string `json:"send_to"`
}

func (c *changeAssignmentRequest) IsValid() error {
	if c.ID == "" {
		return errors.New("id is required")
	}

	if strings.TrimSpace(c.SendTo) == "" {
		return errors.New("no user specified")
	}

	return nil
}

// idRequest is the body of remove, complete, accept and bump.
type idRequest struct {
	ID string `json:"id"`
}

func (i *idRequest) IsValid() error {
	if i.ID == "" {
		return errors.New("id is required")
	}

	return nil
}
