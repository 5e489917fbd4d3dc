package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/matt-steen/todo-relay/pkg/todo"
)

// These header names are shared with the server.
const (
	userHeader     = "Todo-User-ID"
	timezoneHeader = "X-Timezone-Offset"
)

const defaultTimeout = 10 * time.Second

// APIError is returned when the server answers with a non 2xx status.
type APIError struct {
	Status  int
	Title   string
	Details string
}

func (e *APIError) Error() string {
	if e.Details == "" {
		return fmt.Sprintf("http %d: %s", e.Status, e.Title)
	}

	return fmt.Sprintf("http %d: %s: %s", e.Status, e.Title, e.Details)
}

// Client talks to the todo server on behalf of one user.
type Client struct {
	baseURL string
	userID  string
	http    *http.Client
	// zone is sent with list requests so the server can compute the reminder day.
	zone *time.Location
}

// NewClient creates a Client for userID. baseURL is the server root, e.g. http://localhost:8065.
func NewClient(baseURL, userID string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		userID:  userID,
		http:    &http.Client{Timeout: defaultTimeout},
		zone:    time.Local,
	}
}

// UserID returns the user the client acts for.
func (c *Client) UserID() string {
	return c.userID
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader

	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("error encoding request for %s: %w", path, err)
		}

		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("error creating request for %s: %w", path, err)
	}

	req.Header.Set(userHeader, c.userID)
	req.Header.Set(timezoneHeader, timezoneOffset(time.Now().In(c.zone)))

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("error calling %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Title: http.StatusText(resp.StatusCode)}

		var payload struct {
			Error   string `json:"error"`
			Details string `json:"details"`
		}
		if json.NewDecoder(resp.Body).Decode(&payload) == nil && payload.Error != "" {
			apiErr.Title = payload.Error
			apiErr.Details = payload.Details
		}

		return apiErr
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("error decoding response of %s: %w", path, err)
	}

	return nil
}

// timezoneOffset formats the offset the way browsers report it: minutes, positive west of UTC.
func timezoneOffset(t time.Time) string {
	_, offset := t.Zone()

	return strconv.Itoa(-offset / 60)
}

// Add creates a todo. When sendTo names another user the todo is sent to them.
func (c *Client) Add(ctx context.Context, message, description, sendTo, postID string) error {
	return c.do(ctx, http.MethodPost, "/add", map[string]string{
		"message":     message,
		"description": description,
		"send_to":     sendTo,
		"post_id":     postID,
	}, nil)
}

// Remove deletes a todo.
func (c *Client) Remove(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/remove", map[string]string{"id": id}, nil)
}

// Complete marks a todo as done.
func (c *Client) Complete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/complete", map[string]string{"id": id}, nil)
}

// Accept moves a received todo into the own list.
func (c *Client) Accept(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/accept", map[string]string{"id": id}, nil)
}

// Bump moves a sent todo to the top of the receiver's inbox.
func (c *Client) Bump(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/bump", map[string]string{"id": id}, nil)
}

func (c *Client) Edit(ctx context.Context, id, message, description string) error {
	return c.do(ctx, http.MethodPut, "/edit", map[string]string{
		"id":          id,
		"message":     message,
		"description": description,
	}, nil)
}

func (c *Client) ChangeAssignment(ctx context.Context, id, sendTo string) error {
	return c.do(ctx, http.MethodPost, "/change_assignment", map[string]string{"id": id, "send_to": sendTo}, nil)
}

// List fetches one list. With reminder set the server may push the daily reminder.
func (c *Client) List(ctx context.Context, list todo.ListName, reminder bool) ([]todo.Item, error) {
	query := url.Values{}
	query.Set("list", string(list))
	query.Set("reminder", strconv.FormatBool(reminder))

	var items []todo.Item
	if err := c.do(ctx, http.MethodGet, "/list?"+query.Encode(), nil, &items); err != nil {
		return nil, err
	}

	return items, nil
}

func (c *Client) Lists(ctx context.Context) (todo.Lists, error) {
	var lists todo.Lists
	err := c.do(ctx, http.MethodGet, "/lists", nil, &lists)

	return lists, err
}

func (c *Client) Config(ctx context.Context) (todo.ClientConfig, error) {
	var config todo.ClientConfig
	err := c.do(ctx, http.MethodGet, "/config", nil, &config)

	return config, err
}

// Telemetry records a frontend event on the server.
func (c *Client) Telemetry(ctx context.Context, event string, properties map[string]interface{}) error {
	return c.do(ctx, http.MethodPost, "/telemetry", map[string]interface{}{
		"event":      event,
		"properties": properties,
	}, nil)
}
