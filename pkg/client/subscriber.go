package client

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/matt-steen/todo-relay/pkg/todo"
	"github.com/rs/zerolog/log"
)

const (
	pongWait   = 70 * time.Second
	writeWait  = 10 * time.Second
	minBackoff = 500 * time.Millisecond
	maxBackoff = 30 * time.Second
)

// Subscriber keeps a push connection open and redials with exponential backoff when it drops.
type Subscriber struct {
	url    string
	header http.Header
	dialer *websocket.Dialer

	// OnMessage is called for every frame received.
	OnMessage func(todo.PushMessage)
	// OnReconnect is called after every successful dial except the first one.
	OnReconnect func()

	MinBackoff time.Duration
	MaxBackoff time.Duration
}

// Subscriber creates a push subscriber for the user of the client.
func (c *Client) Subscriber() *Subscriber {
	header := http.Header{}
	header.Set(userHeader, c.userID)

	wsURL := c.baseURL + "/ws"
	if strings.HasPrefix(wsURL, "http") {
		wsURL = "ws" + strings.TrimPrefix(wsURL, "http")
	}

	return &Subscriber{
		url:         wsURL,
		header:      header,
		dialer:      websocket.DefaultDialer,
		OnMessage:   func(todo.PushMessage) {},
		OnReconnect: func() {},
		MinBackoff:  minBackoff,
		MaxBackoff:  maxBackoff,
	}
}

// Run dials and reads until ctx is done. It always returns ctx.Err().
func (s *Subscriber) Run(ctx context.Context) error {
	backoff := s.MinBackoff
	connected := false

	for {
		conn, _, err := s.dialer.DialContext(ctx, s.url, s.header)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			log.Warn().Err(err).Dur("retry_in", backoff).Msg("unable to connect push channel")

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}

			backoff *= 2
			if backoff > s.MaxBackoff {
				backoff = s.MaxBackoff
			}

			continue
		}

		backoff = s.MinBackoff

		if connected {
			log.Info().Msg("push channel reconnected")
			s.OnReconnect()
		}

		connected = true

		s.read(ctx, conn)

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (s *Subscriber) read(ctx context.Context, conn *websocket.Conn) {
	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPingHandler(func(data string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		err := conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(writeWait))
		if errors.Is(err, websocket.ErrCloseSent) {
			return nil
		}

		return err
	})

	for {
		var msg todo.PushMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() == nil {
				log.Warn().Err(err).Msg("push channel dropped")
			}

			return
		}

		s.OnMessage(msg)
	}
}
