package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/matt-steen/todo-relay/pkg/db"
	"github.com/matt-steen/todo-relay/pkg/todo"
	"github.com/rs/zerolog/log"
)

// UserHeader carries the username of the caller. Identity is resolved upstream.
const UserHeader = "Todo-User-ID"

// TimezoneHeader carries the caller's offset from UTC in minutes, as returned by
// Date.getTimezoneOffset: positive west of UTC.
const TimezoneHeader = "X-Timezone-Offset"

// ListManager represents the logic on the lists.
type ListManager interface {
	// AddItem adds a todo to the end of userID's own list
	AddItem(ctx context.Context, userID, message, description, postID string) (todo.Item, *db.Change, error)
	// SendItem sends a todo from senderID to receiverID and returns the receiver's item id
	SendItem(ctx context.Context, senderID, receiverID, message, description, postID string) (string, *db.Change, error)
	// List gets the todos on list for userID
	List(ctx context.Context, userID string, list todo.ListName) ([]todo.Item, error)
	// Lists gets all three lists for userID
	Lists(ctx context.Context, userID string) (todo.Lists, error)
	CompleteItem(ctx context.Context, userID, itemID string) (*db.Change, error)
	RemoveItem(ctx context.Context, userID, itemID string) (*db.Change, error)
	// AcceptItem moves a todo of userID from the inbox to the own list
	AcceptItem(ctx context.Context, userID, itemID string) (*db.Change, error)
	// BumpItem moves a todo sent by userID to the top of its receiver's inbox
	BumpItem(ctx context.Context, userID, itemID string) (*db.Change, error)
	EditItem(ctx context.Context, userID, itemID, message, description string) (*db.Change, error)
	ChangeAssignment(ctx context.Context, userID, itemID, sendTo string) (*db.Change, error)
	LastReminder(ctx context.Context, userID string) (time.Time, error)
	SetLastReminder(ctx context.Context, userID string, at time.Time) error
}

// Server exposes the lists over HTTP and publishes refresh events to push subscribers.
type Server struct {
	lists  ListManager
	hub    *Hub
	router *mux.Router
	now    func() time.Time

	// configLock synchronizes access to the client configuration.
	configLock sync.RWMutex
	config     todo.ClientConfig
}

// NewServer creates a Server for the given lists and initial client configuration.
func NewServer(lists ListManager, config todo.ClientConfig) *Server {
	s := &Server{
		lists:  lists,
		hub:    NewHub(),
		now:    time.Now,
		config: config,
	}

	s.initializeAPI()

	return s
}

func (s *Server) initializeAPI() {
	s.router = mux.NewRouter()
	s.router.Use(s.withRecovery, s.withLogging)

	s.router.HandleFunc("/add", s.checkAuth(s.handleAdd)).Methods(http.MethodPost)
	s.router.HandleFunc("/list", s.checkAuth(s.handleList)).Methods(http.MethodGet)
	s.router.HandleFunc("/lists", s.checkAuth(s.handleLists)).Methods(http.MethodGet)
	s.router.HandleFunc("/remove", s.checkAuth(s.handleRemove)).Methods(http.MethodPost)
	s.router.HandleFunc("/complete", s.checkAuth(s.handleComplete)).Methods(http.MethodPost)
	s.router.HandleFunc("/accept", s.checkAuth(s.handleAccept)).Methods(http.MethodPost)
	s.router.HandleFunc("/bump", s.checkAuth(s.handleBump)).Methods(http.MethodPost)
	s.router.HandleFunc("/edit", s.checkAuth(s.handleEdit)).Methods(http.MethodPut)
	s.router.HandleFunc("/change_assignment", s.checkAuth(s.handleChangeAssignment)).Methods(http.MethodPost)
	s.router.HandleFunc("/config", s.checkAuth(s.handleConfig)).Methods(http.MethodGet)
	s.router.HandleFunc("/telemetry", s.checkAuth(s.handleTelemetry)).Methods(http.MethodPost)
	s.router.HandleFunc("/ws", s.checkAuth(s.handleWS)).Methods(http.MethodGet)

	s.router.NotFoundHandler = http.NotFoundHandler()
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Hub returns the push hub of the server.
func (s *Server) Hub() *Hub {
	return s.hub
}

// ClientConfig returns the configuration served to clients.
func (s *Server) ClientConfig() todo.ClientConfig {
	s.configLock.RLock()
	defer s.configLock.RUnlock()

	return s.config
}

// SetClientConfig replaces the client configuration and tells every connected client when
// it changed.
func (s *Server) SetClientConfig(config todo.ClientConfig) {
	s.configLock.Lock()
	changed := s.config != config
	s.config = config
	s.configLock.Unlock()

	if !changed {
		return
	}

	msg, err := todo.NewPushMessage(todo.EventConfigUpdate, config)
	if err != nil {
		log.Error().Err(err).Msg("error encoding config update")

		return
	}

	s.hub.Broadcast(msg)
}

func (s *Server) withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if x := recover(); x != nil {
				log.Warn().
					Str("url", r.URL.String()).
					Interface("error", x).
					Str("stack", string(debug.Stack())).
					Msg("recovered from a panic")

				s.handleErrorWithCode(w, http.StatusInternalServerError, "Internal error", errors.New("panic"))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("user", r.Header.Get(UserHeader)).
			Dur("elapsed", time.Since(start)).
			Msg("handled request")
	})
}

func (s *Server) checkAuth(handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(UserHeader) == "" {
			s.handleErrorWithCode(w, http.StatusUnauthorized, "Not authorized", errors.New("missing user"))

			return
		}

		handler(w, r)
	}
}

// publishChange sends a refresh event to every user touched by a mutation.
func (s *Server) publishChange(change *db.Change) {
	if change == nil {
		return
	}

	for userID, lists := range change.Refresh {
		s.sendRefreshEvent(userID, lists)
	}
}

func (s *Server) sendRefreshEvent(userID string, lists []todo.ListName) {
	names := make([]string, 0, len(lists))
	for _, list := range lists {
		names = append(names, list.PushName())
	}

	msg, err := todo.NewPushMessage(todo.EventRefresh, todo.RefreshData{Lists: names})
	if err != nil {
		log.Error().Err(err).Msg("error encoding refresh event")

		return
	}

	s.hub.Publish(userID, msg)
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("unable to write json response")
	}
}

func (s *Server) handleErrorWithCode(w http.ResponseWriter, code int, errTitle string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	b, _ := json.Marshal(struct {
		Error   string `json:"error"`
		Details string `json:"details"`
	}{
		Error:   errTitle,
		Details: err.Error(),
	})
	_, _ = w.Write(b)
}

// handleListError maps a storage error to a status code.
func (s *Server) handleListError(w http.ResponseWriter, errTitle string, err error) {
	code := http.StatusInternalServerError

	switch {
	case errors.Is(err, db.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, db.ErrNotOwner):
		code = http.StatusForbidden
	case errors.Is(err, db.ErrNotPending):
		code = http.StatusConflict
	default:
		log.Error().Err(err).Msg(errTitle)
	}

	s.handleErrorWithCode(w, code, errTitle, err)
}
