package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/matt-steen/todo-relay/pkg/db"
	"github.com/matt-steen/todo-relay/pkg/todo"
	"github.com/rs/zerolog/log"
)

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(UserHeader)

	var req addRequest
	if err := decode(r.Body, &req); err != nil {
		s.handleErrorWithCode(w, http.StatusBadRequest, "Unable to get add todo payload from JSON.", err)

		return
	}

	if err := req.IsValid(); err != nil {
		s.handleErrorWithCode(w, http.StatusBadRequest, "Unable to validate add todo payload.", err)

		return
	}

	sendTo := strings.TrimSpace(req.SendTo)

	var (
		change *db.Change
		err    error
	)

	if sendTo == "" || sendTo == userID {
		_, change, err = s.lists.AddItem(r.Context(), userID, req.Message, req.Description, req.PostID)
	} else {
		_, change, err = s.lists.SendItem(r.Context(), userID, sendTo, req.Message, req.Description, req.PostID)
	}

	if err != nil {
		s.handleListError(w, "Unable to add todo", err)

		return
	}

	s.publishChange(change)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(UserHeader)

	list, err := todo.ParseListName(r.URL.Query().Get("list"))
	if err != nil {
		s.handleErrorWithCode(w, http.StatusBadRequest, "Unknown list", err)

		return
	}

	items, err := s.lists.List(r.Context(), userID, list)
	if err != nil {
		s.handleListError(w, "Unable to get todos for user", err)

		return
	}

	if list == todo.ListMy && r.URL.Query().Get("reminder") == "true" {
		s.remindIfDue(r.Context(), userID, items, r.Header.Get(TimezoneHeader))
	}

	s.writeJSON(w, items)
}

func (s *Server) handleLists(w http.ResponseWriter, r *http.Request) {
	lists, err := s.lists.Lists(r.Context(), r.Header.Get(UserHeader))
	if err != nil {
		s.handleListError(w, "Unable to get todos for user", err)

		return
	}

	s.writeJSON(w, lists)
}

// handleIDOperation serves the endpoints whose body is just the todo id.
func (s *Server) handleIDOperation(name string, op func(r *http.Request, userID, itemID string) (*db.Change, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(UserHeader)

		var req idRequest
		if err := decode(r.Body, &req); err != nil {
			s.handleErrorWithCode(w, http.StatusBadRequest, fmt.Sprintf("Unable to get %s todo payload from JSON.", name), err)

			return
		}

		if err := req.IsValid(); err != nil {
			s.handleErrorWithCode(w, http.StatusBadRequest, fmt.Sprintf("Unable to validate %s todo payload.", name), err)

			return
		}

		change, err := op(r, userID, req.ID)
		if err != nil {
			s.handleListError(w, fmt.Sprintf("Unable to %s todo", name), err)

			return
		}

		log.Info().Str("user", userID).Str("item", req.ID).Str("counterparty", change.Counterparty).Msgf("%s todo", name)

		s.publishChange(change)
	}
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	s.handleIDOperation("remove", func(r *http.Request, userID, itemID string) (*db.Change, error) {
		return s.lists.RemoveItem(r.Context(), userID, itemID)
	})(w, r)
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	s.handleIDOperation("complete", func(r *http.Request, userID, itemID string) (*db.Change, error) {
		return s.lists.CompleteItem(r.Context(), userID, itemID)
	})(w, r)
}

func (s *Server) handleAccept(w http.ResponseWriter, r *http.Request) {
	s.handleIDOperation("accept", func(r *http.Request, userID, itemID string) (*db.Change, error) {
		return s.lists.AcceptItem(r.Context(), userID, itemID)
	})(w, r)
}

func (s *Server) handleBump(w http.ResponseWriter, r *http.Request) {
	s.handleIDOperation("bump", func(r *http.Request, userID, itemID string) (*db.Change, error) {
		return s.lists.BumpItem(r.Context(), userID, itemID)
	})(w, r)
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(UserHeader)

	var req editRequest
	if err := decode(r.Body, &req); err != nil {
		s.handleErrorWithCode(w, http.StatusBadRequest, "Unable to get edit todo payload from JSON.", err)

		return
	}

	if err := req.IsValid(); err != nil {
		s.handleErrorWithCode(w, http.StatusBadRequest, "Unable to validate edit todo payload.", err)

		return
	}

	change, err := s.lists.EditItem(r.Context(), userID, req.ID, req.Message, req.Description)
	if err != nil {
		s.handleListError(w, "Unable to edit todo", err)

		return
	}

	s.publishChange(change)
}

func (s *Server) handleChangeAssignment(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(UserHeader)

	var req changeAssignmentRequest
	if err := decode(r.Body, &req); err != nil {
		s.handleErrorWithCode(w, http.StatusBadRequest, "Unable to get change request from JSON.", err)

		return
	}

	if err := req.IsValid(); err != nil {
		s.handleErrorWithCode(w, http.StatusBadRequest, "Unable to validate change request payload.", err)

		return
	}

	change, err := s.lists.ChangeAssignment(r.Context(), userID, req.ID, strings.TrimSpace(req.SendTo))
	if err != nil {
		s.handleListError(w, "Unable to change the assignment", err)

		return
	}

	s.publishChange(change)
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.ClientConfig())
}

func (s *Server) handleTelemetry(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(UserHeader)

	var req telemetryRequest
	if err := decode(r.Body, &req); err != nil {
		s.handleErrorWithCode(w, http.StatusBadRequest, "Unable to get telemetry payload from JSON.", err)

		return
	}

	if err := req.IsValid(); err != nil {
		s.handleErrorWithCode(w, http.StatusBadRequest, "Unable to validate telemetry payload.", err)

		return
	}

	log.Info().
		Str("user", userID).
		Str("event", "frontend_"+req.Event).
		Interface("properties", req.Properties).
		Msg("telemetry")
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	s.hub.ServeWS(w, r, r.Header.Get(UserHeader))
}
