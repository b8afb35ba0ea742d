package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/samber/lo"

	"club-hub/auth"
	"club-hub/domain"
	"club-hub/errors"
	"club-hub/services"
)

var validate = validator.New()

type ClubServer struct {
	log     *slog.Logger
	service services.IClubService
}

type clubSummaryDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Icon         string `json:"icon"`
	MembersCount int    `json:"membersCount"`
	Joined       bool   `json:"joined"`
}

type clubDetailDTO struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

type membershipRequest struct {
	ClubID string `json:"clubId" validate:"required"`
}

type messageDTO struct {
	ID        string    `json:"id"`
	ClubID    string    `json:"clubId"`
	Author    memberDTO `json:"author"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

type memberDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	StudentID string `json:"studentId,omitempty"`
	Avatar    string `json:"avatar,omitempty"`
}

func (s *ClubServer) ListClubs(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())
	summaries, err := s.service.ListClubs(r.URL.Query().Get("search"), actor)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lo.Map(summaries, func(c services.ClubSummary, _ int) clubSummaryDTO {
		return clubSummaryDTO{ID: c.ID, Name: c.Name, Icon: c.Icon,
			MembersCount: c.MembersCount, Joined: c.Joined}
	}))
}

func (s *ClubServer) GetClub(w http.ResponseWriter, r *http.Request) {
	club, err := s.service.GetClub(mux.Vars(r)["clubId"])
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, clubDetailDTO{Name: club.Name, Icon: club.Icon})
}

func (s *ClubServer) Join(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeMembership(w, r)
	if !ok {
		return
	}
	if err := s.service.Join(auth.ActorFromContext(r.Context()), req.ClubID); err != nil {
		s.fail(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Joined club successfully")
}

func (s *ClubServer) Exit(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeMembership(w, r)
	if !ok {
		return
	}
	if err := s.service.Exit(auth.ActorFromContext(r.Context()), req.ClubID); err != nil {
		s.fail(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Exited club successfully")
}

func (s *ClubServer) ChatHistory(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())
	history, err := s.service.ChatHistory(actor, mux.Vars(r)["clubId"])
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lo.Map(history, func(m services.MessageView, _ int) messageDTO {
		return messageDTO{
			ID:     m.ID.String(),
			ClubID: m.ClubID,
			Author: memberDTO{ID: m.Author.ID, Name: m.Author.Name, Avatar: m.Author.Avatar},
			Text:   m.Text, Timestamp: m.At,
		}
	}))
}

func (s *ClubServer) Members(w http.ResponseWriter, r *http.Request) {
	members, err := s.service.Members(mux.Vars(r)["clubId"])
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lo.Map(members, func(p domain.Profile, _ int) memberDTO {
		return memberDTO{ID: p.ID, Name: p.Name, Email: p.Email,
			StudentID: p.StudentID, Avatar: p.Avatar}
	}))
}

func (s *ClubServer) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	messageID, err := uuid.Parse(vars["messageId"])
	if err != nil {
		// An unparseable identifier can never match a stored message.
		s.fail(w, errors.ErrMessageNotFound)
		return
	}
	if err := s.service.DeleteMessage(vars["clubId"], messageID); err != nil {
		s.fail(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Message deleted successfully")
}

func (s *ClubServer) decodeMembership(w http.ResponseWriter, r *http.Request) (membershipRequest, bool) {
	var req membershipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Malformed request body")
		return req, false
	}
	if err := validate.Struct(req); err != nil {
		writeMessage(w, http.StatusBadRequest, "clubId is required")
		return req, false
	}
	return req, true
}

// fail maps a domain error to its status. Unexpected errors keep their
// detail in the logs and out of the response.
func (s *ClubServer) fail(w http.ResponseWriter, err error) {
	status := errors.MapToHTTPStatus(err)
	if status == http.StatusInternalServerError {
		s.log.Error("Request failed", "error", err)
		writeMessage(w, status, "Server error")
		return
	}
	writeMessage(w, status, err.Error())
}
