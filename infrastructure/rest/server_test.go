package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"club-hub/auth"
	"club-hub/domain"
	"club-hub/repositories"
	"club-hub/runtime/workers"
	"club-hub/services"
)

type apiFixture struct {
	router http.Handler
	tokens auth.TokenManager
	clubs  repositories.ClubRepository
	actors repositories.ActorRepository
	chat   repositories.ChatLogRepository
}

func newAPIFixture(t *testing.T) apiFixture {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := slog.Default()
	clubs := repositories.NewClubRepository(db)
	actors := repositories.NewActorRepository(db)
	membership := repositories.NewMembershipRepository(db)
	chat := repositories.NewChatLogRepository(db, log)
	service := services.NewClubService(clubs, actors, membership, chat)

	tokens := auth.NewTokenManager([]byte("test-secret"), time.Hour)
	middleware := auth.NewMiddleware(tokens, actors, log)
	health := workers.NewHealthWorker(log, time.Second)

	return apiFixture{
		router: NewRouter(log, service, middleware, health, http.NotFoundHandler()),
		tokens: tokens,
		clubs:  clubs,
		actors: actors,
		chat:   chat,
	}
}

func (f apiFixture) do(t *testing.T, method, target, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, r)
	return w
}

func (f apiFixture) tokenFor(t *testing.T, actorID string, kind domain.ActorKind) string {
	t.Helper()
	token, err := f.tokens.Generate(actorID, kind)
	require.NoError(t, err)
	return token
}

func Test_List_Clubs_Is_Browsable_Anonymously(t *testing.T) {
	req := require.New(t)
	f := newAPIFixture(t)

	req.NoError(f.clubs.SaveClub(domain.Club{ID: "c1", Name: "Chess Society", Members: []string{"u1"}}))
	req.NoError(f.clubs.SaveClub(domain.Club{ID: "c2", Name: "Robotics"}))

	// When listed without any token
	w := f.do(t, http.MethodGet, "/api/clubs?search=chess", "", "")

	req.Equal(http.StatusOK, w.Code)
	var clubs []clubSummaryDTO
	req.NoError(json.Unmarshal(w.Body.Bytes(), &clubs))
	req.Len(clubs, 1)
	req.Equal("Chess Society", clubs[0].Name)
	req.Equal(1, clubs[0].MembersCount)
	req.False(clubs[0].Joined)
}

func Test_Join_Requires_Authentication(t *testing.T) {
	req := require.New(t)
	f := newAPIFixture(t)
	req.NoError(f.clubs.SaveClub(domain.Club{ID: "c1", Name: "Chess"}))

	// When an anonymous caller tries to join
	w := f.do(t, http.MethodPost, "/api/clubs/join", `{"clubId":"c1"}`, "")

	req.Equal(http.StatusUnauthorized, w.Code)
}

func Test_Join_And_Exit_With_Token(t *testing.T) {
	req := require.New(t)
	f := newAPIFixture(t)

	req.NoError(f.clubs.SaveClub(domain.Club{ID: "c1", Name: "Chess"}))
	req.NoError(f.actors.SaveUser(domain.User{ID: "u1", Name: "Alice"}))
	token := f.tokenFor(t, "u1", domain.KindUser)

	// When joining with a valid token
	w := f.do(t, http.MethodPost, "/api/clubs/join", `{"clubId":"c1"}`, token)
	req.Equal(http.StatusOK, w.Code)
	req.Contains(w.Body.String(), "Joined club successfully")

	club, err := f.clubs.GetClub("c1")
	req.NoError(err)
	req.Equal([]string{"u1"}, club.Members)

	// When exiting again
	w = f.do(t, http.MethodPost, "/api/clubs/exit", `{"clubId":"c1"}`, token)
	req.Equal(http.StatusOK, w.Code)

	club, err = f.clubs.GetClub("c1")
	req.NoError(err)
	req.Empty(club.Members)
}

func Test_Join_Rejects_Missing_ClubId(t *testing.T) {
	req := require.New(t)
	f := newAPIFixture(t)
	req.NoError(f.actors.SaveUser(domain.User{ID: "u1", Name: "Alice"}))

	w := f.do(t, http.MethodPost, "/api/clubs/join", `{}`, f.tokenFor(t, "u1", domain.KindUser))
	req.Equal(http.StatusBadRequest, w.Code)
}

func Test_Chat_History_Is_Gated_By_Membership(t *testing.T) {
	req := require.New(t)
	f := newAPIFixture(t)

	req.NoError(f.clubs.SaveClub(domain.Club{ID: "c1", Name: "Chess", Members: []string{"u1"}}))
	req.NoError(f.actors.SaveUser(domain.User{ID: "u1", Name: "Alice", Clubs: []string{"c1"}}))
	req.NoError(f.actors.SaveUser(domain.User{ID: "u2", Name: "Bob"}))
	req.NoError(f.chat.AppendClubMessage(domain.Message{
		ID: uuid.New(), ClubID: "c1", AuthorID: "u1", Text: "hello", At: time.Now().UTC()}))

	// A member reads the history
	w := f.do(t, http.MethodGet, "/api/clubs/c1/chat", "", f.tokenFor(t, "u1", domain.KindUser))
	req.Equal(http.StatusOK, w.Code)
	var history []messageDTO
	req.NoError(json.Unmarshal(w.Body.Bytes(), &history))
	req.Len(history, 1)
	req.Equal("hello", history[0].Text)
	req.Equal("Alice", history[0].Author.Name)

	// A non-member is rejected
	w = f.do(t, http.MethodGet, "/api/clubs/c1/chat", "", f.tokenFor(t, "u2", domain.KindUser))
	req.Equal(http.StatusForbidden, w.Code)

	// So is an anonymous caller
	w = f.do(t, http.MethodGet, "/api/clubs/c1/chat", "", "")
	req.Equal(http.StatusForbidden, w.Code)
}

func Test_Members_Roster_Is_Open(t *testing.T) {
	req := require.New(t)
	f := newAPIFixture(t)

	req.NoError(f.clubs.SaveClub(domain.Club{ID: "c1", Name: "Chess", Members: []string{"u1"}}))
	req.NoError(f.actors.SaveUser(domain.User{
		ID: "u1", Name: "Alice", Email: "alice@campus.edu", StudentID: "S123"}))

	// Roster reads carry no gate at all
	w := f.do(t, http.MethodGet, "/api/clubs/c1/members", "", "")
	req.Equal(http.StatusOK, w.Code)
	var members []memberDTO
	req.NoError(json.Unmarshal(w.Body.Bytes(), &members))
	req.Len(members, 1)
	req.Equal("alice@campus.edu", members[0].Email)
	req.Equal("S123", members[0].StudentID)
}

func Test_Delete_Message_Is_Organizer_Only(t *testing.T) {
	req := require.New(t)
	f := newAPIFixture(t)

	req.NoError(f.clubs.SaveClub(domain.Club{ID: "c1", Name: "Chess", Members: []string{"u1"}}))
	req.NoError(f.actors.SaveUser(domain.User{ID: "u1", Name: "Alice"}))
	req.NoError(f.actors.SaveOrganizer(domain.Organizer{ID: "o1", Name: "Olga"}))
	msg := domain.Message{ID: uuid.New(), ClubID: "c1", AuthorID: "u1",
		Text: "hello", At: time.Now().UTC()}
	req.NoError(f.chat.AppendClubMessage(msg))
	target := "/api/clubs/c1/chat/" + msg.ID.String()

	// Anonymous: 401
	w := f.do(t, http.MethodDelete, target, "", "")
	req.Equal(http.StatusUnauthorized, w.Code)

	// Regular user: 403
	w = f.do(t, http.MethodDelete, target, "", f.tokenFor(t, "u1", domain.KindUser))
	req.Equal(http.StatusForbidden, w.Code)

	// Organizer: deletes
	w = f.do(t, http.MethodDelete, target, "", f.tokenFor(t, "o1", domain.KindOrganizer))
	req.Equal(http.StatusOK, w.Code)

	stored, err := f.chat.ListClubMessages("c1")
	req.NoError(err)
	req.Empty(stored)

	// Deleting again: 404
	w = f.do(t, http.MethodDelete, target, "", f.tokenFor(t, "o1", domain.KindOrganizer))
	req.Equal(http.StatusNotFound, w.Code)
}

func Test_Delete_With_Unparseable_Id_Is_NotFound(t *testing.T) {
	req := require.New(t)
	f := newAPIFixture(t)

	req.NoError(f.clubs.SaveClub(domain.Club{ID: "c1", Name: "Chess"}))
	req.NoError(f.actors.SaveOrganizer(domain.Organizer{ID: "o1", Name: "Olga"}))

	w := f.do(t, http.MethodDelete, "/api/clubs/c1/chat/not-a-uuid", "",
		f.tokenFor(t, "o1", domain.KindOrganizer))
	req.Equal(http.StatusNotFound, w.Code)
}

func Test_Unknown_Club_Detail_Is_NotFound(t *testing.T) {
	req := require.New(t)
	f := newAPIFixture(t)

	w := f.do(t, http.MethodGet, "/api/clubs/missing", "", "")
	req.Equal(http.StatusNotFound, w.Code)
}

func Test_Invalid_Token_Falls_Back_To_Anonymous(t *testing.T) {
	req := require.New(t)
	f := newAPIFixture(t)
	req.NoError(f.clubs.SaveClub(domain.Club{ID: "c1", Name: "Chess"}))

	// Browsing still works with a garbage token
	w := f.do(t, http.MethodGet, "/api/clubs", "", "garbage")
	req.Equal(http.StatusOK, w.Code)

	// But the mutation behind it sees no actor
	w = f.do(t, http.MethodPost, "/api/clubs/join", `{"clubId":"c1"}`, "garbage")
	req.Equal(http.StatusUnauthorized, w.Code)
}

func Test_Healthz_Responds(t *testing.T) {
	req := require.New(t)
	f := newAPIFixture(t)

	w := f.do(t, http.MethodGet, "/healthz", "", "")
	req.Equal(http.StatusOK, w.Code)
	req.Contains(w.Body.String(), `"status":"ok"`)
}
