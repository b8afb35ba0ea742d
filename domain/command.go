package domain

// RoomKey identifies a broadcast group. Club and game rooms live in
// distinct key spaces so a club and a game sharing an identifier never
// share a room.
type RoomKey string

func ClubRoom(clubID string) RoomKey { return RoomKey("club:" + clubID) }
func GameRoom(gameID string) RoomKey { return RoomKey("game:" + gameID) }

type Command interface {
	Room() RoomKey
}

// PostClubMessageCommand carries a club chat post from a connection to
// the dispatcher. ConnID names the sending connection so the result can
// be acknowledged to it alone. The timestamp is assigned at append time
// by the dispatcher, not here.
type PostClubMessageCommand struct {
	ClubID   string
	AuthorID string
	Text     string
	ConnID   string
}

func (c PostClubMessageCommand) Room() RoomKey { return ClubRoom(c.ClubID) }

// PostGameMessageCommand is the game-chat twin of the club post. Kept as
// a distinct command kind on purpose.
type PostGameMessageCommand struct {
	GameID   string
	AuthorID string
	Text     string
	ConnID   string
}

func (c PostGameMessageCommand) Room() RoomKey { return GameRoom(c.GameID) }
