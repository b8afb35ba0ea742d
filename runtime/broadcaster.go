package runtime

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"club-hub/contract"
	"club-hub/domain"
	"club-hub/domain/event"
	"club-hub/errors"
	"club-hub/repositories"
)

// Ensure *Broadcaster satisfies contract.Worker at compile time.
var _ contract.Worker = (*Broadcaster)(nil)

// Broadcaster bridges real-time connections with the chat log. Commands
// from all connections funnel through one buffered channel drained by a
// single Run loop, so posts to the same club are serialized in arrival
// order: the append happens before the next command is dequeued.
//
// Delivery is at-most-once and best-effort. The message is durably
// appended before any broadcast; a connection that drops during fan-out
// simply misses it until its next history fetch. The sender alone gets
// an explicit PostResult instead of silence.
type Broadcaster struct {
	log         *slog.Logger
	registry    contract.IRegistry
	clubs       repositories.IClubRepository
	chat        repositories.IChatLogRepository
	actors      repositories.IActorRepository
	commands    chan domain.Command
	profiles    *lru.Cache[string, domain.Profile]
	sinkTimeout time.Duration
}

func NewBroadcaster(log *slog.Logger, registry contract.IRegistry,
	clubs repositories.IClubRepository, chat repositories.IChatLogRepository,
	actors repositories.IActorRepository,
	bufferSize, profileCacheSize int, sinkTimeout time.Duration) (*Broadcaster, error) {
	if profileCacheSize <= 0 {
		profileCacheSize = 1
	}
	cache, err := lru.New[string, domain.Profile](profileCacheSize)
	if err != nil {
		return nil, err
	}
	return &Broadcaster{
		log:         log,
		registry:    registry,
		clubs:       clubs,
		chat:        chat,
		actors:      actors,
		commands:    make(chan domain.Command, bufferSize),
		profiles:    cache,
		sinkTimeout: sinkTimeout,
	}, nil
}

// Dispatch enqueues a command without blocking the caller. A full
// channel drops the command; the connection learns nothing, which is
// the same contract as a lost datagram.
func (b *Broadcaster) Dispatch(cmd domain.Command) {
	select {
	case b.commands <- cmd:
	default:
		b.log.Warn(fmt.Sprintf("Command channel full, dropping command for room %s", cmd.Room()))
	}
}

// JoinRoom subscribes a connection to a broadcast room. No authorization
// check, by contract: membership is enforced on the history-read path
// only.
func (b *Broadcaster) JoinRoom(connID string, room domain.RoomKey) {
	b.registry.Subscribe(connID, room)
}

// Connect registers a freshly established connection for global
// delivery; Disconnect tears everything down.
func (b *Broadcaster) Connect(connID string, sink contract.EventSink) {
	b.registry.Register(connID, sink)
}

func (b *Broadcaster) Disconnect(connID string) {
	b.registry.Drop(connID)
}

// Run drains the command channel until the context is canceled. It runs
// under the supervisor; a panic in a handler restarts the loop.
func (b *Broadcaster) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			b.log.Debug("Stopping broadcaster")
			return ctx.Err()
		case cmd, ok := <-b.commands:
			if !ok {
				return nil
			}
			switch c := cmd.(type) {
			case domain.PostClubMessageCommand:
				b.handleClubPost(ctx, c)
			case domain.PostGameMessageCommand:
				b.handleGamePost(ctx, c)
			default:
				b.log.Warn(fmt.Sprintf("Unknown command type for room %s", cmd.Room()))
			}
		}
	}
}

// handleClubPost persists then fans out one club message: club room
// first, then the unscoped notification channel, then the sender's ack.
func (b *Broadcaster) handleClubPost(ctx context.Context, cmd domain.PostClubMessageCommand) {
	if _, err := b.clubs.GetClub(cmd.ClubID); err != nil {
		if !stderrors.Is(err, errors.ErrClubNotFound) {
			b.log.Error("Club lookup failed", "club_id", cmd.ClubID, "error", err)
		}
		b.ack(ctx, cmd.ConnID, event.PostResult{
			Scope: "club", TargetID: cmd.ClubID, OK: false, Reason: err.Error(),
		})
		return
	}

	msg := domain.Message{
		ID:       uuid.New(),
		ClubID:   cmd.ClubID,
		AuthorID: cmd.AuthorID,
		Text:     cmd.Text,
		At:       time.Now().UTC(),
	}
	if err := b.chat.AppendClubMessage(msg); err != nil {
		b.log.Error("Club message append failed", "club_id", cmd.ClubID, "error", err)
		b.ack(ctx, cmd.ConnID, event.PostResult{
			Scope: "club", TargetID: cmd.ClubID, OK: false, Reason: "append failed",
		})
		return
	}

	evt := event.ClubMessagePosted{
		MessageID: msg.ID,
		ClubID:    msg.ClubID,
		Author:    b.resolveProfile(msg.AuthorID),
		Text:      msg.Text,
		At:        msg.At,
	}
	b.publish(ctx, b.registry.GetSinksForRoom(cmd.Room()), evt)
	b.publish(ctx, b.registry.GetAllSinks(), evt)
	b.ack(ctx, cmd.ConnID, event.PostResult{
		Scope: "club", TargetID: cmd.ClubID, MessageID: msg.ID, OK: true,
	})
}

// handleGamePost mirrors the club path for the game chat kind: no
// existence check on the game, room-scoped broadcast only.
func (b *Broadcaster) handleGamePost(ctx context.Context, cmd domain.PostGameMessageCommand) {
	msg := domain.GameMessage{
		ID:       uuid.New(),
		GameID:   cmd.GameID,
		AuthorID: cmd.AuthorID,
		Text:     cmd.Text,
		At:       time.Now().UTC(),
	}
	if err := b.chat.AppendGameMessage(msg); err != nil {
		b.log.Error("Game message append failed", "game_id", cmd.GameID, "error", err)
		b.ack(ctx, cmd.ConnID, event.PostResult{
			Scope: "game", TargetID: cmd.GameID, OK: false, Reason: "append failed",
		})
		return
	}

	evt := event.GameMessagePosted{
		MessageID: msg.ID,
		GameID:    msg.GameID,
		Author:    b.resolveProfile(msg.AuthorID),
		Text:      msg.Text,
		At:        msg.At,
	}
	b.publish(ctx, b.registry.GetSinksForRoom(cmd.Room()), evt)
	b.ack(ctx, cmd.ConnID, event.PostResult{
		Scope: "game", TargetID: cmd.GameID, MessageID: msg.ID, OK: true,
	})
}

// publish delivers one event to each sink under a per-sink timeout. A
// slow or gone consumer costs at most sinkTimeout and never aborts the
// rest of the fan-out.
func (b *Broadcaster) publish(ctx context.Context, sinks []contract.EventSink, evt event.DomainEvent) {
	for _, sink := range sinks {
		sinkCtx, cancel := context.WithTimeout(ctx, b.sinkTimeout)
		if err := sink.Consume(sinkCtx, evt); err != nil {
			b.log.Debug("Sink delivery failed", "event", evt.EventName(), "error", err)
		}
		cancel()
	}
}

// ack reports the outcome to the sending connection only. If the sender
// is already gone there is nobody left to tell.
func (b *Broadcaster) ack(ctx context.Context, connID string, result event.PostResult) {
	sink, ok := b.registry.GetSink(connID)
	if !ok {
		return
	}
	sinkCtx, cancel := context.WithTimeout(ctx, b.sinkTimeout)
	defer cancel()
	if err := sink.Consume(sinkCtx, result); err != nil {
		b.log.Debug("Ack delivery failed", "conn_id", connID, "error", err)
	}
}

// resolveProfile enriches an author reference with display name and
// avatar. Profiles are cached; an unknown author degrades to a bare
// identifier rather than blocking the broadcast.
func (b *Broadcaster) resolveProfile(actorID string) domain.Profile {
	if profile, ok := b.profiles.Get(actorID); ok {
		return profile
	}
	profile, err := b.actors.ResolveProfile(actorID)
	if err != nil {
		b.log.Debug("Author profile not resolved", "actor_id", actorID, "error", err)
		return domain.Profile{ID: actorID}
	}
	b.profiles.Add(actorID, profile)
	return profile
}
