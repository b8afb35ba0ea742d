//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"club-hub/domain"
	"club-hub/domain/event"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself; the supervisor does.
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker
// for logging and supervision, avoiding manual naming in the interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink receives domain events fanned out to one connection.
// Consume must never block the dispatcher.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// IRegistry is the room registry owned by the server process: sessions
// for global publishing, room membership for scoped publishing. There is
// deliberately no ambient singleton; handlers receive it explicitly.
type IRegistry interface {
	Register(connID string, sink EventSink)
	Subscribe(connID string, room domain.RoomKey)
	Drop(connID string)
	GetSinksForRoom(room domain.RoomKey) []EventSink
	GetAllSinks() []EventSink
	GetSink(connID string) (EventSink, bool)
}
