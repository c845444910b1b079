package core

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dkeye/roomchat/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/iter"
)

// Outbound event types.
const (
	EventStatus  = "status"
	EventMessage = "message"
)

// Event is one outbound room event.
type Event struct {
	Type string `json:"type"`
	Msg  string `json:"msg"`
}

func (e Event) Encode() (Frame, error) {
	return json.Marshal(e)
}

// DeliveryFailure is a per-recipient send error. Non-fatal.
type DeliveryFailure struct {
	SID SessionID
	Err error
}

func (f DeliveryFailure) Error() string {
	return fmt.Sprintf("deliver to %s: %v", f.SID, f.Err)
}

func (f DeliveryFailure) Unwrap() error { return f.Err }

// PublishResult reports delivery stats/backpressure to orchestrator.
type PublishResult struct {
	SentTo int
	Failed []DeliveryFailure
}

// Broadcaster fans one event out to a snapshot of a room.
type Broadcaster struct {
	rooms RoomRegistry
	// MaxParallel bounds delivery goroutines per broadcast; 0 means GOMAXPROCS.
	MaxParallel int
}

func NewBroadcaster(rooms RoomRegistry) *Broadcaster {
	return &Broadcaster{rooms: rooms}
}

// Broadcast delivers ev to every member of room except exclude ("" for none).
// It returns once every recipient has been attempted.
func (b *Broadcaster) Broadcast(room domain.RoomName, ev Event, exclude SessionID) PublishResult {
	frame, err := ev.Encode()
	if err != nil {
		log.Error().Err(err).Str("module", "core.broadcast").Msg("encode event")
		return PublishResult{}
	}
	return b.deliver(room, frame, exclude)
}

func (b *Broadcaster) deliver(room domain.RoomName, frame Frame, exclude SessionID) PublishResult {
	members := b.rooms.MembersOf(room)

	var (
		mu  sync.Mutex
		res PublishResult
	)
	it := iter.Iterator[MemberSession]{MaxGoroutines: b.MaxParallel}
	it.ForEach(members, func(m *MemberSession) {
		ms := *m
		if ms.ID() == exclude {
			return
		}
		err := ms.Signal().TrySend(frame)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			res.Failed = append(res.Failed, DeliveryFailure{SID: ms.ID(), Err: err})
			return
		}
		res.SentTo++
	})

	for _, f := range res.Failed {
		log.Warn().Err(f.Err).Str("module", "core.broadcast").Str("room", string(room)).Str("sid", string(f.SID)).Msg("delivery failed")
	}
	log.Debug().Str("module", "core.broadcast").Str("room", string(room)).Str("exclude", string(exclude)).
		Int("sent_to", res.SentTo).Int("failed", len(res.Failed)).Msg("broadcast result")
	return res
}
