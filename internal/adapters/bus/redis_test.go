package bus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dkeye/roomchat/internal/core"
	"github.com/dkeye/roomchat/internal/domain"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestPublish_WritesRoomChannel(t *testing.T) {
	req := require.New(t)

	// Given
	db, mock := redismock.NewClientMock()
	b := NewRedisBus(db, "roomchat")
	b.origin = "node-a"
	mock.ExpectPublish("roomchat:lobby",
		`{"origin":"node-a","room":"lobby","type":"status","msg":"Alice has entered the room."}`).SetVal(1)

	// When
	err := b.publish(context.Background(), message{
		Origin: "node-a", Room: "lobby", Type: core.EventStatus, Msg: "Alice has entered the room.",
	})

	// Then
	req.NoError(err)
	req.NoError(mock.ExpectationsWereMet())
}

func TestPublish_ReturnsRedisError(t *testing.T) {
	req := require.New(t)

	// Given
	db, mock := redismock.NewClientMock()
	b := NewRedisBus(db, "roomchat")
	b.origin = "node-a"
	mock.ExpectPublish("roomchat:lobby",
		`{"origin":"node-a","room":"lobby","type":"message","msg":"Alice: hi"}`).SetErr(errors.New("down"))

	// When
	err := b.publish(context.Background(), message{Origin: "node-a", Room: "lobby", Type: core.EventMessage, Msg: "Alice: hi"})

	// Then
	req.EqualError(err, "down")
}

func TestPublish_EnqueuesWithoutBlocking(t *testing.T) {
	req := require.New(t)

	// Given a bus whose queue nobody drains
	db, _ := redismock.NewClientMock()
	b := NewRedisBus(db, "roomchat")

	// When more events than the queue holds are published
	for i := 0; i < queueSize+10; i++ {
		b.Publish("lobby", core.Event{Type: core.EventMessage, Msg: "x"})
	}

	// Then the overflow is dropped
	req.Len(b.queue, queueSize)
	m := <-b.queue
	req.Equal(b.origin, m.Origin)
	req.Equal(domain.RoomName("lobby"), m.Room)
}

func TestHandle_DeliversRemoteEvents(t *testing.T) {
	req := require.New(t)

	// Given
	db, _ := redismock.NewClientMock()
	b := NewRedisBus(db, "roomchat")
	b.origin = "node-a"

	var rooms []domain.RoomName
	var events []core.Event
	deliver := func(room domain.RoomName, ev core.Event) {
		rooms = append(rooms, room)
		events = append(events, ev)
	}

	// When
	b.handle("roomchat:lobby", `{"origin":"node-b","room":"lobby","type":"message","msg":"Bob: hi"}`, deliver)
	b.handle("roomchat:lobby", `{"origin":"node-a","room":"lobby","type":"message","msg":"Alice: hi"}`, deliver)
	b.handle("roomchat:lobby", `not json`, deliver)
	b.handle("roomchat:den", `{"origin":"node-c","type":"status","msg":"Carol has left the room."}`, deliver)

	// Then own and malformed events are skipped
	req.Equal([]domain.RoomName{"lobby", "den"}, rooms)
	req.Equal(core.Event{Type: core.EventMessage, Msg: "Bob: hi"}, events[0])
	req.Equal(core.Event{Type: core.EventStatus, Msg: "Carol has left the room."}, events[1])
}

func TestConsume_DeliversUntilChannelCloses(t *testing.T) {
	req := require.New(t)

	// Given
	db, _ := redismock.NewClientMock()
	b := NewRedisBus(db, "roomchat")
	b.origin = "node-a"
	ch := make(chan *redis.Message, 2)
	ch <- &redis.Message{Channel: "roomchat:lobby", Payload: `{"origin":"node-b","room":"lobby","type":"message","msg":"Bob: hi"}`}
	ch <- &redis.Message{Channel: "roomchat:lobby", Payload: `{"origin":"node-a","room":"lobby","type":"message","msg":"Alice: hi"}`}
	close(ch)

	var got []core.Event

	// When
	b.consume(context.Background(), ch, func(_ domain.RoomName, ev core.Event) { got = append(got, ev) })

	// Then
	req.Equal([]core.Event{{Type: core.EventMessage, Msg: "Bob: hi"}}, got)
}

func TestConsume_StopsOnCancel(t *testing.T) {
	req := require.New(t)

	// Given a subscription that never yields
	db, _ := redismock.NewClientMock()
	b := NewRedisBus(db, "roomchat")
	ctx, cancel := context.WithCancel(context.Background())

	// When
	done := make(chan struct{})
	go func() {
		b.consume(ctx, make(chan *redis.Message), func(domain.RoomName, core.Event) {})
		close(done)
	}()
	cancel()

	// Then
	req.Eventually(func() bool {
		select {
		case <-done:
			return true
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}

func TestRun_ExitsWhenContextDone(t *testing.T) {
	req := require.New(t)

	// Given a client whose server is unreachable and an already cancelled context
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer rdb.Close()
	b := NewRedisBus(rdb, "roomchat")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// When
	done := make(chan struct{})
	go func() {
		b.Run(ctx, func(domain.RoomName, core.Event) {})
		close(done)
	}()

	// Then
	req.Eventually(func() bool {
		select {
		case <-done:
			return true
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}
