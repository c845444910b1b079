// Package bus relays room events between server instances over Redis
// pub/sub.
package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dkeye/roomchat/internal/core"
	"github.com/dkeye/roomchat/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const queueSize = 1024

// DeliverFunc hands a remote event to the local members of room.
type DeliverFunc func(room domain.RoomName, ev core.Event)

type message struct {
	Origin string          `json:"origin"`
	Room   domain.RoomName `json:"room"`
	Type   string          `json:"type"`
	Msg    string          `json:"msg"`
}

// RedisBus publishes local room events and delivers events published by
// other instances. Events from this instance are never delivered back.
type RedisBus struct {
	rdb    redis.UniversalClient
	prefix string
	origin string
	queue  chan message
}

func NewClient(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return rdb, nil
}

func NewRedisBus(rdb redis.UniversalClient, prefix string) *RedisBus {
	return &RedisBus{
		rdb:    rdb,
		prefix: prefix,
		origin: uuid.NewString(),
		queue:  make(chan message, queueSize),
	}
}

func (b *RedisBus) channel(room domain.RoomName) string {
	return b.prefix + ":" + string(room)
}

// Publish enqueues ev without blocking. When the queue is full the event
// is dropped for remote instances only.
func (b *RedisBus) Publish(room domain.RoomName, ev core.Event) {
	m := message{Origin: b.origin, Room: room, Type: ev.Type, Msg: ev.Msg}
	select {
	case b.queue <- m:
	default:
		log.Warn().Str("module", "bus").Str("room", string(room)).Msg("publish queue full, event dropped")
	}
}

// Run publishes queued events and delivers subscribed ones until ctx is done.
func (b *RedisBus) Run(ctx context.Context, deliver DeliverFunc) {
	go b.publishLoop(ctx)
	b.subscribe(ctx, deliver)
}

func (b *RedisBus) publishLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case m := <-b.queue:
			if err := b.publish(ctx, m); err != nil {
				log.Error().Err(err).Str("module", "bus").Str("room", string(m.Room)).Msg("publish")
			}
		}
	}
}

func (b *RedisBus) publish(ctx context.Context, m message) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel(m.Room), string(raw)).Err()
}

func (b *RedisBus) subscribe(ctx context.Context, deliver DeliverFunc) {
	sub := b.rdb.PSubscribe(ctx, b.prefix+":*")
	defer sub.Close()

	log.Info().Str("module", "bus").Str("origin", b.origin).Str("pattern", b.prefix+":*").Msg("subscribed")
	b.consume(ctx, sub.Channel(), deliver)
}

// consume delivers messages from ch until ctx is done or ch closes.
func (b *RedisBus) consume(ctx context.Context, ch <-chan *redis.Message, deliver DeliverFunc) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			b.handle(msg.Channel, msg.Payload, deliver)
		}
	}
}

func (b *RedisBus) handle(channel, payload string, deliver DeliverFunc) {
	var m message
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		log.Warn().Err(err).Str("module", "bus").Str("channel", channel).Msg("bad bus payload")
		return
	}
	if m.Origin == b.origin {
		return
	}
	if m.Room == "" {
		m.Room = domain.RoomName(strings.TrimPrefix(channel, b.prefix+":"))
	}
	deliver(m.Room, core.Event{Type: m.Type, Msg: m.Msg})
}
