package orch

import (
	"context"

	"github.com/dkeye/roomchat/internal/app"
	"github.com/dkeye/roomchat/internal/core"
	"github.com/dkeye/roomchat/internal/domain"
	"github.com/rs/zerolog/log"
)

// Bus relays room events to other server instances.
// Publish must not block the caller.
type Bus interface {
	Publish(room domain.RoomName, ev core.Event)
}

// Orchestrator dispatches inbound connection events to the room
// registry and the broadcaster. Calls for one session are expected in
// arrival order from that session's reader.
type Orchestrator struct {
	Registry    *app.Registry
	Rooms       core.RoomRegistry
	Broadcaster *core.Broadcaster
	Policy      app.Policy
	Bus         Bus
}

// Connect registers a freshly upgraded connection.
func (o *Orchestrator) Connect(sess core.MemberSession, cancel context.CancelFunc) {
	o.Registry.Bind(sess, cancel)
}

func (o *Orchestrator) publish(room domain.RoomName, ev core.Event) core.PublishResult {
	res := o.Broadcaster.Broadcast(room, ev, "")
	o.applyPolicy(room, res.Failed)
	if o.Bus != nil {
		o.Bus.Publish(room, ev)
	}
	return res
}

// DeliverRemote hands an event published by another instance to the
// local members of room.
func (o *Orchestrator) DeliverRemote(room domain.RoomName, ev core.Event) {
	res := o.Broadcaster.Broadcast(room, ev, "")
	o.applyPolicy(room, res.Failed)
}

func (o *Orchestrator) applyPolicy(room domain.RoomName, failed []core.DeliveryFailure) {
	if o.Policy == nil {
		return
	}
	for _, f := range failed {
		switch o.Policy.OnDeliveryFailure(room, f) {
		case app.KickMember:
			log.Info().Str("module", "orch").Str("sid", string(f.SID)).Str("room", string(room)).Msg("kicking unreachable member")
			go o.KickBySID(f.SID)
		case app.NoAction:
		}
	}
}

// Shutdown empties every room and closes every connection without
// announcing departures.
func (o *Orchestrator) Shutdown() {
	for _, sid := range o.Registry.SIDs() {
		if !o.Registry.Transition(sid, app.StateJoined, app.StateClosed) {
			o.Registry.Transition(sid, app.StateUnjoined, app.StateClosed)
		}
		o.Rooms.Leave(sid)
		if sess, ok := o.Registry.GetSession(sid); ok {
			sess.Signal().Close()
		}
		o.Registry.Cancel(sid)
	}
	log.Info().Str("module", "orch").Msg("all sessions closed")
}
