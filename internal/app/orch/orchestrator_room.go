package orch

import (
	"fmt"

	"github.com/dkeye/roomchat/internal/app"
	"github.com/dkeye/roomchat/internal/core"
	"github.com/rs/zerolog/log"
)

// OnJoined adds the session to its identity's room and announces it to
// the whole room, the joiner included. Joining again re-announces.
func (o *Orchestrator) OnJoined(sid core.SessionID) error {
	sess, ok := o.Registry.GetSession(sid)
	if !ok || o.Registry.State(sid) == app.StateClosed {
		return nil
	}
	id := sess.Identity()
	if err := id.Validate(); err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("sid", string(sid)).Msg("join rejected")
		return err
	}
	if err := o.Rooms.Join(sess, id.Room()); err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("sid", string(sid)).Msg("join rejected")
		return err
	}
	if !o.Registry.Transition(sid, app.StateUnjoined, app.StateJoined) &&
		o.Registry.State(sid) != app.StateJoined {
		// closed concurrently, e.g. kicked
		o.Rooms.Leave(sid)
		return nil
	}

	log.Info().Str("module", "orch").Str("sid", string(sid)).Str("room", string(id.Room())).Msg("joined")
	o.publish(id.Room(), core.Event{
		Type: core.EventStatus,
		Msg:  fmt.Sprintf("%s has entered the room.", id.Name()),
	})
	return nil
}

// OnLeft handles an explicit leave. Ignored unless joined.
func (o *Orchestrator) OnLeft(sid core.SessionID) error {
	o.depart(sid)
	return nil
}

// OnDisconnect is an implicit leave; it never announces twice.
func (o *Orchestrator) OnDisconnect(sid core.SessionID) {
	o.closeSession(sid)
	o.Registry.Cancel(sid)
	o.Registry.Unbind(sid)
	log.Info().Str("module", "orch").Str("sid", string(sid)).Msg("disconnected")
}

// KickBySID removes a member and closes its transport.
func (o *Orchestrator) KickBySID(sid core.SessionID) {
	o.closeSession(sid)
	if sess, ok := o.Registry.GetSession(sid); ok {
		sess.Signal().Close()
	}
	o.Registry.Cancel(sid)
}

func (o *Orchestrator) closeSession(sid core.SessionID) {
	if o.depart(sid) {
		return
	}
	o.Registry.Transition(sid, app.StateUnjoined, app.StateClosed)
	o.Rooms.Leave(sid)
}

// depart moves a joined session to closed and tells the remaining
// members. Only the caller that wins the transition announces.
func (o *Orchestrator) depart(sid core.SessionID) bool {
	sess, ok := o.Registry.GetSession(sid)
	if !ok || !o.Registry.Transition(sid, app.StateJoined, app.StateClosed) {
		return false
	}
	room, ok := o.Rooms.Leave(sid)
	if !ok {
		return true
	}
	log.Info().Str("module", "orch").Str("sid", string(sid)).Str("room", string(room)).Msg("left")
	o.publish(room, core.Event{
		Type: core.EventStatus,
		Msg:  fmt.Sprintf("%s has left the room.", sess.Identity().Name()),
	})
	return true
}
