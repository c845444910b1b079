package orch

import (
	"fmt"

	"github.com/dkeye/roomchat/internal/app"
	"github.com/dkeye/roomchat/internal/core"
	"github.com/dkeye/roomchat/internal/domain"
)

// OnText relays a chat line to the sender's room, sender included.
func (o *Orchestrator) OnText(sid core.SessionID, text string) error {
	switch o.Registry.State(sid) {
	case app.StateClosed:
		return nil
	case app.StateUnjoined:
		return domain.ErrNotJoined
	}
	sess, ok := o.Registry.GetSession(sid)
	if !ok {
		return nil
	}
	room, ok := o.Rooms.RoomOf(sid)
	if !ok {
		return domain.ErrNotJoined
	}
	o.publish(room, core.Event{
		Type: core.EventMessage,
		Msg:  fmt.Sprintf("%s: %s", sess.Identity().Name(), text),
	})
	return nil
}
