package core

import (
	"fmt"
	"sync"

	"github.com/dkeye/roomchat/internal/domain"
	"github.com/rs/zerolog/log"
)

// roomRegistry owns the room map and the session -> room index.
// Membership changes take the registry lock and then the room lock;
// snapshots only take the room lock.
type roomRegistry struct {
	mu     sync.RWMutex
	rooms  map[domain.RoomName]*roomImpl
	roomOf map[SessionID]domain.RoomName
}

func NewRoomRegistry() RoomRegistry {
	return &roomRegistry{
		rooms:  make(map[domain.RoomName]*roomImpl),
		roomOf: make(map[SessionID]domain.RoomName),
	}
}

func (r *roomRegistry) Join(ms MemberSession, name domain.RoomName) error {
	if name == "" {
		return fmt.Errorf("%w: empty room", domain.ErrIdentity)
	}
	sid := ms.ID()

	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.roomOf[sid]; ok {
		if cur != name {
			return fmt.Errorf("%w: %s is in %q", domain.ErrAlreadyInDifferentRoom, sid, cur)
		}
		return nil
	}
	room, ok := r.rooms[name]
	if !ok {
		room = newRoom(name)
		r.rooms[name] = room
		log.Debug().Str("module", "core.registry").Str("room", string(name)).Msg("room created")
	}
	room.add(ms)
	r.roomOf[sid] = name
	log.Info().Str("module", "core.registry").Str("sid", string(sid)).Str("room", string(name)).Msg("member added")
	return nil
}

func (r *roomRegistry) Leave(sid SessionID) (domain.RoomName, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name, ok := r.roomOf[sid]
	if !ok {
		return "", false
	}
	delete(r.roomOf, sid)
	if room, ok := r.rooms[name]; ok && room.remove(sid) == 0 {
		delete(r.rooms, name)
		log.Debug().Str("module", "core.registry").Str("room", string(name)).Msg("room emptied")
	}
	log.Info().Str("module", "core.registry").Str("sid", string(sid)).Str("room", string(name)).Msg("member removed")
	return name, true
}

func (r *roomRegistry) room(name domain.RoomName) (*roomImpl, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[name]
	return room, ok
}

func (r *roomRegistry) MembersOf(name domain.RoomName) []MemberSession {
	room, ok := r.room(name)
	if !ok {
		return []MemberSession{}
	}
	return room.snapshot()
}

func (r *roomRegistry) RoomOf(sid SessionID) (domain.RoomName, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.roomOf[sid]
	return name, ok
}

func (r *roomRegistry) Count(name domain.RoomName) int {
	room, ok := r.room(name)
	if !ok {
		return 0
	}
	return room.count()
}

func (r *roomRegistry) List() []RoomInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]RoomInfo, 0, len(r.rooms))
	for name, room := range r.rooms {
		out = append(out, RoomInfo{Name: name, MemberCount: room.count()})
	}
	return out
}
