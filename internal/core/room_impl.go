package core

import (
	"sync"

	"github.com/dkeye/roomchat/internal/domain"
)

// roomImpl is a threadsafe in-memory member set.
// It never closes adapter-owned resources.
type roomImpl struct {
	name  domain.RoomName
	mu    sync.RWMutex
	bySID map[SessionID]MemberSession
}

func newRoom(name domain.RoomName) *roomImpl {
	return &roomImpl{name: name, bySID: make(map[SessionID]MemberSession)}
}

func (r *roomImpl) add(ms MemberSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bySID[ms.ID()] = ms
}

// remove reports how many members are left.
func (r *roomImpl) remove(sid SessionID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.bySID, sid)
	return len(r.bySID)
}

func (r *roomImpl) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bySID)
}

func (r *roomImpl) snapshot() []MemberSession {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]MemberSession, 0, len(r.bySID))
	for _, ms := range r.bySID {
		out = append(out, ms)
	}
	return out
}
