package core

import (
	"github.com/dkeye/roomchat/internal/domain"
)

// MemberDTO is a read-only view for APIs (no transport fields).
type MemberDTO struct {
	ID       SessionID `json:"id"`
	Username string    `json:"username"`
}

type RoomInfo struct {
	Name        domain.RoomName `json:"name"`
	MemberCount int             `json:"client_count"`
}

// RoomRegistry tracks which sessions belong to which room.
// A session is a member of at most one room.
type RoomRegistry interface {
	Join(ms MemberSession, room domain.RoomName) error
	Leave(sid SessionID) (domain.RoomName, bool)
	MembersOf(room domain.RoomName) []MemberSession
	RoomOf(sid SessionID) (domain.RoomName, bool)
	Count(room domain.RoomName) int
	List() []RoomInfo
}

// Snapshot converts sessions to their API view.
func Snapshot(members []MemberSession) []MemberDTO {
	out := make([]MemberDTO, 0, len(members))
	for _, ms := range members {
		out = append(out, MemberDTO{ID: ms.ID(), Username: ms.Identity().Name()})
	}
	return out
}
