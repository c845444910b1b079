package core

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/dkeye/roomchat/internal/domain"
	"github.com/stretchr/testify/require"
)

type nopSignal struct{}

func (nopSignal) TrySend(Frame) error { return nil }
func (nopSignal) Close()              {}

func member(sid, name, room string) MemberSession {
	return NewMemberSession(SessionID(sid), domain.NewIdentity(name, room), nopSignal{})
}

func TestRoomRegistry_Join_Sets_RoomOf(t *testing.T) {
	req := require.New(t)
	rooms := NewRoomRegistry()
	alice := member("s1", "Alice", "lobby")

	// When Alice joins the lobby
	req.NoError(rooms.Join(alice, "lobby"))

	// Then the reverse lookup resolves the lobby
	room, ok := rooms.RoomOf("s1")
	req.True(ok)
	req.Equal(domain.RoomName("lobby"), room)
	req.Len(rooms.MembersOf("lobby"), 1)
	req.Equal(1, rooms.Count("lobby"))
}

func TestRoomRegistry_Join_Twice_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	rooms := NewRoomRegistry()
	alice := member("s1", "Alice", "lobby")

	req.NoError(rooms.Join(alice, "lobby"))
	req.NoError(rooms.Join(alice, "lobby"))

	req.Len(rooms.MembersOf("lobby"), 1)
}

func TestRoomRegistry_Join_Different_Room_Rejected(t *testing.T) {
	req := require.New(t)
	rooms := NewRoomRegistry()
	alice := member("s1", "Alice", "lobby")

	// Given Alice is in the lobby
	req.NoError(rooms.Join(alice, "lobby"))

	// When she tries another room without leaving
	err := rooms.Join(alice, "kitchen")

	// Then it is rejected and membership is unchanged
	req.True(errors.Is(err, domain.ErrAlreadyInDifferentRoom))
	room, _ := rooms.RoomOf("s1")
	req.Equal(domain.RoomName("lobby"), room)
	req.Empty(rooms.MembersOf("kitchen"))

	// And after leaving the join succeeds
	_, _ = rooms.Leave("s1")
	req.NoError(rooms.Join(alice, "kitchen"))
}

func TestRoomRegistry_Join_Empty_Room(t *testing.T) {
	req := require.New(t)
	rooms := NewRoomRegistry()

	err := rooms.Join(member("s1", "Alice", ""), "")

	req.True(errors.Is(err, domain.ErrIdentity))
	req.Empty(rooms.List())
}

func TestRoomRegistry_Leave_Not_Joined_Is_Noop(t *testing.T) {
	req := require.New(t)
	rooms := NewRoomRegistry()

	room, ok := rooms.Leave("ghost")

	req.False(ok)
	req.Empty(room)
}

func TestRoomRegistry_Leave_Returns_Room_And_Collects_Empty_Room(t *testing.T) {
	req := require.New(t)
	rooms := NewRoomRegistry()
	req.NoError(rooms.Join(member("s1", "Alice", "lobby"), "lobby"))
	req.NoError(rooms.Join(member("s2", "Bob", "lobby"), "lobby"))

	// When Alice leaves
	room, ok := rooms.Leave("s1")

	// Then the lobby is returned and only Bob remains
	req.True(ok)
	req.Equal(domain.RoomName("lobby"), room)
	req.Len(rooms.MembersOf("lobby"), 1)
	_, ok = rooms.RoomOf("s1")
	req.False(ok)

	// When Bob leaves too, the room is gone but still a valid empty room
	_, _ = rooms.Leave("s2")
	req.Empty(rooms.List())
	req.NotNil(rooms.MembersOf("lobby"))
	req.Empty(rooms.MembersOf("lobby"))
	req.Zero(rooms.Count("lobby"))
}

func TestRoomRegistry_MembersOf_Is_A_Snapshot(t *testing.T) {
	req := require.New(t)
	rooms := NewRoomRegistry()
	req.NoError(rooms.Join(member("s1", "Alice", "lobby"), "lobby"))

	// Given a snapshot taken with one member
	snap := rooms.MembersOf("lobby")

	// When another member joins
	req.NoError(rooms.Join(member("s2", "Bob", "lobby"), "lobby"))

	// Then the snapshot is unchanged
	req.Len(snap, 1)
	req.Len(rooms.MembersOf("lobby"), 2)
}

func TestRoomRegistry_List(t *testing.T) {
	req := require.New(t)
	rooms := NewRoomRegistry()
	req.NoError(rooms.Join(member("s1", "Alice", "A"), "A"))
	req.NoError(rooms.Join(member("s2", "Bob", "B"), "B"))
	req.NoError(rooms.Join(member("s3", "Carol", "B"), "B"))

	req.ElementsMatch([]RoomInfo{
		{Name: "A", MemberCount: 1},
		{Name: "B", MemberCount: 2},
	}, rooms.List())

	req.ElementsMatch([]MemberDTO{
		{ID: "s2", Username: "Bob"},
		{ID: "s3", Username: "Carol"},
	}, Snapshot(rooms.MembersOf("B")))
}

func TestRoomRegistry_Concurrent_Join_Leave(t *testing.T) {
	req := require.New(t)
	rooms := NewRoomRegistry()
	const n = 200

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sid := fmt.Sprintf("s%d", i)
			room := domain.RoomName(fmt.Sprintf("room-%d", i%4))
			_ = rooms.Join(member(sid, sid, string(room)), room)
			_ = rooms.MembersOf(room)
			if i%2 == 0 {
				rooms.Leave(SessionID(sid))
			}
		}(i)
	}
	wg.Wait()

	total := 0
	for _, info := range rooms.List() {
		total += info.MemberCount
		req.Len(rooms.MembersOf(info.Name), info.MemberCount)
	}
	req.Equal(n/2, total)
}
