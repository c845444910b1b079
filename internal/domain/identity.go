// Package domain contains entity without logic, just meta-data
package domain

import "fmt"

// Identity is the (name, room) pair a connection carries after the
// handshake. Fields are unexported so it cannot change once created.
type Identity struct {
	name string
	room RoomName
}

// NewIdentity stores the handshake values verbatim. Length rules are
// enforced by the handshake form, not here.
func NewIdentity(name string, room string) Identity {
	return Identity{name: name, room: RoomName(room)}
}

func (i Identity) Name() string   { return i.name }
func (i Identity) Room() RoomName { return i.room }

// Validate rejects identities a misbehaving handshake let through empty.
func (i Identity) Validate() error {
	if i.name == "" {
		return fmt.Errorf("%w: empty name", ErrIdentity)
	}
	if i.room == "" {
		return fmt.Errorf("%w: empty room", ErrIdentity)
	}
	return nil
}
