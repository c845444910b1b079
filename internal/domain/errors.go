package domain

import "errors"

var (
	ErrIdentity               = errors.New("invalid identity")
	ErrNotJoined              = errors.New("not joined")
	ErrAlreadyInDifferentRoom = errors.New("already in a different room")
)
