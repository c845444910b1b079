package domain

// RoomName identifies a room. Case-sensitive, supplied by clients.
type RoomName string
