package app

import (
	"github.com/dkeye/roomchat/internal/core"
	"github.com/dkeye/roomchat/internal/domain"
)

type FailureAction int

const (
	NoAction FailureAction = iota
	KickMember
)

// Policy decides what happens to a member a broadcast could not reach.
type Policy interface {
	OnDeliveryFailure(room domain.RoomName, failure core.DeliveryFailure) FailureAction
}

// SimplePolicy kicks every unreachable member so membership heals itself.
type SimplePolicy struct{}

func (SimplePolicy) OnDeliveryFailure(domain.RoomName, core.DeliveryFailure) FailureAction {
	return KickMember
}
