package signal

import (
	"github.com/dkeye/roomchat/internal/core"
	"github.com/rs/zerolog/log"
)

// handleJoined ignores the room in the payload; the handshake room is
// authoritative.
func (ctl *SignalWSController) handleJoined(
	sid core.SessionID,
	conn *WsSignalConn,
) {
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("joined")
	if err := ctl.Orch.OnJoined(sid); err != nil {
		ctl.reportError(conn, err)
	}
}

// handleLeft leaves the room; the socket stays open until the client drops it.
func (ctl *SignalWSController) handleLeft(
	sid core.SessionID,
	conn *WsSignalConn,
) {
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("left")
	if err := ctl.Orch.OnLeft(sid); err != nil {
		ctl.reportError(conn, err)
		return
	}
	ctl.sendJSON(conn, map[string]any{
		"type": "left",
	})
}
