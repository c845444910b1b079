package signal

import (
	"encoding/json"

	"github.com/dkeye/roomchat/internal/app"
	"github.com/dkeye/roomchat/internal/core"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) handleText(
	sid core.SessionID,
	conn *WsSignalConn,
	data []byte,
) {
	type textPayload struct {
		Type string `json:"type"`
		Msg  string `json:"msg"`
	}
	var p textPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad text payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	// only texts that would be relayed count against the budget
	if ctl.Orch.Registry.State(sid) == app.StateJoined && !ctl.Limiter.Allow(sid) {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("text rate limited")
		ctl.sendError(conn, "rate_limited")
		return
	}
	if err := ctl.Orch.OnText(sid, p.Msg); err != nil {
		ctl.reportError(conn, err)
	}
}
