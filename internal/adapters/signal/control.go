package signal

var pongFrame = map[string]any{"type": "pong"}

// handlePing answers application-level keepalives; websocket pings are
// handled by the pumps.
func (ctl *SignalWSController) handlePing(conn *WsSignalConn) {
	ctl.sendJSON(conn, pongFrame)
}
