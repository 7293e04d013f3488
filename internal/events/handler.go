package events

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

// WSHandler returns an http.HandlerFunc that upgrades the request to a
// WebSocket and streams broker events to the client as JSON text frames.
func WSHandler(broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, _, _, err := ws.UpgradeHTTP(r, w)
		if err != nil {
			slog.Debug("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
			return
		}

		id, ch := broker.Subscribe()
		defer broker.Unsubscribe(id)
		defer func() {
			_ = conn.Close()
		}()

		slog.Info("event subscriber connected", "remote", r.RemoteAddr, "subscriber_id", id)

		// The client never sends application data; reading only detects
		// the peer closing the socket.
		go func() {
			for {
				if _, _, err := wsutil.ReadClientData(conn); err != nil {
					broker.Unsubscribe(id)
					return
				}
			}
		}()

		for evt := range ch {
			data, err := json.Marshal(evt)
			if err != nil {
				slog.Debug("event marshal failed", "type", evt.Type, "error", err)
				continue
			}
			if err := wsutil.WriteServerText(conn, data); err != nil {
				slog.Debug("event write failed", "subscriber_id", id, "error", err)
				return
			}
		}
	}
}
