package websocket

import (
	"net/http"

	ws "github.com/coder/websocket"

	"github.com/calebwray/theotime/internal/auth"
)

// Handle upgrades connections to WebSocket and runs them as Hub clients.
// Browsers cannot set headers on WebSocket dials, so the bearer token arrives
// as a query parameter.
func Handle(hub *Hub, issuer *auth.TokenIssuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		principal, err := issuer.Verify(token)
		if err != nil {
			http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			InsecureSkipVerify: true, // family LAN, any origin
		})
		if err != nil {
			hub.logger.Error("websocket accept", "error", err)
			return
		}

		client := NewClient(hub, conn, principal.UserID)
		client.Run(r.Context())
	}
}
