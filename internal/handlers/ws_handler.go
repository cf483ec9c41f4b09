package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin is already checked by the CORS layer; the socket itself is
	// gated by the JWT the auth middleware validated.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// AttachWebsocket upgrades the request and registers the connection with
// the hub until the client goes away.
func (h *Handler) AttachWebsocket(c *gin.Context) {
	userID, _, ok := caller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "User not authenticated"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade for user %s: %v", userID.Hex(), err)
		return
	}

	hex := userID.Hex()
	h.Hub.Register(hex, conn)
	defer func() {
		h.Hub.Deregister(hex, conn)
		conn.Close()
	}()

	// The channel is push-only; we still have to drain the connection to
	// notice pings and closure.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
