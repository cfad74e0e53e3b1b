package controllers

import (
	"net/http"

	"github.com/Devesh-Pathak7/Splite-Eat/realtime"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WSController struct {
	Hub *realtime.Hub
}

func NewWSController(hub *realtime.Hub) *WSController {
	return &WSController{Hub: hub}
}

// Events -> GET /ws/events
// Upgrades the connection and streams coordinator events until the client
// disconnects. Customers and dashboards both connect here; the role label
// defaults to customer for unauthenticated connections.
func (wc *WSController) Events(c *gin.Context) {
	role := "customer"
	if v, ok := c.Get("role"); ok {
		role = v.(string)
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	wc.Hub.RegisterClient(ws, role)
	defer wc.Hub.UnregisterClient(ws)

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}
}
