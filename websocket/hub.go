package websocket

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"studiopm/utils"
)

type client struct {
	conn *websocket.Conn
	send chan []byte
}

type feedHub struct {
	mutex   sync.Mutex
	clients map[string]map[*client]bool // studioID -> connections
}

var hub = &feedHub{clients: map[string]map[*client]bool{}}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeActivityFeed upgrades the connection and registers it under the
// caller's studio. The token travels as a query parameter because browsers
// cannot set headers on websocket dials.
func ServeActivityFeed(w http.ResponseWriter, r *http.Request) {
	claims, err := utils.ValidateJWT(r.URL.Query().Get("token"))
	if err != nil || claims == nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, 16)}

	hub.mutex.Lock()
	if hub.clients[claims.StudioID] == nil {
		hub.clients[claims.StudioID] = map[*client]bool{}
	}
	hub.clients[claims.StudioID][c] = true
	hub.mutex.Unlock()

	log.Printf("ws connected: studio=%s user=%s", claims.StudioID, claims.UserID)

	go c.writeLoop()
	c.readLoop(claims.StudioID)
}

func (c *client) writeLoop() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *client) readLoop(studioID string) {
	defer func() {
		hub.mutex.Lock()
		if clients, ok := hub.clients[studioID]; ok {
			delete(clients, c)
		}
		hub.mutex.Unlock()
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
