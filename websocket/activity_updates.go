package websocket

import (
	"encoding/json"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ActivityUpdate is the real-time feed message pushed when the dispatcher
// appends an activity entry.
type ActivityUpdate struct {
	Type       string      `json:"type"` // ACTIVITY_APPENDED
	EntityType string      `json:"entityType"`
	EntityID   string      `json:"entityId,omitempty"`
	Action     string      `json:"action"`
	Data       interface{} `json:"data,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
	UserID     string      `json:"userId,omitempty"`
	UserName   string      `json:"userName,omitempty"`
}

// BroadcastActivity sends an update to all connected clients of a studio.
func BroadcastActivity(studioID primitive.ObjectID, update ActivityUpdate) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	if clients, ok := hub.clients[studioID.Hex()]; ok {
		data, err := json.Marshal(update)
		if err != nil {
			log.Printf("Failed to marshal activity update: %v", err)
			return
		}

		for client := range clients {
			select {
			case client.send <- data:
			default:
				close(client.send)
				delete(clients, client)
			}
		}
	}
}
