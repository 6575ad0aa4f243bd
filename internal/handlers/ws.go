package handlers

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/trackline-dev/trackline/db"
	"github.com/trackline-dev/trackline/internal/chat"
	"github.com/trackline-dev/trackline/internal/types"
	"github.com/trackline-dev/trackline/internal/utils"
)

var (
	roomClients   = make(map[uint]map[*websocket.Conn]bool)
	roomClientsMu sync.RWMutex
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

type wsEnvelope struct {
	Type    string           `json:"type"`
	RoomID  uint             `json:"room_id"`
	Message *MessageResponse `json:"message,omitempty"`
}

// BroadcastMessage pushes a newly created message to every client
// connected to the room. Failed connections are dropped.
func BroadcastMessage(roomID uint, message MessageResponse) {
	roomClientsMu.RLock()
	clients, exists := roomClients[roomID]
	if !exists || len(clients) == 0 {
		roomClientsMu.RUnlock()
		return
	}

	// Copy the clients so the lock is not held while writing
	clientsCopy := make([]*websocket.Conn, 0, len(clients))
	for conn := range clients {
		clientsCopy = append(clientsCopy, conn)
	}
	roomClientsMu.RUnlock()

	for _, conn := range clientsCopy {
		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			log.Printf("Failed to set write deadline for broadcast: %v", err)
			continue
		}

		err := conn.WriteJSON(wsEnvelope{
			Type:    "message",
			RoomID:  roomID,
			Message: &message,
		})

		if err != nil {
			log.Printf("Failed to broadcast message to client: %v", err)
			removeClient(roomID, conn)
			conn.Close()
		}
	}
}

func addClient(roomID uint, conn *websocket.Conn) {
	roomClientsMu.Lock()
	defer roomClientsMu.Unlock()

	if roomClients[roomID] == nil {
		roomClients[roomID] = make(map[*websocket.Conn]bool)
	}

	roomClients[roomID][conn] = true
}

func removeClient(roomID uint, conn *websocket.Conn) {
	roomClientsMu.Lock()
	defer roomClientsMu.Unlock()

	if clients, exists := roomClients[roomID]; exists {
		delete(clients, conn)

		if len(clients) == 0 {
			delete(roomClients, roomID)
		}
	}
}

func WebSocket(c *gin.Context) {
	userID, err := utils.GetCurrentUserID(c)

	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	roomID, err := utils.GetRoomID(c)

	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	member, err := chat.IsMember(db.DB, roomID, userID)

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify room membership"})
		return
	}

	if !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not a member of this chat room"})
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			for _, allowed := range types.AllowedOrigins {
				if origin == allowed {
					return true
				}
			}
			return false
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)

	if err != nil {
		log.Printf("Failed to upgrade websocket for room %d: %v", roomID, err)
		return
	}

	conn.SetReadLimit(maxMessageSize)
	addClient(roomID, conn)

	defer func() {
		removeClient(roomID, conn)
		conn.Close()

		log.Printf("WebSocket connection closed for room %d", roomID)
	}()

	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		log.Printf("Failed to set write deadline for welcome message: %v", err)
		return
	}

	err = conn.WriteJSON(wsEnvelope{
		Type:   "connected",
		RoomID: roomID,
	})

	if err != nil {
		log.Printf("Failed to send welcome message: %v", err)
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	go func() {
		// Send pings periodically
		for range ticker.C {
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Printf("Failed to set write deadline for room %d: %v", roomID, err)
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("Ping failed for room %d: %v", roomID, err)
				return
			}
		}
	}()

	for {
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("Failed to set read deadline for room %d: %v", roomID, err)
			break
		}

		messageType, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error for room %d: %v", roomID, err)
			}
			break
		}

		switch messageType {
		case websocket.TextMessage:
			log.Printf("Received message from client in room %d: %s", roomID, string(message))
		case websocket.PongMessage:
			log.Printf("Received pong from room %d", roomID)
		}
	}
}
