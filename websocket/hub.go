package websocket

import (
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/njorogedev/estate_hub/models"
)

type Client struct {
	UserID uuid.UUID
	Conn   *websocket.Conn
}

// BookingEvent is pushed to the owning user whenever their booking changes
// state (created, confirmed, cancelled, completed, expired).
type BookingEvent struct {
	UserID  uuid.UUID       `json:"-"`
	Event   string          `json:"event"`
	Booking *models.Booking `json:"booking"`
}

var clients = make(map[uuid.UUID]*websocket.Conn)
var clientsMu sync.RWMutex
var Register = make(chan *Client)
var Unregister = make(chan *Client)
var Broadcast = make(chan *BookingEvent, 64)

func RunHub() {
	for {
		select {
		case client := <-Register:
			log.Printf("Client registered: %s", client.UserID)
			clientsMu.Lock()
			clients[client.UserID] = client.Conn
			clientsMu.Unlock()
		case client := <-Unregister:
			log.Printf("Client unregistered: %s", client.UserID)
			clientsMu.Lock()
			if conn, ok := clients[client.UserID]; ok && conn == client.Conn {
				delete(clients, client.UserID)
			}
			clientsMu.Unlock()
		case event := <-Broadcast:
			clientsMu.RLock()
			conn, ok := clients[event.UserID]
			clientsMu.RUnlock()
			if !ok {
				continue
			}
			if err := conn.WriteJSON(event); err != nil {
				log.Printf("Error sending event to client %s: %v", event.UserID, err)
				conn.Close()
				clientsMu.Lock()
				delete(clients, event.UserID)
				clientsMu.Unlock()
			}
		}
	}
}

// NotifyBooking hands an event to the hub without ever blocking the caller.
func NotifyBooking(userID uuid.UUID, event string, booking *models.Booking) {
	select {
	case Broadcast <- &BookingEvent{UserID: userID, Event: event, Booking: booking}:
	default:
		log.Printf("Websocket broadcast buffer full, dropping %s event for %s", event, userID)
	}
}

// ServeBookingEvents upgrades an authenticated connection and parks it in
// the hub until the client goes away.
func ServeBookingEvents() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		token, ok := conn.Locals("user").(*jwt.Token)
		if !ok {
			conn.Close()
			return
		}
		claims := token.Claims.(jwt.MapClaims)
		userID, err := uuid.Parse(claims["user_id"].(string))
		if err != nil {
			conn.Close()
			return
		}

		client := &Client{UserID: userID, Conn: conn}
		Register <- client
		defer func() { Unregister <- client }()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	})
}
