package events

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/lengolf/venue-pos/models"
)

// Event types pushed to connected POS terminals
const (
	EventSessionOpened    = "session_opened"
	EventCartUpdated      = "cart_updated"
	EventOrderConfirmed   = "order_confirmed"
	EventSessionSettled   = "session_settled"
	EventSessionCancelled = "session_cancelled"
	EventSessionClosed    = "session_closed"
	EventTransactionVoid  = "transaction_voided"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub holds every connected terminal and serializes broadcasts to them.
type Hub struct {
	clients map[*websocket.Conn]string // conn -> role
	mutex   sync.Mutex
}

var hub = Hub{
	clients: make(map[*websocket.Conn]string),
}

// RegisterClient adds a terminal connection with its staff role.
func RegisterClient(conn *websocket.Conn, role string) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	hub.clients[conn] = role
}

// UnregisterClient drops and closes a terminal connection.
func UnregisterClient(conn *websocket.Conn) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	delete(hub.clients, conn)
	conn.Close()
}

// BroadcastSessionOpened tells terminals a table went occupied.
func BroadcastSessionOpened(session models.TableSession) {
	broadcast(Message{Event: EventSessionOpened, Data: session})
}

// BroadcastCartUpdated pushes a session's new running subtotal.
func BroadcastCartUpdated(sessionID uint, subtotal float64) {
	broadcast(Message{
		Event: EventCartUpdated,
		Data: map[string]interface{}{
			"session_id": sessionID,
			"subtotal":   subtotal,
		},
	})
}

// BroadcastOrderConfirmed announces a round sent to preparation.
func BroadcastOrderConfirmed(order models.Order) {
	broadcast(Message{Event: EventOrderConfirmed, Data: order})
}

// BroadcastSessionSettled announces a completed settlement.
func BroadcastSessionSettled(transaction models.Transaction) {
	broadcast(Message{Event: EventSessionSettled, Data: transaction})
}

// BroadcastSessionCancelled announces a forced close.
func BroadcastSessionCancelled(session models.TableSession) {
	broadcast(Message{Event: EventSessionCancelled, Data: session})
}

// BroadcastSessionClosed announces a table released for a new open.
func BroadcastSessionClosed(session models.TableSession) {
	broadcast(Message{Event: EventSessionClosed, Data: session})
}

// BroadcastTransactionVoided announces a voided transaction.
func BroadcastTransactionVoided(transaction models.Transaction) {
	broadcast(Message{Event: EventTransactionVoid, Data: transaction})
}

func broadcast(msg Message) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return
	}

	for conn := range hub.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("Error sending message to client: %v", err)
			continue
		}
	}
}
