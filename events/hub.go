package events

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/satyasricomputers/servicecenter/models"
)

// Event types pushed to connected dashboard clients.
const (
	EventTicketCreated = "ticket_created"
	EventTicketUpdated = "ticket_updated"
	EventStaffNotif    = "staff_notification"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub holds the connected dashboard clients (frontdesk and technician)
// keyed by connection, with the role each one authenticated as.
type Hub struct {
	clients map[*websocket.Conn]string
	mutex   sync.Mutex
}

var hub = Hub{
	clients: make(map[*websocket.Conn]string),
}

func RegisterClient(conn *websocket.Conn, role string) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	hub.clients[conn] = role
}

func UnregisterClient(conn *websocket.Conn) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	delete(hub.clients, conn)
	conn.Close()
}

// BroadcastTicketCreated announces a freshly registered ticket.
func BroadcastTicketCreated(ticket models.TicketWithCustomer) {
	broadcast(Message{
		Event: EventTicketCreated,
		Data:  ticket,
	})
}

// BroadcastTicketUpdated announces a status change or new note.
func BroadcastTicketUpdated(ticket models.TicketWithCustomer) {
	broadcast(Message{
		Event: EventTicketUpdated,
		Data:  ticket,
	})
}

func BroadcastStaffNotification(message string) {
	broadcast(Message{
		Event: EventStaffNotif,
		Data:  message,
	})
}

// broadcast is best-effort: a client whose write fails is dropped.
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
			conn.Close()
			delete(hub.clients, conn)
		}
	}
}
