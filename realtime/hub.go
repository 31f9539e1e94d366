package realtime

import (
	"encoding/json"
	"fmt"
	"log/slog"
)

// Event is the wire shape pushed to subscribed clients.
type Event struct {
	Type    string `json:"type"`
	Room    string `json:"room"`
	Payload any    `json:"payload,omitempty"`
}

// Hub fans registration events out to websocket clients grouped into rooms,
// one room per team. All room map access is confined to the Run goroutine;
// other goroutines talk to it through the channels.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan outbound

	rooms  map[string]map[*Client]struct{}
	logger *slog.Logger
}

type outbound struct {
	room    string
	message []byte
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan outbound, 64),
		rooms:      make(map[string]map[*Client]struct{}),
		logger:     logger,
	}
}

func TeamRoom(teamID int) string {
	return fmt.Sprintf("team_%d", teamID)
}

// Run owns the room maps. Call it once, in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			if _, ok := h.rooms[client.room]; !ok {
				h.rooms[client.room] = make(map[*Client]struct{})
			}
			h.rooms[client.room][client] = struct{}{}

		case client := <-h.unregister:
			if clients, ok := h.rooms[client.room]; ok {
				if _, exists := clients[client]; exists {
					delete(clients, client)
					close(client.send)
					if len(clients) == 0 {
						delete(h.rooms, client.room)
					}
				}
			}

		case out := <-h.broadcast:
			for client := range h.rooms[out.room] {
				select {
				case client.send <- out.message:
				default:
					// Slow consumer; drop the event rather than block the hub.
				}
			}
		}
	}
}

// PublishTeamEvent implements the services.EventPublisher contract.
func (h *Hub) PublishTeamEvent(teamID int, eventType string, payload any) {
	room := TeamRoom(teamID)
	message, err := json.Marshal(Event{Type: eventType, Room: room, Payload: payload})
	if err != nil {
		h.logger.Warn("failed to marshal realtime event",
			slog.String("type", eventType), slog.Any("error", err))
		return
	}

	select {
	case h.broadcast <- outbound{room: room, message: message}:
	default:
		h.logger.Warn("realtime broadcast queue full, dropping event",
			slog.String("type", eventType), slog.String("room", room))
	}
}
