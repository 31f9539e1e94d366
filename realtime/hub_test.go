package realtime

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testHub() *Hub {
	return NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHubDeliversEventsToRoomSubscribers(t *testing.T) {
	hub := testHub()
	go hub.Run()

	subscriber := &Client{hub: hub, send: make(chan []byte, 1), room: TeamRoom(1)}
	bystander := &Client{hub: hub, send: make(chan []byte, 1), room: TeamRoom(2)}
	hub.register <- subscriber
	hub.register <- bystander

	hub.PublishTeamEvent(1, "team_updated", map[string]int{"team_id": 1})

	select {
	case message := <-subscriber.send:
		var event Event
		require.NoError(t, json.Unmarshal(message, &event))
		require.Equal(t, "team_updated", event.Type)
		require.Equal(t, TeamRoom(1), event.Room)
	case <-time.After(time.Second):
		t.Fatal("no event delivered to subscriber")
	}

	require.Empty(t, bystander.send)
}

func TestHubUnregisterClosesClientSend(t *testing.T) {
	hub := testHub()
	go hub.Run()

	client := &Client{hub: hub, send: make(chan []byte, 1), room: TeamRoom(3)}
	hub.register <- client
	hub.unregister <- client

	select {
	case _, ok := <-client.send:
		require.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("send channel not closed on unregister")
	}
}
