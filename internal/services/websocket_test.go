package services

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastToUserDeliversBookingEvent(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := &Client{ID: 7, Hub: hub, Send: make(chan []byte, 1)}
	hub.register <- client

	hub.SendBookingEvent(7, "booking_request", BookingEvent{
		BookingID:      11,
		RideID:         1,
		BookingStatus:  "Upcoming",
		BookingRequest: "Pending",
		SeatsRequested: 2,
	})

	select {
	case data := <-client.Send:
		var msg WebSocketMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		assert.Equal(t, "booking_request", msg.Type)
	case <-time.After(time.Second):
		t.Fatal("expected a booking event on the client channel")
	}
}

func TestBroadcastToUserSkipsOtherUsers(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := &Client{ID: 9, Hub: hub, Send: make(chan []byte, 1)}
	hub.register <- client

	hub.BroadcastToUser(7, []byte(`{"type":"booking_request"}`))

	select {
	case <-client.Send:
		t.Fatal("event for user 7 must not reach user 9")
	case <-time.After(50 * time.Millisecond):
	}
}

// Concurrent broadcasts against slow clients must neither corrupt the client
// map nor close a Send channel twice; eviction goes through the hub loop.
func TestBroadcastToUserConcurrentEvictionIsSafe(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	// Unbuffered channels with no reader, so every send hits the slow path.
	for i := 0; i < 50; i++ {
		hub.register <- &Client{ID: 7, Hub: hub, Send: make(chan []byte)}
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				hub.BroadcastToUser(7, []byte(`{"type":"booking_decision"}`))
			}
		}()
	}
	wg.Wait()

	// Eviction is best-effort per broadcast; keep nudging until the hub loop
	// has drained every slow client.
	assert.Eventually(t, func() bool {
		hub.BroadcastToUser(7, []byte(`{"type":"booking_decision"}`))
		hub.mutex.RLock()
		defer hub.mutex.RUnlock()
		return len(hub.clients) == 0
	}, 2*time.Second, 10*time.Millisecond)
}
