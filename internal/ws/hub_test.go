package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runHub(t *testing.T) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub()
	go hub.Run(ctx)
	return hub
}

func TestNewHub(t *testing.T) {
	hub := NewHub()

	assert.NotNil(t, hub)
	assert.NotNil(t, hub.clients)
	assert.NotNil(t, hub.sessions)
	assert.NotNil(t, hub.broadcast)
	assert.NotNil(t, hub.register)
	assert.NotNil(t, hub.unregister)
	assert.NotNil(t, hub.done)
}

func TestHub_AddAndRemoveClient(t *testing.T) {
	hub := runHub(t)

	client := &Client{
		hub:       hub,
		sessionID: "s1",
		send:      make(chan []byte, 1),
	}

	require.True(t, hub.Register(client))
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, 1, hub.ConnectedClients("s1"))

	hub.Unregister(client)
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, 0, hub.ConnectedClients("s1"))
}

func TestHub_Publish(t *testing.T) {
	hub := runHub(t)

	client := &Client{
		hub:       hub,
		sessionID: "s1",
		send:      make(chan []byte, 10),
	}

	require.True(t, hub.Register(client))
	time.Sleep(50 * time.Millisecond)

	hub.Publish("s1", EventFrameAnalyzed, map[string]string{"session_status": "active"})

	select {
	case msg := <-client.send:
		var event Event
		require.NoError(t, json.Unmarshal(msg, &event))
		assert.Equal(t, EventFrameAnalyzed, event.Type)
		assert.Equal(t, "s1", event.SessionID)
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestHub_SessionIsolation(t *testing.T) {
	hub := runHub(t)

	client1 := &Client{hub: hub, sessionID: "s1", send: make(chan []byte, 10)}
	client2 := &Client{hub: hub, sessionID: "s2", send: make(chan []byte, 10)}

	require.True(t, hub.Register(client1))
	require.True(t, hub.Register(client2))
	time.Sleep(50 * time.Millisecond)

	hub.Publish("s1", EventSessionCancelled, map[string]string{"reason": "multiple_faces"})

	select {
	case <-client1.send:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("client1 should receive message")
	}

	select {
	case <-client2.send:
		t.Fatal("client2 should not receive message for s1")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHub_SlowClientDropped(t *testing.T) {
	hub := runHub(t)

	slow := &Client{hub: hub, sessionID: "s1", send: make(chan []byte)}
	require.True(t, hub.Register(slow))
	time.Sleep(50 * time.Millisecond)

	hub.Publish("s1", EventFrameAnalyzed, nil)
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, 0, hub.ConnectedClients("s1"))
	_, open := <-slow.send
	assert.False(t, open)
}

func TestHub_RunStopsAndClosesClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	client := &Client{hub: hub, sessionID: "s1", send: make(chan []byte, 1)}
	require.True(t, hub.Register(client))

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}
	_, open := <-client.send
	assert.False(t, open)
}

func TestHub_StoppedHubDoesNotBlockClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	client := &Client{hub: hub, sessionID: "s1", send: make(chan []byte, 1)}
	require.True(t, hub.Register(client))

	cancel()
	<-stopped

	finished := make(chan struct{})
	go func() {
		hub.Unregister(client)
		late := &Client{hub: hub, sessionID: "s2", send: make(chan []byte, 1)}
		assert.False(t, hub.Register(late))
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("unregister or register blocked after the hub stopped")
	}
	assert.Equal(t, 0, hub.ConnectedClients("s2"))
}
