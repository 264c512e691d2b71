package handler

import (
	"encoding/json"
	"testing"
)

func TestHubRegisterAndSend(t *testing.T) {
	h := NewHub()
	c1 := &WSConn{playerID: "p1", send: make(chan []byte, 4)}
	c2 := &WSConn{playerID: "p1", send: make(chan []byte, 4)}
	c3 := &WSConn{playerID: "p2", send: make(chan []byte, 4)}
	for _, c := range []*WSConn{c1, c2, c3} {
		h.Register(c)
	}
	if got := h.ConnectionCount(); got != 3 {
		t.Errorf("connection count = %d, want 3", got)
	}

	h.SendToPlayer("p1", ServerMessage{Type: "test:ping"})
	for _, c := range []*WSConn{c1, c2} {
		var msg ServerMessage
		if err := json.Unmarshal(<-c.send, &msg); err != nil || msg.Type != "test:ping" {
			t.Errorf("connection did not receive the message: %v %v", msg, err)
		}
	}
	if len(c3.send) != 0 {
		t.Error("message leaked to another player")
	}
}

func TestHubUnregister(t *testing.T) {
	h := NewHub()
	c := &WSConn{playerID: "p1", send: make(chan []byte, 4)}
	h.Register(c)
	h.Unregister(c)

	if got := h.ConnectionCount(); got != 0 {
		t.Errorf("connection count = %d, want 0", got)
	}
	if _, open := <-c.send; open {
		t.Error("send channel not closed on unregister")
	}
	// Double unregister must not panic or close twice.
	h.Unregister(c)
	h.SendToPlayer("p1", ServerMessage{Type: "test:ping"})
}

func TestHubDropsWhenBufferFull(t *testing.T) {
	h := NewHub()
	c := &WSConn{playerID: "p1", send: make(chan []byte, 1)}
	h.Register(c)

	h.SendToPlayer("p1", ServerMessage{Type: "test:one"})
	h.SendToPlayer("p1", ServerMessage{Type: "test:two"}) // dropped, not blocked

	var msg ServerMessage
	json.Unmarshal(<-c.send, &msg)
	if msg.Type != "test:one" {
		t.Errorf("first message = %s, want test:one", msg.Type)
	}
	if len(c.send) != 0 {
		t.Error("overflow message was queued")
	}
}
