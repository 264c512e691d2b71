package handler

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/opencatan/server/internal/auth"
	"github.com/opencatan/server/internal/lobby"
	"github.com/opencatan/server/internal/session"
	"github.com/opencatan/server/pkg/catan"
)

func newTestHandler() *WSHandler {
	h := NewWSHandler(NewHub(), lobby.NewManager(), session.NewManager(session.Options{}), auth.NewTokenManager("test-secret"))
	h.countdown = 10 * time.Millisecond
	return h
}

// newTestConn registers a connection that never touches a real socket;
// dispatch and Send only use the buffered send channel.
func newTestConn(h *WSHandler, playerID string) *WSConn {
	c := &WSConn{playerID: playerID, send: make(chan []byte, 128)}
	h.hub.Register(c)
	return c
}

func send(h *WSHandler, c *WSConn, msgType string, payload any) {
	raw, _ := json.Marshal(payload)
	msg, _ := json.Marshal(ClientMessage{Type: msgType, Payload: raw})
	h.dispatch(c, msg)
}

// nextOfType reads messages until one of the wanted type arrives.
func nextOfType(t *testing.T, c *WSConn, msgType string) ServerMessage {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case raw := <-c.send:
			var msg ServerMessage
			if err := json.Unmarshal(raw, &msg); err != nil {
				t.Fatalf("unmarshal server message: %v", err)
			}
			if msg.Type == msgType {
				return msg
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", msgType)
		}
	}
}

func errData(t *testing.T, msg ServerMessage) map[string]any {
	t.Helper()
	data, ok := msg.Data.(map[string]any)
	if !ok {
		t.Fatalf("error data = %T, want object", msg.Data)
	}
	return data
}

func TestDispatchMalformedMessage(t *testing.T) {
	h := newTestHandler()
	c := newTestConn(h, "p1")

	h.dispatch(c, []byte("{not json"))
	msg := nextOfType(t, c, "connection:error")
	if errData(t, msg)["code"] != catan.CodeInvalidPayload {
		t.Errorf("code = %v, want invalid_payload", errData(t, msg)["code"])
	}

	h.dispatch(c, []byte(`{"type":"no_such_intent"}`))
	nextOfType(t, c, "connection:error")
}

func TestDispatchValidatesPayloads(t *testing.T) {
	h := newTestHandler()
	c := newTestConn(h, "p1")

	cases := []struct {
		msgType string
		payload any
		scope   string
	}{
		{"lobby:create", map[string]any{"username": "x", "max_players": 4}, "lobby:error"},
		{"lobby:create", map[string]any{"username": "alice", "max_players": 9}, "lobby:error"},
		{"lobby:join", map[string]any{"code": "toolongcode", "username": "alice"}, "lobby:error"},
		{"lobby:join", map[string]any{"code": "ABC123", "username": "a b"}, "lobby:error"},
		{"lobby:set_color", map[string]any{"color": "purple"}, "lobby:error"},
		{"build:settlement", map[string]any{"vertex_id": "v_hex_0_0"}, "build:error"},
		{"build:settlement", map[string]any{"vertex_id": "corner-7"}, "build:error"},
		{"build:road", map[string]any{"edge_id": "e_hex_0_0_hex_2_0"}, "build:error"},
		{"robber:move", map[string]any{"hex_id": "northwest"}, "robber:error"},
		{"robber:discard", map[string]any{"resources": map[string]int{"brick": -1}}, "robber:error"},
		{"trade:bank", map[string]any{"give": "gold", "receive": "brick"}, "trade:error"},
		{"devcard:play_monopoly", map[string]any{"resource": ""}, "devcard:error"},
		{"chat:send", map[string]any{"message": "   "}, "chat:error"},
	}
	for _, tc := range cases {
		send(h, c, tc.msgType, tc.payload)
		msg := nextOfType(t, c, tc.scope)
		if errData(t, msg)["code"] != catan.CodeInvalidPayload {
			t.Errorf("%s: code = %v, want invalid_payload", tc.msgType, errData(t, msg)["code"])
		}
	}
}

func TestLobbyFlowOverDispatch(t *testing.T) {
	h := newTestHandler()
	c1 := newTestConn(h, "p1")
	c2 := newTestConn(h, "p2")

	send(h, c1, "lobby:create", map[string]any{"username": "alice", "max_players": 3})
	state := nextOfType(t, c1, "lobby:state")

	var l lobby.Lobby
	raw, _ := json.Marshal(state.Data)
	if err := json.Unmarshal(raw, &l); err != nil {
		t.Fatalf("decode lobby state: %v", err)
	}
	if l.HostID != "p1" || len(l.Players) != 1 {
		t.Fatalf("unexpected lobby: %+v", l)
	}

	send(h, c2, "lobby:join", map[string]any{"code": l.Code, "username": "bob"})
	nextOfType(t, c2, "lobby:state")
	// The host sees the join too.
	state = nextOfType(t, c1, "lobby:state")

	// Unknown code goes only to the submitter.
	send(h, c2, "lobby:join", map[string]any{"code": "ZZZZZZ", "username": "bob"})
	msg := nextOfType(t, c2, "lobby:error")
	if errData(t, msg)["code"] != "code_unknown" {
		t.Errorf("code = %v, want code_unknown", errData(t, msg)["code"])
	}

	// Start refuses until everyone not hosting is ready.
	send(h, c1, "lobby:start_game", nil)
	msg = nextOfType(t, c1, "lobby:error")
	if errData(t, msg)["code"] != "not_ready" {
		t.Errorf("code = %v, want not_ready", errData(t, msg)["code"])
	}

	send(h, c2, "lobby:ready", map[string]any{"ready": true})
	nextOfType(t, c2, "lobby:state")

	send(h, c1, "lobby:start_game", nil)
	nextOfType(t, c1, "lobby:countdown")
	nextOfType(t, c2, "lobby:countdown")

	// After the countdown both players get the started event and their
	// own snapshot.
	nextOfType(t, c1, catan.EventGameStarted)
	snap := nextOfType(t, c1, "game:state")
	if snap.GameID != l.Code {
		t.Errorf("game id = %s, want %s", snap.GameID, l.Code)
	}
	nextOfType(t, c2, catan.EventGameStarted)
	nextOfType(t, c2, "game:state")

	if _, ok := h.games.Get(l.Code); !ok {
		t.Error("game not registered with the session manager")
	}
}

func startGame(t *testing.T, h *WSHandler, conns ...*WSConn) string {
	t.Helper()
	send(h, conns[0], "lobby:create", map[string]any{"username": "host", "max_players": len(conns)})
	state := nextOfType(t, conns[0], "lobby:state")
	var l lobby.Lobby
	raw, _ := json.Marshal(state.Data)
	json.Unmarshal(raw, &l)
	for i, c := range conns[1:] {
		send(h, c, "lobby:join", map[string]any{"code": l.Code, "username": fmt.Sprintf("guest%d", i)})
		send(h, c, "lobby:ready", map[string]any{"ready": true})
	}
	send(h, conns[0], "lobby:start_game", nil)
	for _, c := range conns {
		nextOfType(t, c, catan.EventGameStarted)
		nextOfType(t, c, "game:state")
	}
	return l.Code
}

func TestGameIntentsOverDispatch(t *testing.T) {
	h := newTestHandler()
	c1 := newTestConn(h, "p1")
	c2 := newTestConn(h, "p2")
	startGame(t, h, c1, c2)

	// Both players roll for turn order; everyone sees the results.
	send(h, c1, "game:roll_for_order", nil)
	nextOfType(t, c1, catan.EventRollForOrderResult)
	nextOfType(t, c2, catan.EventRollForOrderResult)
	send(h, c2, "game:roll_for_order", nil)
	nextOfType(t, c1, catan.EventPhaseChanged)

	// A second roll from the same player fails, to the submitter only.
	send(h, c1, "game:roll_for_order", nil)
	msg := nextOfType(t, c1, "game:error")
	if errData(t, msg)["code"] != catan.CodeWrongPhase {
		t.Errorf("code = %v, want wrong_phase", errData(t, msg)["code"])
	}
	select {
	case raw := <-c2.send:
		var m ServerMessage
		json.Unmarshal(raw, &m)
		if m.Type == "game:error" {
			t.Error("error leaked to a non-submitter")
		}
	case <-time.After(50 * time.Millisecond):
	}

	// Buying a card during setup is refused.
	send(h, c1, "build:dev_card", nil)
	msg = nextOfType(t, c1, "build:error")
	if errData(t, msg)["code"] != catan.CodeWrongPhase {
		t.Errorf("code = %v, want wrong_phase", errData(t, msg)["code"])
	}

	// Snapshots on demand, redacted for the requester.
	send(h, c1, "game:request_state", nil)
	snap := nextOfType(t, c1, "game:state")
	data, _ := json.Marshal(snap.Data)
	var gs catan.GameState
	if err := json.Unmarshal(data, &gs); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if gs.Phase != catan.PhaseSetupFirst {
		t.Errorf("phase = %s, want setup_first", gs.Phase)
	}
	if len(gs.DevCardDeck) != 0 {
		t.Error("snapshot leaked the dev card deck")
	}
}

func TestChatRouting(t *testing.T) {
	h := newTestHandler()
	c1 := newTestConn(h, "p1")
	c2 := newTestConn(h, "p2")

	// Chat with no lobby or game is refused.
	send(h, c1, "chat:send", map[string]any{"message": "hello?"})
	msg := nextOfType(t, c1, "chat:error")
	if errData(t, msg)["code"] != "not_in_lobby" {
		t.Errorf("code = %v, want not_in_lobby", errData(t, msg)["code"])
	}

	// Lobby chat reaches every member.
	send(h, c1, "lobby:create", map[string]any{"username": "alice", "max_players": 2})
	state := nextOfType(t, c1, "lobby:state")
	var l lobby.Lobby
	raw, _ := json.Marshal(state.Data)
	json.Unmarshal(raw, &l)
	send(h, c2, "lobby:join", map[string]any{"code": l.Code, "username": "bob"})

	send(h, c1, "chat:send", map[string]any{"message": "hi bob"})
	chat := nextOfType(t, c2, "chat:message")
	data := errData(t, chat)
	if data["message"] != "hi bob" || data["username"] != "alice" {
		t.Errorf("chat data = %v", data)
	}
}

func TestGameIntentWithoutGame(t *testing.T) {
	h := newTestHandler()
	c := newTestConn(h, "p1")

	send(h, c, "game:roll_dice", nil)
	msg := nextOfType(t, c, "game:error")
	if errData(t, msg)["code"] != "game_not_found" {
		t.Errorf("code = %v, want game_not_found", errData(t, msg)["code"])
	}
}

func TestIntentAliases(t *testing.T) {
	h := newTestHandler()
	c := newTestConn(h, "p1")

	// Older intent names still route to their handlers instead of
	// falling through to the unknown-type branch.
	for _, msgType := range []string{"game:roll", "lobby:set_ready", "lobby:start", "devcard:buy"} {
		send(h, c, msgType, map[string]any{"ready": true})
		msg := nextOfType(t, c, errorScope(msgType))
		if errData(t, msg)["message"] == "unknown message type" {
			t.Errorf("%s was not recognized", msgType)
		}
	}
}

func TestErrorScope(t *testing.T) {
	cases := map[string]string{
		"lobby:join":  "lobby:error",
		"build:road":  "build:error",
		"trade:bank":  "trade:error",
		"devcard:buy": "devcard:error",
		"weird":       "connection:error",
		"":            "connection:error",
	}
	for in, want := range cases {
		if got := errorScope(in); got != want {
			t.Errorf("errorScope(%q) = %s, want %s", in, got, want)
		}
	}
}
