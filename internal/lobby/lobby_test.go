package lobby

import (
	"regexp"
	"testing"

	"github.com/opencatan/server/pkg/catan"
)

var codePattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)

func TestCreateAssignsCodeAndHost(t *testing.T) {
	m := NewManager()

	l, err := m.Create("p1", "alice", 4)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !codePattern.MatchString(l.Code) {
		t.Errorf("code %q does not match [A-Z0-9]{6}", l.Code)
	}
	if l.HostID != "p1" || l.Status != StatusWaiting || l.MaxPlayers != 4 {
		t.Errorf("unexpected lobby: %+v", l)
	}
	if len(l.Players) != 1 || !l.Players[0].IsHost || l.Players[0].Color != catan.ColorRed {
		t.Errorf("unexpected host seat: %+v", l.Players[0])
	}
}

func TestCreateRejectsBadSize(t *testing.T) {
	m := NewManager()
	for _, size := range []int{0, 1, 5} {
		if _, err := m.Create("p1", "alice", size); err != ErrInvalidSize {
			t.Errorf("size %d: err = %v, want ErrInvalidSize", size, err)
		}
	}
}

func TestJoinAssignsDistinctColors(t *testing.T) {
	m := NewManager()
	l, _ := m.Create("p1", "alice", 4)

	l2, err := m.Join(l.Code, "p2", "bob")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	seen := map[catan.Color]bool{}
	for _, p := range l2.Players {
		if seen[p.Color] {
			t.Errorf("color %s assigned twice", p.Color)
		}
		seen[p.Color] = true
	}
	if len(l2.Players) != 2 {
		t.Errorf("players = %d, want 2", len(l2.Players))
	}
}

func TestJoinErrors(t *testing.T) {
	m := NewManager()
	l, _ := m.Create("p1", "alice", 2)
	if _, err := m.Join("ZZZZZZ", "p2", "bob"); err != ErrCodeUnknown {
		t.Errorf("unknown code err = %v, want ErrCodeUnknown", err)
	}

	if _, err := m.Join(l.Code, "p2", "bob"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := m.Join(l.Code, "p3", "carol"); err != ErrLobbyFull {
		t.Errorf("full lobby err = %v, want ErrLobbyFull", err)
	}

	m.SetReady("p2", true)
	if _, err := m.StartGame("p1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := m.Join(l.Code, "p4", "dave"); err != ErrAlreadyStarted {
		t.Errorf("started lobby err = %v, want ErrAlreadyStarted", err)
	}
}

func TestJoinTwiceIsReconnect(t *testing.T) {
	m := NewManager()
	l, _ := m.Create("p1", "alice", 4)
	m.Join(l.Code, "p2", "bob")

	l2, err := m.Join(l.Code, "p2", "bob")
	if err != nil {
		t.Fatalf("rejoin: %v", err)
	}
	if len(l2.Players) != 2 {
		t.Errorf("players after rejoin = %d, want 2", len(l2.Players))
	}
}

func TestLeavePromotesHost(t *testing.T) {
	m := NewManager()
	l, _ := m.Create("p1", "alice", 4)
	m.Join(l.Code, "p2", "bob")
	m.Join(l.Code, "p3", "carol")

	l2 := m.Leave("p1")
	if l2 == nil {
		t.Fatal("leave returned nil for a non-empty lobby")
	}
	if l2.HostID != "p2" || !l2.Players[0].IsHost {
		t.Errorf("host not promoted: %+v", l2)
	}
	if len(l2.Players) != 2 {
		t.Errorf("players = %d, want 2", len(l2.Players))
	}
}

func TestLeaveLastPlayerDeletesLobby(t *testing.T) {
	m := NewManager()
	l, _ := m.Create("p1", "alice", 4)

	if got := m.Leave("p1"); got != nil {
		t.Errorf("leave last player returned %+v, want nil", got)
	}
	if _, err := m.Get(l.Code); err != ErrCodeUnknown {
		t.Errorf("get deleted lobby err = %v, want ErrCodeUnknown", err)
	}
	if _, ok := m.LobbyOf("p1"); ok {
		t.Error("player still indexed after lobby deleted")
	}
}

func TestSetColor(t *testing.T) {
	m := NewManager()
	l, _ := m.Create("p1", "alice", 4)
	m.Join(l.Code, "p2", "bob")

	if _, err := m.SetColor("p2", catan.ColorWhite); err != nil {
		t.Fatalf("set color: %v", err)
	}
	if _, err := m.SetColor("p2", catan.ColorRed); err != ErrColorTaken {
		t.Errorf("taken color err = %v, want ErrColorTaken", err)
	}
	// Re-picking your own color is fine.
	if _, err := m.SetColor("p2", catan.ColorWhite); err != nil {
		t.Errorf("re-pick own color: %v", err)
	}
	if _, err := m.SetColor("p9", catan.ColorBlue); err != ErrNotInLobby {
		t.Errorf("outsider err = %v, want ErrNotInLobby", err)
	}
}

func TestStartGameGates(t *testing.T) {
	m := NewManager()
	l, _ := m.Create("p1", "alice", 4)

	if _, err := m.StartGame("p1"); err != ErrTooFewPlayers {
		t.Errorf("solo start err = %v, want ErrTooFewPlayers", err)
	}

	m.Join(l.Code, "p2", "bob")
	if _, err := m.StartGame("p2"); err != ErrNotHost {
		t.Errorf("non-host start err = %v, want ErrNotHost", err)
	}
	if _, err := m.StartGame("p1"); err != ErrNotReady {
		t.Errorf("unready start err = %v, want ErrNotReady", err)
	}

	m.SetReady("p2", true)
	l2, err := m.StartGame("p1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if l2.Status != StatusStarting {
		t.Errorf("status = %s, want starting", l2.Status)
	}
	if _, err := m.StartGame("p1"); err != ErrAlreadyStarted {
		t.Errorf("double start err = %v, want ErrAlreadyStarted", err)
	}
}

func TestCompleteStartReturnsSeats(t *testing.T) {
	m := NewManager()
	l, _ := m.Create("p1", "alice", 4)
	m.Join(l.Code, "p2", "bob")
	m.SetColor("p2", catan.ColorOrange)
	m.SetReady("p2", true)
	if _, err := m.StartGame("p1"); err != nil {
		t.Fatalf("start: %v", err)
	}

	seats, err := m.CompleteStart(l.Code)
	if err != nil {
		t.Fatalf("complete start: %v", err)
	}
	if len(seats) != 2 {
		t.Fatalf("seats = %d, want 2", len(seats))
	}
	if seats[0].PlayerID != "p1" || seats[0].Username != "alice" || seats[0].Color != catan.ColorRed {
		t.Errorf("seat 0 = %+v", seats[0])
	}
	if seats[1].PlayerID != "p2" || seats[1].Color != catan.ColorOrange {
		t.Errorf("seat 1 = %+v", seats[1])
	}

	// The lobby is gone and its players are free to join another.
	if _, err := m.Get(l.Code); err != ErrCodeUnknown {
		t.Errorf("get after start err = %v, want ErrCodeUnknown", err)
	}
	if _, ok := m.LobbyOf("p1"); ok {
		t.Error("player still bound to a started lobby")
	}
}

func TestCompleteStartRequiresCountdown(t *testing.T) {
	m := NewManager()
	l, _ := m.Create("p1", "alice", 4)
	m.Join(l.Code, "p2", "bob")

	if _, err := m.CompleteStart(l.Code); err != ErrAlreadyStarted {
		t.Errorf("complete without start err = %v, want ErrAlreadyStarted", err)
	}
	if _, err := m.CompleteStart("ZZZZZZ"); err != ErrCodeUnknown {
		t.Errorf("unknown code err = %v, want ErrCodeUnknown", err)
	}
}

func TestSnapshotIsIsolated(t *testing.T) {
	m := NewManager()
	l, _ := m.Create("p1", "alice", 4)

	l.Players[0].Username = "mallory"
	l2, _ := m.Get(l.Code)
	if l2.Players[0].Username != "alice" {
		t.Error("mutating a snapshot leaked into the manager")
	}
}

func TestCreateLeavesPreviousLobby(t *testing.T) {
	m := NewManager()
	first, _ := m.Create("p1", "alice", 4)
	m.Join(first.Code, "p2", "bob")

	second, err := m.Create("p2", "bob", 3)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if code, _ := m.LobbyOf("p2"); code != second.Code {
		t.Errorf("p2 indexed to %s, want %s", code, second.Code)
	}
	old, _ := m.Get(first.Code)
	if len(old.Players) != 1 {
		t.Errorf("old lobby players = %d, want 1", len(old.Players))
	}
}
