package handler

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/opencatan/server/pkg/catan"
	"github.com/opencatan/server/pkg/hexgrid"
)

// Wire shapes for client intents. Every payload is validated here
// before it reaches the lobby or the rules engine; the engine still
// revalidates semantics (turn, phase, placement) on its own.

var (
	codePattern     = regexp.MustCompile(`^[A-Z0-9]{6}$`)
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{2,20}$`)
)

const maxChatLength = 500

type createLobbyPayload struct {
	Username   string `json:"username"`
	MaxPlayers int    `json:"max_players"`
}

func (p *createLobbyPayload) validate() error {
	if !usernamePattern.MatchString(p.Username) {
		return fmt.Errorf("username must be 2-20 characters of letters, digits, _ or -")
	}
	if p.MaxPlayers < 2 || p.MaxPlayers > 4 {
		return fmt.Errorf("max_players must be between 2 and 4")
	}
	return nil
}

type joinLobbyPayload struct {
	Code     string `json:"code"`
	Username string `json:"username"`
}

func (p *joinLobbyPayload) validate() error {
	p.Code = strings.ToUpper(strings.TrimSpace(p.Code))
	if !codePattern.MatchString(p.Code) {
		return fmt.Errorf("code must be 6 characters of A-Z and 0-9")
	}
	if !usernamePattern.MatchString(p.Username) {
		return fmt.Errorf("username must be 2-20 characters of letters, digits, _ or -")
	}
	return nil
}

type setColorPayload struct {
	Color string `json:"color"`
}

func (p *setColorPayload) validate() error {
	if !catan.ValidColor(catan.Color(p.Color)) {
		return fmt.Errorf("unknown color %q", p.Color)
	}
	return nil
}

type setReadyPayload struct {
	Ready bool `json:"ready"`
}

func (p *setReadyPayload) validate() error { return nil }

type vertexPayload struct {
	VertexID string `json:"vertex_id"`
}

func (p *vertexPayload) validate() error {
	if _, err := hexgrid.ParseVertexID(p.VertexID); err != nil {
		return fmt.Errorf("vertex_id does not name a corner")
	}
	return nil
}

type edgePayload struct {
	EdgeID string `json:"edge_id"`
}

func (p *edgePayload) validate() error {
	if _, err := hexgrid.ParseEdgeID(p.EdgeID); err != nil {
		return fmt.Errorf("edge_id does not name an edge")
	}
	return nil
}

type hexPayload struct {
	HexID string `json:"hex_id"`
}

func (p *hexPayload) validate() error {
	if _, err := hexgrid.ParseHexID(p.HexID); err != nil {
		return fmt.Errorf("hex_id does not name a hex")
	}
	return nil
}

type discardPayload struct {
	Resources catan.ResourceCount `json:"resources"`
}

func (p *discardPayload) validate() error {
	if !p.Resources.NonNegative() {
		return fmt.Errorf("resource counts must be non-negative")
	}
	return nil
}

type stealPayload struct {
	VictimID string `json:"victim_id"`
}

func (p *stealPayload) validate() error {
	if p.VictimID == "" {
		return fmt.Errorf("victim_id is required")
	}
	return nil
}

type proposeTradePayload struct {
	TargetID string              `json:"target_id"`
	Offer    catan.ResourceCount `json:"offer"`
	Request  catan.ResourceCount `json:"request"`
}

func (p *proposeTradePayload) validate() error {
	if !p.Offer.NonNegative() || !p.Request.NonNegative() {
		return fmt.Errorf("resource counts must be non-negative")
	}
	return nil
}

type tradeIDPayload struct {
	TradeID string `json:"trade_id"`
}

func (p *tradeIDPayload) validate() error {
	if p.TradeID == "" {
		return fmt.Errorf("trade_id is required")
	}
	return nil
}

type bankTradePayload struct {
	Give    string `json:"give"`
	Receive string `json:"receive"`
}

func (p *bankTradePayload) validate() error {
	if !catan.ValidResource(catan.Resource(p.Give)) || !catan.ValidResource(catan.Resource(p.Receive)) {
		return fmt.Errorf("give and receive must each name a resource")
	}
	return nil
}

type yearOfPlentyPayload struct {
	First  string `json:"first"`
	Second string `json:"second"`
}

func (p *yearOfPlentyPayload) validate() error {
	if !catan.ValidResource(catan.Resource(p.First)) || !catan.ValidResource(catan.Resource(p.Second)) {
		return fmt.Errorf("first and second must each name a resource")
	}
	return nil
}

type monopolyPayload struct {
	Resource string `json:"resource"`
}

func (p *monopolyPayload) validate() error {
	if !catan.ValidResource(catan.Resource(p.Resource)) {
		return fmt.Errorf("resource must name a resource")
	}
	return nil
}

type chatPayload struct {
	Message string `json:"message"`
}

func (p *chatPayload) validate() error {
	p.Message = strings.TrimSpace(p.Message)
	if p.Message == "" {
		return fmt.Errorf("message is required")
	}
	if len(p.Message) > maxChatLength {
		return fmt.Errorf("message exceeds %d characters", maxChatLength)
	}
	return nil
}

// errorScope maps an intent type to the error event it answers with:
// the part before the colon plus ":error".
func errorScope(msgType string) string {
	if i := strings.Index(msgType, ":"); i > 0 {
		return msgType[:i] + ":error"
	}
	return "connection:error"
}
