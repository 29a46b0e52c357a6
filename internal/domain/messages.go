package domain

// ClientMessage is what a WebSocket client sends.
type ClientMessage struct {
	Type   string `json:"type"`
	Token  string `json:"token,omitempty"`
	Column int    `json:"column"`
	Depth  int    `json:"depth,omitempty"`
}

// ServerMessage is what the server pushes over a WebSocket connection.
// Fields are populated per message type; zero values are omitted.
type ServerMessage struct {
	Type        string       `json:"type"`
	Message     string       `json:"message,omitempty"`
	GameID      string       `json:"gameId,omitempty"`
	YourPlayer  int          `json:"yourPlayer,omitempty"`
	CurrentTurn int          `json:"currentTurn,omitempty"`
	Column      int          `json:"column,omitempty"`
	Row         int          `json:"row,omitempty"`
	Player      int          `json:"player,omitempty"`
	Board       [][]PlayerID `json:"board,omitempty"`
	Winner      int          `json:"winner,omitempty"`
	Status      string       `json:"status,omitempty"`
	Reason      string       `json:"reason,omitempty"`
	Score       float64      `json:"score,omitempty"`
}
