package game

import (
	"time"

	"senti_ttt/internal/domain/board"
)

type AiMoveRequest struct {
	// Board is nil when the request carries no board, or a null one.
	Board         *board.Board         `json:"board"`
	CurrentPlayer string               `json:"currentPlayer,omitempty"`
	MoveHistory   []board.HistoryEntry `json:"moveHistory,omitempty"`
	// UseSuggestion defaults to true when the service has an advisor.
	UseSuggestion *bool `json:"useSuggestion,omitempty"`
}

type AiMoveResponse struct {
	Move       int       `json:"move"`
	Player     string    `json:"player"`
	Timestamp  time.Time `json:"timestamp"`
	Source     string    `json:"source"`
	DecisionID string    `json:"decisionId"`
}

// DecisionRecord is one journal entry. Suggested is set only when the advisor
// produced a legal move.
type DecisionRecord struct {
	ID        string    `json:"id" bson:"id"`
	Board     string    `json:"board" bson:"board"`
	Player    string    `json:"player" bson:"player"`
	Move      int       `json:"move" bson:"move"`
	Source    string    `json:"source" bson:"source"`
	Suggested *int      `json:"suggested,omitempty" bson:"suggested,omitempty"`
	Accepted  bool      `json:"accepted" bson:"accepted"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

type ServiceStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Service string `json:"service,omitempty"`
}

// WsError is the /ws/play frame sent instead of an AiMoveResponse when a
// request fails.
type WsError struct {
	Error string `json:"error"`
}
