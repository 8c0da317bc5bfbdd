package models

// Board is the body of a canvas document: a small directed graph of
// cards and edges, serialized as JSON. Cards and edges are owned by
// the board, not by the vault.
type Board struct {
	Title string `json:"title"`
	Cards []Card `json:"cards"`
	Edges []Edge `json:"edges"`
}

// Card is a single node on a board.
type Card struct {
	ID    string  `json:"id"`
	Label string  `json:"label"`
	Color string  `json:"color,omitempty"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// Edge is a directed connection between two cards on the same board.
type Edge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
}
