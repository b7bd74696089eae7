package domain

import "time"

// Reading is a saved tarot reading belonging to a user.
type Reading struct {
	ID             string
	UserID         string
	SpreadType     string
	Question       *string
	Cards          []ReadingCard
	Interpretation *string
	CreatedAt      time.Time
}

// ReadingCard is one drawn card as stored in reading history.
type ReadingCard struct {
	Name       string `json:"name"`
	NameVi     string `json:"name_vi,omitempty"`
	Position   string `json:"position"`
	IsReversed bool   `json:"is_reversed"`
}
