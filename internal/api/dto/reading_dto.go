package dto

import (
	"time"

	"github.com/spec-kit/tarot-service/internal/domain"
	"github.com/spec-kit/tarot-service/internal/tarot"
)

// CreateReadingRequest payload for saving a reading to history.
type CreateReadingRequest struct {
	SpreadType     string               `json:"spread_type"`
	Question       *string              `json:"question,omitempty"`
	Cards          []domain.ReadingCard `json:"cards"`
	Interpretation *string              `json:"interpretation,omitempty"`
}

// ReadingResponse is the wire form of a saved reading.
type ReadingResponse struct {
	ID             string               `json:"id"`
	Date           time.Time            `json:"date"`
	SpreadType     string               `json:"spread_type"`
	Question       *string              `json:"question,omitempty"`
	Cards          []domain.ReadingCard `json:"cards"`
	Interpretation *string              `json:"interpretation,omitempty"`
}

// InterpretRequest payload for an AI-style interpretation.
type InterpretRequest struct {
	Question   string            `json:"question"`
	DrawnCards []tarot.DrawnCard `json:"drawn_cards"`
}

// NewReadingResponse maps a domain reading.
func NewReadingResponse(reading *domain.Reading) ReadingResponse {
	return ReadingResponse{
		ID:             reading.ID,
		Date:           reading.CreatedAt,
		SpreadType:     reading.SpreadType,
		Question:       reading.Question,
		Cards:          reading.Cards,
		Interpretation: reading.Interpretation,
	}
}
