package tarot

import (
	"strings"
	"unicode"
	"unicode/utf8"

	apperrors "github.com/spec-kit/tarot-service/pkg/util"
)

// Limits for a single interpretation request.
const (
	MaxDrawnCards     = 10
	MaxQuestionLength = 500
)

// Card is a tarot card with upright and reversed meanings.
type Card struct {
	Name     string `json:"name"`
	NameVi   string `json:"name_vi,omitempty"`
	Upright  string `json:"upright"`
	Reversed string `json:"reversed"`
}

// Position describes where a card landed in a spread.
type Position struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// DrawnCard couples a card with its spread position and orientation.
type DrawnCard struct {
	Card       Card     `json:"card"`
	Position   Position `json:"position"`
	IsReversed bool     `json:"is_reversed"`
}

// Meaning returns the orientation-appropriate meaning text.
func (d DrawnCard) Meaning() string {
	if d.IsReversed {
		return d.Card.Reversed
	}
	return d.Card.Upright
}

// SanitizeQuestion trims the question and strips control characters and
// angle brackets before it is embedded into interpretation output.
func SanitizeQuestion(question string) string {
	var b strings.Builder
	for _, r := range question {
		if unicode.IsControl(r) || r == '<' || r == '>' {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

// ValidateDraw checks a drawn-cards payload ahead of interpretation or
// history persistence.
func ValidateDraw(question string, cards []DrawnCard) error {
	if utf8.RuneCountInString(question) > MaxQuestionLength {
		return apperrors.NewValidationError("question too long", map[string]any{
			"max_length": MaxQuestionLength,
		})
	}
	if len(cards) == 0 {
		return apperrors.NewValidationError("at least one drawn card is required", nil)
	}
	if len(cards) > MaxDrawnCards {
		return apperrors.NewValidationError("too many drawn cards", map[string]any{
			"max_cards": MaxDrawnCards,
		})
	}
	for _, drawn := range cards {
		if strings.TrimSpace(drawn.Card.Name) == "" || strings.TrimSpace(drawn.Position.Name) == "" {
			return apperrors.NewValidationError("drawn card missing name or position", nil)
		}
	}
	return nil
}
