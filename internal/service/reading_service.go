package service

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/tarot-service/internal/domain"
	"github.com/spec-kit/tarot-service/internal/repository"
	"github.com/spec-kit/tarot-service/internal/tarot"
	apperrors "github.com/spec-kit/tarot-service/pkg/util"
)

// ReadingService manages saved reading history and interpretation requests.
type ReadingService struct {
	readings    repository.ReadingRepository
	interpreter tarot.Interpreter
}

// NewReadingService constructs the service. interpreter may be nil when no
// interpretation backend is configured.
func NewReadingService(readings repository.ReadingRepository, interpreter tarot.Interpreter) *ReadingService {
	return &ReadingService{readings: readings, interpreter: interpreter}
}

// ReadingCreateInput describes a reading to save.
type ReadingCreateInput struct {
	SpreadType     string
	Question       *string
	Cards          []domain.ReadingCard
	Interpretation *string
}

// SaveReading persists a reading to the actor's history.
func (s *ReadingService) SaveReading(ctx context.Context, actor *domain.User, input ReadingCreateInput) (*domain.Reading, error) {
	if strings.TrimSpace(input.SpreadType) == "" {
		return nil, apperrors.NewValidationError("spread_type is required", nil)
	}
	if len(input.Cards) == 0 {
		return nil, apperrors.NewValidationError("cards are required", nil)
	}
	if len(input.Cards) > tarot.MaxDrawnCards {
		return nil, apperrors.NewValidationError("too many cards", map[string]any{
			"max_cards": tarot.MaxDrawnCards,
		})
	}
	for _, card := range input.Cards {
		if strings.TrimSpace(card.Name) == "" || strings.TrimSpace(card.Position) == "" {
			return nil, apperrors.NewValidationError("card missing name or position", nil)
		}
	}

	reading := &domain.Reading{
		UserID:         actor.ID,
		SpreadType:     input.SpreadType,
		Question:       input.Question,
		Cards:          input.Cards,
		Interpretation: input.Interpretation,
	}
	if err := s.readings.Create(ctx, reading); err != nil {
		return nil, err
	}
	return reading, nil
}

// ListReadings returns the actor's readings, newest first.
func (s *ReadingService) ListReadings(ctx context.Context, actor *domain.User) ([]domain.Reading, error) {
	return s.readings.ListByUser(ctx, actor.ID)
}

// GetReading returns one reading; only the owner may view it.
func (s *ReadingService) GetReading(ctx context.Context, id string, actor *domain.User) (*domain.Reading, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NewNotFound("reading", nil)
	}
	reading, err := s.readings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("reading", nil)
		}
		return nil, err
	}
	if reading.UserID != actor.ID {
		return nil, apperrors.NewForbidden("not allowed to view this reading")
	}
	return reading, nil
}

// ClearHistory removes all of the actor's readings and returns the count.
func (s *ReadingService) ClearHistory(ctx context.Context, actor *domain.User) (int64, error) {
	return s.readings.DeleteByUser(ctx, actor.ID)
}

// Interpret validates a drawn spread and produces an interpretation.
func (s *ReadingService) Interpret(ctx context.Context, question string, cards []tarot.DrawnCard) (string, error) {
	question = tarot.SanitizeQuestion(question)
	if err := tarot.ValidateDraw(question, cards); err != nil {
		return "", err
	}
	if s.interpreter == nil {
		return "", apperrors.NewDomainError("INTERPRETER_UNAVAILABLE",
			"interpretation is not configured", http.StatusServiceUnavailable, nil)
	}
	return s.interpreter.Interpret(ctx, question, cards)
}
