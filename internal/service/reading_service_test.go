package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/tarot-service/internal/domain"
	"github.com/spec-kit/tarot-service/internal/tarot"
)

func newReadingFixture(t *testing.T) (*ReadingService, *memReadingRepo, *domain.User, *domain.User) {
	t.Helper()
	users := newMemUserRepo()
	owner := users.seed(domain.User{Email: "mai@example.com", Username: "mai", Role: domain.RoleUser})
	other := users.seed(domain.User{Email: "nam@example.com", Username: "nam", Role: domain.RoleUser})
	readings := newMemReadingRepo()
	svc := NewReadingService(readings, tarot.NewTemplateInterpreter())
	return svc, readings, owner, other
}

func sampleCards(n int) []domain.ReadingCard {
	cards := make([]domain.ReadingCard, n)
	for i := range cards {
		cards[i] = domain.ReadingCard{Name: "The Fool", Position: "Present"}
	}
	return cards
}

func TestSaveReading(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		svc, _, owner, _ := newReadingFixture(t)
		question := "What should I focus on?"
		reading, err := svc.SaveReading(ctx, owner, ReadingCreateInput{
			SpreadType: "three-card",
			Question:   &question,
			Cards:      sampleCards(3),
		})
		require.NoError(t, err)
		assert.NotEmpty(t, reading.ID)
		assert.Equal(t, owner.ID, reading.UserID)
		assert.Len(t, reading.Cards, 3)
	})

	t.Run("MissingSpreadType", func(t *testing.T) {
		svc, _, owner, _ := newReadingFixture(t)
		_, err := svc.SaveReading(ctx, owner, ReadingCreateInput{Cards: sampleCards(1)})
		requireDomainError(t, err, 400)
	})

	t.Run("NoCards", func(t *testing.T) {
		svc, _, owner, _ := newReadingFixture(t)
		_, err := svc.SaveReading(ctx, owner, ReadingCreateInput{SpreadType: "single"})
		requireDomainError(t, err, 400)
	})

	t.Run("TooManyCards", func(t *testing.T) {
		svc, _, owner, _ := newReadingFixture(t)
		_, err := svc.SaveReading(ctx, owner, ReadingCreateInput{
			SpreadType: "celtic-cross",
			Cards:      sampleCards(tarot.MaxDrawnCards + 1),
		})
		requireDomainError(t, err, 400)
	})

	t.Run("CardMissingName", func(t *testing.T) {
		svc, _, owner, _ := newReadingFixture(t)
		_, err := svc.SaveReading(ctx, owner, ReadingCreateInput{
			SpreadType: "single",
			Cards:      []domain.ReadingCard{{Position: "Present"}},
		})
		requireDomainError(t, err, 400)
	})
}

func TestReadingHistory(t *testing.T) {
	ctx := context.Background()
	svc, _, owner, other := newReadingFixture(t)

	first, err := svc.SaveReading(ctx, owner, ReadingCreateInput{
		SpreadType: "single", Cards: sampleCards(1),
	})
	require.NoError(t, err)
	second, err := svc.SaveReading(ctx, owner, ReadingCreateInput{
		SpreadType: "three-card", Cards: sampleCards(3),
	})
	require.NoError(t, err)
	_, err = svc.SaveReading(ctx, other, ReadingCreateInput{
		SpreadType: "single", Cards: sampleCards(1),
	})
	require.NoError(t, err)

	t.Run("ListReturnsOwnNewestFirst", func(t *testing.T) {
		list, err := svc.ListReadings(ctx, owner)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, second.ID, list[0].ID)
		assert.Equal(t, first.ID, list[1].ID)
	})

	t.Run("GetOwn", func(t *testing.T) {
		got, err := svc.GetReading(ctx, first.ID, owner)
		require.NoError(t, err)
		assert.Equal(t, first.ID, got.ID)
	})

	t.Run("GetForeignForbidden", func(t *testing.T) {
		_, err := svc.GetReading(ctx, first.ID, other)
		requireDomainError(t, err, 403)
	})

	t.Run("GetUnknown", func(t *testing.T) {
		_, err := svc.GetReading(ctx, "33333333-3333-3333-3333-333333333333", owner)
		requireDomainError(t, err, 404)
	})

	t.Run("GetMalformedID", func(t *testing.T) {
		_, err := svc.GetReading(ctx, "not-a-uuid", owner)
		requireDomainError(t, err, 404)
	})

	t.Run("ClearDeletesOnlyOwn", func(t *testing.T) {
		deleted, err := svc.ClearHistory(ctx, owner)
		require.NoError(t, err)
		assert.Equal(t, int64(2), deleted)

		remaining, err := svc.ListReadings(ctx, other)
		require.NoError(t, err)
		assert.Len(t, remaining, 1)
	})
}

func TestInterpret(t *testing.T) {
	ctx := context.Background()

	draw := []tarot.DrawnCard{
		{
			Card:     tarot.Card{Name: "The Fool", Upright: "new beginnings", Reversed: "recklessness"},
			Position: tarot.Position{Name: "Present"},
		},
		{
			Card:       tarot.Card{Name: "The Tower", Upright: "upheaval", Reversed: "disaster averted"},
			Position:   tarot.Position{Name: "Future"},
			IsReversed: true,
		},
	}

	t.Run("TemplateOutputMentionsCards", func(t *testing.T) {
		svc, _, _, _ := newReadingFixture(t)
		out, err := svc.Interpret(ctx, "Will my career change?", draw)
		require.NoError(t, err)
		assert.Contains(t, out, "The Fool")
		assert.Contains(t, out, "The Tower")
		assert.Contains(t, out, "new beginnings")
		assert.Contains(t, out, "disaster averted")
	})

	t.Run("QuestionSanitized", func(t *testing.T) {
		svc, _, _, _ := newReadingFixture(t)
		out, err := svc.Interpret(ctx, "  <script>alert()</script>love?\x00  ", draw)
		require.NoError(t, err)
		assert.NotContains(t, out, "<")
		assert.NotContains(t, out, ">")
		assert.NotContains(t, out, "\x00")
	})

	t.Run("QuestionTooLong", func(t *testing.T) {
		svc, _, _, _ := newReadingFixture(t)
		_, err := svc.Interpret(ctx, strings.Repeat("q", tarot.MaxQuestionLength+1), draw)
		requireDomainError(t, err, 400)
	})

	t.Run("NoCards", func(t *testing.T) {
		svc, _, _, _ := newReadingFixture(t)
		_, err := svc.Interpret(ctx, "anything?", nil)
		requireDomainError(t, err, 400)
	})

	t.Run("NoInterpreterConfigured", func(t *testing.T) {
		svc := NewReadingService(newMemReadingRepo(), nil)
		_, err := svc.Interpret(ctx, "anything?", draw)
		de := requireDomainError(t, err, 503)
		assert.Equal(t, "INTERPRETER_UNAVAILABLE", de.Code)
	})
}
