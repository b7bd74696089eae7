package tarot

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeQuestion(t *testing.T) {
	t.Run("TrimsWhitespace", func(t *testing.T) {
		assert.Equal(t, "love?", SanitizeQuestion("  love?  "))
	})

	t.Run("StripsControlCharacters", func(t *testing.T) {
		assert.Equal(t, "ab", SanitizeQuestion("a\x00\x1bb\n"))
	})

	t.Run("StripsAngleBrackets", func(t *testing.T) {
		assert.Equal(t, "scriptx/script", SanitizeQuestion("<script>x</script>"))
	})

	t.Run("KeepsUnicode", func(t *testing.T) {
		assert.Equal(t, "Tình duyên của tôi?", SanitizeQuestion("Tình duyên của tôi?"))
	})

	t.Run("EmptyStaysEmpty", func(t *testing.T) {
		assert.Equal(t, "", SanitizeQuestion("   "))
	})
}

func TestValidateDraw(t *testing.T) {
	valid := []DrawnCard{{
		Card:     Card{Name: "The Star", Upright: "hope"},
		Position: Position{Name: "Outcome"},
	}}

	t.Run("Valid", func(t *testing.T) {
		require.NoError(t, ValidateDraw("short question", valid))
	})

	t.Run("EmptyQuestionAllowed", func(t *testing.T) {
		require.NoError(t, ValidateDraw("", valid))
	})

	t.Run("QuestionTooLong", func(t *testing.T) {
		assert.Error(t, ValidateDraw(strings.Repeat("q", MaxQuestionLength+1), valid))
	})

	t.Run("QuestionAtLimit", func(t *testing.T) {
		require.NoError(t, ValidateDraw(strings.Repeat("q", MaxQuestionLength), valid))
	})

	t.Run("MultibyteQuestionCountedInRunes", func(t *testing.T) {
		// 500 runes even though far more bytes.
		require.NoError(t, ValidateDraw(strings.Repeat("ữ", MaxQuestionLength), valid))
	})

	t.Run("NoCards", func(t *testing.T) {
		assert.Error(t, ValidateDraw("q", nil))
	})

	t.Run("TooManyCards", func(t *testing.T) {
		cards := make([]DrawnCard, MaxDrawnCards+1)
		for i := range cards {
			cards[i] = valid[0]
		}
		assert.Error(t, ValidateDraw("q", cards))
	})

	t.Run("CardMissingName", func(t *testing.T) {
		assert.Error(t, ValidateDraw("q", []DrawnCard{{Position: Position{Name: "Present"}}}))
	})

	t.Run("CardMissingPosition", func(t *testing.T) {
		assert.Error(t, ValidateDraw("q", []DrawnCard{{Card: Card{Name: "The Sun"}}}))
	})
}

func TestDrawnCardMeaning(t *testing.T) {
	card := DrawnCard{Card: Card{Name: "Death", Upright: "transformation", Reversed: "resistance to change"}}
	assert.Equal(t, "transformation", card.Meaning())
	card.IsReversed = true
	assert.Equal(t, "resistance to change", card.Meaning())
}

func TestTemplateInterpreter(t *testing.T) {
	ctx := context.Background()
	interp := NewTemplateInterpreter()

	cards := []DrawnCard{
		{
			Card:     Card{Name: "The Moon", NameVi: "Mặt Trăng", Upright: "intuition"},
			Position: Position{Name: "Present", Description: "where you stand"},
		},
		{
			Card:       Card{Name: "The Sun", Upright: "joy", Reversed: "clouded optimism"},
			Position:   Position{Name: "Future"},
			IsReversed: true,
		},
	}

	t.Run("Deterministic", func(t *testing.T) {
		first, err := interp.Interpret(ctx, "What next?", cards)
		require.NoError(t, err)
		second, err := interp.Interpret(ctx, "What next?", cards)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("IncludesQuestionCardsAndMeanings", func(t *testing.T) {
		out, err := interp.Interpret(ctx, "What next?", cards)
		require.NoError(t, err)
		assert.Contains(t, out, "What next?")
		assert.Contains(t, out, "The Moon (Mặt Trăng)")
		assert.Contains(t, out, "intuition")
		assert.Contains(t, out, "The Sun")
		assert.Contains(t, out, "clouded optimism")
		assert.Contains(t, out, "where you stand")
		assert.Contains(t, out, "1 of 2 cards fell reversed")
	})

	t.Run("OpenReadingWithoutQuestion", func(t *testing.T) {
		out, err := interp.Interpret(ctx, "", cards[:1])
		require.NoError(t, err)
		assert.Contains(t, out, "open reading")
		assert.Contains(t, out, "All cards fell upright")
	})

	t.Run("AllReversedSummary", func(t *testing.T) {
		out, err := interp.Interpret(ctx, "", cards[1:])
		require.NoError(t, err)
		assert.Contains(t, out, "Every card fell reversed")
	})
}
