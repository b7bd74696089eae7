package tarot

import (
	"context"
	"fmt"
	"strings"
)

// Interpreter produces an interpretation for a drawn spread. Implementations
// backed by external AI providers plug in here.
type Interpreter interface {
	Interpret(ctx context.Context, question string, cards []DrawnCard) (string, error)
}

// TemplateInterpreter is a deterministic interpreter that composes the
// reading from the cards' own meaning texts. It stands in where no AI
// provider is configured.
type TemplateInterpreter struct{}

// NewTemplateInterpreter constructs the interpreter.
func NewTemplateInterpreter() *TemplateInterpreter {
	return &TemplateInterpreter{}
}

func (t *TemplateInterpreter) Interpret(_ context.Context, question string, cards []DrawnCard) (string, error) {
	var b strings.Builder

	if question != "" {
		fmt.Fprintf(&b, "Question: %q\n\n", question)
	} else {
		b.WriteString("An open reading, with no specific question.\n\n")
	}

	for i, drawn := range cards {
		orientation := "upright"
		if drawn.IsReversed {
			orientation = "reversed"
		}
		name := drawn.Card.Name
		if drawn.Card.NameVi != "" {
			name = fmt.Sprintf("%s (%s)", drawn.Card.Name, drawn.Card.NameVi)
		}
		fmt.Fprintf(&b, "Card %d: %s, %s\n", i+1, name, orientation)
		fmt.Fprintf(&b, "Position: %s", drawn.Position.Name)
		if drawn.Position.Description != "" {
			fmt.Fprintf(&b, " - %s", drawn.Position.Description)
		}
		b.WriteString("\n")
		if meaning := strings.TrimSpace(drawn.Meaning()); meaning != "" {
			fmt.Fprintf(&b, "Meaning: %s\n", meaning)
		}
		b.WriteString("\n")
	}

	b.WriteString(summaryLine(cards))
	return b.String(), nil
}

func summaryLine(cards []DrawnCard) string {
	reversed := 0
	for _, drawn := range cards {
		if drawn.IsReversed {
			reversed++
		}
	}
	switch {
	case reversed == 0:
		return "All cards fell upright: the spread points to energies flowing in their natural direction."
	case reversed == len(cards):
		return "Every card fell reversed: the spread suggests blocked or inward-turned energies worth sitting with."
	default:
		return fmt.Sprintf("%d of %d cards fell reversed: read the upright cards as the current, the reversed as the undertow.", reversed, len(cards))
	}
}
