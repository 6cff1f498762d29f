package memory

import (
	"context"
	"strings"
)

// ContextAssembler renders recent history as a prompt context block.
type ContextAssembler struct {
	ledger *Ledger
	limits Limits
}

// NewContextAssembler creates an assembler reading from ledger.
func NewContextAssembler(ledger *Ledger, limits Limits) *ContextAssembler {
	return &ContextAssembler{
		ledger: ledger,
		limits: limits.withDefaults(),
	}
}

// BuildContextBlock reads up to ContextWindow recent turns, keeps the most
// recent turnsBack of them and renders them oldest first as
// "User: ...\nAssistant: ...\n" pairs. A non-positive turnsBack uses
// ContextTurns. An empty string means no context is available; any turns
// that could be read are still rendered when err is non-nil.
func (a *ContextAssembler) BuildContextBlock(ctx context.Context, userID string, turnsBack int) (string, error) {
	if turnsBack <= 0 {
		turnsBack = a.limits.ContextTurns
	}

	turns, err := a.ledger.GetUserHistory(ctx, userID, a.limits.ContextWindow)
	return RenderContext(turns, turnsBack), err
}

// RenderContext renders the first n of newest-first turns in chronological
// order.
func RenderContext(turns []Turn, n int) string {
	if len(turns) == 0 || n <= 0 {
		return ""
	}
	recent := turns[:min(n, len(turns))]

	var b strings.Builder
	for i := len(recent) - 1; i >= 0; i-- {
		b.WriteString("User: ")
		b.WriteString(recent[i].UserMessage)
		b.WriteString("\nAssistant: ")
		b.WriteString(recent[i].AssistantResponse)
		b.WriteString("\n")
	}
	return b.String()
}
