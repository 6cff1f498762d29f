package memory

import (
	"context"
	"time"
)

// Default bounds applied to stored conversation state.
const (
	DefaultHistoryLimit     = 20
	DefaultHistoryTTL       = 30 * 24 * time.Hour
	DefaultSessionTTL       = time.Hour
	DefaultTokenMinLength   = 5
	DefaultContextWindow    = 5
	DefaultContextTurns     = 3
	DefaultGreetingKeywords = 5
	DefaultGreetingTopics   = 3
	DefaultProfileKeywords  = 10
	DefaultProfileHistory   = 100
	DefaultOpTimeout        = 2 * time.Second
)

// Limits bounds the size and lifetime of stored conversation state.
// Zero fields fall back to the defaults above.
type Limits struct {
	// HistoryLimit caps the per-user history list.
	HistoryLimit int64

	// HistoryTTL is the whole-key expiration of user history and interests,
	// refreshed on every write.
	HistoryTTL time.Duration

	// SessionTTL is the whole-key expiration of session history.
	SessionTTL time.Duration

	// TokenMinLength is the minimum number of characters a token needs to
	// count as an interest.
	TokenMinLength int

	// ContextWindow is how many recent turns the context assembler reads.
	ContextWindow int64

	// ContextTurns is the default number of turns rendered into a context block.
	ContextTurns int

	// GreetingKeywords is how many keywords the predictor reads.
	GreetingKeywords int64

	// GreetingTopics is how many of those keywords the greeting names.
	GreetingTopics int

	// ProfileKeywords is how many keywords a profile lists.
	ProfileKeywords int64

	// ProfileHistory caps the conversation count reported in a profile.
	ProfileHistory int64

	// OpTimeout bounds every store round trip.
	OpTimeout time.Duration
}

// DefaultLimits returns the stock limits.
func DefaultLimits() Limits {
	return Limits{}.withDefaults()
}

func (l Limits) withDefaults() Limits {
	if l.HistoryLimit <= 0 {
		l.HistoryLimit = DefaultHistoryLimit
	}
	if l.HistoryTTL <= 0 {
		l.HistoryTTL = DefaultHistoryTTL
	}
	if l.SessionTTL <= 0 {
		l.SessionTTL = DefaultSessionTTL
	}
	if l.TokenMinLength <= 0 {
		l.TokenMinLength = DefaultTokenMinLength
	}
	if l.ContextWindow <= 0 {
		l.ContextWindow = DefaultContextWindow
	}
	if l.ContextTurns <= 0 {
		l.ContextTurns = DefaultContextTurns
	}
	if l.GreetingKeywords <= 0 {
		l.GreetingKeywords = DefaultGreetingKeywords
	}
	if l.GreetingTopics <= 0 {
		l.GreetingTopics = DefaultGreetingTopics
	}
	if l.ProfileKeywords <= 0 {
		l.ProfileKeywords = DefaultProfileKeywords
	}
	if l.ProfileHistory <= 0 {
		l.ProfileHistory = DefaultProfileHistory
	}
	if l.OpTimeout <= 0 {
		l.OpTimeout = DefaultOpTimeout
	}
	return l
}

// bound derives a context that expires after OpTimeout.
func (l Limits) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, l.OpTimeout)
}
