package memory

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/mindneox/recall/pkg/kvstore"
)

// Keyword is an interest token and how many times the user has used it.
type Keyword struct {
	Keyword   string `json:"keyword"`
	Frequency int64  `json:"frequency"`
}

// Tokenize lowercases text, splits it on whitespace and keeps the tokens
// with at least minLength characters. Duplicates are kept so that each
// occurrence counts.
func Tokenize(text string, minLength int) []string {
	fields := strings.Fields(strings.ToLower(text))
	tokens := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) >= minLength {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// InterestModel keeps a per-user frequency ranking of message tokens.
// Counts only grow; the whole set expires HistoryTTL after its last write.
type InterestModel struct {
	store  kvstore.Store
	limits Limits
}

// NewInterestModel creates an interest model over store.
func NewInterestModel(store kvstore.Store, limits Limits) *InterestModel {
	return &InterestModel{
		store:  store,
		limits: limits.withDefaults(),
	}
}

// RecordTokens increments the user's count for every surviving token of
// text by one per occurrence and refreshes the expiration. It returns the
// tokens that were counted.
func (m *InterestModel) RecordTokens(ctx context.Context, userID, text string) ([]string, error) {
	if err := validUserID(userID); err != nil {
		return nil, err
	}

	tokens := Tokenize(text, m.limits.TokenMinLength)
	if len(tokens) == 0 {
		return tokens, nil
	}

	ctx, cancel := m.limits.bound(ctx)
	defer cancel()

	if err := m.store.IncrMembers(ctx, ContextKey(userID), tokens, m.limits.HistoryTTL); err != nil {
		return nil, err
	}
	return tokens, nil
}

// TopKeywords returns at most limit keywords by descending frequency.
// Equal frequencies are ordered by descending token, the order Redis uses
// for ZREVRANGE.
func (m *InterestModel) TopKeywords(ctx context.Context, userID string, limit int64) ([]Keyword, error) {
	if err := validUserID(userID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return []Keyword{}, nil
	}

	ctx, cancel := m.limits.bound(ctx)
	defer cancel()

	members, err := m.store.TopMembers(ctx, ContextKey(userID), limit)
	if err != nil {
		return []Keyword{}, err
	}

	keywords := make([]Keyword, 0, len(members))
	for _, member := range members {
		keywords = append(keywords, Keyword{
			Keyword:   member.Member,
			Frequency: int64(member.Score),
		})
	}
	return keywords, nil
}

// DeleteContext removes the user's interest set. Deleting a missing set
// succeeds.
func (m *InterestModel) DeleteContext(ctx context.Context, userID string) error {
	if err := validUserID(userID); err != nil {
		return err
	}

	ctx, cancel := m.limits.bound(ctx)
	defer cancel()

	return m.store.Delete(ctx, ContextKey(userID))
}
