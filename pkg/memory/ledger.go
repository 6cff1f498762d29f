package memory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mindneox/recall/pkg/kvstore"
)

// Ledger keeps the bounded, expiring turn lists per user and per session.
type Ledger struct {
	store  kvstore.Store
	limits Limits
	now    func() time.Time
}

// NewLedger creates a ledger over store.
func NewLedger(store kvstore.Store, limits Limits) *Ledger {
	return &Ledger{
		store:  store,
		limits: limits.withDefaults(),
		now:    time.Now,
	}
}

// AppendTurn pushes a new turn to the front of the user's history (trimmed
// to HistoryLimit, expiring after HistoryTTL) and, independently, to the
// front of the session's list (expiring after SessionTTL). Both writes are
// attempted even if the first fails; the returned turn is what was written.
func (l *Ledger) AppendTurn(ctx context.Context, userID, sessionID, userText, assistantText string) (Turn, error) {
	if err := validUserID(userID); err != nil {
		return Turn{}, err
	}
	if err := validSessionID(sessionID); err != nil {
		return Turn{}, err
	}

	turn := Turn{
		Timestamp:         l.now().UTC(),
		UserMessage:       userText,
		AssistantResponse: assistantText,
		SessionID:         sessionID,
	}

	raw, err := EncodeTurn(turn)
	if err != nil {
		return Turn{}, fmt.Errorf("encode turn: %w", err)
	}

	var errs []error
	if err := l.push(ctx, HistoryKey(userID), raw, l.limits.HistoryLimit, l.limits.HistoryTTL); err != nil {
		errs = append(errs, fmt.Errorf("append user history: %w", err))
	}
	if err := l.push(ctx, SessionKey(sessionID), raw, 0, l.limits.SessionTTL); err != nil {
		errs = append(errs, fmt.Errorf("append session history: %w", err))
	}

	return turn, errors.Join(errs...)
}

// GetUserHistory returns at most min(limit, HistoryLimit) turns, newest first.
// Records that fail to decode are skipped and reported through an error
// wrapping ErrMalformedTurn alongside the turns that did decode.
func (l *Ledger) GetUserHistory(ctx context.Context, userID string, limit int64) ([]Turn, error) {
	if err := validUserID(userID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return []Turn{}, nil
	}
	limit = min(limit, l.limits.HistoryLimit)

	return l.read(ctx, HistoryKey(userID), limit-1)
}

// GetSessionHistory returns every turn of the session, newest first.
func (l *Ledger) GetSessionHistory(ctx context.Context, sessionID string) ([]Turn, error) {
	if err := validSessionID(sessionID); err != nil {
		return nil, err
	}

	return l.read(ctx, SessionKey(sessionID), -1)
}

// DeleteUserHistory removes the user's history list. Deleting a missing list
// succeeds.
func (l *Ledger) DeleteUserHistory(ctx context.Context, userID string) error {
	if err := validUserID(userID); err != nil {
		return err
	}

	ctx, cancel := l.limits.bound(ctx)
	defer cancel()

	return l.store.Delete(ctx, HistoryKey(userID))
}

func (l *Ledger) push(ctx context.Context, key, raw string, maxLen int64, ttl time.Duration) error {
	ctx, cancel := l.limits.bound(ctx)
	defer cancel()

	return l.store.PushCapped(ctx, key, raw, maxLen, ttl)
}

func (l *Ledger) read(ctx context.Context, key string, stop int64) ([]Turn, error) {
	ctx, cancel := l.limits.bound(ctx)
	defer cancel()

	records, err := l.store.Range(ctx, key, 0, stop)
	if err != nil {
		return []Turn{}, err
	}

	return decodeTurns(records)
}

func decodeTurns(records []string) ([]Turn, error) {
	turns := make([]Turn, 0, len(records))
	skipped := 0
	var first error

	for _, raw := range records {
		t, err := DecodeTurn(raw)
		if err != nil {
			skipped++
			if first == nil {
				first = err
			}
			continue
		}
		turns = append(turns, t)
	}

	if skipped > 0 {
		return turns, &MalformedError{Skipped: skipped, Total: len(records), Err: first}
	}
	return turns, nil
}

// MalformedError reports stored records that were skipped while reading.
type MalformedError struct {
	Skipped int
	Total   int
	Err     error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("skipped %d of %d stored turns: %v", e.Skipped, e.Total, e.Err)
}

func (e *MalformedError) Unwrap() error {
	return e.Err
}
