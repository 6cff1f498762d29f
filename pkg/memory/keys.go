package memory

import (
	"fmt"
	"strings"
)

// HistoryKey is the list holding a user's recent turns.
func HistoryKey(userID string) string {
	return fmt.Sprintf("user:%s:history", userID)
}

// SessionKey is the list holding a session's turns.
func SessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s:messages", sessionID)
}

// ContextKey is the sorted set holding a user's interest tokens.
func ContextKey(userID string) string {
	return fmt.Sprintf("user:%s:context", userID)
}

func validUserID(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrInvalidUserID
	}
	return nil
}

func validSessionID(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrInvalidSessionID
	}
	return nil
}
