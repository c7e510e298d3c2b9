// Package oauth holds the state of the sign-in handshake: the pending
// sign-in record persisted between the token-exchange and verify-state
// invokes, and the classification of upstream token-service faults.
package oauth

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/soyeahso/botway/internal/store"
)

// PendingSignIn remembers which OAuth connection a user started, so the bot
// can finish the handshake when the platform calls back with a proof code.
type PendingSignIn struct {
	ConnectionName string `json:"connectionName"`
}

// Key returns the storage key for a pending sign-in. Scoping the key per
// (conversation, user) makes cross-request interference impossible by
// construction.
func Key(conversationID, userID string) string {
	return fmt.Sprintf("auth/%s/%s", conversationID, userID)
}

// Retryable reports whether an upstream token-service status is part of the
// expected handshake flow. These statuses are surfaced as a 412 so the
// platform's own sign-in UI retries; everything else is fatal.
func Retryable(status int) bool {
	switch status {
	case 400, 404, 412:
		return true
	default:
		return false
	}
}

// Save persists a pending sign-in record.
func Save(ctx context.Context, s store.Storage, key string, p PendingSignIn) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding pending sign-in: %w", err)
	}
	if err := s.Set(ctx, key, data); err != nil {
		return fmt.Errorf("saving pending sign-in: %w", err)
	}
	return nil
}

// Load reads a pending sign-in record, if one exists.
func Load(ctx context.Context, s store.Storage, key string) (*PendingSignIn, bool, error) {
	data, ok, err := s.Get(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("loading pending sign-in: %w", err)
	}
	if !ok {
		return nil, false, nil
	}
	var p PendingSignIn
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, false, fmt.Errorf("decoding pending sign-in: %w", err)
	}
	return &p, true, nil
}

// Clear removes a pending sign-in record.
func Clear(ctx context.Context, s store.Storage, key string) error {
	return s.Delete(ctx, key)
}
