// Package api defines the platform REST client consumed by the engine: the
// user token service used by the sign-in flow and the conversation service
// used to deliver outbound activities.
package api

import (
	"context"
	"fmt"

	"github.com/soyeahso/botway/internal/activity"
)

// Error is a typed HTTP fault from the platform API.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api: %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api: %d: %s", e.Status, e.Message)
}

// GetTokenParams identifies the delegated token to resolve. Code carries the
// sign-in proof code during state verification and is empty otherwise.
type GetTokenParams struct {
	ChannelID      string
	ConnectionName string
	UserID         string
	Code           string
}

// ExchangeTokenParams identifies a single-sign-on token exchange.
type ExchangeTokenParams struct {
	ChannelID      string
	ConnectionName string
	UserID         string
	Token          string
}

// TokenResponse is a resolved delegated user token.
type TokenResponse struct {
	ConnectionName string `json:"connectionName"`
	Token          string `json:"token"`
	Expiration     string `json:"expiration,omitempty"`
}

// UserTokenClient talks to the platform's user token service.
type UserTokenClient interface {
	// GetToken resolves the delegated token for a signed-in user. The
	// platform answers 404 while no token is available.
	GetToken(ctx context.Context, p GetTokenParams) (*TokenResponse, error)

	// ExchangeToken exchanges a single-sign-on token for a delegated token.
	ExchangeToken(ctx context.Context, p ExchangeTokenParams) (*TokenResponse, error)

	// SignOut revokes the user's delegated token for a connection.
	SignOut(ctx context.Context, channelID, connectionName, userID string) error
}

// ConversationClient delivers outbound activities to the platform.
type ConversationClient interface {
	// SendToConversation posts an activity into the referenced conversation
	// and returns the activity as accepted by the platform (with its
	// assigned ID).
	SendToConversation(ctx context.Context, ref activity.ConversationReference, a *activity.Activity) (*activity.Activity, error)
}

// Client is the platform API surface the engine consumes.
type Client interface {
	UserToken() UserTokenClient
	Conversations() ConversationClient
}
