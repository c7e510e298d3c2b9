package app

import (
	"context"

	"github.com/soyeahso/botway/internal/activity"
	"github.com/soyeahso/botway/internal/api"
	"github.com/soyeahso/botway/internal/logging"
	"github.com/soyeahso/botway/internal/store"
	"github.com/soyeahso/botway/internal/stream"
)

// Context is the per-request aggregate handed to handlers. It is created at
// the start of Process, owned by that single request, and discarded at its
// end; it is never shared across requests.
type Context struct {
	// AppID is the bot's resolved application id.
	AppID string

	// Log is the request-scoped logger.
	Log *logging.Logger

	// Storage is the application key-value store.
	Storage store.Storage

	// API is the platform client, nil when the app was built without one.
	API api.Client

	// Activity is the inbound activity. Read-only to handlers except for
	// reply-linking fields.
	Activity *activity.Activity

	// Ref addresses the conversation independent of the activity.
	Ref activity.ConversationReference

	// IsSignedIn reports whether a delegated user token was resolved.
	IsSignedIn bool

	// UserToken is the delegated token, empty when not signed in.
	UserToken string

	// Extra is a mutable property bag scoped to the request.
	Extra map[string]any

	ctx    context.Context
	stream stream.Stream
	next   func() (any, error)
}

// Context returns the request's cancellation context.
func (c *Context) Context() context.Context {
	return c.ctx
}

// Next passes control to the next matched handler and returns its result.
// Past the end of the chain it returns the last non-nil handler result.
func (c *Context) Next() (any, error) {
	return c.next()
}

// Stream returns the outbound stream bound to this conversation.
func (c *Context) Stream() stream.Stream {
	return c.stream
}

// Send appends text to the outbound stream; chunks are delivered at natural
// boundaries.
func (c *Context) Send(text string) {
	c.stream.Write(text)
}

// Reply sends a message activity immediately, linked to the inbound
// activity.
func (c *Context) Reply(text string) (*activity.Activity, error) {
	return c.stream.Send(c.Activity.Reply(text))
}

// SendActivity sends a whole activity immediately.
func (c *Context) SendActivity(a *activity.Activity) (*activity.Activity, error) {
	return c.stream.Send(a)
}
