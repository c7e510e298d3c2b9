// Package events provides the engine's typed publish/subscribe bus.
// Payloads form a closed union; subscribers run in registration order and a
// non-nil return short-circuits the emit and becomes its result.
package events

import (
	"time"

	"github.com/soyeahso/botway/internal/activity"
)

// Event names for the engine lifecycle.
const (
	EventStart            = "start"
	EventError            = "error"
	EventActivity         = "activity"
	EventActivitySent     = "activity.sent"
	EventActivityResponse = "activity.response"
)

// Payload is the closed union of event payload types.
type Payload interface {
	isPayload()
}

// StartEvent signals that the application finished startup.
type StartEvent struct {
	Time time.Time
}

// ErrorEvent carries a fault raised while processing an activity. Activity
// is nil for faults outside a request.
type ErrorEvent struct {
	Err      error
	Activity *activity.Activity
}

// ActivityEvent reports an inbound activity entering the pipeline.
type ActivityEvent struct {
	Activity *activity.Activity
	Ref      activity.ConversationReference
	Token    string
}

// ActivitySentEvent reports one outbound activity (or stream chunk) leaving
// through a sender.
type ActivitySentEvent struct {
	Activity *activity.Activity
	Ref      activity.ConversationReference
}

// ActivityResponseEvent reports the Response computed for an inbound activity.
type ActivityResponseEvent struct {
	Activity *activity.Activity
	Response *activity.Response
}

func (*StartEvent) isPayload()            {}
func (*ErrorEvent) isPayload()            {}
func (*ActivityEvent) isPayload()         {}
func (*ActivitySentEvent) isPayload()     {}
func (*ActivityResponseEvent) isPayload() {}
