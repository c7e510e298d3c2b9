// Package stream provides the per-request outbound streaming abstraction.
// A stream is bound to one conversation; every chunk it delivers is reported
// through a callback so the pipeline can observe incremental output the same
// way as a single final send.
package stream

import "github.com/soyeahso/botway/internal/activity"

// Stream is a live outbound handle bound to one conversation. The pipeline
// closes it exactly once per request, on every exit path.
type Stream interface {
	// Write appends text to the stream buffer. The implementation decides
	// when buffered text is flushed as an outbound activity.
	Write(text string)

	// Send delivers a whole activity immediately, bypassing the buffer.
	Send(a *activity.Activity) (*activity.Activity, error)

	// OnChunk registers the callback invoked for every activity the stream
	// delivers, buffered or not.
	OnChunk(fn func(sent *activity.Activity))

	// Close flushes any remaining buffered text and releases the stream.
	// Close is idempotent.
	Close() error
}
