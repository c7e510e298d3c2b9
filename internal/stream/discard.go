package stream

import "github.com/soyeahso/botway/internal/activity"

// Discard returns a stream that drops everything. Used when a request has no
// sender to deliver through, so handlers can stream unconditionally.
func Discard() Stream {
	return discard{}
}

type discard struct{}

func (discard) Write(string) {}

func (discard) Send(a *activity.Activity) (*activity.Activity, error) { return a, nil }

func (discard) OnChunk(func(*activity.Activity)) {}

func (discard) Close() error { return nil }
