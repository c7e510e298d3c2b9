package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soyeahso/botway/internal/activity"
	"github.com/soyeahso/botway/internal/logging"
)

func testBus() *Bus {
	return NewBus(logging.New(nil, "silent"))
}

func TestBus_Emit_RegistrationOrder(t *testing.T) {
	b := testBus()

	var order []string
	b.On(EventActivity, "first", nil, func(_ context.Context, _ Payload) any {
		order = append(order, "first")
		return nil
	})
	b.On(EventActivity, "second", nil, func(_ context.Context, _ Payload) any {
		order = append(order, "second")
		return nil
	})

	b.Emit(context.Background(), nil, EventActivity, &ActivityEvent{})
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestBus_Emit_ShortCircuit(t *testing.T) {
	b := testBus()

	var secondCalled bool
	b.On(EventActivity, "first", nil, func(_ context.Context, _ Payload) any {
		return "handled"
	})
	b.On(EventActivity, "second", nil, func(_ context.Context, _ Payload) any {
		secondCalled = true
		return nil
	})

	result := b.Emit(context.Background(), nil, EventActivity, &ActivityEvent{})
	assert.Equal(t, "handled", result)
	assert.False(t, secondCalled)
}

func TestBus_Emit_SelfExclusion(t *testing.T) {
	b := testBus()

	type component struct{ name string }
	self := &component{name: "self"}
	other := &component{name: "other"}

	var selfCalled, otherCalled bool
	b.On(EventError, "self", self, func(_ context.Context, _ Payload) any {
		selfCalled = true
		return nil
	})
	b.On(EventError, "other", other, func(_ context.Context, _ Payload) any {
		otherCalled = true
		return nil
	})

	b.Emit(context.Background(), self, EventError, &ErrorEvent{Err: errors.New("boom")})

	assert.False(t, selfCalled, "a component must not receive its own emission")
	assert.True(t, otherCalled)
}

func TestBus_TypedOn(t *testing.T) {
	b := testBus()

	var got *ActivitySentEvent
	On(b, EventActivitySent, "typed", nil, func(_ context.Context, e *ActivitySentEvent) any {
		got = e
		return nil
	})

	// Payloads of a different type are ignored by the typed subscriber.
	b.Emit(context.Background(), nil, EventActivitySent, &ErrorEvent{Err: errors.New("wrong shape")})
	assert.Nil(t, got)

	sent := &ActivitySentEvent{Activity: &activity.Activity{ID: "a1", Type: activity.TypeMessage}}
	b.Emit(context.Background(), nil, EventActivitySent, sent)
	require.NotNil(t, got)
	assert.Equal(t, "a1", got.Activity.ID)
}

func TestBus_Count(t *testing.T) {
	b := testBus()
	assert.Equal(t, 0, b.Count(EventStart))

	b.On(EventStart, "one", nil, func(_ context.Context, _ Payload) any { return nil })
	b.On(EventStart, "two", nil, func(_ context.Context, _ Payload) any { return nil })
	assert.Equal(t, 2, b.Count(EventStart))
}
