package plugin

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soyeahso/botway/internal/activity"
	"github.com/soyeahso/botway/internal/container"
	"github.com/soyeahso/botway/internal/events"
	"github.com/soyeahso/botway/internal/logging"
	"github.com/soyeahso/botway/internal/stream"
)

type fakePlugin struct {
	name    string
	api     *API
	inits   int
	closes  int
	initErr error

	activities []*events.ActivityEvent
	errs       []*events.ErrorEvent
}

func (p *fakePlugin) Name() string { return p.name }

func (p *fakePlugin) Init(_ context.Context, api *API) error {
	p.inits++
	p.api = api
	return p.initErr
}

func (p *fakePlugin) Close() error {
	p.closes++
	return nil
}

func (p *fakePlugin) OnActivity(_ context.Context, e *events.ActivityEvent) {
	p.activities = append(p.activities, e)
}

func (p *fakePlugin) OnError(_ context.Context, e *events.ErrorEvent) {
	p.errs = append(p.errs, e)
}

type fakeSender struct {
	fakePlugin
}

func (s *fakeSender) Send(_ context.Context, a *activity.Activity, _ activity.ConversationReference) (*activity.Activity, error) {
	return a, nil
}

func (s *fakeSender) CreateStream(context.Context, activity.ConversationReference) stream.Stream {
	return stream.Discard()
}

func newTestRegistry() (*Registry, *events.Bus, *container.Container) {
	log := logging.New(nil, "silent")
	bus := events.NewBus(log)
	c := container.New()
	return NewRegistry(bus, c, log), bus, c
}

func TestRegistry_Register_Duplicate(t *testing.T) {
	r, _, _ := newTestRegistry()

	require.NoError(t, r.Register(&fakePlugin{name: "alpha"}))

	err := r.Register(&fakePlugin{name: "alpha"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "alpha")
	assert.Equal(t, 1, r.Count())
}

func TestRegistry_Register_BindsContainer(t *testing.T) {
	r, _, c := newTestRegistry()

	p := &fakePlugin{name: "alpha"}
	require.NoError(t, r.Register(p))

	got, err := c.Resolve("plugin.alpha")
	require.NoError(t, err)
	assert.Same(t, p, got)
}

func TestRegistry_InitAll_Order(t *testing.T) {
	r, _, _ := newTestRegistry()

	a := &fakePlugin{name: "alpha"}
	b := &fakePlugin{name: "beta"}
	require.NoError(t, r.Register(a))
	require.NoError(t, r.Register(b))

	require.NoError(t, r.InitAll(context.Background()))
	assert.Equal(t, 1, a.inits)
	assert.Equal(t, 1, b.inits)
	require.NotNil(t, a.api)
	assert.NotNil(t, a.api.Log)
	assert.NotNil(t, a.api.Bus)
	assert.NotNil(t, a.api.Container)
	assert.NotNil(t, a.api.Emit)

	r.CloseAll()
	assert.Equal(t, 1, a.closes)
	assert.Equal(t, 1, b.closes)
}

func TestRegistry_InitAll_StopsOnError(t *testing.T) {
	r, _, _ := newTestRegistry()

	a := &fakePlugin{name: "alpha", initErr: errors.New("bad config")}
	b := &fakePlugin{name: "beta"}
	require.NoError(t, r.Register(a))
	require.NoError(t, r.Register(b))

	err := r.InitAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "alpha")
	assert.Equal(t, 0, b.inits)
}

func TestRegistry_HooksObserveEvents(t *testing.T) {
	r, bus, _ := newTestRegistry()

	p := &fakePlugin{name: "observer"}
	require.NoError(t, r.Register(p))

	e := &events.ActivityEvent{Activity: &activity.Activity{ID: "a1"}}
	bus.Emit(context.Background(), nil, events.EventActivity, e)

	require.Len(t, p.activities, 1)
	assert.Equal(t, "a1", p.activities[0].Activity.ID)
}

func TestRegistry_HooksExcludeSelf(t *testing.T) {
	r, _, _ := newTestRegistry()

	a := &fakePlugin{name: "alpha"}
	b := &fakePlugin{name: "beta"}
	require.NoError(t, r.Register(a))
	require.NoError(t, r.Register(b))
	require.NoError(t, r.InitAll(context.Background()))

	a.api.Emit(context.Background(), events.EventError, &events.ErrorEvent{Err: errors.New("boom")})

	assert.Empty(t, a.errs, "a plugin must not observe its own emission")
	require.Len(t, b.errs, 1)
}

func TestRegistry_EmitterNamespacedRelay(t *testing.T) {
	r, bus, _ := newTestRegistry()

	p := &fakePlugin{name: "devtools"}
	require.NoError(t, r.Register(p))
	require.NoError(t, r.InitAll(context.Background()))

	var bare, scoped int
	bus.On(events.EventError, "bare", nil, func(context.Context, events.Payload) any {
		bare++
		return nil
	})
	bus.On("devtools."+events.EventError, "scoped", nil, func(context.Context, events.Payload) any {
		scoped++
		return nil
	})

	p.api.Emit(context.Background(), events.EventError, &events.ErrorEvent{Err: errors.New("boom")})

	assert.Equal(t, 1, bare)
	assert.Equal(t, 1, scoped)
}

func TestRegistry_Senders(t *testing.T) {
	r, _, _ := newTestRegistry()

	require.NoError(t, r.Register(&fakePlugin{name: "observer"}))
	s1 := &fakeSender{fakePlugin: fakePlugin{name: "sender-one"}}
	s2 := &fakeSender{fakePlugin: fakePlugin{name: "sender-two"}}
	require.NoError(t, r.Register(s1))
	require.NoError(t, r.Register(s2))

	senders := r.Senders()
	require.Len(t, senders, 2)
	assert.Equal(t, "sender-one", senders[0].Name())
	assert.Equal(t, "sender-two", senders[1].Name())
}

func TestRegistry_GetAndList(t *testing.T) {
	r, _, _ := newTestRegistry()

	p := &fakePlugin{name: "alpha"}
	require.NoError(t, r.Register(p))
	require.NoError(t, r.Register(&fakePlugin{name: "beta"}))

	assert.Same(t, p, r.Get("alpha"))
	assert.Nil(t, r.Get("missing"))
	assert.Equal(t, []string{"alpha", "beta"}, r.List())
}
