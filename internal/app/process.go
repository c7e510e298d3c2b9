package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/soyeahso/botway/internal/activity"
	"github.com/soyeahso/botway/internal/api"
	"github.com/soyeahso/botway/internal/events"
	"github.com/soyeahso/botway/internal/plugin"
	"github.com/soyeahso/botway/internal/stream"
)

// Process turns one (sender, security token, activity) triple into exactly
// one Response. No error escapes to the caller: faults become an error event
// plus a 500 (or the upstream status for HTTP-shaped faults). If sender is
// nil, the first registered sender plugin is used.
func (a *App) Process(ctx context.Context, sender plugin.Sender, token string, act *activity.Activity, extra map[string]any) *activity.Response {
	started := time.Now()

	if sender == nil {
		if senders := a.plugins.Senders(); len(senders) > 0 {
			sender = senders[0]
		}
	}

	handlers := a.router.Select(act)
	ref := activity.NewReference(act)

	if extra == nil {
		extra = make(map[string]any)
	}
	rc := &Context{
		AppID:    a.appID,
		Log:      a.log.Sub("handler"),
		Storage:  a.storage,
		API:      a.client,
		Activity: act,
		Ref:      ref,
		Extra:    extra,
		ctx:      ctx,
	}

	// Best-effort delegated token resolution: failure to resolve is treated
	// as "not signed in" and never aborts the request. Transient faults are
	// indistinguishable from a signed-out user here, so they are logged at
	// debug for operators.
	if a.client != nil && a.connectionName != "" {
		tok, err := a.client.UserToken().GetToken(ctx, api.GetTokenParams{
			ChannelID:      act.ChannelID,
			ConnectionName: a.connectionName,
			UserID:         act.From.ID,
		})
		if err != nil {
			a.log.Debug().Err(err).
				Str("user", act.From.ID).
				Str("connection", a.connectionName).
				Msg("delegated token unavailable")
		} else {
			rc.IsSignedIn = true
			rc.UserToken = tok.Token
		}
	}

	if sender != nil {
		st := sender.CreateStream(ctx, ref)
		st.OnChunk(func(sent *activity.Activity) {
			a.bus.Emit(ctx, a, events.EventActivitySent, &events.ActivitySentEvent{Activity: sent, Ref: ref})
		})
		rc.stream = st
	} else {
		rc.stream = stream.Discard()
	}
	// The one required scoped-resource discipline: the stream is closed
	// exactly once on every exit path.
	defer rc.stream.Close()

	a.bus.Emit(ctx, a, events.EventActivity, &events.ActivityEvent{Activity: act, Ref: ref, Token: token})

	invoked := 0
	idx := -1
	var last any
	rc.next = func() (any, error) {
		idx++
		if idx >= len(handlers) {
			return last, nil
		}
		invoked++
		v, err := handlers[idx](rc)
		if err != nil {
			return nil, err
		}
		if v != nil {
			last = v
		}
		return last, nil
	}

	result, err := a.runChain(rc)

	var res *activity.Response
	switch {
	case err != nil:
		res = a.faultResponse(ctx, act, err)
	default:
		if r, ok := result.(*activity.Response); ok {
			res = r
		} else {
			res = activity.OK(result)
		}
	}
	res.Meta = activity.ResponseMeta{
		Routes:   invoked,
		ElapseMs: time.Since(started).Milliseconds(),
	}

	a.bus.Emit(ctx, a, events.EventActivityResponse, &events.ActivityResponseEvent{Activity: act, Response: res})

	a.log.Debug().
		Str("path", act.Path()).
		Int("status", res.Status).
		Int("routes", res.Meta.Routes).
		Int64("elapseMs", res.Meta.ElapseMs).
		Msg("activity processed")

	return res
}

// runChain drives the handler chain from index -1 and contains panics so
// they surface through the ordinary fault path.
func (a *App) runChain(rc *Context) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return rc.Next()
}

// faultResponse converts a handler-chain fault into an error event and a
// Response. HTTP-shaped faults mirror the upstream status; everything else
// is a 500. The error event delivery itself must not throw.
func (a *App) faultResponse(ctx context.Context, act *activity.Activity, err error) *activity.Response {
	a.log.Error().Err(err).Str("path", act.Path()).Msg("activity processing failed")
	a.emitError(ctx, act, err)

	status := 500
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		status = apiErr.Status
	}
	return activity.NewResponse(status, nil)
}

func (a *App) emitError(ctx context.Context, act *activity.Activity, err error) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Error().Interface("panic", r).Msg("error subscriber panicked")
		}
	}()
	a.bus.Emit(ctx, a, events.EventError, &events.ErrorEvent{Err: err, Activity: act})
}
