package app

import (
	"errors"
	"fmt"

	"github.com/soyeahso/botway/internal/activity"
	"github.com/soyeahso/botway/internal/api"
	"github.com/soyeahso/botway/internal/oauth"
)

// errNoClient surfaces sign-in invokes on an app built without an API client.
var errNoClient = errors.New("sign-in requires an api client")

// onTokenExchange handles the "signin/tokenExchange" invoke: it remembers
// which connection the user started under auth/{conversation}/{user}, then
// attempts the single-sign-on token exchange. Expected upstream failures
// ({400,404,412}) become a 412 with a structured body so the platform falls
// back to its sign-in UI; anything else is fatal.
func (a *App) onTokenExchange(c *Context) (any, error) {
	var v activity.TokenExchangeInvokeValue
	if err := c.Activity.ValueAs(&v); err != nil || v.ConnectionName == "" {
		return activity.NewResponse(400, nil), nil
	}

	key := oauth.Key(c.Activity.Conversation.ID, c.Activity.From.ID)
	if err := oauth.Save(c.Context(), c.Storage, key, oauth.PendingSignIn{ConnectionName: v.ConnectionName}); err != nil {
		return nil, err
	}

	if c.API == nil {
		return nil, errNoClient
	}

	_, err := c.API.UserToken().ExchangeToken(c.Context(), api.ExchangeTokenParams{
		ChannelID:      c.Activity.ChannelID,
		ConnectionName: v.ConnectionName,
		UserID:         c.Activity.From.ID,
		Token:          v.Token,
	})
	if err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) && oauth.Retryable(apiErr.Status) {
			c.Log.Debug().Int("status", apiErr.Status).
				Str("connection", v.ConnectionName).
				Msg("token exchange deferred to sign-in UI")
			return activity.NewResponse(412, activity.TokenExchangeInvokeResponse{
				ID:             v.ID,
				ConnectionName: v.ConnectionName,
				FailureDetail:  "token exchange failed, retry via sign-in",
			}), nil
		}
		return nil, fmt.Errorf("token exchange: %w", err)
	}

	return activity.OK(nil), nil
}

// onVerifyState handles the "signin/verifyState" invoke: it looks up the
// pending connection the token-exchange invoke recorded and trades the
// platform's proof code for a delegated token. The pending record is deleted
// only after a confirmed success.
func (a *App) onVerifyState(c *Context) (any, error) {
	var q activity.SignInStateVerifyQuery
	if err := c.Activity.ValueAs(&q); err != nil {
		return activity.NewResponse(400, nil), nil
	}

	key := oauth.Key(c.Activity.Conversation.ID, c.Activity.From.ID)
	pending, ok, err := oauth.Load(c.Context(), c.Storage, key)
	if err != nil {
		return nil, err
	}
	if !ok || q.State == "" {
		// Nothing to verify.
		return activity.NewResponse(404, nil), nil
	}

	if c.API == nil {
		return nil, errNoClient
	}

	_, err = c.API.UserToken().GetToken(c.Context(), api.GetTokenParams{
		ChannelID:      c.Activity.ChannelID,
		ConnectionName: pending.ConnectionName,
		UserID:         c.Activity.From.ID,
		Code:           q.State,
	})
	if err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) && oauth.Retryable(apiErr.Status) {
			return activity.NewResponse(412, activity.TokenExchangeInvokeResponse{
				ConnectionName: pending.ConnectionName,
				FailureDetail:  "state verification failed, retry via sign-in",
			}), nil
		}
		return nil, fmt.Errorf("verify state: %w", err)
	}

	if err := oauth.Clear(c.Context(), c.Storage, key); err != nil {
		c.Log.Warn().Err(err).Str("key", key).Msg("failed to clear pending sign-in")
	}

	return activity.OK(nil), nil
}
