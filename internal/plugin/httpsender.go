package plugin

import (
	"context"

	"github.com/soyeahso/botway/internal/activity"
	"github.com/soyeahso/botway/internal/api"
	"github.com/soyeahso/botway/internal/logging"
	"github.com/soyeahso/botway/internal/stream"
)

// HTTPSender is the default sender plugin: it delivers outbound activities
// through the platform's conversation REST endpoints and creates buffered
// streams over the same path.
type HTTPSender struct {
	client api.Client
	cfg    stream.Config
	log    *logging.Logger
}

var _ Sender = (*HTTPSender)(nil)

// NewHTTPSender creates the default sender over the given API client.
func NewHTTPSender(client api.Client, cfg stream.Config) *HTTPSender {
	return &HTTPSender{client: client, cfg: cfg}
}

// Name implements Plugin.
func (s *HTTPSender) Name() string { return "http-sender" }

// Init implements Plugin.
func (s *HTTPSender) Init(_ context.Context, papi *API) error {
	s.log = papi.Log
	return nil
}

// Close implements Plugin.
func (s *HTTPSender) Close() error { return nil }

// Send delivers one outbound activity addressed by the reference.
func (s *HTTPSender) Send(ctx context.Context, a *activity.Activity, ref activity.ConversationReference) (*activity.Activity, error) {
	if a.Conversation.ID == "" {
		ref.Apply(a)
	}
	return s.client.Conversations().SendToConversation(ctx, ref, a)
}

// CreateStream produces a buffered stream bound to the conversation.
func (s *HTTPSender) CreateStream(ctx context.Context, ref activity.ConversationReference) stream.Stream {
	send := func(ctx context.Context, a *activity.Activity) (*activity.Activity, error) {
		return s.client.Conversations().SendToConversation(ctx, ref, a)
	}
	log := s.log
	if log == nil {
		log = logging.New(nil, "silent")
	}
	return stream.NewBuffered(ctx, s.cfg, ref, send, log)
}
