package stream

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/soyeahso/botway/internal/activity"
	"github.com/soyeahso/botway/internal/logging"
)

// SendFunc delivers one outbound activity to the platform.
type SendFunc func(ctx context.Context, a *activity.Activity) (*activity.Activity, error)

// Config controls when buffered text is flushed.
type Config struct {
	// MaxBufferBytes triggers a flush when the buffer reaches this size.
	// Default: 300 bytes.
	MaxBufferBytes int

	// IdleTimeout triggers a flush when no new text arrives within this
	// duration. Default: 2 seconds.
	IdleTimeout time.Duration
}

// Buffered accumulates streamed text and flushes it to the conversation at
// natural boundaries (sentences, paragraphs, size limit, idle timeout).
type Buffered struct {
	cfg  Config
	ctx  context.Context
	ref  activity.ConversationReference
	send SendFunc
	log  *logging.Logger

	mu      sync.Mutex
	buf     strings.Builder
	timer   *time.Timer
	onChunk func(*activity.Activity)
	closed  bool
}

var _ Stream = (*Buffered)(nil)

// NewBuffered creates a buffered stream bound to one conversation.
func NewBuffered(ctx context.Context, cfg Config, ref activity.ConversationReference, send SendFunc, log *logging.Logger) *Buffered {
	if cfg.MaxBufferBytes <= 0 {
		cfg.MaxBufferBytes = 300
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 2 * time.Second
	}
	return &Buffered{
		cfg:  cfg,
		ctx:  ctx,
		ref:  ref,
		send: send,
		log:  log,
	}
}

// OnChunk registers the chunk callback.
func (b *Buffered) OnChunk(fn func(*activity.Activity)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onChunk = fn
}

// Write appends text and flushes if a boundary is reached.
func (b *Buffered) Write(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}

	b.buf.WriteString(text)

	// Reset idle timer
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.cfg.IdleTimeout, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if !b.closed {
			b.flushLocked()
		}
	})

	b.checkFlushLocked()
}

// Send delivers a whole activity immediately, addressed into the stream's
// conversation if the activity carries no conversation of its own.
func (b *Buffered) Send(a *activity.Activity) (*activity.Activity, error) {
	if a.Conversation.ID == "" {
		b.ref.Apply(a)
	}
	sent, err := b.send(b.ctx, a)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	fn := b.onChunk
	b.mu.Unlock()
	if fn != nil {
		fn(sent)
	}
	return sent, nil
}

// Close flushes remaining buffered text. Safe to call more than once.
func (b *Buffered) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	if b.timer != nil {
		b.timer.Stop()
	}
	b.flushLocked()
	b.closed = true
	return nil
}

// checkFlushLocked examines the buffer for natural flush boundaries.
func (b *Buffered) checkFlushLocked() {
	content := b.buf.String()

	// Size threshold
	if len(content) >= b.cfg.MaxBufferBytes {
		b.flushLocked()
		return
	}

	// Paragraph boundary: double newline
	if idx := strings.LastIndex(content, "\n\n"); idx >= 0 {
		b.flushAtLocked(idx + 2)
		return
	}

	// Sentence boundary
	if pos := lastSentenceEnd(content); pos > 0 {
		b.flushAtLocked(pos)
	}
}

// flushAtLocked delivers the first pos bytes of the buffer and keeps the rest.
func (b *Buffered) flushAtLocked(pos int) {
	content := b.buf.String()
	if pos > len(content) {
		pos = len(content)
	}
	toSend := strings.TrimSpace(content[:pos])
	if toSend == "" {
		return
	}

	b.deliverLocked(toSend)

	remainder := content[pos:]
	b.buf.Reset()
	b.buf.WriteString(remainder)
}

// flushLocked delivers the entire buffer.
func (b *Buffered) flushLocked() {
	content := strings.TrimSpace(b.buf.String())
	if content == "" {
		return
	}
	b.deliverLocked(content)
	b.buf.Reset()
}

// deliverLocked sends one chunk as a message activity.
func (b *Buffered) deliverLocked(text string) {
	a := b.ref.Apply(activity.NewMessage(text))
	sent, err := b.send(b.ctx, a)
	if err != nil {
		b.log.Error().Err(err).
			Str("conversation", b.ref.Conversation.ID).
			Msg("failed to send stream chunk")
		return
	}
	if b.onChunk != nil {
		b.onChunk(sent)
	}
}

// lastSentenceEnd returns the byte position just past the last sentence
// ending punctuation (. ! ?) that is followed by a space or newline.
// Returns -1 if no suitable boundary exists or the buffer is small (< 40
// bytes), so short replies go out in one piece.
func lastSentenceEnd(s string) int {
	best := -1
	for i := 0; i < len(s)-1; i++ {
		if (s[i] == '.' || s[i] == '!' || s[i] == '?') &&
			(s[i+1] == ' ' || s[i+1] == '\n') {
			best = i + 1
		}
	}
	if best > 40 {
		return best
	}
	return -1
}
