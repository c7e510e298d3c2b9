package router

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soyeahso/botway/internal/activity"
)

func message(text string) *activity.Activity {
	return &activity.Activity{Type: activity.TypeMessage, Text: text}
}

func invoke(name string) *activity.Activity {
	return &activity.Activity{Type: activity.TypeInvoke, Name: name}
}

func TestRouter_Select_RegistrationOrder(t *testing.T) {
	r := New[string]()
	r.Register(Route[string]{Type: activity.TypeMessage, Text: Regex(regexp.MustCompile(`(?i)hello`)), Handler: "specific"})
	r.Register(Route[string]{Type: activity.TypeMessage, Handler: "catch-all"})

	got := r.Select(message("Hello there"))
	assert.Equal(t, []string{"specific", "catch-all"}, got)

	// Reordering registration changes result order identically.
	r2 := New[string]()
	r2.Register(Route[string]{Type: activity.TypeMessage, Handler: "catch-all"})
	r2.Register(Route[string]{Type: activity.TypeMessage, Text: Regex(regexp.MustCompile(`(?i)hello`)), Handler: "specific"})

	got2 := r2.Select(message("Hello there"))
	assert.Equal(t, []string{"catch-all", "specific"}, got2)
}

func TestRouter_Select_NoMatches(t *testing.T) {
	r := New[string]()
	r.Register(Route[string]{Type: activity.TypeInvoke, Name: "task/fetch", Handler: "fetch"})

	assert.Empty(t, r.Select(message("hello")))
}

func TestRouter_Select_InvokeName(t *testing.T) {
	r := New[string]()
	r.Register(Route[string]{Type: activity.TypeInvoke, Name: activity.InvokeTokenExchange, Handler: "exchange"})
	r.Register(Route[string]{Type: activity.TypeInvoke, Name: activity.InvokeVerifyState, Handler: "verify"})

	assert.Equal(t, []string{"exchange"}, r.Select(invoke("signin/tokenExchange")))
	// Name comparison is case-insensitive.
	assert.Equal(t, []string{"verify"}, r.Select(invoke("SignIn/VerifyState")))
	assert.Empty(t, r.Select(invoke("task/fetch")))
}

func TestRouter_TextMatcherSkipsNonMessages(t *testing.T) {
	r := New[string]()
	r.Register(Route[string]{Text: Any(), Handler: "text"})

	assert.Empty(t, r.Select(invoke("signin/verifyState")))
	assert.Equal(t, []string{"text"}, r.Select(message("anything")))
}

func TestRouter_EmptyTypeMatchesAll(t *testing.T) {
	r := New[string]()
	r.Register(Route[string]{Handler: "all"})

	assert.Equal(t, []string{"all"}, r.Select(message("hi")))
	assert.Equal(t, []string{"all"}, r.Select(invoke("task/fetch")))
	assert.Equal(t, []string{"all"}, r.Select(&activity.Activity{Type: activity.TypeConversationUpdate}))
}

func TestLiteral(t *testing.T) {
	m := Literal("help")

	assert.True(t, m.Match("help"))
	assert.True(t, m.Match("HELP"))
	assert.True(t, m.Match("  Help  "))
	assert.False(t, m.Match("help me"))
}

func TestGlob(t *testing.T) {
	tests := []struct {
		pattern string
		text    string
		want    bool
	}{
		{"*", "anything at all", true},
		{"order *", "order 42", true},
		{"order *", "ORDER 42", true},
		{"order *", "cancel order 42", false},
		{"he?lo", "hello", true},
		{"he?lo", "helo", false},
		{"exact", "exact", true},
		{"exact", "Exact", true},
		{"a.b", "a.b", true},
		{"a.b", "axb", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Glob(tt.pattern).Match(tt.text), "pattern=%q text=%q", tt.pattern, tt.text)
	}
}

func TestRegex(t *testing.T) {
	m := Regex(regexp.MustCompile(`(?i)^status\s+\d+$`))

	assert.True(t, m.Match("status 42"))
	assert.True(t, m.Match("STATUS 7"))
	assert.False(t, m.Match("status"))
}

func TestRouter_Len(t *testing.T) {
	r := New[int]()
	require.Equal(t, 0, r.Len())

	r.Register(Route[int]{Handler: 1})
	r.Register(Route[int]{Handler: 2})
	assert.Equal(t, 2, r.Len())
}
