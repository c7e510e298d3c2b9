package activity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *Activity {
	return &Activity{
		ID:           "in1",
		Type:         TypeMessage,
		Text:         "hello",
		ChannelID:    "msteams",
		ServiceURL:   "https://smba.example.com",
		From:         Account{ID: "user1", Name: "User", Role: "user"},
		Recipient:    Account{ID: "bot1", Name: "Bot", Role: "bot"},
		Conversation: Conversation{ID: "conv1", Type: "personal"},
	}
}

func TestPath(t *testing.T) {
	assert.Equal(t, "message", sample().Path())

	inv := &Activity{Type: TypeInvoke, Name: InvokeTokenExchange}
	assert.Equal(t, "invoke/signin/tokenExchange", inv.Path())

	ev := &Activity{Type: TypeEvent, Name: "readReceipt"}
	assert.Equal(t, "event/readReceipt", ev.Path())
}

func TestValueAs(t *testing.T) {
	a := &Activity{Type: TypeInvoke, Value: map[string]any{
		"connectionName": "graph",
		"token":          "sso",
	}}

	var v TokenExchangeInvokeValue
	require.NoError(t, a.ValueAs(&v))
	assert.Equal(t, "graph", v.ConnectionName)
	assert.Equal(t, "sso", v.Token)

	bad := &Activity{Type: TypeInvoke, Value: "not an object"}
	assert.Error(t, bad.ValueAs(&v))
}

func TestNewMessage(t *testing.T) {
	a := NewMessage("hi")
	assert.Equal(t, TypeMessage, a.Type)
	assert.Equal(t, "hi", a.Text)
	assert.NotEmpty(t, a.ID)
	assert.False(t, a.Timestamp.IsZero())

	b := NewMessage("hi")
	assert.NotEqual(t, a.ID, b.ID)
}

func TestReply(t *testing.T) {
	in := sample()
	r := in.Reply("got it")

	assert.Equal(t, TypeMessage, r.Type)
	assert.Equal(t, "got it", r.Text)
	assert.Equal(t, "in1", r.ReplyToID)
	assert.Equal(t, "conv1", r.Conversation.ID)
	assert.Equal(t, "msteams", r.ChannelID)
	assert.Equal(t, "https://smba.example.com", r.ServiceURL)
	// Direction flips: the bot speaks back to the user.
	assert.Equal(t, "bot1", r.From.ID)
	assert.Equal(t, "user1", r.Recipient.ID)
}

func TestNewReference(t *testing.T) {
	ref := NewReference(sample())

	assert.Equal(t, "in1", ref.ActivityID)
	assert.Equal(t, "msteams", ref.ChannelID)
	assert.Equal(t, "https://smba.example.com", ref.ServiceURL)
	assert.Equal(t, "conv1", ref.Conversation.ID)
	assert.Equal(t, "bot1", ref.Bot.ID)
	assert.Equal(t, "user1", ref.User.ID)
}

func TestReferenceApply(t *testing.T) {
	ref := NewReference(sample())
	out := ref.Apply(NewMessage("chunk"))

	assert.Equal(t, "conv1", out.Conversation.ID)
	assert.Equal(t, "msteams", out.ChannelID)
	assert.Equal(t, "https://smba.example.com", out.ServiceURL)
	assert.Equal(t, "bot1", out.From.ID)
	assert.Equal(t, "user1", out.Recipient.ID)
}

func TestResponse(t *testing.T) {
	ok := OK(map[string]string{"k": "v"})
	assert.Equal(t, 200, ok.Status)
	assert.Equal(t, map[string]string{"k": "v"}, ok.Body)

	res := NewResponse(412, nil)
	assert.Equal(t, 412, res.Status)
	assert.Nil(t, res.Body)
}
