// Package activity defines the wire-level object model for the conversational
// protocol: activities, accounts, conversation references and the engine's
// Response shape. Activities are created by the transport layer per inbound
// request and are read-only to the engine except for reply-linking fields.
package activity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Type classifies an activity.
type Type string

const (
	TypeMessage            Type = "message"
	TypeInvoke             Type = "invoke"
	TypeEvent              Type = "event"
	TypeConversationUpdate Type = "conversationUpdate"
	TypeTyping             Type = "typing"
	TypeMessageUpdate      Type = "messageUpdate"
	TypeMessageDelete      Type = "messageDelete"
)

// Invoke names used by the built-in sign-in flow.
const (
	InvokeTokenExchange = "signin/tokenExchange"
	InvokeVerifyState   = "signin/verifyState"
)

// Account identifies a participant (user or bot) on the platform.
type Account struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	Role string `json:"role,omitempty"` // "user" | "bot"
}

// Conversation identifies the conversation an activity belongs to.
type Conversation struct {
	ID       string `json:"id"`
	Type     string `json:"conversationType,omitempty"` // "personal" | "groupChat" | "channel"
	Name     string `json:"name,omitempty"`
	TenantID string `json:"tenantId,omitempty"`
}

// Activity is one inbound or outbound event in the conversational protocol.
type Activity struct {
	ID           string         `json:"id,omitempty"`
	Type         Type           `json:"type"`
	Name         string         `json:"name,omitempty"` // invoke/event subtype
	Text         string         `json:"text,omitempty"`
	Value        any            `json:"value,omitempty"`
	ChannelID    string         `json:"channelId,omitempty"`
	ServiceURL   string         `json:"serviceUrl,omitempty"`
	From         Account        `json:"from,omitempty"`
	Recipient    Account        `json:"recipient,omitempty"`
	Conversation Conversation   `json:"conversation,omitempty"`
	ReplyToID    string         `json:"replyToId,omitempty"`
	Timestamp    time.Time      `json:"timestamp,omitempty"`
	ChannelData  map[string]any `json:"channelData,omitempty"`
}

// Path returns the routing key for the activity: the bare type for
// conversational activities, "type/name" for invoke and event subtypes.
func (a *Activity) Path() string {
	if a.Name == "" {
		return string(a.Type)
	}
	return string(a.Type) + "/" + a.Name
}

// ValueAs decodes the free-form value payload into v via a JSON round trip.
// Transports deliver Value as decoded JSON (map[string]any), so this is the
// single place invoke payloads are given a concrete shape.
func (a *Activity) ValueAs(v any) error {
	data, err := json.Marshal(a.Value)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// NewMessage creates an outbound message activity with a fresh ID.
func NewMessage(text string) *Activity {
	return &Activity{
		ID:        uuid.New().String(),
		Type:      TypeMessage,
		Text:      text,
		Timestamp: time.Now(),
	}
}

// Reply creates an outbound message activity addressed back into the
// conversation that produced a, linked via ReplyToID.
func (a *Activity) Reply(text string) *Activity {
	r := NewMessage(text)
	r.ChannelID = a.ChannelID
	r.ServiceURL = a.ServiceURL
	r.Conversation = a.Conversation
	r.From = a.Recipient
	r.Recipient = a.From
	r.ReplyToID = a.ID
	return r
}
