package activity

// ConversationReference is the minimal addressing tuple needed to send a
// message into a conversation without an originating activity. Its channel,
// service URL and conversation fields never change after construction.
type ConversationReference struct {
	ActivityID   string       `json:"activityId,omitempty"`
	ChannelID    string       `json:"channelId"`
	ServiceURL   string       `json:"serviceUrl"`
	Bot          Account      `json:"bot"`
	User         Account      `json:"user"`
	Conversation Conversation `json:"conversation"`
}

// NewReference builds a conversation reference from an inbound activity.
// The activity's recipient is the bot; its sender is the user.
func NewReference(a *Activity) ConversationReference {
	return ConversationReference{
		ActivityID:   a.ID,
		ChannelID:    a.ChannelID,
		ServiceURL:   a.ServiceURL,
		Bot:          a.Recipient,
		User:         a.From,
		Conversation: a.Conversation,
	}
}

// Apply addresses an outbound activity using the reference.
func (r ConversationReference) Apply(a *Activity) *Activity {
	a.ChannelID = r.ChannelID
	a.ServiceURL = r.ServiceURL
	a.Conversation = r.Conversation
	a.From = r.Bot
	a.Recipient = r.User
	return a
}
