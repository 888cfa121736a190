// Package chat owns the conversation-history data model: ordered role-tagged
// messages, the fixed system prompt that opens every conversation, and the
// one-way merge of guest history into an account at login or registration.
package chat

// Role identifies the author of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// SystemPrompt is the persona definition that opens every conversation.
// It is never removed and never duplicated.
const SystemPrompt = "You are a compassionate and empathetic AI therapist. " +
	"Your goal is to listen, provide support, and help users explore their " +
	"thoughts and feelings. Do not give medical advice."

// Message is a single turn in a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Conversation is an ordered message sequence. Element 0 is always the
// system prompt.
type Conversation []Message

// NewConversation returns a conversation containing only the system prompt.
func NewConversation() Conversation {
	return Conversation{{Role: RoleSystem, Content: SystemPrompt}}
}

// Normalize returns conv unchanged when it already starts with a system
// prompt, and a fresh conversation otherwise. It is the defensive fallback
// for absent or damaged history records.
func Normalize(conv Conversation) Conversation {
	if len(conv) == 0 || conv[0].Role != RoleSystem {
		return NewConversation()
	}
	return conv
}

// Append returns the conversation with one more turn. Conversations grow
// without bound; older turns are never truncated.
func (c Conversation) Append(role Role, content string) Conversation {
	return append(c, Message{Role: role, Content: content})
}

// Clone returns a copy that shares no backing storage with c.
func (c Conversation) Clone() Conversation {
	out := make(Conversation, len(c))
	copy(out, c)
	return out
}

// MergeGuest appends all guest turns after the system prompt onto history,
// in order, and reports whether a merge happened. A guest conversation with
// at most the system prompt is a no-op. The merge is a pure append: no
// deduplication and no interleaving with turns the account already had.
func MergeGuest(history, guest Conversation) (Conversation, bool) {
	if len(guest) <= 1 {
		return history, false
	}
	return append(Normalize(history), guest[1:]...), true
}
