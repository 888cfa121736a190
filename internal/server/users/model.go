package users

import "github.com/dmitrijs2005/confidant/internal/server/chat"

// Account is a registered identity with a persisted conversation history.
// Username is the unique key in the backing store; accounts are never
// deleted by any exposed operation.
type Account struct {
	Username     string
	PasswordHash string
	History      chat.Conversation
}
