// Package llm wraps the external chat-completion provider. The rest of the
// server talks to the Completer interface and never sees provider types.
package llm

import "context"

// Message is a single turn in provider-neutral form. Role is one of
// "system", "user", "assistant".
type Message struct {
	Role    string
	Content string
}

// Completer turns an ordered message sequence into an assistant reply.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// Apology is the fixed reply substituted for any provider failure. It is
// appended to history like any other assistant turn, so a failed call still
// leaves the conversation well-formed.
const Apology = "I'm sorry, I'm having trouble connecting right now. Please try again later."
