package chat

import (
	"context"

	"github.com/dmitrijs2005/confidant/internal/logging"
	"github.com/dmitrijs2005/confidant/internal/server/llm"
)

// Service runs a single exchange: append the visitor's turn, obtain the
// assistant's reply, append it. It does not know where the conversation
// came from or where it will be persisted.
type Service struct {
	completer llm.Completer
	logger    logging.Logger
}

func NewService(completer llm.Completer, logger logging.Logger) *Service {
	return &Service{
		completer: completer,
		logger:    logger.With("module", "chat"),
	}
}

// Exchange appends the user message, asks the completer for a reply, and
// appends that reply as an assistant turn. The completer side is fail-soft
// (see llm.FailSoft), so the returned conversation always ends with a valid
// assistant message.
func (s *Service) Exchange(ctx context.Context, conv Conversation, userMessage string) (Conversation, string) {
	conv = Normalize(conv).Append(RoleUser, userMessage)

	reply, err := s.completer.Complete(ctx, toPrompt(conv))
	if err != nil {
		// Not expected with a fail-soft completer; keep the turn structure
		// intact anyway.
		s.logger.Error(ctx, "completion failed", "error", err)
		reply = llm.Apology
	}

	return conv.Append(RoleAssistant, reply), reply
}

// toPrompt converts the conversation into the transport-neutral form the
// llm package accepts.
func toPrompt(conv Conversation) []llm.Message {
	out := make([]llm.Message, 0, len(conv))
	for _, m := range conv {
		out = append(out, llm.Message{Role: string(m.Role), Content: m.Content})
	}
	return out
}
