package llm

import (
	"context"
	"fmt"
)

// Mock is a deterministic Completer for development and tests.
type Mock struct{}

func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) Complete(ctx context.Context, messages []Message) (string, error) {
	last := ""
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			last = messages[i].Content
			break
		}
	}
	return fmt.Sprintf("I hear you. You said %q. Tell me a bit more about how that makes you feel.", last), nil
}
