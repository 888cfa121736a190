package llm

import (
	"context"

	"github.com/dmitrijs2005/confidant/internal/logging"
)

// FailSoft wraps a Completer so that provider failures never reach the
// caller: any error is logged for operators and replaced with the fixed
// Apology reply. The apology becomes part of the permanent transcript.
type FailSoft struct {
	inner  Completer
	logger logging.Logger
}

func NewFailSoft(inner Completer, logger logging.Logger) *FailSoft {
	return &FailSoft{
		inner:  inner,
		logger: logger.With("module", "llm"),
	}
}

func (f *FailSoft) Complete(ctx context.Context, messages []Message) (string, error) {
	reply, err := f.inner.Complete(ctx, messages)
	if err != nil {
		f.logger.Error(ctx, "completion provider failed", "error", err)
		return Apology, nil
	}
	return reply, nil
}
