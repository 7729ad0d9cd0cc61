package agent

import (
	"context"
	"log/slog"
)

// AccountManager receives terminal sessions. Submit runs before the session is
// deleted, so a Submit error leaves the session in place for a retry.
type AccountManager interface {
	Cancel(ctx context.Context, session *Session) error
	Submit(ctx context.Context, completion *Completion) error
}

// LogAccountManager only records terminal sessions in the log.
type LogAccountManager struct{}

func (LogAccountManager) Cancel(ctx context.Context, session *Session) error {
	slog.Debug("Deposit session cancelled", "session_id", session.ID, "variant", session.Variant)
	return nil
}

func (LogAccountManager) Submit(ctx context.Context, completion *Completion) error {
	slog.Info("Deposit account details submitted", "reference", completion.Reference, "variant", completion.Variant)
	return nil
}

var _ AccountManager = LogAccountManager{}
