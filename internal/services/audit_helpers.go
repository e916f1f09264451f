package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/fropcore/bmiwidget/internal/auditctx"
	"github.com/fropcore/bmiwidget/pkg/logger"
)

// RequestActor identifies who triggered a change, for the audit trail.
type RequestActor struct {
	Username  string
	IPAddress string
	UserAgent string
}

// recordAudit logs the supplied entry while tolerating audit failures.
func recordAudit(audit *AuditService, ctx context.Context, entry AuditEntry) {
	if audit == nil {
		return
	}
	actor := auditctx.Resolve(ctx, auditctx.Actor{
		Username:  entry.Actor,
		IPAddress: entry.IPAddress,
		UserAgent: entry.UserAgent,
	})
	entry.Actor, entry.IPAddress, entry.UserAgent = actor.Username, actor.IPAddress, actor.UserAgent

	if err := audit.Log(ctx, entry); err != nil {
		logger.WithModule("audit").Warn("failed to record audit entry",
			zap.String("action", entry.Action),
			zap.Error(err),
		)
	}
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}
