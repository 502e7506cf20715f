package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewSessionPruneHandler returns the handler for TaskSessionPrune. Redis
// expires live sessions on its own; this clears the persisted mirror rows.
func NewSessionPruneHandler(pool *pgxpool.Pool, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		tag, err := pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at < NOW()`)
		if err != nil {
			if logger != nil {
				logger.Error("session prune", slog.Any("error", err))
			}
			return err
		}
		if logger != nil {
			logger.Info("sessions pruned", slog.Int64("removed", tag.RowsAffected()))
		}
		return nil
	}
}

// NewAuditPruneHandler returns the handler for TaskAuditPrune.
func NewAuditPruneHandler(pool *pgxpool.Pool, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		payload := AuditPrunePayload{RetainDays: 365}
		if len(t.Payload()) > 0 {
			if err := json.Unmarshal(t.Payload(), &payload); err != nil {
				return asynq.SkipRetry
			}
		}
		if payload.RetainDays <= 0 {
			payload.RetainDays = 365
		}
		tag, err := pool.Exec(ctx, `
			DELETE FROM audit_logs
			WHERE occurred_at < NOW() - make_interval(days => $1)`, payload.RetainDays)
		if err != nil {
			if logger != nil {
				logger.Error("audit prune", slog.Any("error", err))
			}
			return err
		}
		if logger != nil {
			logger.Info("audit logs pruned",
				slog.Int("retainDays", payload.RetainDays),
				slog.Int64("removed", tag.RowsAffected()))
		}
		return nil
	}
}
