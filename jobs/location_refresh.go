package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"
)

// DirectoryRefresher rebuilds the cached location directory.
type DirectoryRefresher interface {
	RefreshCache(ctx context.Context) error
}

// NewLocationRefreshHandler returns the handler for TaskLocationRefresh.
func NewLocationRefreshHandler(refresher DirectoryRefresher, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		if err := refresher.RefreshCache(ctx); err != nil {
			if logger != nil {
				logger.Error("location refresh", slog.Any("error", err))
			}
			return err
		}
		if logger != nil {
			logger.Info("location directory refreshed")
		}
		return nil
	}
}
