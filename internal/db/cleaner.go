package db

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// StartRetentionCleaner purges expired sessions and soft-deleted todos
// older than the retention window on the given interval. Attachment rows
// go with their todos via the foreign-key cascade; orphaned objects in the
// store are swept separately by the attachment service.
func StartRetentionCleaner(
	ctx context.Context,
	db *sqlx.DB,
	interval time.Duration,
	retention time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				res, err := db.ExecContext(ctx, `
                    DELETE FROM sessions WHERE expires_at < now()
                `)
				if err != nil {
					log.Error("failed to clean expired sessions", zap.Error(err))
				} else if rows, _ := res.RowsAffected(); rows > 0 {
					log.Info("cleaned expired sessions", zap.Int64("removed", rows))
				}

				cutoff := time.Now().Add(-retention)
				res, err = db.ExecContext(ctx, `
                    DELETE FROM todos
                     WHERE deleted_at IS NOT NULL
                       AND deleted_at < $1
                `, cutoff)
				if err != nil {
					log.Error("failed to clean soft-deleted todos", zap.Error(err))
					continue
				}
				if rows, _ := res.RowsAffected(); rows > 0 {
					log.Info("cleaned soft-deleted todos", zap.Int64("removed", rows))
				}
			}
		}
	}()
}
