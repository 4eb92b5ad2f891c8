package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

// OrphanScanJob reports posts whose author row no longer exists. User
// deletion does not cascade, so dangling posts accumulate silently; this
// scan makes them visible without deleting anything.
type OrphanScanJob struct {
	Pool   *pgxpool.Pool
	Logger *slog.Logger
	clock  func() time.Time
}

// NewOrphanScanJob initialises the orphan scan handler.
func NewOrphanScanJob(pool *pgxpool.Pool, logger *slog.Logger) *OrphanScanJob {
	return &OrphanScanJob{
		Pool:   pool,
		Logger: logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

type orphanPost struct {
	ID        string
	Title     string
	CreatedBy string
}

// Handle executes the orphan scan logic.
func (j *OrphanScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Pool == nil {
		return errors.New("orphan scan: handler not configured")
	}
	var payload OrphanScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.Limit <= 0 {
		payload.Limit = 500
	}

	start := j.clock()
	logger := j.logger().With(slog.Int("limit", payload.Limit))
	logger.Info("starting orphan scan")

	var userCount, postCount int64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return j.Pool.QueryRow(gctx, `SELECT count(*) FROM users`).Scan(&userCount)
	})
	g.Go(func() error {
		return j.Pool.QueryRow(gctx, `SELECT count(*) FROM posts`).Scan(&postCount)
	})
	if err := g.Wait(); err != nil {
		logger.Error("scan counts failed", slog.Any("error", err))
		return err
	}

	orphans, err := j.scan(ctx, payload.Limit)
	if err != nil {
		logger.Error("scan failed", slog.Any("error", err))
		return err
	}

	for _, o := range orphans {
		logger.Warn("orphaned post detected",
			slog.String("post_id", o.ID),
			slog.String("title", o.Title),
			slog.String("created_by", o.CreatedBy),
		)
	}

	logger.Info("completed orphan scan",
		slog.Int64("users", userCount),
		slog.Int64("posts", postCount),
		slog.Int("orphans", len(orphans)),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}

func (j *OrphanScanJob) scan(ctx context.Context, limit int) ([]orphanPost, error) {
	const query = `
		SELECT p.id, p.title, p.created_by
		FROM posts p
		LEFT JOIN users u ON u.id = p.created_by
		WHERE u.id IS NULL
		ORDER BY p.id
		LIMIT $1`
	rows, err := j.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orphans []orphanPost
	for rows.Next() {
		var o orphanPost
		if err := rows.Scan(&o.ID, &o.Title, &o.CreatedBy); err != nil {
			return nil, err
		}
		orphans = append(orphans, o)
	}
	return orphans, rows.Err()
}

func (j *OrphanScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
