package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/receipts-insights/internal/common"
	"github.com/joseph-ayodele/receipts-insights/internal/entity"
)

const snapshotsTable = "snapshots"

var snapshotColumns = []string{
	"share_id", "client_name", "dataset_size", "config", "precomputed_data", "created_at", "expires_at",
}

// CreateResult identifies a stored share.
type CreateResult struct {
	ID  string `json:"shareId"`
	URL string `json:"url"`
}

// SnapshotRepository is the persistence gateway for published snapshots.
// Expiry is evaluated lazily: Get on a lapsed entry reports not-found
// whether or not it has been purged. Create does not deduplicate.
type SnapshotRepository interface {
	Create(ctx context.Context, snap entity.Snapshot) (CreateResult, error)
	Get(ctx context.Context, id string) (entity.Snapshot, error)
	List(ctx context.Context) ([]entity.SnapshotMetadata, error)
	Delete(ctx context.Context, id string) error
	PurgeExpired(ctx context.Context, now time.Time) (int, error)
}

type snapshotRepository struct {
	db      *DB
	baseURL string
	now     func() time.Time
	logger  *slog.Logger
}

type SnapshotOption func(*snapshotRepository)

// WithNow sets the clock expiry is evaluated against.
func WithNow(now func() time.Time) SnapshotOption {
	return func(r *snapshotRepository) { r.now = now }
}

func NewSnapshotRepository(db *DB, baseURL string, logger *slog.Logger, opts ...SnapshotOption) SnapshotRepository {
	if logger == nil {
		logger = slog.Default()
	}
	r := &snapshotRepository{
		db:      db,
		baseURL: baseURL,
		now:     time.Now,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ShareURL returns the client link for id under base.
func ShareURL(base, id string) string {
	return strings.TrimRight(base, "/") + "/shared/" + url.PathEscape(id)
}

func (r *snapshotRepository) Create(ctx context.Context, snap entity.Snapshot) (CreateResult, error) {
	if snap.ID == "" {
		snap.ID = uuid.NewString()
	}
	if snap.Metadata.CreatedAt.IsZero() {
		snap.Metadata.CreatedAt = r.now().UTC()
	}

	cfg, err := json.Marshal(snap.Config)
	if err != nil {
		return CreateResult{}, fmt.Errorf("encode share config: %w", err)
	}
	pre, err := json.Marshal(snap.Precomputed)
	if err != nil {
		return CreateResult{}, fmt.Errorf("encode precomputed data: %w", err)
	}

	query, args := entsql.Dialect(r.db.Dialect()).
		Insert(snapshotsTable).
		Columns(snapshotColumns...).
		Values(
			snap.ID,
			snap.Metadata.ClientName,
			snap.Metadata.DatasetSize,
			string(cfg),
			string(pre),
			toMillis(snap.Metadata.CreatedAt),
			nullableMillis(snap.ExpiresAt),
		).
		Query()
	if _, err := r.db.SQL().ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("failed to create share", "share_id", snap.ID, "error", err)
		return CreateResult{}, common.NewPersistenceError("create share", err)
	}

	r.logger.Info("share created", "share_id", snap.ID, "client", snap.Metadata.ClientName, "expires_at", snap.ExpiresAt)
	return CreateResult{ID: snap.ID, URL: ShareURL(r.baseURL, snap.ID)}, nil
}

func (r *snapshotRepository) Get(ctx context.Context, id string) (entity.Snapshot, error) {
	d := entsql.Dialect(r.db.Dialect())
	query, args := d.Select(snapshotColumns...).
		From(d.Table(snapshotsTable)).
		Where(entsql.EQ("share_id", id)).
		Query()

	var (
		snap      entity.Snapshot
		cfg, pre  string
		createdAt int64
		expiresAt sql.NullInt64
	)
	err := r.db.SQL().QueryRowContext(ctx, query, args...).Scan(
		&snap.ID, &snap.Metadata.ClientName, &snap.Metadata.DatasetSize, &cfg, &pre, &createdAt, &expiresAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Snapshot{}, fmt.Errorf("share %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("failed to get share", "share_id", id, "error", err)
		return entity.Snapshot{}, common.NewPersistenceError("get share", err)
	}

	snap.Metadata.ID = snap.ID
	snap.Metadata.CreatedAt = fromMillis(createdAt)
	if expiresAt.Valid {
		t := fromMillis(expiresAt.Int64)
		snap.ExpiresAt = &t
		m := t
		snap.Metadata.ExpiresAt = &m
	}
	if snap.Expired(r.now()) {
		r.logger.Debug("share expired", "share_id", id, "expires_at", snap.ExpiresAt)
		return entity.Snapshot{}, fmt.Errorf("share %s: %w: %w", id, common.ErrNotFound, common.ErrExpired)
	}

	if err := json.Unmarshal([]byte(cfg), &snap.Config); err != nil {
		return entity.Snapshot{}, common.NewPersistenceError("decode share config", err)
	}
	if err := json.Unmarshal([]byte(pre), &snap.Precomputed); err != nil {
		return entity.Snapshot{}, common.NewPersistenceError("decode precomputed data", err)
	}
	return snap, nil
}

// List returns the metadata of every live share, newest first.
func (r *snapshotRepository) List(ctx context.Context) ([]entity.SnapshotMetadata, error) {
	d := entsql.Dialect(r.db.Dialect())
	now := toMillis(r.now())
	query, args := d.Select("share_id", "client_name", "dataset_size", "created_at", "expires_at").
		From(d.Table(snapshotsTable)).
		Where(entsql.Or(entsql.IsNull("expires_at"), entsql.GT("expires_at", now))).
		OrderBy(entsql.Desc("created_at"), "share_id").
		Query()

	rows, err := r.db.SQL().QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to list shares", "error", err)
		return nil, common.NewPersistenceError("list shares", err)
	}
	defer rows.Close()

	out := make([]entity.SnapshotMetadata, 0)
	for rows.Next() {
		var (
			m         entity.SnapshotMetadata
			createdAt int64
			expiresAt sql.NullInt64
		)
		if err := rows.Scan(&m.ID, &m.ClientName, &m.DatasetSize, &createdAt, &expiresAt); err != nil {
			return nil, common.NewPersistenceError("list shares", err)
		}
		m.CreatedAt = fromMillis(createdAt)
		if expiresAt.Valid {
			t := fromMillis(expiresAt.Int64)
			m.ExpiresAt = &t
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewPersistenceError("list shares", err)
	}
	return out, nil
}

func (r *snapshotRepository) Delete(ctx context.Context, id string) error {
	query, args := entsql.Dialect(r.db.Dialect()).
		Delete(snapshotsTable).
		Where(entsql.EQ("share_id", id)).
		Query()
	res, err := r.db.SQL().ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to delete share", "share_id", id, "error", err)
		return common.NewPersistenceError("delete share", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return common.NewPersistenceError("delete share", err)
	}
	if n == 0 {
		return fmt.Errorf("share %s: %w", id, common.ErrNotFound)
	}
	r.logger.Info("share deleted", "share_id", id)
	return nil
}

// PurgeExpired removes every share whose expiry is at or before now.
func (r *snapshotRepository) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	query, args := entsql.Dialect(r.db.Dialect()).
		Delete(snapshotsTable).
		Where(entsql.And(entsql.NotNull("expires_at"), entsql.LTE("expires_at", toMillis(now)))).
		Query()
	res, err := r.db.SQL().ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to purge expired shares", "error", err)
		return 0, common.NewPersistenceError("purge expired shares", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, common.NewPersistenceError("purge expired shares", err)
	}
	if n > 0 {
		r.logger.Info("expired shares purged", "count", n)
	}
	return int(n), nil
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func nullableMillis(t *time.Time) any {
	if t == nil {
		return nil
	}
	return toMillis(*t)
}
