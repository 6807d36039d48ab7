package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/joseph-ayodele/receipts-insights/internal/common"
	"github.com/joseph-ayodele/receipts-insights/internal/dataset"
	"github.com/joseph-ayodele/receipts-insights/internal/entity"
	"github.com/joseph-ayodele/receipts-insights/internal/repository"
)

// ErrPublishInFlight rejects a publish issued while another is pending.
var ErrPublishInFlight = errors.New("publish already in flight")

// Publisher builds snapshots and hands them to the persistence gateway. At
// most one publish is outstanding; a second one arriving meanwhile is
// dropped with ErrPublishInFlight instead of racing the first. Gateway
// failures come back as persistence errors and are never retried.
type Publisher struct {
	service  *Service
	repo     repository.SnapshotRepository
	inFlight atomic.Bool
	logger   *slog.Logger
}

func NewPublisher(service *Service, repo repository.SnapshotRepository, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	if service == nil {
		service = NewService(nil, logger)
	}
	return &Publisher{service: service, repo: repo, logger: logger}
}

// Published is the outcome of a successful publish.
type Published struct {
	repository.CreateResult
	Snapshot entity.Snapshot
}

func (p *Publisher) Publish(ctx context.Context, ds *dataset.Dataset, cfg entity.ShareConfig) (Published, error) {
	if !p.inFlight.CompareAndSwap(false, true) {
		p.logger.Warn("publish ignored, another is in flight")
		return Published{}, ErrPublishInFlight
	}
	defer p.inFlight.Store(false)

	snap, err := p.service.BuildSnapshot(ds, cfg)
	if err != nil {
		return Published{}, err
	}

	start := time.Now()
	res, err := p.repo.Create(ctx, snap)
	if err != nil {
		p.logger.Error("publish failed", "share_id", snap.ID, "error", err)
		return Published{}, persistenceError("publish share", err)
	}
	p.logger.Info("share published", "share_id", res.ID, "url", res.URL, "duration", time.Since(start))
	return Published{CreateResult: res, Snapshot: snap}, nil
}

// InFlight reports whether a publish is pending.
func (p *Publisher) InFlight() bool {
	return p.inFlight.Load()
}

func (p *Publisher) Get(ctx context.Context, id string) (entity.Snapshot, error) {
	snap, err := p.repo.Get(ctx, id)
	if err != nil {
		return entity.Snapshot{}, persistenceError("get share", err)
	}
	return snap, nil
}

func (p *Publisher) List(ctx context.Context) ([]entity.SnapshotMetadata, error) {
	list, err := p.repo.List(ctx)
	if err != nil {
		return nil, persistenceError("list shares", err)
	}
	return list, nil
}

func (p *Publisher) Delete(ctx context.Context, id string) error {
	if err := p.repo.Delete(ctx, id); err != nil {
		return persistenceError("delete share", err)
	}
	return nil
}

func (p *Publisher) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	n, err := p.repo.PurgeExpired(ctx, now)
	if err != nil {
		return 0, persistenceError("purge expired shares", err)
	}
	return n, nil
}

// persistenceError leaves errors already classified by the gateway alone.
func persistenceError(op string, err error) error {
	var appErr *common.AppError
	if errors.As(err, &appErr) || errors.Is(err, common.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return common.NewPersistenceError(op, err)
}
