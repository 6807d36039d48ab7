package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/receipts-insights/constants"
	"github.com/joseph-ayodele/receipts-insights/internal/async"
	"github.com/joseph-ayodele/receipts-insights/internal/common"
	"github.com/joseph-ayodele/receipts-insights/internal/dashboard"
	"github.com/joseph-ayodele/receipts-insights/internal/dataset"
	"github.com/joseph-ayodele/receipts-insights/internal/entity"
	"github.com/joseph-ayodele/receipts-insights/internal/export"
	"github.com/joseph-ayodele/receipts-insights/internal/repository"
)

const defaultSession = "default"

// ShareService serves share links over gRPC. Each session gets its own
// publisher so one caller's pending publish does not block another's.
type ShareService struct {
	datasets  *dataset.Store
	service   *dashboard.Service
	repo      repository.SnapshotRepository
	exporter  *export.Service
	queue     *async.ExportQueue
	validator *SchemaValidator
	logger    *slog.Logger

	publishers sync.Map // session id -> *dashboard.Publisher
}

func NewShareService(
	datasets *dataset.Store,
	service *dashboard.Service,
	repo repository.SnapshotRepository,
	exporter *export.Service,
	queue *async.ExportQueue,
	logger *slog.Logger,
) (*ShareService, error) {
	if logger == nil {
		logger = slog.Default()
	}
	validator, err := NewSchemaValidator(BuildShareConfigJSONSchema())
	if err != nil {
		return nil, err
	}
	return &ShareService{
		datasets:  datasets,
		service:   service,
		repo:      repo,
		exporter:  exporter,
		queue:     queue,
		validator: validator,
		logger:    logger,
	}, nil
}

func (s *ShareService) publisher(session string) *dashboard.Publisher {
	session = strings.TrimSpace(session)
	if session == "" {
		session = defaultSession
	}
	if p, ok := s.publishers.Load(session); ok {
		return p.(*dashboard.Publisher)
	}
	p, _ := s.publishers.LoadOrStore(session, dashboard.NewPublisher(s.service, s.repo, s.logger.With("session", session)))
	return p.(*dashboard.Publisher)
}

func (s *ShareService) CreateShare(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req CreateShareRequest
	if err := decode(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	cfg := entity.DefaultShareConfig()
	raw := bytes.TrimSpace(req.Config)
	if len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
		if err := s.validator.Validate(raw); err != nil {
			s.logger.Warn("share config rejected", "error", err)
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "decode config: %v", err)
		}
	}

	pub, err := s.publisher(req.SessionID).Publish(ctx, s.datasets.Current(), cfg)
	if err != nil {
		if errors.Is(err, dashboard.ErrPublishInFlight) {
			return nil, status.Error(codes.Aborted, err.Error())
		}
		s.logger.Error("create share failed", "error", err)
		return nil, common.ToStatus(err)
	}
	return encode(CreateShareResponse{
		ShareID:  pub.ID,
		URL:      pub.URL,
		Metadata: pub.Snapshot.Metadata,
	})
}

func (s *ShareService) GetShare(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := shareID(in)
	if err != nil {
		return nil, err
	}
	snap, err := s.publisher("").Get(ctx, id)
	if err != nil {
		s.logger.Info("get share failed", "share_id", id, "error", err)
		return nil, common.ToStatus(err)
	}
	return encode(GetShareResponse{Snapshot: snap})
}

func (s *ShareService) ListShares(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	list, err := s.publisher("").List(ctx)
	if err != nil {
		s.logger.Error("list shares failed", "error", err)
		return nil, common.ToStatus(err)
	}
	if list == nil {
		list = []entity.SnapshotMetadata{}
	}
	return encode(ListSharesResponse{Shares: list})
}

func (s *ShareService) DeleteShare(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := shareID(in)
	if err != nil {
		return nil, err
	}
	if err := s.publisher("").Delete(ctx, id); err != nil {
		s.logger.Info("delete share failed", "share_id", id, "error", err)
		return nil, common.ToStatus(err)
	}
	return encode(DeleteShareResponse{Deleted: true})
}

// ExportShare renders a share as XLSX. With async set the export runs on the
// background queue and the response carries the job status instead; asking
// again while the job is pending reports its progress.
func (s *ShareService) ExportShare(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req ExportShareRequest
	if err := decode(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if err := validateShareID(req.ShareID); err != nil {
		return nil, err
	}

	if !req.Async {
		data, err := s.exporter.ExportShareXLSX(ctx, req.ShareID)
		if err != nil {
			s.logger.Warn("export share failed", "share_id", req.ShareID, "error", err)
			return nil, common.ToStatus(err)
		}
		return encode(ExportShareResponse{XLSX: data})
	}

	if s.queue == nil {
		return nil, status.Error(codes.FailedPrecondition, "background export is disabled")
	}
	if st, ok := s.queue.State(req.ShareID); ok && !terminal(st) {
		return encode(ExportShareResponse{Queued: true, Status: string(st.Status)})
	}
	err := s.queue.Enqueue(ctx, async.Job{
		ShareID:     req.ShareID,
		SubmittedAt: time.Now(),
		RequestID:   common.RequestIDFromContext(ctx),
	})
	switch {
	case errors.Is(err, async.ErrQueueClosed):
		return nil, status.Error(codes.Unavailable, err.Error())
	case err != nil:
		return nil, status.FromContextError(err).Err()
	}
	st, _ := s.queue.State(req.ShareID)
	return encode(ExportShareResponse{Queued: true, Status: string(st.Status)})
}

func (s *ShareService) LoadDataset(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req LoadDatasetRequest
	if err := decode(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if strings.TrimSpace(req.Path) == "" {
		return nil, status.Error(codes.InvalidArgument, "path is required")
	}
	ds, err := s.datasets.LoadFile(ctx, req.Path)
	if err != nil {
		if errors.Is(err, dataset.ErrUnsupportedFormat) {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		return nil, common.ToStatus(err)
	}
	return encode(LoadDatasetResponse{
		Source:    ds.Source(),
		Records:   ds.Len(),
		Questions: ds.Questions(),
	})
}

func shareID(in *structpb.Struct) (string, error) {
	var req ShareRequest
	if err := decode(in, &req); err != nil {
		return "", status.Error(codes.InvalidArgument, err.Error())
	}
	id := strings.TrimSpace(req.ShareID)
	if err := validateShareID(id); err != nil {
		return "", err
	}
	return id, nil
}

// validateShareID rejects ids the gateway could never have issued.
func validateShareID(id string) error {
	v := common.NewValidator()
	if v.Field("shareId", id, common.Required); !v.HasErrors() {
		v.Field("shareId", id, common.UUID)
	}
	return common.ValidateAndReturnError(v)
}

func terminal(st async.JobState) bool {
	return st.Status == constants.JobStatusDone || st.Status == constants.JobStatusFailed
}
