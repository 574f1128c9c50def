package punch

import (
	"context"
	"errors"
	"time"

	puncherrors "github.com/Vishal6374/hr-harmony-sub000/internal/punch/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

const sampleLimit = 10

//go:generate mockgen -source=punch_service.go -destination=mock/punch_service_mock.go -package=mock
type Service interface {
	Ingest(ctx context.Context, req IngestPunchesRequest) (IngestPunchesResponse, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("punch.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("punch.service")
	}
	return &service{repo: repo, logger: l}
}

// Ingest deduplicates a batch of raw clock events by (device user, timestamp,
// device address) and inserts what is new. Ingestion is best effort and
// repeatable: a row that fails to insert is logged and counted, never fatal.
func (s *service) Ingest(ctx context.Context, req IngestPunchesRequest) (IngestPunchesResponse, error) {
	if len(req.Punches) == 0 {
		return IngestPunchesResponse{}, puncherrors.ErrEmptyBatch
	}

	s.logger.Debug("ingest punches requested",
		zap.String("source_type", req.SourceType),
		zap.String("device_addr", req.DeviceAddr),
		zap.Bool("dry_run", req.DryRun),
		zap.Int("batch_size", len(req.Punches)),
	)

	resp := IngestPunchesResponse{DryRun: req.DryRun}

	for _, in := range req.Punches {
		punchedAt, err := time.Parse(time.RFC3339, in.PunchedAt)
		if err != nil {
			s.logger.Warn("punch with invalid timestamp skipped",
				zap.String("device_user_id", in.DeviceUserID),
				zap.String("punched_at", in.PunchedAt),
			)
			resp.Skipped++
			continue
		}
		punchedAt = punchedAt.UTC()

		exists, err := s.repo.Exists(ctx, in.DeviceUserID, punchedAt, req.DeviceAddr)
		if err != nil {
			s.logger.Error("punch dedup check failed",
				zap.String("device_user_id", in.DeviceUserID),
				zap.Error(err),
			)
			resp.Skipped++
			continue
		}
		if exists {
			resp.Skipped++
			continue
		}

		direction := in.Direction
		if direction == "" {
			direction = DirectionAuto
		}

		row := &RawPunch{
			ID:           uuid.New(),
			DeviceUserID: in.DeviceUserID,
			PunchedAt:    punchedAt,
			DeviceAddr:   req.DeviceAddr,
			Direction:    direction,
			SourceType:   req.SourceType,
			Status:       StatusPending,
		}

		if req.DryRun {
			resp.Inserted++
			if len(resp.Sample) < sampleLimit {
				resp.Sample = append(resp.Sample, mapToResponse(*row))
			}
			continue
		}

		if err := s.repo.Create(ctx, row); err != nil {
			// A concurrent writer beat us to the same natural key.
			if isUniqueViolation(err) {
				resp.Skipped++
				continue
			}
			s.logger.Error("punch insert failed",
				zap.String("device_user_id", in.DeviceUserID),
				zap.Time("punched_at", punchedAt),
				zap.Error(err),
			)
			resp.Skipped++
			continue
		}
		resp.Inserted++
	}

	s.logger.Info("ingest punches done",
		zap.String("device_addr", req.DeviceAddr),
		zap.Bool("dry_run", req.DryRun),
		zap.Int("inserted", resp.Inserted),
		zap.Int("skipped", resp.Skipped),
	)
	return resp, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func mapToResponse(p RawPunch) PunchResponse {
	id := ""
	if p.ID != uuid.Nil {
		id = p.ID.String()
	}
	return PunchResponse{
		ID:           id,
		DeviceUserID: p.DeviceUserID,
		PunchedAt:    p.PunchedAt.Format(time.RFC3339),
		Direction:    p.Direction,
		SourceType:   p.SourceType,
		DeviceAddr:   p.DeviceAddr,
		Status:       p.Status,
	}
}
