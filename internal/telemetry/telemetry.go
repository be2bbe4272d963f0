package telemetry

import (
	"context"

	"codeberg.org/veldr/pointerstat/internal/errors"
	"codeberg.org/veldr/pointerstat/internal/logger"
	"codeberg.org/veldr/pointerstat/internal/metrics"
)

// Recorder appends one refresh snapshot per call to the session log.
// Nothing is ever read back into the measurement pipeline.
type Recorder interface {
	Record(ctx context.Context, snapshot *metrics.Snapshot) error
	Close() error
}

type service struct {
	repo Repository
	cfg  Config
}

// No-op implementation used when recording is disabled
type noopRecorder struct{}

func NewService(cfg Config) (Recorder, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	if !cfg.Enabled {
		logger.Debug().Msg("Telemetry recording disabled, using no-op recorder")
		return &noopRecorder{}, nil
	}

	repo, err := NewRepository(cfg)
	if err != nil {
		return nil, err
	}

	logger.Debug().Str("db_path", cfg.DBPath).Msg("Telemetry service initialized")

	return &service{
		repo: repo,
		cfg:  cfg,
	}, nil
}

func (s *service) Record(ctx context.Context, snapshot *metrics.Snapshot) error {
	errFactory := errors.New()

	if snapshot == nil {
		return errFactory.New(ErrInvalidSample)
	}

	select {
	case <-ctx.Done():
		return errFactory.Wrap(ErrOperationAbort, ctx.Err())
	default:
		if err := s.repo.Store(ctx, snapshot); err != nil {
			return errFactory.Wrap(ErrRecordFailed, err)
		}
	}

	return nil
}

func (s *service) Close() error {
	errFactory := errors.New()

	if err := s.repo.Close(); err != nil {
		return errFactory.Wrap(ErrServiceShutdown, err)
	}
	return nil
}

func (*noopRecorder) Record(_ context.Context, _ *metrics.Snapshot) error {
	return nil
}

func (*noopRecorder) Close() error {
	return nil
}
