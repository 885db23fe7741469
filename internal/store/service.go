package store

import (
	"context"
	"time"

	"jobscout-engine/internal/domain"
)

// Service bundles the store operations behind methods so callers can hold
// one value and tests can swap in fakes.
type Service struct {
	DB *DB
}

func NewService(db *DB) *Service { return &Service{DB: db} }

func (s *Service) CreateSession(ctx context.Context, sess domain.ScrapingSession) (int64, error) {
	return CreateSession(ctx, s.DB.Pool, sess)
}

func (s *Service) FinishSession(ctx context.Context, sess domain.ScrapingSession) error {
	return FinishSession(ctx, s.DB.Pool, sess)
}

func (s *Service) UpsertJob(ctx context.Context, j domain.NormalizedJob) (int64, bool, error) {
	res, err := UpsertJob(ctx, s.DB.Pool, j)
	if err != nil {
		return 0, false, err
	}
	return res.JobID, res.Created, nil
}

func (s *Service) FindBySignature(ctx context.Context, sig domain.JobSignature) (domain.NormalizedJob, error) {
	return FindBySignature(ctx, s.DB.Pool, sig)
}

func (s *Service) TouchLastSeen(ctx context.Context, id int64, at time.Time) error {
	return TouchLastSeen(ctx, s.DB.Pool, id, at)
}

func (s *Service) SaveMatch(ctx context.Context, m domain.MatchResult) (int64, error) {
	return SaveMatch(ctx, s.DB.Pool, m)
}

func (s *Service) ListAllJobs(ctx context.Context, limit int) ([]domain.NormalizedJob, error) {
	return ListJobs(ctx, s.DB.Pool, ListJobsOpts{Window: "all", Limit: limit})
}
