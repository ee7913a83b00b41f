package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/avaliaedu/avalia-api/pkg/analysis"
)

// AnalysisService produces aggregated evaluation reports via the external
// analysis runner, with a Redis-backed cache in front of it.
type AnalysisService interface {
	Report(ctx context.Context, institutionID, courseID, period string) (json.RawMessage, error)
}

type analysisService struct {
	runner   analysis.Runner
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
}

// NewAnalysisService builds the report service. The cache client is optional;
// without one every request runs the script.
func NewAnalysisService(runner analysis.Runner, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) AnalysisService {
	return &analysisService{
		runner:   runner,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "analysis_service").Logger(),
	}
}

func (s *analysisService) Report(ctx context.Context, institutionID, courseID, period string) (json.RawMessage, error) {
	if institutionID == "" {
		institutionID = "all"
	}
	if courseID == "" {
		courseID = "all"
	}
	if period == "" {
		period = "all"
	}

	cacheKey := fmt.Sprintf("analysis:report:%s:%s:%s", institutionID, courseID, period)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cacheKey).Bytes()
		if err == nil && json.Valid(cached) {
			s.logger.Debug().Str("key", cacheKey).Msg("report cache hit")
			return json.RawMessage(cached), nil
		}
		if err != nil && err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read report cache")
		}
	}

	report, err := s.runner.Run(ctx, institutionID, courseID, period)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, []byte(report), s.cacheTTL).Err(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to store report cache")
		}
	}

	return report, nil
}
