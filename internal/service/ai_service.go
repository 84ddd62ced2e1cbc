package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/RubachokBoss/thesisflow/internal/models"
	"github.com/RubachokBoss/thesisflow/internal/service/integration"
	"github.com/RubachokBoss/thesisflow/pkg/hash"
	"github.com/RubachokBoss/thesisflow/pkg/metrics"
	"github.com/rs/zerolog"
)

const SummaryProgress = "AI summarization of the submission is complete."

type AIService interface {
	Summarize(ctx context.Context, p Principal, req *models.TextRequest) (*models.SummaryResponse, error)
	CheckPlagiarism(ctx context.Context, p Principal, req *models.TextRequest) (*models.PlagiarismResponse, error)
}

type aiService struct {
	client integration.AIClient
	// cache is nil when caching is disabled.
	cache  integration.CacheClient
	hasher hash.Hasher
	logger zerolog.Logger
}

func NewAIService(client integration.AIClient, cache integration.CacheClient, hasher hash.Hasher, logger zerolog.Logger) AIService {
	return &aiService{
		client: client,
		cache:  cache,
		hasher: hasher,
		logger: logger,
	}
}

func (s *aiService) Summarize(ctx context.Context, p Principal, req *models.TextRequest) (*models.SummaryResponse, error) {
	if err := s.validate(p, req); err != nil {
		return nil, err
	}

	var out models.SummaryResponse
	err := s.cached(ctx, "summarize", req.Text, &out, func() (interface{}, error) {
		res, err := s.client.Summarize(ctx, req.Text)
		if err != nil {
			return nil, err
		}
		res.Progress = SummaryProgress
		out = *res
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *aiService) CheckPlagiarism(ctx context.Context, p Principal, req *models.TextRequest) (*models.PlagiarismResponse, error) {
	if err := s.validate(p, req); err != nil {
		return nil, err
	}

	var out models.PlagiarismResponse
	err := s.cached(ctx, "plagiarism", req.Text, &out, func() (interface{}, error) {
		res, err := s.client.CheckPlagiarism(ctx, req.Text)
		if err != nil {
			return nil, err
		}
		out = *res
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *aiService) validate(p Principal, req *models.TextRequest) error {
	if p.UserID == "" {
		return ErrUnauthorized
	}
	if strings.TrimSpace(req.Text) == "" {
		return fmt.Errorf("%w: text is required", ErrInvalidInput)
	}
	return nil
}

// cached serves flow results from the cache keyed by the content hash and
// falls back to call, which must also fill out.
func (s *aiService) cached(ctx context.Context, flow, text string, out interface{}, call func() (interface{}, error)) error {
	key := fmt.Sprintf("ai:%s:%s", flow, s.hasher.SumString(text))

	if s.cache != nil {
		found, err := s.cache.Get(ctx, key, out)
		if err != nil {
			s.logger.Warn().Err(err).Str("flow", flow).Msg("AI cache read failed")
		}
		if found {
			metrics.RecordAICall(flow, "cached", 0)
			return nil
		}
	}

	start := time.Now()
	res, err := call()
	if err != nil {
		metrics.RecordAICall(flow, "error", time.Since(start))
		s.logger.Error().Err(err).Str("flow", flow).Msg("AI call failed")
		return fmt.Errorf("%w: %v", ErrUpstreamFailure, err)
	}
	metrics.RecordAICall(flow, "ok", time.Since(start))

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, res); err != nil {
			s.logger.Warn().Err(err).Str("flow", flow).Msg("AI cache write failed")
		}
	}
	return nil
}
