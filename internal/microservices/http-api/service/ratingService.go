package service

import (
	"context"
	"log/slog"

	"yamdb/internal/microservices/http-api/repository"
)

// AverageScore is the arithmetic mean of scores, or nil for an empty set.
func AverageScore(scores []int) *float64 {
	if len(scores) == 0 {
		return nil
	}
	sum := 0
	for _, s := range scores {
		sum += s
	}
	avg := float64(sum) / float64(len(scores))
	return &avg
}

// RatingCache is satisfied by *cache.RatingCache. A nil RatingCache disables caching.
// Get reports the entry's generation on a miss; Set only stores while that generation
// is still current, so a value computed before an Invalidate is never written after it.
type RatingCache interface {
	Get(ctx context.Context, titleID int64) (rating *float64, hit bool, gen int64, err error)
	Set(ctx context.Context, titleID int64, rating *float64, gen int64) (bool, error)
	Invalidate(ctx context.Context, titleID int64) error
}

type RatingService interface {
	Rating(ctx context.Context, titleID int64) (*float64, error)
	Ratings(ctx context.Context, titleIDs []int64) (map[int64]*float64, error)
	Invalidate(ctx context.Context, titleID int64)
}

type ratingService struct {
	reviewRepo repository.ReviewRepository
	cache      RatingCache
	logger     *slog.Logger
}

func NewRatingService(reviewRepo repository.ReviewRepository, cache RatingCache, logger *slog.Logger) RatingService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ratingService{
		reviewRepo: reviewRepo,
		cache:      cache,
		logger:     logger,
	}
}

func (s *ratingService) Rating(ctx context.Context, titleID int64) (*float64, error) {
	ratings, err := s.Ratings(ctx, []int64{titleID})
	if err != nil {
		return nil, err
	}
	return ratings[titleID], nil
}

// Ratings returns an entry for every requested id; titles without reviews map to nil.
func (s *ratingService) Ratings(ctx context.Context, titleIDs []int64) (map[int64]*float64, error) {
	out := make(map[int64]*float64, len(titleIDs))
	var missing []int64
	// generation seen at miss time, absent when the cache could not be read
	gens := make(map[int64]int64)

	for _, id := range titleIDs {
		if s.cache == nil {
			missing = append(missing, id)
			continue
		}
		rating, hit, gen, err := s.cache.Get(ctx, id)
		if err != nil {
			s.logger.WarnContext(ctx, "rating_cache_get_failed", "title_id", id, "error", err)
			missing = append(missing, id)
			continue
		}
		if !hit {
			gens[id] = gen
			missing = append(missing, id)
			continue
		}
		out[id] = rating
	}
	if len(missing) == 0 {
		return out, nil
	}

	averages, err := s.reviewRepo.AverageScores(ctx, missing)
	if err != nil {
		return nil, err
	}
	for _, id := range missing {
		var rating *float64
		if avg, ok := averages[id]; ok {
			rating = &avg
		}
		out[id] = rating

		gen, ok := gens[id]
		if !ok {
			continue
		}
		stored, err := s.cache.Set(ctx, id, rating, gen)
		if err != nil {
			s.logger.WarnContext(ctx, "rating_cache_set_failed", "title_id", id, "error", err)
		} else if !stored {
			s.logger.DebugContext(ctx, "rating_cache_set_skipped", "title_id", id, "gen", gen)
		}
	}
	return out, nil
}

func (s *ratingService) Invalidate(ctx context.Context, titleID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, titleID); err != nil {
		s.logger.WarnContext(ctx, "rating_cache_invalidate_failed", "title_id", titleID, "error", err)
	}
}
