package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"yamdb/internal/apperror"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/permission"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/microservices/http-api/validation"
)

var errAlreadyReviewed = apperror.Validation("title", "you have already reviewed this title")

type ReviewService interface {
	CreateReview(ctx context.Context, actor *permission.Actor, titleID int64, text string, score int) (*models.Review, error)
	UpdateReview(ctx context.Context, actor *permission.Actor, titleID, reviewID int64, text *string, score *int) (*models.Review, error)
	DeleteReview(ctx context.Context, actor *permission.Actor, titleID, reviewID int64) error
	GetReview(ctx context.Context, titleID, reviewID int64) (*models.Review, error)
	ListReviews(ctx context.Context, titleID int64, page, pageSize int) ([]models.Review, int64, error)
}

type reviewService struct {
	reviewRepo repository.ReviewRepository
	titleRepo  repository.TitleRepository
	ratings    RatingService
	logger     *slog.Logger
	now        func() time.Time
}

func NewReviewService(reviewRepo repository.ReviewRepository, titleRepo repository.TitleRepository, ratings RatingService, logger *slog.Logger) ReviewService {
	if logger == nil {
		logger = slog.Default()
	}
	return &reviewService{
		reviewRepo: reviewRepo,
		titleRepo:  titleRepo,
		ratings:    ratings,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *reviewService) requireTitle(ctx context.Context, titleID int64) error {
	ok, err := s.titleRepo.Exists(ctx, titleID)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.NotFound("title", titleID)
	}
	return nil
}

func (s *reviewService) CreateReview(ctx context.Context, actor *permission.Actor, titleID int64, text string, score int) (*models.Review, error) {
	if err := permission.Check(actor, http.MethodPost, permission.KindReview, nil); err != nil {
		return nil, err
	}
	if err := s.requireTitle(ctx, titleID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, apperror.Validation("text", "text is required")
	}
	if err := validation.Score(score); err != nil {
		return nil, err
	}

	exists, err := s.reviewRepo.ExistsByTitleAndAuthor(ctx, titleID, actor.UserID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errAlreadyReviewed
	}

	review := &models.Review{
		TitleID:  titleID,
		AuthorID: actor.UserID,
		Text:     text,
		Score:    score,
		PubDate:  s.now().UTC(),
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, errAlreadyReviewed
		}
		return nil, err
	}
	review.Author = models.User{ID: actor.UserID, Username: actor.Username}

	s.ratings.Invalidate(ctx, titleID)
	s.logger.InfoContext(ctx, "review_created", "review_id", review.ID, "title_id", titleID, "user_id", actor.UserID)
	return review, nil
}

// loadForWrite runs the collection check, loads the review under its title and then
// runs the object check against its author.
func (s *reviewService) loadForWrite(ctx context.Context, actor *permission.Actor, method string, titleID, reviewID int64) (*models.Review, error) {
	if err := permission.Check(actor, method, permission.KindReview, nil); err != nil {
		return nil, err
	}
	if err := s.requireTitle(ctx, titleID); err != nil {
		return nil, err
	}
	review, err := s.reviewRepo.GetByID(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	if err := permission.Check(actor, method, permission.KindReview, review); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *reviewService) UpdateReview(ctx context.Context, actor *permission.Actor, titleID, reviewID int64, text *string, score *int) (*models.Review, error) {
	review, err := s.loadForWrite(ctx, actor, http.MethodPatch, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	if text != nil {
		if strings.TrimSpace(*text) == "" {
			return nil, apperror.Validation("text", "text may not be blank")
		}
		review.Text = *text
	}
	if score != nil {
		if err := validation.Score(*score); err != nil {
			return nil, err
		}
		review.Score = *score
	}

	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, err
	}
	s.ratings.Invalidate(ctx, titleID)
	return review, nil
}

func (s *reviewService) DeleteReview(ctx context.Context, actor *permission.Actor, titleID, reviewID int64) error {
	review, err := s.loadForWrite(ctx, actor, http.MethodDelete, titleID, reviewID)
	if err != nil {
		return err
	}
	if err := s.reviewRepo.Delete(ctx, review.ID); err != nil {
		return err
	}
	s.ratings.Invalidate(ctx, titleID)
	s.logger.InfoContext(ctx, "review_deleted", "review_id", review.ID, "title_id", titleID, "user_id", actor.UserID)
	return nil
}

func (s *reviewService) GetReview(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	if err := s.requireTitle(ctx, titleID); err != nil {
		return nil, err
	}
	return s.reviewRepo.GetByID(ctx, titleID, reviewID)
}

func (s *reviewService) ListReviews(ctx context.Context, titleID int64, page, pageSize int) ([]models.Review, int64, error) {
	if err := s.requireTitle(ctx, titleID); err != nil {
		return nil, 0, err
	}
	return s.reviewRepo.ListByTitle(ctx, titleID, page, pageSize)
}
