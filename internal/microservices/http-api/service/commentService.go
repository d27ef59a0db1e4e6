package service

import (
	"context"
	"net/http"
	"strings"
	"time"

	"yamdb/internal/apperror"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/permission"
	"yamdb/internal/microservices/http-api/repository"
)

type CommentService interface {
	CreateComment(ctx context.Context, actor *permission.Actor, titleID, reviewID int64, text string) (*models.Comment, error)
	UpdateComment(ctx context.Context, actor *permission.Actor, titleID, reviewID, commentID int64, text *string) (*models.Comment, error)
	DeleteComment(ctx context.Context, actor *permission.Actor, titleID, reviewID, commentID int64) error
	GetComment(ctx context.Context, titleID, reviewID, commentID int64) (*models.Comment, error)
	ListComments(ctx context.Context, titleID, reviewID int64, page, pageSize int) ([]models.Comment, int64, error)
}

type commentService struct {
	commentRepo repository.CommentRepository
	reviewRepo  repository.ReviewRepository
	now         func() time.Time
}

func NewCommentService(commentRepo repository.CommentRepository, reviewRepo repository.ReviewRepository) CommentService {
	return &commentService{
		commentRepo: commentRepo,
		reviewRepo:  reviewRepo,
		now:         time.Now,
	}
}

// requireReview resolves the review under its title; a review reached through the wrong
// title is reported as not found.
func (s *commentService) requireReview(ctx context.Context, titleID, reviewID int64) error {
	_, err := s.reviewRepo.GetByID(ctx, titleID, reviewID)
	return err
}

func (s *commentService) CreateComment(ctx context.Context, actor *permission.Actor, titleID, reviewID int64, text string) (*models.Comment, error) {
	if err := permission.Check(actor, http.MethodPost, permission.KindComment, nil); err != nil {
		return nil, err
	}
	if err := s.requireReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, apperror.Validation("text", "text is required")
	}

	comment := &models.Comment{
		ReviewID: reviewID,
		AuthorID: actor.UserID,
		Text:     text,
		PubDate:  s.now().UTC(),
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	comment.Author = models.User{ID: actor.UserID, Username: actor.Username}
	return comment, nil
}

func (s *commentService) loadForWrite(ctx context.Context, actor *permission.Actor, method string, titleID, reviewID, commentID int64) (*models.Comment, error) {
	if err := permission.Check(actor, method, permission.KindComment, nil); err != nil {
		return nil, err
	}
	if err := s.requireReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	comment, err := s.commentRepo.GetByID(ctx, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	if err := permission.Check(actor, method, permission.KindComment, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *commentService) UpdateComment(ctx context.Context, actor *permission.Actor, titleID, reviewID, commentID int64, text *string) (*models.Comment, error) {
	comment, err := s.loadForWrite(ctx, actor, http.MethodPatch, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	if text != nil {
		if strings.TrimSpace(*text) == "" {
			return nil, apperror.Validation("text", "text may not be blank")
		}
		comment.Text = *text
	}
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *commentService) DeleteComment(ctx context.Context, actor *permission.Actor, titleID, reviewID, commentID int64) error {
	comment, err := s.loadForWrite(ctx, actor, http.MethodDelete, titleID, reviewID, commentID)
	if err != nil {
		return err
	}
	return s.commentRepo.Delete(ctx, comment.ID)
}

func (s *commentService) GetComment(ctx context.Context, titleID, reviewID, commentID int64) (*models.Comment, error) {
	if err := s.requireReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByID(ctx, reviewID, commentID)
}

func (s *commentService) ListComments(ctx context.Context, titleID, reviewID int64, page, pageSize int) ([]models.Comment, int64, error) {
	if err := s.requireReview(ctx, titleID, reviewID); err != nil {
		return nil, 0, err
	}
	return s.commentRepo.ListByReview(ctx, reviewID, page, pageSize)
}
