// Package comment はコメント管理のドメインロジックを提供する。
package comment

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/blogman/internal/authz"
	"github.com/hitoshi/blogman/internal/model"
	"github.com/hitoshi/blogman/internal/repository"
	"github.com/hitoshi/blogman/internal/security"
)

// MetricsRecorder はコメントイベントのメトリクス記録インターフェース。
type MetricsRecorder interface {
	RecordCommentCreated()
}

// PostFinder は対象記事の存在確認に必要なインターフェース。
// repository.PostRepositoryの部分集合として定義する。
type PostFinder interface {
	FindByID(ctx context.Context, id string) (*model.Post, error)
}

// Service はコメント管理のビジネスロジックを提供する。
type Service struct {
	commentRepo repository.CommentRepository
	postFinder  PostFinder
	sanitizer   security.ContentSanitizerService
	metrics     MetricsRecorder
}

// NewService はServiceを生成する。metricsはnilを許容する。
func NewService(
	commentRepo repository.CommentRepository,
	postFinder PostFinder,
	sanitizer security.ContentSanitizerService,
	metrics MetricsRecorder,
) *Service {
	return &Service{
		commentRepo: commentRepo,
		postFinder:  postFinder,
		sanitizer:   sanitizer,
		metrics:     metrics,
	}
}

// ListByPost は指定記事のコメントを作成順で返す。
func (s *Service) ListByPost(ctx context.Context, postID string) ([]*model.Comment, error) {
	return s.commentRepo.ListByPostID(ctx, postID)
}

// Add は記事にコメントを追加する。
// 未認証の主体にはFORBIDDENエラーを返し、何も永続化しない。
// 対象記事が存在しない場合はPOST_NOT_FOUNDエラーを返す。
func (s *Service) Add(ctx context.Context, identity model.Identity, postID, body string) (*model.Comment, error) {
	if !authz.CanComment(identity) {
		return nil, model.NewForbiddenError()
	}
	if strings.TrimSpace(body) == "" {
		return nil, model.NewInvalidInputError("コメント本文は必須です")
	}

	post, err := s.postFinder.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, model.NewPostNotFoundError(postID)
	}

	comment := &model.Comment{
		ID:             uuid.New().String(),
		Body:           s.sanitizer.Sanitize(body),
		PostID:         postID,
		AuthorID:       identity.UserID,
		AuthorUsername: identity.Username,
		CreatedAt:      time.Now(),
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	slog.Info("comment added",
		slog.String("comment_id", comment.ID),
		slog.String("post_id", postID),
		slog.String("author_id", identity.UserID),
	)
	if s.metrics != nil {
		s.metrics.RecordCommentCreated()
	}
	return comment, nil
}
