// Package post は記事管理のドメインロジックを提供する。
package post

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

// MetricsRecorder は記事イベントのメトリクス記録インターフェース。
type MetricsRecorder interface {
	RecordPostCreated()
	RecordPostDeleted()
}

// Fields は記事の作成・編集の入力。
type Fields struct {
	Title         string
	Subtitle      string
	Body          string // リッチテキストHTML。保存前にサニタイズされる。
	CoverImageURL string
}

// Summary は記事一覧用のサマリー。本文の代わりにプレーンテキストの抜粋を持つ。
type Summary struct {
	ID            string
	Title         string
	Subtitle      string
	Excerpt       string
	CoverImageURL string
	AuthorName    string
	CreatedAt     time.Time
}

// Service は記事管理のビジネスロジックを提供する。
// 認証主体は暗黙のグローバルではなく、各操作に明示的に渡される。
type Service struct {
	postRepo   repository.PostRepository
	sanitizer  security.ContentSanitizerService
	coverCheck CoverImageChecker
	metrics    MetricsRecorder
}

// NewService はServiceを生成する。metricsはnilを許容する。
func NewService(
	postRepo repository.PostRepository,
	sanitizer security.ContentSanitizerService,
	coverCheck CoverImageChecker,
	metrics MetricsRecorder,
) *Service {
	return &Service{
		postRepo:   postRepo,
		sanitizer:  sanitizer,
		coverCheck: coverCheck,
		metrics:    metrics,
	}
}

// List は全記事を作成順で返す。公開コンテンツのため認可判定は不要。
func (s *Service) List(ctx context.Context) ([]Summary, error) {
	posts, err := s.postRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]Summary, len(posts))
	for i, p := range posts {
		summaries[i] = Summary{
			ID:            p.ID,
			Title:         p.Title,
			Subtitle:      p.Subtitle,
			Excerpt:       Excerpt(p.Body, defaultExcerptRunes),
			CoverImageURL: p.CoverImageURL,
			AuthorName:    p.AuthorName,
			CreatedAt:     p.CreatedAt,
		}
	}
	return summaries, nil
}

// Get は指定IDの記事を返す。見つからない場合はPOST_NOT_FOUNDエラーを返す。
func (s *Service) Get(ctx context.Context, id string) (*model.Post, error) {
	post, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, model.NewPostNotFoundError(id)
	}
	return post, nil
}

// Create は記事を作成する。管理者以外の主体にはFORBIDDENエラーを返す。
// タイトル重複はDUPLICATE_TITLEエラーとなり、部分的な行は永続化されない。
func (s *Service) Create(ctx context.Context, identity model.Identity, fields Fields) (*model.Post, error) {
	if !authz.CanManagePosts(identity) {
		return nil, model.NewForbiddenError()
	}
	if err := validateFields(fields); err != nil {
		return nil, err
	}
	if err := s.checkCoverImage(ctx, fields.CoverImageURL); err != nil {
		return nil, err
	}

	now := time.Now()
	post := &model.Post{
		ID:            uuid.New().String(),
		Title:         strings.TrimSpace(fields.Title),
		Subtitle:      strings.TrimSpace(fields.Subtitle),
		Body:          s.sanitizer.Sanitize(fields.Body),
		CoverImageURL: fields.CoverImageURL,
		AuthorID:      identity.UserID,
		AuthorName:    identity.Username,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	slog.Info("post created",
		slog.String("post_id", post.ID),
		slog.String("author_id", identity.UserID),
	)
	if s.metrics != nil {
		s.metrics.RecordPostCreated()
	}
	return post, nil
}

// Update は記事を編集する。管理者以外の主体にはFORBIDDENエラーを返す。
// 対象が存在しない場合はPOST_NOT_FOUNDエラーを返す。
func (s *Service) Update(ctx context.Context, identity model.Identity, id string, fields Fields) (*model.Post, error) {
	if !authz.CanManagePosts(identity) {
		return nil, model.NewForbiddenError()
	}
	if err := validateFields(fields); err != nil {
		return nil, err
	}

	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	// カバー画像URLが変更された場合のみ再検証する
	if fields.CoverImageURL != post.CoverImageURL {
		if err := s.checkCoverImage(ctx, fields.CoverImageURL); err != nil {
			return nil, err
		}
	}

	post.Title = strings.TrimSpace(fields.Title)
	post.Subtitle = strings.TrimSpace(fields.Subtitle)
	post.Body = s.sanitizer.Sanitize(fields.Body)
	post.CoverImageURL = fields.CoverImageURL
	post.UpdatedAt = time.Now()

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}

	slog.Info("post updated", slog.String("post_id", post.ID))
	return post, nil
}

// Delete は記事を削除する。管理者以外の主体にはFORBIDDENエラーを返す。
// 関連コメントはストレージ層のCASCADE制約で同時に削除される。
func (s *Service) Delete(ctx context.Context, identity model.Identity, id string) error {
	if !authz.CanManagePosts(identity) {
		return model.NewForbiddenError()
	}

	if err := s.postRepo.Delete(ctx, id); err != nil {
		return err
	}

	slog.Info("post deleted", slog.String("post_id", id))
	if s.metrics != nil {
		s.metrics.RecordPostDeleted()
	}
	return nil
}

// checkCoverImage はカバー画像URLを検証し、失敗をINVALID_INPUTエラーに変換する。
func (s *Service) checkCoverImage(ctx context.Context, rawURL string) error {
	if s.coverCheck == nil {
		return nil
	}
	if err := s.coverCheck.Check(ctx, rawURL); err != nil {
		return model.NewInvalidInputError(err.Error())
	}
	return nil
}

// validateFields は記事入力の必須項目を検証する。
func validateFields(fields Fields) error {
	switch {
	case strings.TrimSpace(fields.Title) == "":
		return model.NewInvalidInputError("タイトルは必須です")
	case strings.TrimSpace(fields.Subtitle) == "":
		return model.NewInvalidInputError("サブタイトルは必須です")
	case strings.TrimSpace(fields.Body) == "":
		return model.NewInvalidInputError("本文は必須です")
	case strings.TrimSpace(fields.CoverImageURL) == "":
		return model.NewInvalidInputError("カバー画像URLは必須です")
	}
	return nil
}
