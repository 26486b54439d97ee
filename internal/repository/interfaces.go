// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/blogman/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// Create はユーザーを作成する。
	// email/usernameの一意制約違反はmodel.APIError(DUPLICATE_IDENTITY)として返す。
	Create(ctx context.Context, user *model.User) error

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Count は登録済みユーザー数を返す。初回登録者の管理者判定に使用する。
	Count(ctx context.Context) (int, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れ・未存在の場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。存在しない場合もエラーにしない。
	DeleteByID(ctx context.Context, id string) error
	// DeleteExpired は期限切れセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}

// PostRepository は記事データの永続化インターフェース。
type PostRepository interface {
	// List は全記事を作成順（挿入順）で返す。著者表示名はJOINで解決する。
	List(ctx context.Context) ([]*model.Post, error)

	// FindByID は指定IDの記事を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Post, error)

	// Create は記事を作成する。
	// タイトルの一意制約違反はmodel.APIError(DUPLICATE_TITLE)として返す。
	Create(ctx context.Context, post *model.Post) error

	// Update は記事を更新する。対象が存在しない場合はmodel.APIError(POST_NOT_FOUND)を返す。
	Update(ctx context.Context, post *model.Post) error

	// Delete は記事を削除する。関連コメントはCASCADE削除される。
	// 対象が存在しない場合はmodel.APIError(POST_NOT_FOUND)を返す。
	Delete(ctx context.Context, id string) error
}

// CommentRepository はコメントデータの永続化インターフェース。
type CommentRepository interface {
	// ListByPostID は指定記事のコメントを作成順（挿入順）で返す。
	ListByPostID(ctx context.Context, postID string) ([]*model.Comment, error)

	// Create はコメントを作成する。
	Create(ctx context.Context, comment *model.Comment) error
}
