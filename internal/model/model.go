// Package model はドメインモデルを定義する。
package model

import "time"

// Role はユーザーの権限区分を表す。
// 登録時に明示的に割り当てられ、以後変更されない。
type Role string

const (
	// RoleAdmin は記事の作成・編集・削除が可能な管理者。
	RoleAdmin Role = "admin"
	// RoleMember はコメント投稿のみ可能な一般会員。
	RoleMember Role = "member"
)

// User は登録ユーザーを表す。
// PasswordHashは一方向ハッシュのみを保持し、平文はどこにも保存・出力しない。
type User struct {
	ID           string
	Name         string
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Post はブログ記事を表す。
// 著者はauthor_idの参照のみで保持し、表示名は読み出し時にJOINで解決する。
type Post struct {
	ID            string
	Title         string
	Subtitle      string
	Body          string // サニタイズ済みHTML
	CoverImageURL string
	AuthorID      string
	AuthorName    string // JOINで解決される表示名。永続化しない。
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Comment は記事へのコメントを表す。
// 記事・著者への参照は外部キーで保持し、記事削除時にCASCADE削除される。
type Comment struct {
	ID             string
	Body           string
	PostID         string
	AuthorID       string
	AuthorUsername string // JOINで解決される表示名。永続化しない。
	CreatedAt      time.Time
}

// Session はユーザーのログインセッションを表す。
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Identity はリクエストの認証主体を表す。
// 未認証リクエストはゼロ値（Anonymous）として扱う。
type Identity struct {
	UserID   string
	Username string
	Role     Role
}

// Anonymous は未認証のIdentityを返す。
func Anonymous() Identity {
	return Identity{}
}

// IsAuthenticated は認証済みの主体かどうかを返す。
func (i Identity) IsAuthenticated() bool {
	return i.UserID != ""
}
