// Package authz は認可ポリシーを提供する。
// 副作用のない純粋な判定関数のみで構成され、リクエスト間で状態を持たない。
package authz

import "github.com/hitoshi/blogman/internal/model"

// CanManagePosts は記事の作成・編集・削除が許可されるかを返す。
// 許可されるのは管理者ロールを持つ認証済みアカウントのみ。
// ロールは登録時に明示的に割り当てられ、挿入順からは推定しない。
func CanManagePosts(identity model.Identity) bool {
	return identity.IsAuthenticated() && identity.Role == model.RoleAdmin
}

// CanComment はコメント投稿が許可されるかを返す。認証済みであれば誰でも可能。
func CanComment(identity model.Identity) bool {
	return identity.IsAuthenticated()
}

// CanViewPosts は記事の閲覧が許可されるかを返す。公開コンテンツのため常にtrue。
func CanViewPosts(identity model.Identity) bool {
	return true
}
