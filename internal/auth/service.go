// Package auth はアカウント登録、パスワード認証、セッション管理を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/blogman/internal/model"
	"github.com/hitoshi/blogman/internal/repository"
)

// MetricsRecorder は認証イベントのメトリクス記録インターフェース。
type MetricsRecorder interface {
	RecordRegistration()
	RecordLogin(success bool)
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionSecret string // セッションCookieの署名鍵
	SessionMaxAge int    // セッション有効期間（秒）
	BcryptCost    int    // bcryptのコストパラメータ

	// RevealUnknownEmail がtrueの場合、未登録メールアドレスでのログイン失敗を
	// USER_NOT_FOUNDとして区別して返す。falseの場合はパスワード不一致と同じ
	// INVALID_CREDENTIALSに集約し、アカウントの存在を開示しない。
	RevealUnknownEmail bool
}

// Result は登録・認証成功時の結果。
// TokenはセッションCookieに設定する署名付きトークン。
type Result struct {
	User    *model.User
	Session *model.Session
	Token   string
}

// RegisterInput はアカウント登録の入力。
type RegisterInput struct {
	Name     string
	Email    string
	Username string
	Password string
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	metrics     MetricsRecorder
	config      ServiceConfig
}

// NewService はServiceを生成する。metricsはnilを許容する。
func NewService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	metrics MetricsRecorder,
	config ServiceConfig,
) *Service {
	return &Service{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		metrics:     metrics,
		config:      config,
	}
}

// Register はアカウントを登録し、セッションを発行する（登録後の自動ログイン）。
// 最初に登録されたアカウントには管理者ロールを明示的に割り当てる。
// メールアドレスまたはユーザー名の重複はDUPLICATE_IDENTITYエラーとして返す。
func (s *Service) Register(ctx context.Context, input RegisterInput) (*Result, error) {
	if err := validateRegisterInput(input); err != nil {
		return nil, err
	}

	hash, err := HashPassword(input.Password, s.config.BcryptCost)
	if err != nil {
		return nil, err
	}

	// 初回登録者のみ管理者。同時登録の競合はストレージの一意制約が唯一の安全網であり、
	// ここでの判定はベストエフォート。
	count, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("ユーザー数の確認に失敗しました: %w", err)
	}
	role := model.RoleMember
	if count == 0 {
		role = model.RoleAdmin
	}

	now := time.Now()
	user := &model.User{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(input.Name),
		Username:     strings.TrimSpace(input.Username),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	slog.Info("new user registered",
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)),
	)
	if s.metrics != nil {
		s.metrics.RecordRegistration()
	}

	return s.establishSession(ctx, user)
}

// Authenticate はメールアドレスとパスワードでログインし、セッションを発行する。
// 未登録メールアドレスの扱いはServiceConfig.RevealUnknownEmailに従う。
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Result, error) {
	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.recordLogin(false)
		if s.config.RevealUnknownEmail {
			return nil, model.NewUserNotFoundError()
		}
		return nil, model.NewInvalidCredentialsError()
	}

	if !VerifyPassword(user.PasswordHash, password) {
		s.recordLogin(false)
		return nil, model.NewInvalidCredentialsError()
	}

	slog.Info("user logged in", slog.String("user_id", user.ID))
	s.recordLogin(true)

	return s.establishSession(ctx, user)
}

// Logout はセッションを破棄する。トークンが空・不正な場合も成功として扱う（冪等）。
func (s *Service) Logout(ctx context.Context, token string) error {
	sessionID, ok := DecodeSessionToken(s.config.SessionSecret, token)
	if !ok {
		return nil
	}

	if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("ログアウトに失敗しました: %w", err)
	}

	slog.Info("user logged out", slog.String("session_id", sessionID))
	return nil
}

// IdentityFromToken はセッションCookieのトークンからリクエストの認証主体を解決する。
// 失敗することはなく、トークン不正・セッション期限切れ・ユーザー不在はすべて
// Anonymousとして返す。
func (s *Service) IdentityFromToken(ctx context.Context, token string) model.Identity {
	sessionID, ok := DecodeSessionToken(s.config.SessionSecret, token)
	if !ok {
		return model.Anonymous()
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		slog.Error("failed to find session", slog.String("error", err.Error()))
		return model.Anonymous()
	}
	if session == nil {
		return model.Anonymous()
	}

	user, err := s.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		slog.Error("failed to find session user", slog.String("error", err.Error()))
		return model.Anonymous()
	}
	if user == nil {
		return model.Anonymous()
	}

	return model.Identity{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	}
}

// establishSession はセッションを作成・永続化し、署名付きトークンとともに返す。
func (s *Service) establishSession(ctx context.Context, user *model.User) (*Result, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("セッションIDの生成に失敗しました: %w", err)
	}

	now := time.Now()
	session := &model.Session{
		ID:        sessionID,
		UserID:    user.ID,
		ExpiresAt: now.Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: now,
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	return &Result{
		User:    user,
		Session: session,
		Token:   EncodeSessionToken(s.config.SessionSecret, sessionID),
	}, nil
}

// recordLogin はログイン試行結果をメトリクスに記録する。
func (s *Service) recordLogin(success bool) {
	if s.metrics != nil {
		s.metrics.RecordLogin(success)
	}
}

// validateRegisterInput は登録入力の必須項目を検証する。
func validateRegisterInput(input RegisterInput) error {
	switch {
	case strings.TrimSpace(input.Name) == "":
		return model.NewInvalidInputError("名前は必須です")
	case strings.TrimSpace(input.Email) == "":
		return model.NewInvalidInputError("メールアドレスは必須です")
	case strings.TrimSpace(input.Username) == "":
		return model.NewInvalidInputError("ユーザー名は必須です")
	case input.Password == "":
		return model.NewInvalidInputError("パスワードは必須です")
	}
	return nil
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
