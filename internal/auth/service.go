package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/travelguru/rentgate/internal/model"
	"github.com/travelguru/rentgate/internal/repository"
	"github.com/travelguru/rentgate/internal/session"
)

// providerPassword はパスワード認証のidentitiesレコードに記録するプロバイダー名。
const providerPassword = "password"

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge int // セッション有効期間（秒）
}

// Service は認証に関するビジネスロジックを提供する。
// すべてのセッション変化（ログイン・ログアウト・復元）はセッションストアへ
// 発行され、購読者が観測できる。
type Service struct {
	idp         IdentityProvider
	oauth       OAuthProvider
	userRepo    repository.UserRepository
	identRepo   repository.IdentityRepository
	sessionRepo repository.SessionRepository
	store       *session.Store
	config      ServiceConfig
}

// NewService はServiceを生成する。
func NewService(
	idp IdentityProvider,
	oauth OAuthProvider,
	userRepo repository.UserRepository,
	identRepo repository.IdentityRepository,
	sessionRepo repository.SessionRepository,
	store *session.Store,
	config ServiceConfig,
) *Service {
	return &Service{
		idp:         idp,
		oauth:       oauth,
		userRepo:    userRepo,
		identRepo:   identRepo,
		sessionRepo: sessionRepo,
		store:       store,
		config:      config,
	}
}

// Register はIdPに新規アカウントを作成し、セッションを発行する。
// 表示名・アバターURLが指定されていればIdPプロフィールにも保存する。
// メールアドレス重複等のIdPエラーはそのメッセージを保持したまま返す。
func (s *Service) Register(ctx context.Context, email, password, name, avatarURL string) (*model.Session, error) {
	ident, err := s.idp.SignUp(ctx, email, password)
	if err != nil {
		return nil, err
	}

	// アカウント作成直後にプロフィールを付与する
	if name != "" || avatarURL != "" {
		if err := s.idp.UpdateProfile(ctx, ident.IDToken, name, avatarURL); err != nil {
			return nil, err
		}
		ident.Name = name
		ident.AvatarURL = avatarURL
	}

	user, err := s.findOrCreateUser(ctx, providerPassword, ident.ProviderUserID, ident.Email, ident.Name, ident.AvatarURL)
	if err != nil {
		return nil, err
	}

	sess, err := s.createSession(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	slog.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	s.store.Set(sess)
	return sess, nil
}

// Login はメールアドレスとパスワードで認証し、セッションを発行する。
func (s *Service) Login(ctx context.Context, email, password string) (*model.Session, error) {
	ident, err := s.idp.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}

	user, err := s.findOrCreateUser(ctx, providerPassword, ident.ProviderUserID, ident.Email, ident.Name, ident.AvatarURL)
	if err != nil {
		return nil, err
	}

	sess, err := s.createSession(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	slog.Info("user logged in",
		slog.String("user_id", user.ID),
		slog.String("provider", providerPassword),
	)

	s.store.Set(sess)
	return sess, nil
}

// GetLoginURL はOAuth認証URLを生成する。
func (s *Service) GetLoginURL(state string) string {
	return s.oauth.GetLoginURL(state)
}

// HandleFederatedCallback はOAuthコールバックを処理し、セッションを発行する。
// 未登録ユーザーの場合はusersレコードとidentitiesレコードを同時に自動作成する。
// 登録済みユーザーの場合はidentitiesテーブルで既存ユーザーを特定しログインする。
func (s *Service) HandleFederatedCallback(ctx context.Context, code string) (*model.Session, error) {
	userInfo, err := s.oauth.ExchangeCode(ctx, code)
	if err != nil {
		return nil, model.NewAuthError(fmt.Sprintf("認可コードの交換に失敗しました: %s", err.Error()))
	}

	user, err := s.findOrCreateUser(ctx, userInfo.Provider, userInfo.ProviderUserID, userInfo.Email, userInfo.Name, userInfo.AvatarURL)
	if err != nil {
		return nil, err
	}

	sess, err := s.createSession(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	slog.Info("user logged in",
		slog.String("user_id", user.ID),
		slog.String("provider", userInfo.Provider),
	)

	s.store.Set(sess)
	return sess, nil
}

// Logout はセッションを破棄し、セッション不在をストアへ発行する。
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session ID is required")
	}

	if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("user logged out", slog.String("session_id", sessionID))

	s.store.Set(nil)
	return nil
}

// ResolveSession はセッションIDから有効なセッションを解決する。
// 期限切れ・不在の場合は(nil, nil)を返す。
// リクエスト単位の解決であり、プロセス全体の認証状態ストアへは発行しない。
// ストアへの発行はログイン・ログアウトなどの認証状態の遷移時のみ行う。
func (s *Service) ResolveSession(ctx context.Context, sessionID string) (*model.Session, error) {
	if sessionID == "" {
		return nil, nil
	}

	sess, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}

	return sess, nil
}

// GetCurrentUser はセッションから現在のユーザーを取得する。
func (s *Service) GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error) {
	if sessionID == "" {
		return nil, model.NewSessionNotFoundError()
	}

	sess, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if sess == nil {
		return nil, model.NewSessionNotFoundError()
	}

	user, err := s.userRepo.FindByID(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}

	return user, nil
}

// findOrCreateUser はidentitiesテーブルで既存ユーザーを検索し、
// 見つからなければusersレコードとidentitiesレコードを同時に作成する。
// 既存ユーザーはプロバイダの最新プロフィール（表示名・アバター）で更新する。
func (s *Service) findOrCreateUser(ctx context.Context, provider, providerUserID, email, name, avatarURL string) (*model.User, error) {
	identity, err := s.identRepo.FindByProviderAndProviderUserID(ctx, provider, providerUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find identity: %w", err)
	}

	if identity != nil {
		user, err := s.userRepo.FindByID(ctx, identity.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to find user: %w", err)
		}
		if user == nil {
			return nil, model.NewUserNotFoundError()
		}

		// プロバイダ側で表示名・アバターが変わっていれば毎回取り込む
		if user.Name != name || user.AvatarURL != avatarURL {
			if err := s.userRepo.UpdateProfile(ctx, user.ID, name, avatarURL); err != nil {
				return nil, fmt.Errorf("failed to update profile: %w", err)
			}
			user.Name = name
			user.AvatarURL = avatarURL
		}
		return user, nil
	}

	now := time.Now()
	newUser := &model.User{
		ID:        uuid.New().String(),
		Email:     email,
		Name:      name,
		AvatarURL: avatarURL,
		CreatedAt: now,
		UpdatedAt: now,
	}
	newIdentity := &model.Identity{
		ID:             uuid.New().String(),
		UserID:         newUser.ID,
		Provider:       provider,
		ProviderUserID: providerUserID,
		CreatedAt:      now,
	}

	if err := s.userRepo.CreateWithIdentity(ctx, newUser, newIdentity); err != nil {
		return nil, fmt.Errorf("failed to create user and identity: %w", err)
	}

	slog.Info("new user created",
		slog.String("user_id", newUser.ID),
		slog.String("email", email),
		slog.String("provider", provider),
	)

	return newUser, nil
}

// createSession はセッションを作成し永続化する。
// 表示に必要なユーザー情報のスナップショットをセッションに含める。
func (s *Service) createSession(ctx context.Context, user *model.User) (*model.Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	sess := &model.Session{
		ID:        sessionID,
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		AvatarURL: user.AvatarURL,
		ExpiresAt: time.Now().Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: time.Now(),
	}

	if err := s.sessionRepo.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return sess, nil
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
