package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/travelguru/rentgate/internal/model"
)

const (
	defaultSignUpURL        = "https://identitytoolkit.googleapis.com/v1/accounts:signUp"
	defaultSignInURL        = "https://identitytoolkit.googleapis.com/v1/accounts:signInWithPassword"
	defaultUpdateProfileURL = "https://identitytoolkit.googleapis.com/v1/accounts:update"
)

// IdentityToolkitConfig はIdentity Toolkit互換IdPの設定。
type IdentityToolkitConfig struct {
	APIKey string

	// テスト用にオーバーライド可能なURL
	SignUpURL        string
	SignInURL        string
	UpdateProfileURL string
}

// IdentityToolkitProvider はIdentity Toolkit互換のREST APIによる
// パスワード認証を提供する。
type IdentityToolkitProvider struct {
	config     IdentityToolkitConfig
	httpClient *http.Client
}

// NewIdentityToolkitProvider はIdentityToolkitProviderを生成する。
func NewIdentityToolkitProvider(config IdentityToolkitConfig, httpClient *http.Client) *IdentityToolkitProvider {
	if config.SignUpURL == "" {
		config.SignUpURL = defaultSignUpURL
	}
	if config.SignInURL == "" {
		config.SignInURL = defaultSignInURL
	}
	if config.UpdateProfileURL == "" {
		config.UpdateProfileURL = defaultUpdateProfileURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &IdentityToolkitProvider{config: config, httpClient: httpClient}
}

// passwordAuthRequest はsignUp/signInWithPasswordのリクエストボディ。
type passwordAuthRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

// passwordAuthResponse はsignUp/signInWithPasswordのレスポンス。
type passwordAuthResponse struct {
	LocalID     string `json:"localId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoUrl"`
	IDToken     string `json:"idToken"`
}

// updateProfileRequest はaccounts:updateのリクエストボディ。
type updateProfileRequest struct {
	IDToken           string `json:"idToken"`
	DisplayName       string `json:"displayName,omitempty"`
	PhotoURL          string `json:"photoUrl,omitempty"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

// errorResponse はIdPのエラーレスポンス。
// messageには"EMAIL_EXISTS"や"INVALID_PASSWORD"等の識別子が入る。
type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// SignUp は新規アカウントを作成する。
func (p *IdentityToolkitProvider) SignUp(ctx context.Context, email, password string) (*ProviderIdentity, error) {
	return p.passwordAuth(ctx, p.config.SignUpURL, email, password)
}

// SignInWithPassword はメールアドレスとパスワードで認証する。
func (p *IdentityToolkitProvider) SignInWithPassword(ctx context.Context, email, password string) (*ProviderIdentity, error) {
	return p.passwordAuth(ctx, p.config.SignInURL, email, password)
}

// passwordAuth はsignUp/signInWithPassword共通のリクエスト処理。
func (p *IdentityToolkitProvider) passwordAuth(ctx context.Context, endpoint, email, password string) (*ProviderIdentity, error) {
	body, err := json.Marshal(passwordAuthRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode auth request: %w", err)
	}

	respBody, err := p.post(ctx, endpoint, body)
	if err != nil {
		return nil, err
	}

	var authResp passwordAuthResponse
	if err := json.Unmarshal(respBody, &authResp); err != nil {
		return nil, fmt.Errorf("failed to parse auth response: %w", err)
	}
	if authResp.LocalID == "" {
		return nil, fmt.Errorf("empty localId in auth response")
	}

	return &ProviderIdentity{
		ProviderUserID: authResp.LocalID,
		Email:          authResp.Email,
		Name:           authResp.DisplayName,
		AvatarURL:      authResp.PhotoURL,
		IDToken:        authResp.IDToken,
	}, nil
}

// UpdateProfile はアカウントの表示名・アバターURLをIdPプロフィールに保存する。
func (p *IdentityToolkitProvider) UpdateProfile(ctx context.Context, idToken, name, avatarURL string) error {
	body, err := json.Marshal(updateProfileRequest{
		IDToken:     idToken,
		DisplayName: name,
		PhotoURL:    avatarURL,
	})
	if err != nil {
		return fmt.Errorf("failed to encode profile update request: %w", err)
	}

	if _, err := p.post(ctx, p.config.UpdateProfileURL, body); err != nil {
		return err
	}
	return nil
}

// post はAPIキー付きでIdPエンドポイントへPOSTし、レスポンスボディを返す。
// 非200レスポンスはIdPのメッセージを保持したAPIError（カテゴリauth）に変換する。
// 認証操作は自動リトライしない。
func (p *IdentityToolkitProvider) post(ctx context.Context, endpoint string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"?key="+p.config.APIKey, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, model.NewAuthError(fmt.Sprintf("IdPへの接続に失敗しました: %s", err.Error()))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp errorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error.Message != "" {
			return nil, model.NewAuthError(errResp.Error.Message)
		}
		return nil, model.NewAuthError(fmt.Sprintf("IdPがステータス %d を返しました", resp.StatusCode))
	}

	return respBody, nil
}

// compile-time interface check
var _ IdentityProvider = (*IdentityToolkitProvider)(nil)
