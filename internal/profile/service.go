// Package profile はIdentityとProfileの1対1対応を保証するプロビジョニングロジックを提供する。
package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/aether/internal/model"
	"github.com/hitoshi/aether/internal/repository"
)

// MetricsRecorder はプロビジョニングのメトリクス記録インターフェース。
type MetricsRecorder interface {
	// RecordProfileProvisioned はプロフィール作成を経路別（signup/oauth）に記録する。
	RecordProfileProvisioned(source string)
	// RecordProvisioningConflict は一意制約衝突によるプロビジョニング失敗を記録する。
	RecordProvisioningConflict()
}

// Service はプロフィールのプロビジョニングと参照を提供する。
// 明示的サインアップ経路とOAuthコールバック経路の2つの入口を持ち、
// どちらの経路でも重複プロフィールを生まないことを保証する。
type Service struct {
	profileRepo repository.ProfileRepository
	metrics     MetricsRecorder
}

// NewService はServiceを生成する。metricsはnilでもよい。
func NewService(profileRepo repository.ProfileRepository, metrics MetricsRecorder) *Service {
	return &Service{
		profileRepo: profileRepo,
		metrics:     metrics,
	}
}

// CreateProfile は明示的サインアップ時のプロフィール作成を行う。
// 事前チェック（username → user_idの順）はユーザー向けエラーメッセージのための
// 高速パスであり、同時リクエストの競合時は挿入時の一意制約違反が正本となる。
// どちらの場合も同じCONFLICTエラーに変換する。
func (s *Service) CreateProfile(ctx context.Context, userID, username, email string) (*model.Profile, error) {
	if userID == "" {
		return nil, model.NewMissingFieldError("userId")
	}
	if username == "" {
		return nil, model.NewMissingFieldError("username")
	}
	if email == "" {
		// emailは現状ルックアップには使用しないが、入力契約として必須のまま維持する。
		return nil, model.NewMissingFieldError("email")
	}

	// 高速パス: 使用済みusernameチェック
	existing, err := s.profileRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if existing != nil {
		return nil, model.NewUsernameTakenError(username)
	}

	// 高速パス: 同一Identityの既存プロフィールチェック
	existing, err = s.profileRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing profile: %w", err)
	}
	if existing != nil {
		return nil, model.NewProfileExistsError()
	}

	profile, err := s.insertProfile(ctx, userID, username)
	if err != nil {
		return nil, err
	}

	slog.Info("profile created",
		slog.String("user_id", userID),
		slog.String("username", username),
	)
	if s.metrics != nil {
		s.metrics.RecordProfileProvisioned("signup")
	}

	return profile, nil
}

// EnsureProfile はOAuthコールバック後のプロフィール補完を行う。
// 既にプロフィールが存在する場合は何もしない（冪等）。
// 存在しない場合はIdentityのメタデータから決定的にusernameを導出して作成する。
// usernameの衝突は事前チェックせず、挿入失敗をそのまま返す。
// 呼び出し側はこのエラーをログに記録して握りつぶすこと
// （認証リダイレクトを失敗させてはならない）。
func (s *Service) EnsureProfile(ctx context.Context, identity *model.Identity) (*model.Profile, error) {
	existing, err := s.profileRepo.FindByUserID(ctx, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up profile: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	username := DeriveUsername(identity)

	profile, err := s.insertProfile(ctx, identity.UserID, username)
	if err != nil {
		return nil, err
	}

	slog.Info("profile backfilled from oauth identity",
		slog.String("user_id", identity.UserID),
		slog.String("username", username),
		slog.String("provider", identity.Provider),
	)
	if s.metrics != nil {
		s.metrics.RecordProfileProvisioned("oauth")
	}

	return profile, nil
}

// GetProfile は外部Identity IDでプロフィールを取得する。
// 存在しない場合はPROFILE_NOT_FOUNDを返す（ダッシュボードはフェイルクローズド）。
func (s *Service) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	profile, err := s.profileRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}
	if profile == nil {
		return nil, model.NewProfileNotFoundError()
	}
	return profile, nil
}

// insertProfile はプロフィール行を挿入し、一意制約違反をCONFLICTエラーに変換する。
func (s *Service) insertProfile(ctx context.Context, userID, username string) (*model.Profile, error) {
	now := time.Now()
	profile := &model.Profile{
		ID:        uuid.New().String(),
		UserID:    userID,
		Username:  username,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.profileRepo.Create(ctx, profile); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateUsername):
			if s.metrics != nil {
				s.metrics.RecordProvisioningConflict()
			}
			return nil, model.NewUsernameTakenError(username)
		case errors.Is(err, repository.ErrDuplicateUserID):
			if s.metrics != nil {
				s.metrics.RecordProvisioningConflict()
			}
			return nil, model.NewProfileExistsError()
		default:
			return nil, fmt.Errorf("failed to create profile: %w", err)
		}
	}

	return profile, nil
}

// DeriveUsername はIdentityのメタデータから候補usernameを決定的に導出する。
// 優先順位: フルネーム → 表示名 → メールアドレスのローカル部 → Identity ID。
// 小文字化し、連続する空白をアンダースコアに置換して正規化する。
func DeriveUsername(identity *model.Identity) string {
	emailLocal := ""
	if at := strings.Index(identity.Email, "@"); at > 0 {
		emailLocal = identity.Email[:at]
	}

	// 空白のみの候補は正規化で空文字になるため、次の候補に進む。
	for _, candidate := range []string{identity.FullName, identity.Name, emailLocal} {
		if normalized := normalizeUsername(candidate); normalized != "" {
			return normalized
		}
	}

	return normalizeUsername(identity.UserID)
}

// normalizeUsername は小文字化と空白連続のアンダースコア置換を行う。
func normalizeUsername(s string) string {
	fields := strings.Fields(strings.ToLower(s))
	return strings.Join(fields, "_")
}
