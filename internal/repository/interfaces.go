// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/aether/internal/model"
)

// 一意制約違反をサービス層へ伝えるためのエラー。
// 挿入時の制約違反はチェック→挿入の競合における正本のCONFLICT信号であり、
// 事前の存在チェックはあくまで高速パスに過ぎない。
var (
	// ErrDuplicateUsername はusernameの一意制約違反を表す。
	ErrDuplicateUsername = errors.New("username already taken")
	// ErrDuplicateUserID はuser_id（外部Identity ID）の一意制約違反を表す。
	ErrDuplicateUserID = errors.New("profile already exists for user")
)

// ProfileRepository はプロフィールデータの永続化インターフェース。
type ProfileRepository interface {
	// FindByUserID は外部Identity IDでプロフィールを取得する。見つからない場合はnilを返す。
	FindByUserID(ctx context.Context, userID string) (*model.Profile, error)

	// FindByUsername はusernameでプロフィールを検索する。見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.Profile, error)

	// Create はプロフィールを作成する。
	// user_idまたはusernameの一意制約に違反した場合、
	// それぞれErrDuplicateUserID / ErrDuplicateUsernameを返す。
	Create(ctx context.Context, profile *model.Profile) error
}

// TransactionRepository は家計取引データの永続化インターフェース。
type TransactionRepository interface {
	// Create は取引を作成する。
	Create(ctx context.Context, tx *model.Transaction) error

	// ListByUserID はユーザーの全取引をdate降順（新しい順）で返す。
	// 取引が存在しない場合は空スライスを返す。
	ListByUserID(ctx context.Context, userID string) ([]*model.Transaction, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteExpired は期限切れセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}
