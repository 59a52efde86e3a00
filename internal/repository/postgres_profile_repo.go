package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/aether/internal/model"
)

// pqUniqueViolation はPostgreSQLの一意制約違反のSQLSTATEコード。
const pqUniqueViolation = "23505"

// マイグレーションで定義している制約名。
const (
	constraintProfileUserID   = "profiles_user_id_key"
	constraintProfileUsername = "profiles_username_key"
)

// PostgresProfileRepo はPostgreSQLを使用したプロフィールリポジトリ。
type PostgresProfileRepo struct {
	db *sql.DB
}

// NewPostgresProfileRepo はPostgresProfileRepoを生成する。
func NewPostgresProfileRepo(db *sql.DB) *PostgresProfileRepo {
	return &PostgresProfileRepo{db: db}
}

// FindByUserID は外部Identity IDでプロフィールを取得する。見つからない場合はnilを返す。
func (r *PostgresProfileRepo) FindByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	profile := &model.Profile{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, username, created_at, updated_at FROM profiles WHERE user_id = $1`,
		userID,
	).Scan(&profile.ID, &profile.UserID, &profile.Username, &profile.CreatedAt, &profile.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find profile by user ID: %w", err)
	}

	return profile, nil
}

// FindByUsername はusernameでプロフィールを検索する。見つからない場合はnilを返す。
func (r *PostgresProfileRepo) FindByUsername(ctx context.Context, username string) (*model.Profile, error) {
	profile := &model.Profile{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, username, created_at, updated_at FROM profiles WHERE username = $1`,
		username,
	).Scan(&profile.ID, &profile.UserID, &profile.Username, &profile.CreatedAt, &profile.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find profile by username: %w", err)
	}

	return profile, nil
}

// Create はプロフィールを作成する。
// 一意制約違反はErrDuplicateUserID / ErrDuplicateUsernameに変換して返す。
// 事前チェックと挿入は非アトミックであり、この変換が競合時の正本となる。
func (r *PostgresProfileRepo) Create(ctx context.Context, profile *model.Profile) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO profiles (id, user_id, username, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		profile.ID, profile.UserID, profile.Username, profile.CreatedAt, profile.UpdatedAt,
	)
	if err != nil {
		if dupErr := translateUniqueViolation(err); dupErr != nil {
			return dupErr
		}
		return fmt.Errorf("failed to insert profile: %w", err)
	}

	return nil
}

// translateUniqueViolation は一意制約違反を対応するリポジトリエラーに変換する。
// 一意制約違反でない場合はnilを返す。
func translateUniqueViolation(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || string(pqErr.Code) != pqUniqueViolation {
		return nil
	}

	switch pqErr.Constraint {
	case constraintProfileUserID:
		return ErrDuplicateUserID
	case constraintProfileUsername:
		return ErrDuplicateUsername
	default:
		// 未知の一意制約。usernameの方が実運用上ぶつかりやすいため既定はこちら。
		return ErrDuplicateUsername
	}
}

// compile-time interface check
var _ ProfileRepository = (*PostgresProfileRepo)(nil)
