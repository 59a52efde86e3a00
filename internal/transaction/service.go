// Package transaction は取引台帳のビジネスロジックを提供する。
package transaction

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hitoshi/aether/internal/model"
	"github.com/hitoshi/aether/internal/repository"
)

// MetricsRecorder は取引サービスが記録するメトリクスのインターフェース
type MetricsRecorder interface {
	RecordTransactionCreated()
}

// CreateInput は取引作成の入力を表す。
// Amountはクライアントが文字列・数値のどちらで送ってもよいため
// デコード後の生の値のまま受け取り、サービス側で解釈する。
type CreateInput struct {
	Amount      any
	Description string
	Category    string
}

// Service は取引の作成・一覧取得を提供する。
type Service struct {
	transactionRepo repository.TransactionRepository
	metrics         MetricsRecorder
}

// NewService はServiceを生成する。metricsはnilでもよい。
func NewService(transactionRepo repository.TransactionRepository, metrics MetricsRecorder) *Service {
	return &Service{
		transactionRepo: transactionRepo,
		metrics:         metrics,
	}
}

// Create は取引を検証して台帳に追記する。
// 日付はクライアントから受け取らず、サーバー側の受理時刻を記録する。
func (s *Service) Create(ctx context.Context, userID string, input CreateInput) (*model.Transaction, error) {
	amount, err := parseAmount(input.Amount)
	if err != nil {
		return nil, model.NewInvalidAmountError()
	}

	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, model.NewMissingDescriptionError()
	}

	// 空白のみのカテゴリは未分類として扱う
	var category *string
	if trimmed := strings.TrimSpace(input.Category); trimmed != "" {
		category = &trimmed
	}

	now := time.Now()
	transaction := &model.Transaction{
		ID:          uuid.New().String(),
		UserID:      userID,
		Amount:      amount,
		Description: description,
		Category:    category,
		Date:        now,
		CreatedAt:   now,
	}

	if err := s.transactionRepo.Create(ctx, transaction); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordTransactionCreated()
	}

	return transaction, nil
}

// List はユーザーの取引を日付の降順で返す。
func (s *Service) List(ctx context.Context, userID string) ([]*model.Transaction, error) {
	transactions, err := s.transactionRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return transactions, nil
}

// parseAmount はクライアントが送った金額を10進数値として解釈する。
// 欠落・空文字列・NaN・無限大はすべてエラーとする。
func parseAmount(value any) (decimal.Decimal, error) {
	switch v := value.(type) {
	case json.Number:
		return decimal.NewFromString(v.String())
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return decimal.Decimal{}, fmt.Errorf("amount is empty")
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("amount is not numeric: %q", trimmed)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return decimal.Decimal{}, fmt.Errorf("amount is not finite: %q", trimmed)
		}
		// ParseFloatが通る表記はNewFromStringでも解釈できるが、
		// 念のため失敗時はfloat値から構築する。
		if d, err := decimal.NewFromString(trimmed); err == nil {
			return d, nil
		}
		return decimal.NewFromFloat(f), nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return decimal.Decimal{}, fmt.Errorf("amount is not finite: %v", v)
		}
		return decimal.NewFromFloat(v), nil
	case nil:
		return decimal.Decimal{}, fmt.Errorf("amount is missing")
	default:
		return decimal.Decimal{}, fmt.Errorf("amount has unsupported type %T", value)
	}
}
