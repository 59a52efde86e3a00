// Package model はドメインモデルを定義する。
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction は1件の家計取引（台帳エントリ）を表す。
// 金額は正負どちらも許容する（収入はプラス、支出はマイナス）。
type Transaction struct {
	ID          string
	UserID      string
	Amount      decimal.Decimal
	Description string
	Category    *string // 未指定の場合はnil（DB上はNULL）
	Date        time.Time
	CreatedAt   time.Time
}
