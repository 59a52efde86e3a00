package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/hitoshi/aether/internal/middleware"
	"github.com/hitoshi/aether/internal/model"
	"github.com/hitoshi/aether/internal/transaction"
)

// TransactionServiceInterface は取引ハンドラーが必要とするサービスインターフェース。
type TransactionServiceInterface interface {
	// Create は取引を検証して台帳に追記する。
	Create(ctx context.Context, userID string, input transaction.CreateInput) (*model.Transaction, error)
	// List はユーザーの取引を日付の降順で返す。
	List(ctx context.Context, userID string) ([]*model.Transaction, error)
}

// TransactionHandler は取引台帳のHTTPハンドラー。
type TransactionHandler struct {
	service TransactionServiceInterface
}

// NewTransactionHandler はTransactionHandlerを生成する。
func NewTransactionHandler(service TransactionServiceInterface) *TransactionHandler {
	return &TransactionHandler{
		service: service,
	}
}

// createTransactionRequest は取引作成リクエストのボディ。
// amountは文字列・数値のどちらでも受け付けるためanyで受ける。
type createTransactionRequest struct {
	Amount      any    `json:"amount"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// transactionResponse は取引情報のAPIレスポンス。
type transactionResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Amount      string    `json:"amount"`
	Description string    `json:"description"`
	Category    *string   `json:"category"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toTransactionResponse(t *model.Transaction) transactionResponse {
	return transactionResponse{
		ID:          t.ID,
		UserID:      t.UserID,
		Amount:      t.Amount.String(),
		Description: t.Description,
		Category:    t.Category,
		Date:        t.Date,
		CreatedAt:   t.CreatedAt,
	}
}

// CreateTransaction は取引の追記を処理する。
// POST /api/transactions
func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	// 金額の桁落ちを避けるため、数値はjson.Numberのままデコードする
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()

	var req createTransactionRequest
	if err := decoder.Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST_BODY",
			Message:  "リクエストボディが不正です。",
			Category: "validation",
			Action:   "リクエスト形式を確認してください。",
		})
		return
	}

	created, err := h.service.Create(r.Context(), userID, transaction.CreateInput{
		Amount:      req.Amount,
		Description: req.Description,
		Category:    req.Category,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]transactionResponse{
		"transaction": toTransactionResponse(created),
	})
}

// ListTransactions は認証済みユーザーの取引一覧を返す。
// GET /api/transactions
func (h *TransactionHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	transactions, err := h.service.List(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	responses := make([]transactionResponse, len(transactions))
	for i, t := range transactions {
		responses[i] = toTransactionResponse(t)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string][]transactionResponse{
		"transactions": responses,
	})
}
