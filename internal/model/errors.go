// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, conflict, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeMissingField       = "MISSING_FIELD"
	ErrCodeInvalidAmount      = "INVALID_AMOUNT"
	ErrCodeMissingDescription = "MISSING_DESCRIPTION"
	ErrCodeUsernameTaken      = "USERNAME_TAKEN"
	ErrCodeProfileExists      = "PROFILE_EXISTS"
	ErrCodeProfileNotFound    = "PROFILE_NOT_FOUND"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// NewInternalError は内部サーバーエラーを生成する。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternalError,
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewMissingFieldError は必須フィールド欠落エラーを生成する。
func NewMissingFieldError(field string) *APIError {
	return &APIError{
		Code:     ErrCodeMissingField,
		Message:  fmt.Sprintf("必須項目が指定されていません: %s", field),
		Category: "validation",
		Action:   "必須項目をすべて入力してください。",
	}
}

// NewInvalidAmountError は金額が数値として解釈できない場合のエラーを生成する。
func NewInvalidAmountError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidAmount,
		Message:  "金額は有効な数値で指定してください。",
		Category: "validation",
		Action:   "金額欄に数値を入力してください。",
	}
}

// NewMissingDescriptionError は摘要が空の場合のエラーを生成する。
func NewMissingDescriptionError() *APIError {
	return &APIError{
		Code:     ErrCodeMissingDescription,
		Message:  "摘要を入力してください。",
		Category: "validation",
		Action:   "取引の内容を表す摘要を入力してください。",
	}
}

// NewUsernameTakenError はユーザー名が既に使用されている場合のエラーを生成する。
func NewUsernameTakenError(username string) *APIError {
	return &APIError{
		Code:     ErrCodeUsernameTaken,
		Message:  fmt.Sprintf("このユーザー名は既に使用されています: %s", username),
		Category: "conflict",
		Action:   "別のユーザー名を指定してください。",
	}
}

// NewProfileExistsError は同一Identityに対するプロフィールが既に存在する場合のエラーを生成する。
func NewProfileExistsError() *APIError {
	return &APIError{
		Code:     ErrCodeProfileExists,
		Message:  "このユーザーのプロフィールは既に作成されています。",
		Category: "conflict",
		Action:   "サインインしてご利用ください。",
	}
}

// NewProfileNotFoundError はプロフィールが見つからない場合のエラーを生成する。
func NewProfileNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeProfileNotFound,
		Message:  "プロフィールが見つかりません。",
		Category: "auth",
		Action:   "サインインし直すか、アカウント登録をやり直してください。",
	}
}

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}
