// Package model はドメインモデルを定義する。
package model

import "time"

// Profile はアプリケーション側のユーザーレコードを表す。
// 外部IdPのIdentityと1対1で対応する。
type Profile struct {
	ID        string
	UserID    string // IdPが発行する安定した外部識別子。作成後は不変。
	Username  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Identity は外部IdPで認証済みのプリンシパルを表す。
// このシステムはIdentityを作成せず、読み取り専用の入力として扱う。
type Identity struct {
	UserID   string // IdP側の安定ID
	Email    string
	Name     string
	FullName string
	Provider string
}

// Session はユーザーのログインセッションを表す。
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
