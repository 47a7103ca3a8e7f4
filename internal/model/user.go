// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// 認証情報（メールアドレス＋パスワードハッシュ）とプロフィール（表示名）を
// 1レコードで保持する。アカウント作成とプロフィール書き込みは同一INSERTで
// 行われるため、部分失敗は発生しない。
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session はユーザーのログインセッションを表す。
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
