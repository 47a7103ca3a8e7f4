// Package model はドメインモデルを定義する。
package model

import "time"

// Todo はユーザーのタスクを表す。
// UserIDは作成時に認証済みユーザーのIDが刻印され、以降変更されない。
// Titleは作成後に編集されず、Completedのみトグルされる。
type Todo struct {
	ID        string
	UserID    string
	Title     string
	Completed bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
