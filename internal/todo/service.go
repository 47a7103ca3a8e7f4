// Package todo はタスク管理のドメインロジックを提供する。
package todo

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/taskpad/internal/model"
	"github.com/hitoshi/taskpad/internal/repository"
)

// Service はタスク管理のサービス層。
// 一覧取得・追加・完了トグル・削除のビジネスロジックを提供する。
// すべての操作は呼び出し元ユーザーの所有タスクに限定される。
type Service struct {
	todoRepo repository.TodoRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(todoRepo repository.TodoRepository) *Service {
	return &Service{
		todoRepo: todoRepo,
	}
}

// List はユーザーのタスク一覧を返す。
// 所有者による絞り込みはリポジトリのクエリで行われるため、
// 他ユーザーのタスクがここに到達することはない。
func (s *Service) List(ctx context.Context, userID string) ([]*model.Todo, error) {
	todos, err := s.todoRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("タスク一覧の取得に失敗しました: %w", err)
	}
	return todos, nil
}

// Add は新しいタスクを未完了状態で作成する。
// タイトルは前後の空白を除去し、空の場合はレコードを作成せずエラーを返す。
func (s *Service) Add(ctx context.Context, userID, title string) (*model.Todo, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, model.NewEmptyTitleError()
	}

	now := time.Now()
	todo := &model.Todo{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     title,
		Completed: false,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.todoRepo.Create(ctx, todo); err != nil {
		return nil, fmt.Errorf("タスクの作成に失敗しました: %w", err)
	}

	slog.Info("todo created",
		slog.String("todo_id", todo.ID),
		slog.String("user_id", userID),
	)

	return todo, nil
}

// Toggle はタスクの完了フラグを反転する。
// 2回適用すると元の状態に戻る。
// 存在しないタスクと他ユーザー所有のタスクは同じ未検出エラーになる。
func (s *Service) Toggle(ctx context.Context, userID, todoID string) (*model.Todo, error) {
	todo, err := s.findOwned(ctx, userID, todoID)
	if err != nil {
		return nil, err
	}

	todo.Completed = !todo.Completed
	if err := s.todoRepo.UpdateCompleted(ctx, todo.ID, todo.Completed); err != nil {
		return nil, fmt.Errorf("タスクの更新に失敗しました: %w", err)
	}
	todo.UpdatedAt = time.Now()

	return todo, nil
}

// Delete はタスクを削除する。所有権の確認はToggleと同じ規則に従う。
func (s *Service) Delete(ctx context.Context, userID, todoID string) error {
	todo, err := s.findOwned(ctx, userID, todoID)
	if err != nil {
		return err
	}

	if err := s.todoRepo.DeleteByID(ctx, todo.ID); err != nil {
		return fmt.Errorf("タスクの削除に失敗しました: %w", err)
	}

	slog.Info("todo deleted",
		slog.String("todo_id", todo.ID),
		slog.String("user_id", userID),
	)

	return nil
}

// findOwned はタスクを取得し、呼び出し元ユーザーの所有であることを検証する。
// 所有者不一致は存在を秘匿するため未検出として扱う。
func (s *Service) findOwned(ctx context.Context, userID, todoID string) (*model.Todo, error) {
	todo, err := s.todoRepo.FindByID(ctx, todoID)
	if err != nil {
		return nil, fmt.Errorf("タスクの取得に失敗しました: %w", err)
	}
	if todo == nil || todo.UserID != userID {
		return nil, model.NewTodoNotFoundError(todoID)
	}
	return todo, nil
}
