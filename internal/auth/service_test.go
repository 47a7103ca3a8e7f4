package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/taskpad/internal/model"
	"github.com/hitoshi/taskpad/internal/repository"
)

// --- モック定義 ---

type mockUserRepo struct {
	createFn      func(ctx context.Context, user *model.User) error
	findByIDFn    func(ctx context.Context, id string) (*model.User, error)
	findByEmailFn func(ctx context.Context, email string) (*model.User, error)
	deleteByIDFn  func(ctx context.Context, id string) error
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.findByEmailFn != nil {
		return m.findByEmailFn(ctx, email)
	}
	return nil, nil
}

func (m *mockUserRepo) DeleteByID(ctx context.Context, id string) error {
	if m.deleteByIDFn != nil {
		return m.deleteByIDFn(ctx, id)
	}
	return nil
}

type mockSessionRepo struct {
	createFn         func(ctx context.Context, session *model.Session) error
	findByIDFn       func(ctx context.Context, id string) (*model.Session, error)
	deleteByIDFn     func(ctx context.Context, id string) error
	deleteByUserIDFn func(ctx context.Context, userID string) error
	deleteExpiredFn  func(ctx context.Context, now time.Time) (int64, error)
}

func (m *mockSessionRepo) Create(ctx context.Context, session *model.Session) error {
	if m.createFn != nil {
		return m.createFn(ctx, session)
	}
	return nil
}

func (m *mockSessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockSessionRepo) DeleteByID(ctx context.Context, id string) error {
	if m.deleteByIDFn != nil {
		return m.deleteByIDFn(ctx, id)
	}
	return nil
}

func (m *mockSessionRepo) DeleteByUserID(ctx context.Context, userID string) error {
	if m.deleteByUserIDFn != nil {
		return m.deleteByUserIDFn(ctx, userID)
	}
	return nil
}

func (m *mockSessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	if m.deleteExpiredFn != nil {
		return m.deleteExpiredFn(ctx, now)
	}
	return 0, nil
}

// --- compile-time interface checks ---
var _ repository.UserRepository = (*mockUserRepo)(nil)
var _ repository.SessionRepository = (*mockSessionRepo)(nil)

// testConfig はテスト用の認証サービス設定。bcryptは最小コストで実行する。
func testConfig() ServiceConfig {
	return ServiceConfig{SessionMaxAge: 86400, BcryptCost: bcrypt.MinCost}
}

// --- テスト ---

func TestRegister_NewUser_CreatesUserAndSession(t *testing.T) {
	ctx := context.Background()

	var createdUser *model.User
	var createdSession *model.Session

	userRepo := &mockUserRepo{
		createFn: func(ctx context.Context, user *model.User) error {
			createdUser = user
			return nil
		},
	}
	sessionRepo := &mockSessionRepo{
		createFn: func(ctx context.Context, session *model.Session) error {
			createdSession = session
			return nil
		},
	}

	svc := NewService(userRepo, sessionRepo, testConfig())

	session, err := svc.Register(ctx, "a@x.com", "pw123456", "Alice")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if createdUser == nil {
		t.Fatal("expected user to be created")
	}
	if createdUser.Email != "a@x.com" {
		t.Errorf("user.Email = %q, want %q", createdUser.Email, "a@x.com")
	}
	if createdUser.Name != "Alice" {
		t.Errorf("user.Name = %q, want %q", createdUser.Name, "Alice")
	}
	if createdUser.ID == "" {
		t.Error("expected non-empty user ID")
	}

	if createdSession == nil {
		t.Fatal("expected session to be created")
	}
	if createdSession.UserID != createdUser.ID {
		t.Errorf("session.UserID = %q, want %q", createdSession.UserID, createdUser.ID)
	}
	if session.ID != createdSession.ID {
		t.Errorf("returned session ID = %q, want %q", session.ID, createdSession.ID)
	}
}

func TestRegister_HashesPassword(t *testing.T) {
	ctx := context.Background()

	var createdUser *model.User
	userRepo := &mockUserRepo{
		createFn: func(ctx context.Context, user *model.User) error {
			createdUser = user
			return nil
		},
	}

	svc := NewService(userRepo, &mockSessionRepo{}, testConfig())

	if _, err := svc.Register(ctx, "a@x.com", "pw123456", "Alice"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if createdUser.PasswordHash == "pw123456" {
		t.Error("password must not be stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(createdUser.PasswordHash), []byte("pw123456")); err != nil {
		t.Errorf("stored hash does not verify original password: %v", err)
	}
}

func TestRegister_DuplicateEmail_ReturnsError(t *testing.T) {
	ctx := context.Background()

	userRepo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: "existing", Email: email}, nil
		},
		createFn: func(ctx context.Context, user *model.User) error {
			t.Error("Create should not be called for duplicate email")
			return nil
		},
	}

	svc := NewService(userRepo, &mockSessionRepo{}, testConfig())

	_, err := svc.Register(ctx, "a@x.com", "pw123456", "Alice")
	if err == nil {
		t.Fatal("expected error for duplicate email")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *model.APIError, got %T", err)
	}
	if apiErr.Code != model.ErrCodeDuplicateEmail {
		t.Errorf("error code = %q, want %q", apiErr.Code, model.ErrCodeDuplicateEmail)
	}
}

func TestRegister_WeakPassword_ReturnsError(t *testing.T) {
	ctx := context.Background()

	userRepo := &mockUserRepo{
		createFn: func(ctx context.Context, user *model.User) error {
			t.Error("Create should not be called for weak password")
			return nil
		},
	}

	svc := NewService(userRepo, &mockSessionRepo{}, testConfig())

	_, err := svc.Register(ctx, "a@x.com", "short", "Alice")
	if err == nil {
		t.Fatal("expected error for weak password")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *model.APIError, got %T", err)
	}
	if apiErr.Code != model.ErrCodeWeakPassword {
		t.Errorf("error code = %q, want %q", apiErr.Code, model.ErrCodeWeakPassword)
	}
}

func TestRegister_BlankName_ReturnsError(t *testing.T) {
	ctx := context.Background()
	svc := NewService(&mockUserRepo{}, &mockSessionRepo{}, testConfig())

	for _, name := range []string{"", "   "} {
		_, err := svc.Register(ctx, "a@x.com", "pw123456", name)
		if err == nil {
			t.Fatalf("expected error for blank name %q", name)
		}

		var apiErr *model.APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected *model.APIError, got %T", err)
		}
		if apiErr.Code != model.ErrCodeEmptyName {
			t.Errorf("error code = %q, want %q", apiErr.Code, model.ErrCodeEmptyName)
		}
	}
}

func TestRegister_InvalidEmail_ReturnsError(t *testing.T) {
	ctx := context.Background()
	svc := NewService(&mockUserRepo{}, &mockSessionRepo{}, testConfig())

	_, err := svc.Register(ctx, "not-an-email", "pw123456", "Alice")
	if err == nil {
		t.Fatal("expected error for invalid email")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *model.APIError, got %T", err)
	}
	if apiErr.Code != model.ErrCodeInvalidEmail {
		t.Errorf("error code = %q, want %q", apiErr.Code, model.ErrCodeInvalidEmail)
	}
}

// 登録直後にGetCurrentUserで表示名が取得できることを検証（register → getDisplayName）
func TestRegister_ThenGetCurrentUser_ReturnsName(t *testing.T) {
	ctx := context.Background()

	users := map[string]*model.User{}
	sessions := map[string]*model.Session{}

	userRepo := &mockUserRepo{
		createFn: func(ctx context.Context, user *model.User) error {
			users[user.ID] = user
			return nil
		},
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return users[id], nil
		},
	}
	sessionRepo := &mockSessionRepo{
		createFn: func(ctx context.Context, session *model.Session) error {
			sessions[session.ID] = session
			return nil
		},
		findByIDFn: func(ctx context.Context, id string) (*model.Session, error) {
			return sessions[id], nil
		},
	}

	svc := NewService(userRepo, sessionRepo, testConfig())

	session, err := svc.Register(ctx, "a@x.com", "pw123456", "Alice")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	user, err := svc.GetCurrentUser(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetCurrentUser() error = %v", err)
	}
	if user.Name != "Alice" {
		t.Errorf("user.Name = %q, want %q", user.Name, "Alice")
	}
}

func TestLogin_ValidCredentials_CreatesSession(t *testing.T) {
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("pw123456"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash test password: %v", err)
	}

	userRepo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: "user-1", Email: email, Name: "Alice", PasswordHash: string(hash)}, nil
		},
	}

	var createdSession *model.Session
	sessionRepo := &mockSessionRepo{
		createFn: func(ctx context.Context, session *model.Session) error {
			createdSession = session
			return nil
		},
	}

	svc := NewService(userRepo, sessionRepo, testConfig())

	session, err := svc.Login(ctx, "a@x.com", "pw123456")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if createdSession == nil {
		t.Fatal("expected session to be created")
	}
	if session.UserID != "user-1" {
		t.Errorf("session.UserID = %q, want %q", session.UserID, "user-1")
	}
	if session.ExpiresAt.Before(time.Now()) {
		t.Error("session should not be expired at creation")
	}
}

func TestLogin_WrongPassword_ReturnsInvalidCredentials(t *testing.T) {
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash test password: %v", err)
	}

	userRepo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: "user-1", Email: email, PasswordHash: string(hash)}, nil
		},
	}
	sessionRepo := &mockSessionRepo{
		createFn: func(ctx context.Context, session *model.Session) error {
			t.Error("session should not be created for wrong password")
			return nil
		},
	}

	svc := NewService(userRepo, sessionRepo, testConfig())

	_, err = svc.Login(ctx, "a@x.com", "wrong-password")
	if err == nil {
		t.Fatal("expected error for wrong password")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *model.APIError, got %T", err)
	}
	if apiErr.Code != model.ErrCodeInvalidCredentials {
		t.Errorf("error code = %q, want %q", apiErr.Code, model.ErrCodeInvalidCredentials)
	}
}

// 未登録メールとパスワード不一致が同じエラーコードになることを検証
func TestLogin_UnknownEmail_SameErrorAsWrongPassword(t *testing.T) {
	ctx := context.Background()

	userRepo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return nil, nil
		},
	}

	svc := NewService(userRepo, &mockSessionRepo{}, testConfig())

	_, err := svc.Login(ctx, "nobody@x.com", "pw123456")
	if err == nil {
		t.Fatal("expected error for unknown email")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *model.APIError, got %T", err)
	}
	if apiErr.Code != model.ErrCodeInvalidCredentials {
		t.Errorf("error code = %q, want %q", apiErr.Code, model.ErrCodeInvalidCredentials)
	}
}

func TestLogout_DeletesSession(t *testing.T) {
	ctx := context.Background()

	var deletedID string
	sessionRepo := &mockSessionRepo{
		deleteByIDFn: func(ctx context.Context, id string) error {
			deletedID = id
			return nil
		},
	}

	svc := NewService(&mockUserRepo{}, sessionRepo, testConfig())

	if err := svc.Logout(ctx, "session-123"); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if deletedID != "session-123" {
		t.Errorf("deleted session ID = %q, want %q", deletedID, "session-123")
	}
}

func TestLogout_EmptySessionID_ReturnsError(t *testing.T) {
	svc := NewService(&mockUserRepo{}, &mockSessionRepo{}, testConfig())

	if err := svc.Logout(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty session ID")
	}
}

func TestGetCurrentUser_ExpiredSession_ReturnsError(t *testing.T) {
	ctx := context.Background()

	sessionRepo := &mockSessionRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Session, error) {
			// 期限切れセッションはリポジトリがnilを返す
			return nil, nil
		},
	}

	svc := NewService(&mockUserRepo{}, sessionRepo, testConfig())

	if _, err := svc.GetCurrentUser(ctx, "expired-session"); err == nil {
		t.Fatal("expected error for expired session")
	}
}

func TestGetCurrentUser_RepoError_Propagates(t *testing.T) {
	ctx := context.Background()

	sessionRepo := &mockSessionRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Session, error) {
			return nil, errors.New("db down")
		},
	}

	svc := NewService(&mockUserRepo{}, sessionRepo, testConfig())

	if _, err := svc.GetCurrentUser(ctx, "session-1"); err == nil {
		t.Fatal("expected error when session repo fails")
	}
}
