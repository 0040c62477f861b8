package server

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/document-generator/internal/config"
	"github.com/jonathan/document-generator/internal/db"
)

// fakeUserStore is an in-memory UserStore for unit tests.
type fakeUserStore struct {
	users map[uuid.UUID]*db.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uuid.UUID]*db.User)}
}

func (f *fakeUserStore) CreateUser(_ context.Context, name, email string) (uuid.UUID, error) {
	id := uuid.New()
	now := time.Now()
	f.users[id] = &db.User{ID: id, Name: name, Email: email, CreatedAt: now, UpdatedAt: now}
	return id, nil
}

func (f *fakeUserStore) GetUser(_ context.Context, userID uuid.UUID) (*db.User, error) {
	return f.users[userID], nil
}

func (f *fakeUserStore) GetUserByEmail(_ context.Context, email string) (*db.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) CheckEmailExists(_ context.Context, email string) (bool, error) {
	u, _ := f.GetUserByEmail(context.Background(), email)
	return u != nil, nil
}

func (f *fakeUserStore) UpdatePassword(_ context.Context, userID uuid.UUID, passwordHash string) error {
	u, ok := f.users[userID]
	if !ok {
		return &ErrUserNotFound{UserID: userID}
	}
	u.PasswordHash = passwordHash
	u.PasswordSet = true
	return nil
}

func testPasswordConfig() *config.PasswordConfig {
	return &config.PasswordConfig{
		BcryptCost: 10, // Lower cost for faster tests
		Pepper:     "",
	}
}

func TestUserService_RegisterAndLogin(t *testing.T) {
	store := newFakeUserStore()
	svc := NewUserService(store, testPasswordConfig())
	ctx := context.Background()

	user, err := svc.Register(ctx, &CreateUserRequest{
		Name:     "Test User",
		Email:    "test@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.True(t, user.PasswordSet)

	loggedIn, err := svc.Login(ctx, &LoginRequest{Email: "test@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
}

func TestUserService_Register_DuplicateEmail(t *testing.T) {
	store := newFakeUserStore()
	svc := NewUserService(store, testPasswordConfig())
	ctx := context.Background()

	_, err := svc.Register(ctx, &CreateUserRequest{Name: "A", Email: "dup@example.com", Password: "password123"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, &CreateUserRequest{Name: "B", Email: "dup@example.com", Password: "password456"})
	require.Error(t, err)
	_, ok := err.(*ErrEmailAlreadyExists)
	assert.True(t, ok, "expected ErrEmailAlreadyExists, got %T", err)
}

func TestUserService_Login_WrongPassword(t *testing.T) {
	store := newFakeUserStore()
	svc := NewUserService(store, testPasswordConfig())
	ctx := context.Background()

	_, err := svc.Register(ctx, &CreateUserRequest{Name: "A", Email: "a@example.com", Password: "password123"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, &LoginRequest{Email: "a@example.com", Password: "wrong-password"})
	require.Error(t, err)
	_, ok := err.(*ErrInvalidCredentials)
	assert.True(t, ok, "expected ErrInvalidCredentials, got %T", err)
}

func TestUserService_Login_UnknownEmail(t *testing.T) {
	store := newFakeUserStore()
	svc := NewUserService(store, testPasswordConfig())

	_, err := svc.Login(context.Background(), &LoginRequest{Email: "nobody@example.com", Password: "whatever"})
	require.Error(t, err)
	_, ok := err.(*ErrInvalidCredentials)
	assert.True(t, ok, "expected ErrInvalidCredentials, got %T", err)
}

func TestUserService_UpdatePassword(t *testing.T) {
	store := newFakeUserStore()
	svc := NewUserService(store, testPasswordConfig())
	ctx := context.Background()

	user, err := svc.Register(ctx, &CreateUserRequest{Name: "A", Email: "a@example.com", Password: "password123"})
	require.NoError(t, err)

	// Wrong current password is rejected
	err = svc.UpdatePassword(ctx, user.ID, "not-the-password", "newpassword1")
	require.Error(t, err)
	_, ok := err.(*ErrPasswordMismatch)
	assert.True(t, ok, "expected ErrPasswordMismatch, got %T", err)

	// Correct current password succeeds
	err = svc.UpdatePassword(ctx, user.ID, "password123", "newpassword1")
	require.NoError(t, err)

	_, err = svc.Login(ctx, &LoginRequest{Email: "a@example.com", Password: "newpassword1"})
	assert.NoError(t, err)
}

func TestUserService_UpdatePassword_UnknownUser(t *testing.T) {
	store := newFakeUserStore()
	svc := NewUserService(store, testPasswordConfig())

	err := svc.UpdatePassword(context.Background(), uuid.New(), "x", "newpassword1")
	require.Error(t, err)
	_, ok := err.(*ErrUserNotFound)
	assert.True(t, ok, "expected ErrUserNotFound, got %T", err)
}
