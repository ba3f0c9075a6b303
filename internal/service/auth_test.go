package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spicetable/pos-service/internal/models"
	"github.com/spicetable/pos-service/internal/service"
)

type fakeUserStore struct {
	users map[uuid.UUID]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uuid.UUID]*models.User)}
}

func (f *fakeUserStore) addUser(username, password string, role models.UserRole, active bool) *models.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: string(hash),
		Name:         username,
		Role:         role,
		IsActive:     active,
	}
	f.users[user.ID] = user
	return user
}

func (f *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, models.NewNotFoundError("user", id.String())
	}
	return user, nil
}

func (f *fakeUserStore) GetByUsername(_ context.Context, username string) (*models.User, error) {
	for _, user := range f.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, models.NewNotFoundError("user", username)
}

func (f *fakeUserStore) List(_ context.Context) ([]models.User, error) {
	var out []models.User
	for _, user := range f.users {
		out = append(out, *user)
	}
	return out, nil
}

func (f *fakeUserStore) Create(_ context.Context, user *models.User) error {
	user.ID = uuid.New()
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserStore) Update(_ context.Context, user *models.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserStore) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	user, ok := f.users[id]
	if !ok {
		return models.NewNotFoundError("user", id.String())
	}
	user.PasswordHash = passwordHash
	return nil
}

func newAuthFixture() (*fakeUserStore, *service.AuthService) {
	store := newFakeUserStore()
	svc := service.NewAuthService(store, service.JWTConfig{Secret: "test-secret", ExpiresIn: 1})
	return store, svc
}

func TestLoginAndValidateToken(t *testing.T) {
	store, svc := newAuthFixture()
	user := store.addUser("asha", "correct-horse", models.RoleServer, true)

	token, loggedIn, err := svc.Login(context.Background(), "asha", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.UserID)
	assert.Equal(t, string(models.RoleServer), claims.Role)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	store, svc := newAuthFixture()
	store.addUser("asha", "correct-horse", models.RoleServer, true)

	_, _, err := svc.Login(context.Background(), "asha", "wrong")
	require.Error(t, err)
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	store, svc := newAuthFixture()
	store.addUser("asha", "correct-horse", models.RoleServer, false)

	_, _, err := svc.Login(context.Background(), "asha", "correct-horse")
	require.Error(t, err)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	store, _ := newAuthFixture()
	store.addUser("asha", "correct-horse", models.RoleServer, true)
	svc := service.NewAuthService(store, service.JWTConfig{Secret: "secret-a", ExpiresIn: 1})
	other := service.NewAuthService(store, service.JWTConfig{Secret: "secret-b", ExpiresIn: 1})

	token, _, err := svc.Login(context.Background(), "asha", "correct-horse")
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	require.Error(t, err)
}

func TestChangePassword(t *testing.T) {
	store, svc := newAuthFixture()
	user := store.addUser("asha", "old-password", models.RoleServer, true)

	err := svc.ChangePassword(context.Background(), user.ID, "wrong", "new-password")
	require.Error(t, err)

	require.NoError(t, svc.ChangePassword(context.Background(), user.ID, "old-password", "new-password"))

	_, _, err = svc.Login(context.Background(), "asha", "new-password")
	require.NoError(t, err)
}
