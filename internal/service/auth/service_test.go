package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/salonhq/admin-api/internal/model"
	"github.com/salonhq/admin-api/pkg/auth"
	"github.com/salonhq/admin-api/pkg/security"
)

type fakeUserRepo struct {
	byEmail   map[string]*model.User
	lastLogin map[uuid.UUID]time.Time
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byEmail:   make(map[string]*model.User),
		lastLogin: make(map[uuid.UUID]time.Time),
	}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	if _, ok := r.byEmail[user.Email]; ok {
		return fmt.Errorf("email already taken")
	}
	r.byEmail[user.Email] = user
	return nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	user, ok := r.byEmail[email]
	if !ok {
		return nil, fmt.Errorf("user not found")
	}
	return user, nil
}

func (r *fakeUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	r.lastLogin[id] = at
	return nil
}

func newTestService(repo *fakeUserRepo) *Service {
	jwtSvc := auth.NewJWTService("test-secret", "test-refresh", time.Hour, 24*time.Hour)
	return NewService(repo, jwtSvc, security.NewBcryptHasher(bcrypt.MinCost))
}

func TestRegisterThenLogin(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo)

	user, err := svc.Register(context.Background(), &model.RegisterRequest{
		Email:    "owner@salon.test",
		Name:     "Salon Owner",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "correct-horse", user.PasswordHash)

	tokens, err := svc.Login(context.Background(), "owner@salon.test", "correct-horse")
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.Contains(t, repo.lastLogin, user.ID)
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo)

	_, err := svc.Register(context.Background(), &model.RegisterRequest{
		Email:    "owner@salon.test",
		Name:     "Salon Owner",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "owner@salon.test", "battery-staple")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_InactiveUser(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo)

	user, err := svc.Register(context.Background(), &model.RegisterRequest{
		Email:    "former@salon.test",
		Name:     "Former Staff",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	user.IsActive = false

	_, err = svc.Login(context.Background(), "former@salon.test", "correct-horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc := newTestService(newFakeUserRepo())

	_, err := svc.Login(context.Background(), "nobody@salon.test", "whatever-works")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshIssuesNewTokens(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo)

	_, err := svc.Register(context.Background(), &model.RegisterRequest{
		Email:    "owner@salon.test",
		Name:     "Salon Owner",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	tokens, err := svc.Login(context.Background(), "owner@salon.test", "correct-horse")
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	// An access token is not a valid refresh token.
	_, err = svc.Refresh(context.Background(), tokens.AccessToken)
	assert.Error(t, err)
}
