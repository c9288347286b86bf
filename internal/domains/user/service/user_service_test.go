package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medinfo-backend/internal/domains/user"
	"medinfo-backend/pkg/session"
)

type fakeRepo struct {
	users map[uuid.UUID]*user.User
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: make(map[uuid.UUID]*user.User)}
}

func (r *fakeRepo) Create(_ context.Context, u *user.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.IsActive = true
	r.users[u.ID] = u
	return nil
}

func (r *fakeRepo) FindByEmail(_ context.Context, email string) (*user.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (r *fakeRepo) FindByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, user.ErrUserNotFound
}

func (r *fakeRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	return err == nil, nil
}

func newTestService() (user.Service, *fakeRepo, *session.Manager) {
	repo := newFakeRepo()
	sessions := session.NewManager("test-secret")
	return NewUserService(repo, sessions), repo, sessions
}

func registerReq() user.RegisterRequest {
	return user.RegisterRequest{
		Email:    "Admin@Example.com",
		Password: "correct horse battery",
		FullName: "Site Admin",
	}
}

func TestRegisterNormalizesEmailAndDefaultsRole(t *testing.T) {
	svc, repo, _ := newTestService()

	dto, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)

	assert.Equal(t, "admin@example.com", dto.Email)
	assert.Equal(t, user.RoleUser, dto.Role)

	stored := repo.users[dto.ID]
	require.NotNil(t, stored)
	assert.NotEqual(t, "correct horse battery", stored.PasswordHash)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), registerReq())
	assert.ErrorIs(t, err, user.ErrEmailAlreadyExists)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc, _, _ := newTestService()

	req := registerReq()
	req.Password = "short"

	_, err := svc.Register(context.Background(), req)
	assert.Error(t, err)
}

func TestLoginIssuesVerifiableSession(t *testing.T) {
	svc, _, sessions := newTestService()

	dto, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)

	res, err := svc.Login(context.Background(), user.LoginRequest{
		Email:    "admin@example.com",
		Password: "correct horse battery",
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	assert.Equal(t, dto.ID, res.User.ID)

	userID, err := sessions.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, dto.ID.String(), userID)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), user.LoginRequest{
		Email:    "admin@example.com",
		Password: "wrong password",
	})
	assert.ErrorIs(t, err, user.ErrInvalidCredentials)
}

func TestLoginHidesUnknownAccounts(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Login(context.Background(), user.LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever password",
	})

	// Unknown email and wrong password are indistinguishable.
	assert.ErrorIs(t, err, user.ErrInvalidCredentials)
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	svc, repo, _ := newTestService()

	dto, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)
	repo.users[dto.ID].IsActive = false

	_, err = svc.Login(context.Background(), user.LoginRequest{
		Email:    "admin@example.com",
		Password: "correct horse battery",
	})
	assert.ErrorIs(t, err, user.ErrUserInactive)
}
