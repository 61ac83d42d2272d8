package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authgate/internal/domain"
	"authgate/internal/password"
	"authgate/internal/repository"
	"authgate/internal/token"
)

// fakeUserRepo is an in-memory UserRepository that records lookups and
// writes so tests can assert which store operations ran.
type fakeUserRepo struct {
	users   map[string]*domain.User // keyed by email
	lookups int
	creates int
	failAll error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) Init(ctx context.Context) error { return nil }

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.creates++
	if r.failAll != nil {
		return r.failAll
	}
	if _, ok := r.users[user.Email]; ok {
		return repository.ErrEmailTaken
	}
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	r.users[user.Email] = &clone
	return nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.lookups++
	if r.failAll != nil {
		return nil, r.failAll
	}
	user, ok := r.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	for _, user := range r.users {
		if user.ID == id {
			clone := *user
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func newTestService(repo repository.UserRepository) AuthService {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewAuthService(repo, token.NewCodec("test-secret", time.Hour), logger)
}

func validRegisterInput() RegisterInput {
	return RegisterInput{
		Name:            "Ann",
		Email:           "ann@x.com",
		Password:        "longpass1",
		ConfirmPassword: "longpass1",
	}
}

func TestRegisterSuccess(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo)

	session, err := svc.Register(context.Background(), validRegisterInput())
	require.NoError(t, err)

	assert.NotEmpty(t, session.User.ID)
	assert.Equal(t, "ann@x.com", session.User.Email)
	assert.Equal(t, "Ann", session.User.Name)
	assert.NotEmpty(t, session.Token)

	stored := repo.users["ann@x.com"]
	require.NotNil(t, stored)
	assert.NotEqual(t, "longpass1", stored.PasswordHash)
	assert.True(t, password.Verify("longpass1", stored.PasswordHash))
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*RegisterInput)
		field   string
		message string
	}{
		{
			name:    "missing name",
			mutate:  func(in *RegisterInput) { in.Name = "" },
			field:   "name",
			message: "Name is required",
		},
		{
			name:    "missing email",
			mutate:  func(in *RegisterInput) { in.Email = "" },
			field:   "email",
			message: "Email is required",
		},
		{
			name:    "malformed email",
			mutate:  func(in *RegisterInput) { in.Email = "not-an-email" },
			field:   "email",
			message: "Invalid email format",
		},
		{
			name:    "short password",
			mutate:  func(in *RegisterInput) { in.Password = "short"; in.ConfirmPassword = "short" },
			field:   "password",
			message: "Password must be at least 8 characters long",
		},
		{
			name:    "missing confirmation",
			mutate:  func(in *RegisterInput) { in.ConfirmPassword = "" },
			field:   "confirm_password",
			message: "Please confirm your password",
		},
		{
			name:    "mismatched confirmation",
			mutate:  func(in *RegisterInput) { in.ConfirmPassword = "different1" },
			field:   "confirm_password",
			message: "Passwords do not match",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeUserRepo()
			svc := newTestService(repo)

			input := validRegisterInput()
			tt.mutate(&input)

			_, err := svc.Register(context.Background(), input)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Contains(t, vErr.Fields[tt.field], tt.message)

			// invalid input never reaches the store
			assert.Zero(t, repo.lookups)
			assert.Zero(t, repo.creates)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Register(ctx, validRegisterInput())
	require.NoError(t, err)
	existing := *repo.users["ann@x.com"]

	input := validRegisterInput()
	input.Name = "Impostor"
	session, err := svc.Register(ctx, input)
	assert.ErrorIs(t, err, ErrEmailExists)
	assert.Nil(t, session)

	assert.Equal(t, existing, *repo.users["ann@x.com"])
}

// racingRepo simulates losing a concurrent-registration race: the pre-check
// misses but the unique constraint fires on insert.
type racingRepo struct {
	*fakeUserRepo
}

func (r *racingRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return nil, repository.ErrNotFound
}

func (r *racingRepo) Create(ctx context.Context, user *domain.User) error {
	return repository.ErrEmailTaken
}

func TestRegisterRacingDuplicate(t *testing.T) {
	svc := newTestService(&racingRepo{newFakeUserRepo()})

	session, err := svc.Register(context.Background(), validRegisterInput())
	assert.ErrorIs(t, err, ErrEmailExists)
	assert.Nil(t, session)
}

func TestLoginSuccess(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Register(ctx, validRegisterInput())
	require.NoError(t, err)

	session, err := svc.Login(ctx, LoginInput{Email: "ann@x.com", Password: "longpass1"})
	require.NoError(t, err)
	assert.Equal(t, "ann@x.com", session.User.Email)
	assert.NotEmpty(t, session.Token)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Register(ctx, validRegisterInput())
	require.NoError(t, err)

	_, wrongPassword := svc.Login(ctx, LoginInput{Email: "ann@x.com", Password: "wrongpass1"})
	_, unknownEmail := svc.Login(ctx, LoginInput{Email: "bob@x.com", Password: "longpass1"})

	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestLoginValidationShortCircuits(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo)

	_, err := svc.Login(context.Background(), LoginInput{Email: "", Password: ""})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields["email"], "Email is required")
	assert.Contains(t, vErr.Fields["password"], "Password is required")
	assert.Zero(t, repo.lookups)
}

func TestEmailAvailable(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	assert.True(t, svc.EmailAvailable(ctx, "ann@x.com"))

	_, err := svc.Register(ctx, validRegisterInput())
	require.NoError(t, err)
	assert.False(t, svc.EmailAvailable(ctx, "ann@x.com"))

	// fails open on store errors
	repo.failAll = errors.New("store down")
	assert.True(t, svc.EmailAvailable(ctx, "ann@x.com"))
}

func TestLoginStoreErrorIsWrapped(t *testing.T) {
	repo := newFakeUserRepo()
	repo.failAll = errors.New("store down")
	svc := newTestService(repo)

	_, err := svc.Login(context.Background(), LoginInput{Email: "ann@x.com", Password: "longpass1"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}
