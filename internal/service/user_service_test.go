package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"wanderlust/internal/domain"
	"wanderlust/internal/repository"
)

type fakeUserRepo struct {
	seq   int64
	users map[int64]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*domain.User)}
}

func (r *fakeUserRepo) Init(ctx context.Context) error { return nil }

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) (int64, error) {
	for _, existing := range r.users {
		if existing.Username == user.Username ||
			(user.Email != "" && existing.Email == user.Email) ||
			(user.GoogleID != "" && existing.GoogleID == user.GoogleID) {
			return 0, fmt.Errorf("insert user: %w", repository.ErrDuplicate)
		}
	}
	r.seq++
	user.ID = r.seq
	clone := *user
	r.users[user.ID] = &clone
	return user.ID, nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if user, ok := r.users[id]; ok {
		clone := *user
		return &clone, nil
	}
	return nil, fmt.Errorf("user: %w", repository.ErrNotFound)
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Username == username })
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Email != "" && u.Email == email })
}

func (r *fakeUserRepo) GetByGoogleID(ctx context.Context, googleID string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.GoogleID != "" && u.GoogleID == googleID })
}

func (r *fakeUserRepo) AttachGoogleID(ctx context.Context, userID int64, googleID string) error {
	user, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("user: %w", repository.ErrNotFound)
	}
	user.GoogleID = googleID
	return nil
}

func (r *fakeUserRepo) find(match func(*domain.User) bool) (*domain.User, error) {
	for _, user := range r.users {
		if match(user) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("user: %w", repository.ErrNotFound)
}

func TestRegisterAndAuthenticate(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	svc := NewUserService(repo)
	ctx := context.Background()

	created, err := svc.Register(ctx, "maya", "maya@example.com", "correct horse")
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.Empty(t, created.PasswordHash, "returned user must not carry the hash")

	user, err := svc.Authenticate(ctx, "maya", "correct horse")
	require.NoError(t, err)
	require.Equal(t, created.ID, user.ID)
	require.Equal(t, "maya", user.Username)
}

func TestAuthenticate_FailuresAreIndistinguishable(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	svc := NewUserService(repo)
	ctx := context.Background()

	_, err := svc.Register(ctx, "maya", "", "correct horse")
	require.NoError(t, err)

	_, wrongPass := svc.Authenticate(ctx, "maya", "wrong horse")
	_, unknownUser := svc.Authenticate(ctx, "nobody", "correct horse")

	require.ErrorIs(t, wrongPass, ErrInvalidCredentials)
	require.ErrorIs(t, unknownUser, ErrInvalidCredentials)
	require.Equal(t, wrongPass.Error(), unknownUser.Error())
}

func TestRegister_Validation(t *testing.T) {
	t.Parallel()

	svc := NewUserService(newFakeUserRepo())
	ctx := context.Background()

	cases := []struct {
		name     string
		username string
		password string
	}{
		{"empty username", "", "long enough pw"},
		{"empty password", "maya", ""},
		{"short password", "maya", "short"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.username, "", tc.password)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
		})
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	t.Parallel()

	svc := NewUserService(newFakeUserRepo())
	ctx := context.Background()

	_, err := svc.Register(ctx, "maya", "", "correct horse")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "maya", "", "another password")
	require.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestResolveExternal_CreatesOnce(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	svc := NewUserService(repo)
	ctx := context.Background()

	profile := ExternalProfile{Provider: "google", ID: "g-123", DisplayName: "Sam Example", Email: "sam@example.com"}

	first, err := svc.ResolveExternal(ctx, profile)
	require.NoError(t, err)
	require.Equal(t, "Sam Example", first.Username)
	require.Len(t, repo.users, 1)

	second, err := svc.ResolveExternal(ctx, profile)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Len(t, repo.users, 1, "a repeat login must not create a duplicate")
}

func TestResolveExternal_LinksByEmail(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	svc := NewUserService(repo)
	ctx := context.Background()

	local, err := svc.Register(ctx, "maya", "maya@example.com", "correct horse")
	require.NoError(t, err)

	resolved, err := svc.ResolveExternal(ctx, ExternalProfile{
		Provider: "google", ID: "g-456", DisplayName: "Maya R", Email: "maya@example.com",
	})
	require.NoError(t, err)
	require.Equal(t, local.ID, resolved.ID, "must link, not create a second account")
	require.Len(t, repo.users, 1)

	linked, err := repo.GetByGoogleID(ctx, "g-456")
	require.NoError(t, err)
	require.Equal(t, local.ID, linked.ID)
}

func TestResolveExternal_UsernameFallbacks(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("email local part", func(t *testing.T) {
		svc := NewUserService(newFakeUserRepo())
		user, err := svc.ResolveExternal(ctx, ExternalProfile{Provider: "google", ID: "g-1", Email: "wanderer@example.com"})
		require.NoError(t, err)
		require.Equal(t, "wanderer", user.Username)
	})

	t.Run("generated token", func(t *testing.T) {
		svc := NewUserService(newFakeUserRepo())
		user, err := svc.ResolveExternal(ctx, ExternalProfile{Provider: "google", ID: "g-2"})
		require.NoError(t, err)
		require.Equal(t, "google_g-2", user.Username)
	})

	t.Run("collision falls back to generated token", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc := NewUserService(repo)
		_, err := svc.Register(ctx, "wanderer", "", "correct horse")
		require.NoError(t, err)

		user, err := svc.ResolveExternal(ctx, ExternalProfile{Provider: "google", ID: "g-3", DisplayName: "wanderer"})
		require.NoError(t, err)
		require.Equal(t, "google_g-3", user.Username)
		require.Len(t, repo.users, 2)
	})
}

func TestResolveExternal_StoreErrorSurfaces(t *testing.T) {
	t.Parallel()

	svc := NewUserService(failingUserRepo{})
	_, err := svc.ResolveExternal(context.Background(), ExternalProfile{Provider: "google", ID: "g-9"})
	require.Error(t, err)
	require.False(t, errors.Is(err, repository.ErrNotFound))
}

type failingUserRepo struct{}

func (failingUserRepo) Init(context.Context) error { return nil }
func (failingUserRepo) Create(context.Context, *domain.User) (int64, error) {
	return 0, errors.New("store unavailable")
}
func (failingUserRepo) GetByID(context.Context, int64) (*domain.User, error) {
	return nil, errors.New("store unavailable")
}
func (failingUserRepo) GetByUsername(context.Context, string) (*domain.User, error) {
	return nil, errors.New("store unavailable")
}
func (failingUserRepo) GetByEmail(context.Context, string) (*domain.User, error) {
	return nil, errors.New("store unavailable")
}
func (failingUserRepo) GetByGoogleID(context.Context, string) (*domain.User, error) {
	return nil, errors.New("store unavailable")
}
func (failingUserRepo) AttachGoogleID(context.Context, int64, string) error {
	return errors.New("store unavailable")
}
