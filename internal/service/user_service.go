package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"wanderlust/internal/domain"
	"wanderlust/internal/repository"
)

var (
	// ErrInvalidCredentials indicates that provided login credentials are
	// incorrect. An unknown username and a wrong password both return this
	// value so callers cannot probe which accounts exist.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserAlreadyExists is returned when attempting to register with a taken username or email.
	ErrUserAlreadyExists = errors.New("user already exists")
)

// ExternalProfile is the identity an external OAuth provider asserts for
// a logged-in visitor.
type ExternalProfile struct {
	Provider    string
	ID          string
	DisplayName string
	Email       string
}

// UserService describes account lifecycle operations.
type UserService interface {
	Register(ctx context.Context, username, email, password string) (*domain.User, error)
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
	// ResolveExternal maps an external identity to exactly one local user,
	// linking or creating an account as needed.
	ResolveExternal(ctx context.Context, profile ExternalProfile) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type userService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

func (s *userService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	password = strings.TrimSpace(password)

	if username == "" {
		return nil, &ValidationError{msg: "username is required"}
	}
	if password == "" {
		return nil, &ValidationError{msg: "password is required"}
	}
	if len(password) < 8 {
		return nil, &ValidationError{msg: "password must be at least 8 characters"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}

	if _, err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}

	return sanitizeUser(user), nil
}

func (s *userService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.HasLocalCredential() {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return sanitizeUser(user), nil
}

// ResolveExternal evaluates a fixed, ordered list of resolution
// strategies: an already-linked account wins, then an email match (which
// links the external id to that account), then a fresh account is created.
func (s *userService) ResolveExternal(ctx context.Context, profile ExternalProfile) (*domain.User, error) {
	strategies := []func(context.Context, ExternalProfile) (*domain.User, bool, error){
		s.resolveLinked,
		s.resolveByEmail,
		s.createFromProfile,
	}

	for _, strategy := range strategies {
		user, ok, err := strategy(ctx, profile)
		if err != nil {
			return nil, err
		}
		if ok {
			return sanitizeUser(user), nil
		}
	}
	return nil, fmt.Errorf("resolve external profile %s/%s: no strategy matched", profile.Provider, profile.ID)
}

func (s *userService) resolveLinked(ctx context.Context, profile ExternalProfile) (*domain.User, bool, error) {
	user, err := s.users.GetByGoogleID(ctx, profile.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("lookup by external id: %w", err)
	}
	return user, true, nil
}

func (s *userService) resolveByEmail(ctx context.Context, profile ExternalProfile) (*domain.User, bool, error) {
	if profile.Email == "" {
		return nil, false, nil
	}
	user, err := s.users.GetByEmail(ctx, profile.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("lookup by email: %w", err)
	}
	if err := s.users.AttachGoogleID(ctx, user.ID, profile.ID); err != nil {
		return nil, false, fmt.Errorf("link external id to user %d: %w", user.ID, err)
	}
	user.GoogleID = profile.ID
	return user, true, nil
}

func (s *userService) createFromProfile(ctx context.Context, profile ExternalProfile) (*domain.User, bool, error) {
	user := &domain.User{
		Username: usernameFromProfile(profile),
		Email:    profile.Email,
		GoogleID: profile.ID,
	}

	_, err := s.users.Create(ctx, user)
	if errors.Is(err, repository.ErrDuplicate) {
		// preferred username is taken; retry with the generated token,
		// which is unique as long as the external id is
		user.Username = generatedUsername(profile)
		_, err = s.users.Create(ctx, user)
	}
	if err != nil {
		return nil, false, fmt.Errorf("create user from profile: %w", err)
	}
	return user, true, nil
}

func (s *userService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

// usernameFromProfile picks the display name, falling back to the email
// local-part, falling back to a generated provider token.
func usernameFromProfile(profile ExternalProfile) string {
	if name := strings.TrimSpace(profile.DisplayName); name != "" {
		return name
	}
	if at := strings.Index(profile.Email, "@"); at > 0 {
		return profile.Email[:at]
	}
	return generatedUsername(profile)
}

func generatedUsername(profile ExternalProfile) string {
	provider := profile.Provider
	if provider == "" {
		provider = "external"
	}
	return fmt.Sprintf("%s_%s", provider, profile.ID)
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	clone := *user
	clone.PasswordHash = ""
	return &clone
}
