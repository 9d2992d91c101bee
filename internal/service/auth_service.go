package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/spec-kit/course-marketplace/internal/auth"
	"github.com/spec-kit/course-marketplace/internal/domain"
	"github.com/spec-kit/course-marketplace/internal/repository"
	apperrors "github.com/spec-kit/course-marketplace/pkg/util/errorutil"
)

// AuthService coordinates signup and signin for both principal classes.
type AuthService struct {
	principals repository.PrincipalRepository
	hasher     *auth.PasswordHasher
	tokens     *auth.TokenManager
}

// AuthDependencies encapsulates requirements for auth service.
type AuthDependencies struct {
	PrincipalRepo repository.PrincipalRepository
	Hasher        *auth.PasswordHasher
	Tokens        *auth.TokenManager
}

// RegisterInput describes a signup. Fields are expected to be validated and normalized.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	return &AuthService{
		principals: deps.PrincipalRepo,
		hasher:     deps.Hasher,
		tokens:     deps.Tokens,
	}
}

// Register creates a principal of the given class.
func (s *AuthService) Register(ctx context.Context, class domain.PrincipalClass, input RegisterInput) (*domain.Principal, error) {
	if !class.Valid() {
		return nil, fmt.Errorf("unknown principal class %q", class)
	}

	hash, err := s.hasher.Hash(input.Password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return nil, apperrors.NewValidationError("validation failed", map[string]any{
			"password": fmt.Sprintf("The field 'password' must be no longer than %d bytes.", auth.MaxPasswordBytes),
		})
	}
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	principal := &domain.Principal{
		ID:           uuid.NewString(),
		Class:        class,
		Email:        domain.NormalizeEmail(input.Email),
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
	}
	if err := s.principals.Create(ctx, principal); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.NewDuplicateEmail()
		}
		return nil, fmt.Errorf("create %s: %w", class, err)
	}
	return principal, nil
}

// Authenticate checks credentials. Unknown emails and wrong passwords both
// yield the same invalid-credentials error.
func (s *AuthService) Authenticate(ctx context.Context, class domain.PrincipalClass, email, password string) (*domain.Principal, error) {
	principal, err := s.principals.GetByEmail(ctx, class, domain.NormalizeEmail(email))
	if errors.Is(err, repository.ErrNotFound) {
		s.hasher.VerifyDummy(password)
		return nil, apperrors.NewInvalidCredentials()
	}
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", class, err)
	}

	ok, err := s.hasher.Verify(password, principal.PasswordHash)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("%s %s: %w", class, principal.ID, err))
	}
	if !ok {
		return nil, apperrors.NewInvalidCredentials()
	}
	return principal, nil
}

// SignIn authenticates and issues a session token for the principal's class.
func (s *AuthService) SignIn(ctx context.Context, class domain.PrincipalClass, email, password string) (*domain.Principal, string, error) {
	principal, err := s.Authenticate(ctx, class, email, password)
	if err != nil {
		return nil, "", err
	}
	token, err := s.tokens.Issue(principal.ID, class)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return principal, token, nil
}
