package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domainErrors "github.com/polkiloo/autoparts/internal/domain/errors"
	"github.com/polkiloo/autoparts/internal/domain/model"
	"github.com/polkiloo/autoparts/internal/domain/repository"
	pkgAuth "github.com/polkiloo/autoparts/internal/pkg/auth"
)

// AuthUseCase handles user lifecycle, profiles and token management.
type AuthUseCase struct {
	users     repository.UserRepository
	customers repository.CustomerRepository
	hasher    pkgAuth.PasswordHasher
	tokens    pkgAuth.Strategy
}

// NewAuthUseCase constructs AuthUseCase.
func NewAuthUseCase(users repository.UserRepository, customers repository.CustomerRepository, hasher pkgAuth.PasswordHasher, strategy pkgAuth.Strategy) *AuthUseCase {
	return &AuthUseCase{users: users, customers: customers, hasher: hasher, tokens: strategy}
}

// Register creates a customer account and returns auth token.
func (u *AuthUseCase) Register(ctx context.Context, login, password string) (*model.User, string, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	hash, err := u.hasher.Hash(password)
	if errors.Is(err, pkgAuth.ErrPasswordTooLong) {
		return nil, "", domainErrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}

	usr, err := u.users.Create(ctx, login, hash, model.RoleCustomer)
	if err != nil {
		if errors.Is(err, domainErrors.ErrAlreadyExists) {
			return nil, "", domainErrors.ErrAlreadyExists
		}
		return nil, "", err
	}

	token, err := u.issue(usr)
	if err != nil {
		return nil, "", err
	}

	return usr, token, nil
}

// Authenticate validates credentials and returns auth token.
func (u *AuthUseCase) Authenticate(ctx context.Context, login, password string) (*model.User, string, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	usr, err := u.users.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, "", domainErrors.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := u.hasher.Compare(usr.PasswordHash, password); err != nil {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	token, err := u.issue(usr)
	if err != nil {
		return nil, "", err
	}

	return usr, token, nil
}

// EnsureAdmin creates the operator account if it does not exist yet.
func (u *AuthUseCase) EnsureAdmin(ctx context.Context, login, password string) (*model.User, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, domainErrors.ErrInvalidCredentials
	}

	usr, err := u.users.GetByLogin(ctx, login)
	switch {
	case err == nil:
		if usr.Role != model.RoleAdmin {
			return nil, fmt.Errorf("%w: %q is not an admin account", domainErrors.ErrAlreadyExists, login)
		}
		return usr, nil
	case !errors.Is(err, domainErrors.ErrNotFound):
		return nil, err
	}

	hash, err := u.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	return u.users.Create(ctx, login, hash, model.RoleAdmin)
}

// ParseToken extracts the bearer's claims from provided token.
func (u *AuthUseCase) ParseToken(token string) (pkgAuth.Claims, error) {
	if token == "" {
		return pkgAuth.Claims{}, pkgAuth.ErrInvalidToken
	}
	return u.tokens.ParseToken(token)
}

// GetByID fetches user by identifier.
func (u *AuthUseCase) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return u.users.GetByID(ctx, id)
}

// Profile returns the stored customer profile, or an empty one.
func (u *AuthUseCase) Profile(ctx context.Context, userID int64) (*model.CustomerProfile, error) {
	profile, err := u.customers.Get(ctx, userID)
	if errors.Is(err, domainErrors.ErrNotFound) {
		return &model.CustomerProfile{UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// UpdateProfile stores the customer's contact data.
func (u *AuthUseCase) UpdateProfile(ctx context.Context, profile model.CustomerProfile) (*model.CustomerProfile, error) {
	if profile.UserID == 0 {
		return nil, fmt.Errorf("%w: profile owner is required", domainErrors.ErrInvalidInput)
	}
	profile.FullName = strings.TrimSpace(profile.FullName)
	profile.NationalID = strings.TrimSpace(profile.NationalID)
	profile.Phone = strings.TrimSpace(profile.Phone)
	profile.Address = strings.TrimSpace(profile.Address)
	profile.City = strings.TrimSpace(profile.City)
	profile.State = strings.TrimSpace(profile.State)

	if err := u.customers.Upsert(ctx, profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (u *AuthUseCase) issue(usr *model.User) (string, error) {
	return u.tokens.IssueToken(pkgAuth.Claims{UserID: usr.ID, Role: string(usr.Role)})
}
