package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/user-directory/internal/auth"
)

// DashboardPageSize - сколько пользователей отдаёт одна страница dashboard.
const DashboardPageSize = 10

// CountCache хранит общее число пользователей. Ошибки кэша не фатальны.
// Store пропускает запись, если после Get с тем же generation был Invalidate.
type CountCache interface {
	Get(ctx context.Context) (count int64, generation int64, ok bool, err error)
	Store(ctx context.Context, count, generation int64) error
	Invalidate(ctx context.Context) error
}

type Service interface {
	SignUp(ctx context.Context, in SignUpInput) (string, error)
	SignIn(ctx context.Context, email, password string) (string, error)
	Count(ctx context.Context) (int64, error)
	Dashboard(ctx context.Context, callerID string, offset int) ([]Summary, error)
	CurrentUser(ctx context.Context, userID string) (*Profile, error)
	SetProfileImage(ctx context.Context, userID, publicID string) error
}

type service struct {
	repo   Repository
	hasher auth.PasswordHasher
	tokens auth.TokenIssuer
	cache  CountCache
}

// NewService wires the domain service. cache may be nil.
func NewService(repo Repository, hasher auth.PasswordHasher, tokens auth.TokenIssuer, cache CountCache) Service {
	return &service{repo: repo, hasher: hasher, tokens: tokens, cache: cache}
}

func newUserID() (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", fmt.Errorf("failed to generate user id: %w", err)
	}
	return IDPrefix + id.String(), nil
}

func (s *service) SignUp(ctx context.Context, in SignUpInput) (string, error) {
	exists, err := s.repo.ExistsByEmailOrUserName(ctx, in.Email, in.UserName)
	if err != nil {
		return "", fmt.Errorf("failed to check existing user: %w", err)
	}
	if exists {
		return "", ErrUserExists
	}

	userID, err := newUserID()
	if err != nil {
		return "", err
	}

	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return "", err
	}

	u := &User{
		UserID:      userID,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Email:       in.Email,
		Password:    hashed,
		PhoneNumber: in.PhoneNumber,
		UserName:    in.UserName,
	}

	// Параллельная регистрация с тем же email ловится уникальным индексом.
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, ErrUserExists) {
			return "", ErrUserExists
		}
		return "", fmt.Errorf("failed to save user: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to invalidate user count cache")
		}
	}

	token, err := s.tokens.Issue(u.UserID, u.Email)
	if err != nil {
		return "", err
	}

	log.Info().Str("user_id", u.UserID).Msg("user signed up")
	return token, nil
}

func (s *service) SignIn(ctx context.Context, email, password string) (string, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("failed to get user by email: %w", err)
	}

	ok, err := s.hasher.Verify(password, u.Password)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrIncorrectPassword
	}

	return s.tokens.Issue(u.UserID, u.Email)
}

func (s *service) Count(ctx context.Context) (int64, error) {
	var generation int64
	cacheable := false
	if s.cache != nil {
		count, gen, ok, err := s.cache.Get(ctx)
		switch {
		case err != nil:
			log.Warn().Err(err).Msg("failed to read user count cache")
		case ok:
			return count, nil
		default:
			generation, cacheable = gen, true
		}
	}

	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}

	if cacheable {
		if err := s.cache.Store(ctx, count, generation); err != nil {
			log.Warn().Err(err).Msg("failed to store user count cache")
		}
	}
	return count, nil
}

func (s *service) Dashboard(ctx context.Context, callerID string, offset int) ([]Summary, error) {
	if offset < 0 {
		offset = 0
	}
	summaries, err := s.repo.ListExcluding(ctx, callerID, offset, DashboardPageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	if summaries == nil {
		summaries = []Summary{}
	}
	return summaries, nil
}

func (s *service) CurrentUser(ctx context.Context, userID string) (*Profile, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by id '%s': %w", userID, err)
	}
	p := u.Profile()
	return &p, nil
}

func (s *service) SetProfileImage(ctx context.Context, userID, publicID string) error {
	if err := s.repo.UpdateImage(ctx, userID, publicID); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to set profile image for '%s': %w", userID, err)
	}
	return nil
}
