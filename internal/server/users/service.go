package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avolkovs/keepsake/internal/common"
	"github.com/avolkovs/keepsake/internal/cryptox"
	"github.com/avolkovs/keepsake/internal/server/auth"
	"github.com/avolkovs/keepsake/internal/server/config"
	"github.com/avolkovs/keepsake/internal/server/refreshtokens"
)

const minPasswordLength = 8

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type Service struct {
	repo                         Repository
	refreshTokenRepo             refreshtokens.Repository
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

func NewService(repo Repository, refreshTokenRepo refreshtokens.Repository, cfg *config.Config) *Service {
	return &Service{
		repo:                         repo,
		refreshTokenRepo:             refreshTokenRepo,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

func validateRegistration(username, email, password string) error {
	if len(username) < 3 {
		return fmt.Errorf("%w: username too short", common.ErrorInvalidInput)
	}
	if !strings.Contains(email, "@") {
		return fmt.Errorf("%w: invalid email", common.ErrorInvalidInput)
	}
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: password shorter than %d characters", common.ErrorInvalidInput, minPasswordLength)
	}
	return nil
}

// Register creates a new user with a bcrypt password hash under the current
// scheme version. Duplicate username or email surfaces as
// common.ErrorConflict.
func (s *Service) Register(ctx context.Context, username, email, password string) (*User, error) {

	if err := validateRegistration(username, email, password); err != nil {
		return nil, err
	}

	hash, err := cryptox.HashAccountPassword([]byte(password))
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &User{
		UserName:       username,
		Email:          email,
		PasswordHash:   hash,
		PasswordScheme: cryptox.AccountPasswordScheme,
	}

	user, err = s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return nil, common.ErrorConflict
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil
}

func (s *Service) generateAccessToken(user *User) (string, error) {
	return auth.GenerateToken(user.ID, s.jwtSecret, s.accessTokenValidityDuration)
}

func (s *Service) generateRefreshToken() (string, error) {
	return common.MakeRandHexString(32)
}

func (s *Service) issueTokenPair(ctx context.Context, user *User) (*TokenPair, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, common.ErrorInternal
	}

	refreshToken, err := s.generateRefreshToken()
	if err != nil {
		return nil, common.ErrorInternal
	}

	if err := s.refreshTokenRepo.Create(ctx, user.ID, refreshToken, s.refreshTokenValidityDuration); err != nil {
		return nil, common.ErrorInternal
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Login verifies the password and issues a token pair. An unknown user and a
// wrong password are both reported as common.ErrorUnauthorized.
func (s *Service) Login(ctx context.Context, userName, password string) (*TokenPair, error) {

	user, err := s.repo.GetUserByLogin(ctx, userName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	if !cryptox.VerifyAccountPassword(user.PasswordHash, []byte(password)) {
		return nil, common.ErrorUnauthorized
	}

	return s.issueTokenPair(ctx, user)
}

// Refresh rotates a refresh token: the presented token is invalidated and a
// new pair is issued. Expired or unknown tokens surface as
// common.ErrRefreshTokenExpired.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {

	rt, err := s.refreshTokenRepo.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrRefreshTokenExpired
		}
		return nil, common.ErrorInternal
	}

	if time.Now().After(rt.ExpiresAt) {
		_ = s.refreshTokenRepo.Delete(ctx, refreshToken)
		return nil, common.ErrRefreshTokenExpired
	}

	user, err := s.repo.GetByID(ctx, rt.UserID)
	if err != nil {
		return nil, common.ErrorInternal
	}

	if err := s.refreshTokenRepo.Delete(ctx, refreshToken); err != nil {
		return nil, common.ErrorInternal
	}

	return s.issueTokenPair(ctx, user)
}

// ChangePassword re-hashes the credential after verifying the old password.
// The stored scheme version is bumped to the current one, which migrates
// hashes created under older bcrypt costs.
func (s *Service) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {

	if len(newPassword) < minPasswordLength {
		return fmt.Errorf("%w: password shorter than %d characters", common.ErrorInvalidInput, minPasswordLength)
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorUnauthorized
		}
		return common.ErrorInternal
	}

	if !cryptox.VerifyAccountPassword(user.PasswordHash, []byte(oldPassword)) {
		return common.ErrorUnauthorized
	}

	hash, err := cryptox.HashAccountPassword([]byte(newPassword))
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}

	return s.repo.UpdatePassword(ctx, userID, hash, cryptox.AccountPasswordScheme)
}
