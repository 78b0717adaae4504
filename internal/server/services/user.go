// Package services contains server-side business logic. This file implements
// UserService, which registers credentials and exchanges them for access
// tokens.
package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskauth/internal/common"
	"github.com/dmitrijs2005/taskauth/internal/dbx"
	"github.com/dmitrijs2005/taskauth/internal/logging"
	"github.com/dmitrijs2005/taskauth/internal/server/auth"
	"github.com/dmitrijs2005/taskauth/internal/server/config"
	"github.com/dmitrijs2005/taskauth/internal/server/metrics"
	"github.com/dmitrijs2005/taskauth/internal/server/models"
	"github.com/dmitrijs2005/taskauth/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// UserService provides authentication-related operations:
//   - Register: create a credential record with a bcrypt hash
//   - Login: verify credentials and mint an access token
//
// It keeps no mutable state and is safe for concurrent use.
type UserService struct {
	db                          dbx.DBTX
	repomanager                 repomanager.RepositoryManager
	tokens                      *auth.TokenManager
	accessTokenValidityDuration time.Duration
	bcryptCost                  int
	dummyHash                   string
	logger                      logging.Logger
	metrics                     *metrics.Metrics
	now                         func() time.Time
}

// NewUserService constructs a UserService. logger and m may be nil.
func NewUserService(db dbx.DBTX, rm repomanager.RepositoryManager, tokens *auth.TokenManager,
	cfg *config.Config, logger logging.Logger, m *metrics.Metrics) (*UserService, error) {
	if tokens == nil {
		return nil, errors.New("token manager is required")
	}
	if logger == nil {
		logger = logging.Nop{}
	}

	// Compared against on unknown emails so that path costs one bcrypt run too.
	dummyHash, err := auth.HashPassword(randomPassword(), cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}

	return &UserService{
		db:                          db,
		repomanager:                 rm,
		tokens:                      tokens,
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		bcryptCost:                  cfg.BcryptCost,
		dummyHash:                   dummyHash,
		logger:                      logger.With("module", "services.user"),
		metrics:                     m,
		now:                         time.Now,
	}, nil
}

// NormalizeEmail trims surrounding space and lower-cases email, so that
// uniqueness and lookups ignore case.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a credential record. It fails with common.ErrValidation for
// bad input, common.ErrEmailTaken when the email is registered (including a
// concurrent registration winning the insert) and common.ErrStoreUnavailable
// when storage fails.
func (s *UserService) Register(ctx context.Context, email, password string) (*models.PublicUser, error) {
	email = NormalizeEmail(email)
	if err := validateCredentials(email, password); err != nil {
		s.metrics.RecordRegister(metrics.ResultValidation)
		return nil, err
	}

	repo := s.repomanager.Users(s.db)

	_, found, err := repo.FindByEmail(ctx, email)
	if err != nil {
		s.logger.Error(ctx, "register: user lookup failed", "error", err)
		s.metrics.RecordRegister(metrics.ResultStoreError)
		return nil, fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
	}
	if found {
		s.metrics.RecordRegister(metrics.ResultEmailTaken)
		return nil, common.ErrEmailTaken
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		s.logger.Error(ctx, "register: hashing failed", "error", err)
		s.metrics.RecordRegister(metrics.ResultError)
		return nil, fmt.Errorf("%w: %w", common.ErrInternal, err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}

	if err := repo.Insert(ctx, user); err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			s.metrics.RecordRegister(metrics.ResultEmailTaken)
			return nil, common.ErrEmailTaken
		}
		s.logger.Error(ctx, "register: insert failed", "error", err)
		s.metrics.RecordRegister(metrics.ResultStoreError)
		return nil, fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID)
	s.metrics.RecordRegister(metrics.ResultSuccess)
	return user.Public(), nil
}

// Login verifies email and password and returns a signed access token for the
// record's id. An unknown email and a wrong password both yield
// common.ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		s.metrics.RecordLogin(metrics.ResultValidation)
		return "", fmt.Errorf("%w: email and password are required", common.ErrValidation)
	}

	repo := s.repomanager.Users(s.db)

	user, found, err := repo.FindByEmail(ctx, email)
	if err != nil {
		s.logger.Error(ctx, "login: user lookup failed", "error", err)
		s.metrics.RecordLogin(metrics.ResultStoreError)
		return "", fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
	}

	if !found {
		auth.VerifyPassword(password, s.dummyHash)
		s.logger.Debug(ctx, "login rejected", "reason", "unknown email")
		s.metrics.RecordLogin(metrics.ResultInvalidCredentials)
		return "", common.ErrInvalidCredentials
	}
	if !auth.VerifyPassword(password, user.PasswordHash) {
		s.logger.Debug(ctx, "login rejected", "reason", "password mismatch", "user_id", user.ID)
		s.metrics.RecordLogin(metrics.ResultInvalidCredentials)
		return "", common.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, s.accessTokenValidityDuration)
	if err != nil {
		s.logger.Error(ctx, "login: token issue failed", "error", err)
		s.metrics.RecordLogin(metrics.ResultError)
		return "", fmt.Errorf("%w: %w", common.ErrInternal, err)
	}

	s.metrics.RecordLogin(metrics.ResultSuccess)
	return token, nil
}

// AccessTokenValidity is the lifetime of tokens returned by Login.
func (s *UserService) AccessTokenValidity() time.Duration {
	return s.accessTokenValidityDuration
}

func validateCredentials(email, password string) error {
	if email == "" || password == "" {
		return fmt.Errorf("%w: email and password are required", common.ErrValidation)
	}
	if len(password) > auth.MaxPasswordBytes {
		return fmt.Errorf("%w: %w", common.ErrValidation, auth.ErrPasswordTooLong)
	}
	return nil
}

func randomPassword() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
