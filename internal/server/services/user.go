// This file implements UserService, which exchanges an upstream-verified
// profile for a server-side user and access token, and serves the profile
// with live quota usage.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/geophoto/internal/common"
	"github.com/dmitrijs2005/geophoto/internal/server/auth"
	"github.com/dmitrijs2005/geophoto/internal/server/config"
	"github.com/dmitrijs2005/geophoto/internal/server/models"
	"github.com/dmitrijs2005/geophoto/internal/server/repositories/repomanager"
)

// UserService provides identity-related operations:
// - Login: upsert the user record and mint an access token
// - Get: fetch a user with current quota counters
type UserService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
	defaultMaxUploads           int64
	defaultMaxStorageBytes      int64
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                          db,
		repomanager:                 m,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		defaultMaxUploads:           cfg.DefaultMaxUploads,
		defaultMaxStorageBytes:      cfg.DefaultMaxStorageBytes,
	}
}

// Login upserts the user identified by googleID and returns the stored user
// with a fresh access token. New users start with the configured default
// quota ceilings; existing users keep theirs.
func (s *UserService) Login(ctx context.Context, googleID, email, name, profilePicture string) (*models.User, string, error) {

	if googleID == "" || email == "" || name == "" {
		return nil, "", fmt.Errorf("%w: googleId, email and name are required", common.ErrInvalidRequest)
	}

	user := &models.User{
		GoogleID:        googleID,
		Email:           email,
		Name:            name,
		ProfilePicture:  profilePicture,
		MaxUploads:      s.defaultMaxUploads,
		MaxStorageBytes: s.defaultMaxStorageBytes,
	}

	user, err := s.repomanager.Users(s.db).Upsert(ctx, user)
	if err != nil {
		return nil, "", fmt.Errorf("error saving user: %v", err)
	}

	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, "", fmt.Errorf("error generating token: %v", err)
	}

	return user, token, nil
}

// Get returns the user with live quota counters.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, id)
}
