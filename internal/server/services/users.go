// Package services contains server-side business logic. This file implements
// UserService: registration, credential verification, issuing/refreshing
// token pairs backed by server-stored refresh tokens, and the policy-gated
// patch/delete operations.
package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/avolkov/authkeeper/internal/common"
	"github.com/avolkov/authkeeper/internal/dbx"
	"github.com/avolkov/authkeeper/internal/server/auth"
	"github.com/avolkov/authkeeper/internal/server/config"
	"github.com/avolkov/authkeeper/internal/server/models"
	"github.com/avolkov/authkeeper/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// refreshTokenBytes is the entropy of the opaque refresh value; the encoded
// string is twice as long.
const refreshTokenBytes = 32

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// UserService provides the authentication and session lifecycle:
//   - Register: create users
//   - Authenticate: verify credentials
//   - Login: mint a token pair, reusing a still-valid refresh token
//   - Refresh: rotate the refresh token and mint a new access token
//   - Logout: revoke the current refresh token
//   - Patch / Delete: policy-gated account mutations
type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	jwtSecret                    []byte
	bcryptCost                   int
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                           db,
		repomanager:                  m,
		jwtSecret:                    []byte(cfg.SecretKey),
		bcryptCost:                   cfg.BcryptCost,
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

// Register creates a new user with a hashed password. Username defaults to
// the email when absent. Duplicate username/email surfaces as
// common.ErrorAlreadyExists.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	if username == "" {
		username = email
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, common.ErrorInternal
	}

	user := &models.User{
		ID:       uuid.NewString(),
		Username: username,
		Email:    email,
		Password: hash,
	}

	repo := s.repomanager.Users(s.db)
	created, err := repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, common.ErrorInternal
	}
	return created, nil
}

// Authenticate verifies login (username or email) and password. Unknown user
// and wrong password are indistinguishable to the caller, so existence of an
// account cannot be probed. No state is touched on failure.
func (s *UserService) Authenticate(ctx context.Context, login, password string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	if !auth.CheckPassword(password, user.Password) {
		return nil, common.ErrorUnauthorized
	}

	return user, nil
}

// Login verifies credentials and returns a TokenPair. A still-valid refresh
// token is reused unchanged; otherwise a new one is created. The lookup and
// the insert run in one transaction that first locks the owner's user row,
// so concurrent logins cannot produce two live refresh tokens for the same
// user.
func (s *UserService) Login(ctx context.Context, login, password string) (*TokenPair, error) {
	user, err := s.Authenticate(ctx, login, password)
	if err != nil {
		return nil, err
	}

	access, err := s.generateAccessToken(user.ID)
	if err != nil {
		return nil, common.ErrorInternal
	}

	var refresh string
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		// The owner-row lock is what keeps session mutations serial per
		// user: with no live token row there is nothing else to lock, and
		// two concurrent logins would otherwise both see zero rows and
		// both insert.
		if err := s.repomanager.Users(tx).Lock(ctx, user.ID); err != nil {
			return err
		}

		repo := s.repomanager.RefreshTokens(tx)

		existing, err := repo.GetValid(ctx, user.ID)
		if err == nil {
			refresh = existing.Token
			return nil
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return err
		}

		created, err := s.createRefreshToken(ctx, tx, user.ID)
		if err != nil {
			return err
		}
		refresh = created.Token
		return nil
	}); err != nil {
		return nil, common.ErrorInternal
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh rotates the presented refresh token and mints a new access token.
// The old token is revoked and its replacement created in the same
// transaction, which locks the owner's user row first so a rotation cannot
// race a login into a second live token; on any failure nothing is mutated. userID is the subject of
// the caller's access token — a refresh value belonging to someone else is
// rejected as unauthorized, as are unknown and revoked values (a revoked
// value reappearing is the token-theft signal rotation exists for).
func (s *UserService) Refresh(ctx context.Context, userID, refreshValue string) (*TokenPair, error) {
	var pair *TokenPair

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Users(tx).Lock(ctx, userID); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrorUnauthorized
			}
			return err
		}

		repo := s.repomanager.RefreshTokens(tx)

		token, err := repo.FindByValue(ctx, refreshValue)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrorUnauthorized
			}
			return err
		}

		if token.IsRevoked || token.UserID != userID {
			return common.ErrorUnauthorized
		}
		if token.Expired() {
			return common.ErrRefreshTokenExpired
		}

		if err := repo.Revoke(ctx, token.ID); err != nil {
			return err
		}

		created, err := s.createRefreshToken(ctx, tx, token.UserID)
		if err != nil {
			return err
		}

		access, err := s.generateAccessToken(token.UserID)
		if err != nil {
			return err
		}

		pair = &TokenPair{AccessToken: access, RefreshToken: created.Token}
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) || errors.Is(err, common.ErrRefreshTokenExpired) {
			return nil, err
		}
		return nil, common.ErrorInternal
	}

	return pair, nil
}

// Logout revokes and soft-deletes the user's live refresh token. Logging out
// with no live token is not an error.
func (s *UserService) Logout(ctx context.Context, userID string) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Users(tx).Lock(ctx, userID); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return nil
			}
			return err
		}

		repo := s.repomanager.RefreshTokens(tx)

		token, err := repo.GetValid(ctx, userID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return nil
			}
			return err
		}

		if err := repo.Revoke(ctx, token.ID); err != nil {
			return err
		}
		return repo.SoftDelete(ctx, token.ID)
	})
	if err != nil {
		return common.ErrorInternal
	}
	return nil
}

// GetByID loads a user by id.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}
	return user, nil
}

// Patch applies a policy-gated change set. The target is patch.UserID when
// given, otherwise the actor's own record. The patch is applied as a pure
// function and persisted with a single update.
func (s *UserService) Patch(ctx context.Context, actor *models.User, patch models.UserPatch) (*models.User, error) {
	if patch.Empty() {
		return nil, common.ErrorValidation
	}

	targetID := actor.ID
	if patch.UserID != nil {
		targetID = *patch.UserID
	}

	if err := auth.AuthorizePatch(actor, targetID, patch); err != nil {
		return nil, err
	}

	if patch.Password != nil {
		hash, err := auth.HashPassword(*patch.Password, s.bcryptCost)
		if err != nil {
			return nil, common.ErrorInternal
		}
		patch.Password = &hash
	}

	repo := s.repomanager.Users(s.db)

	target, err := repo.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}

	updated := models.ApplyPatch(*target, patch)

	persisted, err := repo.Update(ctx, &updated)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) || errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, common.ErrorInternal
	}
	return persisted, nil
}

// Delete removes another user's account. Self-deletion and non-admin callers
// are denied by the policy.
func (s *UserService) Delete(ctx context.Context, actor *models.User, targetID string) error {
	if err := auth.AuthorizeDelete(actor, targetID); err != nil {
		return err
	}

	if err := s.repomanager.Users(s.db).Delete(ctx, targetID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return common.ErrorInternal
	}
	return nil
}

// --- helpers below ---

func (s *UserService) generateAccessToken(userID string) (string, error) {
	return auth.GenerateToken(userID, auth.TokenTypeAccess, s.jwtSecret, s.accessTokenValidityDuration)
}

func (s *UserService) createRefreshToken(ctx context.Context, tx dbx.DBTX, userID string) (*models.RefreshToken, error) {
	value, err := common.MakeRandHexString(refreshTokenBytes)
	if err != nil {
		return nil, err
	}
	return s.repomanager.RefreshTokens(tx).Create(ctx, userID, value, s.refreshTokenValidityDuration)
}
