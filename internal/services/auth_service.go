package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/supabase-community/gotrue-go/types"

	"tixbay/internal/apperrors"
	"tixbay/internal/helpers"
	"tixbay/internal/models"
)

// ProfileStatusPending marks an account that signed up but has not
// confirmed its email yet.
const ProfileStatusPending = "pending_verification"

type AuthService struct {
	authRepo models.AuthRepo
	logger   *slog.Logger
}

func NewAuthService(authRepo models.AuthRepo, logger *slog.Logger) *AuthService {
	return &AuthService{
		authRepo: authRepo,
		logger:   logger,
	}
}

type RegisterRequest struct {
	Email         string      `json:"email" validate:"required,email"`
	Password      string      `json:"password" validate:"required,min=8"`
	Role          models.Role `json:"role" validate:"required"`
	PreferredName string      `json:"preferred_name"`
}

type RegisterResult struct {
	UserID  uuid.UUID `json:"user_id"`
	Profile *models.Profile
}

// Register creates the auth identity and its profile row in one logical
// step. If the profile write fails the identity's session is revoked so no
// half-registered account keeps a live session.
func (as *AuthService) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	if err := models.Validate.Struct(req); err != nil {
		return nil, apperrors.Validation("invalid registration request: %v", err)
	}
	if !req.Role.IsAssignable() {
		return nil, apperrors.Validation("role %q cannot be chosen at registration", req.Role)
	}
	if !helpers.IsPasswordStrong(req.Password) {
		return nil, apperrors.Validation("password is not strong enough")
	}

	metadata := map[string]interface{}{
		"role":           req.Role,
		"preferred_name": req.PreferredName,
	}
	userID, accessToken, err := as.authRepo.SignUp(ctx, req.Email, req.Password, metadata)
	if err != nil {
		return nil, err
	}

	profile := &models.Profile{
		ID:            userID,
		Email:         req.Email,
		Role:          req.Role,
		PreferredName: req.PreferredName,
		Status:        ProfileStatusPending,
	}
	if err := as.authRepo.UpsertProfile(ctx, profile, accessToken); err != nil {
		// Roll back: without a profile the account is unusable, so revoke
		// the session the signup just created.
		if signOutErr := as.authRepo.SignOut(ctx, accessToken); signOutErr != nil {
			as.logger.Error("Rollback sign-out after profile failure",
				"user_id", userID,
				"error", signOutErr,
			)
		}
		return nil, err
	}

	return &RegisterResult{UserID: userID, Profile: profile}, nil
}

type LoginResult struct {
	Tokens  *types.TokenResponse
	Profile *models.Profile
}

// Login authenticates and loads the caller's profile. An identity without a
// profile row is treated as a broken account: the fresh session is revoked
// and ErrProfileMissing is returned.
func (as *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if err := models.Validate.Var(email, "required,email"); err != nil {
		return nil, apperrors.Validation("invalid email format: %v", err)
	}
	if err := models.Validate.Var(password, "required,min=8"); err != nil {
		return nil, apperrors.Validation("invalid password format: %v", err)
	}

	tokens, err := as.authRepo.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}

	profile, err := as.authRepo.GetProfile(ctx, tokens.User.ID, tokens.AccessToken)
	if err != nil {
		if signOutErr := as.authRepo.SignOut(ctx, tokens.AccessToken); signOutErr != nil {
			as.logger.Error("Sign-out after profile lookup failure",
				"user_id", tokens.User.ID,
				"error", signOutErr,
			)
		}
		return nil, err
	}

	return &LoginResult{Tokens: tokens, Profile: profile}, nil
}

// Logout revokes the session server-side. The handler clears cookies before
// calling this, so a backend failure only means the token dies at expiry;
// the caller is logged out either way and no error is surfaced.
func (as *AuthService) Logout(ctx context.Context, accessToken string) {
	if err := as.authRepo.SignOut(ctx, accessToken); err != nil {
		as.logger.Warn("Backend sign-out failed, session will lapse at expiry", "error", err)
	}
}

func (as *AuthService) RefreshToken(refreshToken string) (*types.TokenResponse, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("refresh token is required")
	}
	response, err := as.authRepo.RefreshToken(context.Background(), refreshToken)
	if err != nil {
		return nil, fmt.Errorf("token refresh failed: %v", err)
	}
	return response, nil
}

func (as *AuthService) ResendVerification(ctx context.Context, email string) error {
	if !helpers.IsValidEmail(email) {
		return apperrors.Validation("invalid email format")
	}
	return as.authRepo.ResendVerification(ctx, email)
}

func (as *AuthService) Profile(ctx context.Context, userID uuid.UUID, accessToken string) (*models.Profile, error) {
	return as.authRepo.GetProfile(ctx, userID, accessToken)
}

// ReconcileAuthEvent lazily creates the profile row for an identity that
// signed up but whose profile write was lost (for example a crash between
// signup and profile creation). It is idempotent: an existing profile is
// left untouched.
func (as *AuthService) ReconcileAuthEvent(ctx context.Context, userID uuid.UUID, email string, metadata map[string]interface{}, accessToken string) (*models.Profile, error) {
	profile, err := as.authRepo.GetProfile(ctx, userID, accessToken)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, apperrors.ErrProfileMissing) {
		return nil, err
	}

	role := models.RoleCustomer
	if r, ok := metadata["role"].(string); ok && models.Role(r).IsAssignable() {
		role = models.Role(r)
	}
	preferredName, _ := metadata["preferred_name"].(string)

	profile = &models.Profile{
		ID:            userID,
		Email:         email,
		Role:          role,
		PreferredName: preferredName,
		Status:        ProfileStatusPending,
		CreatedAt:     time.Now(),
	}
	if err := as.authRepo.UpsertProfile(ctx, profile, accessToken); err != nil {
		return nil, err
	}

	as.logger.Info("Reconciled missing profile from auth metadata",
		"user_id", userID,
		"role", role,
	)
	return profile, nil
}
