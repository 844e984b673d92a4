package models

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/supabase-community/gotrue-go/types"

	"tixbay/internal/apperrors"
)

type AuthRepo interface {
	// SignUp creates the auth identity with role/name metadata and returns
	// the new identity id plus the session access token when the backend
	// issued one (it does not when email confirmation is pending).
	SignUp(ctx context.Context, email, password string, metadata map[string]interface{}) (uuid.UUID, string, error)
	SignIn(ctx context.Context, email, password string) (*types.TokenResponse, error)
	SignOut(ctx context.Context, accessToken string) error
	RefreshToken(ctx context.Context, refreshToken string) (*types.TokenResponse, error)
	ResendVerification(ctx context.Context, email string) error
	GetProfile(ctx context.Context, id uuid.UUID, accessToken string) (*Profile, error)
	UpsertProfile(ctx context.Context, profile *Profile, accessToken string) error
}

func (su *SupabaseRepo) SignUp(ctx context.Context, email, password string, metadata map[string]interface{}) (uuid.UUID, string, error) {
	res, err := su.supabaseClient.Auth.Signup(types.SignupRequest{
		Email:    email,
		Password: password,
		Data:     metadata,
	})
	if err != nil {
		return uuid.Nil, "", apperrors.Translate(err)
	}
	return res.ID, res.AccessToken, nil
}

func (su *SupabaseRepo) SignIn(ctx context.Context, email, password string) (*types.TokenResponse, error) {
	resp, err := su.supabaseClient.Auth.SignInWithEmailPassword(email, password)
	if err != nil {
		return nil, apperrors.Translate(err)
	}
	return resp, nil
}

// SignOut invalidates the session with the backend. Callers clear their own
// local state before invoking this, so a failure here never leaves stale
// session data visible.
func (su *SupabaseRepo) SignOut(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return nil
	}
	if err := su.supabaseClient.Auth.WithToken(accessToken).Logout(); err != nil {
		return apperrors.Backend(err)
	}
	return nil
}

func (su *SupabaseRepo) RefreshToken(ctx context.Context, refreshToken string) (*types.TokenResponse, error) {
	resp, err := su.supabaseClient.Auth.RefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.Translate(err)
	}
	return resp, nil
}

func (su *SupabaseRepo) ResendVerification(ctx context.Context, email string) error {
	err := su.supabaseClient.Auth.OTP(types.OTPRequest{
		Email:      email,
		CreateUser: false,
	})
	if err != nil {
		return apperrors.Translate(err)
	}
	return nil
}

func (su *SupabaseRepo) GetProfile(ctx context.Context, id uuid.UUID, accessToken string) (*Profile, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("invalid profile ID")
	}

	client, err := su.client(accessToken)
	if err != nil {
		return nil, apperrors.Backend(err)
	}

	raw, _, err := client.From(ProfilesTable).
		Select("id,email,role,preferred_name,status,created_at,updated_at", "", false).
		Eq("id", id.String()).
		Execute()
	if err != nil {
		return nil, apperrors.Backend(err)
	}

	// Supabase returns an array even for single results.
	var profiles []Profile
	if err := json.Unmarshal(raw, &profiles); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile rows: %v", err)
	}

	if len(profiles) == 0 {
		return nil, apperrors.ErrProfileMissing
	}

	return &profiles[0], nil
}

// UpsertProfile is idempotent on the profile id: creating a profile that
// already exists leaves the existing row in place.
func (su *SupabaseRepo) UpsertProfile(ctx context.Context, profile *Profile, accessToken string) error {
	if err := Validate.Struct(profile); err != nil {
		return err
	}

	client, err := su.client(accessToken)
	if err != nil {
		return apperrors.Backend(err)
	}

	now := time.Now()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now

	row := map[string]interface{}{
		"id":             profile.ID,
		"email":          profile.Email,
		"role":           profile.Role,
		"preferred_name": profile.PreferredName,
		"status":         profile.Status,
		"created_at":     profile.CreatedAt,
		"updated_at":     profile.UpdatedAt,
	}

	_, _, err = client.From(ProfilesTable).
		Insert(row, true, "id", "", "exact").
		Execute()
	if err != nil {
		return apperrors.Translate(err)
	}
	return nil
}
