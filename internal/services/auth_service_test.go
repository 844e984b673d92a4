package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/supabase-community/gotrue-go/types"

	"tixbay/internal/apperrors"
	"tixbay/internal/models"
)

type fakeAuthRepo struct {
	profiles map[uuid.UUID]*models.Profile

	signUpErr  error
	signInErr  error
	profileErr error
	upsertErr  error

	signedOut     []string
	upsertCalls   int
	resendEmails  []string
	nextUserID    uuid.UUID
	nextTokenResp *types.TokenResponse
}

func newFakeAuthRepo() *fakeAuthRepo {
	return &fakeAuthRepo{
		profiles:   map[uuid.UUID]*models.Profile{},
		nextUserID: uuid.New(),
	}
}

func (f *fakeAuthRepo) SignUp(ctx context.Context, email, password string, metadata map[string]interface{}) (uuid.UUID, string, error) {
	if f.signUpErr != nil {
		return uuid.Nil, "", f.signUpErr
	}
	return f.nextUserID, "access-" + f.nextUserID.String(), nil
}

func (f *fakeAuthRepo) SignIn(ctx context.Context, email, password string) (*types.TokenResponse, error) {
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	if f.nextTokenResp != nil {
		return f.nextTokenResp, nil
	}
	resp := &types.TokenResponse{}
	resp.AccessToken = "access-" + f.nextUserID.String()
	resp.User.ID = f.nextUserID
	return resp, nil
}

func (f *fakeAuthRepo) SignOut(ctx context.Context, accessToken string) error {
	f.signedOut = append(f.signedOut, accessToken)
	return nil
}

func (f *fakeAuthRepo) RefreshToken(ctx context.Context, refreshToken string) (*types.TokenResponse, error) {
	resp := &types.TokenResponse{}
	resp.AccessToken = "refreshed"
	return resp, nil
}

func (f *fakeAuthRepo) ResendVerification(ctx context.Context, email string) error {
	f.resendEmails = append(f.resendEmails, email)
	return nil
}

func (f *fakeAuthRepo) GetProfile(ctx context.Context, id uuid.UUID, accessToken string) (*models.Profile, error) {
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	p, ok := f.profiles[id]
	if !ok {
		return nil, apperrors.ErrProfileMissing
	}
	return p, nil
}

func (f *fakeAuthRepo) UpsertProfile(ctx context.Context, profile *models.Profile, accessToken string) error {
	f.upsertCalls++
	if f.upsertErr != nil {
		return f.upsertErr
	}
	if _, exists := f.profiles[profile.ID]; exists {
		return nil
	}
	f.profiles[profile.ID] = profile
	return nil
}

func testLogger() *slog.Logger {
	return slog.Default()
}

func TestRegisterCreatesProfileWithChosenRole(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := NewAuthService(repo, testLogger())

	res, err := svc.Register(context.Background(), RegisterRequest{
		Email:         "organizer@example.com",
		Password:      "Str0ngPass",
		Role:          models.RoleOrganizer,
		PreferredName: "Ama",
	})
	require.NoError(t, err)
	require.NotNil(t, res.Profile)

	assert.Equal(t, repo.nextUserID, res.UserID)
	assert.Equal(t, models.RoleOrganizer, res.Profile.Role)
	assert.Equal(t, ProfileStatusPending, res.Profile.Status)
	assert.Empty(t, repo.signedOut, "successful registration should not sign out")
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := NewAuthService(repo, testLogger())

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "admin@example.com",
		Password: "Str0ngPass",
		Role:     models.RoleAdmin,
	})
	require.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Empty(t, repo.profiles, "no identity should be created for an unassignable role")
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := NewAuthService(repo, testLogger())

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "weak@example.com",
		Password: "lowercase",
		Role:     models.RoleCustomer,
	})
	require.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Equal(t, http.StatusBadRequest, apperrors.Status(err), "a weak password is the caller's mistake, not a server failure")
}

func TestRegisterRollsBackSessionWhenProfileWriteFails(t *testing.T) {
	repo := newFakeAuthRepo()
	repo.upsertErr = fmt.Errorf("profiles table unavailable")
	svc := NewAuthService(repo, testLogger())

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "customer@example.com",
		Password: "Str0ngPass",
		Role:     models.RoleCustomer,
	})
	require.Error(t, err)
	require.Len(t, repo.signedOut, 1, "failed profile write must revoke the fresh session")
	assert.Equal(t, "access-"+repo.nextUserID.String(), repo.signedOut[0])
}

func TestLoginReturnsTokensAndProfile(t *testing.T) {
	repo := newFakeAuthRepo()
	repo.profiles[repo.nextUserID] = &models.Profile{
		ID:    repo.nextUserID,
		Email: "customer@example.com",
		Role:  models.RoleCustomer,
	}
	svc := NewAuthService(repo, testLogger())

	res, err := svc.Login(context.Background(), "customer@example.com", "Str0ngPass")
	require.NoError(t, err)
	assert.Equal(t, models.RoleCustomer, res.Profile.Role)
	assert.NotEmpty(t, res.Tokens.AccessToken)
}

func TestLoginSurfacesMissingProfileAndRevokesSession(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := NewAuthService(repo, testLogger())

	_, err := svc.Login(context.Background(), "ghost@example.com", "Str0ngPass")
	require.ErrorIs(t, err, apperrors.ErrProfileMissing)
	assert.Len(t, repo.signedOut, 1, "a session without a profile must be revoked")
}

func TestLoginPassesThroughInvalidCredentials(t *testing.T) {
	repo := newFakeAuthRepo()
	repo.signInErr = apperrors.ErrInvalidCredentials
	svc := NewAuthService(repo, testLogger())

	_, err := svc.Login(context.Background(), "customer@example.com", "Wr0ngPass1")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestReconcileAuthEventCreatesMissingProfileOnce(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := NewAuthService(repo, testLogger())
	userID := uuid.New()
	metadata := map[string]interface{}{"role": "organizer", "preferred_name": "Kofi"}

	first, err := svc.ReconcileAuthEvent(context.Background(), userID, "kofi@example.com", metadata, "tok")
	require.NoError(t, err)
	assert.Equal(t, models.RoleOrganizer, first.Role)

	second, err := svc.ReconcileAuthEvent(context.Background(), userID, "kofi@example.com", metadata, "tok")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, repo.upsertCalls, "reconcile must be idempotent")
}

func TestReconcileAuthEventHandlesWrappedMissingProfile(t *testing.T) {
	repo := newFakeAuthRepo()
	repo.profileErr = fmt.Errorf("profile lookup: %w", apperrors.ErrProfileMissing)
	svc := NewAuthService(repo, testLogger())

	profile, err := svc.ReconcileAuthEvent(context.Background(), uuid.New(), "ama@example.com",
		map[string]interface{}{"role": "customer"}, "tok")
	require.NoError(t, err, "a wrapped missing-profile error must still trigger reconciliation")
	assert.Equal(t, models.RoleCustomer, profile.Role)
	assert.Equal(t, 1, repo.upsertCalls)
}

func TestReconcileAuthEventDefaultsUnknownRoleToCustomer(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := NewAuthService(repo, testLogger())

	profile, err := svc.ReconcileAuthEvent(context.Background(), uuid.New(), "x@example.com",
		map[string]interface{}{"role": "admin"}, "tok")
	require.NoError(t, err)
	assert.Equal(t, models.RoleCustomer, profile.Role, "admin is not assignable from metadata")
}
