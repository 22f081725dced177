package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afterus/afterus-backend/internal/models"
	"github.com/afterus/afterus-backend/internal/testutil"
)

func newTestService(t *testing.T) (*Service, *testutil.Store) {
	t.Helper()
	store := testutil.NewStore()
	logger, _ := testutil.Logger()
	return NewService(store.Users(), store.Sessions(), NewJWTService("secret", "afterus"), logger), store
}

func TestRegister_LoginAndValidate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, " Ana@Example.com ", "Ana", "abc123", ClientInfo{IPAddress: "127.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", res.User.Email)
	assert.Equal(t, "bearer", res.TokenType)

	user, claims, err := svc.ValidateAccessToken(ctx, res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, user.ID)
	assert.Equal(t, "Ana", claims.Name)

	login, err := svc.Login(ctx, "ana@example.com", "abc123", ClientInfo{})
	require.NoError(t, err)
	assert.NotEqual(t, res.AccessToken, login.AccessToken)

	_, err = svc.Login(ctx, "ana@example.com", "wrong1", ClientInfo{})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody@example.com", "abc123", ClientInfo{})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignUp_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "a@b.c", "A", "abc")
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	_, err = svc.SignUp(ctx, "not-an-email", "A", "abc123")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.SignUp(ctx, "a@b.c", "A", "abc123")
	require.NoError(t, err)
	_, err = svc.SignUp(ctx, "A@B.C", "B", "abc123")
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestSignUp_RunsHooksAndSurvivesFailures(t *testing.T) {
	svc, _ := newTestService(t)
	var seen []string
	svc.OnSignup(func(_ context.Context, u *models.User) error {
		seen = append(seen, u.Name)
		return errors.New("seed failed")
	})

	_, err := svc.SignUp(context.Background(), "a@b.c", "Ana", "abc123")
	require.NoError(t, err)
	assert.Equal(t, []string{"Ana"}, seen)
}

func TestRefreshAndLogout(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, "a@b.c", "Ana", "abc123", ClientInfo{})
	require.NoError(t, err)

	_, err = svc.RefreshToken(ctx, res.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	refreshed, err := svc.RefreshToken(ctx, res.RefreshToken)
	require.NoError(t, err)

	// the old pair is superseded
	_, _, err = svc.ValidateAccessToken(ctx, res.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = svc.RefreshToken(ctx, res.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, claims, err := svc.ValidateAccessToken(ctx, refreshed.AccessToken)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, claims.SessionID))
	_, _, err = svc.ValidateAccessToken(ctx, refreshed.AccessToken)
	assert.ErrorIs(t, err, ErrSessionExpired)

	removed, err := svc.CleanupExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
	assert.Zero(t, store.SessionCount())
}

func TestUpdateProfileAndChangePassword(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.SignUp(ctx, "a@b.c", "Ana", "abc123")
	require.NoError(t, err)

	ex := "Sam"
	updated, err := svc.UpdateProfile(ctx, user.ID, models.ProfileUpdate{ExName: &ex})
	require.NoError(t, err)
	assert.Equal(t, "Ana", updated.Name)
	require.NotNil(t, updated.ExName)
	assert.Equal(t, "Sam", *updated.ExName)

	blank := " "
	_, err = svc.UpdateProfile(ctx, user.ID, models.ProfileUpdate{Name: &blank})
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.ErrorIs(t, svc.ChangePassword(ctx, user.ID, "nope12", "xyz789"), ErrInvalidCredentials)
	require.NoError(t, svc.ChangePassword(ctx, user.ID, "abc123", "xyz789"))

	_, err = svc.Login(ctx, "a@b.c", "xyz789", ClientInfo{})
	assert.NoError(t, err)
}

func TestResetPassword(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "a@b.c", "Ana", "abc123")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.ResetPassword(ctx, "missing@b.c", "xyz789"), ErrUserNotFound)
	assert.ErrorIs(t, svc.ResetPassword(ctx, "a@b.c", "short"), ErrPasswordTooShort)
	require.NoError(t, svc.ResetPassword(ctx, " A@B.C ", "xyz789"))

	_, err = svc.Login(ctx, "a@b.c", "xyz789", ClientInfo{})
	assert.NoError(t, err)
}
