package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/afterus/afterus-backend/internal/models"
	"github.com/afterus/afterus-backend/internal/repository"
)

var (
	// ErrInvalidCredentials is returned when login credentials are invalid
	ErrInvalidCredentials = errors.New("incorrect email or password")
	// ErrUserNotFound is returned when a user is not found
	ErrUserNotFound = errors.New("user not found")
	// ErrUserInactive is returned when a user is inactive
	ErrUserInactive = errors.New("user account is inactive")
	// ErrEmailAlreadyExists is returned when email is already registered
	ErrEmailAlreadyExists = errors.New("email already registered")
	// ErrInvalidInput is returned when signup fields are missing or malformed
	ErrInvalidInput = errors.New("email and name are required")
	// ErrSessionNotFound is returned when a session is not found
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired is returned when a session is expired or revoked
	ErrSessionExpired = errors.New("session expired")
)

// SignupHook runs after a user row is created. A failing hook is logged and
// does not undo the signup.
type SignupHook func(ctx context.Context, user *models.User) error

// ClientInfo describes where a login came from
type ClientInfo struct {
	IPAddress  string
	UserAgent  string
	DeviceName string
}

// AuthResult is a user plus a fresh token pair
type AuthResult struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int          `json:"expires_in"`
}

// Service handles authentication operations
type Service struct {
	userRepo    repository.UserRepository
	sessionRepo repository.UserSessionRepository
	jwt         *JWTService
	logger      logrus.FieldLogger
	hooks       []SignupHook
}

// NewService creates a new auth service
func NewService(userRepo repository.UserRepository, sessionRepo repository.UserSessionRepository, jwt *JWTService, logger logrus.FieldLogger) *Service {
	return &Service{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		jwt:         jwt,
		logger:      logger.WithField("component", "auth"),
	}
}

// OnSignup registers a hook run for every new account
func (s *Service) OnSignup(hook SignupHook) {
	s.hooks = append(s.hooks, hook)
}

// SignUp registers a new user
func (s *Service) SignUp(ctx context.Context, email, name, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)
	if name == "" || !strings.Contains(email, "@") {
		return nil, ErrInvalidInput
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	passwordHash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	for _, hook := range s.hooks {
		if err := hook(ctx, user); err != nil {
			s.logger.WithError(err).WithField("user_id", user.ID).Warn("Signup hook failed")
		}
	}

	return user, nil
}

// Register signs a user up and logs them straight in
func (s *Service) Register(ctx context.Context, email, name, password string, client ClientInfo) (*AuthResult, error) {
	user, err := s.SignUp(ctx, email, name, password)
	if err != nil {
		return nil, err
	}
	return s.startSession(ctx, user, client)
}

// Login authenticates a user and creates a session
func (s *Service) Login(ctx context.Context, email, password string, client ClientInfo) (*AuthResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	result, err := s.startSession(ctx, user, client)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).Warn("Failed to update last login")
	}

	return result, nil
}

func (s *Service) startSession(ctx context.Context, user *models.User, client ClientInfo) (*AuthResult, error) {
	now := time.Now()
	session := &models.UserSession{
		ID:               uuid.New(),
		UserID:           user.ID,
		ExpiresAt:        now.Add(AccessTokenTTL),
		RefreshExpiresAt: now.Add(RefreshTokenTTL),
		IPAddress:        client.IPAddress,
		UserAgent:        client.UserAgent,
		DeviceName:       client.DeviceName,
		CreatedAt:        now,
		LastActivity:     now,
	}

	accessToken, refreshToken, err := s.jwt.GenerateTokenPair(
		user.ID.String(), user.Email, user.Name, session.ID.String(),
	)
	if err != nil {
		return nil, err
	}

	session.TokenHash = HashToken(accessToken)
	session.RefreshTokenHash = HashToken(refreshToken)

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &AuthResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    int(AccessTokenTTL.Seconds()),
	}, nil
}

// RefreshToken rotates both tokens of the session behind refreshToken
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	session, err := s.loadSession(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}

	if session.RefreshTokenHash != HashToken(refreshToken) {
		return nil, ErrInvalidToken
	}
	if session.RefreshExpiresAt.Before(time.Now()) {
		return nil, ErrSessionExpired
	}

	user, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	accessToken, newRefreshToken, err := s.jwt.GenerateTokenPair(
		user.ID.String(), user.Email, user.Name, session.ID.String(),
	)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	session.TokenHash = HashToken(accessToken)
	session.RefreshTokenHash = HashToken(newRefreshToken)
	session.ExpiresAt = now.Add(AccessTokenTTL)
	session.RefreshExpiresAt = now.Add(RefreshTokenTTL)
	session.LastActivity = now

	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return nil, err
	}

	return &AuthResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		TokenType:    "bearer",
		ExpiresIn:    int(AccessTokenTTL.Seconds()),
	}, nil
}

// Logout revokes a session
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return err
	}

	now := time.Now()
	session.RevokedAt = &now
	return s.sessionRepo.Update(ctx, session)
}

// loadSession fetches a live (not revoked) session
func (s *Service) loadSession(ctx context.Context, sessionID string) (*models.UserSession, error) {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	session, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.RevokedAt != nil {
		return nil, ErrSessionExpired
	}
	return session, nil
}

// ValidateAccessToken validates an access token and returns the user
func (s *Service) ValidateAccessToken(ctx context.Context, token string) (*models.User, *JWTClaims, error) {
	claims, err := s.jwt.ValidateAccessToken(token)
	if err != nil {
		return nil, nil, err
	}

	session, err := s.loadSession(ctx, claims.SessionID)
	if err != nil {
		return nil, nil, err
	}
	if session.TokenHash != HashToken(token) {
		// superseded by a refresh
		return nil, nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, nil, ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, err
	}
	if !user.IsActive {
		return nil, nil, ErrUserInactive
	}

	session.LastActivity = time.Now()
	if err := s.sessionRepo.Update(ctx, session); err != nil {
		s.logger.WithError(err).WithField("session_id", session.ID).Warn("Failed to update session activity")
	}

	return user, claims, nil
}

// CleanupExpiredSessions removes expired and revoked sessions
func (s *Service) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	return s.sessionRepo.DeleteExpired(ctx, time.Now())
}

// GetUser retrieves a user by ID
func (s *Service) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// GetUserByEmail looks a user up by normalized email
func (s *Service) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// UpdateProfile applies the provided profile fields
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, update models.ProfileUpdate) (*models.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		return nil, ErrInvalidInput
	}
	update.Apply(user)

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword changes a user's password
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	if !CheckPassword(currentPassword, user.PasswordHash) {
		return ErrInvalidCredentials
	}
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	newHash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.userRepo.UpdatePassword(ctx, userID, newHash)
}

// ResetPassword sets a new password without the current one. It is an admin
// operation and never exposed over HTTP.
func (s *Service) ResetPassword(ctx context.Context, email, newPassword string) error {
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	user, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.userRepo.UpdatePassword(ctx, user.ID, hash)
}
