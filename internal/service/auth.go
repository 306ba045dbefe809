// Package service contains the business logic layer of the application.
//
// The layering follows the usual shape:
//
//	Handler (HTTP)  → parses requests, writes responses
//	Service         → validates, enforces rules, orchestrates
//	Repository      → reads/writes the database
//
// AuthService is the sign-in orchestrator: it resolves a credential or
// OAuth attempt into exactly one persisted identity, issues the session
// token, and rebuilds the session's user-visible view on every read.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/auth"
	"github.com/sakif/portfolio/internal/model"
	"github.com/sakif/portfolio/internal/repository"
)

// AuthService handles the authentication business logic.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the resolved identity and the issued session token so
// the HTTP handler can set the cookie and respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// Profile is the user-visible overlay a hydrated session carries.
type Profile struct {
	Username string `json:"username"`
	Image    string `json:"image"`
	Provider string `json:"provider"`
}

// Session is the fixed-shape record a request's token resolves to.
//
// Profile == nil means token-only: the identity record behind the token
// could not be loaded, and the session exposes just the token's minimal
// claims. Profile != nil means hydrated. There is no third state and
// nothing is mutated after HydrateSession returns.
type Session struct {
	UserID  string   `json:"id"`
	Email   string   `json:"email"`
	Profile *Profile `json:"profile,omitempty"`
}

// Hydrated reports whether the profile overlay is present.
func (s *Session) Hydrated() bool {
	return s != nil && s.Profile != nil
}

// Authenticate resolves an email + plaintext password into an identity and
// a session token.
//
// Every failure mode — unknown email, an OAuth-only account with no
// password hash, bcrypt mismatch — returns the same Unauthenticated error
// with the same message, so a caller can't probe which emails exist.
// Store faults propagate as wrapped errors and surface as a 500.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperror.Unauthenticated("invalid email or password")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthenticated("invalid email or password")
		}
		return nil, fmt.Errorf("service/auth: looking up user by email: %w", err)
	}

	// An account created through OAuth has no hash; a password sign-in
	// against it always fails (it is not silently converted).
	if user.PasswordHash == "" {
		return nil, apperror.Unauthenticated("invalid email or password")
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.Unauthenticated("invalid email or password")
	}

	token, err := s.tokens.Generate(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	s.logger.Info("user authenticated",
		slog.String("userID", user.ID),
		slog.String("provider", user.Provider),
	)

	return &AuthResult{User: user, Token: token}, nil
}

// Register creates a manual identity with a hashed password and signs it in.
//
// This is the only path that sets a password hash, which together with
// LinkOrCreateOAuthIdentity (which never sets one) keeps the invariant
// `hash present ⇔ provider == manual` true for every row.
func (s *AuthService) Register(ctx context.Context, email, username, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	username = strings.TrimSpace(username)

	if email == "" || !strings.Contains(email, "@") {
		return nil, apperror.ValidationFailed("email", "a valid email is required")
	}
	if username == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}
	if len(password) < 8 {
		return nil, apperror.ValidationFailed("password", "password must be at least 8 characters")
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", err.Error())
	}

	user := &model.User{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		Provider:     model.ProviderManual,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, &apperror.AppError{
				Err:     apperror.ErrConflict,
				Message: "an account with this email already exists",
				Field:   "email",
			}
		}
		return nil, fmt.Errorf("service/auth: creating user: %w", err)
	}

	token, err := s.tokens.Generate(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	s.logger.Info("user registered", slog.String("userID", user.ID))

	return &AuthResult{User: user, Token: token}, nil
}

// LinkOrCreateOAuthIdentity resolves a Google profile into an identity and
// a session token.
//
// Lookup is by email OR external id, so a returning account is recognised
// even after an email change on the provider side. Outcomes:
//
//   - no match            → create an oauth identity (no password hash;
//     username falls back to the email local-part, image to the default)
//   - match, provider not oauth → refuse with ProviderMismatch. A manual
//     account is never silently annexed by an OAuth attempt on the same
//     email, and nothing on the account is mutated.
//   - match, provider oauth → refresh username/image if the provider
//     reports new values, then sign in.
func (s *AuthService) LinkOrCreateOAuthIdentity(ctx context.Context, profile *auth.GoogleUser) (*AuthResult, error) {
	if profile == nil {
		return nil, fmt.Errorf("service/auth: OAuth profile must not be nil")
	}

	user, err := s.users.GetByEmailOrProviderID(ctx, profile.Email, profile.ID)
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		user = &model.User{
			Email:      profile.Email,
			Username:   oauthUsername(profile),
			Image:      profile.Picture,
			Provider:   model.ProviderOAuth,
			ProviderID: profile.ID,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("service/auth: creating OAuth user: %w", err)
		}
		s.logger.Info("oauth identity created",
			slog.String("userID", user.ID),
		)

	case err != nil:
		return nil, fmt.Errorf("service/auth: looking up OAuth user: %w", err)

	case user.Provider != model.ProviderOAuth:
		return nil, apperror.ProviderMismatch(profile.Email)

	default:
		// Returning OAuth account: keep the stored profile fresh.
		username := profile.Name
		if username == "" {
			username = user.Username
		}
		image := profile.Picture
		if image == "" {
			image = user.Image
		}
		if username != user.Username || image != user.Image {
			if err := s.users.UpdateProfile(ctx, user.ID, username, image); err != nil {
				return nil, fmt.Errorf("service/auth: refreshing OAuth profile: %w", err)
			}
			user.Username = username
			user.Image = image
		}
	}

	token, err := s.tokens.Generate(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	s.logger.Info("user authenticated via Google", slog.String("userID", user.ID))

	return &AuthResult{User: user, Token: token}, nil
}

// HydrateSession builds the session view for a validated token.
//
// It re-fetches the identity on every call and overlays the current
// username, image and provider tag. If the identity record is gone — or
// the store is briefly unavailable — the overlay is skipped and the caller
// gets a token-only session rather than a hard failure: a stale profile
// beats a broken page. Calling it twice with no intervening profile change
// yields identical results.
func (s *AuthService) HydrateSession(ctx context.Context, claims *auth.Claims) *Session {
	session := &Session{
		UserID: claims.Subject,
		Email:  claims.Email,
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			s.logger.Warn("session hydration skipped",
				slog.String("userID", claims.Subject),
				slog.String("error", err.Error()),
			)
		}
		return session
	}

	session.Profile = &Profile{
		Username: user.Username,
		Image:    user.Image,
		Provider: user.Provider,
	}
	return session
}

// oauthUsername picks the display name for a new OAuth identity: the
// provider-reported name, or the email local-part when the name is hidden.
func oauthUsername(profile *auth.GoogleUser) string {
	if profile.Name != "" {
		return profile.Name
	}
	local, _, _ := strings.Cut(profile.Email, "@")
	return local
}
