package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/bookpulse/bookpulse/internal/shared"
)

const bcryptCost = 12

// Store is the persistence surface the service depends on.
type Store interface {
	CreateUser(ctx context.Context, email, username, passwordHash string, firstName, lastName *string) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByID(ctx context.Context, id uuid.UUID) (User, error)
}

// Claims is the JWT payload carried by access tokens.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// Service wraps authentication business rules.
type Service struct {
	store  Store
	secret []byte
	ttl    time.Duration
	clock  func() time.Time
}

// NewService constructs a Service.
func NewService(store Store, secret string, ttl time.Duration) *Service {
	return &Service{
		store:  store,
		secret: []byte(secret),
		ttl:    ttl,
		clock:  func() time.Time { return time.Now().UTC() },
	}
}

// Register creates a user with a bcrypt password hash and returns the
// user plus a fresh access token.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (User, string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return User{}, "", fmt.Errorf("auth: hash password: %w", err)
	}
	user, err := s.store.CreateUser(ctx, req.Email, req.Username, string(hash), req.FirstName, req.LastName)
	if err != nil {
		return User{}, "", err
	}
	token, err := s.IssueToken(user)
	if err != nil {
		return User{}, "", err
	}
	return user, token, nil
}

// Authenticate validates email/password credentials and returns the
// user plus a fresh access token. All failure modes collapse into
// ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, req LoginRequest) (User, string, error) {
	user, err := s.store.FindByEmail(ctx, req.Email)
	if err != nil {
		return User{}, "", shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return User{}, "", shared.ErrInvalidCredentials
	}
	token, err := s.IssueToken(user)
	if err != nil {
		return User{}, "", err
	}
	return user, token, nil
}

// IssueToken signs an HS256 access token for the user.
func (s *Service) IssueToken(user User) (string, error) {
	now := s.clock()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Email: user.Email,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return token, nil
}

// VerifyToken parses and validates an access token, returning the user
// ID it was issued to.
func (s *Service) VerifyToken(tokenString string) (uuid.UUID, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return uuid.Nil, shared.ErrUnauthorized
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return uuid.Nil, shared.ErrUnauthorized
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, shared.ErrUnauthorized
	}
	return id, nil
}

// Profile returns the user record behind a verified token.
func (s *Service) Profile(ctx context.Context, userID uuid.UUID) (User, error) {
	return s.store.FindByID(ctx, userID)
}
