package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"shopvision/internal/domain"
	"shopvision/internal/repos"
	"shopvision/internal/validate"
)

// Claims carried by every access token.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService struct {
	Users  *repos.UserRepo
	Secret []byte
	TTL    time.Duration
}

func NewAuthService(users *repos.UserRepo, secret string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthService{Users: users, Secret: []byte(secret), TTL: ttl}
}

// Authenticate checks credentials and returns who the caller is.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (domain.Identity, *domain.User, error) {
	u, err := s.Users.ByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Identity{}, nil, ErrBadCreds
		}
		return domain.Identity{}, nil, storeErr("users.by_email", err, nil)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return domain.Identity{}, nil, ErrBadCreds
	}
	return domain.Identity{ID: u.ID, Role: u.Role}, u, nil
}

// Login authenticates and issues a signed token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	_, u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return "", nil, err
	}
	tok, err := s.IssueToken(u)
	if err != nil {
		return "", nil, err
	}
	return tok, u, nil
}

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	username, ok := validate.Username(in.Username)
	if !ok {
		return nil, invalid("username must be 3-30 letters, digits, dots, dashes or underscores")
	}
	email, ok := validate.Email(in.Email)
	if !ok {
		return nil, invalid("email is invalid")
	}
	if !validate.Password(in.Password) {
		return nil, invalid("password must be 8-20 chars with upper, lower, digit and symbol")
	}
	role := domain.RoleCustomer
	if in.Role != "" {
		r, ok := validate.Role(in.Role)
		if !ok {
			return nil, invalid("role must be %q or %q", domain.RoleSeller, domain.RoleCustomer)
		}
		role = r
	}

	if _, err := s.Users.ByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, storeErr("users.by_email", err, nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := domain.User{
		ID:        uuid.NewString(),
		Username:  username,
		Email:     email,
		Hash:      string(hash),
		Role:      role,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	if err := s.Users.Create(ctx, u); err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, repos.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, storeErr("users.create", err, nil)
	}
	return &u, nil
}

func (s *AuthService) IssueToken(u *domain.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: u.ID,
		Email:  u.Email,
		Role:   u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
}

// ParseToken verifies signature and expiry and returns the claims.
func (s *AuthService) ParseToken(raw string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.Secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrBadCreds
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrBadCreds
	}
	return claims, nil
}
