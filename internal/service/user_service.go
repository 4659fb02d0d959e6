package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"finemed-server/internal/apperror"
	"finemed-server/internal/entity"
	"finemed-server/internal/repository"
)

// UserService authenticates registered buyers.
type UserService struct {
	users  repository.UserRepository
	rdb    *redis.Client
	secret []byte
}

// NewUserService creates a new instance of UserService. The Redis client is
// optional; without it tokens are simply not cached.
func NewUserService(users repository.UserRepository, rdb *redis.Client, secret []byte) *UserService {
	return &UserService{users: users, rdb: rdb, secret: secret}
}

type JwtCustomClaims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Register creates a buyer with a bcrypt password hash.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*entity.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &entity.User{
		Name:     name,
		Email:    strings.ToLower(strings.TrimSpace(email)),
		Password: string(hash),
	}
	created, err := s.users.Create(ctx, user)
	if err != nil {
		logger.Error().Err(err).Msg("Error creating user")
		return nil, err
	}
	return created, nil
}

// Login validates credentials and issues a 24h JWT. The token is cached in
// Redis keyed by email so sessions can be revoked centrally.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return "", apperror.New(http.StatusUnauthorized, "Invalid email or password")
	}
	if err != nil {
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", apperror.New(http.StatusUnauthorized, "Invalid email or password")
	}

	claims := &JwtCustomClaims{
		Name:  user.Name,
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", err
	}

	if s.rdb != nil {
		key := fmt.Sprintf("session:%s", user.Email)
		if err := s.rdb.Set(ctx, key, signed, 24*time.Hour).Err(); err != nil {
			logger.Error().Err(err).Msg("Error caching session token")
		}
	}
	return signed, nil
}
