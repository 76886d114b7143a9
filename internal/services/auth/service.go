package auth

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/BearBump/CarTrack/internal/apperr"
	"github.com/BearBump/CarTrack/internal/models"
	"github.com/BearBump/CarTrack/internal/validation"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 10

type Repository interface {
	CreateUser(ctx context.Context, u models.User) (*models.User, error)
	GetUser(ctx context.Context, id uint64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	DeleteUser(ctx context.Context, id uint64) error
}

// Throttle считает неудачные входы и блокирует ключ (Redis).
type Throttle interface {
	Locked(ctx context.Context, key string) (time.Duration, error)
	Fail(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}

type Claims struct {
	Role models.Role `json:"role"`
	jwt.RegisteredClaims
}

type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

type Service struct {
	repo     Repository
	throttle Throttle
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

func New(repo Repository, throttle Throttle, secret string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Service{
		repo:     repo,
		throttle: throttle,
		secret:   []byte(secret),
		ttl:      ttl,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) CreateUser(ctx context.Context, in models.UserCreateInput) (*models.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if !in.Role.Valid() {
		return nil, apperr.Validation("role must be ADMIN or STAFF")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}
	u, err := s.repo.CreateUser(ctx, models.User{
		Email:        in.Email,
		Name:         in.Name,
		PasswordHash: string(hash),
		Role:         in.Role,
	})
	if err != nil {
		return nil, err
	}
	slog.Info("user created", "user_id", u.ID, "role", string(u.Role))
	return u, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.repo.ListUsers(ctx)
}

// DeleteUser: удалить самого себя нельзя, иначе можно остаться без администратора.
func (s *Service) DeleteUser(ctx context.Context, id uint64, actor models.Actor) error {
	if actor.UserID == id {
		return apperr.Conflict("cannot delete yourself")
	}
	return s.repo.DeleteUser(ctx, id)
}

// Login проверяет пароль и выдаёт JWT. Ответ на неизвестный email и на
// неверный пароль одинаковый.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	key := strings.ToLower(strings.TrimSpace(email))
	if key == "" || password == "" {
		return nil, apperr.Validation("email and password are required")
	}

	if s.throttle != nil {
		left, err := s.throttle.Locked(ctx, key)
		if err != nil {
			slog.Warn("login throttle check failed", "error", err.Error())
		} else if left > 0 {
			return nil, apperr.RateLimited("too many failed attempts, retry in %d seconds", int(left.Seconds())+1)
		}
	}

	u, err := s.repo.GetUserByEmail(ctx, key)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}
	if u == nil || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		s.fail(ctx, key)
		return nil, apperr.Unauthorized("invalid email or password")
	}

	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, key); err != nil {
			slog.Warn("login throttle reset failed", "error", err.Error())
		}
	}

	now := s.now()
	exp := now.Add(s.ttl)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(u.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}).SignedString(s.secret)
	if err != nil {
		return nil, errors.Wrap(err, "sign token")
	}
	slog.Info("user logged in", "user_id", u.ID)
	return &LoginResult{Token: token, ExpiresAt: exp, User: u}, nil
}

func (s *Service) fail(ctx context.Context, key string) {
	if s.throttle == nil {
		return
	}
	locked, err := s.throttle.Fail(ctx, key)
	if err != nil {
		slog.Warn("login throttle update failed", "error", err.Error())
		return
	}
	if locked {
		slog.Warn("login locked out", "email", key)
	}
}

// Authenticate разбирает bearer-токен в Actor. Пользователь должен существовать.
func (s *Service) Authenticate(ctx context.Context, token string) (models.Actor, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return models.Actor{}, apperr.Unauthorized("invalid or expired token")
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return models.Actor{}, apperr.Unauthorized("invalid token subject")
	}

	// роль берём из базы: удалённый или пониженный пользователь теряет доступ сразу
	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return models.Actor{}, apperr.Unauthorized("user no longer exists")
		}
		return models.Actor{}, err
	}
	if !u.Role.Valid() {
		return models.Actor{}, apperr.Unauthorized("invalid user role")
	}
	return models.Actor{UserID: u.ID, Role: u.Role}, nil
}
