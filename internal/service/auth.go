package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/experiencepoints/api/internal/catalog"
	"github.com/experiencepoints/api/internal/db"
	"github.com/experiencepoints/api/internal/model"
	"github.com/experiencepoints/api/internal/repository"
	"github.com/experiencepoints/api/internal/validation"
)

// Claims is the signed payload of a bearer token.
type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

type AuthService struct {
	db             *sqlx.DB
	userRepository repository.UserRepository
	goalService    *GoalService
	catalog        *catalog.Catalog
	jwtSecret      string
	jwtExpiry      time.Duration
	now            func() time.Time
}

func NewAuthService(
	database *sqlx.DB,
	userRepository repository.UserRepository,
	goalService *GoalService,
	cat *catalog.Catalog,
	jwtSecret string,
	jwtExpiry time.Duration,
) *AuthService {
	return &AuthService{
		db:             database,
		userRepository: userRepository,
		goalService:    goalService,
		catalog:        cat,
		jwtSecret:      jwtSecret,
		jwtExpiry:      jwtExpiry,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// Register creates the account and, when templateID names a known template,
// its starter goals. Everything commits together or not at all.
func (s *AuthService) Register(ctx context.Context, username, password, templateID string) (*model.User, error) {
	err := validation.ValidateUsername(username)
	if err != nil {
		return nil, err
	}
	err = validation.ValidatePassword(password)
	if err != nil {
		return nil, err
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username:          username,
		PasswordHash:      hash,
		ProfileVisibility: model.ProfilePrivate,
		CreatedAt:         s.now(),
	}

	tmpl, hasTemplate := s.catalog.Template(templateID)
	if templateID != "" && !hasTemplate {
		slog.Debug("unknown registration template ignored", "template", templateID)
	}

	err = db.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		err := s.userRepository.WithTx(tx).Create(ctx, user)
		if err != nil {
			return err
		}
		if !hasTemplate {
			return nil
		}
		_, err = s.goalService.CreateFromTemplate(ctx, tx, user.ID, tmpl)
		return err
	})
	if errors.Is(err, repository.ErrDuplicateUsername) {
		return nil, ErrUsernameTaken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	slog.Info("user registered", "user_id", user.ID, "template", tmpl.ID)
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.userRepository.ByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	err = s.ComparePassword(password, user.PasswordHash)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

func (s *AuthService) ComparePassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

func (s *AuthService) GenerateJWT(user *model.User) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// VerifyJWT returns the user id carried by a valid, unexpired token.
func (s *AuthService) VerifyJWT(tokenString string) (int64, error) {
	if tokenString == "" {
		return 0, ErrTokenMissing
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return []byte(s.jwtSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return 0, ErrTokenExpired
	}
	if err != nil || !token.Valid || claims.UserID == 0 {
		return 0, ErrTokenInvalid
	}

	return claims.UserID, nil
}

// Authenticate resolves a bearer token to its user.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*model.User, error) {
	userID, err := s.VerifyJWT(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepository.ByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}
