package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logger"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/pageza/foodgram/backend/internal/validation"
)

const tokenIssuer = "foodgram"

var errInvalidToken = errors.New("invalid token")

type AuthService struct {
	users     repository.UserRepo
	validator *validation.Validator
	jwtSecret []byte
	tokenTTL  time.Duration
	log       *logger.Logger
}

func NewAuthService(users repository.UserRepo, validator *validation.Validator, jwtSecret string, tokenTTL time.Duration, baseLog *logger.Logger) *AuthService {
	return &AuthService{
		users:     users,
		validator: validator,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		log:       baseLog.With("service", "AuthService"),
	}
}

// Register creates a user with a bcrypt-hashed password.
func (s *AuthService) Register(ctx context.Context, req types.RegisterRequest) (*models.User, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByEmail(ctx, nil, req.Email); err == nil {
		return nil, apperr.ValidationWithDetails("validation failed", map[string]string{"email": "is already registered"})
	} else if apperr.KindOf(err) != apperr.KindNotFound {
		return nil, apperr.Internal("failed to check email", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal("failed to hash password", err)
	}

	user := &models.User{
		Email:        req.Email,
		Username:     req.Username,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: string(hashed),
	}
	if err := s.users.Create(ctx, nil, user); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperr.ValidationWithDetails("validation failed", map[string]string{"username": "is already taken"})
		}
		return nil, apperr.Internal("failed to create user", err)
	}

	s.log.Info("User registered", "user_id", user.ID)
	return user, nil
}

// Login checks credentials and returns a signed token.
func (s *AuthService) Login(ctx context.Context, req types.LoginRequest) (string, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validator.Validate(req); err != nil {
		return "", err
	}

	invalid := apperr.Validation("unable to log in with provided credentials")
	user, err := s.users.GetByEmail(ctx, nil, req.Email)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return "", invalid
		}
		return "", apperr.Internal("failed to load user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return "", invalid
	}
	return s.GenerateToken(user)
}

// GetUser returns the user behind an authenticated request.
func (s *AuthService) GetUser(ctx context.Context, userID uint) (*models.User, error) {
	if userID == 0 {
		return nil, apperr.AuthenticationRequired("authentication required")
	}
	user, err := s.users.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, wrapLookup(err, "failed to load user")
	}
	return user, nil
}

// SetPassword replaces the password after checking the current one.
func (s *AuthService) SetPassword(ctx context.Context, userID uint, req types.SetPasswordRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return apperr.ValidationWithDetails("validation failed", map[string]string{"current_password": "is incorrect"})
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Internal("failed to hash password", err)
	}
	if err := s.users.UpdatePassword(ctx, nil, user.ID, string(hashed)); err != nil {
		return wrapLookup(err, "failed to update password")
	}
	s.log.Info("Password changed", "user_id", user.ID)
	return nil
}

func (s *AuthService) GenerateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := &types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
		UserID:   user.ID,
		Username: user.Username,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", apperr.Internal("failed to sign token", err)
	}
	return token, nil
}

func (s *AuthService) ValidateToken(tokenString string) (*types.TokenClaims, error) {
	claims := &types.TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID == 0 {
		return nil, errInvalidToken
	}
	return claims, nil
}
