package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/mnaeem99/econceptions-assignment/internal/auth"
	"github.com/mnaeem99/econceptions-assignment/internal/models"
	"github.com/mnaeem99/econceptions-assignment/internal/repository"
	"github.com/mnaeem99/econceptions-assignment/pkg/logger"
	"github.com/mnaeem99/econceptions-assignment/pkg/queue"
	"golang.org/x/crypto/bcrypt"
)

// AuthService owns the identity write path and the token contract: it
// registers users, verifies credentials, and maps bearer tokens back to a
// caller identity.
type AuthService struct {
	userRepo   UserStore
	tokens     *auth.TokenManager
	bcryptCost int
	producer   EventPublisher
	logger     *logger.Logger
}

func NewAuthService(userRepo UserStore, tokens *auth.TokenManager, bcryptCost int, producer EventPublisher, logger *logger.Logger) *AuthService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		userRepo:   userRepo,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		producer:   producer,
		logger:     logger,
	}
}

type RegisterRequest struct {
	Username       string `json:"username" binding:"required,min=3,max=30"`
	Email          string `json:"email" binding:"required,email"`
	Password       string `json:"password" binding:"required,min=6,max=72"`
	Bio            string `json:"bio" binding:"max=500"`
	ProfilePicture string `json:"profile_picture"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	// Fast-path checks; the unique constraints on username and email are the
	// authoritative guard.
	existing, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	existing, err = s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:       req.Username,
		Email:          req.Email,
		Password:       string(hashed),
		Bio:            req.Bio,
		ProfilePicture: req.ProfilePicture,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	event := queue.Event{
		Type:      queue.EventUserRegistered,
		ActorID:   user.ID,
		Timestamp: user.CreatedAt,
	}
	if err := s.producer.Publish(ctx, user.Username, event); err != nil {
		s.logger.WithError(err).Error("Failed to publish user registered event")
	}

	s.logger.WithField("user_id", user.ID).Info("User registered successfully")
	return user, nil
}

// Login verifies the credentials and issues a bearer token. Unknown username
// and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (string, *models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return "", nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user.ID, user.Username)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.WithField("user_id", user.ID).Info("User logged in successfully")
	return token, user, nil
}

// ResolveCaller verifies the token and resolves its subject to a stored user,
// failing closed on any verification failure or unknown subject.
func (s *AuthService) ResolveCaller(ctx context.Context, tokenString string) (*models.User, error) {
	claims, err := s.tokens.Parse(tokenString)
	if err != nil {
		return nil, auth.ErrInvalidToken
	}

	user, err := s.userRepo.GetByUsername(ctx, claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve token subject: %w", err)
	}
	if user == nil {
		return nil, auth.ErrInvalidToken
	}
	return user, nil
}
