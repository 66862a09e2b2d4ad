package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mnaeem99/econceptions-assignment/internal/models"
	"github.com/mnaeem99/econceptions-assignment/internal/repository"
	"github.com/mnaeem99/econceptions-assignment/pkg/logger"
	"github.com/mnaeem99/econceptions-assignment/pkg/queue"
)

// UserService covers profile reads, follow edges and user search. Caller
// identity always arrives as an explicit argument resolved at the HTTP
// boundary.
type UserService struct {
	userRepo   UserStore
	followRepo FollowStore
	producer   EventPublisher
	logger     *logger.Logger
}

func NewUserService(userRepo UserStore, followRepo FollowStore, producer EventPublisher, logger *logger.Logger) *UserService {
	return &UserService{
		userRepo:   userRepo,
		followRepo: followRepo,
		producer:   producer,
		logger:     logger,
	}
}

func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// Follow creates the directed edge callerID -> targetID. Unlike liking a
// post this is not idempotent: a second follow of the same user is a
// conflict.
func (s *UserService) Follow(ctx context.Context, callerID, targetID uint) error {
	if callerID == targetID {
		return ErrSelfFollow
	}

	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return fmt.Errorf("failed to get target user: %w", err)
	}
	if target == nil {
		return ErrUserNotFound
	}

	// Fast path; the unique (follower_id, following_id) index decides under
	// concurrency.
	exists, err := s.followRepo.Exists(ctx, callerID, targetID)
	if err != nil {
		return fmt.Errorf("failed to check follow status: %w", err)
	}
	if exists {
		return ErrAlreadyFollowing
	}

	follow := &models.Follow{
		FollowerID:  callerID,
		FollowingID: targetID,
	}
	if err := s.followRepo.Create(ctx, follow); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return ErrAlreadyFollowing
		}
		return fmt.Errorf("failed to create follow: %w", err)
	}

	event := queue.Event{
		Type:      queue.EventUserFollowed,
		ActorID:   callerID,
		TargetID:  targetID,
		Timestamp: time.Now(),
	}
	if err := s.producer.Publish(ctx, fmt.Sprint(callerID), event); err != nil {
		s.logger.WithError(err).Error("Failed to publish user followed event")
	}

	s.logger.WithFields(map[string]interface{}{
		"follower_id":  callerID,
		"following_id": targetID,
	}).Info("User followed successfully")
	return nil
}

func (s *UserService) GetFollowers(ctx context.Context, userID uint, page PageRequest) ([]*models.User, error) {
	page = page.Normalize()
	followers, err := s.followRepo.GetFollowers(ctx, userID, page.Offset(), page.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to get followers: %w", err)
	}
	return followers, nil
}

func (s *UserService) GetFollowing(ctx context.Context, userID uint, page PageRequest) ([]*models.User, error) {
	page = page.Normalize()
	following, err := s.followRepo.GetFollowing(ctx, userID, page.Offset(), page.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to get following: %w", err)
	}
	return following, nil
}

func (s *UserService) SearchUsers(ctx context.Context, keyword string, page PageRequest) ([]*models.User, error) {
	if strings.TrimSpace(keyword) == "" {
		return nil, ErrEmptyKeyword
	}
	page = page.Normalize()
	users, err := s.userRepo.Search(ctx, keyword, page.Offset(), page.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	return users, nil
}
