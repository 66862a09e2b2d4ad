package services

import (
	"context"

	"github.com/mnaeem99/econceptions-assignment/internal/models"
)

// Narrow per-entity store contracts, satisfied by the gorm repositories in
// internal/repository. Services never reach past these into the database.
// Stores signal "not found" with a nil record and a nil error; duplicate
// inserts surface as repository.ErrDuplicate.

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Search(ctx context.Context, keyword string, offset, limit int) ([]*models.User, error)
}

type PostStore interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int, sortBy string, descending bool) ([]*models.Post, error)
	Search(ctx context.Context, keyword string, offset, limit int) ([]*models.Post, error)
}

type CommentStore interface {
	Create(ctx context.Context, comment *models.Comment) error
	CountByPostID(ctx context.Context, postID uint) (int64, error)
	CountForPosts(ctx context.Context, postIDs []uint) (map[uint]int64, error)
}

type LikeStore interface {
	Create(ctx context.Context, like *models.Like) error
	Exists(ctx context.Context, postID, userID uint) (bool, error)
	CountByPostID(ctx context.Context, postID uint) (int64, error)
	CountForPosts(ctx context.Context, postIDs []uint) (map[uint]int64, error)
}

type FollowStore interface {
	Create(ctx context.Context, follow *models.Follow) error
	Exists(ctx context.Context, followerID, followingID uint) (bool, error)
	GetFollowers(ctx context.Context, userID uint, offset, limit int) ([]*models.User, error)
	GetFollowing(ctx context.Context, userID uint, offset, limit int) ([]*models.User, error)
}

// EventPublisher is the outbound event stream; satisfied by queue.KafkaProducer.
type EventPublisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
}
