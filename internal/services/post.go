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

// PostOperations is the post domain surface. PostService implements it
// directly; CachedPostService wraps it with a read-through cache.
type PostOperations interface {
	CreatePost(ctx context.Context, callerID uint, content string) (*models.Post, error)
	GetPost(ctx context.Context, id uint) (*models.Post, error)
	UpdatePost(ctx context.Context, id uint, content string, callerID uint) (*models.Post, error)
	DeletePost(ctx context.Context, id uint, callerID uint) error
	AddComment(ctx context.Context, postID, callerID uint, content string) (*models.Post, error)
	LikePost(ctx context.Context, postID, callerID uint) (*models.Post, error)
	ListPosts(ctx context.Context, page PageRequest) ([]*models.Post, error)
	SearchPosts(ctx context.Context, keyword string, page PageRequest) ([]*models.Post, error)
	IsPostOwner(ctx context.Context, postID uint, username string) (bool, error)
}

// PostService enforces the cross-entity invariants on the post write path:
// ownership-gated mutation, like-once-per-user, existence checks, cascading
// delete.
type PostService struct {
	postRepo    PostStore
	commentRepo CommentStore
	likeRepo    LikeStore
	userRepo    UserStore
	producer    EventPublisher
	logger      *logger.Logger
}

func NewPostService(postRepo PostStore, commentRepo CommentStore, likeRepo LikeStore, userRepo UserStore, producer EventPublisher, logger *logger.Logger) *PostService {
	return &PostService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		likeRepo:    likeRepo,
		userRepo:    userRepo,
		producer:    producer,
		logger:      logger,
	}
}

func (s *PostService) CreatePost(ctx context.Context, callerID uint, content string) (*models.Post, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}

	caller, err := s.userRepo.GetByID(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get caller: %w", err)
	}
	if caller == nil {
		return nil, ErrUserNotFound
	}

	post := &models.Post{
		UserID:  callerID,
		Content: content,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	s.publish(ctx, queue.Event{
		Type:      queue.EventPostCreated,
		ActorID:   callerID,
		PostID:    post.ID,
		Timestamp: post.CreatedAt,
	})

	s.logger.WithFields(map[string]interface{}{
		"post_id": post.ID,
		"user_id": callerID,
	}).Info("Post created successfully")

	post.User = *caller
	return post, nil
}

// GetPost returns the post with its live comment and like counts.
func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	if err := s.attachCounts(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// UpdatePost replaces the content in place. The creation timestamp is never
// touched. Only the owner may mutate.
func (s *PostService) UpdatePost(ctx context.Context, id uint, content string, callerID uint) (*models.Post, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}

	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	if post.UserID != callerID {
		return nil, ErrNotPostOwner
	}

	post.Content = content
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	s.publish(ctx, queue.Event{
		Type:      queue.EventPostUpdated,
		ActorID:   callerID,
		PostID:    post.ID,
		Timestamp: time.Now(),
	})

	if err := s.attachCounts(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost removes the post and everything it owns: comments and likes go
// with it.
func (s *PostService) DeletePost(ctx context.Context, id uint, callerID uint) error {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get post: %w", err)
	}
	if post == nil {
		return ErrPostNotFound
	}
	if post.UserID != callerID {
		return ErrNotPostOwner
	}

	if err := s.postRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	s.publish(ctx, queue.Event{
		Type:      queue.EventPostDeleted,
		ActorID:   callerID,
		PostID:    id,
		Timestamp: time.Now(),
	})

	s.logger.WithFields(map[string]interface{}{
		"post_id": id,
		"user_id": callerID,
	}).Info("Post deleted successfully")
	return nil
}

// AddComment appends a comment authored by the caller and returns the
// updated post projection.
func (s *PostService) AddComment(ctx context.Context, postID, callerID uint, content string) (*models.Post, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	if post == nil {
		return nil, ErrPostNotFound
	}

	caller, err := s.userRepo.GetByID(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get caller: %w", err)
	}
	if caller == nil {
		return nil, ErrUserNotFound
	}

	comment := &models.Comment{
		PostID:  postID,
		UserID:  callerID,
		Content: content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	s.publish(ctx, queue.Event{
		Type:      queue.EventCommentCreated,
		ActorID:   callerID,
		PostID:    postID,
		Timestamp: comment.CreatedAt,
	})

	if err := s.attachCounts(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// LikePost is a "set like", not a toggle: liking an already-liked post
// succeeds with unchanged state. The unique (post_id, user_id) index makes
// the operation safe under concurrent duplicates; the existence check ahead
// of the insert is only a fast path.
func (s *PostService) LikePost(ctx context.Context, postID, callerID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	if post == nil {
		return nil, ErrPostNotFound
	}

	liked, err := s.likeRepo.Exists(ctx, postID, callerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check like status: %w", err)
	}
	if !liked {
		like := &models.Like{
			PostID: postID,
			UserID: callerID,
		}
		err := s.likeRepo.Create(ctx, like)
		switch {
		case err == nil:
			s.publish(ctx, queue.Event{
				Type:      queue.EventPostLiked,
				ActorID:   callerID,
				PostID:    postID,
				Timestamp: time.Now(),
			})
		case errors.Is(err, repository.ErrDuplicate):
			// Lost a race with an identical like; idempotent success.
		default:
			return nil, fmt.Errorf("failed to create like: %w", err)
		}
	}

	if err := s.attachCounts(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) ListPosts(ctx context.Context, page PageRequest) ([]*models.Post, error) {
	page = page.Normalize()
	posts, err := s.postRepo.List(ctx, page.Offset(), page.Size, page.SortBy, page.Descending())
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	if err := s.attachCountsBatch(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *PostService) SearchPosts(ctx context.Context, keyword string, page PageRequest) ([]*models.Post, error) {
	if strings.TrimSpace(keyword) == "" {
		return nil, ErrEmptyKeyword
	}
	page = page.Normalize()
	posts, err := s.postRepo.Search(ctx, keyword, page.Offset(), page.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to search posts: %w", err)
	}
	if err := s.attachCountsBatch(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// IsPostOwner is the authorization predicate in front of update and delete.
func (s *PostService) IsPostOwner(ctx context.Context, postID uint, username string) (bool, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return false, fmt.Errorf("failed to get post: %w", err)
	}
	if post == nil {
		return false, ErrPostNotFound
	}
	return post.User.Username == username, nil
}

func (s *PostService) attachCounts(ctx context.Context, post *models.Post) error {
	comments, err := s.commentRepo.CountByPostID(ctx, post.ID)
	if err != nil {
		return fmt.Errorf("failed to count comments: %w", err)
	}
	likes, err := s.likeRepo.CountByPostID(ctx, post.ID)
	if err != nil {
		return fmt.Errorf("failed to count likes: %w", err)
	}
	post.CommentCount = comments
	post.LikeCount = likes
	return nil
}

func (s *PostService) attachCountsBatch(ctx context.Context, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]uint, len(posts))
	for i, post := range posts {
		ids[i] = post.ID
	}

	comments, err := s.commentRepo.CountForPosts(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to count comments: %w", err)
	}
	likes, err := s.likeRepo.CountForPosts(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to count likes: %w", err)
	}
	for _, post := range posts {
		post.CommentCount = comments[post.ID]
		post.LikeCount = likes[post.ID]
	}
	return nil
}

func (s *PostService) publish(ctx context.Context, event queue.Event) {
	if err := s.producer.Publish(ctx, fmt.Sprint(event.ActorID), event); err != nil {
		s.logger.WithError(err).Error("Failed to publish event")
	}
}
