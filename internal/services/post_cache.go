package services

import (
	"context"
	"fmt"
	"time"

	"github.com/mnaeem99/econceptions-assignment/internal/models"
	"github.com/mnaeem99/econceptions-assignment/pkg/cache"
	"github.com/mnaeem99/econceptions-assignment/pkg/logger"
)

// PostCache is the read-through cache for the posts namespace. Get reports
// a miss with (false, nil); InvalidateAll drops the whole namespace.
type PostCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	InvalidateAll(ctx context.Context) error
}

// CachedPostService decorates PostOperations with an explicit read-through
// cache. Reads of a single post and of the first page of list/search results
// are cached; every mutating call delegates to the inner service first and
// invalidates the namespace only after the write has succeeded, so a cached
// read can never outlive the write it contradicts. Cache failures degrade to
// the store and never fail the request.
type CachedPostService struct {
	inner  PostOperations
	cache  PostCache
	logger *logger.Logger
}

var (
	_ PostOperations = (*PostService)(nil)
	_ PostOperations = (*CachedPostService)(nil)
)

func NewCachedPostService(inner PostOperations, cache PostCache, logger *logger.Logger) *CachedPostService {
	return &CachedPostService{
		inner:  inner,
		cache:  cache,
		logger: logger,
	}
}

func (s *CachedPostService) CreatePost(ctx context.Context, callerID uint, content string) (*models.Post, error) {
	post, err := s.inner.CreatePost(ctx, callerID, content)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return post, nil
}

func (s *CachedPostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	key := fmt.Sprintf("posts:id:%d", id)
	var cached models.Post
	if hit, err := s.cache.Get(ctx, key, &cached); err != nil {
		s.logger.WithError(err).Warn("Post cache read failed")
	} else if hit {
		return &cached, nil
	}

	post, err := s.inner.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, post); err != nil {
		s.logger.WithError(err).Warn("Post cache write failed")
	}
	return post, nil
}

func (s *CachedPostService) UpdatePost(ctx context.Context, id uint, content string, callerID uint) (*models.Post, error) {
	post, err := s.inner.UpdatePost(ctx, id, content, callerID)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return post, nil
}

func (s *CachedPostService) DeletePost(ctx context.Context, id uint, callerID uint) error {
	if err := s.inner.DeletePost(ctx, id, callerID); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *CachedPostService) AddComment(ctx context.Context, postID, callerID uint, content string) (*models.Post, error) {
	post, err := s.inner.AddComment(ctx, postID, callerID, content)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return post, nil
}

func (s *CachedPostService) LikePost(ctx context.Context, postID, callerID uint) (*models.Post, error) {
	post, err := s.inner.LikePost(ctx, postID, callerID)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return post, nil
}

// ListPosts caches the first page only; deeper pages shift too often to be
// worth the invalidation churn.
func (s *CachedPostService) ListPosts(ctx context.Context, page PageRequest) ([]*models.Post, error) {
	page = page.Normalize()
	if page.Page != 0 {
		return s.inner.ListPosts(ctx, page)
	}

	key := fmt.Sprintf("posts:list:%s:%s:%d", page.SortBy, page.Direction, page.Size)
	var cached []*models.Post
	if hit, err := s.cache.Get(ctx, key, &cached); err != nil {
		s.logger.WithError(err).Warn("Post cache read failed")
	} else if hit {
		return cached, nil
	}

	posts, err := s.inner.ListPosts(ctx, page)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, posts); err != nil {
		s.logger.WithError(err).Warn("Post cache write failed")
	}
	return posts, nil
}

func (s *CachedPostService) SearchPosts(ctx context.Context, keyword string, page PageRequest) ([]*models.Post, error) {
	page = page.Normalize()
	if page.Page != 0 {
		return s.inner.SearchPosts(ctx, keyword, page)
	}

	key := fmt.Sprintf("posts:search:%s:%d", keyword, page.Size)
	var cached []*models.Post
	if hit, err := s.cache.Get(ctx, key, &cached); err != nil {
		s.logger.WithError(err).Warn("Post cache read failed")
	} else if hit {
		return cached, nil
	}

	posts, err := s.inner.SearchPosts(ctx, keyword, page)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, posts); err != nil {
		s.logger.WithError(err).Warn("Post cache write failed")
	}
	return posts, nil
}

func (s *CachedPostService) IsPostOwner(ctx context.Context, postID uint, username string) (bool, error) {
	return s.inner.IsPostOwner(ctx, postID, username)
}

func (s *CachedPostService) invalidate(ctx context.Context) {
	if err := s.cache.InvalidateAll(ctx); err != nil {
		s.logger.WithError(err).Warn("Post cache invalidation failed")
	}
}

// RedisPostCache backs PostCache with the shared Redis client.
type RedisPostCache struct {
	client *cache.RedisClient
	ttl    time.Duration
}

func NewRedisPostCache(client *cache.RedisClient, ttl time.Duration) *RedisPostCache {
	return &RedisPostCache{client: client, ttl: ttl}
}

func (c *RedisPostCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	err := c.client.GetJSON(ctx, key, dest)
	if err != nil {
		if c.client.IsNil(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (c *RedisPostCache) Set(ctx context.Context, key string, value interface{}) error {
	return c.client.SetJSON(ctx, key, value, c.ttl)
}

func (c *RedisPostCache) InvalidateAll(ctx context.Context) error {
	return c.client.DeleteByPattern(ctx, "posts:*")
}
