package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"testing"

	"github.com/mnaeem99/econceptions-assignment/internal/services"
	"github.com/mnaeem99/econceptions-assignment/internal/testutil"
	"github.com/mnaeem99/econceptions-assignment/pkg/logger"
	"github.com/stretchr/testify/assert"
)

// memoryPostCache is an in-process PostCache that records every operation,
// so tests can assert on the order of writes and invalidations.
type memoryPostCache struct {
	entries map[string][]byte
	ops     []string
	failing bool
}

func newMemoryPostCache() *memoryPostCache {
	return &memoryPostCache{entries: make(map[string][]byte)}
}

func (c *memoryPostCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	if c.failing {
		return false, errors.New("cache down")
	}
	c.ops = append(c.ops, "get:"+key)
	data, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, dest)
}

func (c *memoryPostCache) Set(_ context.Context, key string, value interface{}) error {
	if c.failing {
		return errors.New("cache down")
	}
	c.ops = append(c.ops, "set:"+key)
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = data
	return nil
}

func (c *memoryPostCache) InvalidateAll(_ context.Context) error {
	if c.failing {
		return errors.New("cache down")
	}
	c.ops = append(c.ops, "invalidate")
	c.entries = make(map[string][]byte)
	return nil
}

func TestCachedGetPostReadThrough(t *testing.T) {
	ctx := context.Background()
	stores := testutil.NewStores()
	inner := newPostService(stores)
	cache := newMemoryPostCache()
	svc := services.NewCachedPostService(inner, cache, logger.NewLogger("error"))

	alice := seedUser(t, stores, "alice")
	post, err := svc.CreatePost(ctx, alice.ID, "hello")
	assert.NoError(t, err)

	// First read misses and populates, second read hits.
	first, err := svc.GetPost(ctx, post.ID)
	assert.NoError(t, err)
	second, err := svc.GetPost(ctx, post.ID)
	assert.NoError(t, err)
	assert.Equal(t, first.Content, second.Content)

	hits := 0
	for _, op := range cache.ops {
		if op == "set:posts:id:"+itoa(post.ID) {
			hits++
		}
	}
	assert.Equal(t, 1, hits, "second read must be served from cache")
}

func TestCachedReadsInvalidatedAfterWrite(t *testing.T) {
	ctx := context.Background()
	stores := testutil.NewStores()
	inner := newPostService(stores)
	cache := newMemoryPostCache()
	svc := services.NewCachedPostService(inner, cache, logger.NewLogger("error"))

	alice := seedUser(t, stores, "alice")
	post, err := svc.CreatePost(ctx, alice.ID, "before")
	assert.NoError(t, err)

	cached, err := svc.GetPost(ctx, post.ID)
	assert.NoError(t, err)
	assert.Equal(t, "before", cached.Content)

	_, err = svc.UpdatePost(ctx, post.ID, "after", alice.ID)
	assert.NoError(t, err)

	// A read after a write sees the new state, never the stale cache entry.
	cached, err = svc.GetPost(ctx, post.ID)
	assert.NoError(t, err)
	assert.Equal(t, "after", cached.Content)
}

func TestCachedWriteFailureSkipsInvalidation(t *testing.T) {
	ctx := context.Background()
	stores := testutil.NewStores()
	inner := newPostService(stores)
	cache := newMemoryPostCache()
	svc := services.NewCachedPostService(inner, cache, logger.NewLogger("error"))

	alice := seedUser(t, stores, "alice")
	bob := seedUser(t, stores, "bob")
	post, err := svc.CreatePost(ctx, alice.ID, "mine")
	assert.NoError(t, err)

	before := len(cache.ops)
	_, err = svc.UpdatePost(ctx, post.ID, "stolen", bob.ID)
	assert.ErrorIs(t, err, services.ErrNotPostOwner)

	// A rejected write must not touch the cache.
	for _, op := range cache.ops[before:] {
		assert.NotEqual(t, "invalidate", op)
	}
}

func TestCachedListFirstPageOnly(t *testing.T) {
	ctx := context.Background()
	stores := testutil.NewStores()
	inner := newPostService(stores)
	cache := newMemoryPostCache()
	svc := services.NewCachedPostService(inner, cache, logger.NewLogger("error"))

	alice := seedUser(t, stores, "alice")
	_, err := svc.CreatePost(ctx, alice.ID, "hello")
	assert.NoError(t, err)

	_, err = svc.ListPosts(ctx, services.PageRequest{Page: 0})
	assert.NoError(t, err)
	_, err = svc.ListPosts(ctx, services.PageRequest{Page: 3})
	assert.NoError(t, err)

	for _, op := range cache.ops {
		assert.NotContains(t, op, ":page:3")
	}
	assert.Contains(t, cache.ops, "set:posts:list:created_at:desc:10")
}

func TestCacheOutageDegradesToStore(t *testing.T) {
	ctx := context.Background()
	stores := testutil.NewStores()
	inner := newPostService(stores)
	cache := newMemoryPostCache()
	cache.failing = true
	svc := services.NewCachedPostService(inner, cache, logger.NewLogger("error"))

	alice := seedUser(t, stores, "alice")
	post, err := svc.CreatePost(ctx, alice.ID, "resilient")
	assert.NoError(t, err)

	fetched, err := svc.GetPost(ctx, post.ID)
	assert.NoError(t, err)
	assert.Equal(t, "resilient", fetched.Content)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
