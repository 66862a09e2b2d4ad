package services_test

import (
	"context"
	"testing"

	"github.com/mnaeem99/econceptions-assignment/internal/models"
	"github.com/mnaeem99/econceptions-assignment/internal/services"
	"github.com/mnaeem99/econceptions-assignment/internal/testutil"
	"github.com/mnaeem99/econceptions-assignment/pkg/logger"
	"github.com/stretchr/testify/assert"
)

func newUserService(stores *testutil.Stores) *services.UserService {
	return services.NewUserService(stores.Users(), stores.Follows(), testutil.NewPublisher(), logger.NewLogger("error"))
}

func seedUser(t *testing.T, stores *testutil.Stores, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "x",
	}
	assert.NoError(t, stores.Users().Create(context.Background(), user))
	return user
}

func TestFollowIsNotIdempotent(t *testing.T) {
	ctx := context.Background()
	stores := testutil.NewStores()
	svc := newUserService(stores)
	alice := seedUser(t, stores, "alice")
	bob := seedUser(t, stores, "bob")

	assert.NoError(t, svc.Follow(ctx, alice.ID, bob.ID))
	assert.ErrorIs(t, svc.Follow(ctx, alice.ID, bob.ID), services.ErrAlreadyFollowing)
}

func TestFollowSelfAlwaysRejected(t *testing.T) {
	ctx := context.Background()
	stores := testutil.NewStores()
	svc := newUserService(stores)
	alice := seedUser(t, stores, "alice")

	assert.ErrorIs(t, svc.Follow(ctx, alice.ID, alice.ID), services.ErrSelfFollow)

	// Self-follow is rejected before any existence check.
	assert.ErrorIs(t, svc.Follow(ctx, 999, 999), services.ErrSelfFollow)
}

func TestFollowUnknownTarget(t *testing.T) {
	ctx := context.Background()
	stores := testutil.NewStores()
	svc := newUserService(stores)
	alice := seedUser(t, stores, "alice")

	assert.ErrorIs(t, svc.Follow(ctx, alice.ID, 999), services.ErrUserNotFound)
}

// blindFollowStore never reports an existing edge, so the duplicate is only
// caught by the unique constraint on insert.
type blindFollowStore struct {
	services.FollowStore
}

func (s *blindFollowStore) Exists(context.Context, uint, uint) (bool, error) {
	return false, nil
}

func TestFollowRaceResolvesToConflict(t *testing.T) {
	ctx := context.Background()
	stores := testutil.NewStores()
	svc := services.NewUserService(stores.Users(), &blindFollowStore{FollowStore: stores.Follows()}, testutil.NewPublisher(), logger.NewLogger("error"))
	alice := seedUser(t, stores, "alice")
	bob := seedUser(t, stores, "bob")

	assert.NoError(t, svc.Follow(ctx, alice.ID, bob.ID))
	assert.ErrorIs(t, svc.Follow(ctx, alice.ID, bob.ID), services.ErrAlreadyFollowing)
}

func TestFollowersAndFollowingProjection(t *testing.T) {
	ctx := context.Background()
	stores := testutil.NewStores()
	svc := newUserService(stores)
	alice := seedUser(t, stores, "alice")
	bob := seedUser(t, stores, "bob")
	carol := seedUser(t, stores, "carol")

	assert.NoError(t, svc.Follow(ctx, alice.ID, bob.ID))
	assert.NoError(t, svc.Follow(ctx, carol.ID, bob.ID))
	assert.NoError(t, svc.Follow(ctx, bob.ID, alice.ID))

	followers, err := svc.GetFollowers(ctx, bob.ID, services.PageRequest{})
	assert.NoError(t, err)
	assert.Len(t, followers, 2)
	assert.Equal(t, "alice", followers[0].Username)
	assert.Equal(t, "carol", followers[1].Username)

	following, err := svc.GetFollowing(ctx, bob.ID, services.PageRequest{})
	assert.NoError(t, err)
	assert.Len(t, following, 1)
	assert.Equal(t, "alice", following[0].Username)

	// Page past the edges.
	followers, err = svc.GetFollowers(ctx, bob.ID, services.PageRequest{Page: 1, Size: 2})
	assert.NoError(t, err)
	assert.Empty(t, followers)
}

func TestSearchUsers(t *testing.T) {
	ctx := context.Background()
	stores := testutil.NewStores()
	svc := newUserService(stores)
	seedUser(t, stores, "alice")
	seedUser(t, stores, "bob")

	users, err := svc.SearchUsers(ctx, "alice", services.PageRequest{})
	assert.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, "alice", users[0].Username)

	_, err = svc.SearchUsers(ctx, "   ", services.PageRequest{})
	assert.ErrorIs(t, err, services.ErrEmptyKeyword)
}

func TestGetUserNotFound(t *testing.T) {
	ctx := context.Background()
	svc := newUserService(testutil.NewStores())

	_, err := svc.GetUser(ctx, 12345)
	assert.ErrorIs(t, err, services.ErrUserNotFound)
}
