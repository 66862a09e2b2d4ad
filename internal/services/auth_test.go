package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/mnaeem99/econceptions-assignment/internal/auth"
	"github.com/mnaeem99/econceptions-assignment/internal/models"
	"github.com/mnaeem99/econceptions-assignment/internal/services"
	"github.com/mnaeem99/econceptions-assignment/internal/testutil"
	"github.com/mnaeem99/econceptions-assignment/pkg/logger"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

func newAuthService(stores *testutil.Stores) *services.AuthService {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	return services.NewAuthService(stores.Users(), tokens, bcrypt.MinCost, testutil.NewPublisher(), logger.NewLogger("error"))
}

func TestRegisterAndLoginRoundtrip(t *testing.T) {
	ctx := context.Background()
	stores := testutil.NewStores()
	svc := newAuthService(stores)

	user, err := svc.Register(ctx, &services.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "pw1secret",
		Bio:      "hello there",
	})
	assert.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NotEqual(t, "pw1secret", user.Password, "password must be stored hashed")

	token, loggedIn, err := svc.Login(ctx, &services.LoginRequest{Username: "alice", Password: "pw1secret"})
	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, user.ID, loggedIn.ID)

	caller, err := svc.ResolveCaller(ctx, token)
	assert.NoError(t, err)
	assert.Equal(t, "alice", caller.Username)
}

func TestLoginWrongPassword(t *testing.T) {
	ctx := context.Background()
	stores := testutil.NewStores()
	svc := newAuthService(stores)

	_, err := svc.Register(ctx, &services.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "pw1secret",
	})
	assert.NoError(t, err)

	_, _, err = svc.Login(ctx, &services.LoginRequest{Username: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestLoginUnknownUserSameError(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(testutil.NewStores())

	// Unknown username and wrong password must be indistinguishable.
	_, _, err := svc.Login(ctx, &services.LoginRequest{Username: "ghost", Password: "whatever"})
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(testutil.NewStores())

	_, err := svc.Register(ctx, &services.RegisterRequest{
		Username: "alice", Email: "alice@example.com", Password: "pw1secret",
	})
	assert.NoError(t, err)

	_, err = svc.Register(ctx, &services.RegisterRequest{
		Username: "alice", Email: "other@example.com", Password: "pw2secret",
	})
	assert.ErrorIs(t, err, services.ErrUsernameTaken)

	_, err = svc.Register(ctx, &services.RegisterRequest{
		Username: "alice2", Email: "alice@example.com", Password: "pw2secret",
	})
	assert.ErrorIs(t, err, services.ErrEmailTaken)
}

// blindUserStore hides existing users from the pre-insert lookups,
// simulating a concurrent registration that slips past the fast path and
// hits the unique constraint instead.
type blindUserStore struct {
	services.UserStore
}

func (s *blindUserStore) GetByUsername(context.Context, string) (*models.User, error) {
	return nil, nil
}

func (s *blindUserStore) GetByEmail(context.Context, string) (*models.User, error) {
	return nil, nil
}

func TestRegisterConstraintViolationIsConflict(t *testing.T) {
	ctx := context.Background()
	stores := testutil.NewStores()
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	svc := services.NewAuthService(&blindUserStore{UserStore: stores.Users()}, tokens, bcrypt.MinCost, testutil.NewPublisher(), logger.NewLogger("error"))

	_, err := svc.Register(ctx, &services.RegisterRequest{
		Username: "alice", Email: "alice@example.com", Password: "pw1secret",
	})
	assert.NoError(t, err)

	_, err = svc.Register(ctx, &services.RegisterRequest{
		Username: "alice", Email: "alice@example.com", Password: "pw1secret",
	})
	assert.ErrorIs(t, err, services.ErrUsernameTaken)
}

func TestResolveCallerFailsClosed(t *testing.T) {
	ctx := context.Background()
	stores := testutil.NewStores()
	svc := newAuthService(stores)

	_, err := svc.ResolveCaller(ctx, "not-a-token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	// Valid signature but unknown subject.
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	token, err := tokens.Generate(42, "ghost")
	assert.NoError(t, err)

	_, err = svc.ResolveCaller(ctx, token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
