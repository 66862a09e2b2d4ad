package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mnaeem99/econceptions-assignment/internal/auth"
	"github.com/mnaeem99/econceptions-assignment/internal/handlers"
	"github.com/mnaeem99/econceptions-assignment/internal/middleware"
	"github.com/mnaeem99/econceptions-assignment/internal/services"
	"github.com/mnaeem99/econceptions-assignment/internal/testutil"
	"github.com/mnaeem99/econceptions-assignment/pkg/logger"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	stores := testutil.NewStores()
	log := logger.NewLogger("error")
	publisher := testutil.NewPublisher()
	tokens := auth.NewTokenManager("test-secret", time.Hour)

	authService := services.NewAuthService(stores.Users(), tokens, bcrypt.MinCost, publisher, log)
	userService := services.NewUserService(stores.Users(), stores.Follows(), publisher, log)
	postService := services.NewPostService(stores.Posts(), stores.Comments(), stores.Likes(), stores.Users(), publisher, log)

	userHandler := handlers.NewUserHandler(authService, userService)
	postHandler := handlers.NewPostHandler(postService)

	router := gin.New()
	authRequired := middleware.NewJWTAuth(tokens)

	users := router.Group("/users")
	{
		users.POST("/register", userHandler.Register)
		users.POST("/login", userHandler.Login)
		users.POST("/search", userHandler.SearchUsers)
		users.GET("/:id", userHandler.GetUser)
		users.GET("/:id/followers", userHandler.GetFollowers)
		users.GET("/:id/following", userHandler.GetFollowing)
		users.POST("/:id/follow", authRequired, userHandler.Follow)
	}

	posts := router.Group("/posts")
	{
		posts.GET("", postHandler.ListPosts)
		posts.GET("/:id", postHandler.GetPost)
		posts.POST("/search", postHandler.SearchPosts)
		posts.POST("", authRequired, postHandler.CreatePost)
		posts.PUT("/:id", authRequired, postHandler.UpdatePost)
		posts.DELETE("/:id", authRequired, postHandler.DeletePost)
		posts.POST("/:id/comments", authRequired, postHandler.AddComment)
		posts.POST("/:id/like", authRequired, postHandler.LikePost)
	}

	return router
}

func doJSON(router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func registerAndLogin(t *testing.T, router *gin.Engine, username string) string {
	t.Helper()
	rec := doJSON(router, http.MethodPost, "/users/register", "", gin.H{
		"username": username,
		"email":    username + "@example.com",
		"password": "pw1secret",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(router, http.MethodPost, "/users/login", "", gin.H{
		"username": username,
		"password": "pw1secret",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Token string `json:"token"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestProtectedEndpointsRequireToken(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(router, http.MethodPost, "/posts", "", gin.H{"content": "hello"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(router, http.MethodPost, "/posts", "garbage-token", gin.H{"content": "hello"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPostLifecycleOverHTTP(t *testing.T) {
	router := newTestRouter()
	aliceToken := registerAndLogin(t, router, "alice")
	bobToken := registerAndLogin(t, router, "bob")

	rec := doJSON(router, http.MethodPost, "/posts", aliceToken, gin.H{"content": "hello"})
	assert.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		Post struct {
			ID uint `json:"id"`
		} `json:"post"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	postPath := fmt.Sprintf("/posts/%d", created.Post.ID)

	// Anyone can read.
	rec = doJSON(router, http.MethodGet, postPath, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Non-owner mutation is forbidden.
	rec = doJSON(router, http.MethodPut, postPath, bobToken, gin.H{"content": "hijack"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = doJSON(router, http.MethodDelete, postPath, bobToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Liking twice still reports a single like.
	rec = doJSON(router, http.MethodPost, postPath+"/like", bobToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(router, http.MethodPost, postPath+"/like", bobToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var liked struct {
		Post struct {
			LikeCount int64 `json:"like_count"`
		} `json:"post"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &liked))
	assert.EqualValues(t, 1, liked.Post.LikeCount)

	// Owner deletes; subsequent reads are 404.
	rec = doJSON(router, http.MethodDelete, postPath, aliceToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(router, http.MethodGet, postPath, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFollowConflictsOverHTTP(t *testing.T) {
	router := newTestRouter()
	aliceToken := registerAndLogin(t, router, "alice")
	registerAndLogin(t, router, "bob")

	// Registration order is deterministic: alice=1, bob=2.
	rec := doJSON(router, http.MethodPost, "/users/2/follow", aliceToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(router, http.MethodPost, "/users/2/follow", aliceToken, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(router, http.MethodPost, "/users/1/follow", aliceToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDuplicateRegistrationConflict(t *testing.T) {
	router := newTestRouter()
	registerAndLogin(t, router, "alice")

	rec := doJSON(router, http.MethodPost, "/users/register", "", gin.H{
		"username": "alice",
		"email":    "someone-else@example.com",
		"password": "pw2secret",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSearchEndpoints(t *testing.T) {
	router := newTestRouter()
	aliceToken := registerAndLogin(t, router, "alice")

	for _, content := range []string{"abc", "xyz", "abcxyz"} {
		rec := doJSON(router, http.MethodPost, "/posts", aliceToken, gin.H{"content": content})
		assert.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := doJSON(router, http.MethodPost, "/posts/search", "", gin.H{"keyword": "abc"})
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Posts []struct {
			Content string `json:"content"`
		} `json:"posts"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Posts, 2)

	rec = doJSON(router, http.MethodPost, "/users/search", "", gin.H{"keyword": "ali"})
	assert.Equal(t, http.StatusOK, rec.Code)
}
