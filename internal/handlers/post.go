package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mnaeem99/econceptions-assignment/internal/middleware"
	"github.com/mnaeem99/econceptions-assignment/internal/services"
)

type PostHandler struct {
	posts services.PostOperations
}

func NewPostHandler(posts services.PostOperations) *PostHandler {
	return &PostHandler{posts: posts}
}

type postContentRequest struct {
	Content string `json:"content" binding:"required,max=1000"`
}

func (h *PostHandler) CreatePost(c *gin.Context) {
	var req postContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.posts.CreatePost(c.Request.Context(), middleware.GetUserID(c), req.Content)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Post created successfully",
		"post":    post,
	})
}

func (h *PostHandler) ListPosts(c *gin.Context) {
	page := pageFromQuery(c)
	posts, err := h.posts.ListPosts(c.Request.Context(), page)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts": posts,
		"page":  page.Normalize().Page,
		"size":  page.Normalize().Size,
	})
}

func (h *PostHandler) GetPost(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post ID"})
		return
	}

	post, err := h.posts.GetPost(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"post": post})
}

func (h *PostHandler) UpdatePost(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post ID"})
		return
	}

	var req postContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.posts.UpdatePost(c.Request.Context(), id, req.Content, middleware.GetUserID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Post updated successfully",
		"post":    post,
	})
}

func (h *PostHandler) DeletePost(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post ID"})
		return
	}

	if err := h.posts.DeletePost(c.Request.Context(), id, middleware.GetUserID(c)); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}

func (h *PostHandler) AddComment(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post ID"})
		return
	}

	var req postContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.posts.AddComment(c.Request.Context(), id, middleware.GetUserID(c), req.Content)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Comment added successfully",
		"post":    post,
	})
}

func (h *PostHandler) LikePost(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post ID"})
		return
	}

	post, err := h.posts.LikePost(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Post liked",
		"post":    post,
	})
}

func (h *PostHandler) SearchPosts(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	page := pageFromQuery(c)
	posts, err := h.posts.SearchPosts(c.Request.Context(), req.Keyword, page)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts":   posts,
		"keyword": req.Keyword,
		"page":    page.Normalize().Page,
		"size":    page.Normalize().Size,
	})
}
