package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/mnaeem99/econceptions-assignment/internal/models"
	"gorm.io/gorm"
)

// sortColumns whitelists the sortable post columns. "timestamp" is accepted
// as an alias for the creation time to match the public API parameter.
var sortColumns = map[string]string{
	"timestamp":  "created_at",
	"created_at": "created_at",
	"updated_at": "updated_at",
	"id":         "id",
}

type PostRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

func (r *PostRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).
		Preload("User").
		First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return &post, nil
}

func (r *PostRepository) Update(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", post.ID).
		Update("content", post.Content).Error; err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}
	return nil
}

// Delete removes the post together with its comments and likes in one
// transaction. Comments and likes are exclusively owned by the post.
func (r *PostRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, "id = ?", id).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	return nil
}

func (r *PostRepository) List(ctx context.Context, offset, limit int, sortBy string, descending bool) ([]*models.Post, error) {
	column, ok := sortColumns[sortBy]
	if !ok {
		column = "created_at"
	}
	order := column + " ASC"
	if descending {
		order = column + " DESC"
	}

	var posts []*models.Post
	if err := r.db.WithContext(ctx).
		Preload("User").
		Order(order).
		Offset(offset).
		Limit(limit).
		Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

func (r *PostRepository) Search(ctx context.Context, keyword string, offset, limit int) ([]*models.Post, error) {
	var posts []*models.Post
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("content LIKE ?", "%"+keyword+"%").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to search posts: %w", err)
	}
	return posts, nil
}
