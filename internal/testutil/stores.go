// Package testutil provides in-memory implementations of the store
// contracts in internal/services, for unit tests that should not need a
// running database. The fakes mirror the real repositories' behavior:
// nil record + nil error on not-found, repository.ErrDuplicate on unique
// constraint violations, cascade delete of a post's comments and likes.
package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mnaeem99/econceptions-assignment/internal/models"
	"github.com/mnaeem99/econceptions-assignment/internal/repository"
)

type Stores struct {
	mu       sync.Mutex
	users    map[uint]*models.User
	posts    map[uint]*models.Post
	comments map[uint]*models.Comment
	likes    map[uint]*models.Like
	follows  map[uint]*models.Follow
	nextID   uint
	baseTime time.Time
}

func NewStores() *Stores {
	return &Stores{
		users:    make(map[uint]*models.User),
		posts:    make(map[uint]*models.Post),
		comments: make(map[uint]*models.Comment),
		likes:    make(map[uint]*models.Like),
		follows:  make(map[uint]*models.Follow),
		baseTime: time.Now().Add(-time.Hour),
	}
}

// allocate hands out a fresh id and a strictly increasing timestamp so that
// creation-time ordering is deterministic in tests.
func (s *Stores) allocate() (uint, time.Time) {
	s.nextID++
	return s.nextID, s.baseTime.Add(time.Duration(s.nextID) * time.Second)
}

func (s *Stores) Users() *UserStore       { return &UserStore{s: s} }
func (s *Stores) Posts() *PostStore       { return &PostStore{s: s} }
func (s *Stores) Comments() *CommentStore { return &CommentStore{s: s} }
func (s *Stores) Likes() *LikeStore       { return &LikeStore{s: s} }
func (s *Stores) Follows() *FollowStore   { return &FollowStore{s: s} }

type UserStore struct{ s *Stores }

func (st *UserStore) Create(_ context.Context, user *models.User) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	for _, existing := range st.s.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	id, ts := st.s.allocate()
	user.ID = id
	user.CreatedAt = ts
	user.UpdatedAt = ts
	stored := *user
	st.s.users[id] = &stored
	return nil
}

func (st *UserStore) GetByID(_ context.Context, id uint) (*models.User, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	user, ok := st.s.users[id]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

func (st *UserStore) GetByUsername(_ context.Context, username string) (*models.User, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	for _, user := range st.s.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (st *UserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	for _, user := range st.s.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (st *UserStore) Search(_ context.Context, keyword string, offset, limit int) ([]*models.User, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	var matched []*models.User
	for _, user := range st.s.users {
		if strings.Contains(user.Username, keyword) ||
			strings.Contains(user.Email, keyword) ||
			strings.Contains(user.Bio, keyword) {
			copied := *user
			matched = append(matched, &copied)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return page(matched, offset, limit), nil
}

type PostStore struct{ s *Stores }

func (st *PostStore) Create(_ context.Context, post *models.Post) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	id, ts := st.s.allocate()
	post.ID = id
	post.CreatedAt = ts
	post.UpdatedAt = ts
	stored := *post
	st.s.posts[id] = &stored
	return nil
}

func (st *PostStore) GetByID(_ context.Context, id uint) (*models.Post, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	post, ok := st.s.posts[id]
	if !ok {
		return nil, nil
	}
	copied := *post
	if owner, ok := st.s.users[post.UserID]; ok {
		copied.User = *owner
	}
	return &copied, nil
}

func (st *PostStore) Update(_ context.Context, post *models.Post) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	stored, ok := st.s.posts[post.ID]
	if !ok {
		return nil
	}
	stored.Content = post.Content
	stored.UpdatedAt = time.Now()
	return nil
}

func (st *PostStore) Delete(_ context.Context, id uint) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	delete(st.s.posts, id)
	for cid, comment := range st.s.comments {
		if comment.PostID == id {
			delete(st.s.comments, cid)
		}
	}
	for lid, like := range st.s.likes {
		if like.PostID == id {
			delete(st.s.likes, lid)
		}
	}
	return nil
}

func (st *PostStore) List(_ context.Context, offset, limit int, sortBy string, descending bool) ([]*models.Post, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	var posts []*models.Post
	for _, post := range st.s.posts {
		copied := *post
		if owner, ok := st.s.users[post.UserID]; ok {
			copied.User = *owner
		}
		posts = append(posts, &copied)
	}
	sortPosts(posts, sortBy, descending)
	return page(posts, offset, limit), nil
}

func (st *PostStore) Search(_ context.Context, keyword string, offset, limit int) ([]*models.Post, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	var posts []*models.Post
	for _, post := range st.s.posts {
		if strings.Contains(post.Content, keyword) {
			copied := *post
			if owner, ok := st.s.users[post.UserID]; ok {
				copied.User = *owner
			}
			posts = append(posts, &copied)
		}
	}
	sortPosts(posts, "created_at", true)
	return page(posts, offset, limit), nil
}

type CommentStore struct{ s *Stores }

func (st *CommentStore) Create(_ context.Context, comment *models.Comment) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	id, ts := st.s.allocate()
	comment.ID = id
	comment.CreatedAt = ts
	stored := *comment
	st.s.comments[id] = &stored
	return nil
}

func (st *CommentStore) CountByPostID(_ context.Context, postID uint) (int64, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	var count int64
	for _, comment := range st.s.comments {
		if comment.PostID == postID {
			count++
		}
	}
	return count, nil
}

func (st *CommentStore) CountForPosts(ctx context.Context, postIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(postIDs))
	for _, id := range postIDs {
		count, err := st.CountByPostID(ctx, id)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			counts[id] = count
		}
	}
	return counts, nil
}

type LikeStore struct{ s *Stores }

func (st *LikeStore) Create(_ context.Context, like *models.Like) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	for _, existing := range st.s.likes {
		if existing.PostID == like.PostID && existing.UserID == like.UserID {
			return repository.ErrDuplicate
		}
	}
	id, ts := st.s.allocate()
	like.ID = id
	like.CreatedAt = ts
	stored := *like
	st.s.likes[id] = &stored
	return nil
}

func (st *LikeStore) Exists(_ context.Context, postID, userID uint) (bool, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	for _, like := range st.s.likes {
		if like.PostID == postID && like.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (st *LikeStore) CountByPostID(_ context.Context, postID uint) (int64, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	var count int64
	for _, like := range st.s.likes {
		if like.PostID == postID {
			count++
		}
	}
	return count, nil
}

func (st *LikeStore) CountForPosts(ctx context.Context, postIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(postIDs))
	for _, id := range postIDs {
		count, err := st.CountByPostID(ctx, id)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			counts[id] = count
		}
	}
	return counts, nil
}

type FollowStore struct{ s *Stores }

func (st *FollowStore) Create(_ context.Context, follow *models.Follow) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	for _, existing := range st.s.follows {
		if existing.FollowerID == follow.FollowerID && existing.FollowingID == follow.FollowingID {
			return repository.ErrDuplicate
		}
	}
	id, ts := st.s.allocate()
	follow.ID = id
	follow.CreatedAt = ts
	stored := *follow
	st.s.follows[id] = &stored
	return nil
}

func (st *FollowStore) Exists(_ context.Context, followerID, followingID uint) (bool, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	for _, follow := range st.s.follows {
		if follow.FollowerID == followerID && follow.FollowingID == followingID {
			return true, nil
		}
	}
	return false, nil
}

func (st *FollowStore) GetFollowers(_ context.Context, userID uint, offset, limit int) ([]*models.User, error) {
	return st.edgeUsers(userID, true, offset, limit), nil
}

func (st *FollowStore) GetFollowing(_ context.Context, userID uint, offset, limit int) ([]*models.User, error) {
	return st.edgeUsers(userID, false, offset, limit), nil
}

func (st *FollowStore) edgeUsers(userID uint, followers bool, offset, limit int) []*models.User {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	var edges []*models.Follow
	for _, follow := range st.s.follows {
		if followers && follow.FollowingID == userID {
			edges = append(edges, follow)
		}
		if !followers && follow.FollowerID == userID {
			edges = append(edges, follow)
		}
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].ID < edges[j].ID })

	var users []*models.User
	for _, edge := range edges {
		other := edge.FollowerID
		if !followers {
			other = edge.FollowingID
		}
		if user, ok := st.s.users[other]; ok {
			copied := *user
			users = append(users, &copied)
		}
	}
	return page(users, offset, limit)
}

func sortPosts(posts []*models.Post, sortBy string, descending bool) {
	sort.Slice(posts, func(i, j int) bool {
		a, b := posts[i], posts[j]
		var less bool
		switch sortBy {
		case "id":
			less = a.ID < b.ID
		case "updated_at":
			less = a.UpdatedAt.Before(b.UpdatedAt)
		default:
			less = a.CreatedAt.Before(b.CreatedAt)
		}
		if descending {
			return !less
		}
		return less
	})
}

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
