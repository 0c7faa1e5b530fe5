package handlers_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/NuvaGit/CaitlinPortfolio/internal/db"
	"github.com/NuvaGit/CaitlinPortfolio/internal/models"
	"github.com/NuvaGit/CaitlinPortfolio/internal/slugify"
)

// memStore is an in-memory stand-in for db.Store with the same external
// semantics: newest-first listing, slug disambiguation, append-only
// comments, atomic-ish like counts.
type memStore struct {
	mu      sync.Mutex
	posts   map[string]*models.Post
	users   map[string]*models.User
	nextID  int
	baseNow time.Time
}

func newMemStore() *memStore {
	return &memStore{
		posts:   make(map[string]*models.Post),
		users:   make(map[string]*models.User),
		baseNow: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) newID(prefix string) (string, time.Time) {
	m.nextID++
	return fmt.Sprintf("%s-%d", prefix, m.nextID), m.baseNow.Add(time.Duration(m.nextID) * time.Second)
}

func (m *memStore) slugInUse(slug, excludeID string) bool {
	for id, p := range m.posts {
		if id != excludeID && p.Slug == slug {
			return true
		}
	}
	return false
}

func (m *memStore) resolveSlug(slug, excludeID string) string {
	if !m.slugInUse(slug, excludeID) {
		return slug
	}
	for n := 2; ; n++ {
		candidate := slugify.WithSuffix(slug, n)
		if !m.slugInUse(candidate, excludeID) {
			return candidate
		}
	}
}

func (m *memStore) ListPosts(_ context.Context, filter db.ListFilter) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Post, 0, len(m.posts))
	for _, p := range m.posts {
		if !filter.IncludeUnpublished && !p.IsPublished {
			continue
		}
		if filter.Tag != "" && !hasTag(p.Tags, filter.Tag) {
			continue
		}
		out = append(out, clonePost(p))
	}
	// newest createdAt first
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].CreatedAt.After(out[i].CreatedAt) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (m *memStore) GetPostByID(_ context.Context, id string) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := clonePost(p)
	return &cp, nil
}

func (m *memStore) GetPostBySlug(_ context.Context, slug string) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.posts {
		if p.Slug == slug {
			cp := clonePost(p)
			return &cp, nil
		}
	}
	return nil, db.ErrNotFound
}

func (m *memStore) CreatePost(_ context.Context, post models.Post) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, now := m.newID("post")
	post.ID = id
	post.Slug = m.resolveSlug(post.Slug, id)
	post.CreatedAt = now
	post.UpdatedAt = now
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	m.posts[id] = &post
	cp := clonePost(&post)
	return &cp, nil
}

func (m *memStore) UpdatePost(_ context.Context, id string, update db.PostUpdate) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.posts[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	if update.Title != nil {
		p.Title = *update.Title
	}
	if update.Slug != nil {
		p.Slug = m.resolveSlug(*update.Slug, id)
	}
	if update.Content != nil {
		p.Content = *update.Content
	}
	if update.Excerpt != nil {
		p.Excerpt = *update.Excerpt
	}
	if update.FeaturedImage != nil {
		p.FeaturedImage = *update.FeaturedImage
	}
	if update.PDFURL != nil {
		p.PDFURL = *update.PDFURL
	}
	if update.PDFText != nil {
		p.PDFText = *update.PDFText
	}
	if update.Tags != nil {
		p.Tags = update.Tags
	}
	if update.IsPublished != nil {
		p.IsPublished = *update.IsPublished
	}
	p.UpdatedAt = p.UpdatedAt.Add(time.Second)
	cp := clonePost(p)
	return &cp, nil
}

func (m *memStore) DeletePost(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.posts[id]; !ok {
		return db.ErrNotFound
	}
	delete(m.posts, id)
	return nil
}

func (m *memStore) IncrementLike(_ context.Context, id string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return 0, db.ErrNotFound
	}
	p.Likes++
	return p.Likes, nil
}

func (m *memStore) AppendComment(_ context.Context, postID, content, author string) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[postID]
	if !ok {
		return nil, db.ErrNotFound
	}
	id, now := m.newID("comment")
	comment := models.Comment{ID: id, Content: content, Author: author, CreatedAt: now}
	p.Comments = append(p.Comments, comment)
	return &comment, nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, db.ErrUserNotFound
}

func (m *memStore) CreateUser(_ context.Context, user models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, _ := m.newID("user")
	user.ID = id
	m.users[id] = &user
	cp := user
	return &cp, nil
}

func clonePost(p *models.Post) models.Post {
	cp := *p
	cp.Tags = append([]string(nil), p.Tags...)
	cp.Comments = append([]models.Comment{}, p.Comments...)
	return cp
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
