package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/NuvaGit/CaitlinPortfolio/internal/auth"
	"github.com/NuvaGit/CaitlinPortfolio/internal/db"
	"github.com/NuvaGit/CaitlinPortfolio/internal/models"
	"github.com/NuvaGit/CaitlinPortfolio/internal/slugify"
)

// PostStore is the post persistence surface the handlers depend on.
// *db.Store implements it.
type PostStore interface {
	ListPosts(ctx context.Context, filter db.ListFilter) ([]models.Post, error)
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	GetPostBySlug(ctx context.Context, slug string) (*models.Post, error)
	CreatePost(ctx context.Context, post models.Post) (*models.Post, error)
	UpdatePost(ctx context.Context, id string, update db.PostUpdate) (*models.Post, error)
	DeletePost(ctx context.Context, id string) error
	IncrementLike(ctx context.Context, id string) (int, error)
	AppendComment(ctx context.Context, postID, content, author string) (*models.Comment, error)
}

type PostsHandler struct {
	store PostStore
}

func NewPostsHandler(store PostStore) *PostsHandler {
	return &PostsHandler{store: store}
}

type CreatePostRequest struct {
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	Excerpt       string   `json:"excerpt"`
	Tags          []string `json:"tags"`
	FeaturedImage string   `json:"featuredImage"`
	PDFURL        string   `json:"pdfUrl"`
	PDFText       string   `json:"pdfText"`
	IsPublished   *bool    `json:"isPublished"`
}

type UpdatePostRequest struct {
	Title         *string  `json:"title"`
	Content       *string  `json:"content"`
	Excerpt       *string  `json:"excerpt"`
	Tags          []string `json:"tags"`
	FeaturedImage *string  `json:"featuredImage"`
	PDFURL        *string  `json:"pdfUrl"`
	PDFText       *string  `json:"pdfText"`
	IsPublished   *bool    `json:"isPublished"`
}

type CommentRequest struct {
	Content string `json:"content"`
	Author  string `json:"author"`
}

// List serves all posts, newest first. Unpublished posts are included
// only for admin sessions.
func (h *PostsHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := db.ListFilter{
		Tag:                r.URL.Query().Get("tag"),
		Limit:              parsePositiveInt(r.URL.Query().Get("limit"), 0),
		IncludeUnpublished: auth.IsAdmin(r.Context()),
	}

	posts, err := h.store.ListPosts(r.Context(), filter)
	if err != nil {
		log.Printf("list posts: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch posts")
		return
	}
	respondJSON(w, http.StatusOK, posts)
}

func (h *PostsHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	post, err := h.store.GetPostByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Post not found")
			return
		}
		log.Printf("get post: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch post")
		return
	}
	respondJSON(w, http.StatusOK, post)
}

func (h *PostsHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	post, err := h.store.GetPostBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Post not found")
			return
		}
		log.Printf("get post by slug: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch post")
		return
	}
	respondJSON(w, http.StatusOK, post)
}

func (h *PostsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Content) == "" {
		respondError(w, http.StatusBadRequest, "Title and content are required")
		return
	}

	excerpt := strings.TrimSpace(req.Excerpt)
	if excerpt == "" {
		excerpt = makeExcerpt(req.Content)
	}
	isPublished := true
	if req.IsPublished != nil {
		isPublished = *req.IsPublished
	}

	post := models.Post{
		Title:         req.Title,
		Slug:          slugify.Make(req.Title),
		Content:       req.Content,
		Excerpt:       excerpt,
		FeaturedImage: req.FeaturedImage,
		PDFURL:        req.PDFURL,
		PDFText:       req.PDFText,
		Tags:          req.Tags,
		IsPublished:   isPublished,
	}
	if claims, ok := auth.FromContext(r.Context()); ok {
		post.Author = models.Author{ID: claims.UserID, Name: claims.Name}
	}

	created, err := h.store.CreatePost(r.Context(), post)
	if err != nil {
		log.Printf("create post: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to create post")
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (h *PostsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req UpdatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}

	update := db.PostUpdate{
		Title:         req.Title,
		Content:       req.Content,
		Excerpt:       req.Excerpt,
		Tags:          req.Tags,
		FeaturedImage: req.FeaturedImage,
		PDFURL:        req.PDFURL,
		PDFText:       req.PDFText,
		IsPublished:   req.IsPublished,
	}
	// Changing the title changes the slug with it.
	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			respondError(w, http.StatusBadRequest, "Title and content are required")
			return
		}
		slug := slugify.Make(*req.Title)
		update.Slug = &slug
	}

	updated, err := h.store.UpdatePost(r.Context(), id, update)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Post not found")
			return
		}
		log.Printf("update post: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to update post")
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (h *PostsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.DeletePost(r.Context(), id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Post not found")
			return
		}
		log.Printf("delete post: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to delete post")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Post deleted successfully"})
}

func (h *PostsHandler) Like(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	likes, err := h.store.IncrementLike(r.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Post not found")
			return
		}
		log.Printf("like post: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to like post")
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"likes": likes})
}

func (h *PostsHandler) Comment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if strings.TrimSpace(req.Content) == "" || strings.TrimSpace(req.Author) == "" {
		respondError(w, http.StatusBadRequest, "Comment content and author are required")
		return
	}

	comment, err := h.store.AppendComment(r.Context(), id, req.Content, req.Author)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Post not found")
			return
		}
		log.Printf("add comment: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to add comment")
		return
	}
	respondJSON(w, http.StatusCreated, comment)
}

var htmlTag = regexp.MustCompile(`<[^>]*>`)

// makeExcerpt derives the default excerpt: content with HTML stripped,
// truncated to 150 characters, suffixed with "...".
func makeExcerpt(content string) string {
	stripped := htmlTag.ReplaceAllString(content, "")
	runes := []rune(stripped)
	if len(runes) > 150 {
		runes = runes[:150]
	}
	return string(runes) + "..."
}

func parsePositiveInt(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
