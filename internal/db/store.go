package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/NuvaGit/CaitlinPortfolio/internal/models"
	"github.com/NuvaGit/CaitlinPortfolio/internal/slugify"
)

// maxSlugAttempts bounds the disambiguation loop when a derived slug
// collides with an existing post.
const maxSlugAttempts = 10

type Store struct {
	pool *pgxpool.Pool
}

// Pool returns the underlying pgxpool.Pool
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Init creates the tables if they do not exist.
func (s *Store) Init(ctx context.Context) error {
	if s.pool == nil {
		return errors.New("db not initialized")
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			role TEXT NOT NULL DEFAULT 'user'
		)`,
		`CREATE TABLE IF NOT EXISTS posts (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			title TEXT NOT NULL,
			slug TEXT NOT NULL UNIQUE,
			content TEXT NOT NULL,
			excerpt TEXT,
			featured_image TEXT,
			pdf_url TEXT,
			pdf_text TEXT,
			tags TEXT[],
			author_id UUID REFERENCES users(id),
			likes INTEGER NOT NULL DEFAULT 0,
			is_published BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS comments (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			post_id UUID NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
			seq BIGSERIAL,
			content TEXT NOT NULL,
			author TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_comments_post_id ON comments(post_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// ListFilter narrows ListPosts. IncludeUnpublished must only be set when
// the caller holds an admin session.
type ListFilter struct {
	Tag                string
	Limit              int
	IncludeUnpublished bool
}

const postColumns = `
	p.id::text,
	p.title,
	p.slug,
	p.content,
	COALESCE(p.excerpt, ''),
	COALESCE(p.featured_image, ''),
	COALESCE(p.pdf_url, ''),
	COALESCE(p.pdf_text, ''),
	COALESCE(p.tags, '{}'::text[]),
	COALESCE(p.author_id::text, ''),
	COALESCE(u.name, ''),
	p.likes,
	p.is_published,
	p.created_at,
	p.updated_at
`

func scanPost(row pgx.Row) (*models.Post, error) {
	var post models.Post
	err := row.Scan(
		&post.ID,
		&post.Title,
		&post.Slug,
		&post.Content,
		&post.Excerpt,
		&post.FeaturedImage,
		&post.PDFURL,
		&post.PDFText,
		&post.Tags,
		&post.Author.ID,
		&post.Author.Name,
		&post.Likes,
		&post.IsPublished,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	post.Comments = []models.Comment{}
	return &post, nil
}

func (s *Store) ListPosts(ctx context.Context, filter ListFilter) ([]models.Post, error) {
	if s.pool == nil {
		return nil, errors.New("db not initialized")
	}

	query := `SELECT ` + postColumns + `
		FROM posts p
		LEFT JOIN users u ON u.id = p.author_id`
	var (
		conds []string
		args  []any
	)
	if !filter.IncludeUnpublished {
		conds = append(conds, "p.is_published = TRUE")
	}
	if filter.Tag != "" {
		args = append(args, filter.Tag)
		conds = append(conds, fmt.Sprintf("$%d = ANY(p.tags)", len(args)))
	}
	for i, cond := range conds {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY p.created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]models.Post, 0)
	ids := make([]string, 0)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *post)
		ids = append(ids, post.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	if len(ids) > 0 {
		byPost, err := s.commentsFor(ctx, ids)
		if err != nil {
			return nil, err
		}
		for i := range posts {
			if comments, ok := byPost[posts[i].ID]; ok {
				posts[i].Comments = comments
			}
		}
	}
	return posts, nil
}

func (s *Store) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	return s.getPost(ctx, "p.id = $1", id)
}

func (s *Store) GetPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	return s.getPost(ctx, "p.slug = $1", slug)
}

func (s *Store) getPost(ctx context.Context, cond, arg string) (*models.Post, error) {
	if s.pool == nil {
		return nil, errors.New("db not initialized")
	}
	query := `SELECT ` + postColumns + `
		FROM posts p
		LEFT JOIN users u ON u.id = p.author_id
		WHERE ` + cond
	post, err := scanPost(s.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if err == pgx.ErrNoRows || isInvalidID(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get post: %w", err)
	}
	byPost, err := s.commentsFor(ctx, []string{post.ID})
	if err != nil {
		return nil, err
	}
	if comments, ok := byPost[post.ID]; ok {
		post.Comments = comments
	}
	return post, nil
}

func (s *Store) CreatePost(ctx context.Context, post models.Post) (*models.Post, error) {
	if s.pool == nil {
		return nil, errors.New("db not initialized")
	}

	const query = `
		INSERT INTO posts (title, slug, content, excerpt, featured_image, pdf_url, pdf_text, tags, author_id, is_published)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), $8, NULLIF($9, '')::uuid, $10)
		RETURNING id::text
	`

	base := post.Slug
	slug := base
	for attempt := 1; attempt <= maxSlugAttempts; attempt++ {
		var id string
		err := s.pool.QueryRow(
			ctx,
			query,
			post.Title,
			slug,
			post.Content,
			post.Excerpt,
			post.FeaturedImage,
			post.PDFURL,
			post.PDFText,
			post.Tags,
			post.Author.ID,
			post.IsPublished,
		).Scan(&id)
		if err == nil {
			return s.GetPostByID(ctx, id)
		}
		if !isUniqueViolation(err) {
			return nil, fmt.Errorf("create post: %w", err)
		}
		slug = slugify.WithSuffix(base, attempt+1)
	}
	return nil, ErrSlugTaken
}

// PostUpdate carries a partial update; nil fields are left unchanged.
type PostUpdate struct {
	Title         *string
	Slug          *string
	Content       *string
	Excerpt       *string
	FeaturedImage *string
	PDFURL        *string
	PDFText       *string
	Tags          []string
	IsPublished   *bool
}

func (s *Store) UpdatePost(ctx context.Context, id string, update PostUpdate) (*models.Post, error) {
	if s.pool == nil {
		return nil, errors.New("db not initialized")
	}

	const query = `
		UPDATE posts SET
			title = COALESCE($2, title),
			slug = COALESCE($3, slug),
			content = COALESCE($4, content),
			excerpt = COALESCE($5, excerpt),
			featured_image = COALESCE($6, featured_image),
			pdf_url = COALESCE($7, pdf_url),
			pdf_text = COALESCE($8, pdf_text),
			tags = COALESCE($9, tags),
			is_published = COALESCE($10, is_published),
			updated_at = now()
		WHERE id = $1
		RETURNING id::text
	`

	var base string
	slug := update.Slug
	if slug != nil {
		base = *slug
	}
	for attempt := 1; attempt <= maxSlugAttempts; attempt++ {
		var updated string
		err := s.pool.QueryRow(
			ctx,
			query,
			id,
			update.Title,
			slug,
			update.Content,
			update.Excerpt,
			update.FeaturedImage,
			update.PDFURL,
			update.PDFText,
			update.Tags,
			update.IsPublished,
		).Scan(&updated)
		if err == nil {
			return s.GetPostByID(ctx, updated)
		}
		if err == pgx.ErrNoRows || isInvalidID(err) {
			return nil, ErrNotFound
		}
		if slug == nil || !isUniqueViolation(err) {
			return nil, fmt.Errorf("update post: %w", err)
		}
		next := slugify.WithSuffix(base, attempt+1)
		slug = &next
	}
	return nil, ErrSlugTaken
}

func (s *Store) DeletePost(ctx context.Context, id string) error {
	if s.pool == nil {
		return errors.New("db not initialized")
	}
	tag, err := s.pool.Exec(ctx, "DELETE FROM posts WHERE id = $1", id)
	if err != nil {
		if isInvalidID(err) {
			return ErrNotFound
		}
		return fmt.Errorf("delete post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementLike bumps the like counter by one. The UPDATE is atomic, so
// concurrent likes never under-count.
func (s *Store) IncrementLike(ctx context.Context, id string) (int, error) {
	if s.pool == nil {
		return 0, errors.New("db not initialized")
	}
	const query = `
		UPDATE posts SET likes = likes + 1, updated_at = now()
		WHERE id = $1
		RETURNING likes
	`
	var likes int
	err := s.pool.QueryRow(ctx, query, id).Scan(&likes)
	if err != nil {
		if err == pgx.ErrNoRows || isInvalidID(err) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("increment like: %w", err)
	}
	return likes, nil
}

func (s *Store) AppendComment(ctx context.Context, postID, content, author string) (*models.Comment, error) {
	if s.pool == nil {
		return nil, errors.New("db not initialized")
	}
	const query = `
		INSERT INTO comments (post_id, content, author)
		VALUES ($1, $2, $3)
		RETURNING id::text, content, author, created_at
	`
	var comment models.Comment
	err := s.pool.QueryRow(ctx, query, postID, content, author).Scan(
		&comment.ID,
		&comment.Content,
		&comment.Author,
		&comment.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) || isInvalidID(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("append comment: %w", err)
	}
	if _, err := s.pool.Exec(ctx, "UPDATE posts SET updated_at = now() WHERE id = $1", postID); err != nil {
		return nil, fmt.Errorf("touch post: %w", err)
	}
	return &comment, nil
}

func (s *Store) commentsFor(ctx context.Context, postIDs []string) (map[string][]models.Comment, error) {
	const query = `
		SELECT post_id::text, id::text, content, author, created_at
		FROM comments
		WHERE post_id = ANY($1::uuid[])
		ORDER BY seq
	`
	rows, err := s.pool.Query(ctx, query, postIDs)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	byPost := make(map[string][]models.Comment)
	for rows.Next() {
		var postID string
		var comment models.Comment
		if err := rows.Scan(&postID, &comment.ID, &comment.Content, &comment.Author, &comment.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		byPost[postID] = append(byPost[postID], comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return byPost, nil
}

// User persistence
func (s *Store) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	if s.pool == nil {
		return nil, errors.New("db not initialized")
	}
	const query = `
		INSERT INTO users (name, email, role)
		VALUES ($1, $2, $3)
		RETURNING id::text, name, email, role
	`
	var created models.User
	err := s.pool.QueryRow(ctx, query, user.Name, user.Email, user.Role).Scan(
		&created.ID,
		&created.Name,
		&created.Email,
		&created.Role,
	)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &created, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.pool == nil {
		return nil, errors.New("db not initialized")
	}
	const query = `
		SELECT id::text, name, email, role
		FROM users
		WHERE email = $1
	`
	var user models.User
	err := s.pool.QueryRow(ctx, query, email).Scan(&user.ID, &user.Name, &user.Email, &user.Role)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &user, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if s.pool == nil {
		return nil, errors.New("db not initialized")
	}
	const query = `
		SELECT id::text, name, email, role
		FROM users
		WHERE id = $1
	`
	var user models.User
	err := s.pool.QueryRow(ctx, query, id).Scan(&user.ID, &user.Name, &user.Email, &user.Role)
	if err != nil {
		if err == pgx.ErrNoRows || isInvalidID(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return &user, nil
}
