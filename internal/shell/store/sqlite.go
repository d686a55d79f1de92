package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/inkletapp/inklet/internal/core/domain"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// timeLayout is RFC 3339 with a fixed-width nanosecond fraction so that
// lexicographic ordering on the created_at column matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// =============================================================================
// Executor Interface - Shared by DB and Transaction
// =============================================================================

// executor abstracts database operations that can be performed on both
// a database connection and a transaction.
type executor interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// =============================================================================
// SQLiteStore
// =============================================================================

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore creates a new SQLite store and runs migrations.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite3", dsn+"?_foreign_keys=on")
	if err != nil {
		return nil, NewStoreError("NewSQLiteStore", "", "", "failed to open database", ErrConnectionFailed)
	}

	// SQLite allows a single writer; one pooled connection avoids
	// SQLITE_BUSY and keeps :memory: databases on one connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, NewStoreError("NewSQLiteStore", "", "", "failed to ping database", ErrConnectionFailed)
	}

	if err := runMigrations(db.DB); err != nil {
		db.Close()
		return nil, NewStoreError("NewSQLiteStore", "", "", err.Error(), ErrMigrationFailed)
	}

	return &SQLiteStore{db: db}, nil
}

// runMigrations runs database migrations using embedded SQL files.
func runMigrations(db *sql.DB) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// =============================================================================
// Post Operations
// =============================================================================

// postRow represents a post row in the database.
type postRow struct {
	ID        string `db:"id"`
	Title     string `db:"title"`
	Content   string `db:"content"`
	Slug      string `db:"slug"`
	CreatedAt string `db:"created_at"`
	UpdatedAt string `db:"updated_at"`
}

func (s *SQLiteStore) CreatePost(ctx context.Context, post *domain.Post) error {
	return createPost(ctx, s.db, post)
}

func (s *SQLiteStore) GetPostBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	return getPostBySlug(ctx, s.db, slug)
}

func (s *SQLiteStore) ListPosts(ctx context.Context) ([]domain.Post, error) {
	return listPosts(ctx, s.db)
}

func (s *SQLiteStore) UpdatePost(ctx context.Context, post *domain.Post) error {
	return updatePost(ctx, s.db, post)
}

func (s *SQLiteStore) DeletePost(ctx context.Context, id string) error {
	return deletePost(ctx, s.db, id)
}

func (s *SQLiteStore) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	return slugExists(ctx, s.db, slug, excludeID)
}

// =============================================================================
// Transaction Support
// =============================================================================

func (s *SQLiteStore) WithTx(ctx context.Context, fn func(Store) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return NewStoreError("WithTx", "", "", "failed to begin transaction", ErrTxFailed)
	}

	txS := &txSQLiteStore{tx: tx}

	if err := fn(txS); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return NewStoreError("WithTx", "", "", fmt.Sprintf("rollback failed after error: %v", err), ErrTxFailed)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return NewStoreError("WithTx", "", "", "failed to commit transaction", ErrTxFailed)
	}

	return nil
}

// txSQLiteStore implements Store within a transaction.
type txSQLiteStore struct {
	tx *sqlx.Tx
}

func (s *txSQLiteStore) CreatePost(ctx context.Context, post *domain.Post) error {
	return createPost(ctx, s.tx, post)
}

func (s *txSQLiteStore) GetPostBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	return getPostBySlug(ctx, s.tx, slug)
}

func (s *txSQLiteStore) ListPosts(ctx context.Context) ([]domain.Post, error) {
	return listPosts(ctx, s.tx)
}

func (s *txSQLiteStore) UpdatePost(ctx context.Context, post *domain.Post) error {
	return updatePost(ctx, s.tx, post)
}

func (s *txSQLiteStore) DeletePost(ctx context.Context, id string) error {
	return deletePost(ctx, s.tx, id)
}

func (s *txSQLiteStore) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	return slugExists(ctx, s.tx, slug, excludeID)
}

func (s *txSQLiteStore) WithTx(ctx context.Context, fn func(Store) error) error {
	// Already in a transaction, just run the function
	return fn(s)
}

func (s *txSQLiteStore) Close() error {
	// No-op for tx store
	return nil
}

// =============================================================================
// Shared Implementation Functions
// =============================================================================

func createPost(ctx context.Context, exec executor, post *domain.Post) error {
	query := `
		INSERT INTO posts (id, title, content, slug, created_at, updated_at)
		VALUES (:id, :title, :content, :slug, :created_at, :updated_at)`

	row := map[string]any{
		"id":         post.ID,
		"title":      post.Title,
		"content":    post.Content,
		"slug":       post.Slug,
		"created_at": post.CreatedAt.Format(timeLayout),
		"updated_at": post.UpdatedAt.Format(timeLayout),
	}

	_, err := exec.NamedExecContext(ctx, query, row)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: posts.id") {
			return NewStoreError("CreatePost", "post", post.ID, "post with this ID already exists", ErrDuplicateID)
		}
		if strings.Contains(err.Error(), "UNIQUE constraint failed: posts.slug") {
			return NewStoreError("CreatePost", "post", post.ID, "post with this slug already exists", ErrDuplicateSlug)
		}
		return NewStoreError("CreatePost", "post", post.ID, err.Error(), err)
	}

	return nil
}

func getPostBySlug(ctx context.Context, exec executor, slug string) (*domain.Post, error) {
	query := `SELECT * FROM posts WHERE slug = ?`

	var row postRow
	err := exec.GetContext(ctx, &row, query, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetPostBySlug", "post", slug, "post not found", ErrNotFound)
		}
		return nil, NewStoreError("GetPostBySlug", "post", slug, err.Error(), err)
	}

	return rowToPost(&row)
}

func listPosts(ctx context.Context, exec executor) ([]domain.Post, error) {
	query := `SELECT * FROM posts ORDER BY created_at DESC`

	var rows []postRow
	err := exec.SelectContext(ctx, &rows, query)
	if err != nil {
		return nil, NewStoreError("ListPosts", "post", "", err.Error(), err)
	}

	posts := make([]domain.Post, 0, len(rows))
	for _, row := range rows {
		post, err := rowToPost(&row)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *post)
	}

	return posts, nil
}

func updatePost(ctx context.Context, exec executor, post *domain.Post) error {
	query := `
		UPDATE posts SET
			title = :title,
			content = :content,
			slug = :slug,
			updated_at = :updated_at
		WHERE id = :id`

	row := map[string]any{
		"id":         post.ID,
		"title":      post.Title,
		"content":    post.Content,
		"slug":       post.Slug,
		"updated_at": post.UpdatedAt.Format(timeLayout),
	}

	result, err := exec.NamedExecContext(ctx, query, row)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: posts.slug") {
			return NewStoreError("UpdatePost", "post", post.ID, "post with this slug already exists", ErrDuplicateSlug)
		}
		return NewStoreError("UpdatePost", "post", post.ID, err.Error(), err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return NewStoreError("UpdatePost", "post", post.ID, "post not found", ErrNotFound)
	}

	return nil
}

func deletePost(ctx context.Context, exec executor, id string) error {
	query := `DELETE FROM posts WHERE id = ?`

	result, err := exec.ExecContext(ctx, query, id)
	if err != nil {
		return NewStoreError("DeletePost", "post", id, err.Error(), err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return NewStoreError("DeletePost", "post", id, "post not found", ErrNotFound)
	}

	return nil
}

func slugExists(ctx context.Context, exec executor, slug, excludeID string) (bool, error) {
	query := `SELECT COUNT(*) FROM posts WHERE slug = ? AND id != ?`

	var count int
	err := exec.GetContext(ctx, &count, query, slug, excludeID)
	if err != nil {
		return false, NewStoreError("SlugExists", "post", slug, err.Error(), err)
	}

	return count > 0, nil
}

// rowToPost converts a database row to a domain.Post.
func rowToPost(row *postRow) (*domain.Post, error) {
	createdAt, err := time.Parse(time.RFC3339Nano, row.CreatedAt)
	if err != nil {
		return nil, NewStoreError("rowToPost", "post", row.ID, "invalid created_at timestamp", err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, row.UpdatedAt)
	if err != nil {
		return nil, NewStoreError("rowToPost", "post", row.ID, "invalid updated_at timestamp", err)
	}

	return &domain.Post{
		ID:        row.ID,
		Title:     row.Title,
		Content:   row.Content,
		Slug:      row.Slug,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}
