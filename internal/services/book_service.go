package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/isdelr/bookshelf-be/internal/database"
	"github.com/isdelr/bookshelf-be/internal/models"
)

// BookServiceProvider defines the interface for book services. Every
// operation is scoped to ownerID; a book owned by someone else behaves
// exactly like a missing one.
type BookServiceProvider interface {
	GetBooksByOwner(ctx context.Context, ownerID int64) ([]models.Book, error)
	GetBook(ctx context.Context, ownerID, id int64) (models.Book, error)
	CreateBook(ctx context.Context, ownerID int64, title, author string) (models.Book, error)
	UpdateBook(ctx context.Context, ownerID, id int64, title, author string) (models.Book, error)
	DeleteBook(ctx context.Context, ownerID, id int64) error
}

// BookService provides persistence for book records.
type BookService struct {
	db *database.DB
}

// NewBookService creates a new BookService.
func NewBookService(db *database.DB) *BookService {
	return &BookService{db: db}
}

// GetBooksByOwner lists the owner's books ordered by id.
func (s *BookService) GetBooksByOwner(ctx context.Context, ownerID int64) ([]models.Book, error) {
	rows, err := s.db.QueryContext(ctx,
		s.db.Rebind("SELECT id, title, author, owner_id FROM books WHERE owner_id = ? ORDER BY id"), ownerID)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	books := []models.Book{}
	for rows.Next() {
		var b models.Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.OwnerID); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate books: %w", err)
	}
	return books, nil
}

// GetBook retrieves a single book belonging to ownerID.
func (s *BookService) GetBook(ctx context.Context, ownerID, id int64) (models.Book, error) {
	var b models.Book
	err := s.db.QueryRowContext(ctx,
		s.db.Rebind("SELECT id, title, author, owner_id FROM books WHERE id = ? AND owner_id = ?"),
		id, ownerID,
	).Scan(&b.ID, &b.Title, &b.Author, &b.OwnerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Book{}, ErrNotFound
		}
		return models.Book{}, fmt.Errorf("get book %d: %w", id, err)
	}
	return b, nil
}

// CreateBook adds a book owned by ownerID.
func (s *BookService) CreateBook(ctx context.Context, ownerID int64, title, author string) (models.Book, error) {
	b := models.Book{Title: title, Author: author, OwnerID: ownerID}
	err := s.db.QueryRowContext(ctx,
		s.db.Rebind("INSERT INTO books(title, author, owner_id) VALUES(?, ?, ?) RETURNING id"),
		title, author, ownerID,
	).Scan(&b.ID)
	if err != nil {
		return models.Book{}, fmt.Errorf("insert book: %w", err)
	}
	return b, nil
}

// UpdateBook replaces the title and author of one of the owner's books.
func (s *BookService) UpdateBook(ctx context.Context, ownerID, id int64, title, author string) (models.Book, error) {
	res, err := s.db.ExecContext(ctx,
		s.db.Rebind("UPDATE books SET title = ?, author = ? WHERE id = ? AND owner_id = ?"),
		title, author, id, ownerID)
	if err != nil {
		return models.Book{}, fmt.Errorf("update book %d: %w", id, err)
	}
	if err := expectOneRow(res); err != nil {
		return models.Book{}, err
	}
	return models.Book{ID: id, Title: title, Author: author, OwnerID: ownerID}, nil
}

// DeleteBook removes one of the owner's books.
func (s *BookService) DeleteBook(ctx context.Context, ownerID, id int64) error {
	res, err := s.db.ExecContext(ctx,
		s.db.Rebind("DELETE FROM books WHERE id = ? AND owner_id = ?"), id, ownerID)
	if err != nil {
		return fmt.Errorf("delete book %d: %w", id, err)
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
