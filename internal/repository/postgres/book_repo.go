package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/xela07ax/librarium/internal/domain"
)

type BookRepo struct {
	*Store
}

func NewBookRepo(store *Store) *BookRepo {
	return &BookRepo{Store: store}
}

const bookColumns = `id, title, author, is_borrowed, created_at, updated_at`

func scanBook(row pgx.Row) (*domain.Book, error) {
	b := &domain.Book{}
	err := row.Scan(&b.ID, &b.Title, &b.Author, &b.IsBorrowed, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return b, nil
}

func (r *BookRepo) Insert(ctx context.Context, b *domain.Book) (*domain.Book, error) {
	query := `
		INSERT INTO books (title, author)
		VALUES ($1, $2)
		RETURNING ` + bookColumns

	created, err := scanBook(r.pool.QueryRow(ctx, query, b.Title, b.Author))
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to insert book: %w", err)
	}
	return created, nil
}

func (r *BookRepo) FindByID(ctx context.Context, id int64) (*domain.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`
	return scanBook(r.pool.QueryRow(ctx, query, id))
}

func (r *BookRepo) List(ctx context.Context) ([]*domain.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*domain.Book
	for rows.Next() {
		b := &domain.Book{}
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.IsBorrowed, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		results = append(results, b)
	}
	return results, rows.Err()
}

// SetBorrowed атомарно переключает флаг выдачи книги.
// Условие WHERE is_borrowed = NOT $1 гарантирует, что два конкурентных
// borrow не пройдут оба: проигравший увидит rows=0 и получит конфликт.
func (r *BookRepo) SetBorrowed(ctx context.Context, id int64, borrowed bool) (*domain.Book, error) {
	query := `
		UPDATE books
		SET is_borrowed = $1, updated_at = NOW()
		WHERE id = $2 AND is_borrowed = NOT $1
		RETURNING ` + bookColumns

	book, err := scanBook(r.pool.QueryRow(ctx, query, borrowed, id))
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to toggle borrow flag: %w", err)
	}
	return book, nil
}

// Delete удаляет книгу по ID. false — записи не было.
func (r *BookRepo) Delete(ctx context.Context, id int64) (bool, error) {
	ct, err := r.pool.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("postgres: failed to delete book: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}
