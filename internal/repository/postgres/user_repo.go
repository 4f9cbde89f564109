package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/xela07ax/librarium/internal/domain"
)

// Код Postgres для нарушения уникальности (username/email заняты).
const uniqueViolationCode = "23505"

type UserRepo struct {
	*Store
}

func NewUserRepo(store *Store) *UserRepo {
	return &UserRepo{Store: store}
}

const userColumns = `id, username, email, password_hash, is_admin, is_active, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	u := &domain.User{}
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash,
		&u.IsAdmin, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // nil для 404/401 решает слой выше
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return scanUser(r.pool.QueryRow(ctx, query, username))
}

func (r *UserRepo) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

// Insert создает пользователя и возвращает запись с присвоенным id.
// Гонка одновременных регистраций разруливается только уникальным
// констрейнтом БД: проигравший получает domain.ErrConflict.
func (r *UserRepo) Insert(ctx context.Context, u *domain.User) (*domain.User, error) {
	query := `
		INSERT INTO users (username, email, password_hash, is_admin, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userColumns

	created, err := scanUser(r.pool.QueryRow(ctx, query,
		u.Username, u.Email, u.PasswordHash, u.IsAdmin, u.IsActive))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, domain.ErrConflict
		}
		return nil, fmt.Errorf("postgres: failed to insert user: %w", err)
	}
	return created, nil
}

func (r *UserRepo) List(ctx context.Context) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*domain.User
	for rows.Next() {
		u := &domain.User{}
		if err := rows.Scan(
			&u.ID, &u.Username, &u.Email, &u.PasswordHash,
			&u.IsAdmin, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, err
		}
		results = append(results, u)
	}
	return results, rows.Err()
}

// Delete удаляет пользователя. false — записи не было.
func (r *UserRepo) Delete(ctx context.Context, id int64) (bool, error) {
	ct, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("postgres: failed to delete user: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}
