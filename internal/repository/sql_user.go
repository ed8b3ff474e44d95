package repository

import (
	"context"
	"fmt"

	"github.com/sinaulab/sinau/internal/db"
	"github.com/sinaulab/sinau/internal/domain"
)

// SQLUserRepo implements UserRepo.
type SQLUserRepo struct {
	db db.DBTX
}

func NewSQLUserRepo(conn db.DBTX) *SQLUserRepo {
	return &SQLUserRepo{db: conn}
}

const userColumns = `id, name, email, role, total_points, created_at`

func (r *SQLUserRepo) Create(ctx context.Context, u *domain.User) error {
	query := `INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		u.ID,
		u.Name,
		u.Email,
		string(u.Role),
		u.TotalPoints,
		formatTime(u.CreatedAt),
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return fmt.Errorf("user %s: %w", u.ID, domain.ErrDuplicate)
		}
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

func (r *SQLUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return getOne(r.db.QueryRowContext(ctx, query, id), "user", id, scanUser)
}

func (r *SQLUserRepo) List(ctx context.Context) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return collectRows(rows, "users", scanUser)
}

func (r *SQLUserRepo) IncrementPoints(ctx context.Context, userID string, delta int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET total_points = total_points + ? WHERE id = ?`, delta, userID)
	if err != nil {
		return fmt.Errorf("incrementing points: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("incrementing points: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	return nil
}

func scanUser(s rowScanner) (*domain.User, error) {
	var u domain.User
	var role, createdAt string
	if err := s.Scan(&u.ID, &u.Name, &u.Email, &role, &u.TotalPoints, &createdAt); err != nil {
		return nil, scanErr("user", err)
	}
	u.Role = domain.Role(role)
	var err error
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &u, nil
}
