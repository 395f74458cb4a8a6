package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"shopvision/internal/domain"
)

const userCols = `id, username, email, password_hash, role, created_at`

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

func (r *UserRepo) ByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.DB.GetContext(ctx, &u, r.DB.Rebind(`SELECT `+userCols+` FROM users WHERE LOWER(email)=LOWER(?)`), email)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := r.DB.GetContext(ctx, &u, r.DB.Rebind(`SELECT `+userCols+` FROM users WHERE id=?`), id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create returns ErrDuplicate when the email is taken.
func (r *UserRepo) Create(ctx context.Context, u domain.User) error {
	_, err := r.DB.ExecContext(ctx, r.DB.Rebind(`
		INSERT INTO users(`+userCols+`) VALUES(?,?,?,?,?,?)`),
		u.ID, u.Username, u.Email, u.Hash, u.Role, u.CreatedAt)
	return duplicate(err)
}
