package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"task-tracker/models"
)

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = "id, email, username, name, password_hash, created_at"

func scanUser(row scanner) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Email, &u.Username, &u.Name, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts u; a taken email or username yields ErrConflict.
func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO users (email, username, name, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		strings.ToLower(u.Email), u.Username, u.Name, u.PasswordHash,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return classify("create user", err)
	}
	u.Email = strings.ToLower(u.Email)
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = $1", strings.ToLower(email)))
	if err != nil {
		return nil, classify("get user by email", err)
	}
	return u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id))
	if err != nil {
		return nil, classify("get user", err)
	}
	return u, nil
}

// List returns the public profiles of all users ordered by username.
func (r *UserRepository) List(ctx context.Context) ([]models.UserProfile, error) {
	rows, err := r.db.Query(ctx, "SELECT "+profileColumns+" FROM users u ORDER BY u.username")
	if err != nil {
		return nil, classify("list users", err)
	}
	defer rows.Close()

	users := []models.UserProfile{}
	for rows.Next() {
		var p models.UserProfile
		if err := rows.Scan(profileDest(&p)...); err != nil {
			return nil, classify("scan user", err)
		}
		users = append(users, p)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list users", err)
	}
	return users, nil
}
