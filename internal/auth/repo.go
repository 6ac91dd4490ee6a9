package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/apperr"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/postgres"
)

const userColumns = `id, name, email, last_login, login_count, created_at, updated_at`

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) CreateUser(ctx context.Context, name, email, hash string) (User, error) {
	u, err := scanUser(r.DB.QueryRow(ctx, `
		INSERT INTO users(id, name, email, password_hash) VALUES ($1,$2,$3,$4)
		RETURNING `+userColumns, uuid.NewString(), name, email, hash))
	if postgres.IsUniqueViolation(err, "users_email_key") {
		return User{}, apperr.Conflict("User already exists")
	}
	if err != nil {
		return User{}, apperr.Persistence("create user", err)
	}
	return u, nil
}

// UserByEmail returns the user together with its password hash.
func (r *Repo) UserByEmail(ctx context.Context, email string) (User, string, error) {
	var (
		u    User
		hash string
	)
	err := r.DB.QueryRow(ctx, `SELECT `+userColumns+`, password_hash FROM users WHERE email=$1`, email).
		Scan(&u.ID, &u.Name, &u.Email, &u.LastLogin, &u.LoginCount, &u.CreatedAt, &u.UpdatedAt, &hash)
	if postgres.IsNoRows(err) {
		return User{}, "", apperr.NotFound("User not found")
	}
	if err != nil {
		return User{}, "", apperr.Persistence("get user", err)
	}
	return u, hash, nil
}

func (r *Repo) UserByID(ctx context.Context, id string) (User, error) {
	u, err := scanUser(r.DB.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id))
	if postgres.IsNoRows(err) {
		return User{}, apperr.NotFound("User not found")
	}
	if err != nil {
		return User{}, apperr.Persistence("get user", err)
	}
	return u, nil
}

func (r *Repo) RecordLogin(ctx context.Context, id string, at time.Time) (User, error) {
	u, err := scanUser(r.DB.QueryRow(ctx, `
		UPDATE users SET last_login=$2, login_count=login_count+1, updated_at=now()
		WHERE id=$1 RETURNING `+userColumns, id, at))
	if postgres.IsNoRows(err) {
		return User{}, apperr.NotFound("User not found")
	}
	if err != nil {
		return User{}, apperr.Persistence("record login", err)
	}
	return u, nil
}

func (r *Repo) SetUserPassword(ctx context.Context, email, hash string) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE users SET password_hash=$2, updated_at=now() WHERE email=$1`, email, hash)
	if err != nil {
		return apperr.Persistence("set user password", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User not found with this email.")
	}
	return nil
}

// ListUsers returns users newest first.
func (r *Repo) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, apperr.Persistence("list users", err)
	}
	defer rows.Close()
	out := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, apperr.Persistence("scan user", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("list users", err)
	}
	return out, nil
}

func (r *Repo) AdminByID(ctx context.Context, adminID string) (Admin, error) {
	var a Admin
	err := r.DB.QueryRow(ctx,
		`SELECT admin_id, email, password_hash FROM admins WHERE admin_id=$1`, adminID).
		Scan(&a.AdminID, &a.Email, &a.PasswordHash)
	if postgres.IsNoRows(err) {
		return Admin{}, apperr.NotFound("Admin account not found.")
	}
	if err != nil {
		return Admin{}, apperr.Persistence("get admin", err)
	}
	return a, nil
}

// CreateAdmin inserts a, or returns the existing record if another request
// bootstrapped the same admin first.
func (r *Repo) CreateAdmin(ctx context.Context, a Admin) (Admin, error) {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO admins(admin_id, email, password_hash) VALUES ($1,$2,$3)
		ON CONFLICT (admin_id) DO NOTHING`, a.AdminID, a.Email, a.PasswordHash)
	if err != nil {
		return Admin{}, apperr.Persistence("create admin", err)
	}
	return r.AdminByID(ctx, a.AdminID)
}

func (r *Repo) UpdateAdmin(ctx context.Context, a Admin) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE admins SET email=$2, password_hash=$3, updated_at=now() WHERE admin_id=$1`,
		a.AdminID, a.Email, a.PasswordHash)
	if err != nil {
		return apperr.Persistence("update admin", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Admin account not found.")
	}
	return nil
}

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.LastLogin, &u.LoginCount, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}
