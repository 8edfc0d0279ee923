package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/luminarygames/embervale-site/internal/model"
	"github.com/luminarygames/embervale-site/internal/utils"
)

// UserRepo persists account records in the 'users' table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,email,password_hash,role,provider,provider_id,disabled,created_at,updated_at"

// Create inserts a password-based user and returns its ID.
func (r *UserRepo) Create(ctx context.Context, email, password string, role model.Role, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, role) VALUES (?,?,?)",
		email, hash, string(role))
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// UpsertProvider finds or creates the account for an external
// identity. Match order: provider subject first, then email (which
// links a provider to an existing password account), else a fresh
// passwordless row is inserted.
func (r *UserRepo) UpsertProvider(ctx context.Context, email, provider, providerID string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if u, err := r.GetByProvider(ctx, provider, providerID); err == nil {
		return u, nil
	} else if err != ErrNotFound {
		return model.User{}, err
	}

	if email != "" {
		if u, err := r.GetByEmail(ctx, email); err == nil {
			_, uerr := r.DB.ExecContext(ctx,
				"UPDATE users SET provider=?, provider_id=? WHERE id=?",
				provider, providerID, u.ID)
			if uerr != nil {
				return model.User{}, uerr
			}
			u.Provider, u.ProviderID = provider, providerID
			return u, nil
		} else if err != ErrNotFound {
			return model.User{}, err
		}
	}

	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, role, provider, provider_id) VALUES (?,?,?,?,?)",
		email, "", string(model.RoleUser), provider, providerID)
	if err != nil {
		return model.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// GetByProvider fetches a user by external identity.
func (r *UserRepo) GetByProvider(ctx context.Context, provider, providerID string) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE provider=? AND provider_id=? LIMIT 1",
		provider, providerID))
}

// UpdatePassword replaces the stored hash, used by the reset flow.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, password string, cost int) error {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=? WHERE id=?", hash, id)
	return err
}

func (r *UserRepo) scanOne(row *sql.Row) (model.User, error) {
	var (
		u       model.User
		roleStr string
	)
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &roleStr, &u.Provider,
		&u.ProviderID, &u.Disabled, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, err
	}
	u.Role = model.ParseRole(roleStr)
	return u, nil
}
