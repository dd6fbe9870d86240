package ledger

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepo struct{ DB *pgxpool.Pool }

// CreateUser persists the ledger row for a principal the identity provider
// already authenticated. Students start with StartingBalanceCents; caterers
// carry no balance.
func (r *UserRepo) CreateUser(ctx context.Context, id, email string, role Role) (User, error) {
	if role != RoleStudent && role != RoleCaterer {
		return User{}, &ValidationError{Field: "role", Reason: "must be student or caterer"}
	}
	u := User{
		ID:        id,
		Email:     strings.ToLower(email),
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	if role == RoleStudent {
		u.BalanceCents = StartingBalanceCents
	}
	ct, err := r.DB.Exec(ctx, `
		INSERT INTO users(id, email, role, balance_cents, created_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (id) DO NOTHING
	`, u.ID, u.Email, u.Role, u.BalanceCents, u.CreatedAt)
	if err != nil {
		return User{}, err
	}
	// Row already existed: return the stored state, not the fresh struct,
	// so a repeated create never misreports a debited balance.
	if ct.RowsAffected() == 0 {
		return r.GetUser(ctx, id)
	}
	return u, nil
}

func (r *UserRepo) GetUser(ctx context.Context, id string) (User, error) {
	var u User
	err := r.DB.QueryRow(ctx, `
		SELECT id, email, role, balance_cents, created_at FROM users WHERE id=$1`, id).
		Scan(&u.ID, &u.Email, &u.Role, &u.BalanceCents, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}
