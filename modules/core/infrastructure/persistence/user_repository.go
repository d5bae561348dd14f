package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/iota-uz/mailstock/modules/core/domain/aggregates/user"
	"github.com/iota-uz/mailstock/modules/core/infrastructure/persistence/models"
	"github.com/iota-uz/mailstock/pkg/composables"
	"github.com/iota-uz/mailstock/pkg/repo"
)

const userColumns = `id, username, password_hash, is_admin, role, team_id, provider_affinity, created_at`

type UserRepository struct{}

func NewUserRepository() user.Repository {
	return &UserRepository{}
}

func (r *UserRepository) GetByID(ctx context.Context, id uint) (*user.User, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	return r.getOne(ctx, `WHERE username = $1`, username)
}

func (r *UserRepository) getOne(ctx context.Context, where string, args ...interface{}) (*user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	var row models.User
	if err := tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users `+where, args...).Scan(
		&row.ID,
		&row.Username,
		&row.PasswordHash,
		&row.IsAdmin,
		&row.Role,
		&row.TeamID,
		&row.ProviderAffinity,
		&row.CreatedAt,
	); err != nil {
		return nil, err
	}
	return toDomainUser(&row), nil
}

func (r *UserRepository) List(ctx context.Context, params *user.FindParams) ([]*user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	where, args := buildUserFilters(params)
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + strings.Join(where, " AND ") + ` ORDER BY id`
	if params != nil {
		query += " " + repo.FormatLimitOffset(params.Limit, params.Offset)
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*user.User
	for rows.Next() {
		var row models.User
		if err := rows.Scan(
			&row.ID,
			&row.Username,
			&row.PasswordHash,
			&row.IsAdmin,
			&row.Role,
			&row.TeamID,
			&row.ProviderAffinity,
			&row.CreatedAt,
		); err != nil {
			return nil, err
		}
		results = append(results, toDomainUser(&row))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	dbRow := toDBUser(u)
	return tx.QueryRow(
		ctx,
		`INSERT INTO users (username, password_hash, is_admin, role, team_id, provider_affinity)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		dbRow.Username,
		dbRow.PasswordHash,
		dbRow.IsAdmin,
		dbRow.Role,
		dbRow.TeamID,
		dbRow.ProviderAffinity,
	).Scan(&u.ID, &u.CreatedAt)
}

func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	dbRow := toDBUser(u)
	_, err = tx.Exec(
		ctx,
		`UPDATE users
		 SET username = $1, password_hash = $2, is_admin = $3, role = $4, team_id = $5, provider_affinity = $6
		 WHERE id = $7`,
		dbRow.Username,
		dbRow.PasswordHash,
		dbRow.IsAdmin,
		dbRow.Role,
		dbRow.TeamID,
		dbRow.ProviderAffinity,
		dbRow.ID,
	)
	return err
}

func buildUserFilters(params *user.FindParams) ([]string, []interface{}) {
	where := []string{"1 = 1"}
	var args []interface{}
	argPos := 1

	if params == nil {
		return where, args
	}
	if params.TeamID != nil {
		where = append(where, fmt.Sprintf("team_id = $%d", argPos))
		args = append(args, *params.TeamID)
		argPos++
	}
	if params.Role != "" {
		where = append(where, fmt.Sprintf("role = $%d", argPos))
		args = append(args, string(params.Role))
		argPos++
	}
	return where, args
}
