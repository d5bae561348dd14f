package persistence

import (
	"context"

	"github.com/iota-uz/mailstock/modules/core/domain/entities/team"
	"github.com/iota-uz/mailstock/modules/core/infrastructure/persistence/models"
	"github.com/iota-uz/mailstock/pkg/composables"
)

type TeamRepository struct{}

func NewTeamRepository() team.Repository {
	return &TeamRepository{}
}

func (r *TeamRepository) GetAll(ctx context.Context) ([]*team.Team, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `SELECT id, name, created_at FROM teams ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*team.Team
	for rows.Next() {
		var row models.Team
		if err := rows.Scan(&row.ID, &row.Name, &row.CreatedAt); err != nil {
			return nil, err
		}
		results = append(results, toDomainTeam(&row))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *TeamRepository) GetByID(ctx context.Context, id uint) (*team.Team, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

func (r *TeamRepository) GetByName(ctx context.Context, name string) (*team.Team, error) {
	return r.getOne(ctx, `WHERE name = $1`, name)
}

func (r *TeamRepository) getOne(ctx context.Context, where string, args ...interface{}) (*team.Team, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	var row models.Team
	if err := tx.QueryRow(ctx, `SELECT id, name, created_at FROM teams `+where, args...).Scan(
		&row.ID,
		&row.Name,
		&row.CreatedAt,
	); err != nil {
		return nil, err
	}
	return toDomainTeam(&row), nil
}

func (r *TeamRepository) GetOrCreateByName(ctx context.Context, name string) (*team.Team, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	var row models.Team
	if err := tx.QueryRow(
		ctx,
		`INSERT INTO teams (name) VALUES ($1)
		 ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id, name, created_at`,
		name,
	).Scan(&row.ID, &row.Name, &row.CreatedAt); err != nil {
		return nil, err
	}
	return toDomainTeam(&row), nil
}
