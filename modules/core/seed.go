package core

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/iota-uz/mailstock/modules/core/domain/aggregates/user"
	"github.com/iota-uz/mailstock/modules/core/domain/entities/team"
	"github.com/iota-uz/mailstock/modules/core/infrastructure/persistence"
	"github.com/iota-uz/mailstock/pkg/application"
	"github.com/iota-uz/mailstock/pkg/composables"
)

// SeedTeams creates the fixed team enumeration.
func SeedTeams(ctx context.Context, _ application.Application) error {
	return composables.InTx(ctx, func(txCtx context.Context) error {
		repo := persistence.NewTeamRepository()
		for _, name := range team.Names {
			if _, err := repo.GetOrCreateByName(txCtx, name); err != nil {
				return err
			}
		}
		return nil
	})
}

// SeedAdmin creates an administrator account if the username is free.
func SeedAdmin(username, password string) application.SeedFunc {
	return func(ctx context.Context, _ application.Application) error {
		return composables.InTx(ctx, func(txCtx context.Context) error {
			repo := persistence.NewUserRepository()
			_, err := repo.GetByUsername(txCtx, username)
			if err == nil {
				return nil
			}
			if !errors.Is(err, pgx.ErrNoRows) {
				return err
			}

			u := &user.User{
				Username: username,
				IsAdmin:  true,
				Role:     user.RoleManager,
			}
			if err := u.SetPassword(password); err != nil {
				return err
			}
			return repo.Create(txCtx, u)
		})
	}
}
