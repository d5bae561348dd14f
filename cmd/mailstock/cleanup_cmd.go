package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/iota-uz/mailstock/modules"
	coreservices "github.com/iota-uz/mailstock/modules/core/services"
	"github.com/iota-uz/mailstock/pkg/application"
	"github.com/iota-uz/mailstock/pkg/composables"
	"github.com/iota-uz/mailstock/pkg/configuration"
	"github.com/iota-uz/mailstock/pkg/eventbus"
)

func newCleanupSessionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup-sessions",
		Short: "Delete expired sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf := configuration.Use()
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Second*30)
			defer cancel()

			pool, err := pgxpool.New(ctx, conf.Database.Opts)
			if err != nil {
				return err
			}
			defer pool.Close()

			app := application.New(&application.ApplicationOptions{
				Pool:     pool,
				EventBus: eventbus.NewEventPublisher(conf.Logger()),
				Logger:   conf.Logger(),
			})
			if err := modules.Load(app); err != nil {
				return err
			}

			auth := app.Service(coreservices.AuthService{}).(*coreservices.AuthService)
			deleted, err := auth.DeleteExpiredSessions(composables.WithPool(ctx, pool))
			if err != nil {
				return err
			}
			fmt.Printf("deleted %d expired sessions\n", deleted)
			return nil
		},
	}
}
