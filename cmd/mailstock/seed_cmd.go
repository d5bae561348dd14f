package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/iota-uz/mailstock/modules"
	"github.com/iota-uz/mailstock/modules/core"
	"github.com/iota-uz/mailstock/pkg/application"
	"github.com/iota-uz/mailstock/pkg/composables"
	"github.com/iota-uz/mailstock/pkg/configuration"
	"github.com/iota-uz/mailstock/pkg/eventbus"
)

func newSeedCmd() *cobra.Command {
	var (
		adminUsername string
		adminPassword string
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the fixed teams and an admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if adminPassword == "" {
				return fmt.Errorf("--admin-password is required")
			}

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

			seeder := application.NewSeeder()
			seeder.Register(
				core.SeedTeams,
				core.SeedAdmin(adminUsername, adminPassword),
			)
			if err := seeder.Seed(composables.WithPool(ctx, pool), app); err != nil {
				return err
			}
			fmt.Println("seed completed")
			return nil
		},
	}

	cmd.Flags().StringVar(&adminUsername, "admin-username", "admin", "Admin account username")
	cmd.Flags().StringVar(&adminPassword, "admin-password", "", "Admin account password (required)")
	_ = cmd.MarkFlagRequired("admin-password")
	return cmd
}
