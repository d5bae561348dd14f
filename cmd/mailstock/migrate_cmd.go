package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iota-uz/mailstock/migrations"
	"github.com/iota-uz/mailstock/pkg/configuration"
)

func newMigrateCmd() *cobra.Command {
	var down bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf := configuration.Use()
			if down {
				if err := migrations.Down(cmd.Context(), conf.Database.Opts); err != nil {
					return err
				}
				fmt.Println("rolled back one migration")
				return nil
			}
			if err := migrations.Up(cmd.Context(), conf.Database.Opts); err != nil {
				return err
			}
			fmt.Println("migrations applied")
			return nil
		},
	}

	cmd.Flags().BoolVar(&down, "down", false, "Roll back the most recent migration")
	return cmd
}
