package main

import "github.com/spf13/cobra"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mailstock",
		Short: "Mailstock maintenance commands",
	}
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newSeedCmd())
	cmd.AddCommand(newCleanupSessionsCmd())
	return cmd
}

func main() {
	_ = newRootCmd().Execute()
}
